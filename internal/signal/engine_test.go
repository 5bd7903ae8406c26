package signal

import (
	"fmt"
	"testing"
	"time"

	"solana-momentum-lab/internal/domain"
)

func qualifyingSnapshot(symbol, address string) *domain.TokenSnapshot {
	return &domain.TokenSnapshot{
		Symbol:            symbol,
		Address:           address,
		PriceUSD:          0.5,
		Volume24hUSD:      500_000,
		MarketCapUSD:      400_000,
		LiquidityUSD:      50_000,
		PriceChange24hPct: 120,
	}
}

func TestEvaluate_EmitsQualifyingSignal(t *testing.T) {
	engine := NewEngine(DefaultConfig(), nil)
	now := time.Now()

	signals, skipped, _ := engine.Evaluate(now, []*domain.TokenSnapshot{
		qualifyingSnapshot("FOO", "FooAddr"),
	})

	if skipped != 0 {
		t.Errorf("expected 0 skipped, got %d", skipped)
	}
	if len(signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(signals))
	}

	s := signals[0]
	if s.TokenAddress != "FooAddr" || s.Symbol != "FOO" {
		t.Errorf("wrong token on signal: %s/%s", s.Symbol, s.TokenAddress)
	}
	if s.Score != 88 {
		t.Errorf("expected score 88, got %f", s.Score)
	}
	if s.Strategy != "volume-momentum" {
		t.Errorf("expected strategy volume-momentum, got %s", s.Strategy)
	}
	if s.EmittedAt != now.UnixMilli() {
		t.Errorf("expected emitted_at %d, got %d", now.UnixMilli(), s.EmittedAt)
	}
	if s.SignalID == "" {
		t.Error("signal id must not be empty")
	}
	if len(s.Factors) != 4 {
		t.Errorf("expected 4 factors, got %d", len(s.Factors))
	}
}

func TestEvaluate_EmptyInput(t *testing.T) {
	engine := NewEngine(DefaultConfig(), nil)

	signals, skipped, suppressed := engine.Evaluate(time.Now(), nil)
	if len(signals) != 0 || skipped != 0 || suppressed != 0 {
		t.Fatalf("expected empty result, got %d signals, %d skipped, %d suppressed", len(signals), skipped, suppressed)
	}
}

func TestEvaluate_SkipsMalformed(t *testing.T) {
	engine := NewEngine(DefaultConfig(), nil)

	signals, skipped, _ := engine.Evaluate(time.Now(), []*domain.TokenSnapshot{
		nil,
		{Symbol: "NOADDR"},
		qualifyingSnapshot("FOO", "FooAddr"),
	})

	if skipped != 2 {
		t.Errorf("expected 2 skipped, got %d", skipped)
	}
	if len(signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(signals))
	}
}

// A token that signaled a minute ago must not signal again inside the
// cooldown window, even with an improved score.
func TestEvaluate_CooldownSuppression(t *testing.T) {
	engine := NewEngine(DefaultConfig(), nil)
	base := time.Now()

	first, _, suppressed := engine.Evaluate(base, []*domain.TokenSnapshot{qualifyingSnapshot("FOO", "FooAddr")})
	if len(first) != 1 {
		t.Fatalf("expected first evaluation to emit, got %d", len(first))
	}
	if suppressed != 0 {
		t.Fatalf("expected 0 suppressed in first cycle, got %d", suppressed)
	}

	improved := qualifyingSnapshot("FOO", "FooAddr")
	improved.Volume24hUSD = 2_000_000 // better score, still suppressed

	second, _, suppressed := engine.Evaluate(base.Add(time.Minute), []*domain.TokenSnapshot{improved})
	if len(second) != 0 {
		t.Fatalf("expected cooldown to suppress, got %d signals", len(second))
	}
	if suppressed != 1 {
		t.Fatalf("expected suppressed count 1, got %d", suppressed)
	}

	third, _, suppressed := engine.Evaluate(base.Add(25*time.Hour), []*domain.TokenSnapshot{qualifyingSnapshot("FOO", "FooAddr")})
	if len(third) != 1 {
		t.Fatalf("expected emission after cooldown expiry, got %d", len(third))
	}
	if suppressed != 0 {
		t.Fatalf("expected 0 suppressed after expiry, got %d", suppressed)
	}
}

// Cooldown timestamps are recorded only for tokens actually emitted: a
// candidate cut by the per-cycle cap stays eligible next cycle.
func TestEvaluate_TruncationDoesNotRecordCooldown(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSignalsPerCycle = 1
	engine := NewEngine(cfg, nil)
	base := time.Now()

	strong := qualifyingSnapshot("AAA", "AddrA")
	strong.Volume24hUSD = 2_000_000
	weak := qualifyingSnapshot("BBB", "AddrB")

	first, _, _ := engine.Evaluate(base, []*domain.TokenSnapshot{strong, weak})
	if len(first) != 1 || first[0].TokenAddress != "AddrA" {
		t.Fatalf("expected only AddrA in first cycle, got %v", first)
	}

	second, _, _ := engine.Evaluate(base.Add(time.Minute), []*domain.TokenSnapshot{weak})
	if len(second) != 1 || second[0].TokenAddress != "AddrB" {
		t.Fatalf("expected AddrB to emit in second cycle, got %v", second)
	}
}

func TestEvaluate_RankingAndTruncation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSignalsPerCycle = 3
	engine := NewEngine(cfg, nil)

	// Two tied top scorers plus a crowd of identical lower scorers.
	var input []*domain.TokenSnapshot
	top1 := qualifyingSnapshot("TOP", "AddrZ")
	top1.Volume24hUSD = 2_000_000
	top2 := qualifyingSnapshot("TOP", "AddrA")
	top2.Volume24hUSD = 2_000_000
	input = append(input, top1, top2)
	for i := 0; i < 5; i++ {
		input = append(input, qualifyingSnapshot("MID", fmt.Sprintf("Mid%d", i)))
	}

	signals, _, _ := engine.Evaluate(time.Now(), input)
	if len(signals) != 3 {
		t.Fatalf("expected 3 signals, got %d", len(signals))
	}

	// Ties break by address ascending.
	if signals[0].TokenAddress != "AddrA" || signals[1].TokenAddress != "AddrZ" {
		t.Errorf("tie-break order wrong: %s, %s", signals[0].TokenAddress, signals[1].TokenAddress)
	}
	if signals[2].TokenAddress != "Mid0" {
		t.Errorf("expected Mid0 third, got %s", signals[2].TokenAddress)
	}

	for i := 1; i < len(signals); i++ {
		if signals[i].Score > signals[i-1].Score {
			t.Errorf("signals not sorted by score desc at %d", i)
		}
	}
}

func TestEvaluate_BelowMinScore(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinScore = 95
	engine := NewEngine(cfg, nil)

	signals, _, _ := engine.Evaluate(time.Now(), []*domain.TokenSnapshot{
		qualifyingSnapshot("FOO", "FooAddr"), // scores 88
	})
	if len(signals) != 0 {
		t.Fatalf("expected no signals below min score, got %d", len(signals))
	}
}

func TestLoadCooldowns(t *testing.T) {
	engine := NewEngine(DefaultConfig(), nil)
	now := time.Now()

	engine.LoadCooldowns(map[string]int64{
		"FooAddr": now.Add(-time.Hour).UnixMilli(),
	})

	signals, _, suppressed := engine.Evaluate(now, []*domain.TokenSnapshot{qualifyingSnapshot("FOO", "FooAddr")})
	if len(signals) != 0 {
		t.Fatalf("expected persisted cooldown to suppress, got %d signals", len(signals))
	}
	if suppressed != 1 {
		t.Fatalf("expected suppressed count 1 from reloaded cooldown, got %d", suppressed)
	}

	// Older timestamps never overwrite newer in-memory state.
	engine.LoadCooldowns(map[string]int64{
		"FooAddr": now.Add(-48 * time.Hour).UnixMilli(),
	})
	signals, _, _ = engine.Evaluate(now, []*domain.TokenSnapshot{qualifyingSnapshot("FOO", "FooAddr")})
	if len(signals) != 0 {
		t.Fatalf("expected newer cooldown to survive reload, got %d signals", len(signals))
	}
}

func TestEvaluate_DistinctSignalIDs(t *testing.T) {
	engine := NewEngine(DefaultConfig(), nil)

	signals, _, _ := engine.Evaluate(time.Now(), []*domain.TokenSnapshot{
		qualifyingSnapshot("AAA", "AddrA"),
		qualifyingSnapshot("BBB", "AddrB"),
	})
	if len(signals) != 2 {
		t.Fatalf("expected 2 signals, got %d", len(signals))
	}
	if signals[0].SignalID == signals[1].SignalID {
		t.Error("signal ids must be distinct per token")
	}
}

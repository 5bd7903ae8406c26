package signal

import (
	"math"
	"testing"

	"solana-momentum-lab/internal/domain"
)

// wellFormed returns a snapshot that passes every default eligibility gate.
func wellFormed() *domain.TokenSnapshot {
	return &domain.TokenSnapshot{
		Symbol:            "FOO",
		Address:           "FooAddr",
		PriceUSD:          0.5,
		Volume24hUSD:      500_000,
		MarketCapUSD:      400_000,
		LiquidityUSD:      50_000,
		PriceChange24hPct: 120,
	}
}

func TestIsMalformed(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*domain.TokenSnapshot)
		want   bool
	}{
		{"well formed", func(s *domain.TokenSnapshot) {}, false},
		{"empty address", func(s *domain.TokenSnapshot) { s.Address = "" }, true},
		{"nan volume", func(s *domain.TokenSnapshot) { s.Volume24hUSD = math.NaN() }, true},
		{"inf market cap", func(s *domain.TokenSnapshot) { s.MarketCapUSD = math.Inf(1) }, true},
		{"nan price change", func(s *domain.TokenSnapshot) { s.PriceChange24hPct = math.NaN() }, true},
		{"negative price", func(s *domain.TokenSnapshot) { s.PriceUSD = -1 }, true},
		{"negative liquidity", func(s *domain.TokenSnapshot) { s.LiquidityUSD = -5 }, true},
		{"negative price change ok", func(s *domain.TokenSnapshot) { s.PriceChange24hPct = -50 }, false},
	}

	for _, tc := range cases {
		s := wellFormed()
		tc.mutate(s)
		if got := isMalformed(s); got != tc.want {
			t.Errorf("%s: expected malformed=%v, got %v", tc.name, tc.want, got)
		}
	}

	if !isMalformed(nil) {
		t.Error("nil snapshot should be malformed")
	}
}

func TestEligible_Gates(t *testing.T) {
	cfg := DefaultConfig()

	cases := []struct {
		name   string
		mutate func(*domain.TokenSnapshot)
		want   bool
	}{
		{"passes all gates", func(s *domain.TokenSnapshot) {}, true},
		{"denylisted symbol", func(s *domain.TokenSnapshot) { s.Symbol = "USDC" }, false},
		{"denylist is case-insensitive", func(s *domain.TokenSnapshot) { s.Symbol = "usdc" }, false},
		{"volume below floor", func(s *domain.TokenSnapshot) { s.Volume24hUSD = 99_999 }, false},
		{"market cap below band", func(s *domain.TokenSnapshot) { s.MarketCapUSD = 50_000 }, false},
		{"market cap above band", func(s *domain.TokenSnapshot) { s.MarketCapUSD = 60_000_000 }, false},
		{
			"no price move but volume anomaly",
			func(s *domain.TokenSnapshot) { s.PriceChange24hPct = 5 },
			true, // volume/mc = 1.25 >= 0.5
		},
		{
			"price move but no volume anomaly",
			func(s *domain.TokenSnapshot) {
				s.Volume24hUSD = 150_000
				s.MarketCapUSD = 40_000_000
			},
			true, // |120| >= 20
		},
		{
			"neither price move nor volume anomaly",
			func(s *domain.TokenSnapshot) {
				s.PriceChange24hPct = 5
				s.Volume24hUSD = 150_000
				s.MarketCapUSD = 40_000_000
			},
			false,
		},
		{
			"negative price move counts as momentum",
			func(s *domain.TokenSnapshot) {
				s.PriceChange24hPct = -40
				s.Volume24hUSD = 150_000
				s.MarketCapUSD = 40_000_000
			},
			true,
		},
		{"liquidity below floor", func(s *domain.TokenSnapshot) { s.LiquidityUSD = 5_000 }, false},
		{"zero liquidity skips floor", func(s *domain.TokenSnapshot) { s.LiquidityUSD = 0 }, true},
	}

	for _, tc := range cases {
		s := wellFormed()
		tc.mutate(s)
		if got := cfg.eligible(s); got != tc.want {
			t.Errorf("%s: expected eligible=%v, got %v", tc.name, tc.want, got)
		}
	}
}

// Filtering is idempotent: applying the filter to its own output must not
// remove further entries.
func TestEligible_Idempotent(t *testing.T) {
	cfg := DefaultConfig()

	input := []*domain.TokenSnapshot{
		wellFormed(),
		{Symbol: "USDT", Address: "usdt", Volume24hUSD: 1_000_000, MarketCapUSD: 1_000_000},
		{Symbol: "BAR", Address: "bar", Volume24hUSD: 10, MarketCapUSD: 500_000},
		{Symbol: "BAZ", Address: "baz", Volume24hUSD: 900_000, MarketCapUSD: 800_000, PriceChange24hPct: 60, LiquidityUSD: 40_000},
	}

	var pass1 []*domain.TokenSnapshot
	for _, s := range input {
		if cfg.eligible(s) {
			pass1 = append(pass1, s)
		}
	}

	var pass2 []*domain.TokenSnapshot
	for _, s := range pass1 {
		if cfg.eligible(s) {
			pass2 = append(pass2, s)
		}
	}

	if len(pass1) != len(pass2) {
		t.Fatalf("filter not idempotent: %d then %d", len(pass1), len(pass2))
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative min volume", func(c *Config) { c.MinVolume24hUSD = -1 }},
		{"inverted mc band", func(c *Config) { c.MaxMarketCapUSD = c.MinMarketCapUSD }},
		{"score above 100", func(c *Config) { c.MinScore = 101 }},
		{"zero cooldown", func(c *Config) { c.Cooldown = 0 }},
		{"zero max signals", func(c *Config) { c.MaxSignalsPerCycle = 0 }},
		{"empty strategy", func(c *Config) { c.Strategy = "" }},
	}

	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

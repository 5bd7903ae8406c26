// Package signal implements the momentum signal engine: eligibility
// filtering, capped sub-score scoring, cooldown deduplication and
// deterministic ranking of token snapshots into a bounded list of signals.
package signal

import (
	"log"
	"sort"
	"sync"
	"time"

	"solana-momentum-lab/internal/domain"
	"solana-momentum-lab/internal/idhash"
)

// Engine scores snapshot batches and emits qualified signals.
//
// The cooldown map is the engine's only mutable state. It is guarded by a
// mutex so concurrent Evaluate calls cannot interleave reads and writes for
// the same token address.
type Engine struct {
	cfg    Config
	logger *log.Logger

	mu           sync.Mutex
	lastEmission map[string]int64 // token address -> last emission timestamp (ms)
}

// NewEngine creates a signal engine. The config must have been validated.
func NewEngine(cfg Config, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		cfg:          cfg,
		logger:       logger,
		lastEmission: make(map[string]int64),
	}
}

// LoadCooldowns seeds the cooldown state from persisted signal history,
// so dedup survives restarts. Existing entries are kept if newer.
func (e *Engine) LoadCooldowns(emissions map[string]int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for addr, ts := range emissions {
		if ts > e.lastEmission[addr] {
			e.lastEmission[addr] = ts
		}
	}
}

// Evaluate runs one scan cycle over a snapshot batch and returns the emitted
// signals ordered by score descending (ties broken by address ascending),
// the number of malformed records that were skipped, and the number of
// qualified candidates suppressed by the cooldown window.
//
// An empty input yields an empty output without error. Cooldown timestamps
// are recorded only for tokens actually emitted, not for candidates merely
// considered.
func (e *Engine) Evaluate(now time.Time, snapshots []*domain.TokenSnapshot) ([]*domain.Signal, int, int) {
	nowMs := now.UnixMilli()
	cooldownMs := e.cfg.Cooldown.Milliseconds()

	type candidate struct {
		snap    *domain.TokenSnapshot
		score   float64
		factors []domain.Factor
	}

	var candidates []candidate
	skipped := 0

	for _, s := range snapshots {
		if isMalformed(s) {
			skipped++
			continue
		}
		if !e.cfg.eligible(s) {
			continue
		}
		score, factors := Score(s)
		if score < e.cfg.MinScore {
			continue
		}
		candidates = append(candidates, candidate{snap: s, score: score, factors: factors})
	}

	if len(candidates) == 0 {
		return nil, skipped, 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Drop candidates still inside the cooldown window. This is an anti-spam
	// policy, not a scoring decision: an improved score does not bypass it.
	suppressed := 0
	qualifying := candidates[:0]
	for _, c := range candidates {
		if last, ok := e.lastEmission[c.snap.Address]; ok && nowMs-last < cooldownMs {
			suppressed++
			continue
		}
		qualifying = append(qualifying, c)
	}

	sort.Slice(qualifying, func(i, j int) bool {
		if qualifying[i].score != qualifying[j].score {
			return qualifying[i].score > qualifying[j].score
		}
		return qualifying[i].snap.Address < qualifying[j].snap.Address
	})

	if len(qualifying) > e.cfg.MaxSignalsPerCycle {
		qualifying = qualifying[:e.cfg.MaxSignalsPerCycle]
	}

	signals := make([]*domain.Signal, 0, len(qualifying))
	for _, c := range qualifying {
		signals = append(signals, &domain.Signal{
			SignalID:     idhash.ComputeSignalID(c.snap.Address, e.cfg.Strategy, nowMs),
			TokenAddress: c.snap.Address,
			Symbol:       c.snap.Symbol,
			Score:        c.score,
			Factors:      c.factors,
			Strategy:     e.cfg.Strategy,
			EmittedAt:    nowMs,
			CreatedAt:    nowMs,
		})
		e.lastEmission[c.snap.Address] = nowMs
	}

	return signals, skipped, suppressed
}

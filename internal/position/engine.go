// Package position implements the position reconstruction engine: buy/sell
// classification from raw transfer deltas, FIFO open-lot matching and
// from-scratch wallet performance aggregation. No venue exposes realized
// P&L directly, so everything here is rebuilt from transfer history.
package position

import (
	"log"
	"sort"
	"time"

	"solana-momentum-lab/internal/domain"
)

// Config holds the engine's matching policy.
type Config struct {
	// MultiLotMatching enables closing multiple lots per sell. Disabled by
	// default: a sell consumes exactly the oldest open lot and any excess
	// proceeds are dropped.
	MultiLotMatching bool
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{MultiLotMatching: false}
}

// Engine reconstructs positions and statistics for tracked wallets.
// The engine itself holds no per-wallet state: each reconstruction pass owns
// its ledger exclusively, and callers serialize passes per wallet.
type Engine struct {
	cfg    Config
	logger *log.Logger
}

// NewEngine creates a position reconstruction engine.
func NewEngine(cfg Config, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{cfg: cfg, logger: logger}
}

// Result is the outcome of one reconstruction pass over a wallet's history.
type Result struct {
	ClosedTrades   []*domain.ClosedTrade
	OpenLots       []*domain.OpenLot
	UnmatchedSells int // sells discarded for lack of an open lot
}

// Ingest classifies a batch of raw transactions for a wallet. Transactions
// that fail to classify are skipped with a logged reason and counted; they
// never abort the batch.
func (e *Engine) Ingest(wallet string, raw []*domain.RawTransaction, nativePriceUSD float64) ([]*domain.WalletTransaction, int) {
	txs := make([]*domain.WalletTransaction, 0, len(raw))
	skipped := 0
	for _, r := range raw {
		tx, err := Classify(wallet, r, nativePriceUSD)
		if err != nil {
			skipped++
			if r != nil && r.Signature != "" {
				e.logger.Printf("skip tx %s for wallet %s: %v", r.Signature, wallet, err)
			}
			continue
		}
		txs = append(txs, tx)
	}
	return txs, skipped
}

// Reconstruct replays a wallet's classified transaction history through a
// fresh FIFO ledger. Processing is strictly sequential by timestamp
// (signature as tiebreak): FIFO correctness depends on temporal order.
func (e *Engine) Reconstruct(wallet string, txs []*domain.WalletTransaction) *Result {
	ordered := make([]*domain.WalletTransaction, len(txs))
	copy(ordered, txs)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Timestamp != ordered[j].Timestamp {
			return ordered[i].Timestamp < ordered[j].Timestamp
		}
		return ordered[i].TxSignature < ordered[j].TxSignature
	})

	led := newLedger(wallet, e.cfg.MultiLotMatching)
	result := &Result{}

	for _, tx := range ordered {
		switch tx.Side {
		case domain.TradeSideBuy:
			led.open(tx)
		case domain.TradeSideSell:
			trades, ok := led.close(tx)
			if !ok {
				// Sell with no prior buy on record: nothing to match against.
				result.UnmatchedSells++
				continue
			}
			result.ClosedTrades = append(result.ClosedTrades, trades...)
		default:
			e.logger.Printf("skip tx %s for wallet %s: unknown side %q", tx.TxSignature, wallet, tx.Side)
		}
	}

	result.OpenLots = led.openLots()
	return result
}

// Stats runs a full reconstruction over txs and returns the recomputed
// WalletStats, replacing any prior stats record (upsert semantics).
func (e *Engine) Stats(wallet string, txs []*domain.WalletTransaction, now time.Time) (*domain.WalletStats, *Result) {
	result := e.Reconstruct(wallet, txs)
	stats := ComputeStats(wallet, result.ClosedTrades, now.UnixMilli())
	return stats, result
}

// String describes the matching policy, for startup logging.
func (c Config) String() string {
	if c.MultiLotMatching {
		return "fifo multi-lot"
	}
	return "fifo single-lot"
}

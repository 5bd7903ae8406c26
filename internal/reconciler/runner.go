// Package reconciler coordinates position reconstruction for tracked
// wallets: fetch transfer history, classify, persist, recompute stats.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"solana-momentum-lab/internal/domain"
	"solana-momentum-lab/internal/observability"
	"solana-momentum-lab/internal/position"
	"solana-momentum-lab/internal/storage"
)

// TransactionFetcher retrieves parsed transfer history for a wallet.
type TransactionFetcher interface {
	WalletTransactions(ctx context.Context, wallet string, limit int) ([]*domain.RawTransaction, error)
}

// PriceFetcher retrieves the current native token price in USD.
type PriceFetcher interface {
	NativePriceUSD(ctx context.Context) (float64, error)
}

// Runner reconciles tracked wallets on a schedule and on activity triggers.
type Runner struct {
	txFetcher    TransactionFetcher
	priceFetcher PriceFetcher
	engine       *position.Engine
	txStore      storage.WalletTransactionStore
	statsStore   storage.WalletStatsStore
	logger       *log.Logger

	wallets    []string
	interval   time.Duration
	txLimit    int
	batchWidth int
	batchDelay time.Duration

	walletLocks *keyedMutex
}

// Options for creating Runner.
type Options struct {
	TxFetcher    TransactionFetcher
	PriceFetcher PriceFetcher
	Engine       *position.Engine
	TxStore      storage.WalletTransactionStore
	StatsStore   storage.WalletStatsStore
	Logger       *log.Logger

	Wallets  []string
	Interval time.Duration
	// TxLimit caps how many recent transactions to fetch per wallet.
	TxLimit int
	// BatchWidth is how many wallets reconcile concurrently.
	BatchWidth int
	// BatchDelay is the pause between wallet batches, to stay under
	// provider rate limits.
	BatchDelay time.Duration
}

// NewRunner creates a reconciliation runner.
func NewRunner(opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	txLimit := opts.TxLimit
	if txLimit <= 0 {
		txLimit = 100
	}
	batchWidth := opts.BatchWidth
	if batchWidth <= 0 {
		batchWidth = 5
	}
	batchDelay := opts.BatchDelay
	if batchDelay < 0 {
		batchDelay = 2 * time.Second
	}
	return &Runner{
		txFetcher:    opts.TxFetcher,
		priceFetcher: opts.PriceFetcher,
		engine:       opts.Engine,
		txStore:      opts.TxStore,
		statsStore:   opts.StatsStore,
		logger:       logger,
		wallets:      opts.Wallets,
		interval:     interval,
		txLimit:      txLimit,
		batchWidth:   batchWidth,
		batchDelay:   batchDelay,
		walletLocks:  newKeyedMutex(),
	}
}

// WalletResult contains results from reconciling one wallet.
type WalletResult struct {
	Wallet         string
	Ingested       int
	Skipped        int
	ClosedTrades   int
	UnmatchedSells int
	Stats          *domain.WalletStats
}

// ReconcileWallet runs one full reconciliation for a single wallet:
// fetch recent transactions, classify and persist the new ones, then
// recompute stats from the complete persisted history.
func (r *Runner) ReconcileWallet(ctx context.Context, wallet string) (*WalletResult, error) {
	r.walletLocks.Lock(wallet)
	defer r.walletLocks.Unlock(wallet)

	raw, err := r.txFetcher.WalletTransactions(ctx, wallet, r.txLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions for %s: %w", wallet, err)
	}

	nativePrice, err := r.priceFetcher.NativePriceUSD(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch native price: %w", err)
	}

	result := &WalletResult{Wallet: wallet}

	txs, skipped := r.engine.Ingest(wallet, raw, nativePrice)
	result.Skipped = skipped

	for _, tx := range txs {
		if err := r.txStore.Insert(ctx, tx); err != nil {
			// Transaction history is append-only and keyed by signature, so
			// re-fetched transactions show up as duplicates.
			if errors.Is(err, storage.ErrDuplicateKey) {
				continue
			}
			observability.RecordDBError("postgres", "insert_wallet_transaction")
			return nil, fmt.Errorf("insert tx %s: %w", tx.TxSignature, err)
		}
		result.Ingested++
	}

	// Stats are recomputed from the full persisted history, not the batch
	// just fetched, so every pass replays the same FIFO sequence.
	history, err := r.txStore.GetByWallet(ctx, wallet)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("load history for %s: %w", wallet, err)
	}

	stats, recon := r.engine.Stats(wallet, history, time.Now())
	result.ClosedTrades = len(recon.ClosedTrades)
	result.UnmatchedSells = recon.UnmatchedSells
	result.Stats = stats

	if err := r.statsStore.Upsert(ctx, stats); err != nil {
		observability.RecordDBError("postgres", "upsert_wallet_stats")
		return nil, fmt.Errorf("upsert stats for %s: %w", wallet, err)
	}

	observability.RecordWalletReconciled(result.Ingested, result.Skipped, result.ClosedTrades, result.UnmatchedSells)

	r.logger.Printf("reconciled wallet %s: ingested=%d skipped=%d trades=%d unmatched=%d pnl=%.2f winrate=%.1f%%",
		wallet, result.Ingested, result.Skipped, result.ClosedTrades, result.UnmatchedSells,
		stats.TotalPnLUSD, stats.WinRate)

	return result, nil
}

// RunPass reconciles every tracked wallet in rate-limited batches and
// returns the count of wallets that succeeded. Per-wallet failures are
// logged and skipped so one bad wallet cannot stall the pass.
func (r *Runner) RunPass(ctx context.Context) (int, error) {
	start := time.Now()
	succeeded := 0
	var mu sync.Mutex

	for i := 0; i < len(r.wallets); i += r.batchWidth {
		if ctx.Err() != nil {
			observability.RecordReconcilePass("cancelled", time.Since(start).Seconds())
			return succeeded, ctx.Err()
		}

		end := i + r.batchWidth
		if end > len(r.wallets) {
			end = len(r.wallets)
		}

		var wg sync.WaitGroup
		for _, wallet := range r.wallets[i:end] {
			wg.Add(1)
			go func(wallet string) {
				defer wg.Done()
				if _, err := r.ReconcileWallet(ctx, wallet); err != nil {
					r.logger.Printf("reconcile wallet %s failed: %v", wallet, err)
					return
				}
				mu.Lock()
				succeeded++
				mu.Unlock()
			}(wallet)
		}
		wg.Wait()

		if end < len(r.wallets) && r.batchDelay > 0 {
			select {
			case <-ctx.Done():
				observability.RecordReconcilePass("cancelled", time.Since(start).Seconds())
				return succeeded, ctx.Err()
			case <-time.After(r.batchDelay):
			}
		}
	}

	observability.RecordReconcilePass("ok", time.Since(start).Seconds())
	observability.DefaultMetrics.LastSuccessfulReconcile.Set(float64(time.Now().Unix()))

	r.logger.Printf("reconciliation pass done: %d/%d wallets in %v",
		succeeded, len(r.wallets), time.Since(start).Round(time.Millisecond))

	return succeeded, nil
}

// Run executes reconciliation passes on the configured interval until ctx is
// done. When triggers is non-nil, a wallet address received on it causes a
// targeted reconciliation of just that wallet.
func (r *Runner) Run(ctx context.Context, triggers <-chan string) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	if _, err := r.RunPass(ctx); err != nil && !errors.Is(err, context.Canceled) {
		r.logger.Printf("reconciliation pass failed: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.RunPass(ctx); err != nil && !errors.Is(err, context.Canceled) {
				r.logger.Printf("reconciliation pass failed: %v", err)
			}
		case wallet, ok := <-triggers:
			if !ok {
				triggers = nil
				continue
			}
			if _, err := r.ReconcileWallet(ctx, wallet); err != nil {
				r.logger.Printf("triggered reconcile for %s failed: %v", wallet, err)
			}
		}
	}
}

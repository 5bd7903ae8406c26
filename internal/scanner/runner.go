// Package scanner coordinates the periodic scan cycle:
// fetch snapshots → persist history → evaluate → persist signals → dispatch.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"solana-momentum-lab/internal/domain"
	"solana-momentum-lab/internal/observability"
	"solana-momentum-lab/internal/signal"
	"solana-momentum-lab/internal/storage"
)

// SnapshotFetcher retrieves the current universe of token snapshots.
type SnapshotFetcher interface {
	TokenList(ctx context.Context, limit int, observedAt time.Time) ([]*domain.TokenSnapshot, error)
}

// Runner executes scan cycles on a schedule.
type Runner struct {
	fetcher       SnapshotFetcher
	engine        *signal.Engine
	signalStore   storage.SignalStore
	snapshotStore storage.SnapshotStore
	dispatcher    Dispatcher
	logger        *log.Logger

	interval      time.Duration
	fetchTimeout  time.Duration
	universeLimit int
}

// Options for creating Runner.
type Options struct {
	Fetcher     SnapshotFetcher
	Engine      *signal.Engine
	SignalStore storage.SignalStore
	// SnapshotStore is optional; when nil, snapshot history is not kept.
	SnapshotStore storage.SnapshotStore
	// Dispatcher is optional; defaults to LogDispatcher.
	Dispatcher Dispatcher
	Logger     *log.Logger

	Interval      time.Duration
	FetchTimeout  time.Duration
	UniverseLimit int
}

// NewRunner creates a scan runner.
func NewRunner(opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = NewLogDispatcher(logger)
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	fetchTimeout := opts.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = 30 * time.Second
	}
	universeLimit := opts.UniverseLimit
	if universeLimit <= 0 {
		universeLimit = 100
	}
	return &Runner{
		fetcher:       opts.Fetcher,
		engine:        opts.Engine,
		signalStore:   opts.SignalStore,
		snapshotStore: opts.SnapshotStore,
		dispatcher:    dispatcher,
		logger:        logger,
		interval:      interval,
		fetchTimeout:  fetchTimeout,
		universeLimit: universeLimit,
	}
}

// CycleResult contains results from one scan cycle.
type CycleResult struct {
	SnapshotsFetched  int
	SnapshotsSkipped  int
	SignalsEmitted    int
	SignalsSuppressed int
}

// RunCycle executes one scan cycle. A failed fetch degrades to an empty
// batch so the schedule keeps its cadence instead of aborting the service.
func (r *Runner) RunCycle(ctx context.Context, now time.Time) (*CycleResult, error) {
	start := time.Now()
	result := &CycleResult{}

	fetchCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	snapshots, err := r.fetcher.TokenList(fetchCtx, r.universeLimit, now)
	cancel()
	if err != nil {
		r.logger.Printf("snapshot fetch failed, treating cycle as empty batch: %v", err)
		snapshots = nil
	}
	result.SnapshotsFetched = len(snapshots)

	if r.snapshotStore != nil && len(snapshots) > 0 {
		if err := r.snapshotStore.InsertBulk(ctx, snapshots); err != nil {
			// History is an analytics aid, signal emission must not depend on it.
			r.logger.Printf("snapshot history insert failed: %v", err)
			observability.RecordDBError("clickhouse", "insert_snapshots")
		}
	}

	signals, skipped, suppressed := r.engine.Evaluate(now, snapshots)
	result.SnapshotsSkipped = skipped
	result.SignalsEmitted = len(signals)
	result.SignalsSuppressed = suppressed

	for _, s := range signals {
		if err := r.signalStore.Insert(ctx, s); err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				continue
			}
			observability.RecordDBError("postgres", "insert_signal")
			observability.RecordScanCycle("error", time.Since(start).Seconds())
			return result, fmt.Errorf("insert signal %s: %w", s.SignalID, err)
		}
	}

	if len(signals) > 0 {
		if err := r.dispatcher.Dispatch(ctx, signals); err != nil {
			r.logger.Printf("dispatch failed: %v", err)
		}
	}

	observability.RecordSnapshots(result.SnapshotsFetched, result.SnapshotsSkipped)
	observability.RecordSignalsEmitted(result.SignalsEmitted)
	observability.RecordSignalsSuppressed(result.SignalsSuppressed)
	observability.RecordScanCycle("ok", time.Since(start).Seconds())
	observability.DefaultMetrics.LastSuccessfulScan.Set(float64(time.Now().Unix()))

	r.logger.Printf("scan cycle done: fetched=%d skipped=%d emitted=%d suppressed=%d in %v",
		result.SnapshotsFetched, result.SnapshotsSkipped, result.SignalsEmitted, result.SignalsSuppressed,
		time.Since(start).Round(time.Millisecond))

	return result, nil
}

// Run executes scan cycles on the configured interval until ctx is done.
// The first cycle runs immediately.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	if _, err := r.RunCycle(ctx, time.Now()); err != nil {
		r.logger.Printf("scan cycle failed: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.RunCycle(ctx, time.Now()); err != nil {
				r.logger.Printf("scan cycle failed: %v", err)
			}
		}
	}
}

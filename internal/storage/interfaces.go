package storage

import (
	"context"

	"solana-momentum-lab/internal/domain"
)

// SignalStore provides access to signals storage. The table is append-only:
// rows are inserted once and never updated.
type SignalStore interface {
	// Insert adds a new signal. Returns ErrDuplicateKey if signal_id exists.
	Insert(ctx context.Context, s *domain.Signal) error

	// GetByToken retrieves all signals for a token address, ordered by emitted_at ASC.
	GetByToken(ctx context.Context, tokenAddress string) ([]*domain.Signal, error)

	// GetByTimeRange retrieves signals emitted within [start, end] (inclusive, ms).
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.Signal, error)

	// RecentEmissions returns the latest emission timestamp (ms) per token
	// address for signals emitted at or after since. Used to reload the
	// cooldown state on startup.
	RecentEmissions(ctx context.Context, since int64) (map[string]int64, error)
}

// WalletTransactionStore provides access to wallet_transactions storage.
// Append-only, keyed uniquely by transaction signature so re-ingestion of
// the same history is idempotent.
type WalletTransactionStore interface {
	// Insert adds a new transaction. Returns ErrDuplicateKey if tx_signature exists.
	Insert(ctx context.Context, t *domain.WalletTransaction) error

	// GetByWallet retrieves all transactions for a wallet,
	// ordered by timestamp ASC, tx_signature ASC.
	GetByWallet(ctx context.Context, wallet string) ([]*domain.WalletTransaction, error)

	// GetByWalletToken retrieves all transactions for a wallet and token mint,
	// ordered by timestamp ASC, tx_signature ASC.
	GetByWalletToken(ctx context.Context, wallet, mint string) ([]*domain.WalletTransaction, error)
}

// WalletStatsStore provides access to wallet_stats storage. One row per
// wallet, replaced wholesale on every reconciliation pass.
type WalletStatsStore interface {
	// Upsert inserts or replaces the stats row for stats.Wallet.
	Upsert(ctx context.Context, stats *domain.WalletStats) error

	// GetByWallet retrieves stats for a wallet. Returns ErrNotFound if not exists.
	GetByWallet(ctx context.Context, wallet string) (*domain.WalletStats, error)

	// GetAll retrieves stats for all wallets, ordered by wallet ASC.
	GetAll(ctx context.Context) ([]*domain.WalletStats, error)
}

// SnapshotStore provides access to token_snapshots storage. Snapshots are
// observation history and are only ever appended.
type SnapshotStore interface {
	// InsertBulk appends a batch of snapshots.
	InsertBulk(ctx context.Context, snapshots []*domain.TokenSnapshot) error

	// GetByToken retrieves all snapshots for a token address, ordered by observed_at ASC.
	GetByToken(ctx context.Context, tokenAddress string) ([]*domain.TokenSnapshot, error)

	// GetByTimeRange retrieves snapshots for a token within [start, end] (inclusive, ms).
	GetByTimeRange(ctx context.Context, tokenAddress string, start, end int64) ([]*domain.TokenSnapshot, error)
}

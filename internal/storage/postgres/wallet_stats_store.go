package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-momentum-lab/internal/domain"
	"solana-momentum-lab/internal/storage"
)

// WalletStatsStore implements storage.WalletStatsStore using PostgreSQL.
// Unlike the append-only tables, wallet_stats rows are replaced wholesale
// on every reconciliation pass.
type WalletStatsStore struct {
	pool *Pool
}

// NewWalletStatsStore creates a new WalletStatsStore.
func NewWalletStatsStore(pool *Pool) *WalletStatsStore {
	return &WalletStatsStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WalletStatsStore = (*WalletStatsStore)(nil)

// Upsert inserts or replaces the stats row for stats.Wallet.
func (s *WalletStatsStore) Upsert(ctx context.Context, stats *domain.WalletStats) error {
	query := `
		INSERT INTO wallet_stats (
			wallet, total_trades, winning_trades, win_rate, total_pnl_usd,
			best_trade_usd, worst_trade_usd, last_trade_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (wallet) DO UPDATE SET
			total_trades = EXCLUDED.total_trades,
			winning_trades = EXCLUDED.winning_trades,
			win_rate = EXCLUDED.win_rate,
			total_pnl_usd = EXCLUDED.total_pnl_usd,
			best_trade_usd = EXCLUDED.best_trade_usd,
			worst_trade_usd = EXCLUDED.worst_trade_usd,
			last_trade_at = EXCLUDED.last_trade_at,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query,
		stats.Wallet, stats.TotalTrades, stats.WinningTrades, stats.WinRate,
		stats.TotalPnLUSD, stats.BestTradeUSD, stats.WorstTradeUSD,
		stats.LastTradeAt, stats.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert wallet stats: %w", err)
	}
	return nil
}

// GetByWallet retrieves stats for a wallet. Returns ErrNotFound if not exists.
func (s *WalletStatsStore) GetByWallet(ctx context.Context, wallet string) (*domain.WalletStats, error) {
	query := `
		SELECT wallet, total_trades, winning_trades, win_rate, total_pnl_usd,
		       best_trade_usd, worst_trade_usd, last_trade_at, updated_at
		FROM wallet_stats
		WHERE wallet = $1
	`

	row := s.pool.QueryRow(ctx, query, wallet)
	stats, err := scanWalletStats(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get wallet stats: %w", err)
	}
	return stats, nil
}

// GetAll retrieves stats for all wallets, ordered by wallet ASC.
func (s *WalletStatsStore) GetAll(ctx context.Context) ([]*domain.WalletStats, error) {
	query := `
		SELECT wallet, total_trades, winning_trades, win_rate, total_pnl_usd,
		       best_trade_usd, worst_trade_usd, last_trade_at, updated_at
		FROM wallet_stats
		ORDER BY wallet ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query all wallet stats: %w", err)
	}
	defer rows.Close()

	var out []*domain.WalletStats
	for rows.Next() {
		stats, err := scanWalletStats(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wallet stats: %w", err)
		}
		out = append(out, stats)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet stats: %w", err)
	}
	return out, nil
}

// scanWalletStats scans a single row into WalletStats.
func scanWalletStats(row pgx.Row) (*domain.WalletStats, error) {
	var stats domain.WalletStats
	err := row.Scan(
		&stats.Wallet, &stats.TotalTrades, &stats.WinningTrades, &stats.WinRate,
		&stats.TotalPnLUSD, &stats.BestTradeUSD, &stats.WorstTradeUSD,
		&stats.LastTradeAt, &stats.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

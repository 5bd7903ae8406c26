// Package clickhouse provides the ClickHouse-backed snapshot history store.
// Snapshot observations are high-volume append-only data, which is what the
// columnar store is here for; the relational tables stay in PostgreSQL.
package clickhouse

import (
	"context"
	"fmt"

	"solana-momentum-lab/internal/domain"
	"solana-momentum-lab/internal/storage"
)

// SnapshotStore implements storage.SnapshotStore using ClickHouse.
type SnapshotStore struct {
	conn *Conn
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(conn *Conn) *SnapshotStore {
	return &SnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// InsertBulk appends a batch of snapshots.
func (s *SnapshotStore) InsertBulk(ctx context.Context, snapshots []*domain.TokenSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO token_snapshots (
			address, symbol, price_usd, volume_24h_usd, market_cap_usd,
			liquidity_usd, price_change_24h_pct, observed_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, snap := range snapshots {
		err = batch.Append(
			snap.Address, snap.Symbol, snap.PriceUSD, snap.Volume24hUSD,
			snap.MarketCapUSD, snap.LiquidityUSD, snap.PriceChange24hPct,
			uint64(snap.ObservedAt),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByToken retrieves all snapshots for a token address, ordered by observed_at ASC.
func (s *SnapshotStore) GetByToken(ctx context.Context, tokenAddress string) ([]*domain.TokenSnapshot, error) {
	query := `
		SELECT address, symbol, price_usd, volume_24h_usd, market_cap_usd,
		       liquidity_usd, price_change_24h_pct, observed_at
		FROM token_snapshots
		WHERE address = ?
		ORDER BY observed_at ASC
	`

	rows, err := s.conn.Query(ctx, query, tokenAddress)
	if err != nil {
		return nil, fmt.Errorf("query by token: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// GetByTimeRange retrieves snapshots for a token within [start, end] (inclusive, ms).
func (s *SnapshotStore) GetByTimeRange(ctx context.Context, tokenAddress string, start, end int64) ([]*domain.TokenSnapshot, error) {
	query := `
		SELECT address, symbol, price_usd, volume_24h_usd, market_cap_usd,
		       liquidity_usd, price_change_24h_pct, observed_at
		FROM token_snapshots
		WHERE address = ? AND observed_at >= ? AND observed_at <= ?
		ORDER BY observed_at ASC
	`

	rows, err := s.conn.Query(ctx, query, tokenAddress, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// snapshotRows is the subset of driver.Rows that scanSnapshots needs.
type snapshotRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// scanSnapshots scans all rows into snapshots. A connection dropped
// mid-iteration ends Next early, so the rows error must be checked after
// the loop or a truncated result set passes as a complete one.
func scanSnapshots(rows snapshotRows) ([]*domain.TokenSnapshot, error) {
	var out []*domain.TokenSnapshot
	for rows.Next() {
		var snap domain.TokenSnapshot
		var observedAt uint64
		if err := rows.Scan(
			&snap.Address, &snap.Symbol, &snap.PriceUSD, &snap.Volume24hUSD,
			&snap.MarketCapUSD, &snap.LiquidityUSD, &snap.PriceChange24hPct,
			&observedAt,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snap.ObservedAt = int64(observedAt)
		out = append(out, &snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return out, nil
}

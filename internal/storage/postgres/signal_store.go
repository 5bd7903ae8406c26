package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-momentum-lab/internal/domain"
	"solana-momentum-lab/internal/storage"
)

// SignalStore implements storage.SignalStore using PostgreSQL.
// Factors are persisted as a JSONB column.
type SignalStore struct {
	pool *Pool
}

// NewSignalStore creates a new SignalStore.
func NewSignalStore(pool *Pool) *SignalStore {
	return &SignalStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SignalStore = (*SignalStore)(nil)

// Insert adds a new signal. Returns ErrDuplicateKey if signal_id exists.
func (s *SignalStore) Insert(ctx context.Context, sig *domain.Signal) error {
	factors, err := json.Marshal(sig.Factors)
	if err != nil {
		return fmt.Errorf("marshal factors: %w", err)
	}

	query := `
		INSERT INTO signals (
			signal_id, token_address, symbol, score, factors, strategy,
			emitted_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = s.pool.Exec(ctx, query,
		sig.SignalID, sig.TokenAddress, sig.Symbol, sig.Score, factors,
		sig.Strategy, sig.EmittedAt, sig.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert signal: %w", err)
	}
	return nil
}

// GetByToken retrieves all signals for a token address, ordered by emitted_at ASC.
func (s *SignalStore) GetByToken(ctx context.Context, tokenAddress string) ([]*domain.Signal, error) {
	query := `
		SELECT signal_id, token_address, symbol, score, factors, strategy,
		       emitted_at, created_at
		FROM signals
		WHERE token_address = $1
		ORDER BY emitted_at ASC, signal_id ASC
	`

	rows, err := s.pool.Query(ctx, query, tokenAddress)
	if err != nil {
		return nil, fmt.Errorf("query signals by token: %w", err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

// GetByTimeRange retrieves signals emitted within [start, end] (inclusive, ms).
func (s *SignalStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.Signal, error) {
	query := `
		SELECT signal_id, token_address, symbol, score, factors, strategy,
		       emitted_at, created_at
		FROM signals
		WHERE emitted_at >= $1 AND emitted_at <= $2
		ORDER BY emitted_at ASC, signal_id ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("query signals by time range: %w", err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

// RecentEmissions returns the latest emission timestamp per token address
// for signals emitted at or after since.
func (s *SignalStore) RecentEmissions(ctx context.Context, since int64) (map[string]int64, error) {
	query := `
		SELECT token_address, MAX(emitted_at)
		FROM signals
		WHERE emitted_at >= $1
		GROUP BY token_address
	`

	rows, err := s.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("query recent emissions: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var addr string
		var emittedAt int64
		if err := rows.Scan(&addr, &emittedAt); err != nil {
			return nil, fmt.Errorf("scan recent emission: %w", err)
		}
		out[addr] = emittedAt
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent emissions: %w", err)
	}
	return out, nil
}

// scanSignals scans all rows into signals.
func scanSignals(rows pgx.Rows) ([]*domain.Signal, error) {
	var out []*domain.Signal
	for rows.Next() {
		var sig domain.Signal
		var factors []byte
		if err := rows.Scan(
			&sig.SignalID, &sig.TokenAddress, &sig.Symbol, &sig.Score,
			&factors, &sig.Strategy, &sig.EmittedAt, &sig.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		if len(factors) > 0 {
			if err := json.Unmarshal(factors, &sig.Factors); err != nil {
				return nil, fmt.Errorf("unmarshal factors: %w", err)
			}
		}
		out = append(out, &sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signals: %w", err)
	}
	return out, nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-momentum-lab/internal/domain"
	"solana-momentum-lab/internal/storage"
)

// WalletTransactionStore implements storage.WalletTransactionStore using PostgreSQL.
type WalletTransactionStore struct {
	pool *Pool
}

// NewWalletTransactionStore creates a new WalletTransactionStore.
func NewWalletTransactionStore(pool *Pool) *WalletTransactionStore {
	return &WalletTransactionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WalletTransactionStore = (*WalletTransactionStore)(nil)

// Insert adds a new transaction. Returns ErrDuplicateKey if tx_signature exists.
func (s *WalletTransactionStore) Insert(ctx context.Context, t *domain.WalletTransaction) error {
	query := `
		INSERT INTO wallet_transactions (
			tx_signature, wallet, token_mint, side, native_sol, value_usd,
			timestamp_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		t.TxSignature, t.Wallet, t.TokenMint, t.Side, t.NativeSOL, t.ValueUSD,
		t.Timestamp, t.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert wallet transaction: %w", err)
	}
	return nil
}

// GetByWallet retrieves all transactions for a wallet,
// ordered by timestamp ASC, tx_signature ASC.
func (s *WalletTransactionStore) GetByWallet(ctx context.Context, wallet string) ([]*domain.WalletTransaction, error) {
	query := `
		SELECT tx_signature, wallet, token_mint, side, native_sol, value_usd,
		       timestamp_ms, created_at
		FROM wallet_transactions
		WHERE wallet = $1
		ORDER BY timestamp_ms ASC, tx_signature ASC
	`

	rows, err := s.pool.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("query transactions by wallet: %w", err)
	}
	defer rows.Close()

	return scanWalletTransactions(rows)
}

// GetByWalletToken retrieves all transactions for a wallet and token mint,
// ordered by timestamp ASC, tx_signature ASC.
func (s *WalletTransactionStore) GetByWalletToken(ctx context.Context, wallet, mint string) ([]*domain.WalletTransaction, error) {
	query := `
		SELECT tx_signature, wallet, token_mint, side, native_sol, value_usd,
		       timestamp_ms, created_at
		FROM wallet_transactions
		WHERE wallet = $1 AND token_mint = $2
		ORDER BY timestamp_ms ASC, tx_signature ASC
	`

	rows, err := s.pool.Query(ctx, query, wallet, mint)
	if err != nil {
		return nil, fmt.Errorf("query transactions by wallet and token: %w", err)
	}
	defer rows.Close()

	return scanWalletTransactions(rows)
}

// scanWalletTransactions scans all rows into wallet transactions.
func scanWalletTransactions(rows pgx.Rows) ([]*domain.WalletTransaction, error) {
	var out []*domain.WalletTransaction
	for rows.Next() {
		var t domain.WalletTransaction
		if err := rows.Scan(
			&t.TxSignature, &t.Wallet, &t.TokenMint, &t.Side, &t.NativeSOL,
			&t.ValueUSD, &t.Timestamp, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan wallet transaction: %w", err)
		}
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet transactions: %w", err)
	}
	return out, nil
}

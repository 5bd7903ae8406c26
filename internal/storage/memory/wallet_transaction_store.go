package memory

import (
	"context"
	"sort"
	"sync"

	"solana-momentum-lab/internal/domain"
	"solana-momentum-lab/internal/storage"
)

// WalletTransactionStore is an in-memory implementation of
// storage.WalletTransactionStore.
type WalletTransactionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.WalletTransaction // keyed by tx_signature
}

// NewWalletTransactionStore creates a new in-memory wallet transaction store.
func NewWalletTransactionStore() *WalletTransactionStore {
	return &WalletTransactionStore{
		data: make(map[string]*domain.WalletTransaction),
	}
}

// Compile-time interface check.
var _ storage.WalletTransactionStore = (*WalletTransactionStore)(nil)

// Insert adds a new transaction. Returns ErrDuplicateKey if tx_signature exists.
func (s *WalletTransactionStore) Insert(_ context.Context, t *domain.WalletTransaction) error {
	if t == nil || t.TxSignature == "" || t.Wallet == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.TxSignature]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *t
	s.data[t.TxSignature] = &cp
	return nil
}

// GetByWallet retrieves all transactions for a wallet,
// ordered by timestamp ASC, tx_signature ASC.
func (s *WalletTransactionStore) GetByWallet(_ context.Context, wallet string) ([]*domain.WalletTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.WalletTransaction
	for _, t := range s.data {
		if t.Wallet == wallet {
			cp := *t
			out = append(out, &cp)
		}
	}
	sortTransactions(out)
	return out, nil
}

// GetByWalletToken retrieves all transactions for a wallet and token mint,
// ordered by timestamp ASC, tx_signature ASC.
func (s *WalletTransactionStore) GetByWalletToken(_ context.Context, wallet, mint string) ([]*domain.WalletTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.WalletTransaction
	for _, t := range s.data {
		if t.Wallet == wallet && t.TokenMint == mint {
			cp := *t
			out = append(out, &cp)
		}
	}
	sortTransactions(out)
	return out, nil
}

func sortTransactions(txs []*domain.WalletTransaction) {
	sort.Slice(txs, func(i, j int) bool {
		if txs[i].Timestamp != txs[j].Timestamp {
			return txs[i].Timestamp < txs[j].Timestamp
		}
		return txs[i].TxSignature < txs[j].TxSignature
	})
}

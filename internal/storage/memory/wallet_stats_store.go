package memory

import (
	"context"
	"sort"
	"sync"

	"solana-momentum-lab/internal/domain"
	"solana-momentum-lab/internal/storage"
)

// WalletStatsStore is an in-memory implementation of storage.WalletStatsStore.
type WalletStatsStore struct {
	mu   sync.RWMutex
	data map[string]*domain.WalletStats // keyed by wallet
}

// NewWalletStatsStore creates a new in-memory wallet stats store.
func NewWalletStatsStore() *WalletStatsStore {
	return &WalletStatsStore{
		data: make(map[string]*domain.WalletStats),
	}
}

// Compile-time interface check.
var _ storage.WalletStatsStore = (*WalletStatsStore)(nil)

// Upsert inserts or replaces the stats row for stats.Wallet.
func (s *WalletStatsStore) Upsert(_ context.Context, stats *domain.WalletStats) error {
	if stats == nil || stats.Wallet == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *stats
	s.data[stats.Wallet] = &cp
	return nil
}

// GetByWallet retrieves stats for a wallet. Returns ErrNotFound if not exists.
func (s *WalletStatsStore) GetByWallet(_ context.Context, wallet string) (*domain.WalletStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats, exists := s.data[wallet]
	if !exists {
		return nil, storage.ErrNotFound
	}
	cp := *stats
	return &cp, nil
}

// GetAll retrieves stats for all wallets, ordered by wallet ASC.
func (s *WalletStatsStore) GetAll(_ context.Context) ([]*domain.WalletStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.WalletStats, 0, len(s.data))
	for _, stats := range s.data {
		cp := *stats
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Wallet < out[j].Wallet
	})
	return out, nil
}

// Package memory provides in-memory storage implementations used by tests
// and the --use-memory mode.
package memory

import (
	"context"
	"sort"
	"sync"

	"solana-momentum-lab/internal/domain"
	"solana-momentum-lab/internal/storage"
)

// SignalStore is an in-memory implementation of storage.SignalStore.
type SignalStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Signal // keyed by signal_id
}

// NewSignalStore creates a new in-memory signal store.
func NewSignalStore() *SignalStore {
	return &SignalStore{
		data: make(map[string]*domain.Signal),
	}
}

// Compile-time interface check.
var _ storage.SignalStore = (*SignalStore)(nil)

// Insert adds a new signal. Returns ErrDuplicateKey if signal_id exists.
func (s *SignalStore) Insert(_ context.Context, sig *domain.Signal) error {
	if sig == nil || sig.SignalID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[sig.SignalID]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *sig
	cp.Factors = append([]domain.Factor(nil), sig.Factors...)
	s.data[sig.SignalID] = &cp
	return nil
}

// GetByToken retrieves all signals for a token address, ordered by emitted_at ASC.
func (s *SignalStore) GetByToken(_ context.Context, tokenAddress string) ([]*domain.Signal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Signal
	for _, sig := range s.data {
		if sig.TokenAddress == tokenAddress {
			cp := *sig
			out = append(out, &cp)
		}
	}
	sortSignals(out)
	return out, nil
}

// GetByTimeRange retrieves signals emitted within [start, end] (inclusive, ms).
func (s *SignalStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.Signal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Signal
	for _, sig := range s.data {
		if sig.EmittedAt >= start && sig.EmittedAt <= end {
			cp := *sig
			out = append(out, &cp)
		}
	}
	sortSignals(out)
	return out, nil
}

// RecentEmissions returns the latest emission timestamp per token address
// for signals emitted at or after since.
func (s *SignalStore) RecentEmissions(_ context.Context, since int64) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int64)
	for _, sig := range s.data {
		if sig.EmittedAt < since {
			continue
		}
		if sig.EmittedAt > out[sig.TokenAddress] {
			out[sig.TokenAddress] = sig.EmittedAt
		}
	}
	return out, nil
}

func sortSignals(signals []*domain.Signal) {
	sort.Slice(signals, func(i, j int) bool {
		if signals[i].EmittedAt != signals[j].EmittedAt {
			return signals[i].EmittedAt < signals[j].EmittedAt
		}
		return signals[i].SignalID < signals[j].SignalID
	})
}

package memory

import (
	"context"
	"sort"
	"sync"

	"solana-momentum-lab/internal/domain"
	"solana-momentum-lab/internal/storage"
)

// SnapshotStore is an in-memory implementation of storage.SnapshotStore.
type SnapshotStore struct {
	mu   sync.RWMutex
	data []*domain.TokenSnapshot
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// InsertBulk appends a batch of snapshots. History is a raw observation log,
// so malformed rows (empty address, zero fields) are stored as-is; only nil
// entries reject the batch, and they do so before any row is applied.
func (s *SnapshotStore) InsertBulk(_ context.Context, snapshots []*domain.TokenSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	for _, snap := range snapshots {
		if snap == nil {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, snap := range snapshots {
		cp := *snap
		s.data = append(s.data, &cp)
	}
	return nil
}

// GetByToken retrieves all snapshots for a token address, ordered by observed_at ASC.
func (s *SnapshotStore) GetByToken(_ context.Context, tokenAddress string) ([]*domain.TokenSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.TokenSnapshot
	for _, snap := range s.data {
		if snap.Address == tokenAddress {
			cp := *snap
			out = append(out, &cp)
		}
	}
	sortSnapshots(out)
	return out, nil
}

// GetByTimeRange retrieves snapshots for a token within [start, end] (inclusive, ms).
func (s *SnapshotStore) GetByTimeRange(_ context.Context, tokenAddress string, start, end int64) ([]*domain.TokenSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.TokenSnapshot
	for _, snap := range s.data {
		if snap.Address == tokenAddress && snap.ObservedAt >= start && snap.ObservedAt <= end {
			cp := *snap
			out = append(out, &cp)
		}
	}
	sortSnapshots(out)
	return out, nil
}

func sortSnapshots(snaps []*domain.TokenSnapshot) {
	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].ObservedAt < snaps[j].ObservedAt
	})
}

package memory

import (
	"context"
	"errors"
	"testing"

	"solana-momentum-lab/internal/domain"
	"solana-momentum-lab/internal/storage"
)

func testSignal(id, token string, emittedAt int64) *domain.Signal {
	return &domain.Signal{
		SignalID:     id,
		TokenAddress: token,
		Symbol:       "FOO",
		Score:        88,
		Strategy:     "volume-momentum",
		EmittedAt:    emittedAt,
		CreatedAt:    emittedAt,
		Factors: []domain.Factor{
			{Name: domain.FactorVolumeMomentum, Value: 1.25, Score: 40},
		},
	}
}

func TestSignalStore_InsertAndGet(t *testing.T) {
	store := NewSignalStore()
	ctx := context.Background()

	if err := store.Insert(ctx, testSignal("id1", "tokenA", 1000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByToken(ctx, "tokenA")
	if err != nil {
		t.Fatalf("GetByToken failed: %v", err)
	}
	if len(got) != 1 || got[0].SignalID != "id1" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if len(got[0].Factors) != 1 {
		t.Errorf("factors not preserved: %+v", got[0].Factors)
	}
}

func TestSignalStore_DuplicateKey(t *testing.T) {
	store := NewSignalStore()
	ctx := context.Background()

	if err := store.Insert(ctx, testSignal("id1", "tokenA", 1000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	err := store.Insert(ctx, testSignal("id1", "tokenA", 2000))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestSignalStore_InvalidInput(t *testing.T) {
	store := NewSignalStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for nil, got %v", err)
	}
	if err := store.Insert(ctx, &domain.Signal{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty id, got %v", err)
	}
}

func TestSignalStore_GetByTimeRange(t *testing.T) {
	store := NewSignalStore()
	ctx := context.Background()

	for _, s := range []*domain.Signal{
		testSignal("id1", "tokenA", 1000),
		testSignal("id2", "tokenB", 2000),
		testSignal("id3", "tokenC", 3000),
	} {
		if err := store.Insert(ctx, s); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := store.GetByTimeRange(ctx, 1000, 2000)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 signals, got %d", len(got))
	}
	if got[0].EmittedAt > got[1].EmittedAt {
		t.Error("results not ordered by emitted_at")
	}
}

func TestSignalStore_RecentEmissions(t *testing.T) {
	store := NewSignalStore()
	ctx := context.Background()

	for _, s := range []*domain.Signal{
		testSignal("id1", "tokenA", 1000),
		testSignal("id2", "tokenA", 5000), // newer emission for same token
		testSignal("id3", "tokenB", 500),  // before since
	} {
		if err := store.Insert(ctx, s); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	emissions, err := store.RecentEmissions(ctx, 1000)
	if err != nil {
		t.Fatalf("RecentEmissions failed: %v", err)
	}
	if len(emissions) != 1 {
		t.Fatalf("expected 1 token, got %d", len(emissions))
	}
	if emissions["tokenA"] != 5000 {
		t.Errorf("expected latest emission 5000, got %d", emissions["tokenA"])
	}
}

// Mutating a returned signal must not affect the stored copy.
func TestSignalStore_CopyOnRead(t *testing.T) {
	store := NewSignalStore()
	ctx := context.Background()

	if err := store.Insert(ctx, testSignal("id1", "tokenA", 1000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	first, _ := store.GetByToken(ctx, "tokenA")
	first[0].Score = 0

	second, _ := store.GetByToken(ctx, "tokenA")
	if second[0].Score != 88 {
		t.Error("stored signal was mutated through a returned copy")
	}
}

package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-momentum-lab/internal/domain"
)

func testSnapshot(address string, observedAt int64) *domain.TokenSnapshot {
	return &domain.TokenSnapshot{
		Symbol:            "FOO",
		Address:           address,
		PriceUSD:          0.5,
		Volume24hUSD:      500_000,
		MarketCapUSD:      400_000,
		LiquidityUSD:      50_000,
		PriceChange24hPct: 120,
		ObservedAt:        observedAt,
	}
}

func TestSnapshotStore_InsertBulkAndGetByToken(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(conn)
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.TokenSnapshot{
		testSnapshot("tokenA", 2000),
		testSnapshot("tokenA", 1000),
		testSnapshot("tokenB", 1500),
	})
	require.NoError(t, err)

	got, err := store.GetByToken(ctx, "tokenA")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, int64(1000), got[0].ObservedAt)
	assert.Equal(t, int64(2000), got[1].ObservedAt)
	assert.Equal(t, "FOO", got[0].Symbol)
	assert.Equal(t, 500_000.0, got[0].Volume24hUSD)
	assert.Equal(t, 120.0, got[0].PriceChange24hPct)
}

func TestSnapshotStore_GetByTimeRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(conn)
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.TokenSnapshot{
		testSnapshot("tokenA", 1000),
		testSnapshot("tokenA", 2000),
		testSnapshot("tokenA", 3000),
	})
	require.NoError(t, err)

	got, err := store.GetByTimeRange(ctx, "tokenA", 1000, 2000)
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestSnapshotStore_EmptyBatch(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(conn)
	require.NoError(t, store.InsertBulk(context.Background(), nil))
}

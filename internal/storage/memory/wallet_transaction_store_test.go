package memory

import (
	"context"
	"errors"
	"testing"

	"solana-momentum-lab/internal/domain"
	"solana-momentum-lab/internal/storage"
)

func testTx(sig, wallet, mint string, ts int64) *domain.WalletTransaction {
	return &domain.WalletTransaction{
		TxSignature: sig,
		Wallet:      wallet,
		TokenMint:   mint,
		Side:        domain.TradeSideBuy,
		NativeSOL:   2,
		ValueUSD:    200,
		Timestamp:   ts,
	}
}

func TestWalletTransactionStore_InsertAndGet(t *testing.T) {
	store := NewWalletTransactionStore()
	ctx := context.Background()

	for _, tx := range []*domain.WalletTransaction{
		testTx("sig2", "w1", "mintA", 2000),
		testTx("sig1", "w1", "mintA", 1000),
		testTx("sig3", "w2", "mintB", 1500),
	} {
		if err := store.Insert(ctx, tx); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := store.GetByWallet(ctx, "w1")
	if err != nil {
		t.Fatalf("GetByWallet failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 txs, got %d", len(got))
	}
	if got[0].TxSignature != "sig1" || got[1].TxSignature != "sig2" {
		t.Errorf("wrong order: %s, %s", got[0].TxSignature, got[1].TxSignature)
	}
}

func TestWalletTransactionStore_DuplicateSignature(t *testing.T) {
	store := NewWalletTransactionStore()
	ctx := context.Background()

	if err := store.Insert(ctx, testTx("sig1", "w1", "mintA", 1000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	err := store.Insert(ctx, testTx("sig1", "w1", "mintA", 2000))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestWalletTransactionStore_GetByWalletToken(t *testing.T) {
	store := NewWalletTransactionStore()
	ctx := context.Background()

	for _, tx := range []*domain.WalletTransaction{
		testTx("sig1", "w1", "mintA", 1000),
		testTx("sig2", "w1", "mintB", 2000),
	} {
		if err := store.Insert(ctx, tx); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := store.GetByWalletToken(ctx, "w1", "mintA")
	if err != nil {
		t.Fatalf("GetByWalletToken failed: %v", err)
	}
	if len(got) != 1 || got[0].TokenMint != "mintA" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestWalletTransactionStore_EmptyWallet(t *testing.T) {
	store := NewWalletTransactionStore()

	got, err := store.GetByWallet(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetByWallet failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
}

package position

import (
	"errors"
	"fmt"

	"solana-momentum-lab/internal/domain"
)

// WSOL mint, excluded from candidate token deltas: wrapping SOL is part of
// the swap plumbing, not the traded token.
const wsolMint = "So11111111111111111111111111111111111111112"

// ErrUnclassified marks a transaction that does not reduce to a single clean
// (token, direction) pair: plain transfers, airdrops, multi-hop swaps.
// Discarding these is a deliberate precision/recall trade-off.
var ErrUnclassified = errors.New("transaction does not classify as buy or sell")

// Classify reduces a raw transaction to a single buy or sell for the tracked
// wallet, or returns ErrUnclassified.
//
// A transaction is a buy of token T when the wallet's net native delta is
// negative and its net delta of T is positive; a sell when both signs flip.
// Transactions touching more than one token mint ambiguously are discarded.
// The USD value is derived from the absolute native delta at nativePriceUSD.
func Classify(wallet string, tx *domain.RawTransaction, nativePriceUSD float64) (*domain.WalletTransaction, error) {
	if tx == nil || tx.Signature == "" {
		return nil, fmt.Errorf("%w: missing signature", ErrUnclassified)
	}

	nativeDelta := netNativeDelta(wallet, tx.NativeTransfers)
	tokenDeltas := netTokenDeltas(wallet, tx.TokenTransfers)

	mint, tokenDelta, ok := singleTokenDelta(tokenDeltas)
	if !ok {
		return nil, ErrUnclassified
	}

	var side string
	switch {
	case nativeDelta < 0 && tokenDelta > 0:
		side = domain.TradeSideBuy
	case nativeDelta > 0 && tokenDelta < 0:
		side = domain.TradeSideSell
	default:
		return nil, ErrUnclassified
	}

	nativeSOL := float64(abs64(nativeDelta)) / domain.LamportsPerSOL
	return &domain.WalletTransaction{
		TxSignature: tx.Signature,
		Wallet:      wallet,
		TokenMint:   mint,
		Side:        side,
		NativeSOL:   nativeSOL,
		ValueUSD:    nativeSOL * nativePriceUSD,
		Timestamp:   tx.Timestamp * 1000,
	}, nil
}

// netNativeDelta computes the wallet's net lamport delta across all native
// transfers. Transfers not touching the wallet are ignored.
func netNativeDelta(wallet string, transfers []domain.NativeTransfer) int64 {
	var delta int64
	for _, t := range transfers {
		if t.ToAccount == wallet {
			delta += t.Amount
		}
		if t.FromAccount == wallet {
			delta -= t.Amount
		}
	}
	return delta
}

// netTokenDeltas computes the wallet's net token delta per mint.
// WSOL is excluded.
func netTokenDeltas(wallet string, transfers []domain.TokenTransfer) map[string]float64 {
	deltas := make(map[string]float64)
	for _, t := range transfers {
		if t.Mint == "" || t.Mint == wsolMint {
			continue
		}
		if t.ToAccount == wallet {
			deltas[t.Mint] += t.TokenAmount
		}
		if t.FromAccount == wallet {
			deltas[t.Mint] -= t.TokenAmount
		}
	}
	return deltas
}

// singleTokenDelta returns the only nonzero mint delta, or ok=false when the
// transaction touches zero or multiple mints.
func singleTokenDelta(deltas map[string]float64) (string, float64, bool) {
	var mint string
	var delta float64
	count := 0
	for m, d := range deltas {
		if d == 0 {
			continue
		}
		mint, delta = m, d
		count++
	}
	if count != 1 {
		return "", 0, false
	}
	return mint, delta, true
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

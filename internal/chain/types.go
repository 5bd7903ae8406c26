package chain

import "solana-momentum-lab/internal/domain"

// txRecord is one raw transaction with the provider's field names.
type txRecord struct {
	Signature       string             `json:"signature"`
	Timestamp       int64              `json:"timestamp"` // unix seconds
	NativeTransfers []nativeTransfer   `json:"nativeTransfers"`
	TokenTransfers  []tokenTransferRec `json:"tokenTransfers"`
}

type nativeTransfer struct {
	FromAccount string `json:"fromAccount"`
	ToAccount   string `json:"toAccount"`
	Amount      int64  `json:"amount"` // lamports
}

type tokenTransferRec struct {
	Mint        string  `json:"mint"`
	FromAccount string  `json:"fromAccount"`
	ToAccount   string  `json:"toAccount"`
	TokenAmount float64 `json:"tokenAmount"`
}

// toDomain maps the provider record into the domain transaction.
func (r txRecord) toDomain() *domain.RawTransaction {
	tx := &domain.RawTransaction{
		Signature: r.Signature,
		Timestamp: r.Timestamp,
	}
	for _, t := range r.NativeTransfers {
		tx.NativeTransfers = append(tx.NativeTransfers, domain.NativeTransfer{
			FromAccount: t.FromAccount,
			ToAccount:   t.ToAccount,
			Amount:      t.Amount,
		})
	}
	for _, t := range r.TokenTransfers {
		tx.TokenTransfers = append(tx.TokenTransfers, domain.TokenTransfer{
			Mint:        t.Mint,
			FromAccount: t.FromAccount,
			ToAccount:   t.ToAccount,
			TokenAmount: t.TokenAmount,
		})
	}
	return tx
}

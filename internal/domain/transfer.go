package domain

// RawTransaction is one parsed transfer-level transaction record for a
// tracked wallet, as returned by the enhanced-transactions API. It carries
// zero or more native transfers and zero or more token transfers; the
// Position Reconstruction Engine reduces it to a single (token, direction)
// pair or discards it as unclassified.
type RawTransaction struct {
	Signature       string           // unique transaction signature
	Timestamp       int64            // block timestamp, Unix seconds
	NativeTransfers []NativeTransfer // SOL movements
	TokenTransfers  []TokenTransfer  // SPL token movements
}

// NativeTransfer is one SOL movement inside a transaction.
type NativeTransfer struct {
	FromAccount string // sender address
	ToAccount   string // recipient address
	Amount      int64  // lamports
}

// TokenTransfer is one SPL token movement inside a transaction.
type TokenTransfer struct {
	Mint        string  // token mint address
	FromAccount string  // sender address
	ToAccount   string  // recipient address
	TokenAmount float64 // UI token amount
}

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = 1_000_000_000

package domain

// WalletTransaction is one classified blockchain event for a tracked wallet.
// Corresponds to the wallet_transactions table in PostgreSQL. The transaction
// signature is the unique key, which makes re-ingestion idempotent.
type WalletTransaction struct {
	TxSignature string  // PRIMARY KEY, Solana transaction signature
	Wallet      string  // tracked wallet address
	TokenMint   string  // token mint the trade touched
	Side        string  // "buy" | "sell"
	NativeSOL   float64 // absolute native currency amount moved (SOL)
	ValueUSD    float64 // derived USD value at observation time
	Timestamp   int64   // block timestamp, Unix ms
	CreatedAt   int64   // record creation timestamp, Unix ms
}

// Trade side constants.
const (
	TradeSideBuy  = "buy"
	TradeSideSell = "sell"
)

// OpenLot is an unmatched buy awaiting a closing sell. Lots exist only in
// the reconstruction ledger for the duration of a reconciliation pass; they
// are never persisted.
type OpenLot struct {
	Wallet        string  // wallet address
	TokenMint     string  // token mint address
	EntryValueUSD float64 // USD value of the buy
	EntryTime     int64   // buy timestamp, Unix ms
}

// ClosedTrade is the result of matching a sell against open lots.
type ClosedTrade struct {
	Wallet        string  // wallet address
	TokenMint     string  // token mint address
	EntryValueUSD float64 // matched cost basis
	CloseValueUSD float64 // sell value
	PnLUSD        float64 // CloseValueUSD - EntryValueUSD
	PnLPct        float64 // PnLUSD / EntryValueUSD * 100 (0 when basis is 0)
	OpenedAt      int64   // entry timestamp of the matched lot, Unix ms
	ClosedAt      int64   // sell timestamp, Unix ms
}

// WalletStats is the aggregate performance view per wallet.
// Corresponds to the wallet_stats table in PostgreSQL, keyed by wallet and
// replaced wholesale on every reconciliation pass (upsert semantics).
//
// Invariant: WinRate == WinningTrades / TotalTrades * 100 when TotalTrades > 0,
// else 0.
type WalletStats struct {
	Wallet        string  // PRIMARY KEY, wallet address
	TotalTrades   int     // number of closed trades
	WinningTrades int     // closed trades with PnLUSD > 0
	WinRate       float64 // percentage of winning trades
	TotalPnLUSD   float64 // sum of realized PnL
	BestTradeUSD  float64 // highest single-trade PnL
	WorstTradeUSD float64 // lowest single-trade PnL
	LastTradeAt   int64   // timestamp of the latest closed trade, Unix ms
	UpdatedAt     int64   // stats recomputation timestamp, Unix ms
}

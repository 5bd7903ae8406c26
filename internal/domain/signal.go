package domain

// Signal is a scoring verdict derived from one TokenSnapshot.
// Corresponds to the signals table in PostgreSQL. Signals are append-only:
// once emitted they are never mutated or deleted.
type Signal struct {
	SignalID     string   // PRIMARY KEY, deterministic hash
	TokenAddress string   // token mint address
	Symbol       string   // ticker symbol at emission time
	Score        float64  // total score in [0, 100]
	Factors      []Factor // sub-scores that contributed to the total
	Strategy     string   // source strategy tag
	EmittedAt    int64    // emission timestamp, Unix ms
	CreatedAt    int64    // record creation timestamp, Unix ms
}

// Factor is one named sub-score contribution inside a Signal.
type Factor struct {
	Name  string  // factor identifier, see Factor* constants
	Value float64 // observed ratio or percentage the bucket was applied to
	Score float64 // capped points awarded by the bucket
}

// Factor name constants.
const (
	FactorVolumeMomentum = "volume_momentum" // volume / market cap ratio
	FactorPriceMomentum  = "price_momentum"  // |24h price change|
	FactorLiquidity      = "liquidity"       // liquidity / market cap ratio
	FactorMarketCapBand  = "market_cap_band" // sweet-spot bonus
)

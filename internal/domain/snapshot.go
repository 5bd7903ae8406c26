package domain

// TokenSnapshot is one point-in-time market observation for a token.
// Corresponds to the token_snapshots table in ClickHouse. A newer snapshot
// for the same address supersedes the prior one for scoring purposes but
// does not delete history.
type TokenSnapshot struct {
	Symbol            string  // ticker symbol as reported by the provider
	Address           string  // token mint address (unique key)
	PriceUSD          float64 // last price in USD
	Volume24hUSD      float64 // 24h trading volume in USD
	MarketCapUSD      float64 // market capitalization in USD
	LiquidityUSD      float64 // pool liquidity in USD (0 if not reported)
	PriceChange24hPct float64 // 24h price change in percent (signed)
	ObservedAt        int64   // observation timestamp, Unix ms
}

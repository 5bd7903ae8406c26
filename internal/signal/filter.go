package signal

import (
	"math"
	"strings"

	"solana-momentum-lab/internal/domain"
)

// isMalformed reports whether a snapshot is missing required fields or
// carries non-numeric values where numbers are expected. Malformed snapshots
// degrade to "skipped" rather than aborting the cycle.
func isMalformed(s *domain.TokenSnapshot) bool {
	if s == nil || s.Address == "" {
		return true
	}
	for _, v := range []float64{
		s.PriceUSD, s.Volume24hUSD, s.MarketCapUSD, s.LiquidityUSD, s.PriceChange24hPct,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	if s.PriceUSD < 0 || s.Volume24hUSD < 0 || s.MarketCapUSD < 0 || s.LiquidityUSD < 0 {
		return true
	}
	return false
}

// eligible applies the eligibility filter to a well-formed snapshot.
// The checks are order-independent and all must pass. Filtering is
// idempotent: re-running it on filtered output yields the same output.
func (c Config) eligible(s *domain.TokenSnapshot) bool {
	if c.denied(s.Symbol) {
		return false
	}
	if s.Volume24hUSD < c.MinVolume24hUSD {
		return false
	}
	if s.MarketCapUSD < c.MinMarketCapUSD || s.MarketCapUSD > c.MaxMarketCapUSD {
		return false
	}
	// Either a price event or a volume anomaly independent of price.
	priceMove := math.Abs(s.PriceChange24hPct) >= c.MinPriceChangePct
	volumeAnomaly := s.MarketCapUSD > 0 && s.Volume24hUSD/s.MarketCapUSD >= c.MinVolumeMCRatio
	if !priceMove && !volumeAnomaly {
		return false
	}
	// Liquidity floor applies only when the provider reports a figure.
	if s.LiquidityUSD > 0 && s.LiquidityUSD < c.MinLiquidityUSD {
		return false
	}
	return true
}

// denied reports whether symbol is on the base/stable asset denylist.
func (c Config) denied(symbol string) bool {
	for _, d := range c.Denylist {
		if strings.EqualFold(symbol, d) {
			return true
		}
	}
	return false
}

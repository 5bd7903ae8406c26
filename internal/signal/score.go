package signal

import (
	"math"

	"solana-momentum-lab/internal/domain"
)

// Sub-score caps. They sum to 100, and the total is capped there as well.
const (
	volumeScoreCap    = 45.0
	priceScoreCap     = 30.0
	liquidityScoreCap = 15.0
	marketCapBonus    = 10.0
)

// Market-cap sweet spot: mid-small caps are the most tradeable movers;
// extreme micro-caps and large-caps each get no bonus.
const (
	sweetSpotMinMC = 250_000.0
	sweetSpotMaxMC = 10_000_000.0
)

// Score computes the total momentum score for a snapshot along with the
// contributing factors. Each sub-score is a monotonic step function of a
// ratio or percentage, independently capped before summation, so one extreme
// outlier cannot dominate the total. The function is pure: same input yields
// the same output, and no shared state is touched.
func Score(s *domain.TokenSnapshot) (float64, []domain.Factor) {
	volumeRatio := 0.0
	liquidityRatio := 0.0
	if s.MarketCapUSD > 0 {
		volumeRatio = s.Volume24hUSD / s.MarketCapUSD
		liquidityRatio = s.LiquidityUSD / s.MarketCapUSD
	}
	priceMove := math.Abs(s.PriceChange24hPct)

	factors := []domain.Factor{
		{Name: domain.FactorVolumeMomentum, Value: volumeRatio, Score: volumeScore(volumeRatio)},
		{Name: domain.FactorPriceMomentum, Value: priceMove, Score: priceScore(priceMove)},
		{Name: domain.FactorLiquidity, Value: liquidityRatio, Score: liquidityScore(liquidityRatio)},
		{Name: domain.FactorMarketCapBand, Value: s.MarketCapUSD, Score: marketCapScore(s.MarketCapUSD)},
	}

	total := 0.0
	for _, f := range factors {
		total += f.Score
	}
	if total > 100 {
		total = 100
	}
	return total, factors
}

// volumeScore buckets volume/marketCap. Dominant weight: turnover above the
// market cap is the strongest anomaly the scanner can observe in 24h data.
func volumeScore(ratio float64) float64 {
	switch {
	case ratio >= 2.0:
		return volumeScoreCap
	case ratio >= 1.0:
		return 40
	case ratio >= 0.5:
		return 30
	case ratio >= 0.25:
		return 20
	case ratio >= 0.1:
		return 10
	default:
		return 0
	}
}

// priceScore buckets the absolute 24h price change percentage.
func priceScore(changePct float64) float64 {
	switch {
	case changePct >= 100:
		return priceScoreCap
	case changePct >= 50:
		return 25
	case changePct >= 25:
		return 20
	case changePct >= 10:
		return 12
	case changePct >= 5:
		return 6
	default:
		return 0
	}
}

// liquidityScore buckets liquidity/marketCap, rewarding tokens whose pool
// depth is proportionate to their size.
func liquidityScore(ratio float64) float64 {
	switch {
	case ratio >= 0.5:
		return liquidityScoreCap
	case ratio >= 0.2:
		return 12
	case ratio >= 0.1:
		return 8
	case ratio >= 0.05:
		return 4
	default:
		return 0
	}
}

// marketCapScore awards a flat bonus inside the sweet-spot band.
func marketCapScore(mc float64) float64 {
	if mc >= sweetSpotMinMC && mc <= sweetSpotMaxMC {
		return marketCapBonus
	}
	return 0
}

package signal

import (
	"fmt"
	"time"
)

// Config holds all eligibility thresholds and emission policy for the engine.
// An invalid Config is the only fatal error class: Validate is expected to be
// called once at startup, before any processing begins.
type Config struct {
	// Denylist contains symbols excluded from scoring entirely (base and
	// stable assets whose momentum is structurally different). Matching is
	// case-insensitive.
	Denylist []string

	// MinVolume24hUSD is the 24h volume floor below which a token signals
	// nothing meaningful.
	MinVolume24hUSD float64

	// MinMarketCapUSD / MaxMarketCapUSD bound the market capitalization band.
	// Too small implies unreliable pricing, too large implies the token is
	// not a mover candidate.
	MinMarketCapUSD float64
	MaxMarketCapUSD float64

	// MinPriceChangePct and MinVolumeMCRatio form an either-or gate: a token
	// passes when |priceChange24h| >= MinPriceChangePct OR
	// volume/marketCap >= MinVolumeMCRatio.
	MinPriceChangePct float64
	MinVolumeMCRatio  float64

	// MinLiquidityUSD is applied only when the provider reports a nonzero
	// liquidity figure.
	MinLiquidityUSD float64

	// MinScore is the minimum total score a candidate must reach to qualify.
	MinScore float64

	// Cooldown is the minimum time between two signals for the same token.
	Cooldown time.Duration

	// MaxSignalsPerCycle bounds the number of signals emitted per scan cycle.
	MaxSignalsPerCycle int

	// Strategy is the source strategy tag stamped on emitted signals.
	Strategy string
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		Denylist: []string{
			"SOL", "WSOL", "USDC", "USDT", "USDH", "DAI",
			"BTC", "WBTC", "ETH", "WETH", "MSOL", "STSOL", "JITOSOL", "BSOL",
		},
		MinVolume24hUSD:    100_000,
		MinMarketCapUSD:    100_000,
		MaxMarketCapUSD:    50_000_000,
		MinPriceChangePct:  20,
		MinVolumeMCRatio:   0.5,
		MinLiquidityUSD:    10_000,
		MinScore:           70,
		Cooldown:           24 * time.Hour,
		MaxSignalsPerCycle: 10,
		Strategy:           "volume-momentum",
	}
}

// Validate checks the configuration for values the engine cannot safely run with.
func (c Config) Validate() error {
	if c.MinVolume24hUSD < 0 {
		return fmt.Errorf("min volume must be >= 0, got %f", c.MinVolume24hUSD)
	}
	if c.MinMarketCapUSD < 0 {
		return fmt.Errorf("min market cap must be >= 0, got %f", c.MinMarketCapUSD)
	}
	if c.MaxMarketCapUSD <= c.MinMarketCapUSD {
		return fmt.Errorf("max market cap (%f) must exceed min market cap (%f)",
			c.MaxMarketCapUSD, c.MinMarketCapUSD)
	}
	if c.MinScore < 0 || c.MinScore > 100 {
		return fmt.Errorf("min score must be in [0, 100], got %f", c.MinScore)
	}
	if c.Cooldown <= 0 {
		return fmt.Errorf("cooldown must be positive, got %v", c.Cooldown)
	}
	if c.MaxSignalsPerCycle <= 0 {
		return fmt.Errorf("max signals per cycle must be positive, got %d", c.MaxSignalsPerCycle)
	}
	if c.Strategy == "" {
		return fmt.Errorf("strategy tag must not be empty")
	}
	return nil
}

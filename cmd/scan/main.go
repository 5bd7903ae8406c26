// Package main runs a single scan cycle: fetch the token universe, evaluate
// it and print the emitted signals. Useful for threshold tuning.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"solana-momentum-lab/internal/market"
	"solana-momentum-lab/internal/scanner"
	"solana-momentum-lab/internal/signal"
	"solana-momentum-lab/internal/storage/memory"
)

func main() {
	marketURL := flag.String("market-url", envOr("MARKET_API_URL", "https://public-api.birdeye.so"), "Market data API base URL")
	marketKey := flag.String("market-key", os.Getenv("MARKET_API_KEY"), "Market data API key")
	universeLimit := flag.Int("universe-limit", 100, "Tokens fetched for the cycle")
	minScore := flag.Float64("min-score", signal.DefaultConfig().MinScore, "Minimum signal score")
	maxSignals := flag.Int("max-signals", signal.DefaultConfig().MaxSignalsPerCycle, "Maximum signals per cycle")
	timeout := flag.Duration("timeout", 60*time.Second, "Overall cycle timeout")

	flag.Parse()

	logger := log.New(os.Stdout, "[scan] ", log.LstdFlags)

	cfg := signal.DefaultConfig()
	cfg.MinScore = *minScore
	cfg.MaxSignalsPerCycle = *maxSignals
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid signal config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	runner := scanner.NewRunner(scanner.Options{
		Fetcher:       market.NewClient(*marketURL, *marketKey),
		Engine:        signal.NewEngine(cfg, logger),
		SignalStore:   memory.NewSignalStore(),
		Logger:        logger,
		UniverseLimit: *universeLimit,
	})

	result, err := runner.RunCycle(ctx, time.Now())
	if err != nil {
		logger.Fatalf("Scan cycle failed: %v", err)
	}

	fmt.Printf("fetched=%d skipped=%d emitted=%d suppressed=%d\n",
		result.SnapshotsFetched, result.SnapshotsSkipped, result.SignalsEmitted, result.SignalsSuppressed)
}

// envOr returns the env var value or a fallback.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Package main runs a single reconciliation pass over a set of wallets and
// prints the recomputed stats.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"solana-momentum-lab/internal/chain"
	"solana-momentum-lab/internal/market"
	"solana-momentum-lab/internal/position"
	"solana-momentum-lab/internal/reconciler"
	"solana-momentum-lab/internal/storage"
	"solana-momentum-lab/internal/storage/memory"
	"solana-momentum-lab/internal/storage/migrations"
	pgstore "solana-momentum-lab/internal/storage/postgres"
)

func main() {
	marketURL := flag.String("market-url", envOr("MARKET_API_URL", "https://public-api.birdeye.so"), "Market data API base URL")
	marketKey := flag.String("market-key", os.Getenv("MARKET_API_KEY"), "Market data API key")
	chainURL := flag.String("chain-url", envOr("CHAIN_API_URL", "https://api.helius.xyz"), "Enhanced transactions API base URL")
	chainKey := flag.String("chain-key", os.Getenv("CHAIN_API_KEY"), "Enhanced transactions API key")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	wallets := flag.String("wallets", os.Getenv("TRACKED_WALLETS"), "Comma-separated wallet addresses to reconcile")
	txLimit := flag.Int("tx-limit", 100, "Transactions fetched per wallet")
	multiLot := flag.Bool("multi-lot", false, "Close multiple lots per sell during reconstruction")
	timeout := flag.Duration("timeout", 10*time.Minute, "Overall pass timeout")

	flag.Parse()

	logger := log.New(os.Stdout, "[reconcile] ", log.LstdFlags)

	walletList := splitList(*wallets)
	if len(walletList) == 0 {
		logger.Fatal("--wallets is required")
	}
	for _, w := range walletList {
		if err := chain.ValidateAddress(w); err != nil {
			logger.Fatalf("Invalid wallet %q: %v", w, err)
		}
	}
	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var txStore storage.WalletTransactionStore
	var statsStore storage.WalletStatsStore
	if *useMemory {
		txStore = memory.NewWalletTransactionStore()
		statsStore = memory.NewWalletStatsStore()
	} else {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("Failed to connect to postgres: %v", err)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatalf("Failed to run migrations: %v", err)
		}
		txStore = pgstore.NewWalletTransactionStore(pool)
		statsStore = pgstore.NewWalletStatsStore(pool)
	}

	marketClient := market.NewClient(*marketURL, *marketKey)
	engine := position.NewEngine(position.Config{MultiLotMatching: *multiLot}, logger)

	runner := reconciler.NewRunner(reconciler.Options{
		TxFetcher:    chain.NewClient(*chainURL, *chainKey),
		PriceFetcher: marketClient,
		Engine:       engine,
		TxStore:      txStore,
		StatsStore:   statsStore,
		Logger:       logger,
		Wallets:      walletList,
		TxLimit:      *txLimit,
	})

	succeeded, err := runner.RunPass(ctx)
	if err != nil {
		logger.Fatalf("Reconciliation pass failed: %v", err)
	}

	stats, err := statsStore.GetAll(ctx)
	if err != nil {
		logger.Fatalf("Failed to load stats: %v", err)
	}
	for _, s := range stats {
		fmt.Printf("%s trades=%d wins=%d winrate=%.1f%% pnl=%.2f best=%.2f worst=%.2f\n",
			s.Wallet, s.TotalTrades, s.WinningTrades, s.WinRate, s.TotalPnLUSD, s.BestTradeUSD, s.WorstTradeUSD)
	}

	fmt.Printf("reconciled %d/%d wallets\n", succeeded, len(walletList))
}

// splitList splits a comma-separated flag value into trimmed entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// envOr returns the env var value or a fallback.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

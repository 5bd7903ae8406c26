// Package main provides the unified service that runs both engines together:
// - Scanner (scheduled): fetch snapshots → evaluate → emit signals
// - Reconciler (scheduled + triggered): fetch wallet history → rebuild stats
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	ossignal "os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"solana-momentum-lab/internal/chain"
	"solana-momentum-lab/internal/market"
	"solana-momentum-lab/internal/observability"
	"solana-momentum-lab/internal/position"
	"solana-momentum-lab/internal/reconciler"
	"solana-momentum-lab/internal/scanner"
	"solana-momentum-lab/internal/signal"
	"solana-momentum-lab/internal/storage"
	chstore "solana-momentum-lab/internal/storage/clickhouse"
	"solana-momentum-lab/internal/storage/memory"
	"solana-momentum-lab/internal/storage/migrations"
	pgstore "solana-momentum-lab/internal/storage/postgres"
)

// Server holds all components of the unified service.
type Server struct {
	scanRunner      *scanner.Runner
	reconcileRunner *reconciler.Runner
	activitySub     *chain.ActivitySubscriber
	logger          *log.Logger

	mu      sync.Mutex
	started time.Time
}

// allStores holds all storage implementations.
type allStores struct {
	signalStore   storage.SignalStore
	txStore       storage.WalletTransactionStore
	statsStore    storage.WalletStatsStore
	snapshotStore storage.SnapshotStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	marketURL := flag.String("market-url", envOr("MARKET_API_URL", "https://public-api.birdeye.so"), "Market data API base URL")
	marketKey := flag.String("market-key", os.Getenv("MARKET_API_KEY"), "Market data API key")
	chainURL := flag.String("chain-url", envOr("CHAIN_API_URL", "https://api.helius.xyz"), "Enhanced transactions API base URL")
	chainKey := flag.String("chain-key", os.Getenv("CHAIN_API_KEY"), "Enhanced transactions API key")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("SOLANA_WS_ENDPOINT"), "Solana WebSocket endpoint for wallet activity (optional)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (optional, snapshot history)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	wallets := flag.String("wallets", os.Getenv("TRACKED_WALLETS"), "Comma-separated wallet addresses to reconcile")

	scanInterval := flag.Duration("scan-interval", 5*time.Minute, "Scan cycle interval")
	reconcileInterval := flag.Duration("reconcile-interval", 15*time.Minute, "Reconciliation pass interval")
	universeLimit := flag.Int("universe-limit", 100, "Tokens fetched per scan cycle")
	txLimit := flag.Int("tx-limit", 100, "Transactions fetched per wallet")
	minScore := flag.Float64("min-score", signal.DefaultConfig().MinScore, "Minimum signal score")
	cooldown := flag.Duration("cooldown", signal.DefaultConfig().Cooldown, "Per-token signal cooldown")
	maxSignals := flag.Int("max-signals", signal.DefaultConfig().MaxSignalsPerCycle, "Maximum signals per cycle")
	multiLot := flag.Bool("multi-lot", false, "Close multiple lots per sell during reconstruction")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	walletList := splitList(*wallets)
	for _, w := range walletList {
		if err := chain.ValidateAddress(w); err != nil {
			logger.Fatalf("Invalid tracked wallet %q: %v", w, err)
		}
	}

	signalCfg := signal.DefaultConfig()
	signalCfg.MinScore = *minScore
	signalCfg.Cooldown = *cooldown
	signalCfg.MaxSignalsPerCycle = *maxSignals
	if err := signalCfg.Validate(); err != nil {
		logger.Fatalf("Invalid signal config: %v", err)
	}

	positionCfg := position.Config{MultiLotMatching: *multiLot}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Clients
	marketClient := market.NewClient(*marketURL, *marketKey)
	chainClient := chain.NewClient(*chainURL, *chainKey)

	// Signal engine with cooldown state reloaded from persisted history
	signalEngine := signal.NewEngine(signalCfg, log.New(os.Stdout, "[signal] ", log.LstdFlags))
	since := time.Now().Add(-signalCfg.Cooldown).UnixMilli()
	emissions, err := stores.signalStore.RecentEmissions(ctx, since)
	if err != nil {
		logger.Fatalf("Failed to reload cooldown state: %v", err)
	}
	signalEngine.LoadCooldowns(emissions)
	logger.Printf("Reloaded cooldown state for %d tokens", len(emissions))

	positionEngine := position.NewEngine(positionCfg, log.New(os.Stdout, "[position] ", log.LstdFlags))
	logger.Printf("Position matching policy: %s", positionCfg)

	server := &Server{
		scanRunner: scanner.NewRunner(scanner.Options{
			Fetcher:       marketClient,
			Engine:        signalEngine,
			SignalStore:   stores.signalStore,
			SnapshotStore: stores.snapshotStore,
			Logger:        log.New(os.Stdout, "[scanner] ", log.LstdFlags),
			Interval:      *scanInterval,
			UniverseLimit: *universeLimit,
		}),
		reconcileRunner: reconciler.NewRunner(reconciler.Options{
			TxFetcher:    chainClient,
			PriceFetcher: marketClient,
			Engine:       positionEngine,
			TxStore:      stores.txStore,
			StatsStore:   stores.statsStore,
			Logger:       log.New(os.Stdout, "[reconciler] ", log.LstdFlags),
			Wallets:      walletList,
			Interval:     *reconcileInterval,
			TxLimit:      *txLimit,
		}),
		logger:  logger,
		started: time.Now(),
	}

	// Wallet activity subscription is best-effort: without it the reconciler
	// still runs on its schedule.
	if *wsEndpoint != "" && len(walletList) > 0 {
		sub, err := chain.NewActivitySubscriber(ctx, *wsEndpoint, walletList, nil,
			log.New(os.Stdout, "[activity] ", log.LstdFlags))
		if err != nil {
			logger.Printf("Wallet activity subscription unavailable: %v", err)
		} else {
			server.activitySub = sub
			defer sub.Close()
		}
	}

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	ossignal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	// Start HTTP server
	go server.startHTTPServer(*metricsAddr)

	err = server.Run(ctx)
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates all required stores and runs migrations.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			signalStore:   memory.NewSignalStore(),
			txStore:       memory.NewWalletTransactionStore(),
			statsStore:    memory.NewWalletStatsStore(),
			snapshotStore: memory.NewSnapshotStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	stores := &allStores{
		signalStore: pgstore.NewSignalStore(pool),
		txStore:     pgstore.NewWalletTransactionStore(pool),
		statsStore:  pgstore.NewWalletStatsStore(pool),
	}
	cleanup := func() { pool.Close() }

	// ClickHouse is optional: snapshot history is an analytics aid.
	if clickhouseDSN != "" {
		chConn, err := chstore.NewConn(ctx, clickhouseDSN)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		if err := migrations.RunClickhouseMigrations(ctx, chConn); err != nil {
			chConn.Close()
			cleanup()
			return nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
		}
		stores.snapshotStore = chstore.NewSnapshotStore(chConn)
		cleanup = func() {
			chConn.Close()
			pool.Close()
		}
	}

	return stores, cleanup, nil
}

// Run starts both runners and blocks until ctx is done or one fails.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Println("Starting unified server...")

	errCh := make(chan error, 2)

	go func() {
		err := s.scanRunner.Run(ctx)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("scanner: %w", err)
		}
	}()

	go func() {
		var triggers <-chan string
		if s.activitySub != nil {
			triggers = s.activitySub.Activity()
		}
		err := s.reconcileRunner.Run(ctx, triggers)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("reconciler: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// startHTTPServer starts the HTTP server for health/metrics/status.
func (s *Server) startHTTPServer(addr string) {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.Handle("/metrics", observability.Handler())

	mux.HandleFunc("/status", s.handleStatus)

	s.logger.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		s.logger.Printf("HTTP server error: %v", err)
	}
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status  string    `json:"status"`
	Uptime  string    `json:"uptime"`
	Started time.Time `json:"started"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := StatusResponse{
		Status:  "running",
		Uptime:  time.Since(s.started).String(),
		Started: s.started,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
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

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

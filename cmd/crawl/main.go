package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"solana-pool-crawler/internal/observability"
	"solana-pool-crawler/internal/pipeline"
	"solana-pool-crawler/internal/raydium"
	"solana-pool-crawler/internal/retry"
	"solana-pool-crawler/internal/solana"
	"solana-pool-crawler/internal/storage"
	chstore "solana-pool-crawler/internal/storage/clickhouse"
	"solana-pool-crawler/internal/storage/csvstore"
	"solana-pool-crawler/internal/storage/migrations"
	pgstore "solana-pool-crawler/internal/storage/postgres"
)

func main() {
	// Parse flags
	endpoints := flag.String("endpoints", "", "Comma-separated Solana RPC HTTP endpoints")
	inputFile := flag.String("input", "input.csv", "CSV of token mint pairs to process")
	outputRoot := flag.String("output", "output", "Directory for the SIGNATURE, DATA and POOL tables")
	fromSlot := flag.Int64("from-slot", 0, "Start slot of the crawl range")
	toSlot := flag.Int64("to-slot", 0, "End slot of the crawl range")
	fromTime := flag.String("from-time", "", "Start time of the crawl range (RFC3339, used when slots are unset)")
	toTime := flag.String("to-time", "", "End time of the crawl range (RFC3339)")
	pageLimit := flag.Int("page-limit", 0, "Signatures per history page (default 1000, the RPC maximum)")
	workers := flag.Int("workers-per-endpoint", 0, "Decode workers per endpoint (default 2)")
	rpcTimeout := flag.Duration("rpc-timeout", 30*time.Second, "Timeout per RPC request")
	rpcRetries := flag.Int("rpc-retries", retry.DefaultMaxRetries, "Retries per RPC call after the first attempt")
	postgresDSN := flag.String("postgres-dsn", "", "Store records in PostgreSQL instead of CSV files")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "Store balance deltas in ClickHouse instead of the default backend")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[crawl] ", log.LstdFlags)

	// Start metrics server if enabled
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Handle shutdown signals with graceful timeout
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)

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

	err := run(ctx, logger, runOptions{
		endpoints:     splitEndpoints(*endpoints),
		inputFile:     *inputFile,
		outputRoot:    *outputRoot,
		fromSlot:      *fromSlot,
		toSlot:        *toSlot,
		fromTime:      *fromTime,
		toTime:        *toTime,
		pageLimit:     *pageLimit,
		workers:       *workers,
		rpcTimeout:    *rpcTimeout,
		rpcRetries:    *rpcRetries,
		postgresDSN:   *postgresDSN,
		clickhouseDSN: *clickhouseDSN,
	})

	done <- err
	cancel()

	if !cleanShutdown(err) {
		logger.Fatalf("Error: %v", err)
	}

	logger.Println("Shutdown complete")
}

type runOptions struct {
	endpoints     []string
	inputFile     string
	outputRoot    string
	fromSlot      int64
	toSlot        int64
	fromTime      string
	toTime        string
	pageLimit     int
	workers       int
	rpcTimeout    time.Duration
	rpcRetries    int
	postgresDSN   string
	clickhouseDSN string
}

func run(ctx context.Context, logger *log.Logger, opts runOptions) error {
	cfg := pipeline.Config{
		Endpoints:          opts.endpoints,
		OutputRoot:         opts.outputRoot,
		InputFile:          opts.inputFile,
		StartSlot:          opts.fromSlot,
		EndSlot:            opts.toSlot,
		PageLimit:          opts.pageLimit,
		WorkersPerEndpoint: opts.workers,
	}

	if opts.fromTime != "" {
		from, err := time.Parse(time.RFC3339, opts.fromTime)
		if err != nil {
			return fmt.Errorf("parse from-time: %w", err)
		}
		cfg.StartTime = from
	}
	if opts.toTime != "" {
		to, err := time.Parse(time.RFC3339, opts.toTime)
		if err != nil {
			return fmt.Errorf("parse to-time: %w", err)
		}
		cfg.EndTime = to
	}

	// Create one RPC client per endpoint
	policy := retryPolicy(opts.rpcRetries)
	rpcs := make([]solana.RPCClient, len(opts.endpoints))
	for i, endpoint := range opts.endpoints {
		rpcs[i] = solana.NewHTTPClient(endpoint,
			solana.WithTimeout(opts.rpcTimeout),
			solana.WithRetryPolicy(policy),
		)
	}

	// Default backend: one CSV file per destination under the output root
	var (
		sigStore   storage.SignatureStore    = csvstore.NewSignatureStore(opts.outputRoot)
		deltaStore storage.BalanceDeltaStore = csvstore.NewBalanceDeltaStore(opts.outputRoot)
		poolStore  storage.PoolStore         = csvstore.NewPoolStore(opts.outputRoot)
	)

	if opts.postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, opts.postgresDSN)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return fmt.Errorf("run postgres migrations: %w", err)
		}

		sigStore = pgstore.NewSignatureStore(pool)
		deltaStore = pgstore.NewBalanceDeltaStore(pool)
		poolStore = pgstore.NewPoolStore(pool)
	}

	if opts.clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, opts.clickhouseDSN)
		if err != nil {
			return fmt.Errorf("run clickhouse migrations: %w", err)
		}
		defer conn.Close()

		deltaStore = chstore.NewBalanceDeltaStore(conn)
	}

	p, err := pipeline.New(cfg, pipeline.Options{
		RPCs:           rpcs,
		Pools:          raydium.NewClient(),
		SignatureStore: sigStore,
		DeltaStore:     deltaStore,
		PoolStore:      poolStore,
		Logger:         logger,
		OnProgress: func(completed, total int64) {
			if completed%500 == 0 || completed == total {
				logger.Printf("Decoded %d/%d transactions", completed, total)
			}
		},
	})
	if err != nil {
		return err
	}

	result, err := p.Run(ctx)
	if result != nil {
		logger.Printf("Run complete: %d pairs (%d failed), %d pools, %d signatures stored (%d duplicate), %d swaps decoded (%d non-swap, %d not found, %d failed)",
			result.Pairs, result.PairsFailed, result.PoolsDiscovered,
			result.SignaturesStored, result.SignatureDuplicates,
			result.Decoded, result.NonSwap, result.NotFound, result.DecodeFailed)
	}
	return err
}

// retryPolicy builds the shared RPC backoff schedule with the configured
// attempt cap. Non-positive values fall back to the default.
func retryPolicy(maxRetries int) retry.Policy {
	p := retry.DefaultPolicy()
	if maxRetries > 0 {
		p.MaxRetries = maxRetries
	}
	return p
}

// cleanShutdown reports whether err means the run finished or was cancelled
// by a signal. Cancellation usually surfaces wrapped by the component that
// observed it, so an identity check is not enough.
func cleanShutdown(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

// splitEndpoints parses the comma-separated endpoint list.
func splitEndpoints(s string) []string {
	var endpoints []string
	for _, e := range strings.Split(s, ",") {
		e = strings.TrimSpace(e)
		if e != "" {
			endpoints = append(endpoints, e)
		}
	}
	return endpoints
}

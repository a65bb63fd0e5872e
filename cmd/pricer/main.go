package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/BenTyson/brickx/internal/aggregate"
	"github.com/BenTyson/brickx/internal/api"
	"github.com/BenTyson/brickx/internal/config"
	"github.com/BenTyson/brickx/internal/database"
	"github.com/BenTyson/brickx/internal/oauth1"
	"github.com/BenTyson/brickx/internal/ratelimit"
	"github.com/BenTyson/brickx/internal/refresh"
	"github.com/BenTyson/brickx/internal/source"
	"github.com/BenTyson/brickx/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/pricer.local.yaml", "path to config file")
	sets := flag.String("sets", "", "comma-separated set ids (default: all sets with observations)")
	aggregateOnly := flag.Bool("aggregate-only", false, "skip fetching, recompute market values from stored observations")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting pricer",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database
	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger.Info("database connected")

	store := database.NewStore(pool, logger)

	var setIDs []string
	if *sets != "" {
		for _, id := range strings.Split(*sets, ",") {
			if id = strings.TrimSpace(id); id != "" {
				setIDs = append(setIDs, id)
			}
		}
	}

	if !*aggregateOnly {
		fetchers := buildFetchers(cfg, logger)
		if len(fetchers) == 0 {
			logger.Error("no price sources configured, nothing to fetch")
			os.Exit(1)
		}

		refreshSets := setIDs
		if len(refreshSets) == 0 {
			refreshSets, err = store.ListSetIDs(ctx)
			if err != nil {
				logger.Error("failed to list sets", "error", err)
				os.Exit(1)
			}
		}

		refresher := refresh.New(
			refresh.Config{Limit: cfg.Refresh.Limit},
			fetchers,
			store,
			logger,
		)
		recorded, err := refresher.Run(ctx, refreshSets)
		if err != nil {
			logger.Error("refresh failed", "error", err, "recorded", recorded)
			os.Exit(1)
		}
	}

	orchestrator := aggregate.NewOrchestrator(
		aggregate.Config{BatchSize: cfg.Aggregate.BatchSize},
		store,
		logger,
	)
	written, err := orchestrator.Run(ctx, setIDs)
	if err != nil {
		logger.Error("aggregation failed", "error", err, "written", written)
		os.Exit(1)
	}

	logger.Info("pricer finished", "market_values_written", written)
}

// buildFetchers constructs an adapter per marketplace with complete
// credentials. Each client gets its own limiter sized to that upstream's
// published quota.
func buildFetchers(cfg *config.PricerConfig, logger *slog.Logger) []source.PriceFetcher {
	shared := []api.Option{
		api.WithTimeout(cfg.Client.Timeout),
		api.WithRetries(cfg.Client.MaxRetries, cfg.Client.RetryDelay),
		api.WithLogger(logger),
	}

	var fetchers []source.PriceFetcher

	if bl := cfg.Sources.BrickLink; bl.Enabled() {
		creds := oauth1.Credentials{
			ConsumerKey:    bl.ConsumerKey,
			ConsumerSecret: bl.ConsumerSecret,
			Token:          bl.Token,
			TokenSecret:    bl.TokenSecret,
		}
		opts := append([]api.Option{api.WithRateLimiter(ratelimit.NewBrickLinkLimiter())}, shared...)
		fetchers = append(fetchers, source.NewBrickLink(creds, opts...))
	}
	if be := cfg.Sources.BrickEconomy; be.Enabled() {
		opts := append([]api.Option{api.WithRateLimiter(ratelimit.NewBrickEconomyLimiter())}, shared...)
		fetchers = append(fetchers, source.NewBrickEconomy(be.APIKey, opts...))
	}
	if bo := cfg.Sources.BrickOwl; bo.Enabled() {
		opts := append([]api.Option{api.WithRateLimiter(ratelimit.NewBrickOwlLimiter())}, shared...)
		fetchers = append(fetchers, source.NewBrickOwl(bo.APIKey, opts...))
	}

	enabled := make([]string, 0, len(fetchers))
	for _, f := range fetchers {
		enabled = append(enabled, f.Source())
	}
	logger.Info("enabled price sources", "sources", enabled)

	return fetchers
}

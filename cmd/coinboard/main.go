package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/coinboard/coinboard/internal/cmc"
	"github.com/coinboard/coinboard/internal/config"
	"github.com/coinboard/coinboard/internal/database"
	"github.com/coinboard/coinboard/internal/poller"
	"github.com/coinboard/coinboard/internal/query"
	"github.com/coinboard/coinboard/internal/server"
	"github.com/coinboard/coinboard/internal/store"
	"github.com/coinboard/coinboard/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/coinboard.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting coinboard",
		"version", version.String(),
		"config", *configPath,
	)

	// Optional .env for local runs; config expands ${VAR} references.
	_ = godotenv.Load()

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"provider_url", cfg.Provider.BaseURL,
		"limit", cfg.Provider.Limit,
		"interval", cfg.Poller.Interval,
	)

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

	// Connect to database and ensure schema
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

	if err := database.EnsureSchema(ctx, pool); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	logger.Info("database ready")

	// Provider client
	client := cmc.NewClient(
		cfg.Provider.BaseURL,
		cfg.Provider.APIKey,
		cmc.WithLogger(logger),
		cmc.WithTimeout(cfg.Provider.Timeout),
	)

	coins := store.NewPostgres(pool)

	// Ingestion poller
	p := poller.New(poller.Config{
		Interval: cfg.Poller.Interval,
		Limit:    cfg.Provider.Limit,
		Convert:  cfg.Provider.Convert,
		Timeout:  cfg.Provider.Timeout,
	}, client, coins, logger)

	if err := p.Start(ctx); err != nil {
		logger.Error("failed to start poller", "error", err)
		os.Exit(1)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer stopCancel()
		p.Stop(stopCtx)
	}()

	// Read API
	queries := query.New(query.Config{
		TopN:          cfg.Query.TopN,
		HistoryWindow: cfg.Query.HistoryWindow,
	}, coins)

	handlers := server.NewHandlers(queries, pool, p, logger)
	srv := server.New(cfg.Server.Port, handlers, logger)
	srv.Start()

	logger.Info("coinboard running", "port", cfg.Server.Port)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	logger.Info("coinboard stopped")
}

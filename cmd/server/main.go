/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the schedule engine server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags, load .env, YAML config and environment
  2. Build the logger
  3. Open the SQLite store (runs migrations)
  4. Seed PTO settings on a new database, merge case-duplicate job codes
  5. Create API handler, backup syncer and trimester closer
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  --config    YAML config file (optional)
  --env-file  .env file (default: .env, missing is fine)
  --db        SQLite database path, overrides config
              Use ":memory:" for in-memory database
  --addr      Listen address, overrides config

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the trimester closer
  2. Stop accepting new connections
  3. Wait for active requests to complete (server.shutdown_timeout)
  4. Close database connection

EXAMPLES:
  ./server --db=./data/schedule.db
  ./server --config=schedule.yaml --addr=:3000
  SCHEDULEHQ_LOG_FORMAT=json ./server

SEE ALSO:
  - config/config.go: Configuration layers
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/schedulehq/schedule-engine/api"
	"github.com/schedulehq/schedule-engine/cloudsync"
	"github.com/schedulehq/schedule-engine/config"
	"github.com/schedulehq/schedule-engine/store/sqlite"
)

func main() {
	// Flags
	configPath := flag.String("config", "", "YAML config file")
	envFile := flag.String("env-file", ".env", "file with SCHEDULEHQ_* variables")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	flag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		logrus.WithError(err).Fatal("Failed to load env file")
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config")
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("Invalid config")
	}

	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to build logger")
	}

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}
	logger.Info("Server stopped")
}

func run(cfg *config.Config, logger *logrus.Logger) error {
	ctx := context.Background()

	// Initialize store
	if cfg.Database.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			return err
		}
	}
	store, err := sqlite.New(cfg.Database.Path, sqlite.WithLogger(logger))
	if err != nil {
		return err
	}
	defer store.Close()

	seeded, err := store.SeedSettings(ctx, cfg.Rules())
	if err != nil {
		return err
	}
	if seeded {
		logger.WithField("rules", cfg.Rules()).Info("Seeded PTO settings from config")
	}
	if _, err := store.NormalizeJobCodes(ctx); err != nil {
		return err
	}

	// Initialize handler
	handler := api.NewHandler(store, logger)
	if cfg.Sync.BackupPath != "" {
		mirror := cloudsync.NewFileMirror(cfg.Sync.BackupPath)
		syncer := cloudsync.NewSyncer(store, mirror, cloudsync.Options{
			BatchSize: cfg.Sync.BatchSize,
			Timeout:   cfg.Sync.Timeout,
		}).WithLogger(logger)
		handler.WithSyncer(syncer)
	}

	closer := api.NewTrimesterCloser(store, handler.Accrual, logger)
	closer.CheckInterval = cfg.PTO.CloseCheckInterval
	closer.Start()
	defer closer.Stop()

	// Create server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewRouter(handler, cfg.Server.CORSOrigins),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serveErr := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"addr": cfg.Server.Addr,
			"db":   cfg.Database.Path,
		}).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		return err
	}

	logger.Info("Shutting down server...")
	closer.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

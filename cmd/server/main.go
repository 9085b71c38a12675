/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the roster scheduling engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and YAML config
  2. Configure logging
  3. Initialize SQLite store and seed default settings
  4. Wire the engine, handler, and router
  5. Start the quota scanner
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  YAML config file path (default: config.yaml, missing is fine)
  -port    HTTP server port (overrides config)
  -db      SQLite database path (overrides config)
           Use ":memory:" for an in-memory database

ENVIRONMENT:
  ROSTER_PORT, ROSTER_DB_PATH, ROSTER_LOG_LEVEL, ROSTER_SCANNER_ENABLED
  override the config file. A .env file is loaded if present.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the quota scanner
  4. Close database connection
  5. Exit

SEE ALSO:
  - config/config.go: Configuration loading
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/fleetops/roster-engine/api"
	"github.com/fleetops/roster-engine/config"
	"github.com/fleetops/roster-engine/roster"
	"github.com/fleetops/roster-engine/store/sqlite"
)

func main() {
	// .env is optional; real config comes from the YAML file and env vars
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "YAML config file path")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(level)
	}

	// Initialize store
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer store.Close()

	// Seed default settings on first run
	ctx := context.Background()
	if _, err := store.LoadSettings(ctx); errors.Is(err, roster.ErrNoSettings) {
		if err := store.SaveSettings(ctx, roster.DefaultSettings()); err != nil {
			log.WithError(err).Fatal("failed to seed default settings")
		}
		log.Info("seeded default settings")
	} else if err != nil {
		log.WithError(err).Fatal("failed to load settings")
	}

	// Wire the engine
	notifier := api.NewLogNotifier(log)
	engine := roster.NewEngine(store, store, store, notifier)

	handler := api.NewHandler(engine, store, store, log, time.Duration(cfg.Server.CacheTTLSeconds)*time.Second)
	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		RateLimitPerSec: cfg.Server.RateLimitPerSec,
		RateLimitBurst:  cfg.Server.RateLimitBurst,
	})

	// Quota scanner
	scanner := api.NewQuotaScanner(engine, store, log)
	scanner.Enabled = cfg.Scanner.Enabled
	if cfg.Scanner.Interval > 0 {
		scanner.CheckInterval = cfg.Scanner.Interval
	}
	scanner.Start()
	defer scanner.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server stopped")
}

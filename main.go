package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bankist/config"
	"bankist/handler"
	"bankist/model"
	"bankist/seed"
	"bankist/seed/pgseed"
	"bankist/session"
	"bankist/storage"

	"github.com/charmbracelet/log"
)

func main() {
	// Setup signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", "err", err)
	}
	setupLogger(cfg.Log)

	accounts, err := loadAccounts(ctx, cfg.Seed)
	if err != nil {
		log.Fatal("Failed to load seed accounts", "err", err)
	}

	store, err := storage.NewMemoryStore(accounts)
	if err != nil {
		log.Fatal("Failed to initialize store", "err", err)
	}
	log.Info("Accounts loaded", "count", len(accounts))

	sessions := session.NewManager(cfg.Session.TTL)

	server := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: handler.NewRouter(store, sessions),
	}

	go func() {
		log.Info("Starting server", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe error", "err", err)
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server shutdown failed", "err", err)
	}

	log.Info("Server gracefully stopped")
}

func setupLogger(cfg config.LogConfig) {
	level, _ := cfg.ParseLevel()
	log.SetLevel(level)
	log.SetFormatter(cfg.Formatter())
	log.SetReportTimestamp(true)
	log.SetOutput(os.Stderr)
}

// loadAccounts reads the seed accounts once. The Postgres source is used only when a database URL is configured.
func loadAccounts(ctx context.Context, cfg config.SeedConfig) ([]model.Account, error) {
	if cfg.DatabaseURL == "" {
		log.Info("Using built-in seed accounts")
		return seed.Static{}.Accounts(ctx)
	}

	src, err := pgseed.NewPostgresSource(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	log.Info("Seed database connection established and schema initialized.")

	if cfg.InstallDefaults {
		installed, err := src.InstallDefaults(ctx, seed.DefaultAccounts())
		if err != nil {
			return nil, err
		}
		if installed {
			log.Info("Installed built-in accounts into empty seed database")
		}
	}
	return src.Accounts(ctx)
}

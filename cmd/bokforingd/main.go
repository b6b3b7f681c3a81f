package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tinoosan/bokforing/internal/bas"
	"github.com/tinoosan/bokforing/internal/config"
	"github.com/tinoosan/bokforing/internal/httpapi"
	"github.com/tinoosan/bokforing/internal/storage/memory"
	pgstore "github.com/tinoosan/bokforing/internal/storage/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// .env is a local-dev convenience; absence is not an error
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_FILE")
	if cfgPath == "" {
		cfgPath = "bokforing.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger := buildLogger(cfg.Log)
	slog.SetDefault(logger)

	opts := httpapi.Options{
		CompanyName:   cfg.Company.Name,
		OrgNumber:     cfg.Company.OrgNumber,
		ResultAccount: cfg.Ledger.ResultAccount,
	}

	var handler http.Handler
	var closeFn func()

	if dsn := cfg.Storage.DatabaseURL; dsn != "" {
		pg, err := pgstore.Open(ctx, dsn)
		if err != nil {
			logger.Error("failed to connect to postgres", "err", err)
			os.Exit(1)
		}
		closeFn = pg.Close
		if err := pg.Migrate(ctx); err != nil {
			logger.Error("migration failed", "err", err)
			os.Exit(1)
		}
		if cfg.Ledger.SeedBAS {
			seedBAS(ctx, logger, pg)
		}
		handler = httpapi.New(pg, pg, opts, logger).Handler()
		logger.Info("storage backend: postgres")
	} else {
		store := memory.New()
		if cfg.Ledger.SeedBAS {
			for _, a := range bas.Defaults() {
				store.SeedAccount(a)
			}
			logger.Info("seeded curated BAS chart", "accounts", len(bas.Defaults()))
		}
		handler = httpapi.New(store, store, opts, logger).Handler()
		logger.Info("storage backend: memory")
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("bokforing service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", "err", err)
		}
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}
	if closeFn != nil {
		closeFn()
	}
}

// seedBAS inserts the curated chart, skipping numbers that already exist.
func seedBAS(ctx context.Context, logger *slog.Logger, pg *pgstore.Store) {
	created := 0
	for _, a := range bas.Defaults() {
		if _, err := pg.CreateAccount(ctx, a); err == nil {
			created++
		}
	}
	if created > 0 {
		logger.Info("seeded curated BAS chart", "accounts", created)
	}
}

// parseLogLevel maps config values to slog.Leveler
func parseLogLevel(s string) slog.Leveler {
	switch s {
	case "DEBUG", "debug":
		return slog.LevelDebug
	case "WARN", "WARNING", "warn", "warning":
		return slog.LevelWarn
	case "ERROR", "ERR", "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildLogger(lc config.LogConfig) *slog.Logger {
	level := parseLogLevel(lc.Level)
	if lc.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	// default to JSON
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

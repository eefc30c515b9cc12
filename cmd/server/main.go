package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chanuka/integrity/backend/internal/analysis"
	"github.com/chanuka/integrity/backend/internal/config"
	"github.com/chanuka/integrity/backend/internal/logging"
	"github.com/chanuka/integrity/backend/internal/server"
	"github.com/chanuka/integrity/backend/internal/store"
)

// dataStore is the full store contract the server depends on.
type dataStore interface {
	analysis.DataProvider
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	st, err := buildStore(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to create store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			logger.Warn("closing store failed", "error", err)
		}
	}()

	analysisCfg := analysis.DefaultConfig()
	if cfg.Analysis.ActiveSponsorLimit > 0 {
		analysisCfg.ActiveSponsorLimit = cfg.Analysis.ActiveSponsorLimit
	}
	if cfg.Analysis.SponsorConcurrency > 0 {
		analysisCfg.SponsorConcurrency = cfg.Analysis.SponsorConcurrency
	}

	svc := analysis.NewService(st, analysisCfg, logger)
	apiHandlers := server.NewAPIHandlers(logger, svc)

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           server.StoreHealthService{Store: st},
		API:              apiHandlers,
		AllowedOrigins:   parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
		AllowCredentials: true,
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func buildStore(ctx context.Context, logger *slog.Logger, cfg config.Config) (dataStore, error) {
	if cfg.Store.URI == "" {
		logger.Warn("STORE_URI not set, using in-memory store; data will not persist")
		return store.NewMemoryStore(), nil
	}

	opts := store.Options{
		URI:            cfg.Store.URI,
		Database:       cfg.Store.Database,
		Username:       cfg.Store.Username,
		Password:       cfg.Store.Password,
		MaxConnections: cfg.Store.MaxConnections,
	}
	st, err := store.NewNeo4jStore(ctx, opts)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to store", "uri", cfg.Store.URI, "database", cfg.Store.Database)
	return st, nil
}

func parseAllowedOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	var origins []string
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}

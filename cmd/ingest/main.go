package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/chanuka/integrity/backend/internal/config"
	"github.com/chanuka/integrity/backend/internal/ingest"
	"github.com/chanuka/integrity/backend/internal/logging"
	"github.com/chanuka/integrity/backend/internal/store"
)

var errMissingDataset = errors.New("dataset not found")

func main() {
	var (
		datasetDir   = flag.String("dataset-dir", "./seed-data", "Directory containing sponsors.json and bills.json")
		sponsorsPath = flag.String("sponsors", "", "Path to sponsors.json (overrides dataset-dir)")
		billsPath    = flag.String("bills", "", "Path to bills.json (overrides dataset-dir)")
		workers      = flag.Int("workers", 4, "Number of concurrent workers for ingestion")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("component", "ingest")

	sponsorFile, billFile, err := resolveDatasetPaths(*datasetDir, *sponsorsPath, *billsPath)
	if err != nil {
		logger.Error("dataset resolution failed", "error", err)
		os.Exit(1)
	}

	sponsors, err := loadSponsorRecords(sponsorFile)
	if err != nil {
		logger.Error("failed to load sponsors", "error", err, "path", sponsorFile)
		os.Exit(1)
	}
	if len(sponsors) == 0 {
		logger.Error("sponsors dataset empty", "path", sponsorFile)
		os.Exit(1)
	}

	bills, err := loadBillRecords(billFile)
	if err != nil {
		logger.Error("failed to load bills", "error", err, "path", billFile)
		os.Exit(1)
	}
	if len(bills) == 0 {
		logger.Error("bills dataset empty", "path", billFile)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

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

	ingestor := ingest.NewBulkIngestor(st, *workers)

	start := time.Now()
	logger.Info("ingesting sponsors", "count", len(sponsors), "workers", *workers)
	if err := ingestor.IngestSponsors(ctx, sponsors); err != nil {
		logger.Error("sponsor ingestion failed", "error", err)
		os.Exit(1)
	}

	// Bills reference sponsors, so they load second.
	logger.Info("ingesting bills", "count", len(bills))
	if err := ingestor.IngestBills(ctx, bills); err != nil {
		logger.Error("bill ingestion failed", "error", err)
		os.Exit(1)
	}

	logger.Info("ingestion complete", "duration", time.Since(start).String(), "sponsors", len(sponsors), "bills", len(bills))
}

func resolveDatasetPaths(baseDir, sponsorsPath, billsPath string) (string, string, error) {
	resolve := func(explicitPath, fallbackFile string) (string, error) {
		if explicitPath != "" {
			if _, err := os.Stat(explicitPath); err != nil {
				return "", fmt.Errorf("stat %s: %w", explicitPath, err)
			}
			return explicitPath, nil
		}
		path := filepath.Join(baseDir, fallbackFile)
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s", errMissingDataset, path)
		}
		return path, nil
	}

	sponsorFile, err := resolve(sponsorsPath, "sponsors.json")
	if err != nil {
		return "", "", err
	}
	billFile, err := resolve(billsPath, "bills.json")
	if err != nil {
		return "", "", err
	}
	return sponsorFile, billFile, nil
}

func loadSponsorRecords(path string) ([]ingest.SponsorRecord, error) {
	var records []ingest.SponsorRecord
	if err := loadJSON(path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func loadBillRecords(path string) ([]ingest.BillRecord, error) {
	var records []ingest.BillRecord
	if err := loadJSON(path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func loadJSON(path string, target any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func buildStore(ctx context.Context, logger *slog.Logger, cfg config.Config) (*store.Neo4jStore, error) {
	if cfg.Store.URI == "" {
		return nil, fmt.Errorf("STORE_URI is required for ingestion")
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

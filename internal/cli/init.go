// Package cli wires configuration, storage and transports into the
// expenses subcommands.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/joho/godotenv"

	"expensetracker/internal/amqp"
	"expensetracker/internal/config"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/sheets"
	gsheet "expensetracker/internal/sheets/google"
	"expensetracker/internal/sheets/memory"
	"expensetracker/internal/storage"
	"expensetracker/internal/store"
)

// SetupLogger builds the application logger writing to out and makes it
// the slog default.
func SetupLogger(cfg *config.Config, out io.Writer) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: log.ComponentApp,
		Output:    out,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// A missing file is not an error.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads .env and the environment, then validates.
func LoadAndValidateConfig() (*config.Config, error) {
	LoadEnvFile()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OpenPersister returns the configured backing store and a close func.
func OpenPersister(cfg *config.Config) (store.Persister, func() error, error) {
	switch cfg.DataBackend {
	case config.BackendSQLite:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLiteDBPath, err)
		}
		return repo, repo.Close, nil
	default:
		return storage.NewJSONFile(cfg.DataFile), func() error { return nil }, nil
	}
}

// OpenStore opens the persister and loads the store from it.
func OpenStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (*store.Store, func() error, error) {
	p, closeFn, err := OpenPersister(cfg)
	if err != nil {
		return nil, nil, err
	}
	gen, err := core.NewIDGenerator(cfg.IDScheme)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	s := store.Open(ctx, p, logger, store.WithIDGenerator(gen))
	logger.Info("Expense store opened",
		log.FieldBackend, cfg.DataBackend,
		log.FieldCount, s.Len())
	return s, closeFn, nil
}

// NewPublisher connects to the broker when AMQP_URL is set. A nil client
// means events are disabled.
func NewPublisher(cfg *config.Config, logger *log.Logger) (*amqp.Client, error) {
	if !cfg.EventsEnabled() {
		logger.Info("Change events disabled, no AMQP_URL provided")
		return nil, nil
	}
	return amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
}

// NewExporter returns the Google Sheets exporter when a spreadsheet is
// configured and an in-memory one otherwise.
func NewExporter(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.Exporter, error) {
	if !cfg.SheetsEnabled() {
		logger.Info("Google Sheets disabled, exporting to memory")
		return memory.New(), nil
	}
	exporter, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleSheetName,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	}, logger)
	if err != nil {
		return nil, err
	}
	return exporter, nil
}

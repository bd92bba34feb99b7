// Package backend builds the transaction service for the configured
// storage backend.
package backend

import (
	"fmt"
	"log/slog"

	"pocketbudget/internal/amqp"
	"pocketbudget/internal/config"
	"pocketbudget/internal/services"
	"pocketbudget/internal/storage"
	"pocketbudget/internal/store"
	"pocketbudget/internal/store/memory"
)

type Type string

const (
	Memory Type = "memory"
	SQLite Type = "sqlite"
)

func (t Type) Valid() bool {
	return t == Memory || t == SQLite
}

// Result bundles the ready service with its cleanup function. Cleanup
// may be nil when the backend holds no resources.
type Result struct {
	Service *services.TransactionService
	Cleanup func() error
}

// Build creates the store for cfg.DataBackend, attaches the optional
// AMQP client, and wraps both in a transaction service.
func Build(cfg *config.Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	backendType := Type(cfg.DataBackend)
	if !backendType.Valid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	var st store.Store
	switch backendType {
	case SQLite:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize SQLite repository: %w", err)
		}
		st = repo
		logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
	case Memory:
		st = memory.New()
		logger.Info("Initialized memory backend")
	}

	// AMQP is optional: without it the periodic worker pass still
	// drains pending exports from the sqlite backend.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without export messages", "error", err)
		} else {
			amqpClient = client
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	svc := services.NewTransactionService(st, amqpClient)
	return &Result{Service: svc, Cleanup: svc.Close}, nil
}

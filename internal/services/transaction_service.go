// Package services orchestrates transaction operations across the
// configured store and the AMQP export pipeline.
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"pocketbudget/internal/amqp"
	"pocketbudget/internal/core"
	"pocketbudget/internal/store"
)

// TransactionService saves transactions locally first and publishes
// export messages best-effort. A broker outage never fails a request.
type TransactionService struct {
	store      store.Store
	amqpClient *amqp.Client
}

func NewTransactionService(s store.Store, amqpClient *amqp.Client) *TransactionService {
	return &TransactionService{
		store:      s,
		amqpClient: amqpClient,
	}
}

// FetchAll returns all transactions, most recent first.
func (s *TransactionService) FetchAll(ctx context.Context) ([]core.Transaction, error) {
	return s.store.FetchAll(ctx)
}

// Get returns a single transaction by id.
func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	return s.store.Get(ctx, id)
}

// Create validates and saves a transaction, then publishes a sync message.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	saved, err := s.store.Create(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	if err := s.publishSync(ctx, saved.ID, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", saved.ID, "error", err)
		// Transaction is saved locally; the periodic pass will retry.
	}

	return saved, nil
}

// Update rewrites a transaction's fields, then publishes a sync message.
func (s *TransactionService) Update(ctx context.Context, id string, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	if err := s.store.Update(ctx, id, tx); err != nil {
		return err
	}

	// Version 0 means "latest"; the worker reads the current row anyway.
	if err := s.publishSync(ctx, id, 0); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", id, "error", err)
	}

	return nil
}

// Delete removes a transaction, then publishes a delete message.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.publishDelete(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"id", id, "error", err)
	}

	return nil
}

func (s *TransactionService) publishSync(ctx context.Context, id string, version int64) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}
	return s.amqpClient.PublishSync(ctx, id, version)
}

func (s *TransactionService) publishDelete(ctx context.Context, id string) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping delete message")
		return nil
	}
	return s.amqpClient.PublishDelete(ctx, id)
}

// Close releases the store and AMQP connections.
func (s *TransactionService) Close() error {
	var errs []error

	if closer, ok := s.store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}

	return nil
}

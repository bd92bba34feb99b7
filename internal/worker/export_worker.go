// Package worker moves transactions from local storage to the external
// spreadsheet, driven by AMQP messages with a periodic pass as backup.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pocketbudget/internal/amqp"
	"pocketbudget/internal/core"
	"pocketbudget/internal/export"
	"pocketbudget/internal/storage"
	"pocketbudget/internal/store"
)

// Storage is the slice of the repository the worker needs.
type Storage interface {
	Get(ctx context.Context, id string) (core.Transaction, error)
	GetPendingExports(ctx context.Context, limit int) ([]storage.PendingExport, error)
	MarkExported(ctx context.Context, id string) error
	MarkExportError(ctx context.Context, id string) error
}

type ExportWorker struct {
	storage   Storage
	appender  export.RowAppender
	remover   export.RowRemover
	batchSize int
}

func NewExportWorker(st Storage, appender export.RowAppender, remover export.RowRemover, batchSize int) *ExportWorker {
	return &ExportWorker{
		storage:   st,
		appender:  appender,
		remover:   remover,
		batchSize: batchSize,
	}
}

// HandleMessage dispatches one queue message by kind.
func (w *ExportWorker) HandleMessage(ctx context.Context, msg *amqp.Message) error {
	switch msg.Kind {
	case amqp.KindSync:
		return w.handleSync(ctx, msg)
	case amqp.KindDelete:
		return w.handleDelete(ctx, msg)
	default:
		return fmt.Errorf("unknown message kind: %s", msg.Kind)
	}
}

func (w *ExportWorker) handleSync(ctx context.Context, msg *amqp.Message) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	tx, err := w.storage.Get(ctx, msg.ID)
	if errors.Is(err, store.ErrNotFound) {
		// Deleted between publish and consume; nothing to export.
		slog.WarnContext(ctx, "Transaction gone, skipping export", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	return w.exportTransaction(ctx, tx)
}

func (w *ExportWorker) handleDelete(ctx context.Context, msg *amqp.Message) error {
	slog.InfoContext(ctx, "Processing delete message", "id", msg.ID)

	if w.remover == nil {
		slog.WarnContext(ctx, "No row remover configured, skipping spreadsheet deletion",
			"id", msg.ID)
		return nil
	}

	if err := w.remover.Remove(ctx, msg.ID); err != nil {
		return fmt.Errorf("remove exported rows: %w", err)
	}
	return nil
}

// ProcessPendingExports exports rows still marked pending. This is the
// backup path for lost AMQP messages and broker downtime.
func (w *ExportWorker) ProcessPendingExports(ctx context.Context) error {
	return w.processPending(ctx, w.batchSize)
}

// StartupCheck drains a larger pending backlog once at worker startup.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	return w.processPending(ctx, w.batchSize*5)
}

func (w *ExportWorker) processPending(ctx context.Context, limit int) error {
	pending, err := w.storage.GetPendingExports(ctx, limit)
	if err != nil {
		return fmt.Errorf("get pending exports: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending exports", "count", len(pending))

	var exported, failed int
	for _, p := range pending {
		tx, err := w.storage.Get(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get pending transaction",
				"id", p.ID, "error", err)
			if markErr := w.storage.MarkExportError(ctx, p.ID); markErr != nil {
				slog.ErrorContext(ctx, "Failed to mark export error",
					"id", p.ID, "error", markErr)
			}
			failed++
			continue
		}

		if err := w.exportTransaction(ctx, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction",
				"id", p.ID, "error", err)
			failed++
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "Pending export pass completed",
		"total", len(pending),
		"exported", exported,
		"errors", failed)
	return nil
}

func (w *ExportWorker) exportTransaction(ctx context.Context, tx core.Transaction) error {
	ref, err := w.appender.Append(ctx, tx)
	if err != nil {
		if markErr := w.storage.MarkExportError(ctx, tx.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error",
				"id", tx.ID, "error", markErr)
		}
		return fmt.Errorf("append to spreadsheet: %w", err)
	}

	if err := w.storage.MarkExported(ctx, tx.ID); err != nil {
		// The row is exported; only the bookkeeping failed.
		slog.ErrorContext(ctx, "Failed to mark as exported", "id", tx.ID, "error", err)
	}

	slog.InfoContext(ctx, "Exported transaction",
		"id", tx.ID,
		"row_ref", ref,
		"title", tx.Title,
		"amount", tx.Amount)
	return nil
}

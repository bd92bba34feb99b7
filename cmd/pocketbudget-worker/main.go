package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"pocketbudget/internal/amqp"
	"pocketbudget/internal/cli"
	"pocketbudget/internal/export"
	exportgoogle "pocketbudget/internal/export/google"
	exportmem "pocketbudget/internal/export/memory"
	applog "pocketbudget/internal/log"
	"pocketbudget/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	logger.Info("Starting pocketbudget-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		appender export.RowAppender
		remover  export.RowRemover
	)
	if cfg.GoogleSpreadsheetID != "" {
		client, err := exportgoogle.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		appender, remover = client, client
		logger.Info("Google Sheets exporter initialized",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleSheetName)
	} else {
		mem := exportmem.New()
		appender, remover = mem, mem
		logger.Info("No GOOGLE_SPREADSHEET_ID provided, using in-memory exporter")
	}

	w := worker.NewExportWorker(repo, appender, remover, cfg.ExportBatchSize)

	// Drain anything missed while the worker was down.
	if err := w.StartupCheck(ctx); err != nil {
		logger.Error("Startup export check failed", "error", err)
	}

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		amqpClient = client
		defer amqpClient.Close()
	} else {
		logger.Info("No AMQP_URL provided, relying on the periodic pass only")
	}

	g, gctx := errgroup.WithContext(ctx)

	if amqpClient != nil {
		g.Go(func() error {
			err := amqpClient.ConsumeWithReconnect(gctx, func(msg *amqp.Message) error {
				return w.HandleMessage(gctx, msg)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(cfg.ExportInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := w.ProcessPendingExports(gctx); err != nil {
					logger.Error("Periodic export pass failed", "error", err)
				}
			}
		}
	})

	logger.Info("Worker running",
		"batch_size", cfg.ExportBatchSize,
		"interval", cfg.ExportInterval,
		"amqp_enabled", amqpClient != nil)

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

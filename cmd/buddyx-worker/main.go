package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"buddyx/internal/amqp"
	"buddyx/internal/config"
	applog "buddyx/internal/log"
	"buddyx/internal/sheets"
	gsheet "buddyx/internal/sheets/google"
	"buddyx/internal/sheets/memory"
	"buddyx/internal/storage"
	"buddyx/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: "buddyx-worker",
		JSON:      os.Getenv("LOG_FORMAT") == "json",
	})
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Without a spreadsheet ID the worker journals to memory, which keeps
	// local development working end to end.
	var writer sheets.BackupWriter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		writer = client
		logger.Info("Google Sheets backup target initialized",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleSheetName)
	} else {
		writer = memory.New()
		logger.Warn("No GOOGLE_SPREADSHEET_ID set, journaling to memory only")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	backupWorker := worker.NewBackupWorker(repo, writer, cfg.BackupBatchSize)

	// Drain whatever accumulated while the worker was down.
	if err := backupWorker.StartupCheck(ctx); err != nil {
		logger.Error("Startup backup check failed", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.Run(ctx, func(msg *amqp.TransactionSyncMessage) error {
			return backupWorker.HandleSyncMessage(ctx, msg)
		})
	})

	// Periodic pending scan recovers rows whose messages were lost.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.BackupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := backupWorker.ProcessPending(ctx); err != nil {
					logger.Error("Periodic backup scan failed", "error", err)
				}
			}
		}
	})

	logger.Info("Worker started",
		"queue", cfg.AMQPQueue,
		"batch_size", cfg.BackupBatchSize,
		"scan_interval", cfg.BackupInterval)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}

// Package worker mirrors transactions from SQLite to the spreadsheet
// journal. Messages arrive over AMQP; a periodic pending scan recovers rows
// whose messages were lost.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"buddyx/internal/amqp"
	"buddyx/internal/sheets"
	"buddyx/internal/storage"
)

type BackupWorker struct {
	storage   *storage.Repository
	writer    sheets.BackupWriter
	batchSize int
}

func NewBackupWorker(repo *storage.Repository, writer sheets.BackupWriter, batchSize int) *BackupWorker {
	return &BackupWorker{
		storage:   repo,
		writer:    writer,
		batchSize: batchSize,
	}
}

// HandleSyncMessage mirrors one transaction. Returning an error nacks the
// delivery for redelivery; deleted rows and duplicates are dropped silently.
func (w *BackupWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID, "version", msg.Version)
	return w.backup(ctx, msg.ID)
}

// ProcessPending mirrors one batch of rows still marked pending. This is the
// recovery path for lost messages.
func (w *BackupWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.PendingBackups(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending backups: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending backups", "count", len(pending))
	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.backup(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to back up transaction", "id", p.ID, "error", err)
		}
	}
	return nil
}

// StartupCheck drains the pending backlog accumulated while the worker was
// down, with a larger batch than the steady-state scan.
func (w *BackupWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.storage.PendingBackups(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending backups for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending backups found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending backups on startup", "count", len(pending))
	synced, failed := 0, 0
	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.backup(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to back up transaction during startup", "id", p.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup backup check completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)
	return nil
}

func (w *BackupWorker) backup(ctx context.Context, id int64) error {
	rec, err := w.storage.GetBackupRecord(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted between publish and consume; nothing to mirror.
		slog.WarnContext(ctx, "Transaction no longer exists, dropping backup", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get backup record %d: %w", id, err)
	}
	if rec.SyncStatus == "synced" {
		slog.DebugContext(ctx, "Transaction already backed up, skipping", "id", id, "version", rec.Version)
		return nil
	}

	ref, err := w.writer.Append(ctx, sheets.Row{
		Date:        rec.Date,
		Description: rec.Description,
		Category:    rec.Category,
		Amount:      rec.Amount,
		Username:    rec.Username,
	})
	if err != nil {
		if markErr := w.storage.MarkBackupError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark backup error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append to sheet: %w", err)
	}

	if err := w.storage.MarkBackedUp(ctx, id); err != nil {
		// The append succeeded; the pending scan will retry the mark.
		slog.ErrorContext(ctx, "Failed to mark as backed up", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Backed up transaction",
		"id", id,
		"version", rec.Version,
		"sheet_ref", ref)
	return nil
}

package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"buddyx/internal/amqp"
	"buddyx/internal/core"
	"buddyx/internal/sheets/memory"
	"buddyx/internal/storage"
)

func setup(t *testing.T) (*BackupWorker, *storage.Repository, *memory.Writer, int64) {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "buddyx.db"))
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	user, err := repo.CreateUser(context.Background(), "alice", "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	writer := memory.New()
	return NewBackupWorker(repo, writer, 10), repo, writer, user.ID
}

func seedTransaction(t *testing.T, repo *storage.Repository, userID int64) core.Transaction {
	t.Helper()
	d, err := core.ParseDate("2025-03-10")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	created, err := repo.CreateTransaction(context.Background(), userID, core.Transaction{
		Amount:      core.Money{Cents: -4500},
		Description: "Dinner",
		Category:    "Eating Out",
		Date:        d,
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	return created
}

func TestHandleSyncMessage_AppendsAndMarks(t *testing.T) {
	w, repo, writer, userID := setup(t)
	ctx := context.Background()
	txn := seedTransaction(t, repo, userID)

	msg := amqp.NewTransactionSyncMessage(txn.ID, 1)
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatalf("HandleSyncMessage: %v", err)
	}

	rows := writer.Rows()
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0]
	if row.Date != "2025-03-10" || row.Description != "Dinner" ||
		row.Category != "Eating Out" || row.Amount.Cents != -4500 || row.Username != "alice" {
		t.Fatalf("unexpected row: %+v", row)
	}

	pending, _ := repo.PendingBackups(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("row still pending after backup: %+v", pending)
	}
}

func TestHandleSyncMessage_DuplicateIsDropped(t *testing.T) {
	w, repo, writer, userID := setup(t)
	ctx := context.Background()
	txn := seedTransaction(t, repo, userID)

	msg := amqp.NewTransactionSyncMessage(txn.ID, 1)
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatalf("first HandleSyncMessage: %v", err)
	}
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatalf("redelivered HandleSyncMessage: %v", err)
	}

	if rows := writer.Rows(); len(rows) != 1 {
		t.Fatalf("duplicate delivery appended again: %d rows", len(rows))
	}
}

func TestHandleSyncMessage_MissingRowIsDropped(t *testing.T) {
	w, _, writer, _ := setup(t)

	msg := amqp.NewTransactionSyncMessage(99999, 1)
	if err := w.HandleSyncMessage(context.Background(), msg); err != nil {
		t.Fatalf("missing row should not error (no redelivery): %v", err)
	}
	if rows := writer.Rows(); len(rows) != 0 {
		t.Fatalf("nothing should be appended, got %d rows", len(rows))
	}
}

func TestHandleSyncMessage_AppendFailureMarksError(t *testing.T) {
	w, repo, writer, userID := setup(t)
	ctx := context.Background()
	txn := seedTransaction(t, repo, userID)

	writer.FailNext = errors.New("sheets unavailable")
	msg := amqp.NewTransactionSyncMessage(txn.ID, 1)
	if err := w.HandleSyncMessage(ctx, msg); err == nil {
		t.Fatal("expected error so the delivery is requeued")
	}

	rec, err := repo.GetBackupRecord(ctx, txn.ID)
	if err != nil {
		t.Fatalf("GetBackupRecord: %v", err)
	}
	if rec.SyncStatus != "error" {
		t.Fatalf("sync status = %q, want error", rec.SyncStatus)
	}
}

func TestProcessPending_RecoversLostMessages(t *testing.T) {
	w, repo, writer, userID := setup(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		seedTransaction(t, repo, userID)
	}

	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}
	if rows := writer.Rows(); len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	// Second scan finds nothing to do.
	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("second ProcessPending: %v", err)
	}
	if rows := writer.Rows(); len(rows) != 3 {
		t.Fatalf("second scan re-appended rows: %d", len(rows))
	}
}

func TestStartupCheck_DrainsBacklog(t *testing.T) {
	w, repo, writer, userID := setup(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		seedTransaction(t, repo, userID)
	}

	if err := w.StartupCheck(ctx); err != nil {
		t.Fatalf("StartupCheck: %v", err)
	}
	if rows := writer.Rows(); len(rows) != 5 {
		t.Fatalf("got %d rows, want 5", len(rows))
	}
}

// Package services orchestrates ledger operations across SQLite and AMQP.
// The database write always comes first; the backup publish is best-effort
// and never fails the caller.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"buddyx/internal/core"
	"buddyx/internal/storage"
)

// SyncPublisher enqueues a backup request for one transaction version.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, id, version int64) error
}

type LedgerService struct {
	storage   *storage.Repository
	publisher SyncPublisher
}

// NewLedgerService wires storage and the backup publisher. A nil publisher
// disables backup publication (local-only mode).
func NewLedgerService(repo *storage.Repository, publisher SyncPublisher) *LedgerService {
	return &LedgerService{
		storage:   repo,
		publisher: publisher,
	}
}

// Storage exposes the repository for user, category and settings handlers.
func (s *LedgerService) Storage() *storage.Repository {
	return s.storage
}

// CreateTransaction validates, saves and queues the new row for backup.
func (s *LedgerService) CreateTransaction(ctx context.Context, userID int64, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.storage.CreateTransaction(ctx, userID, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.publishSync(ctx, created.ID, 1)
	return created, nil
}

// UpdateTransaction replaces a transaction wholesale and queues the new
// version for backup.
func (s *LedgerService) UpdateTransaction(ctx context.Context, userID int64, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}

	version, err := s.storage.UpdateTransaction(ctx, userID, t)
	if err != nil {
		return err
	}

	s.publishSync(ctx, t.ID, version)
	return nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, userID, id int64) error {
	return s.storage.DeleteTransaction(ctx, userID, id)
}

// ResetLedger clears every transaction for the user. Settings and categories
// survive a reset.
func (s *LedgerService) ResetLedger(ctx context.Context, userID int64) error {
	return s.storage.DeleteAllTransactions(ctx, userID)
}

// Snapshot loads a user's full ledger state into an in-memory Ledger with
// the requested view applied.
func (s *LedgerService) Snapshot(ctx context.Context, userID int64, filter core.TimeFilter, searchTerm string) (core.Ledger, error) {
	ledger := core.NewLedger()

	txns, err := s.storage.ListTransactions(ctx, userID)
	if err != nil {
		return ledger, fmt.Errorf("load transactions: %w", err)
	}
	if err := ledger.ReplaceTransactions(txns); err != nil {
		return ledger, fmt.Errorf("stored transactions: %w", err)
	}

	cats, err := s.storage.ListCategories(ctx, userID)
	if err != nil {
		return ledger, fmt.Errorf("load categories: %w", err)
	}
	ledger.ReplaceCategories(cats)

	settings, err := s.storage.GetSettings(ctx, userID)
	if err != nil {
		return ledger, fmt.Errorf("load settings: %w", err)
	}
	if err := ledger.SetSettings(settings); err != nil {
		return ledger, fmt.Errorf("stored settings: %w", err)
	}

	ledger.SetTimeFilter(filter)
	ledger.SetSearchTerm(searchTerm)
	return ledger, nil
}

func (s *LedgerService) publishSync(ctx context.Context, id, version int64) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Backup publisher not available, skipping sync message", "id", id)
		return
	}
	if err := s.publisher.PublishTransactionSync(ctx, id, version); err != nil {
		// The row stays sync_status=pending; the worker's pending scan
		// picks it up later.
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", id, "version", version, "error", err)
	}
}

func (s *LedgerService) Close() error {
	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			return fmt.Errorf("close storage: %w", err)
		}
	}
	return nil
}

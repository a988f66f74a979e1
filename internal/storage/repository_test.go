package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"buddyx/internal/core"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "buddyx.db"))
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustDate(t *testing.T, s string) core.Date {
	t.Helper()
	d, err := core.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func TestCreateUser_SeedsDefaultCategories(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u, err := repo.CreateUser(ctx, "alice", "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == 0 {
		t.Fatal("expected non-zero user ID")
	}

	cats, err := repo.ListCategories(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(cats) != len(DefaultCategories) {
		t.Fatalf("got %d seeded categories, want %d", len(cats), len(DefaultCategories))
	}

	if _, err := repo.CreateUser(ctx, "alice", "other"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("duplicate username: got %v, want ErrUsernameTaken", err)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	alice, _ := repo.CreateUser(ctx, "alice", "hash")
	bob, _ := repo.CreateUser(ctx, "bob", "hash")

	created, err := repo.CreateTransaction(ctx, alice.ID, core.Transaction{
		Amount:      core.Money{Cents: -120050},
		Description: "Monthly rent",
		Category:    "Rent",
		Date:        mustDate(t, "2025-03-01"),
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected assigned transaction ID")
	}

	// Scoped to the owner.
	if _, err := repo.GetTransaction(ctx, bob.ID, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-user get: got %v, want ErrNotFound", err)
	}

	created.Description = "March rent"
	created.Amount = core.Money{Cents: -125000}
	version, err := repo.UpdateTransaction(ctx, alice.ID, created)
	if err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	if version != 2 {
		t.Fatalf("version after update = %d, want 2", version)
	}

	got, err := repo.GetTransaction(ctx, alice.ID, created.ID)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got.Description != "March rent" || got.Amount.Cents != -125000 {
		t.Fatalf("update not applied: %+v", got)
	}

	if err := repo.DeleteTransaction(ctx, bob.ID, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-user delete: got %v, want ErrNotFound", err)
	}
	if err := repo.DeleteTransaction(ctx, alice.ID, created.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}

	txns, err := repo.ListTransactions(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txns) != 0 {
		t.Fatalf("got %d transactions after delete, want 0", len(txns))
	}
}

func TestDeleteAllTransactions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	alice, _ := repo.CreateUser(ctx, "alice", "hash")
	for i := 0; i < 3; i++ {
		if _, err := repo.CreateTransaction(ctx, alice.ID, core.Transaction{
			Amount:   core.Money{Cents: -100},
			Category: "Other",
			Date:     mustDate(t, "2025-03-01"),
		}); err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}

	if err := repo.DeleteAllTransactions(ctx, alice.ID); err != nil {
		t.Fatalf("DeleteAllTransactions: %v", err)
	}
	txns, _ := repo.ListTransactions(ctx, alice.ID)
	if len(txns) != 0 {
		t.Fatalf("got %d transactions after reset, want 0", len(txns))
	}
}

func TestCategories(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	alice, _ := repo.CreateUser(ctx, "alice", "hash")

	if err := repo.AddCategory(ctx, alice.ID, "Subscriptions"); err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	if err := repo.AddCategory(ctx, alice.ID, "Subscriptions"); !errors.Is(err, ErrDuplicateCategory) {
		t.Fatalf("duplicate add: got %v, want ErrDuplicateCategory", err)
	}
	if err := repo.RenameCategory(ctx, alice.ID, "Subscriptions", "Streaming"); err != nil {
		t.Fatalf("RenameCategory: %v", err)
	}
	if err := repo.RenameCategory(ctx, alice.ID, "Ghost", "Anything"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("rename missing: got %v, want ErrNotFound", err)
	}
	if err := repo.DeleteCategory(ctx, alice.ID, "Streaming"); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	alice, _ := repo.CreateUser(ctx, "alice", "hash")

	// No row yet: defaults come back.
	s, err := repo.GetSettings(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if s.Currency != "INR" || s.SavingsGoal.Cents != 0 || len(s.BudgetLimits) != 0 {
		t.Fatalf("unexpected defaults: %+v", s)
	}

	want := core.Settings{
		SavingsGoal: core.Money{Cents: 500000},
		Currency:    "EUR",
		BudgetLimits: map[string]core.Money{
			"Rent":       {Cents: 120000},
			"Eating Out": {Cents: 20000},
		},
	}
	if err := repo.SaveSettings(ctx, alice.ID, want); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	got, err := repo.GetSettings(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetSettings after save: %v", err)
	}
	if got.Currency != "EUR" || got.SavingsGoal.Cents != 500000 {
		t.Fatalf("settings not persisted: %+v", got)
	}
	if got.BudgetLimits["Rent"].Cents != 120000 || got.BudgetLimits["Eating Out"].Cents != 20000 {
		t.Fatalf("budget limits not persisted: %+v", got.BudgetLimits)
	}

	// Upsert overwrites wholesale.
	want.BudgetLimits = map[string]core.Money{"Travel": {Cents: 30000}}
	if err := repo.SaveSettings(ctx, alice.ID, want); err != nil {
		t.Fatalf("SaveSettings upsert: %v", err)
	}
	got, _ = repo.GetSettings(ctx, alice.ID)
	if len(got.BudgetLimits) != 1 || got.BudgetLimits["Travel"].Cents != 30000 {
		t.Fatalf("upsert did not replace limits: %+v", got.BudgetLimits)
	}
}

func TestBackupQueue(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	alice, _ := repo.CreateUser(ctx, "alice", "hash")

	created, err := repo.CreateTransaction(ctx, alice.ID, core.Transaction{
		Amount:      core.Money{Cents: -4500},
		Description: "Dinner",
		Category:    "Eating Out",
		Date:        mustDate(t, "2025-03-10"),
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	pending, err := repo.PendingBackups(ctx, 10)
	if err != nil {
		t.Fatalf("PendingBackups: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != created.ID || pending[0].Version != 1 {
		t.Fatalf("unexpected pending set: %+v", pending)
	}

	rec, err := repo.GetBackupRecord(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetBackupRecord: %v", err)
	}
	if rec.Username != "alice" || rec.Date != "2025-03-10" || rec.Amount.Cents != -4500 {
		t.Fatalf("unexpected backup record: %+v", rec)
	}

	if err := repo.MarkBackedUp(ctx, created.ID); err != nil {
		t.Fatalf("MarkBackedUp: %v", err)
	}
	pending, _ = repo.PendingBackups(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("still pending after MarkBackedUp: %+v", pending)
	}

	// Edits re-queue the row.
	created.Description = "Team dinner"
	if _, err := repo.UpdateTransaction(ctx, alice.ID, created); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	pending, _ = repo.PendingBackups(ctx, 10)
	if len(pending) != 1 || pending[0].Version != 2 {
		t.Fatalf("expected version 2 pending after edit: %+v", pending)
	}

	if err := repo.MarkBackupError(ctx, created.ID); err != nil {
		t.Fatalf("MarkBackupError: %v", err)
	}
	rec, _ = repo.GetBackupRecord(ctx, created.ID)
	if rec.SyncStatus != "error" {
		t.Fatalf("sync status = %q, want error", rec.SyncStatus)
	}
}

// Package storage persists users, transactions, categories and settings in
// SQLite. The database file is the source of truth; the Google Sheets backup
// is derived from it.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"buddyx/internal/core"

	_ "modernc.org/sqlite"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrDuplicateCategory = errors.New("category already exists")
)

// DefaultCategories seeds a fresh account.
var DefaultCategories = []string{
	"Eating Out", "Rent", "Travel", "Shopping", "Entertainment",
	"Transport", "Health", "Sports", "Gifts", "Salary", "Other",
}

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// BackupRecord carries everything the backup worker needs to append one
// transaction row to the spreadsheet.
type BackupRecord struct {
	ID          int64
	Version     int64
	Username    string
	Date        string
	Description string
	Category    string
	Amount      core.Money
	SyncStatus  string
}

// PendingBackup is the minimal shape queued for the worker.
type PendingBackup struct {
	ID        int64
	Version   int64
	CreatedAt time.Time
}

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- users ---

// CreateUser registers a user and seeds the default category list.
func (r *Repository) CreateUser(ctx context.Context, username, passwordHash string) (User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return User{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?)`,
		username, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrUsernameTaken
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, fmt.Errorf("user id: %w", err)
	}

	for _, name := range DefaultCategories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (user_id, name) VALUES (?, ?)`, id, name); err != nil {
			return User{}, fmt.Errorf("seed category %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return User{}, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "User registered", "id", id, "username", username)
	return User{ID: id, Username: username, PasswordHash: passwordHash}, nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`,
		username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

// --- transactions ---

func (r *Repository) CreateTransaction(ctx context.Context, userID int64, t core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, date, description, category, amount_cents)
		 VALUES (?, ?, ?, ?, ?)`,
		userID, t.Date.String(), t.Description, t.Category, t.Amount.Cents)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}
	t.ID = id

	slog.InfoContext(ctx, "Transaction saved",
		"id", id, "amount_cents", t.Amount.Cents, "category", t.Category)
	return t, nil
}

// UpdateTransaction replaces all editable fields, bumps the version and
// re-queues the row for backup. Returns the new version.
func (r *Repository) UpdateTransaction(ctx context.Context, userID int64, t core.Transaction) (int64, error) {
	var version int64
	err := r.db.QueryRowContext(ctx,
		`UPDATE transactions
		 SET date = ?, description = ?, category = ?, amount_cents = ?,
		     version = version + 1, sync_status = 'pending',
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?
		 RETURNING version`,
		t.Date.String(), t.Description, t.Category, t.Amount.Cents, t.ID, userID).
		Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("update transaction: %w", err)
	}
	return version, nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}

// DeleteAllTransactions clears a user's ledger.
func (r *Repository) DeleteAllTransactions(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete all transactions: %w", err)
	}
	slog.InfoContext(ctx, "Ledger cleared", "user_id", userID)
	return nil
}

func (r *Repository) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, description, category, amount_cents
		 FROM transactions WHERE user_id = ? ORDER BY date DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txns := []core.Transaction{}
	for rows.Next() {
		var (
			t       core.Transaction
			rawDate string
		)
		if err := rows.Scan(&t.ID, &rawDate, &t.Description, &t.Category, &t.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		d, err := core.ParseDate(rawDate)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", t.ID, err)
		}
		t.Date = d
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func (r *Repository) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	var (
		t       core.Transaction
		rawDate string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, date, description, category, amount_cents
		 FROM transactions WHERE id = ? AND user_id = ?`, id, userID).
		Scan(&t.ID, &rawDate, &t.Description, &t.Category, &t.Amount.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	d, err := core.ParseDate(rawDate)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, err)
	}
	t.Date = d
	return t, nil
}

// --- categories ---

func (r *Repository) ListCategories(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name FROM categories WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *Repository) AddCategory(ctx context.Context, userID int64, name string) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (user_id, name) VALUES (?, ?)`, userID, name); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCategory
		}
		return fmt.Errorf("add category: %w", err)
	}
	return nil
}

// RenameCategory renames the list entry only; existing transactions keep the
// old name and keep aggregating under it.
func (r *Repository) RenameCategory(ctx context.Context, userID int64, oldName, newName string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ? WHERE user_id = ? AND name = ?`,
		newName, userID, oldName)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCategory
		}
		return fmt.Errorf("rename category: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) DeleteCategory(ctx context.Context, userID int64, name string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE user_id = ? AND name = ?`, userID, name)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireRow(res)
}

// --- settings ---

// GetSettings returns stored settings, or the defaults when the user has
// never saved any.
func (r *Repository) GetSettings(ctx context.Context, userID int64) (core.Settings, error) {
	var (
		goalCents int64
		currency  string
		rawLimits string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT savings_goal_cents, currency, budget_limits FROM settings WHERE user_id = ?`,
		userID).Scan(&goalCents, &currency, &rawLimits)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultSettings(), nil
	}
	if err != nil {
		return core.Settings{}, fmt.Errorf("get settings: %w", err)
	}

	limits := map[string]int64{}
	if err := json.Unmarshal([]byte(rawLimits), &limits); err != nil {
		return core.Settings{}, fmt.Errorf("decode budget limits: %w", err)
	}
	s := core.Settings{
		SavingsGoal:  core.Money{Cents: goalCents},
		Currency:     currency,
		BudgetLimits: make(map[string]core.Money, len(limits)),
	}
	for name, cents := range limits {
		s.BudgetLimits[name] = core.Money{Cents: cents}
	}
	return s, nil
}

func (r *Repository) SaveSettings(ctx context.Context, userID int64, s core.Settings) error {
	limits := make(map[string]int64, len(s.BudgetLimits))
	for name, m := range s.BudgetLimits {
		limits[name] = m.Cents
	}
	rawLimits, err := json.Marshal(limits)
	if err != nil {
		return fmt.Errorf("encode budget limits: %w", err)
	}

	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (user_id, savings_goal_cents, currency, budget_limits)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		     savings_goal_cents = excluded.savings_goal_cents,
		     currency = excluded.currency,
		     budget_limits = excluded.budget_limits`,
		userID, s.SavingsGoal.Cents, s.Currency, string(rawLimits)); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// --- backup sync ---

// PendingBackups returns transactions not yet mirrored to the spreadsheet,
// oldest first.
func (r *Repository) PendingBackups(ctx context.Context, limit int) ([]PendingBackup, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, version, created_at FROM transactions
		 WHERE sync_status = 'pending' ORDER BY created_at LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending backups: %w", err)
	}
	defer rows.Close()

	pending := []PendingBackup{}
	for rows.Next() {
		var p PendingBackup
		if err := rows.Scan(&p.ID, &p.Version, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending backup: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// GetBackupRecord loads a transaction with its owner's username for the
// worker to append.
func (r *Repository) GetBackupRecord(ctx context.Context, id int64) (BackupRecord, error) {
	var rec BackupRecord
	err := r.db.QueryRowContext(ctx,
		`SELECT t.id, t.version, u.username, t.date, t.description, t.category,
		        t.amount_cents, t.sync_status
		 FROM transactions t JOIN users u ON u.id = t.user_id
		 WHERE t.id = ?`, id).
		Scan(&rec.ID, &rec.Version, &rec.Username, &rec.Date, &rec.Description,
			&rec.Category, &rec.Amount.Cents, &rec.SyncStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return BackupRecord{}, ErrNotFound
	}
	if err != nil {
		return BackupRecord{}, fmt.Errorf("get backup record: %w", err)
	}
	return rec, nil
}

func (r *Repository) MarkBackedUp(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = 'synced' WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark backed up: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as backed up", "id", id)
	return nil
}

func (r *Repository) MarkBackupError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = 'error' WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark backup error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with backup error", "id", id)
	return nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

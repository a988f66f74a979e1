package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidDate       = errors.New("invalid date")
	ErrMissingCategory   = errors.New("missing category")
	ErrNegativeLimit     = errors.New("budget limit cannot be negative")
	ErrNegativeGoal      = errors.New("savings goal cannot be negative")
	ErrEmptyCurrency     = errors.New("empty currency code")
	ErrDescriptionLength = errors.New("description too long (max 200 characters)")
)

type (
	// Date is a calendar date with no time-of-day semantics. All dates are
	// normalized to UTC midnight.
	Date struct {
		time.Time
	}

	// Transaction is one signed ledger entry. Amount > 0 is income,
	// Amount < 0 is expense; the sign is the only discriminator, there is
	// no separate type field.
	Transaction struct {
		ID          int64  `json:"id"`
		Amount      Money  `json:"amount"`
		Description string `json:"description"`
		Category    string `json:"category"`
		Date        Date   `json:"date"`
	}

	// Settings is the user-owned derivation configuration, re-supplied
	// wholesale on every load.
	Settings struct {
		SavingsGoal  Money            `json:"savings_goal"`
		BudgetLimits map[string]Money `json:"budget_limits"`
		Currency     string           `json:"currency"`
	}
)

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time to its calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t.UTC()}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// Equal compares two dates at calendar-date granularity.
func (d Date) Equal(other Date) bool {
	y1, m1, d1 := d.Date()
	y2, m2, d2 := other.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Validate enforces the store-boundary invariants: a real calendar date and
// a non-empty category. A zero amount is permitted; it contributes nothing
// to any derived sum. The description may be empty but is bounded.
func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrMissingCategory
	}
	if len(t.Description) > 200 {
		return ErrDescriptionLength
	}
	return nil
}

// IsIncome reports whether the transaction adds to the balance.
func (t Transaction) IsIncome() bool {
	return t.Amount.Cents > 0
}

// IsExpense reports whether the transaction deducts from the balance.
func (t Transaction) IsExpense() bool {
	return t.Amount.Cents < 0
}

// DefaultSettings returns the configuration of a fresh account.
func DefaultSettings() Settings {
	return Settings{
		BudgetLimits: map[string]Money{},
		Currency:     "INR",
	}
}

// Validate checks goal and per-category limits are non-negative and that a
// currency code is set. Any ISO 4217 code is accepted; formatting is a
// presentation concern.
func (s Settings) Validate() error {
	if s.SavingsGoal.Cents < 0 {
		return ErrNegativeGoal
	}
	for category, limit := range s.BudgetLimits {
		if limit.Cents < 0 {
			return fmt.Errorf("%w: %s", ErrNegativeLimit, category)
		}
	}
	if strings.TrimSpace(s.Currency) == "" {
		return ErrEmptyCurrency
	}
	return nil
}

// LimitFor returns the configured ceiling for a category. A missing entry
// means no limit, reported as zero.
func (s Settings) LimitFor(category string) Money {
	return s.BudgetLimits[category]
}

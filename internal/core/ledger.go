package core

import (
	"fmt"
	"time"
)

// Ledger is the authoritative snapshot of one user's transactions plus the
// derivation configuration. It is an explicit value, not an ambient
// singleton: callers build a fresh Ledger after every persistence
// round-trip, derive what they need, and discard it. Derive methods never
// mutate; mutations go through the explicit Set/Replace API and validate at
// the boundary so the pipeline below only ever sees well-formed records.
type Ledger struct {
	transactions []Transaction
	categories   []string
	settings     Settings
	searchTerm   string
	timeFilter   TimeFilter
}

// NewLedger builds a ledger with default settings and no transactions.
func NewLedger() Ledger {
	return Ledger{
		settings:   DefaultSettings(),
		timeFilter: FilterAll,
	}
}

// ReplaceTransactions swaps in a complete transaction list, the only way
// entries enter the store. Every record is validated; the first malformed
// record rejects the whole list and leaves the ledger unchanged.
func (l *Ledger) ReplaceTransactions(txns []Transaction) error {
	for i, t := range txns {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("transaction %d (id=%d): %w", i, t.ID, err)
		}
	}
	l.transactions = append([]Transaction(nil), txns...)
	return nil
}

// ReplaceCategories swaps in the user's category list. Categories absent
// from this list may still appear on transactions (orphans) and aggregate
// normally.
func (l *Ledger) ReplaceCategories(categories []string) {
	l.categories = append([]string(nil), categories...)
}

// SetSettings replaces the derivation configuration after validating it.
func (l *Ledger) SetSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.BudgetLimits == nil {
		s.BudgetLimits = map[string]Money{}
	}
	l.settings = s
	return nil
}

// SetSavingsGoal updates the single goal field.
func (l *Ledger) SetSavingsGoal(goal Money) error {
	if goal.Cents < 0 {
		return ErrNegativeGoal
	}
	l.settings.SavingsGoal = goal
	return nil
}

// SetBudgetLimits replaces the per-category ceilings.
func (l *Ledger) SetBudgetLimits(limits map[string]Money) error {
	for category, limit := range limits {
		if limit.Cents < 0 {
			return fmt.Errorf("%w: %s", ErrNegativeLimit, category)
		}
	}
	copied := make(map[string]Money, len(limits))
	for category, limit := range limits {
		copied[category] = limit
	}
	l.settings.BudgetLimits = copied
	return nil
}

// SetTimeFilter selects the active window for all derived views at once.
func (l *Ledger) SetTimeFilter(f TimeFilter) {
	l.timeFilter = f
}

// SetSearchTerm sets the free-text filter; empty means no text filtering.
func (l *Ledger) SetSearchTerm(term string) {
	l.searchTerm = term
}

// SetCurrency records the display currency code. The store does not
// interpret it.
func (l *Ledger) SetCurrency(code string) error {
	s := l.settings
	s.Currency = code
	if err := s.Validate(); err != nil {
		return err
	}
	l.settings = s
	return nil
}

// Reset clears the ledger to the empty state, as on logout.
func (l *Ledger) Reset() {
	*l = NewLedger()
}

// Transactions returns a copy of the full entry list in insertion order.
func (l Ledger) Transactions() []Transaction {
	return append([]Transaction(nil), l.transactions...)
}

// Categories returns a copy of the configured category list.
func (l Ledger) Categories() []string {
	return append([]string(nil), l.categories...)
}

// Settings returns the current derivation configuration.
func (l Ledger) Settings() Settings {
	s := l.settings
	s.BudgetLimits = make(map[string]Money, len(l.settings.BudgetLimits))
	for category, limit := range l.settings.BudgetLimits {
		s.BudgetLimits[category] = limit
	}
	return s
}

// TimeFilter returns the active window selector.
func (l Ledger) TimeFilter() TimeFilter {
	return l.timeFilter
}

// SearchTerm returns the active text filter.
func (l Ledger) SearchTerm() string {
	return l.searchTerm
}

// Active runs the filter pipeline over the stored list with the stored
// configuration, relative to referenceNow.
func (l Ledger) Active(referenceNow time.Time) []Transaction {
	return ActiveTransactions(l.transactions, l.searchTerm, l.timeFilter, referenceNow)
}

// Summary derives the full aggregate record for the active window.
func (l Ledger) Summary(referenceNow time.Time) Summary {
	return Summarize(l.Active(referenceNow), l.settings)
}

package core

import (
	"testing"
	"time"
)

func tx(id int64, cents int64, desc, category string, date Date) Transaction {
	return Transaction{
		ID:          id,
		Amount:      Money{Cents: cents},
		Description: desc,
		Category:    category,
		Date:        date,
	}
}

func TestParseTimeFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeFilter
		wantErr bool
	}{
		{"", FilterAll, false},
		{"All", FilterAll, false},
		{"day", FilterDay, false},
		{"WEEK", FilterWeek, false},
		{"Month", FilterMonth, false},
		{"year", FilterYear, false},
		{"fortnight", "", true},
	}

	for _, tt := range tests {
		got, err := ParseTimeFilter(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTimeFilter(%q) expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimeFilter(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTimeFilter(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestActiveTransactions_TimeWindows(t *testing.T) {
	now := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

	txns := []Transaction{
		tx(1, -500, "groceries", "Food", NewDate(2026, 3, 15)),  // today
		tx(2, -300, "bus pass", "Transport", NewDate(2026, 3, 10)), // 5 days ago
		tx(3, -200, "cinema", "Fun", NewDate(2026, 3, 8)),       // exactly 7 days ago
		tx(4, -100, "book", "Fun", NewDate(2026, 3, 1)),         // same month
		tx(5, 2000, "salary", "Salary", NewDate(2026, 1, 31)),   // same year
		tx(6, -900, "gift", "Gifts", NewDate(2025, 12, 25)),     // previous year
	}

	tests := []struct {
		name    string
		filter  TimeFilter
		wantIDs []int64
	}{
		{"all", FilterAll, []int64{1, 2, 3, 4, 5, 6}},
		{"day", FilterDay, []int64{1}},
		{"week inclusive bounds", FilterWeek, []int64{1, 2, 3}},
		{"month", FilterMonth, []int64{1, 2, 3, 4}},
		{"year", FilterYear, []int64{1, 2, 3, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ActiveTransactions(txns, "", tt.filter, now)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d transactions, want %d", len(got), len(tt.wantIDs))
			}
			for i, want := range tt.wantIDs {
				if got[i].ID != want {
					t.Errorf("position %d: got id %d, want %d", i, got[i].ID, want)
				}
			}
		})
	}
}

func TestActiveTransactions_Search(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	txns := []Transaction{
		tx(1, -500, "Monthly rent", "Rent", NewDate(2026, 3, 1)),
		tx(2, 2000, "Paycheck", "Salary", NewDate(2026, 3, 1)),
		tx(3, -50, "", "Rentals and tools", NewDate(2026, 3, 2)),
	}

	tests := []struct {
		name    string
		term    string
		wantIDs []int64
	}{
		{"empty term matches all", "", []int64{1, 2, 3}},
		{"case-insensitive category match", "rent", []int64{1, 3}},
		{"description match", "paycheck", []int64{2}},
		{"no match", "yacht", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ActiveTransactions(txns, tt.term, FilterAll, now)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d transactions, want %d", len(got), len(tt.wantIDs))
			}
			for i, want := range tt.wantIDs {
				if got[i].ID != want {
					t.Errorf("position %d: got id %d, want %d", i, got[i].ID, want)
				}
			}
		})
	}
}

func TestActiveTransactions_Idempotent(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	txns := []Transaction{
		tx(1, -500, "rent", "Rent", NewDate(2026, 3, 1)),
		tx(2, 2000, "salary", "Salary", NewDate(2026, 2, 1)),
		tx(3, -30, "coffee", "Food", NewDate(2026, 3, 15)),
	}

	once := ActiveTransactions(txns, "r", FilterMonth, now)
	twice := ActiveTransactions(once, "r", FilterMonth, now)

	if len(once) != len(twice) {
		t.Fatalf("filter not idempotent: %d vs %d entries", len(once), len(twice))
	}
	for i := range once {
		if once[i].ID != twice[i].ID {
			t.Errorf("position %d: %d vs %d", i, once[i].ID, twice[i].ID)
		}
	}
}

func TestActiveTransactions_PreservesOrder(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	// Deliberately out of date order; the pipeline must not re-sort.
	txns := []Transaction{
		tx(3, -30, "c", "X", NewDate(2026, 3, 12)),
		tx(1, -10, "a", "X", NewDate(2026, 3, 14)),
		tx(2, -20, "b", "X", NewDate(2026, 3, 13)),
	}

	got := ActiveTransactions(txns, "", FilterWeek, now)
	wantIDs := []int64{3, 1, 2}
	for i, want := range wantIDs {
		if got[i].ID != want {
			t.Errorf("position %d: got id %d, want %d", i, got[i].ID, want)
		}
	}
}

func TestActiveTransactions_DeterministicForFixedNow(t *testing.T) {
	txns := []Transaction{
		tx(1, -500, "rent", "Rent", NewDate(2026, 3, 1)),
	}
	ref := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)

	// Month window relative to an injected clock, not the wall clock: the
	// March transaction is out of an April window no matter when this runs.
	if got := ActiveTransactions(txns, "", FilterMonth, ref); len(got) != 0 {
		t.Errorf("expected empty active set for April reference, got %d", len(got))
	}
}

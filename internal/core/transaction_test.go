package core

import (
	"errors"
	"testing"
)

func TestTransactionValidate(t *testing.T) {
	valid := tx(1, -500, "dinner", "Food", NewDate(2026, 3, 1))

	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{"valid", func(t *Transaction) {}, nil},
		{"zero amount allowed", func(t *Transaction) { t.Amount = Money{} }, nil},
		{"empty description allowed", func(t *Transaction) { t.Description = "" }, nil},
		{"zero date", func(t *Transaction) { t.Date = Date{} }, ErrInvalidDate},
		{"missing category", func(t *Transaction) { t.Category = "  " }, ErrMissingCategory},
		{"oversized description", func(tr *Transaction) {
			for len(tr.Description) <= 200 {
				tr.Description += "x"
			}
		}, ErrDescriptionLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := valid
			tt.mutate(&entry)
			err := entry.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		wantErr  error
	}{
		{"defaults", DefaultSettings(), nil},
		{
			"negative goal",
			Settings{SavingsGoal: Money{Cents: -1}, Currency: "USD"},
			ErrNegativeGoal,
		},
		{
			"negative limit",
			Settings{BudgetLimits: map[string]Money{"Rent": {Cents: -100}}, Currency: "USD"},
			ErrNegativeLimit,
		},
		{
			"missing currency",
			Settings{Currency: " "},
			ErrEmptyCurrency,
		},
		{
			"any ISO code accepted",
			Settings{Currency: "JPY"},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDateParsingAndJSON(t *testing.T) {
	d, err := ParseDate("2026-03-15")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.Year() != 2026 || d.Month() != 3 || d.Day() != 15 {
		t.Errorf("parsed wrong date: %v", d)
	}

	if _, err := ParseDate("15/03/2026"); err == nil {
		t.Error("expected error for non-ISO date")
	}

	data, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(data) != `"2026-03-15"` {
		t.Errorf("marshaled as %s", data)
	}

	var back Date
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if !back.Equal(d) {
		t.Errorf("round trip changed date: %v -> %v", d, back)
	}
}

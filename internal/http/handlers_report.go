package http

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"buddyx/internal/core"
)

// handleReport streams the active window as CSV: a summary header followed
// by one row per transaction. Same query params as the dashboard.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	filter, err := core.ParseTimeFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	searchTerm := r.URL.Query().Get("q")

	ledger, err := s.service.Snapshot(r.Context(), userIDFrom(r.Context()), filter, searchTerm)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	now := time.Now()
	summary := ledger.Summary(now)
	active := ledger.Active(now)
	symbol := currencySymbol(ledger.Settings().Currency)

	filename := fmt.Sprintf("buddyx-report-%s-%s.csv", filter, now.Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	cw := csv.NewWriter(w)
	records := [][]string{
		{"Report Period", string(filter)},
		{"Generated", now.Format("2006-01-02")},
		{"Total Income", symbol + summary.TotalIncome.String()},
		{"Total Expenses", symbol + summary.TotalExpenses.String()},
		{"Balance", symbol + summary.Balance.String()},
		{},
		{"Date", "Description", "Category", "Amount"},
	}
	for _, t := range active {
		records = append(records, []string{
			t.Date.String(),
			t.Description,
			t.Category,
			t.Amount.String(),
		})
	}

	if err := cw.WriteAll(records); err != nil {
		// Headers are already out; nothing left to do but log.
		slog.ErrorContext(r.Context(), "Failed to stream report", "error", err)
	}
}

package http

import (
	"fmt"
	"net/http"
	"time"

	"buddyx/internal/core"
)

type dashboardResponse struct {
	Summary        core.Summary       `json:"summary"`
	Transactions   []core.Transaction `json:"transactions"`
	Categories     []string           `json:"categories"`
	Settings       core.Settings      `json:"settings"`
	Filter         core.TimeFilter    `json:"filter"`
	SearchTerm     string             `json:"searchTerm"`
	CurrencySymbol string             `json:"currencySymbol"`
}

// handleDashboard returns the aggregate record plus the raw active list in
// one call. Query params: filter (day|week|month|year|all) and q.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	filter, err := core.ParseTimeFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	searchTerm := r.URL.Query().Get("q")
	userID := userIDFrom(r.Context())

	// The reference clock is read once per request; the whole view derives
	// from it.
	now := time.Now()

	key := dashCacheKey(userID, filter, searchTerm, now)
	if cached, ok := s.dashCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached.(dashboardResponse))
		return
	}

	ledger, err := s.service.Snapshot(r.Context(), userID, filter, searchTerm)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	settings := ledger.Settings()
	resp := dashboardResponse{
		Summary:        ledger.Summary(now),
		Transactions:   ledger.Active(now),
		Categories:     ledger.Categories(),
		Settings:       settings,
		Filter:         filter,
		SearchTerm:     searchTerm,
		CurrencySymbol: currencySymbol(settings.Currency),
	}

	s.dashCache.SetDefault(key, resp)
	writeJSON(w, http.StatusOK, resp)
}

// The calendar date is part of the key so a cached view never leaks across
// midnight.
func dashCacheKey(userID int64, filter core.TimeFilter, term string, now time.Time) string {
	return fmt.Sprintf("dash:%d:%s:%s:%s", userID, filter, term, now.Format("2006-01-02"))
}

// currencySymbol maps the stored currency code to a display symbol, falling
// back to the code itself.
func currencySymbol(code string) string {
	switch code {
	case "INR":
		return "₹"
	case "USD":
		return "$"
	case "EUR":
		return "€"
	default:
		return code
	}
}

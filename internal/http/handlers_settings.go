package http

import (
	"net/http"

	"buddyx/internal/core"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.service.Storage().GetSettings(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// handleSaveSettings replaces the settings record wholesale, the way the
// client re-supplies it on every save.
func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var settings core.Settings
	if err := decodeJSON(r, &settings); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if settings.Currency == "" {
		settings.Currency = core.DefaultSettings().Currency
	}
	if err := settings.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}

	userID := userIDFrom(r.Context())
	if err := s.service.Storage().SaveSettings(r.Context(), userID, settings); err != nil {
		writeDomainError(w, err)
		return
	}

	s.invalidateDashboards(userID)
	writeJSON(w, http.StatusOK, settings)
}

package http

import (
	"net/http"
	"strconv"
	"strings"

	"buddyx/internal/core"
)

type transactionRequest struct {
	Amount      core.Money `json:"amount"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Date        core.Date  `json:"date"`
}

func (req transactionRequest) toTransaction(id int64) core.Transaction {
	return core.Transaction{
		ID:          id,
		Amount:      req.Amount,
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
		Date:        req.Date,
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	userID := userIDFrom(r.Context())
	created, err := s.service.CreateTransaction(r.Context(), userID, req.toTransaction(0))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.invalidateDashboards(userID)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	userID := userIDFrom(r.Context())
	if err := s.service.UpdateTransaction(r.Context(), userID, req.toTransaction(id)); err != nil {
		writeDomainError(w, err)
		return
	}

	s.invalidateDashboards(userID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	userID := userIDFrom(r.Context())
	if err := s.service.DeleteTransaction(r.Context(), userID, id); err != nil {
		writeDomainError(w, err)
		return
	}

	s.invalidateDashboards(userID)
	w.WriteHeader(http.StatusNoContent)
}

// handleResetLedger wipes every transaction for the user. Settings and the
// category list stay.
func (s *Server) handleResetLedger(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	if err := s.service.ResetLedger(r.Context(), userID); err != nil {
		writeDomainError(w, err)
		return
	}

	s.invalidateDashboards(userID)
	w.WriteHeader(http.StatusNoContent)
}

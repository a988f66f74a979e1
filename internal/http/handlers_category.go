package http

import (
	"net/http"
	"strings"
)

type categoryRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.service.Storage().ListCategories(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "category name required")
		return
	}

	userID := userIDFrom(r.Context())
	if err := s.service.Storage().AddCategory(r.Context(), userID, name); err != nil {
		writeDomainError(w, err)
		return
	}

	s.invalidateDashboards(userID)
	w.WriteHeader(http.StatusCreated)
}

// handleRenameCategory renames the list entry only; transactions keep the
// old name and keep aggregating under it.
func (s *Server) handleRenameCategory(w http.ResponseWriter, r *http.Request) {
	oldName := r.PathValue("name")

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	newName := strings.TrimSpace(req.Name)
	if newName == "" {
		writeError(w, http.StatusBadRequest, "category name required")
		return
	}

	userID := userIDFrom(r.Context())
	if err := s.service.Storage().RenameCategory(r.Context(), userID, oldName, newName); err != nil {
		writeDomainError(w, err)
		return
	}

	s.invalidateDashboards(userID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	if err := s.service.Storage().DeleteCategory(r.Context(), userID, r.PathValue("name")); err != nil {
		writeDomainError(w, err)
		return
	}

	s.invalidateDashboards(userID)
	w.WriteHeader(http.StatusNoContent)
}

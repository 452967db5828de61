package http

import (
	"net/http"
)

type categoryPayload struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.journal.Categories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var payload categoryPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	category, err := s.journal.CreateCategory(r.Context(), payload.Name, payload.Color)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.charts.Invalidate()
	writeJSON(w, http.StatusCreated, category)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var payload categoryPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	category, err := s.journal.UpdateCategory(r.Context(), r.PathValue("id"), payload.Name, payload.Color)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.charts.Invalidate()
	writeJSON(w, http.StatusOK, category)
}

func (s *Server) handleToggleCategory(w http.ResponseWriter, r *http.Request) {
	category, err := s.journal.ToggleCategory(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.journal.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.charts.Invalidate()
	writeJSON(w, http.StatusNoContent, nil)
}

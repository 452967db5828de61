package http

import (
	"net/http"
)

type pointPayload struct {
	Name       string `json:"name"`
	CategoryID string `json:"categoryId,omitempty"`
}

func (s *Server) handleListPoints(w http.ResponseWriter, r *http.Request) {
	points, err := s.journal.Points(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleCreatePoint(w http.ResponseWriter, r *http.Request) {
	var payload pointPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	point, err := s.journal.CreatePoint(r.Context(), payload.Name, payload.CategoryID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.charts.Invalidate()
	writeJSON(w, http.StatusCreated, point)
}

func (s *Server) handleRenamePoint(w http.ResponseWriter, r *http.Request) {
	var payload pointPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	point, err := s.journal.RenamePoint(r.Context(), r.PathValue("id"), payload.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.charts.Invalidate()
	writeJSON(w, http.StatusOK, point)
}

func (s *Server) handleDeletePoint(w http.ResponseWriter, r *http.Request) {
	if err := s.journal.DeletePoint(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.charts.Invalidate()
	writeJSON(w, http.StatusNoContent, nil)
}

package http

import (
	"net/http"
)

type recordDayPayload struct {
	Scores map[string]int `json:"ratings"`
}

func (s *Server) handleListRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := s.journal.ListRatings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ratings)
}

func (s *Server) handleRecordDay(w http.ResponseWriter, r *http.Request) {
	var payload recordDayPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	rating, err := s.journal.RecordDay(r.Context(), payload.Scores)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.charts.Invalidate()
	writeJSON(w, http.StatusCreated, rating)
}

func (s *Server) handleDeleteRating(w http.ResponseWriter, r *http.Request) {
	if err := s.journal.DeleteRating(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.charts.Invalidate()
	writeJSON(w, http.StatusNoContent, nil)
}

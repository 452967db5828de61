package http

import (
	"net/http"
)

func (s *Server) handleListTrash(w http.ResponseWriter, r *http.Request) {
	trash, err := s.journal.Trash(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trash)
}

func (s *Server) handlePurgeTrash(w http.ResponseWriter, r *http.Request) {
	if err := s.journal.PurgeTrashEntry(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.charts.Invalidate()
	writeJSON(w, http.StatusNoContent, nil)
}

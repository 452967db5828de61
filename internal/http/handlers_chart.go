package http

import (
	"net/http"
)

func (s *Server) handlePointChart(w http.ResponseWriter, r *http.Request) {
	filter, custom := parseChartQuery(r.URL.Query())
	series, err := s.charts.PointSummary(r.Context(), filter, custom)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func (s *Server) handleCategoryChart(w http.ResponseWriter, r *http.Request) {
	filter, custom := parseChartQuery(r.URL.Query())
	series, err := s.charts.CategorySummary(r.Context(), filter, custom)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func (s *Server) handleTrashChart(w http.ResponseWriter, r *http.Request) {
	series, err := s.charts.TrashSummary(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"diario/internal/core"
)

// errorBody is the JSON shape of every non-2xx response.
type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed",
			"error", err, "method", r.Method, "url", r.URL.Path)
		writeJSON(w, status, errorBody{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

// statusFor maps domain errors onto HTTP statuses: validation failures are
// 422, unknown ids 404, malformed requests 400, everything else 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrMissingCategory),
		errors.Is(err, core.ErrIncompleteDay),
		errors.Is(err, core.ErrScoreOutOfRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrUnknownCategory),
		errors.Is(err, core.ErrUnknownPoint),
		errors.Is(err, core.ErrUnknownRating),
		errors.Is(err, core.ErrUnknownTrashItem):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidDateRange),
		errors.Is(err, core.ErrMissingDateRange),
		errors.Is(err, errBadPayload):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

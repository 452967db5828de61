package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"diario/internal/cache"
	"diario/internal/services"
)

// Server wires the journal and chart services behind a JSON API.
type Server struct {
	http.Server
	journal *services.JournalService
	charts  *services.ChartService

	rateLimiter  *rateLimiter
	cacheManager *cache.Manager
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. The cache manager may be nil when no background sweep is
// wanted (tests).
func NewServer(addr string, journal *services.JournalService, charts *services.ChartService, requestsPerMinute int, mgr *cache.Manager) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:           addr,
			Handler:        mux,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 1 << 16,
		},
		journal:      journal,
		charts:       charts,
		rateLimiter:  newRateLimiter(requestsPerMinute),
		cacheManager: mgr,
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/categories", s.guard(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.guard(s.handleCreateCategory))
	mux.HandleFunc("PUT /api/categories/{id}", s.guard(s.handleUpdateCategory))
	mux.HandleFunc("POST /api/categories/{id}/toggle", s.guard(s.handleToggleCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.guard(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/points", s.guard(s.handleListPoints))
	mux.HandleFunc("POST /api/points", s.guard(s.handleCreatePoint))
	mux.HandleFunc("PUT /api/points/{id}", s.guard(s.handleRenamePoint))
	mux.HandleFunc("DELETE /api/points/{id}", s.guard(s.handleDeletePoint))

	mux.HandleFunc("GET /api/ratings", s.guard(s.handleListRatings))
	mux.HandleFunc("POST /api/ratings", s.guard(s.handleRecordDay))
	mux.HandleFunc("DELETE /api/ratings/{id}", s.guard(s.handleDeleteRating))

	mux.HandleFunc("GET /api/trash", s.guard(s.handleListTrash))
	mux.HandleFunc("DELETE /api/trash/{id}", s.guard(s.handlePurgeTrash))

	mux.HandleFunc("GET /api/charts/points", s.guard(s.handlePointChart))
	mux.HandleFunc("GET /api/charts/categories", s.guard(s.handleCategoryChart))
	mux.HandleFunc("GET /api/charts/trash", s.guard(s.handleTrashChart))

	return s
}

// guard adds request IDs, request logging, security headers and rate
// limiting for mutating methods.
func (s *Server) guard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown stops the cleanup goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"diario/internal/cache"
	"diario/internal/core"
	"diario/internal/services"
	"diario/internal/store/memory"
)

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	st := memory.New()
	journal := services.NewJournalService(st)
	charts := services.NewChartService(st, cache.NewLRUCache[core.ChartSeries](16, time.Minute))
	s := NewServer(":0", journal, charts, 1000, nil)
	t.Cleanup(func() { s.rateLimiter.stop() })
	return s, st
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealthEndpoints(t *testing.T) {
	s, _ := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, s, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestCategoryLifecycle(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/categories", map[string]string{"name": "Mind", "color": "#111"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}
	created := decodeBody[core.Category](t, rec)
	if created.ID == "" || created.Name != "Mind" {
		t.Fatalf("created = %+v", created)
	}

	rec = doJSON(t, s, http.MethodPut, "/api/categories/"+created.ID, map[string]string{"name": "Spirit", "color": "#222"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/categories/"+created.ID+"/toggle", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle status = %d", rec.Code)
	}
	toggled := decodeBody[core.Category](t, rec)
	if !toggled.Collapsed {
		t.Error("toggle should collapse the category")
	}

	rec = doJSON(t, s, http.MethodGet, "/api/categories", nil)
	list := decodeBody[[]core.Category](t, rec)
	if len(list) != 1 || list[0].Name != "Spirit" {
		t.Fatalf("list = %+v, want renamed single category", list)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/categories/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
}

func TestValidationStatusCodes(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"empty category name", http.MethodPost, "/api/categories", map[string]string{"name": "  "}, http.StatusUnprocessableEntity},
		{"point without category", http.MethodPost, "/api/points", map[string]string{"name": "Focus"}, http.StatusUnprocessableEntity},
		{"point with unknown category", http.MethodPost, "/api/points", map[string]string{"name": "Focus", "categoryId": "ghost"}, http.StatusNotFound},
		{"unknown category update", http.MethodPut, "/api/categories/ghost", map[string]string{"name": "X"}, http.StatusNotFound},
		{"unknown rating delete", http.MethodDelete, "/api/ratings/ghost", nil, http.StatusNotFound},
		{"unknown trash purge", http.MethodDelete, "/api/trash/ghost", nil, http.StatusNotFound},
		{"malformed body", http.MethodPost, "/api/categories", "not an object", http.StatusBadRequest},
		{"inverted custom range", http.MethodGet, "/api/charts/points?filter=custom&start=2024-06-15&end=2024-06-01", nil, http.StatusBadRequest},
		{"custom range missing dates", http.MethodGet, "/api/charts/categories?filter=custom", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestRecordDayOverHTTP(t *testing.T) {
	s, _ := newTestServer(t)

	cat := decodeBody[core.Category](t, doJSON(t, s, http.MethodPost, "/api/categories", map[string]string{"name": "Mind"}))
	p1 := decodeBody[core.Point](t, doJSON(t, s, http.MethodPost, "/api/points", map[string]string{"name": "Focus", "categoryId": cat.ID}))
	p2 := decodeBody[core.Point](t, doJSON(t, s, http.MethodPost, "/api/points", map[string]string{"name": "Energy", "categoryId": cat.ID}))

	rec := doJSON(t, s, http.MethodPost, "/api/ratings", map[string]any{
		"ratings": map[string]int{p1.ID: 8},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("incomplete day status = %d, want 422", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/ratings", map[string]any{
		"ratings": map[string]int{p1.ID: 8, p2.ID: 6},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("record status = %d, body %s", rec.Code, rec.Body)
	}
	rating := decodeBody[core.Rating](t, rec)
	if rating.Date == "" || len(rating.Scores) != 2 {
		t.Fatalf("rating = %+v", rating)
	}

	list := decodeBody[[]core.Rating](t, doJSON(t, s, http.MethodGet, "/api/ratings", nil))
	if len(list) != 1 {
		t.Fatalf("ratings listed = %d, want 1", len(list))
	}
}

func TestDeletePointFlowsIntoTrashAndCharts(t *testing.T) {
	s, st := newTestServer(t)
	ctx := context.Background()

	cat := decodeBody[core.Category](t, doJSON(t, s, http.MethodPost, "/api/categories", map[string]string{"name": "Mind"}))
	p := decodeBody[core.Point](t, doJSON(t, s, http.MethodPost, "/api/points", map[string]string{"name": "Focus", "categoryId": cat.ID}))

	err := st.SaveRatings(ctx, []core.Rating{
		{ID: "r1", Date: "2024-06-01", Scores: map[string]int{p.ID: 8}},
		{ID: "r2", Date: "2024-06-02", Scores: map[string]int{p.ID: 6}},
	})
	if err != nil {
		t.Fatalf("SaveRatings: %v", err)
	}

	rec := doJSON(t, s, http.MethodDelete, "/api/points/"+p.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	trash := decodeBody[[]core.TrashEntry](t, doJSON(t, s, http.MethodGet, "/api/trash", nil))
	if len(trash) != 1 || len(trash[0].Ratings) != 2 {
		t.Fatalf("trash = %+v, want one entry with two snapshots", trash)
	}

	series := decodeBody[core.ChartSeries](t, doJSON(t, s, http.MethodGet, "/api/charts/trash", nil))
	if series.Len() != 1 || series.Values[0] != 7 {
		t.Fatalf("trash chart = %+v, want average 7", series)
	}
}

func TestChartEndpointReflectsMutations(t *testing.T) {
	s, _ := newTestServer(t)

	cat := decodeBody[core.Category](t, doJSON(t, s, http.MethodPost, "/api/categories", map[string]string{"name": "Mind", "color": "#111"}))
	p := decodeBody[core.Point](t, doJSON(t, s, http.MethodPost, "/api/points", map[string]string{"name": "Focus", "categoryId": cat.ID}))

	doJSON(t, s, http.MethodPost, "/api/ratings", map[string]any{"ratings": map[string]int{p.ID: 8}})

	series := decodeBody[core.ChartSeries](t, doJSON(t, s, http.MethodGet, "/api/charts/points?filter=week", nil))
	if series.Len() != 1 || series.Values[0] != 8 {
		t.Fatalf("series = %+v, want Focus at 8", series)
	}

	// A second record must show up even though the first response was cached.
	doJSON(t, s, http.MethodPost, "/api/ratings", map[string]any{"ratings": map[string]int{p.ID: 6}})
	series = decodeBody[core.ChartSeries](t, doJSON(t, s, http.MethodGet, "/api/charts/points?filter=week", nil))
	if series.Values[0] != 7 {
		t.Fatalf("value after second record = %v, want 7", series.Values[0])
	}
}

func TestRateLimitOnMutatingRequests(t *testing.T) {
	st := memory.New()
	journal := services.NewJournalService(st)
	charts := services.NewChartService(st, cache.NewLRUCache[core.ChartSeries](16, time.Minute))
	s := NewServer(":0", journal, charts, 2, nil)
	t.Cleanup(func() { s.rateLimiter.stop() })

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = doJSON(t, s, http.MethodPost, "/api/categories", map[string]string{"name": fmt.Sprintf("c%d", i)})
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("third mutation status = %d, want 429", last.Code)
	}

	// Reads stay unthrottled.
	rec := doJSON(t, s, http.MethodGet, "/api/categories", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("read status = %d, want 200", rec.Code)
	}
}

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/store"
	"sales-dashboard/internal/ui/templates"
)

func testConfig(t *testing.T) *config.Config {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return &config.Config{
		Database: config.DatabaseConfig{Path: "file:" + name + "?mode=memory&cache=shared"},
		Seed:     config.SeedConfig{Clients: 5, Sales: 40, RandomSeed: 7, OnEmpty: true},
		Logger:   config.LoggerConfig{Level: "error", Format: "text"},
		Security: config.SecurityConfig{
			EnableRateLimit: false,
			RateLimitRPS:    100,
			RateLimitBurst:  10,
			AllowedOrigins:  []string{"http://localhost:8050"},
			TrustedProxies:  []string{"127.0.0.1"},
		},
	}
}

func newTestServer(t *testing.T) (http.Handler, *store.Store) {
	t.Helper()
	cfg := testConfig(t)
	logger := observability.DiscardLogger()

	st, err := store.Open(cfg.Database, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	if err := seedIfEmpty(context.Background(), st, cfg.Seed, logger); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return newHandler(cfg, st, logger), st
}

func TestSeedIfEmpty(t *testing.T) {
	cfg := testConfig(t)
	logger := observability.DiscardLogger()
	st, err := store.Open(cfg.Database, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := seedIfEmpty(ctx, st, cfg.Seed, logger); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	first, err := st.Counts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if first.Sales != 40 || first.Clients != 5 {
		t.Fatalf("unexpected counts after seed: %+v", first)
	}

	cfg.Seed.Sales = 10
	if err := seedIfEmpty(ctx, st, cfg.Seed, logger); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	second, _ := st.Counts(ctx)
	if second != first {
		t.Errorf("populated store should be left alone, got %+v then %+v", first, second)
	}
}

func TestServer_Routes(t *testing.T) {
	handler, _ := newTestServer(t)

	tests := []struct {
		method      string
		path        string
		status      int
		contentType string
	}{
		{http.MethodGet, "/", http.StatusOK, "text/html"},
		{http.MethodGet, "/health", http.StatusOK, "application/json"},
		{http.MethodGet, "/admin/stats", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/report", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/products", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/clients", http.StatusOK, "application/json"},
		{http.MethodGet, "/export/sales.csv", http.StatusOK, "text/csv"},
		{http.MethodGet, "/export/sales.xlsx", http.StatusOK, "application/vnd.openxmlformats"},
		{http.MethodGet, "/sse/refresh", http.StatusOK, "text/event-stream"},
		{http.MethodGet, "/sse/table?page=2", http.StatusOK, "text/event-stream"},
		{http.MethodGet, "/nonexistent", http.StatusNotFound, ""},
		{http.MethodDelete, "/", http.StatusMethodNotAllowed, ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			if w.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, w.Code)
			}
			if tt.contentType != "" && !strings.HasPrefix(w.Header().Get("Content-Type"), tt.contentType) {
				t.Errorf("expected content type %s, got %q", tt.contentType, w.Header().Get("Content-Type"))
			}
			if w.Header().Get("X-Request-ID") == "" {
				t.Error("expected X-Request-ID header")
			}
		})
	}
}

func TestServer_ReportMatchesStats(t *testing.T) {
	handler, _ := newTestServer(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/report", nil))

	var resp struct {
		Data struct {
			RowCount int `json:"row_count"`
			KPIs     struct {
				TotalRevenue float64 `json:"total_revenue"`
			} `json:"kpis"`
		} `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if resp.Data.RowCount != 40 {
		t.Errorf("expected 40 rows, got %d", resp.Data.RowCount)
	}
	if resp.Data.KPIs.TotalRevenue <= 0 {
		t.Errorf("expected positive revenue, got %v", resp.Data.KPIs.TotalRevenue)
	}
}

func TestServer_ThemeIsPerBrowser(t *testing.T) {
	handler, _ := newTestServer(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/sse/theme", strings.NewReader("{}")))
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != templates.ThemeDark {
		t.Fatalf("expected dark theme cookie, got %+v", cookies)
	}

	dark := httptest.NewRequest(http.MethodGet, "/", nil)
	dark.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, dark)
	if !strings.Contains(w.Body.String(), `class="dark"`) {
		t.Error("browser holding the cookie should get the dark page")
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if strings.Contains(w.Body.String(), `class="dark"`) {
		t.Error("another browser should still get the light page")
	}
}

func TestServer_SecurityHeaders(t *testing.T) {
	handler, _ := newTestServer(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	for _, header := range []string{"X-Content-Type-Options", "X-Frame-Options", "Content-Security-Policy"} {
		if w.Header().Get(header) == "" {
			t.Errorf("expected %s header", header)
		}
	}
}

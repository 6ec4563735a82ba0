package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/ui/templates"
)

func (e testEnv) sse() *SSEHandlers {
	return NewSSEHandlers(e.analytics, e.catalog, observability.DiscardLogger())
}

// getWithSignals builds a GET request the way the browser sends signals,
// as JSON in the datastar query parameter.
func getWithSignals(target, signals string) *http.Request {
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return httptest.NewRequest(http.MethodGet, target+sep+"datastar="+url.QueryEscape(signals), nil)
}

func assertContains(t *testing.T, body string, want ...string) {
	t.Helper()
	for _, s := range want {
		if !strings.Contains(body, s) {
			t.Errorf("expected response to contain %q", s)
		}
	}
}

func assertNotContains(t *testing.T, body string, unwanted ...string) {
	t.Helper()
	for _, s := range unwanted {
		if strings.Contains(body, s) {
			t.Errorf("expected response not to contain %q", s)
		}
	}
}

func TestNewSSEHandlers(t *testing.T) {
	env := newTestEnv(t)
	logger := observability.DiscardLogger()

	h := NewSSEHandlers(env.analytics, env.catalog, logger)

	if h == nil {
		t.Fatal("NewSSEHandlers() returned nil")
	}
	if h.analytics != env.analytics || h.catalog != env.catalog || h.logger != logger {
		t.Error("NewSSEHandlers() should keep its dependencies")
	}
}

func TestSSEHandlers_HandleRefresh(t *testing.T) {
	h := newTestEnv(t).sse()

	w := httptest.NewRecorder()
	h.HandleRefresh(w, getWithSignals("/sse/refresh", `{"start":"2024-02-01","end":"2024-03-31","tablePage":4}`))

	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("expected text/event-stream, got %q", ct)
	}
	body := w.Body.String()
	assertContains(t, body,
		"event: datastar-patch-elements",
		"event: datastar-patch-signals",
		`id="kpi-cards"`,
		`id="sales-table"`,
		`"_report"`,
		`"tablePage":1`,
		"404.97€",
	)
	assertNotContains(t, body, `id="filters"`)
}

func TestSSEHandlers_HandleRefresh_InvalidFilterFallsBack(t *testing.T) {
	h := newTestEnv(t).sse()

	w := httptest.NewRecorder()
	h.HandleRefresh(w, getWithSignals("/sse/refresh", `{"start":"not-a-date"}`))

	assertContains(t, w.Body.String(), `id="kpi-cards"`, `"row_count":3`)
}

func TestSSEHandlers_HandleTable(t *testing.T) {
	h := newTestEnv(t).sse()

	tests := []struct {
		name    string
		target  string
		signals string
		want    []string
	}{
		{
			name:    "sort new column ascending",
			target:  "/sse/table?sort=amount",
			signals: `{"tableSort":"","tableDesc":false,"tablePage":1}`,
			want:    []string{`"tableSort":"amount"`, `"tableDesc":false`},
		},
		{
			name:    "sort same column flips",
			target:  "/sse/table?sort=amount",
			signals: `{"tableSort":"amount","tableDesc":false,"tablePage":1}`,
			want:    []string{`"tableSort":"amount"`, `"tableDesc":true`},
		},
		{
			name:    "page clamps to last page",
			target:  "/sse/table?page=9",
			signals: `{"tablePage":1}`,
			want:    []string{`"tablePage":1`},
		},
		{
			name:    "unknown column keeps id order",
			target:  "/sse/table?sort=colour",
			signals: `{}`,
			want:    []string{`"tableSort":""`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.HandleTable(w, getWithSignals(tt.target, tt.signals))

			body := w.Body.String()
			assertContains(t, body, `id="sales-table"`)
			assertContains(t, body, tt.want...)
		})
	}
}

func TestSSEHandlers_CreateProduct(t *testing.T) {
	env := newTestEnv(t)
	h := env.sse()

	req := jsonRequest(http.MethodPost, "/sse/products",
		`{"productName":"Webcam HD","productCategory":"Informatique","productPrice":"49.90"}`)
	w := httptest.NewRecorder()
	h.HandleCreateProduct(w, req)

	body := w.Body.String()
	assertContains(t, body,
		`id="product-table"`,
		"Webcam HD",
		"Produit #3 ajouté",
		`"productName":""`,
		`id="kpi-cards"`,
		`id="filters"`,
	)

	products, err := env.catalog.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) != 3 {
		t.Errorf("expected 3 products, got %d", len(products))
	}
}

func TestSSEHandlers_CreateProduct_Rejected(t *testing.T) {
	env := newTestEnv(t)
	h := env.sse()

	req := jsonRequest(http.MethodPost, "/sse/products",
		`{"productName":"Tondeuse","productCategory":"Jardin","productPrice":10}`)
	w := httptest.NewRecorder()
	h.HandleCreateProduct(w, req)

	body := w.Body.String()
	assertContains(t, body, `id="product-message"`, "CONSTRAINT_VIOLATION")
	assertNotContains(t, body, `id="product-table"`, `id="kpi-cards"`)

	products, _ := env.catalog.ListProducts(context.Background())
	if len(products) != 2 {
		t.Errorf("rejected create should not change the catalog, got %d products", len(products))
	}
}

func TestSSEHandlers_UpdateClient(t *testing.T) {
	env := newTestEnv(t)
	h := env.sse()

	req := jsonRequest(http.MethodPut, "/sse/clients",
		`{"clientId":2,"clientName":"Bruno Petit","clientEmail":"bruno.petit@example.com","clientCity":"Marseille"}`)
	w := httptest.NewRecorder()
	h.HandleUpdateClient(w, req)

	assertContains(t, w.Body.String(), "Client #2 modifié", "Marseille", `"clientId":0`)

	c, err := env.catalog.GetClient(context.Background(), 2)
	if err != nil {
		t.Fatalf("get client: %v", err)
	}
	if c.City != "Marseille" || c.Email != "bruno.petit@example.com" {
		t.Errorf("client not updated: %+v", c)
	}
}

func TestSSEHandlers_UpdateWithoutSelection(t *testing.T) {
	h := newTestEnv(t).sse()

	req := jsonRequest(http.MethodPut, "/sse/products",
		`{"productId":0,"productName":"Casque","productCategory":"Audio","productPrice":10}`)
	w := httptest.NewRecorder()
	h.HandleUpdateProduct(w, req)

	assertContains(t, w.Body.String(), `id="product-message"`, "CONSTRAINT_VIOLATION")
}

func TestSSEHandlers_DeleteReferencedClient(t *testing.T) {
	env := newTestEnv(t)
	h := env.sse()

	req := httptest.NewRequest(http.MethodDelete, "/sse/clients/1", nil)
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()
	h.HandleDeleteClient(w, req)

	assertContains(t, w.Body.String(), `id="client-message"`, "REFERENTIAL_GAP")

	if _, err := env.catalog.GetClient(context.Background(), 1); err != nil {
		t.Errorf("referenced client should survive: %v", err)
	}
}

func TestSSEHandlers_DeleteProduct(t *testing.T) {
	h := newTestEnv(t).sse()

	req := httptest.NewRequest(http.MethodDelete, "/sse/products/2", nil)
	req.SetPathValue("id", "2")
	w := httptest.NewRecorder()
	h.HandleDeleteProduct(w, req)

	body := w.Body.String()
	assertContains(t, body, "Produit #2 supprimé", `id="product-table"`)
	assertNotContains(t, body, "Lampe LED</td>")
}

func TestSSEHandlers_EditAndCancel(t *testing.T) {
	h := newTestEnv(t).sse()

	req := httptest.NewRequest(http.MethodGet, "/sse/products/1/edit", nil)
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()
	h.HandleEditProduct(w, req)
	assertContains(t, w.Body.String(), `"productId":1`, `"productName":"Casque Audio"`, `"productPrice":149.99`)

	req = httptest.NewRequest(http.MethodGet, "/sse/clients/42/edit", nil)
	req.SetPathValue("id", "42")
	w = httptest.NewRecorder()
	h.HandleEditClient(w, req)
	assertContains(t, w.Body.String(), `id="client-message"`, "NOT_FOUND")

	w = httptest.NewRecorder()
	h.HandleCancelClient(w, httptest.NewRequest(http.MethodGet, "/sse/clients/cancel", nil))
	assertContains(t, w.Body.String(), `"clientName":""`, `"clientEmail":""`)
}

func TestSSEHandlers_HandleToggleTheme(t *testing.T) {
	h := newTestEnv(t).sse()

	toggle := func(current templates.Session) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/sse/theme", strings.NewReader("{}"))
		req = req.WithContext(templates.WithSession(req.Context(), current))
		w := httptest.NewRecorder()
		h.HandleToggleTheme(w, req)
		return w
	}

	w := toggle(templates.Session{Theme: templates.ThemeLight})
	assertContains(t, w.Body.String(), `"theme":"dark"`, `id="theme-toggle"`)
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != templates.ThemeCookie || cookies[0].Value != templates.ThemeDark {
		t.Fatalf("expected dark theme cookie, got %+v", cookies)
	}

	// A second browser still on light toggles independently.
	other := toggle(templates.Session{Theme: templates.ThemeLight})
	assertContains(t, other.Body.String(), `"theme":"dark"`)

	back := toggle(templates.Session{Theme: templates.ThemeDark})
	assertContains(t, back.Body.String(), `"theme":"light"`)
	if c := back.Result().Cookies(); len(c) != 1 || c[0].Value != templates.ThemeLight {
		t.Errorf("expected light theme cookie, got %+v", c)
	}
}

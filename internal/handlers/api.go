package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/export"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/store"
)

const (
	csvFilename  = "export_ventes.csv"
	xlsxFilename = "export_ventes.xlsx"
	xlsxMIME     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type APIHandlers struct {
	analytics *services.Analytics
	catalog   *services.Catalog
	store     *store.Store
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, catalog *services.Catalog, st *store.Store, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		catalog:   catalog,
		store:     st,
		logger:    logger,
	}
}

func (h *APIHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, h.logger, domainError(err), observability.GetRequestID(r.Context()))
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.fail(w, r, errors.ServiceUnavailable("database unreachable"))
		return
	}

	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.store.Counts(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	stats := h.analytics.Stats()
	stats["products"] = counts.Products
	stats["clients"] = counts.Clients
	stats["sales"] = counts.Sales

	errors.WriteSuccess(w, stats)
}

// HandleReport serves the aggregates for ?start=&end=&category=&city=.
// category and city may repeat.
func (h *APIHandlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := services.ParseFilter(q.Get("start"), q.Get("end"), q["category"], q["city"])
	if err != nil {
		h.fail(w, r, errors.BadRequestWrap(err, err.Error()))
		return
	}

	report, err := h.analytics.Report(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	errors.WriteSuccessWithHeaders(w, report, map[string]string{
		"Cache-Control": "no-cache",
	})
}

func (h *APIHandlers) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccess(w, products)
}

func (h *APIHandlers) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var p models.Product
	if err := decodeBody(r, &p); err != nil {
		h.fail(w, r, err)
		return
	}
	created, err := h.catalog.CreateProduct(r.Context(), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccessStatus(w, http.StatusCreated, created)
}

func (h *APIHandlers) HandleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var p models.Product
	if err := decodeBody(r, &p); err != nil {
		h.fail(w, r, err)
		return
	}
	updated, err := h.catalog.UpdateProduct(r.Context(), id, p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccess(w, updated)
}

func (h *APIHandlers) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccess(w, map[string]uint{"deleted": id})
}

func (h *APIHandlers) HandleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.catalog.ListClients(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccess(w, clients)
}

func (h *APIHandlers) HandleCreateClient(w http.ResponseWriter, r *http.Request) {
	var c models.Client
	if err := decodeBody(r, &c); err != nil {
		h.fail(w, r, err)
		return
	}
	created, err := h.catalog.CreateClient(r.Context(), c)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccessStatus(w, http.StatusCreated, created)
}

func (h *APIHandlers) HandleUpdateClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var c models.Client
	if err := decodeBody(r, &c); err != nil {
		h.fail(w, r, err)
		return
	}
	updated, err := h.catalog.UpdateClient(r.Context(), id, c)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccess(w, updated)
}

func (h *APIHandlers) HandleDeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.catalog.DeleteClient(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccess(w, map[string]uint{"deleted": id})
}

// HandleExportCSV streams the full, unfiltered sales view.
func (h *APIHandlers) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "text/csv; charset=utf-8", csvFilename, export.WriteCSV)
}

func (h *APIHandlers) HandleExportXLSX(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, xlsxMIME, xlsxFilename, export.WriteXLSX)
}

func (h *APIHandlers) export(w http.ResponseWriter, r *http.Request, contentType, filename string, write func(io.Writer, []models.SaleRow) error) {
	rows, err := h.analytics.Rows(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, rows); err != nil {
		h.fail(w, r, errors.InternalWrap(err, "export failed"))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Cache-Control", "no-store")
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("export write interrupted", "file", filename, "error", err)
		return
	}
	h.logger.Info("sales exported", "file", filename, "rows", len(rows))
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.BadRequestWrap(err, "invalid JSON body")
	}
	return nil
}

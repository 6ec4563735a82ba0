package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui/templates"
)

const renderTimeout = 10 * time.Second

type PageHandlers struct {
	analytics *services.Analytics
	catalog   *services.Catalog
	logger    *slog.Logger
}

func NewPageHandlers(analytics *services.Analytics, catalog *services.Catalog, logger *slog.Logger) *PageHandlers {
	return &PageHandlers{
		analytics: analytics,
		catalog:   catalog,
		logger:    logger,
	}
}

// HandleDashboard renders the full page. The dataset and both entity lists
// load concurrently, each on its own connection.
func (h *PageHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	var (
		rows     []models.SaleRow
		products []models.Product
		clients  []models.Client
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = h.analytics.Rows(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = h.catalog.ListProducts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		clients, err = h.catalog.ListClients(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "failed to load dashboard"), observability.GetRequestID(r.Context()))
		return
	}

	data := templates.PageData{
		Session:   templates.SessionFrom(r.Context()),
		Report:    services.Compute(rows, services.Filter{}),
		Options:   services.Options(rows),
		Table:     services.Paginate(rows, services.TableQuery{Page: 1}),
		Products:  products,
		Clients:   clients,
		UpdatedAt: time.Now(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if err := templates.Dashboard(data).Render(ctx, w); err != nil {
		h.logger.Error("render dashboard", "error", err)
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

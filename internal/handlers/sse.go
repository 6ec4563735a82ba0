package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui/templates"
)

type SSEHandlers struct {
	analytics *services.Analytics
	catalog   *services.Catalog
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, catalog *services.Catalog, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		catalog:   catalog,
		logger:    logger,
	}
}

func (h *SSEHandlers) patchSignals(sse *datastar.ServerSentEventGenerator, signals map[string]any) {
	jsonData, err := json.Marshal(signals)
	if err != nil {
		h.logger.Error("marshal signals", "error", err)
		return
	}
	if err := sse.PatchSignals(jsonData); err != nil {
		h.logger.Debug("patch signals", "error", err)
	}
}

func (h *SSEHandlers) patch(sse *datastar.ServerSentEventGenerator, name string, c templ.Component) {
	if err := sse.PatchElementTempl(c); err != nil {
		h.logger.Debug("patch element", "element", name, "error", err)
	}
}

// patchDashboard re-runs the pipeline for the current signals and patches
// KPI cards, chart data and the sales table. withOptions also refreshes the
// filter controls, which only change when products or clients do.
func (h *SSEHandlers) patchDashboard(ctx context.Context, sse *datastar.ServerSentEventGenerator, sig dashboardSignals, q services.TableQuery, withOptions bool) error {
	filter, err := sig.filter()
	if err != nil {
		h.logger.Warn("ignoring invalid filter", "error", err)
		filter = services.Filter{}
	}

	rows, err := h.analytics.Rows(ctx)
	if err != nil {
		return err
	}

	report := services.Compute(rows, filter)
	page := services.Paginate(services.ApplyFilter(rows, filter), q)

	h.patch(sse, templates.KPICardsID, templates.KPICards(report.KPIs))
	if withOptions {
		h.patch(sse, templates.FiltersID, templates.Filters(services.Options(rows)))
	}
	h.patchSignals(sse, map[string]any{
		"_report":   report,
		"tablePage": page.Page,
		"tableSort": page.SortBy,
		"tableDesc": page.Desc,
	})
	h.patch(sse, templates.SalesTableID, templates.SalesTable(page))
	return nil
}

// HandleRefresh recomputes everything after a filter change.
func (h *SSEHandlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	sig, err := readSignals(r)
	if err != nil {
		h.logger.Warn("read signals", "error", err)
	}

	q := sig.tableQuery()
	q.Page = 1

	sse := datastar.NewSSE(w, r)
	if err := h.patchDashboard(r.Context(), sse, sig, q, false); err != nil {
		h.logger.Error("refresh dashboard", "error", err)
	}
}

// HandleTable pages, sorts or searches the sales table. ?page=N jumps to a
// page; ?sort=col sorts by col, or flips the direction when already sorted
// by it.
func (h *SSEHandlers) HandleTable(w http.ResponseWriter, r *http.Request) {
	sig, err := readSignals(r)
	if err != nil {
		h.logger.Warn("read signals", "error", err)
	}

	q := sig.tableQuery()
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		q.Page = p
	}
	if col := r.URL.Query().Get("sort"); col != "" {
		if q.SortBy == col {
			q.Desc = !q.Desc
		} else {
			q.SortBy, q.Desc = col, false
		}
		q.Page = 1
	}

	filter, err := sig.filter()
	if err != nil {
		filter = services.Filter{}
	}

	rows, err := h.analytics.Rows(r.Context())
	sse := datastar.NewSSE(w, r)
	if err != nil {
		h.logger.Error("load table", "error", err)
		return
	}

	page := services.Paginate(services.ApplyFilter(rows, filter), q)
	h.patchSignals(sse, map[string]any{
		"tablePage": page.Page,
		"tableSort": page.SortBy,
		"tableDesc": page.Desc,
	})
	h.patch(sse, templates.SalesTableID, templates.SalesTable(page))
}

// entityPanel describes one management panel so products and clients share
// the same request flow.
type entityPanel struct {
	tableID   string
	messageID string
	noun      string
	emptyForm func() map[string]any
	table     func(ctx context.Context) (templ.Component, error)
}

func (h *SSEHandlers) productPanel() entityPanel {
	return entityPanel{
		tableID:   templates.ProductTableID,
		messageID: templates.ProductMessageID,
		noun:      "Produit",
		emptyForm: emptyProductForm,
		table: func(ctx context.Context) (templ.Component, error) {
			products, err := h.catalog.ListProducts(ctx)
			if err != nil {
				return nil, err
			}
			return templates.ProductTable(products), nil
		},
	}
}

func (h *SSEHandlers) clientPanel() entityPanel {
	return entityPanel{
		tableID:   templates.ClientTableID,
		messageID: templates.ClientMessageID,
		noun:      "Client",
		emptyForm: emptyClientForm,
		table: func(ctx context.Context) (templ.Component, error) {
			clients, err := h.catalog.ListClients(ctx)
			if err != nil {
				return nil, err
			}
			return templates.ClientTable(clients), nil
		},
	}
}

// mutate runs one create, update or delete and patches the outcome: an
// error line on failure; otherwise the reloaded list, a cleared form and a
// refreshed dashboard.
func (h *SSEHandlers) mutate(w http.ResponseWriter, r *http.Request, panel entityPanel, sig dashboardSignals, action func(ctx context.Context) (string, error)) {
	ctx := r.Context()
	done, err := action(ctx)

	sse := datastar.NewSSE(w, r)
	if err != nil {
		h.logger.Warn("catalog change rejected", "panel", panel.noun, "error", err)
		h.patch(sse, panel.messageID, templates.Message(panel.messageID, templates.MessageError, displayMessage(err)))
		return
	}

	table, err := panel.table(ctx)
	if err != nil {
		h.logger.Error("reload list", "panel", panel.noun, "error", err)
		h.patch(sse, panel.messageID, templates.Message(panel.messageID, templates.MessageError, displayMessage(err)))
		return
	}
	h.patch(sse, panel.tableID, table)
	h.patchSignals(sse, panel.emptyForm())
	h.patch(sse, panel.messageID, templates.Message(panel.messageID, templates.MessageSuccess, done))

	if err := h.patchDashboard(ctx, sse, sig, sig.tableQuery(), true); err != nil {
		h.logger.Error("refresh dashboard", "error", err)
	}
}

func (h *SSEHandlers) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	sig, err := readSignals(r)
	h.mutate(w, r, h.productPanel(), sig, func(ctx context.Context) (string, error) {
		if err != nil {
			return "", err
		}
		p, err := h.catalog.CreateProduct(ctx, sig.product())
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Produit #%d ajouté", p.ID), nil
	})
}

func (h *SSEHandlers) HandleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	sig, err := readSignals(r)
	h.mutate(w, r, h.productPanel(), sig, func(ctx context.Context) (string, error) {
		if err != nil {
			return "", err
		}
		id := sig.ProductID.ID()
		if id == 0 {
			return "", &services.ConstraintError{Field: "id", Message: "select a product to update"}
		}
		if _, err := h.catalog.UpdateProduct(ctx, id, sig.product()); err != nil {
			return "", err
		}
		return fmt.Sprintf("Produit #%d modifié", id), nil
	})
}

func (h *SSEHandlers) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	sig, _ := readSignals(r)
	h.mutate(w, r, h.productPanel(), sig, func(ctx context.Context) (string, error) {
		id, err := pathID(r)
		if err != nil {
			return "", err
		}
		if err := h.catalog.DeleteProduct(ctx, id); err != nil {
			return "", err
		}
		return fmt.Sprintf("Produit #%d supprimé", id), nil
	})
}

// HandleEditProduct fills the form with the clicked row.
func (h *SSEHandlers) HandleEditProduct(w http.ResponseWriter, r *http.Request) {
	h.edit(w, r, h.productPanel(), func(ctx context.Context, id uint) (map[string]any, error) {
		p, err := h.catalog.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"productId":       p.ID,
			"productName":     p.Name,
			"productCategory": p.Category,
			"productPrice":    p.UnitPrice,
		}, nil
	})
}

func (h *SSEHandlers) HandleCancelProduct(w http.ResponseWriter, r *http.Request) {
	h.cancel(w, r, h.productPanel())
}

func (h *SSEHandlers) HandleCreateClient(w http.ResponseWriter, r *http.Request) {
	sig, err := readSignals(r)
	h.mutate(w, r, h.clientPanel(), sig, func(ctx context.Context) (string, error) {
		if err != nil {
			return "", err
		}
		c, err := h.catalog.CreateClient(ctx, sig.client())
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Client #%d ajouté", c.ID), nil
	})
}

func (h *SSEHandlers) HandleUpdateClient(w http.ResponseWriter, r *http.Request) {
	sig, err := readSignals(r)
	h.mutate(w, r, h.clientPanel(), sig, func(ctx context.Context) (string, error) {
		if err != nil {
			return "", err
		}
		id := sig.ClientID.ID()
		if id == 0 {
			return "", &services.ConstraintError{Field: "id", Message: "select a client to update"}
		}
		if _, err := h.catalog.UpdateClient(ctx, id, sig.client()); err != nil {
			return "", err
		}
		return fmt.Sprintf("Client #%d modifié", id), nil
	})
}

func (h *SSEHandlers) HandleDeleteClient(w http.ResponseWriter, r *http.Request) {
	sig, _ := readSignals(r)
	h.mutate(w, r, h.clientPanel(), sig, func(ctx context.Context) (string, error) {
		id, err := pathID(r)
		if err != nil {
			return "", err
		}
		if err := h.catalog.DeleteClient(ctx, id); err != nil {
			return "", err
		}
		return fmt.Sprintf("Client #%d supprimé", id), nil
	})
}

func (h *SSEHandlers) HandleEditClient(w http.ResponseWriter, r *http.Request) {
	h.edit(w, r, h.clientPanel(), func(ctx context.Context, id uint) (map[string]any, error) {
		c, err := h.catalog.GetClient(ctx, id)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"clientId":    c.ID,
			"clientName":  c.Name,
			"clientEmail": c.Email,
			"clientCity":  c.City,
		}, nil
	})
}

func (h *SSEHandlers) HandleCancelClient(w http.ResponseWriter, r *http.Request) {
	h.cancel(w, r, h.clientPanel())
}

func (h *SSEHandlers) edit(w http.ResponseWriter, r *http.Request, panel entityPanel, load func(ctx context.Context, id uint) (map[string]any, error)) {
	id, err := pathID(r)
	var form map[string]any
	if err == nil {
		form, err = load(r.Context(), id)
	}

	sse := datastar.NewSSE(w, r)
	if err != nil {
		h.patch(sse, panel.messageID, templates.Message(panel.messageID, templates.MessageError, displayMessage(err)))
		return
	}
	h.patchSignals(sse, form)
	h.patch(sse, panel.messageID, templates.Message(panel.messageID, "", ""))
}

func (h *SSEHandlers) cancel(w http.ResponseWriter, r *http.Request, panel entityPanel) {
	sse := datastar.NewSSE(w, r)
	h.patchSignals(sse, panel.emptyForm())
	h.patch(sse, panel.messageID, templates.Message(panel.messageID, "", ""))
}

// HandleToggleTheme flips this browser's theme. The choice lives in a
// cookie and the request context, so other sessions are unaffected.
func (h *SSEHandlers) HandleToggleTheme(w http.ResponseWriter, r *http.Request) {
	session := templates.SessionFrom(r.Context()).Toggled()
	http.SetCookie(w, session.Cookie())

	sse := datastar.NewSSE(w, r)
	h.patchSignals(sse, map[string]any{"theme": session.Theme})
	h.patch(sse, templates.ThemeToggleID, templates.ThemeToggle(session))
}

// Package templates renders the dashboard page and the fragments patched
// over SSE. Components are templ.Components so handlers can hand them to
// datastar directly.
package templates

import (
	"context"
	"encoding/json"
	"html/template"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

// Element ids targeted by SSE patches.
const (
	KPICardsID       = "kpi-cards"
	FiltersID        = "filters"
	SalesTableID     = "sales-table"
	ProductTableID   = "product-table"
	ClientTableID    = "client-table"
	ProductMessageID = "product-message"
	ClientMessageID  = "client-message"
	ThemeToggleID    = "theme-toggle"
)

type PageData struct {
	Session   Session
	Report    *models.Report
	Options   models.FilterOptions
	Table     services.TablePage
	Products  []models.Product
	Clients   []models.Client
	UpdatedAt time.Time
}

// Signals is the initial datastar signal set. Keys starting with an
// underscore stay in the browser.
func (p PageData) Signals() (string, error) {
	signals := map[string]any{
		"theme":           p.Session.Theme,
		"tab":             "overview",
		"start":           "",
		"end":             "",
		"categories":      []string{},
		"cities":          []string{},
		"tablePage":       p.Table.Page,
		"tableSort":       p.Table.SortBy,
		"tableDesc":       p.Table.Desc,
		"tableSearch":     "",
		"productId":       0,
		"productName":     "",
		"productCategory": models.Categories[0],
		"productPrice":    "",
		"clientId":        0,
		"clientName":      "",
		"clientEmail":     "",
		"clientCity":      "",
		"_report":         p.Report,
	}
	b, err := json.Marshal(signals)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Message kinds.
const (
	MessageSuccess = "success"
	MessageError   = "error"
)

type message struct {
	ID   string
	Kind string
	Text string
}

func (p PageData) ClientMessage() message { return message{ID: ClientMessageID} }

func (p PageData) ProductMessage() message { return message{ID: ProductMessageID} }

var ui = template.Must(template.New("ui").Funcs(template.FuncMap{
	"money":      formatMoney,
	"number":     formatNumber,
	"categories": func() []string { return models.Categories },
	"sortMark":   sortMark,
	"stamp":      func(t time.Time) string { return t.Format("02/01/2006 15:04") },
}).Parse(pageTemplate + fragmentTemplates))

func render(name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return ui.ExecuteTemplate(w, name, data)
	})
}

func Dashboard(p PageData) templ.Component { return render("dashboard", p) }

func KPICards(k models.KPIs) templ.Component { return render("kpis", k) }

func Filters(opts models.FilterOptions) templ.Component { return render("filters", opts) }

func SalesTable(page services.TablePage) templ.Component { return render("salesTable", page) }

func ProductTable(products []models.Product) templ.Component {
	return render("productTable", products)
}

func ClientTable(clients []models.Client) templ.Component { return render("clientTable", clients) }

func ThemeToggle(s Session) templ.Component { return render("themeToggle", s) }

// Message renders a status line into the element with the given id. An
// empty text clears it.
func Message(id, kind, text string) templ.Component {
	return render("message", message{ID: id, Kind: kind, Text: text})
}

// formatMoney renders 1234.5 as "1,234.50€".
func formatMoney(v float64) string {
	return groupThousands(strconv.FormatFloat(math.Abs(v), 'f', 2, 64), v < 0) + "€"
}

func formatNumber(v int) string {
	return groupThousands(strconv.Itoa(absInt(v)), v < 0)
}

func groupThousands(s string, negative bool) string {
	intPart, frac, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sortMark(page services.TablePage, column string) string {
	if page.SortBy != column {
		return ""
	}
	if page.Desc {
		return " ▼"
	}
	return " ▲"
}

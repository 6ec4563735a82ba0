package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
)

const topLimit = 10

// SalesSource yields the full joined sales view.
type SalesSource interface {
	LoadSales(ctx context.Context) ([]models.SaleRow, error)
}

// Analytics reloads the dataset on every call; it keeps no cached
// aggregates, only load counters for /admin/stats.
type Analytics struct {
	source        SalesSource
	logger        *slog.Logger
	loads         atomic.Int64
	lastRowCount  atomic.Int64
	lastLoadNanos atomic.Int64
}

func NewAnalytics(source SalesSource, logger *slog.Logger) *Analytics {
	return &Analytics{
		source: source,
		logger: logger,
	}
}

// Rows loads the unfiltered dataset.
func (a *Analytics) Rows(ctx context.Context) ([]models.SaleRow, error) {
	var rows []models.SaleRow
	err := observability.Trace(ctx, a.logger, "dataset.load", func(ctx context.Context, span *observability.Span) error {
		var err error
		rows, err = a.source.LoadSales(ctx)
		if err != nil {
			return err
		}
		span.SetTag("rows", strconv.Itoa(len(rows)))
		a.loads.Add(1)
		a.lastRowCount.Store(int64(len(rows)))
		a.lastLoadNanos.Store(int64(time.Since(span.StartTime)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return rows, nil
}

func (a *Analytics) Report(ctx context.Context, f Filter) (*models.Report, error) {
	rows, err := a.Rows(ctx)
	if err != nil {
		return nil, err
	}
	return Compute(rows, f), nil
}

func (a *Analytics) Stats() map[string]any {
	return map[string]any{
		"dataset_loads":  a.loads.Load(),
		"last_row_count": a.lastRowCount.Load(),
		"last_load_time": time.Duration(a.lastLoadNanos.Load()).String(),
	}
}

// Compute filters rows and derives every dashboard aggregate from what is
// left. It depends only on its arguments.
func Compute(rows []models.SaleRow, f Filter) *models.Report {
	filtered := ApplyFilter(rows, f)

	acc := newAccumulator()
	for _, r := range filtered {
		acc.add(r)
	}
	return acc.report(len(filtered))
}

// ranking sums amounts per name and remembers first-encounter order so that
// equal totals keep a stable order.
type ranking struct {
	order  []string
	totals map[string]float64
}

func newRanking() *ranking {
	return &ranking{totals: make(map[string]float64)}
}

func (rk *ranking) add(name string, amount float64) {
	if _, ok := rk.totals[name]; !ok {
		rk.order = append(rk.order, name)
	}
	rk.totals[name] += amount
}

func (rk *ranking) top(limit int) []models.RankedAmount {
	result := make([]models.RankedAmount, 0, len(rk.order))
	for _, name := range rk.order {
		result = append(result, models.RankedAmount{Name: name, Amount: rk.totals[name]})
	}
	slices.SortStableFunc(result, func(a, b models.RankedAmount) int {
		if a.Amount > b.Amount {
			return -1
		}
		if a.Amount < b.Amount {
			return 1
		}
		return 0
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result
}

type accumulator struct {
	kpis       models.KPIs
	clientIDs  map[uint]struct{}
	monthly    map[string]float64
	categories map[string]float64
	products   *ranking
	clients    *ranking
	hierarchy  map[string]map[string]float64
	heat       map[time.Weekday]map[int]float64
}

func newAccumulator() *accumulator {
	return &accumulator{
		clientIDs:  make(map[uint]struct{}),
		monthly:    make(map[string]float64),
		categories: make(map[string]float64),
		products:   newRanking(),
		clients:    newRanking(),
		hierarchy:  make(map[string]map[string]float64),
		heat:       make(map[time.Weekday]map[int]float64),
	}
}

func (acc *accumulator) add(r models.SaleRow) {
	acc.kpis.TotalRevenue += r.Amount
	acc.kpis.TotalUnits += r.Quantity
	acc.clientIDs[r.ClientID] = struct{}{}

	acc.monthly[r.Month] += r.Amount
	acc.categories[r.Category] += r.Amount
	acc.products.add(r.Product, r.Amount)
	acc.clients.add(r.Client, r.Amount)

	if acc.hierarchy[r.Category] == nil {
		acc.hierarchy[r.Category] = make(map[string]float64)
	}
	acc.hierarchy[r.Category][r.Product] += r.Amount

	wd := r.Date.Weekday()
	if acc.heat[wd] == nil {
		acc.heat[wd] = make(map[int]float64)
	}
	acc.heat[wd][r.Hour] += r.Amount
}

func (acc *accumulator) report(rowCount int) *models.Report {
	kpis := acc.kpis
	kpis.UniqueClients = len(acc.clientIDs)
	if rowCount > 0 {
		// A basket is one sale row, not a distinct order.
		kpis.AverageBasket = kpis.TotalRevenue / float64(rowCount)
	}

	return &models.Report{
		KPIs:        kpis,
		Monthly:     acc.sortMonthly(),
		Categories:  acc.sortCategories(),
		TopProducts: acc.products.top(topLimit),
		TopClients:  acc.clients.top(topLimit),
		Hierarchy:   acc.buildHierarchy(),
		Heatmap:     acc.buildHeatmap(),
		RowCount:    rowCount,
	}
}

func (acc *accumulator) sortMonthly() []models.MonthlyAmount {
	result := make([]models.MonthlyAmount, 0, len(acc.monthly))
	for month, amount := range acc.monthly {
		result = append(result, models.MonthlyAmount{Month: month, Amount: amount})
	}
	slices.SortFunc(result, func(a, b models.MonthlyAmount) int {
		return strings.Compare(a.Month, b.Month)
	})
	return result
}

func (acc *accumulator) sortCategories() []models.CategoryAmount {
	result := make([]models.CategoryAmount, 0, len(acc.categories))
	for category, amount := range acc.categories {
		result = append(result, models.CategoryAmount{Category: category, Amount: amount})
	}
	slices.SortFunc(result, func(a, b models.CategoryAmount) int {
		return strings.Compare(a.Category, b.Category)
	})
	return result
}

func (acc *accumulator) buildHierarchy() []models.HierarchyNode {
	result := make([]models.HierarchyNode, 0, len(acc.hierarchy))
	for category, products := range acc.hierarchy {
		node := models.HierarchyNode{
			Category: category,
			Children: make([]models.ProductAmount, 0, len(products)),
		}
		for product, amount := range products {
			node.Amount += amount
			node.Children = append(node.Children, models.ProductAmount{Product: product, Amount: amount})
		}
		slices.SortFunc(node.Children, func(a, b models.ProductAmount) int {
			return strings.Compare(a.Product, b.Product)
		})
		result = append(result, node)
	}
	slices.SortFunc(result, func(a, b models.HierarchyNode) int {
		return strings.Compare(a.Category, b.Category)
	})
	return result
}

// Monday-first, the way the heatmap reads.
var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

func (acc *accumulator) buildHeatmap() models.Heatmap {
	hm := models.Heatmap{
		Weekdays: []string{},
		Hours:    []int{},
		Values:   [][]float64{},
	}

	hourSet := make(map[int]struct{})
	for _, byHour := range acc.heat {
		for h := range byHour {
			hourSet[h] = struct{}{}
		}
	}
	for h := range hourSet {
		hm.Hours = append(hm.Hours, h)
	}
	slices.Sort(hm.Hours)

	for _, wd := range weekdayOrder {
		byHour, ok := acc.heat[wd]
		if !ok {
			continue
		}
		row := make([]float64, len(hm.Hours))
		for i, h := range hm.Hours {
			row[i] = byHour[h]
		}
		hm.Weekdays = append(hm.Weekdays, wd.String())
		hm.Values = append(hm.Values, row)
	}
	return hm
}

// Options lists the values the filter controls offer, taken from the
// unfiltered dataset.
func Options(rows []models.SaleRow) models.FilterOptions {
	opts := models.FilterOptions{Categories: []string{}, Cities: []string{}}
	if len(rows) == 0 {
		return opts
	}

	categories := make(map[string]struct{})
	cities := make(map[string]struct{})
	minDay, maxDay := rows[0].Day(), rows[0].Day()
	for _, r := range rows {
		categories[r.Category] = struct{}{}
		if r.City != "" {
			cities[r.City] = struct{}{}
		}
		day := r.Day()
		if day.Before(minDay) {
			minDay = day
		}
		if day.After(maxDay) {
			maxDay = day
		}
	}
	for c := range categories {
		opts.Categories = append(opts.Categories, c)
	}
	for c := range cities {
		opts.Cities = append(opts.Cities, c)
	}
	slices.Sort(opts.Categories)
	slices.Sort(opts.Cities)
	opts.MinDate = minDay.Format(dateLayout)
	opts.MaxDate = maxDay.Format(dateLayout)
	return opts
}

package services

import (
	"cmp"
	"slices"
	"strings"

	"sales-dashboard/internal/models"
)

const DefaultPageSize = 15

// TableQuery is the state of the data table: page (1-based), sort column,
// direction and free-text search.
type TableQuery struct {
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	SortBy   string `json:"sortBy"`
	Desc     bool   `json:"desc"`
	Search   string `json:"search"`
}

type TablePage struct {
	Columns []string         `json:"columns"`
	Rows    []models.SaleRow `json:"rows"`
	Page    int              `json:"page"`
	Pages   int              `json:"pages"`
	Total   int              `json:"total"`
	SortBy  string           `json:"sortBy"`
	Desc    bool             `json:"desc"`
	Search  string           `json:"search"`
}

// Paginate searches, sorts and slices rows. The input slice is not
// modified. Out of range pages are clamped.
func Paginate(rows []models.SaleRow, q TableQuery) TablePage {
	size := q.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}

	matched := search(rows, q.Search)
	if less := columnCompare(q.SortBy); less != nil {
		sorted := slices.Clone(matched)
		slices.SortStableFunc(sorted, func(a, b models.SaleRow) int {
			if q.Desc {
				return less(b, a)
			}
			return less(a, b)
		})
		matched = sorted
	} else {
		q.SortBy = ""
	}

	total := len(matched)
	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	page := min(max(q.Page, 1), pages)

	from := min((page-1)*size, total)
	to := min(from+size, total)

	out := make([]models.SaleRow, to-from)
	copy(out, matched[from:to])

	return TablePage{
		Columns: models.SaleRowColumns,
		Rows:    out,
		Page:    page,
		Pages:   pages,
		Total:   total,
		SortBy:  q.SortBy,
		Desc:    q.Desc,
		Search:  q.Search,
	}
}

// search keeps rows where any rendered column contains term,
// case-insensitively.
func search(rows []models.SaleRow, term string) []models.SaleRow {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return rows
	}
	out := make([]models.SaleRow, 0, len(rows))
	for _, r := range rows {
		for _, v := range r.Values() {
			if strings.Contains(strings.ToLower(v), term) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

func columnCompare(column string) func(a, b models.SaleRow) int {
	switch column {
	case "id":
		return func(a, b models.SaleRow) int { return cmp.Compare(a.ID, b.ID) }
	case "date":
		return func(a, b models.SaleRow) int { return a.Date.Compare(b.Date) }
	case "amount":
		return func(a, b models.SaleRow) int { return cmp.Compare(a.Amount, b.Amount) }
	case "quantity":
		return func(a, b models.SaleRow) int { return cmp.Compare(a.Quantity, b.Quantity) }
	case "unit_price":
		return func(a, b models.SaleRow) int { return cmp.Compare(a.UnitPrice, b.UnitPrice) }
	case "hour":
		return func(a, b models.SaleRow) int { return cmp.Compare(a.Hour, b.Hour) }
	case "product":
		return byString(func(r models.SaleRow) string { return r.Product })
	case "category":
		return byString(func(r models.SaleRow) string { return r.Category })
	case "client":
		return byString(func(r models.SaleRow) string { return r.Client })
	case "city":
		return byString(func(r models.SaleRow) string { return r.City })
	case "email":
		return byString(func(r models.SaleRow) string { return r.Email })
	case "month":
		return byString(func(r models.SaleRow) string { return r.Month })
	case "quarter":
		return byString(func(r models.SaleRow) string { return r.Quarter })
	case "weekday":
		return func(a, b models.SaleRow) int { return cmp.Compare(weekdayIndex(a), weekdayIndex(b)) }
	}
	return nil
}

func byString(field func(models.SaleRow) string) func(a, b models.SaleRow) int {
	return func(a, b models.SaleRow) int { return strings.Compare(field(a), field(b)) }
}

// weekdayIndex orders Monday first.
func weekdayIndex(r models.SaleRow) int {
	return (int(r.Date.Weekday()) + 6) % 7
}

func (p TablePage) HasPrev() bool { return p.Page > 1 }

func (p TablePage) HasNext() bool { return p.Page < p.Pages }

func (p TablePage) Prev() int { return max(p.Page-1, 1) }

func (p TablePage) Next() int { return min(p.Page+1, p.Pages) }

package services

import (
	"fmt"
	"strings"
	"time"

	"sales-dashboard/internal/models"
)

const dateLayout = "2006-01-02"

// Filter restricts the dataset. Every present constraint must hold; an
// empty set or a nil bound imposes nothing. Date bounds are inclusive and
// compared by calendar day.
type Filter struct {
	Start      *time.Time
	End        *time.Time
	Categories []string
	Cities     []string
}

// ParseFilter builds a Filter from form values. Blank strings are ignored.
func ParseFilter(start, end string, categories, cities []string) (Filter, error) {
	var f Filter

	if s := strings.TrimSpace(start); s != "" {
		t, err := parseDay(s)
		if err != nil {
			return Filter{}, fmt.Errorf("invalid start date %q: %w", s, err)
		}
		f.Start = &t
	}
	if s := strings.TrimSpace(end); s != "" {
		t, err := parseDay(s)
		if err != nil {
			return Filter{}, fmt.Errorf("invalid end date %q: %w", s, err)
		}
		f.End = &t
	}
	f.Categories = compact(categories)
	f.Cities = compact(cities)
	return f, nil
}

// parseDay accepts a bare date or the date prefix of a timestamp.
func parseDay(s string) (time.Time, error) {
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	return time.Parse(dateLayout, s)
}

func compact(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (f Filter) IsEmpty() bool {
	return f.Start == nil && f.End == nil && len(f.Categories) == 0 && len(f.Cities) == 0
}

func (f Filter) Match(r models.SaleRow) bool {
	day := r.Day()
	if f.Start != nil && day.Before(truncateDay(*f.Start)) {
		return false
	}
	if f.End != nil && day.After(truncateDay(*f.End)) {
		return false
	}
	if len(f.Categories) > 0 && !containsString(f.Categories, r.Category) {
		return false
	}
	if len(f.Cities) > 0 && !containsString(f.Cities, r.City) {
		return false
	}
	return true
}

// ApplyFilter returns the rows matching f, in their original order.
func ApplyFilter(rows []models.SaleRow, f Filter) []models.SaleRow {
	if f.IsEmpty() {
		return rows
	}
	out := make([]models.SaleRow, 0, len(rows))
	for _, r := range rows {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func containsString(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

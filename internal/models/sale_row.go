package models

import (
	"fmt"
	"strconv"
	"time"
)

// SaleRowColumns is the header of the joined sales view, shared by the data
// table and the exports.
var SaleRowColumns = []string{
	"id", "date", "amount", "quantity",
	"product", "category", "unit_price",
	"client", "city", "email",
	"month", "quarter", "weekday", "hour",
}

// SaleRow is one line of the sales ⨝ products ⨝ clients view with its
// derived calendar fields.
type SaleRow struct {
	ID        uint      `json:"id"`
	Date      time.Time `json:"date"`
	Amount    float64   `json:"amount"`
	Quantity  int       `json:"quantity"`
	Product   string    `json:"product"`
	Category  string    `json:"category"`
	UnitPrice float64   `json:"unit_price"`
	ClientID  uint      `json:"client_id"`
	Client    string    `json:"client"`
	City      string    `json:"city"`
	Email     string    `json:"email"`
	Month     string    `json:"month"`
	Quarter   string    `json:"quarter"`
	Weekday   string    `json:"weekday"`
	Hour      int       `json:"hour"`
}

// Derive fills Month, Quarter, Weekday and Hour from Date.
func (r *SaleRow) Derive() {
	r.Month = r.Date.Format("2006-01")
	r.Quarter = fmt.Sprintf("%dQ%d", r.Date.Year(), (int(r.Date.Month())-1)/3+1)
	r.Weekday = r.Date.Weekday().String()
	r.Hour = r.Date.Hour()
}

// Day returns the calendar day of the sale at midnight UTC.
func (r SaleRow) Day() time.Time {
	y, m, d := r.Date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Values renders the row in SaleRowColumns order.
func (r SaleRow) Values() []string {
	return []string{
		strconv.FormatUint(uint64(r.ID), 10),
		r.Date.Format("2006-01-02 15:04:05"),
		strconv.FormatFloat(r.Amount, 'f', 2, 64),
		strconv.Itoa(r.Quantity),
		r.Product,
		r.Category,
		strconv.FormatFloat(r.UnitPrice, 'f', 2, 64),
		r.Client,
		r.City,
		r.Email,
		r.Month,
		r.Quarter,
		r.Weekday,
		strconv.Itoa(r.Hour),
	}
}

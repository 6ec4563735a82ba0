// Package export writes the joined sales view as CSV or XLSX, columns in
// models.SaleRowColumns order.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"sales-dashboard/internal/models"
)

const SheetName = "Ventes"

func WriteCSV(w io.Writer, rows []models.SaleRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(models.SaleRowColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.Values()); err != nil {
			return fmt.Errorf("write csv row %d: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a single-sheet workbook. Numeric columns are stored as
// numbers so spreadsheet formulas work on them.
func WriteXLSX(w io.Writer, rows []models.SaleRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(models.SaleRowColumns))
	for i, c := range models.SaleRowColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{
			r.ID,
			r.Date.Format("2006-01-02 15:04:05"),
			r.Amount,
			r.Quantity,
			r.Product,
			r.Category,
			r.UnitPrice,
			r.Client,
			r.City,
			r.Email,
			r.Month,
			r.Quarter,
			r.Weekday,
			r.Hour,
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", r.ID, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

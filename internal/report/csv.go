package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

var csvHeader = []string{
	"name", "category", "room", "value", "currency", "serial_number",
	"purchase_date", "photos", "receipts", "score_percent", "missing",
}

func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range r.Rows {
		rec := []string{
			row.Name,
			row.Category,
			row.Room,
			formatValue(row.Value),
			row.CurrencyCode,
			row.SerialNumber,
			formatDate(row.PurchaseDate),
			strconv.Itoa(row.Photos),
			strconv.Itoa(row.Receipts),
			strconv.Itoa(row.Score.Percent()),
			formatMissing(row.Score.Missing),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	footer := []string{
		"TOTAL", "", "", r.Totals.TotalValue.StringFixed(2), "", "", "",
		"", "", strconv.Itoa(percent(r.Totals.AverageScore)),
		fmt.Sprintf("%d of %d fully documented", r.Totals.FullyDocumented, r.Totals.Items),
	}
	if err := cw.Write(footer); err != nil {
		return fmt.Errorf("failed to write csv footer: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

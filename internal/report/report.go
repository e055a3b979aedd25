// Package report renders the insurance inventory report: one row per item
// with its documentation score, plus a totals footer.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nestory/nestory/internal/domain"
	"github.com/nestory/nestory/internal/score"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatCSV, FormatJSON, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("unknown report format %q", s)
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/json"
	}
}

type Row struct {
	ItemID       string              `json:"itemId"`
	Name         string              `json:"name"`
	Category     string              `json:"category,omitempty"`
	Room         string              `json:"room,omitempty"`
	Value        decimal.NullDecimal `json:"value"`
	CurrencyCode string              `json:"currencyCode"`
	SerialNumber string              `json:"serialNumber,omitempty"`
	PurchaseDate *time.Time          `json:"purchaseDate,omitempty"`
	Photos       int                 `json:"photos"`
	Receipts     int                 `json:"receipts"`
	Score        score.Result        `json:"documentation"`
}

type Totals struct {
	Items           int             `json:"items"`
	TotalValue      decimal.Decimal `json:"totalValue"`
	AverageScore    float64         `json:"averageScore"`
	FullyDocumented int             `json:"fullyDocumented"`
}

type Report struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Rows        []Row     `json:"items"`
	Totals      Totals    `json:"totals"`
}

// Build scores every item and resolves its category and room names. Rows are
// ordered by room, then item name.
func Build(items []*domain.Item, categories []*domain.Category, rooms []*domain.Room, generatedAt time.Time) *Report {
	categoryNames := make(map[string]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}
	roomNames := make(map[string]string, len(rooms))
	for _, r := range rooms {
		roomNames[r.ID] = r.Name
	}

	rep := &Report{GeneratedAt: generatedAt.UTC(), Rows: make([]Row, 0, len(items))}
	results := make([]score.Result, 0, len(items))
	for _, item := range items {
		res := score.EvaluateItem(item)
		results = append(results, res)
		row := Row{
			ItemID:       item.ID,
			Name:         item.Name,
			Value:        item.PurchasePrice,
			CurrencyCode: item.CurrencyCode,
			SerialNumber: item.SerialNumber,
			PurchaseDate: item.PurchaseDate,
			Photos:       len(item.PhotoKeys),
			Receipts:     len(item.ReceiptIDs),
			Score:        res,
		}
		if item.CategoryID != nil {
			row.Category = categoryNames[*item.CategoryID]
		}
		if item.RoomID != nil {
			row.Room = roomNames[*item.RoomID]
		}
		if item.PurchasePrice.Valid {
			rep.Totals.TotalValue = rep.Totals.TotalValue.Add(item.PurchasePrice.Decimal)
		}
		rep.Rows = append(rep.Rows, row)
	}

	sort.SliceStable(rep.Rows, func(i, j int) bool {
		if rep.Rows[i].Room != rep.Rows[j].Room {
			return rep.Rows[i].Room < rep.Rows[j].Room
		}
		return rep.Rows[i].Name < rep.Rows[j].Name
	})

	sum := score.Summarize(results)
	rep.Totals.Items = sum.Items
	rep.Totals.AverageScore = sum.AverageScore
	rep.Totals.FullyDocumented = sum.FullyDocumented
	return rep
}

func (r *Report) Write(w io.Writer, f Format) error {
	switch f {
	case FormatCSV:
		return r.WriteCSV(w)
	case FormatPDF:
		return r.WritePDF(w)
	case FormatJSON:
		return r.WriteJSON(w)
	default:
		return fmt.Errorf("unknown report format %q", f)
	}
}

func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

func formatValue(v decimal.NullDecimal) string {
	if !v.Valid {
		return ""
	}
	return v.Decimal.StringFixed(2)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}

func formatMissing(fields []score.Field) string {
	out := ""
	for i, f := range fields {
		if i > 0 {
			out += " "
		}
		out += string(f)
	}
	return out
}

func percent(score float64) int {
	return int(math.Round(score * 100))
}

func formatPercent(score float64) string {
	return fmt.Sprintf("%d%%", percent(score))
}

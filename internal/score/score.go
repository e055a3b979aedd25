// Package score computes how well an inventory item is documented for an
// insurance claim.
package score

import (
	"math"
	"strings"

	"github.com/nestory/nestory/internal/domain"
)

// Field names one documentation signal.
type Field string

const (
	FieldPhoto        Field = "photo"
	FieldValue        Field = "value"
	FieldRoom         Field = "room"
	FieldCategory     Field = "category"
	FieldReceipt      Field = "receipt"
	FieldSerialNumber Field = "serialNumber"
)

type weight struct {
	field  Field
	weight float64
}

// weights is ordered; Missing lists follow this order.
var weights = [...]weight{
	{FieldPhoto, 0.30},
	{FieldValue, 0.25},
	{FieldRoom, 0.15},
	{FieldCategory, 0.10},
	{FieldReceipt, 0.10},
	{FieldSerialNumber, 0.10},
}

// Fields returns every field in evaluation order.
func Fields() []Field {
	out := make([]Field, len(weights))
	for i, w := range weights {
		out[i] = w.field
	}
	return out
}

// Weight returns the fixed contribution of f, or 0 for an unknown field.
func Weight(f Field) float64 {
	for _, w := range weights {
		if w.field == f {
			return w.weight
		}
	}
	return 0
}

// Signals is the view of an item the engine reads.
type Signals struct {
	HasPhoto        bool
	HasValue        bool
	HasRoom         bool
	HasCategory     bool
	HasReceipt      bool
	HasSerialNumber bool
}

// SignalsOf extracts the documentation signals from a loaded item.
func SignalsOf(item *domain.Item) Signals {
	return Signals{
		HasPhoto:        len(item.PhotoKeys) > 0,
		HasValue:        item.PurchasePrice.Valid,
		HasRoom:         item.RoomID != nil,
		HasCategory:     item.CategoryID != nil,
		HasReceipt:      len(item.ReceiptIDs) > 0,
		HasSerialNumber: strings.TrimSpace(item.SerialNumber) != "",
	}
}

func (s Signals) has(f Field) bool {
	switch f {
	case FieldPhoto:
		return s.HasPhoto
	case FieldValue:
		return s.HasValue
	case FieldRoom:
		return s.HasRoom
	case FieldCategory:
		return s.HasCategory
	case FieldReceipt:
		return s.HasReceipt
	case FieldSerialNumber:
		return s.HasSerialNumber
	}
	return false
}

type Result struct {
	Score   float64 `json:"score"`
	Missing []Field `json:"missing"`
}

// Percent is the score rounded to a whole percentage.
func (r Result) Percent() int {
	return int(math.Round(r.Score * 100))
}

// Complete reports whether every field is present.
func (r Result) Complete() bool {
	return len(r.Missing) == 0
}

// Evaluate scores a set of signals. It never fails.
func Evaluate(s Signals) Result {
	res := Result{Missing: make([]Field, 0, len(weights))}
	for _, w := range weights {
		if s.has(w.field) {
			res.Score += w.weight
		} else {
			res.Missing = append(res.Missing, w.field)
		}
	}
	// Float addition of the weights can land a hair above 1.
	res.Score = math.Min(1, math.Round(res.Score*1e9)/1e9)
	return res
}

// EvaluateItem is Evaluate(SignalsOf(item)).
func EvaluateItem(item *domain.Item) Result {
	return Evaluate(SignalsOf(item))
}

// Summary aggregates results across an inventory.
type Summary struct {
	Items           int           `json:"items"`
	AverageScore    float64       `json:"averageScore"`
	FullyDocumented int           `json:"fullyDocumented"`
	MissingCounts   map[Field]int `json:"missingCounts"`
}

func Summarize(results []Result) Summary {
	sum := Summary{Items: len(results), MissingCounts: make(map[Field]int, len(weights))}
	if len(results) == 0 {
		return sum
	}
	var total float64
	for _, r := range results {
		total += r.Score
		if r.Complete() {
			sum.FullyDocumented++
		}
		for _, f := range r.Missing {
			sum.MissingCounts[f]++
		}
	}
	sum.AverageScore = math.Round(total/float64(len(results))*1e4) / 1e4
	return sum
}

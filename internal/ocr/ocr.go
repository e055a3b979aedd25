// Package ocr extracts receipt metadata from photos using a vision model.
package ocr

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptPrompt is the shared prompt used by all receipt analyzers.
const ReceiptPrompt = `This is a photo of a purchase receipt. Read it and reply with exactly
these four lines and nothing else:
vendor: <store or merchant name>
total: <grand total as a number>
tax: <tax amount as a number>
date: <purchase date>
Write "unknown" for any value you cannot read.`

type ReceiptAnalyzer interface {
	Analyze(ctx context.Context, r io.Reader, mimeType string) (*Extraction, error)
}

// Extraction is what could be read from a receipt. Confidence is the
// fraction of the four fields that were recovered.
type Extraction struct {
	Vendor       *string
	Total        decimal.NullDecimal
	TaxAmount    decimal.NullDecimal
	PurchaseDate *time.Time
	RawText      string
	Confidence   float64
}

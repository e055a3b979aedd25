package ocr

import (
	"strings"
	"unicode"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
)

const fieldCount = 4

// ParseResponse parses "field: value" lines from a model reply. Unknown
// fields, unreadable values and surrounding chatter are ignored.
func ParseResponse(raw string) *Extraction {
	ex := &Extraction{RawText: raw}
	found := 0

	for _, line := range strings.Split(raw, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.Trim(strings.TrimSpace(key), "-*• "))
		value = strings.TrimSpace(value)
		if value == "" || strings.EqualFold(value, "unknown") {
			continue
		}

		switch key {
		case "vendor", "merchant", "store":
			if ex.Vendor == nil {
				v := value
				ex.Vendor = &v
				found++
			}
		case "total", "grand total":
			if !ex.Total.Valid {
				if d, ok := ParseAmount(value); ok {
					ex.Total = decimal.NewNullDecimal(d)
					found++
				}
			}
		case "tax":
			if !ex.TaxAmount.Valid {
				if d, ok := ParseAmount(value); ok {
					ex.TaxAmount = decimal.NewNullDecimal(d)
					found++
				}
			}
		case "date", "purchase date":
			if ex.PurchaseDate == nil {
				if t, err := dateparse.ParseAny(value); err == nil {
					ex.PurchaseDate = &t
					found++
				}
			}
		}
	}

	ex.Confidence = float64(found) / fieldCount
	return ex
}

// ParseAmount reads a money amount such as "$1,299.99" or "12,50 EUR".
func ParseAmount(s string) (decimal.Decimal, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsDigit(r), r == '.', r == '-', r == ',':
			return r
		}
		return -1
	}, s)

	// A lone comma followed by two digits is a decimal separator.
	if !strings.Contains(cleaned, ".") {
		if i := strings.LastIndexByte(cleaned, ','); i >= 0 && len(cleaned)-i == 3 {
			cleaned = cleaned[:i] + "." + cleaned[i+1:]
		}
	}
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return decimal.Decimal{}, false
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

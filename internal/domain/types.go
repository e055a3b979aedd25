package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID        string
	Name      string
	IconName  string
	ColorHex  string
	SortOrder int
	IsSystem  bool
	CreatedAt time.Time
}

type Room struct {
	ID        string
	Name      string
	IconName  string
	SortOrder int
	IsSystem  bool
	CreatedAt time.Time
}

// Item is one owned possession. PhotoKeys and ReceiptIDs are loaded from
// their own tables and ordered by sort order / creation time.
type Item struct {
	ID            string
	Name          string
	Description   string
	CategoryID    *string
	RoomID        *string
	Brand         string
	ModelNumber   string
	SerialNumber  string
	PurchasePrice decimal.NullDecimal
	PurchaseDate  *time.Time
	CurrencyCode  string
	Condition     string
	Notes         string
	PhotoKeys     []string
	ReceiptIDs    []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Photo struct {
	ID         int64
	ItemID     string
	StorageKey string
	MimeType   string
	SortOrder  int
	UploadedAt time.Time
}

type Receipt struct {
	ID           string
	Vendor       *string
	Total        decimal.NullDecimal
	TaxAmount    decimal.NullDecimal
	PurchaseDate *time.Time
	RawText      string
	Confidence   float64
	ImageKey     *string
	ItemID       *string
	CreatedAt    time.Time
}

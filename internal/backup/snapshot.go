// Package backup exports the inventory to a JSON snapshot and reconciles a
// snapshot back into a store.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/nestory/nestory/internal/domain"
)

// ErrInvalidSnapshot wraps every decode failure. Nothing is written to the
// store when it is returned.
var ErrInvalidSnapshot = errors.New("invalid backup snapshot")

type Snapshot struct {
	ExportDate time.Time        `json:"exportDate" validate:"required"`
	AppVersion string           `json:"appVersion"`
	Items      []ItemRecord     `json:"items" validate:"required,dive"`
	Categories []CategoryRecord `json:"categories" validate:"required,dive"`
	Rooms      []RoomRecord     `json:"rooms" validate:"required,dive"`
	Receipts   []ReceiptRecord  `json:"receipts" validate:"required,dive"`
}

type ItemRecord struct {
	ID               string              `json:"id" validate:"required"`
	Name             string              `json:"name" validate:"required"`
	Description      string              `json:"description,omitempty"`
	CategoryName     *string             `json:"categoryName"`
	RoomName         *string             `json:"roomName"`
	Brand            string              `json:"brand,omitempty"`
	ModelNumber      string              `json:"modelNumber,omitempty"`
	SerialNumber     string              `json:"serialNumber,omitempty"`
	PurchasePrice    decimal.NullDecimal `json:"purchasePrice"`
	PurchaseDate     *time.Time          `json:"purchaseDate"`
	CurrencyCode     string              `json:"currencyCode,omitempty"`
	Condition        string              `json:"condition,omitempty"`
	Notes            string              `json:"notes,omitempty"`
	PhotoIdentifiers []string            `json:"photoIdentifiers"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

type CategoryRecord struct {
	ID        string    `json:"id" validate:"required"`
	Name      string    `json:"name" validate:"required"`
	IconName  string    `json:"iconName"`
	ColorHex  string    `json:"colorHex,omitempty"`
	SortOrder int       `json:"sortOrder"`
	IsSystem  bool      `json:"isSystem"`
	CreatedAt time.Time `json:"createdAt"`
}

type RoomRecord struct {
	ID        string    `json:"id" validate:"required"`
	Name      string    `json:"name" validate:"required"`
	IconName  string    `json:"iconName"`
	SortOrder int       `json:"sortOrder"`
	IsSystem  bool      `json:"isSystem"`
	CreatedAt time.Time `json:"createdAt"`
}

type ReceiptRecord struct {
	ID              string              `json:"id" validate:"required"`
	Vendor          *string             `json:"vendor"`
	Total           decimal.NullDecimal `json:"total"`
	TaxAmount       decimal.NullDecimal `json:"taxAmount"`
	PurchaseDate    *time.Time          `json:"purchaseDate"`
	RawText         string              `json:"rawText,omitempty"`
	Confidence      float64             `json:"confidence" validate:"gte=0,lte=1"`
	ImageIdentifier *string             `json:"imageIdentifier"`
	LinkedItemID    *string             `json:"linkedItemId"`
	CreatedAt       time.Time           `json:"createdAt"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names rather than Go ones.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Decode parses and validates a snapshot. Any problem fails the whole
// snapshot with an error wrapping ErrInvalidSnapshot.
func Decode(r io.Reader) (*Snapshot, error) {
	dec := json.NewDecoder(r)
	var snap Snapshot
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after snapshot", ErrInvalidSnapshot)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Validate checks required fields and that identifiers are unique within
// each entity list.
func (s *Snapshot) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("%w: %s", ErrInvalidSnapshot, formatValidationErrors(verrs))
		}
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	itemIDs := make([]string, len(s.Items))
	for i, r := range s.Items {
		itemIDs[i] = r.ID
	}
	categoryIDs := make([]string, len(s.Categories))
	for i, r := range s.Categories {
		categoryIDs[i] = r.ID
	}
	roomIDs := make([]string, len(s.Rooms))
	for i, r := range s.Rooms {
		roomIDs[i] = r.ID
	}
	receiptIDs := make([]string, len(s.Receipts))
	for i, r := range s.Receipts {
		receiptIDs[i] = r.ID
	}

	for entity, ids := range map[string][]string{
		"items": itemIDs, "categories": categoryIDs, "rooms": roomIDs, "receipts": receiptIDs,
	} {
		if dup, ok := firstDuplicate(ids); ok {
			return fmt.Errorf("%w: duplicate %s id %q", ErrInvalidSnapshot, entity, dup)
		}
	}
	return nil
}

func firstDuplicate(ids []string) (string, bool) {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return id, true
		}
		seen[id] = struct{}{}
	}
	return "", false
}

func formatValidationErrors(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		// Namespace is "Snapshot.items[0].name"; drop the root type.
		field := e.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		switch e.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", field, e.Tag(), e.Param()))
		}
	}
	return strings.Join(msgs, "; ")
}

// Encode writes s as indented JSON.
func (s *Snapshot) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// NewSnapshot flattens the inventory graph into a snapshot. Item category
// and room links are written as names; photos as storage keys.
func NewSnapshot(appVersion string, exportDate time.Time, categories []*domain.Category, rooms []*domain.Room,
	items []*domain.Item, receipts []*domain.Receipt) *Snapshot {
	snap := &Snapshot{
		ExportDate: exportDate.UTC(),
		AppVersion: appVersion,
		Items:      make([]ItemRecord, 0, len(items)),
		Categories: make([]CategoryRecord, 0, len(categories)),
		Rooms:      make([]RoomRecord, 0, len(rooms)),
		Receipts:   make([]ReceiptRecord, 0, len(receipts)),
	}

	categoryNames := make(map[string]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
		snap.Categories = append(snap.Categories, CategoryRecord{
			ID: c.ID, Name: c.Name, IconName: c.IconName, ColorHex: c.ColorHex,
			SortOrder: c.SortOrder, IsSystem: c.IsSystem, CreatedAt: c.CreatedAt,
		})
	}
	roomNames := make(map[string]string, len(rooms))
	for _, r := range rooms {
		roomNames[r.ID] = r.Name
		snap.Rooms = append(snap.Rooms, RoomRecord{
			ID: r.ID, Name: r.Name, IconName: r.IconName,
			SortOrder: r.SortOrder, IsSystem: r.IsSystem, CreatedAt: r.CreatedAt,
		})
	}

	for _, it := range items {
		rec := ItemRecord{
			ID:               it.ID,
			Name:             it.Name,
			Description:      it.Description,
			Brand:            it.Brand,
			ModelNumber:      it.ModelNumber,
			SerialNumber:     it.SerialNumber,
			PurchasePrice:    it.PurchasePrice,
			PurchaseDate:     it.PurchaseDate,
			CurrencyCode:     it.CurrencyCode,
			Condition:        it.Condition,
			Notes:            it.Notes,
			PhotoIdentifiers: append([]string{}, it.PhotoKeys...),
			CreatedAt:        it.CreatedAt,
			UpdatedAt:        it.UpdatedAt,
		}
		if it.CategoryID != nil {
			if name, ok := categoryNames[*it.CategoryID]; ok {
				rec.CategoryName = &name
			}
		}
		if it.RoomID != nil {
			if name, ok := roomNames[*it.RoomID]; ok {
				rec.RoomName = &name
			}
		}
		snap.Items = append(snap.Items, rec)
	}

	for _, r := range receipts {
		snap.Receipts = append(snap.Receipts, ReceiptRecord{
			ID:              r.ID,
			Vendor:          r.Vendor,
			Total:           r.Total,
			TaxAmount:       r.TaxAmount,
			PurchaseDate:    r.PurchaseDate,
			RawText:         r.RawText,
			Confidence:      r.Confidence,
			ImageIdentifier: r.ImageKey,
			LinkedItemID:    r.ItemID,
			CreatedAt:       r.CreatedAt,
		})
	}

	sort.SliceStable(snap.Items, func(i, j int) bool { return snap.Items[i].Name < snap.Items[j].Name })
	return snap
}

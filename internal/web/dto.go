package web

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nestory/nestory/internal/domain"
	"github.com/nestory/nestory/internal/score"
)

type categoryRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	IconName  string `json:"iconName" validate:"max=64"`
	ColorHex  string `json:"colorHex" validate:"omitempty,hexcolor"`
	SortOrder int    `json:"sortOrder" validate:"gte=0"`
}

type categoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IconName  string    `json:"iconName"`
	ColorHex  string    `json:"colorHex"`
	SortOrder int       `json:"sortOrder"`
	IsSystem  bool      `json:"isSystem"`
	CreatedAt time.Time `json:"createdAt"`
}

func toCategoryResponse(c *domain.Category) categoryResponse {
	return categoryResponse{
		ID: c.ID, Name: c.Name, IconName: c.IconName, ColorHex: c.ColorHex,
		SortOrder: c.SortOrder, IsSystem: c.IsSystem, CreatedAt: c.CreatedAt,
	}
}

type roomRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	IconName  string `json:"iconName" validate:"max=64"`
	SortOrder int    `json:"sortOrder" validate:"gte=0"`
}

type roomResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IconName  string    `json:"iconName"`
	SortOrder int       `json:"sortOrder"`
	IsSystem  bool      `json:"isSystem"`
	CreatedAt time.Time `json:"createdAt"`
}

func toRoomResponse(r *domain.Room) roomResponse {
	return roomResponse{
		ID: r.ID, Name: r.Name, IconName: r.IconName,
		SortOrder: r.SortOrder, IsSystem: r.IsSystem, CreatedAt: r.CreatedAt,
	}
}

type itemRequest struct {
	Name          string              `json:"name" validate:"required,max=200"`
	Description   string              `json:"description" validate:"max=4000"`
	CategoryID    *string             `json:"categoryId" validate:"omitempty,max=64"`
	RoomID        *string             `json:"roomId" validate:"omitempty,max=64"`
	Brand         string              `json:"brand" validate:"max=100"`
	ModelNumber   string              `json:"modelNumber" validate:"max=100"`
	SerialNumber  string              `json:"serialNumber" validate:"max=100"`
	PurchasePrice decimal.NullDecimal `json:"purchasePrice"`
	PurchaseDate  *time.Time          `json:"purchaseDate"`
	CurrencyCode  string              `json:"currencyCode" validate:"omitempty,len=3,uppercase"`
	Condition     string              `json:"condition" validate:"max=32"`
	Notes         string              `json:"notes" validate:"max=4000"`
}

func (req *itemRequest) apply(item *domain.Item) {
	item.Name = req.Name
	item.Description = req.Description
	item.CategoryID = req.CategoryID
	item.RoomID = req.RoomID
	item.Brand = req.Brand
	item.ModelNumber = req.ModelNumber
	item.SerialNumber = req.SerialNumber
	item.PurchasePrice = req.PurchasePrice
	item.PurchaseDate = req.PurchaseDate
	item.CurrencyCode = req.CurrencyCode
	item.Condition = req.Condition
	item.Notes = req.Notes
}

type itemResponse struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	CategoryID    *string             `json:"categoryId"`
	RoomID        *string             `json:"roomId"`
	Brand         string              `json:"brand"`
	ModelNumber   string              `json:"modelNumber"`
	SerialNumber  string              `json:"serialNumber"`
	PurchasePrice decimal.NullDecimal `json:"purchasePrice"`
	PurchaseDate  *time.Time          `json:"purchaseDate"`
	CurrencyCode  string              `json:"currencyCode"`
	Condition     string              `json:"condition"`
	Notes         string              `json:"notes"`
	Photos        []string            `json:"photos"`
	Receipts      []string            `json:"receipts"`
	Documentation score.Result        `json:"documentation"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

func toItemResponse(it *domain.Item) itemResponse {
	resp := itemResponse{
		ID: it.ID, Name: it.Name, Description: it.Description,
		CategoryID: it.CategoryID, RoomID: it.RoomID,
		Brand: it.Brand, ModelNumber: it.ModelNumber, SerialNumber: it.SerialNumber,
		PurchasePrice: it.PurchasePrice, PurchaseDate: it.PurchaseDate,
		CurrencyCode: it.CurrencyCode, Condition: it.Condition, Notes: it.Notes,
		Photos: it.PhotoKeys, Receipts: it.ReceiptIDs,
		Documentation: score.EvaluateItem(it),
		CreatedAt:     it.CreatedAt, UpdatedAt: it.UpdatedAt,
	}
	if resp.Photos == nil {
		resp.Photos = []string{}
	}
	if resp.Receipts == nil {
		resp.Receipts = []string{}
	}
	return resp
}

type photoResponse struct {
	ID         int64     `json:"id"`
	ItemID     string    `json:"itemId"`
	StorageKey string    `json:"storageKey"`
	MimeType   string    `json:"mimeType"`
	SortOrder  int       `json:"sortOrder"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func toPhotoResponse(p *domain.Photo) photoResponse {
	return photoResponse{
		ID: p.ID, ItemID: p.ItemID, StorageKey: p.StorageKey,
		MimeType: p.MimeType, SortOrder: p.SortOrder, UploadedAt: p.UploadedAt,
	}
}

type receiptRequest struct {
	Vendor       *string             `json:"vendor" validate:"omitempty,max=200"`
	Total        decimal.NullDecimal `json:"total"`
	TaxAmount    decimal.NullDecimal `json:"taxAmount"`
	PurchaseDate *time.Time          `json:"purchaseDate"`
	RawText      string              `json:"rawText" validate:"max=20000"`
	Confidence   float64             `json:"confidence" validate:"gte=0,lte=1"`
	ItemID       *string             `json:"itemId" validate:"omitempty,max=64"`
}

type linkRequest struct {
	ItemID *string `json:"itemId" validate:"omitempty,max=64"`
}

type receiptResponse struct {
	ID           string              `json:"id"`
	Vendor       *string             `json:"vendor"`
	Total        decimal.NullDecimal `json:"total"`
	TaxAmount    decimal.NullDecimal `json:"taxAmount"`
	PurchaseDate *time.Time          `json:"purchaseDate"`
	RawText      string              `json:"rawText"`
	Confidence   float64             `json:"confidence"`
	ImageKey     *string             `json:"imageKey"`
	ItemID       *string             `json:"itemId"`
	CreatedAt    time.Time           `json:"createdAt"`
}

func toReceiptResponse(r *domain.Receipt) receiptResponse {
	return receiptResponse{
		ID: r.ID, Vendor: r.Vendor, Total: r.Total, TaxAmount: r.TaxAmount,
		PurchaseDate: r.PurchaseDate, RawText: r.RawText, Confidence: r.Confidence,
		ImageKey: r.ImageKey, ItemID: r.ItemID, CreatedAt: r.CreatedAt,
	}
}

func mapSlice[T, R any](in []T, f func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}

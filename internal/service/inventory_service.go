package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nestory/nestory/internal/domain"
	"github.com/nestory/nestory/internal/metrics"
	"github.com/nestory/nestory/internal/ocr"
	"github.com/nestory/nestory/internal/photostore"
	"github.com/nestory/nestory/internal/report"
	"github.com/nestory/nestory/internal/score"
)

// categoryRepository is the subset of store.CategoryStore that InventoryService requires.
type categoryRepository interface {
	Create(ctx context.Context, c *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
}

// roomRepository is the subset of store.RoomStore that InventoryService requires.
type roomRepository interface {
	Create(ctx context.Context, r *domain.Room) error
	GetByID(ctx context.Context, id string) (*domain.Room, error)
	List(ctx context.Context) ([]*domain.Room, error)
}

// itemRepository is the subset of store.ItemStore that InventoryService requires.
type itemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	List(ctx context.Context) ([]*domain.Item, error)
	Search(ctx context.Context, query string) ([]*domain.Item, error)
	Update(ctx context.Context, item *domain.Item) error
	Delete(ctx context.Context, id string) error
}

// photoRepository is the subset of store.PhotoStore that InventoryService requires.
type photoRepository interface {
	Create(ctx context.Context, itemID, storageKey, mimeType string) (*domain.Photo, error)
	ListByItemID(ctx context.Context, itemID string) ([]*domain.Photo, error)
}

// receiptRepository is the subset of store.ReceiptStore that InventoryService requires.
type receiptRepository interface {
	Create(ctx context.Context, r *domain.Receipt) error
	GetByID(ctx context.Context, id string) (*domain.Receipt, error)
	List(ctx context.Context) ([]*domain.Receipt, error)
	LinkItem(ctx context.Context, id string, itemID *string) error
}

type InventoryService struct {
	categories categoryRepository
	rooms      roomRepository
	items      itemRepository
	photos     photoRepository
	receipts   receiptRepository
	analyzer   ocr.ReceiptAnalyzer
	photoStg   photostore.PhotoStore
	logger     *slog.Logger
}

func NewInventoryService(
	categories categoryRepository,
	rooms roomRepository,
	items itemRepository,
	photos photoRepository,
	receipts receiptRepository,
	analyzer ocr.ReceiptAnalyzer,
	photoStg photostore.PhotoStore,
	logger *slog.Logger,
) *InventoryService {
	return &InventoryService{
		categories: categories,
		rooms:      rooms,
		items:      items,
		photos:     photos,
		receipts:   receipts,
		analyzer:   analyzer,
		photoStg:   photoStg,
		logger:     logger,
	}
}

func (s *InventoryService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categories.List(ctx)
}

// CreateCategory adds a user category. IsSystem is always cleared.
func (s *InventoryService) CreateCategory(ctx context.Context, c *domain.Category) error {
	c.IsSystem = false
	return s.categories.Create(ctx, c)
}

func (s *InventoryService) ListRooms(ctx context.Context) ([]*domain.Room, error) {
	return s.rooms.List(ctx)
}

func (s *InventoryService) CreateRoom(ctx context.Context, r *domain.Room) error {
	r.IsSystem = false
	return s.rooms.Create(ctx, r)
}

// ListItems returns every item, or those whose name contains query.
func (s *InventoryService) ListItems(ctx context.Context, query string) ([]*domain.Item, error) {
	if query != "" {
		return s.items.Search(ctx, query)
	}
	return s.items.List(ctx)
}

// GetItem returns the item or ErrNotFound.
func (s *InventoryService) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	return item, nil
}

func (s *InventoryService) CreateItem(ctx context.Context, item *domain.Item) error {
	if err := s.checkPlacement(ctx, item); err != nil {
		return err
	}
	if err := s.items.Create(ctx, item); err != nil {
		return err
	}
	s.logger.Info("item created", "item_id", item.ID, "name", item.Name)
	return nil
}

func (s *InventoryService) UpdateItem(ctx context.Context, item *domain.Item) error {
	if err := s.checkPlacement(ctx, item); err != nil {
		return err
	}
	return s.items.Update(ctx, item)
}

// DeleteItem removes the item and then its photo files. File removal is
// best effort; the rows are already gone.
func (s *InventoryService) DeleteItem(ctx context.Context, id string) error {
	photos, err := s.photos.ListByItemID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list photos for item %s: %w", id, err)
	}
	if err := s.items.Delete(ctx, id); err != nil {
		return err
	}
	for _, p := range photos {
		if err := s.photoStg.Delete(ctx, p.StorageKey); err != nil && !errors.Is(err, photostore.ErrNotFound) {
			s.logger.Error("failed to delete photo file", "item_id", id, "storage_key", p.StorageKey, "error", err)
		}
	}
	s.logger.Info("item deleted", "item_id", id, "photos", len(photos))
	return nil
}

// checkPlacement verifies that the item's category and room exist.
func (s *InventoryService) checkPlacement(ctx context.Context, item *domain.Item) error {
	if item.CategoryID != nil {
		c, err := s.categories.GetByID(ctx, *item.CategoryID)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("category %s: %w", *item.CategoryID, ErrInvalidReference)
		}
	}
	if item.RoomID != nil {
		r, err := s.rooms.GetByID(ctx, *item.RoomID)
		if err != nil {
			return err
		}
		if r == nil {
			return fmt.Errorf("room %s: %w", *item.RoomID, ErrInvalidReference)
		}
	}
	return nil
}

func (s *InventoryService) ItemScore(ctx context.Context, id string) (score.Result, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return score.Result{}, err
	}
	return score.EvaluateItem(item), nil
}

func (s *InventoryService) ScoreSummary(ctx context.Context) (score.Summary, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return score.Summary{}, err
	}
	results := make([]score.Result, 0, len(items))
	for _, item := range items {
		results = append(results, score.EvaluateItem(item))
	}
	return score.Summarize(results), nil
}

// AddPhoto stores the image file and appends it to the item's photos.
func (s *InventoryService) AddPhoto(ctx context.Context, itemID string, imageData []byte, mimeType string) (*domain.Photo, error) {
	if _, err := s.GetItem(ctx, itemID); err != nil {
		return nil, err
	}

	storageKey, err := s.photoStg.Save(ctx, "item_"+itemID, mimeType, bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to save photo: %w", err)
	}
	s.logger.Debug("photo saved", "item_id", itemID, "storage_key", storageKey)

	photo, err := s.photos.Create(ctx, itemID, storageKey, mimeType)
	if err != nil {
		_ = s.photoStg.Delete(ctx, storageKey)
		return nil, fmt.Errorf("failed to create photo record: %w", err)
	}
	return photo, nil
}

// OpenPhoto returns the stored file and its MIME type. The caller closes it.
func (s *InventoryService) OpenPhoto(ctx context.Context, storageKey string) (io.ReadCloser, string, error) {
	rc, mimeType, err := s.photoStg.Get(ctx, storageKey)
	if errors.Is(err, photostore.ErrNotFound) || errors.Is(err, photostore.ErrInvalidKey) {
		return nil, "", fmt.Errorf("photo %s: %w", storageKey, ErrNotFound)
	}
	return rc, mimeType, err
}

func (s *InventoryService) ListReceipts(ctx context.Context) ([]*domain.Receipt, error) {
	return s.receipts.List(ctx)
}

func (s *InventoryService) CreateReceipt(ctx context.Context, r *domain.Receipt) error {
	if err := s.checkItemLink(ctx, r.ItemID); err != nil {
		return err
	}
	return s.receipts.Create(ctx, r)
}

// LinkReceipt attaches the receipt to itemID, or detaches it when itemID is nil.
func (s *InventoryService) LinkReceipt(ctx context.Context, receiptID string, itemID *string) error {
	if err := s.checkItemLink(ctx, itemID); err != nil {
		return err
	}
	return s.receipts.LinkItem(ctx, receiptID, itemID)
}

func (s *InventoryService) checkItemLink(ctx context.Context, itemID *string) error {
	if itemID == nil {
		return nil
	}
	item, err := s.items.GetByID(ctx, *itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("item %s: %w", *itemID, ErrInvalidReference)
	}
	return nil
}

// ScanReceipt saves the receipt image, extracts its fields with the
// configured analyzer, and stores the result as a new receipt, optionally
// linked to itemID.
func (s *InventoryService) ScanReceipt(ctx context.Context, imageData []byte, mimeType string, itemID *string) (*domain.Receipt, error) {
	if s.analyzer == nil {
		return nil, ErrOCRUnavailable
	}
	if err := s.checkItemLink(ctx, itemID); err != nil {
		return nil, err
	}
	s.logger.Info("receipt scan started", "mime_type", mimeType, "bytes", len(imageData))

	ex, err := s.analyzer.Analyze(ctx, bytes.NewReader(imageData), mimeType)
	if err != nil {
		metrics.ReceiptScansTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to analyze receipt: %w", err)
	}

	storageKey, err := s.photoStg.Save(ctx, "receipt", mimeType, bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to save receipt image: %w", err)
	}

	receipt := &domain.Receipt{
		Vendor:       ex.Vendor,
		Total:        ex.Total,
		TaxAmount:    ex.TaxAmount,
		PurchaseDate: ex.PurchaseDate,
		RawText:      ex.RawText,
		Confidence:   ex.Confidence,
		ImageKey:     &storageKey,
		ItemID:       itemID,
	}
	if err := s.receipts.Create(ctx, receipt); err != nil {
		_ = s.photoStg.Delete(ctx, storageKey)
		return nil, err
	}

	metrics.ReceiptScansTotal.WithLabelValues("ok").Inc()
	s.logger.Info("receipt scan complete", "receipt_id", receipt.ID, "confidence", receipt.Confidence)
	return receipt, nil
}

// Report builds the insurance report over the whole inventory.
func (s *InventoryService) Report(ctx context.Context, now time.Time) (*report.Report, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, err
	}
	return report.Build(items, categories, rooms, now), nil
}

// WriteReport renders the report in format to w.
func (s *InventoryService) WriteReport(ctx context.Context, w io.Writer, format report.Format) error {
	rep, err := s.Report(ctx, time.Now())
	if err != nil {
		return err
	}
	if err := rep.Write(w, format); err != nil {
		return err
	}
	metrics.ReportsTotal.WithLabelValues(string(format)).Inc()
	return nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nestory/nestory/internal/domain"
)

type ItemStore struct {
	db DBTX
}

func NewItemStore(db DBTX) *ItemStore {
	return &ItemStore{db: db}
}

const itemColumns = `id, name, description, category_id, room_id, brand, model_number, serial_number,
	purchase_price, purchase_date, currency_code, condition, notes, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (*domain.Item, error) {
	item := &domain.Item{}
	err := row.Scan(&item.ID, &item.Name, &item.Description, &item.CategoryID, &item.RoomID,
		&item.Brand, &item.ModelNumber, &item.SerialNumber, &item.PurchasePrice, &item.PurchaseDate,
		&item.CurrencyCode, &item.Condition, &item.Notes, &item.CreatedAt, &item.UpdatedAt)
	return item, err
}

// Create inserts the item row. Photos and receipts are stored separately.
func (s *ItemStore) Create(ctx context.Context, item *domain.Item) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CurrencyCode == "" {
		item.CurrencyCode = "USD"
	}
	item.CreatedAt = nowIfZero(item.CreatedAt)
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = item.CreatedAt
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ID, item.Name, item.Description, item.CategoryID, item.RoomID,
		item.Brand, item.ModelNumber, item.SerialNumber, item.PurchasePrice, item.PurchaseDate,
		item.CurrencyCode, item.Condition, item.Notes, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// GetByID returns the item with its photo keys and receipt IDs, or nil if
// there is no such item.
func (s *ItemStore) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	item, err := scanItem(s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	if err := s.attach(ctx, map[string]*domain.Item{item.ID: item}, "WHERE item_id = ?", id); err != nil {
		return nil, err
	}
	return item, nil
}

// Exists reports whether an item with id is stored, without loading it.
func (s *ItemStore) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items WHERE id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check item: %w", err)
	}
	return n > 0, nil
}

func (s *ItemStore) List(ctx context.Context) ([]*domain.Item, error) {
	return s.list(ctx, `SELECT `+itemColumns+` FROM items ORDER BY name ASC`)
}

// Search matches item names case-insensitively.
func (s *ItemStore) Search(ctx context.Context, query string) ([]*domain.Item, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	return s.list(ctx, `SELECT `+itemColumns+` FROM items WHERE LOWER(name) LIKE ? ORDER BY name ASC`, pattern)
}

func (s *ItemStore) list(ctx context.Context, query string, args ...any) ([]*domain.Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer closeRows(rows)

	var items []*domain.Item
	byID := make(map[string]*domain.Item)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
		byID[item.ID] = item
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	closeRows(rows)

	if len(items) == 0 {
		return items, nil
	}
	if err := s.attach(ctx, byID, ""); err != nil {
		return nil, err
	}
	return items, nil
}

// attach fills PhotoKeys and ReceiptIDs for the items in byID. filter is an
// optional WHERE clause applied to both child tables.
func (s *ItemStore) attach(ctx context.Context, byID map[string]*domain.Item, filter string, args ...any) error {
	photos, err := s.db.QueryContext(ctx,
		`SELECT item_id, storage_key FROM photos `+filter+` ORDER BY item_id, sort_order, id`, args...)
	if err != nil {
		return fmt.Errorf("failed to list item photos: %w", err)
	}
	defer closeRows(photos)
	for photos.Next() {
		var itemID, key string
		if err := photos.Scan(&itemID, &key); err != nil {
			return fmt.Errorf("failed to scan item photo: %w", err)
		}
		if item, ok := byID[itemID]; ok {
			item.PhotoKeys = append(item.PhotoKeys, key)
		}
	}
	if err := photos.Err(); err != nil {
		return fmt.Errorf("error iterating item photos: %w", err)
	}
	closeRows(photos)

	receiptFilter := "WHERE item_id IS NOT NULL"
	if filter != "" {
		receiptFilter = filter
	}
	receipts, err := s.db.QueryContext(ctx,
		`SELECT item_id, id FROM receipts `+receiptFilter+` ORDER BY item_id, created_at, id`, args...)
	if err != nil {
		return fmt.Errorf("failed to list item receipts: %w", err)
	}
	defer closeRows(receipts)
	for receipts.Next() {
		var itemID, id string
		if err := receipts.Scan(&itemID, &id); err != nil {
			return fmt.Errorf("failed to scan item receipt: %w", err)
		}
		if item, ok := byID[itemID]; ok {
			item.ReceiptIDs = append(item.ReceiptIDs, id)
		}
	}
	if err := receipts.Err(); err != nil {
		return fmt.Errorf("error iterating item receipts: %w", err)
	}
	return nil
}

// Update writes every editable column of item and bumps updated_at.
func (s *ItemStore) Update(ctx context.Context, item *domain.Item) error {
	item.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE items SET name = ?, description = ?, category_id = ?, room_id = ?, brand = ?,
			model_number = ?, serial_number = ?, purchase_price = ?, purchase_date = ?,
			currency_code = ?, condition = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`, item.Name, item.Description, item.CategoryID, item.RoomID, item.Brand,
		item.ModelNumber, item.SerialNumber, item.PurchasePrice, item.PurchaseDate,
		item.CurrencyCode, item.Condition, item.Notes, item.UpdatedAt, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return fmt.Errorf("failed to update item %s: %w", item.ID, err)
	}
	return nil
}

// Delete removes the item. Its photo rows cascade and linked receipts are
// unlinked by the schema.
func (s *ItemStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return fmt.Errorf("failed to delete item %s: %w", id, err)
	}
	return nil
}

func (s *ItemStore) DeleteAll(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM items`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete items: %w", err)
	}
	return result.RowsAffected()
}

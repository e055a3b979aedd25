package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/nestory/nestory/internal/domain"
)

type ReceiptStore struct {
	db DBTX
}

func NewReceiptStore(db DBTX) *ReceiptStore {
	return &ReceiptStore{db: db}
}

const receiptColumns = `id, vendor, total, tax_amount, purchase_date, raw_text, confidence, image_key, item_id, created_at`

func scanReceipt(row interface{ Scan(...any) error }) (*domain.Receipt, error) {
	r := &domain.Receipt{}
	err := row.Scan(&r.ID, &r.Vendor, &r.Total, &r.TaxAmount, &r.PurchaseDate,
		&r.RawText, &r.Confidence, &r.ImageKey, &r.ItemID, &r.CreatedAt)
	return r, err
}

func (s *ReceiptStore) Create(ctx context.Context, r *domain.Receipt) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.CreatedAt = nowIfZero(r.CreatedAt)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO receipts (`+receiptColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Vendor, r.Total, r.TaxAmount, r.PurchaseDate,
		r.RawText, r.Confidence, r.ImageKey, r.ItemID, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create receipt: %w", err)
	}
	return nil
}

func (s *ReceiptStore) GetByID(ctx context.Context, id string) (*domain.Receipt, error) {
	r, err := scanReceipt(s.db.QueryRowContext(ctx, `SELECT `+receiptColumns+` FROM receipts WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	return r, nil
}

func (s *ReceiptStore) List(ctx context.Context) ([]*domain.Receipt, error) {
	return s.list(ctx, `SELECT `+receiptColumns+` FROM receipts ORDER BY created_at DESC, id`)
}

func (s *ReceiptStore) ListByItemID(ctx context.Context, itemID string) ([]*domain.Receipt, error) {
	return s.list(ctx, `SELECT `+receiptColumns+` FROM receipts WHERE item_id = ? ORDER BY created_at, id`, itemID)
}

func (s *ReceiptStore) list(ctx context.Context, query string, args ...any) ([]*domain.Receipt, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer closeRows(rows)

	var receipts []*domain.Receipt
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		receipts = append(receipts, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating receipts: %w", err)
	}
	return receipts, nil
}

// LinkItem points the receipt at itemID, or unlinks it when itemID is nil.
func (s *ReceiptStore) LinkItem(ctx context.Context, id string, itemID *string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE receipts SET item_id = ? WHERE id = ?`, itemID, id)
	if err != nil {
		return fmt.Errorf("failed to link receipt: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return fmt.Errorf("failed to link receipt %s: %w", id, err)
	}
	return nil
}

func (s *ReceiptStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM receipts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete receipt: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return fmt.Errorf("failed to delete receipt %s: %w", id, err)
	}
	return nil
}

func (s *ReceiptStore) DeleteAll(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM receipts`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete receipts: %w", err)
	}
	return result.RowsAffected()
}

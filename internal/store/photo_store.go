package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nestory/nestory/internal/domain"
)

type PhotoStore struct {
	db DBTX
}

func NewPhotoStore(db DBTX) *PhotoStore {
	return &PhotoStore{db: db}
}

// Create appends a photo to the end of the item's photo list.
func (s *PhotoStore) Create(ctx context.Context, itemID, storageKey, mimeType string) (*domain.Photo, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO photos (item_id, storage_key, mime_type, sort_order)
		VALUES (?, ?, ?, (SELECT COUNT(*) FROM photos WHERE item_id = ?))
	`, itemID, storageKey, mimeType, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to create photo: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *PhotoStore) GetByID(ctx context.Context, id int64) (*domain.Photo, error) {
	photo := &domain.Photo{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, item_id, storage_key, mime_type, sort_order, uploaded_at FROM photos WHERE id = ?
	`, id).Scan(&photo.ID, &photo.ItemID, &photo.StorageKey, &photo.MimeType, &photo.SortOrder, &photo.UploadedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}

	return photo, nil
}

func (s *PhotoStore) ListByItemID(ctx context.Context, itemID string) ([]*domain.Photo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, item_id, storage_key, mime_type, sort_order, uploaded_at FROM photos
		WHERE item_id = ? ORDER BY sort_order, id
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer closeRows(rows)

	var photos []*domain.Photo
	for rows.Next() {
		photo := &domain.Photo{}
		if err := rows.Scan(&photo.ID, &photo.ItemID, &photo.StorageKey, &photo.MimeType, &photo.SortOrder, &photo.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, photo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}
	return photos, nil
}

func (s *PhotoStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM photos WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return fmt.Errorf("failed to delete photo %d: %w", id, err)
	}
	return nil
}

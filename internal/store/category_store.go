package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/nestory/nestory/internal/domain"
)

type CategoryStore struct {
	db DBTX
}

func NewCategoryStore(db DBTX) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, icon_name, color_hex, sort_order, is_system, created_at`

func scanCategory(row interface{ Scan(...any) error }) (*domain.Category, error) {
	c := &domain.Category{}
	err := row.Scan(&c.ID, &c.Name, &c.IconName, &c.ColorHex, &c.SortOrder, &c.IsSystem, &c.CreatedAt)
	return c, err
}

// Create inserts c, assigning a new ID when c.ID is empty.
func (s *CategoryStore) Create(ctx context.Context, c *domain.Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = nowIfZero(c.CreatedAt)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, icon_name, color_hex, sort_order, is_system, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.IconName, c.ColorHex, c.SortOrder, c.IsSystem, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (s *CategoryStore) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	return s.getOne(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
}

// GetByName matches the name exactly, case included.
func (s *CategoryStore) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	return s.getOne(ctx, `SELECT `+categoryColumns+` FROM categories WHERE name = ?`, name)
}

func (s *CategoryStore) getOne(ctx context.Context, query string, arg any) (*domain.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

func (s *CategoryStore) List(ctx context.Context) ([]*domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+categoryColumns+` FROM categories ORDER BY sort_order ASC, name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer closeRows(rows)

	var categories []*domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// Update writes the mutable attributes of c. The name and system flag are
// left alone.
func (s *CategoryStore) Update(ctx context.Context, c *domain.Category) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE categories SET icon_name = ?, color_hex = ?, sort_order = ? WHERE id = ?
	`, c.IconName, c.ColorHex, c.SortOrder, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return fmt.Errorf("failed to update category %s: %w", c.ID, err)
	}
	return nil
}

func (s *CategoryStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return fmt.Errorf("failed to delete category %s: %w", id, err)
	}
	return nil
}

// DeleteUserCreated removes every category that was not system-seeded.
func (s *CategoryStore) DeleteUserCreated(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE is_system = 0`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete categories: %w", err)
	}
	return result.RowsAffected()
}

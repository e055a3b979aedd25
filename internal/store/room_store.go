package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/nestory/nestory/internal/domain"
)

type RoomStore struct {
	db DBTX
}

func NewRoomStore(db DBTX) *RoomStore {
	return &RoomStore{db: db}
}

const roomColumns = `id, name, icon_name, sort_order, is_system, created_at`

func scanRoom(row interface{ Scan(...any) error }) (*domain.Room, error) {
	r := &domain.Room{}
	err := row.Scan(&r.ID, &r.Name, &r.IconName, &r.SortOrder, &r.IsSystem, &r.CreatedAt)
	return r, err
}

// Create inserts r, assigning a new ID when r.ID is empty.
func (s *RoomStore) Create(ctx context.Context, r *domain.Room) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.CreatedAt = nowIfZero(r.CreatedAt)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rooms (id, name, icon_name, sort_order, is_system, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.ID, r.Name, r.IconName, r.SortOrder, r.IsSystem, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

func (s *RoomStore) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	return s.getOne(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id)
}

// GetByName matches the name exactly, case included.
func (s *RoomStore) GetByName(ctx context.Context, name string) (*domain.Room, error) {
	return s.getOne(ctx, `SELECT `+roomColumns+` FROM rooms WHERE name = ?`, name)
}

func (s *RoomStore) getOne(ctx context.Context, query string, arg any) (*domain.Room, error) {
	r, err := scanRoom(s.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return r, nil
}

func (s *RoomStore) List(ctx context.Context) ([]*domain.Room, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+roomColumns+` FROM rooms ORDER BY sort_order ASC, name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer closeRows(rows)

	var rooms []*domain.Room
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rooms: %w", err)
	}
	return rooms, nil
}

// Update writes the icon and sort order of r.
func (s *RoomStore) Update(ctx context.Context, r *domain.Room) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE rooms SET icon_name = ?, sort_order = ? WHERE id = ?
	`, r.IconName, r.SortOrder, r.ID)
	if err != nil {
		return fmt.Errorf("failed to update room: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return fmt.Errorf("failed to update room %s: %w", r.ID, err)
	}
	return nil
}

func (s *RoomStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return fmt.Errorf("failed to delete room %s: %w", id, err)
	}
	return nil
}

// DeleteUserCreated removes every room that was not system-seeded.
func (s *RoomStore) DeleteUserCreated(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM rooms WHERE is_system = 0`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete rooms: %w", err)
	}
	return result.RowsAffected()
}

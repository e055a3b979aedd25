package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

type seedRow struct {
	name string
	icon string
}

var defaultCategories = []seedRow{
	{"Electronics", "tv"},
	{"Furniture", "sofa"},
	{"Appliances", "refrigerator"},
	{"Jewelry", "sparkles"},
	{"Clothing", "tshirt"},
	{"Tools", "hammer"},
	{"Art & Collectibles", "paintpalette"},
	{"Kitchen", "fork.knife"},
	{"Sports & Outdoors", "figure.run"},
	{"Other", "shippingbox"},
}

var defaultRooms = []seedRow{
	{"Living Room", "sofa"},
	{"Bedroom", "bed.double"},
	{"Kitchen", "fork.knife"},
	{"Bathroom", "shower"},
	{"Garage", "car"},
	{"Office", "desktopcomputer"},
	{"Basement", "stairs"},
	{"Attic", "house"},
}

// SeedDefaults inserts the system categories and rooms the first time a
// database is opened. Later calls are no-ops, even if the user has since
// deleted some of the defaults.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	return WithTx(ctx, db, func(tx *sql.Tx) error {
		if err := seedTable(ctx, tx, "categories", defaultCategories); err != nil {
			return err
		}
		return seedTable(ctx, tx, "rooms", defaultRooms)
	})
}

func seedTable(ctx context.Context, tx *sql.Tx, table string, rows []seedRow) error {
	var seeded int
	if err := tx.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE is_system = 1", table),
	).Scan(&seeded); err != nil {
		return fmt.Errorf("failed to check seeded %s: %w", table, err)
	}
	if seeded > 0 {
		return nil
	}

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, name, icon_name, sort_order, is_system) VALUES (?, ?, ?, ?, 1)
		ON CONFLICT(name) DO NOTHING
	`, table)
	for i, r := range rows {
		if _, err := tx.ExecContext(ctx, stmt, uuid.NewString(), r.name, r.icon, i); err != nil {
			return fmt.Errorf("failed to seed %s %q: %w", table, r.name, err)
		}
	}
	return nil
}

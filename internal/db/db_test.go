package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenForTesting(t *testing.T) {
	db, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, db.Close()) })

	assert.NoError(t, db.Ping())
}

func TestMigrationsApply(t *testing.T) {
	db, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, db.Close()) })

	for _, table := range []string{"categories", "rooms", "items", "photos", "receipts"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestOpenForTesting_Isolated(t *testing.T) {
	a, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, a.Close()) })
	b, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, b.Close()) })

	_, err = a.Exec("INSERT INTO categories (id, name) VALUES ('x', 'Only In A')")
	require.NoError(t, err)

	var n int
	require.NoError(t, b.QueryRow("SELECT COUNT(*) FROM categories WHERE name = 'Only In A'").Scan(&n))
	assert.Zero(t, n)
}

func TestSeedDefaults(t *testing.T) {
	db, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, db.Close()) })

	var categories, rooms int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM categories WHERE is_system = 1").Scan(&categories))
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM rooms WHERE is_system = 1").Scan(&rooms))
	assert.Equal(t, len(defaultCategories), categories)
	assert.Equal(t, len(defaultRooms), rooms)

	// Seeding again must not duplicate rows.
	require.NoError(t, SeedDefaults(context.Background(), db))
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&categories))
	assert.Equal(t, len(defaultCategories), categories)
}

func TestOpenFile_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nestory.db")

	db, err := Open(path)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO rooms (id, name) VALUES ('r1', 'Shed')")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, db.Close()) })

	var name string
	require.NoError(t, db.QueryRow("SELECT name FROM rooms WHERE id = 'r1'").Scan(&name))
	assert.Equal(t, "Shed", name)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, db.Close()) })
	ctx := context.Background()

	boom := errors.New("boom")
	err = WithTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO rooms (id, name) VALUES ('r1', 'Shed')"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM rooms WHERE id = 'r1'").Scan(&n))
	assert.Zero(t, n)
}

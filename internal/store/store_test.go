package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestory/nestory/internal/db"
	"github.com/nestory/nestory/internal/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })
	return d
}

func createItem(t *testing.T, d DBTX, name string) *domain.Item {
	t.Helper()
	item := &domain.Item{Name: name}
	require.NoError(t, NewItemStore(d).Create(context.Background(), item))
	return item
}

func ptr[T any](v T) *T { return &v }

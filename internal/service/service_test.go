package service

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nestory/nestory/internal/db"
	"github.com/nestory/nestory/internal/ocr"
	"github.com/nestory/nestory/internal/photostore"
	"github.com/nestory/nestory/internal/store"
)

// stubAnalyzer is a minimal ReceiptAnalyzer for tests.
type stubAnalyzer struct {
	result *ocr.Extraction
	err    error
	calls  int
}

func (s *stubAnalyzer) Analyze(_ context.Context, _ io.Reader, _ string) (*ocr.Extraction, error) {
	s.calls++
	return s.result, s.err
}

// stubPhotoStore is a minimal in-memory photostore.PhotoStore for tests.
type stubPhotoStore struct {
	saved   map[string][]byte
	saveErr error
	n       int
}

func newStubPhotoStore() *stubPhotoStore {
	return &stubPhotoStore{saved: make(map[string][]byte)}
}

func (s *stubPhotoStore) Save(_ context.Context, prefix, _ string, r io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	data, _ := io.ReadAll(r)
	s.n++
	key := fmt.Sprintf("%s_%d.jpg", prefix, s.n)
	s.saved[key] = data
	return key, nil
}

func (s *stubPhotoStore) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	data, ok := s.saved[key]
	if !ok {
		return nil, "", photostore.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), "image/jpeg", nil
}

func (s *stubPhotoStore) Delete(_ context.Context, key string) error {
	if _, ok := s.saved[key]; !ok {
		return photostore.ErrNotFound
	}
	delete(s.saved, key)
	return nil
}

func (s *stubPhotoStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := s.saved[key]
	return ok, nil
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func newInventoryService(d *sql.DB, analyzer ocr.ReceiptAnalyzer, photos *stubPhotoStore) *InventoryService {
	return NewInventoryService(
		store.NewCategoryStore(d),
		store.NewRoomStore(d),
		store.NewItemStore(d),
		store.NewPhotoStore(d),
		store.NewReceiptStore(d),
		analyzer,
		photos,
		slog.Default(),
	)
}

func ptr[T any](v T) *T { return &v }

package photostore

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrNotFound is returned when a storage key has no stored file.
	ErrNotFound = errors.New("photo not found")
	// ErrInvalidKey is returned for keys that are empty or escape the store.
	ErrInvalidKey = errors.New("invalid storage key")
)

// PhotoStore holds the binary image files that item photos and receipt
// scans point at by storage key.
type PhotoStore interface {
	Save(ctx context.Context, prefix, mimeType string, r io.Reader) (storageKey string, err error)
	Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, storageKey string) error
	Exists(ctx context.Context, storageKey string) (bool, error)
}

// Package local stores photos as files in a single directory. Keys are file
// names; the extension carries the MIME type.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/nestory/nestory/internal/photostore"
)

var extByMIME = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/heic": ".heic",
}

var mimeByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".heic": "image/heic",
}

type LocalPhotoStore struct {
	dir string
}

var _ photostore.PhotoStore = (*LocalPhotoStore)(nil)

func NewLocalPhotoStore(dir string) (*LocalPhotoStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid photo directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create photo directory: %w", err)
	}
	return &LocalPhotoStore{dir: abs}, nil
}

// Save writes r under a new key "<prefix>_<uuid><ext>". The file is written
// to a temp name and renamed, so a key never refers to a partial file.
func (s *LocalPhotoStore) Save(ctx context.Context, prefix, mimeType string, r io.Reader) (string, error) {
	if strings.ContainsAny(prefix, `/\`) {
		return "", fmt.Errorf("prefix %q: %w", prefix, photostore.ErrInvalidKey)
	}
	ext, ok := extByMIME[mimeType]
	if !ok {
		ext = ".jpg"
	}
	key := prefix + "_" + uuid.NewString() + ext

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	cleanup := func() {
		if rerr := os.Remove(tmp.Name()); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) {
			slog.Error("failed to remove temp photo", "path", tmp.Name(), "error", rerr)
		}
	}

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("failed to write photo: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to close photo: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, key)); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to store photo: %w", err)
	}
	return key, nil
}

func (s *LocalPhotoStore) Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error) {
	path, err := s.resolve(storageKey)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", photostore.ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to open photo: %w", err)
	}
	return f, mimeTypeOf(path), nil
}

func (s *LocalPhotoStore) Delete(ctx context.Context, storageKey string) error {
	path, err := s.resolve(storageKey)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return photostore.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}

// Exists reports whether storageKey names a regular file in the store.
func (s *LocalPhotoStore) Exists(ctx context.Context, storageKey string) (bool, error) {
	path, err := s.resolve(storageKey)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat photo: %w", err)
	}
	return info.Mode().IsRegular(), nil
}

// resolve maps a key to a path directly inside the store directory. Keys
// with separators, dot segments, or a leading dot are rejected.
func (s *LocalPhotoStore) resolve(storageKey string) (string, error) {
	if storageKey == "" || strings.HasPrefix(storageKey, ".") ||
		strings.ContainsAny(storageKey, `/\`) || filepath.Base(storageKey) != storageKey {
		return "", fmt.Errorf("key %q: %w", storageKey, photostore.ErrInvalidKey)
	}
	return filepath.Join(s.dir, storageKey), nil
}

func mimeTypeOf(path string) string {
	if m, ok := mimeByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return m
	}
	return "image/jpeg"
}

package local

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestory/nestory/internal/photostore"
)

func newStore(t *testing.T) (*LocalPhotoStore, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewLocalPhotoStore(dir)
	require.NoError(t, err)
	return s, dir
}

func TestSaveAndGet(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	key, err := s.Save(ctx, "item_abc", "image/jpeg", bytes.NewReader([]byte("jpeg bytes")))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "item_abc_"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	rc, mimeType, err := s.Get(ctx, key)
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg bytes"), data)
	assert.Equal(t, "image/jpeg", mimeType)
}

func TestSaveKeepsMIMEInExtension(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	for mimeType, ext := range map[string]string{
		"image/png":  ".png",
		"image/webp": ".webp",
		"image/heic": ".heic",
		"text/plain": ".jpg",
	} {
		key, err := s.Save(ctx, "receipt", mimeType, strings.NewReader("x"))
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(key, ext), key)
	}
}

func TestSaveKeysAreUnique(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	a, err := s.Save(ctx, "item", "image/jpeg", strings.NewReader("a"))
	require.NoError(t, err)
	b, err := s.Save(ctx, "item", "image/jpeg", strings.NewReader("b"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestSaveFailureLeavesNoFiles(t *testing.T) {
	s, dir := newStore(t)

	_, err := s.Save(context.Background(), "item", "image/jpeg", failingReader{})
	assert.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveRejectsPrefixWithSeparator(t *testing.T) {
	s, _ := newStore(t)

	_, err := s.Save(context.Background(), "../escape", "image/jpeg", strings.NewReader("x"))
	assert.ErrorIs(t, err, photostore.ErrInvalidKey)
}

func TestDelete(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	key, err := s.Save(ctx, "item", "image/jpeg", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, key))
	_, _, err = s.Get(ctx, key)
	assert.ErrorIs(t, err, photostore.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, key), photostore.ErrNotFound)
}

func TestExists(t *testing.T) {
	s, dir := newStore(t)
	ctx := context.Background()

	key, err := s.Save(ctx, "receipt", "image/png", strings.NewReader("png"))
	require.NoError(t, err)

	ok, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Exists(ctx, "missing.jpg")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0755))
	ok, err = s.Exists(ctx, "subdir")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRejectsTraversalKeys(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	for _, key := range []string{"", "../../etc/passwd", "a/b.jpg", `..\x.jpg`, ".upload-123"} {
		_, _, err := s.Get(ctx, key)
		assert.ErrorIs(t, err, photostore.ErrInvalidKey, key)

		_, err = s.Exists(ctx, key)
		assert.ErrorIs(t, err, photostore.ErrInvalidKey, key)

		assert.ErrorIs(t, s.Delete(ctx, key), photostore.ErrInvalidKey, key)
	}
}

package service

import (
	"errors"

	"github.com/nestory/nestory/internal/store"
)

var (
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = store.ErrNotFound
	// ErrInvalidReference is returned when a record points at a category,
	// room, or item that does not exist.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrOCRUnavailable is returned by ScanReceipt when no analyzer is configured.
	ErrOCRUnavailable = errors.New("receipt OCR is not configured")
)

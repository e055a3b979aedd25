package web

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const maxPhotoSize = 50 * 1024 * 1024 // 50 MB

// allowedImageTypes is the set of MIME types accepted for uploaded photos.
// net/http.DetectContentType handles JPEG, PNG, and GIF via magic-byte
// sniffing. WebP and HEIC are detected separately because the stdlib sniffer
// has no signature for them.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// isHEIC reports whether data is an ISO-BMFF file with a HEIF brand, which
// is what phone cameras produce.
func isHEIC(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "mif1", "msf1":
		return true
	}
	return false
}

// allowedImageMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	if isHEIC(data) {
		return "image/heic", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

// readImage pulls the "image" part out of a multipart upload. On failure it
// writes a 400 and returns ok=false.
func (s *Server) readImage(w http.ResponseWriter, r *http.Request) (data []byte, mimeType string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse form")
		return nil, "", false
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "image file required")
		return nil, "", false
	}
	defer closeWithLog(file, "upload file", s.logger)

	data, err = io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read file")
		return nil, "", false
	}

	mimeType, ok = allowedImageMIME(data)
	if !ok {
		respondError(w, http.StatusBadRequest, "unsupported image format")
		return nil, "", false
	}
	return data, mimeType, true
}

func (s *Server) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	data, mimeType, ok := s.readImage(w, r)
	if !ok {
		return
	}
	photo, err := s.inventory.AddPhoto(r.Context(), chi.URLParam(r, "id"), data, mimeType)
	if err != nil {
		s.respondServiceError(w, r, "upload photo", err)
		return
	}
	respondJSON(w, http.StatusCreated, toPhotoResponse(photo))
}

func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	reader, mimeType, err := s.inventory.OpenPhoto(r.Context(), key)
	if err != nil {
		s.respondServiceError(w, r, "get photo", err)
		return
	}
	defer closeWithLog(reader, "photo reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write photo failed", "storage_key", key, "error", err)
	}
}

func (s *Server) handleScanReceipt(w http.ResponseWriter, r *http.Request) {
	data, mimeType, ok := s.readImage(w, r)
	if !ok {
		return
	}
	var itemID *string
	if v := r.FormValue("itemId"); v != "" {
		itemID = &v
	}

	receipt, err := s.inventory.ScanReceipt(r.Context(), data, mimeType, itemID)
	if err != nil {
		s.respondServiceError(w, r, "scan receipt", err)
		return
	}
	respondJSON(w, http.StatusCreated, toReceiptResponse(receipt))
}

package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nestory/nestory/internal/domain"
)

func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := s.inventory.ListReceipts(r.Context())
	if err != nil {
		s.respondServiceError(w, r, "list receipts", err)
		return
	}
	respondJSON(w, http.StatusOK, mapSlice(receipts, toReceiptResponse))
}

func (s *Server) handleCreateReceipt(w http.ResponseWriter, r *http.Request) {
	var req receiptRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	receipt := &domain.Receipt{
		Vendor:       req.Vendor,
		Total:        req.Total,
		TaxAmount:    req.TaxAmount,
		PurchaseDate: req.PurchaseDate,
		RawText:      req.RawText,
		Confidence:   req.Confidence,
		ItemID:       req.ItemID,
	}
	if err := s.inventory.CreateReceipt(r.Context(), receipt); err != nil {
		s.respondServiceError(w, r, "create receipt", err)
		return
	}
	respondJSON(w, http.StatusCreated, toReceiptResponse(receipt))
}

func (s *Server) handleLinkReceipt(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := s.inventory.LinkReceipt(r.Context(), chi.URLParam(r, "id"), req.ItemID); err != nil {
		s.respondServiceError(w, r, "link receipt", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

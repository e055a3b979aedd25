package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nestory/nestory/internal/domain"
)

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.inventory.ListItems(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.respondServiceError(w, r, "list items", err)
		return
	}
	respondJSON(w, http.StatusOK, mapSlice(items, toItemResponse))
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	item := &domain.Item{}
	req.apply(item)
	if err := s.inventory.CreateItem(r.Context(), item); err != nil {
		s.respondServiceError(w, r, "create item", err)
		return
	}
	respondJSON(w, http.StatusCreated, toItemResponse(item))
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.inventory.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondServiceError(w, r, "get item", err)
		return
	}
	respondJSON(w, http.StatusOK, toItemResponse(item))
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	ctx := r.Context()
	item, err := s.inventory.GetItem(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.respondServiceError(w, r, "update item", err)
		return
	}
	req.apply(item)
	if err := s.inventory.UpdateItem(ctx, item); err != nil {
		s.respondServiceError(w, r, "update item", err)
		return
	}
	respondJSON(w, http.StatusOK, toItemResponse(item))
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.inventory.DeleteItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondServiceError(w, r, "delete item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleItemScore(w http.ResponseWriter, r *http.Request) {
	res, err := s.inventory.ItemScore(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondServiceError(w, r, "item score", err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleScoreSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.inventory.ScoreSummary(r.Context())
	if err != nil {
		s.respondServiceError(w, r, "score summary", err)
		return
	}
	respondJSON(w, http.StatusOK, sum)
}

package web

import (
	"net/http"

	"github.com/nestory/nestory/internal/domain"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.inventory.ListCategories(r.Context())
	if err != nil {
		s.respondServiceError(w, r, "list categories", err)
		return
	}
	respondJSON(w, http.StatusOK, mapSlice(categories, toCategoryResponse))
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	c := &domain.Category{Name: req.Name, IconName: req.IconName, ColorHex: req.ColorHex, SortOrder: req.SortOrder}
	if err := s.inventory.CreateCategory(r.Context(), c); err != nil {
		s.respondServiceError(w, r, "create category", err)
		return
	}
	respondJSON(w, http.StatusCreated, toCategoryResponse(c))
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.inventory.ListRooms(r.Context())
	if err != nil {
		s.respondServiceError(w, r, "list rooms", err)
		return
	}
	respondJSON(w, http.StatusOK, mapSlice(rooms, toRoomResponse))
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req roomRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	room := &domain.Room{Name: req.Name, IconName: req.IconName, SortOrder: req.SortOrder}
	if err := s.inventory.CreateRoom(r.Context(), room); err != nil {
		s.respondServiceError(w, r, "create room", err)
		return
	}
	respondJSON(w, http.StatusCreated, toRoomResponse(room))
}

package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all free-float routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/freefloat", h.HandleGetTable)
}

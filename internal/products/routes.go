package products

import (
	"github.com/go-chi/chi/v5"

	"github.com/cantina-dev/cantina/internal/auth"
)

// MountRoutes registers the product endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser, auth.RequireAdmin)
		r.Post("/", h.create)
		r.Put("/{id}", h.edit)
		r.Delete("/{id}", h.delete)
	})
}

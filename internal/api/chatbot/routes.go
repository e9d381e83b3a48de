package chatbot

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers chatbot routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/chatbot", func(r chi.Router) {
		r.Post("/query", h.Query)
		r.Post("/query/stream", h.QueryStream)
	})
}

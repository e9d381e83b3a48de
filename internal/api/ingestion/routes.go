package ingestion

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers ingestion routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/ingestion", func(r chi.Router) {
		r.Post("/textbook-content", h.IngestContent)
		r.Post("/upload-pdf", h.UploadPDF)
		r.Get("/health", h.Health)
	})
}

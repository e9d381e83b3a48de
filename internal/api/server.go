package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	chatbotapi "github.com/physical-ai/chatbot-backend/internal/api/chatbot"
	"github.com/physical-ai/chatbot-backend/internal/api/docs"
	ingestionapi "github.com/physical-ai/chatbot-backend/internal/api/ingestion"
	"github.com/physical-ai/chatbot-backend/internal/api/middleware"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(chatbotHandler *chatbotapi.Handler, ingestionHandler *ingestionapi.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)                  // Recover from panics
	r.Use(chimiddleware.RequestID)                  // Add request ID
	r.Use(middleware.Logger(logger))                // Log requests
	r.Use(middleware.CORS)                          // Handle CORS
	r.Use(chimiddleware.Timeout(120 * time.Second)) // Default timeout, generous for streaming answers

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	// Register routes
	chatbotapi.RegisterRoutes(r, chatbotHandler)
	ingestionapi.RegisterRoutes(r, ingestionHandler)

	return r
}

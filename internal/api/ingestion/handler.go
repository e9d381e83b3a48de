package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/physical-ai/chatbot-backend/internal/config"
	"github.com/physical-ai/chatbot-backend/internal/entity"
	"github.com/physical-ai/chatbot-backend/internal/pkg/logger"
	"github.com/physical-ai/chatbot-backend/internal/pkg/response"
	"github.com/physical-ai/chatbot-backend/internal/pkg/validator"
)

type Handler struct {
	usecase   IngestUsecase
	health    HealthChecker
	cfg       config.IngestConfig
	validator *validator.Validator
}

func NewHandler(
	usecase IngestUsecase,
	health HealthChecker,
	cfg config.IngestConfig,
	validator *validator.Validator,
) *Handler {
	return &Handler{
		usecase:   usecase,
		health:    health,
		cfg:       cfg,
		validator: validator,
	}
}

// IngestContent handles POST /ingestion/textbook-content
func (h *Handler) IngestContent(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "IngestContent")

	var req entity.IngestContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateContentRecords(req.Records); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	saved, err := h.usecase.IngestContent(ctx, req.Records)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Created(w, entity.IngestResponse{
		Message:     "content ingested successfully",
		ChunksSaved: saved,
	})
}

// UploadPDF handles POST /ingestion/upload-pdf
func (h *Handler) UploadPDF(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "UploadPDF")

	if err := r.ParseMultipartForm(h.cfg.MaxPDFBytes); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid form data or size too large", err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "file field is required", err)
		return
	}
	defer file.Close()

	if err := h.validator.ValidatePDFUpload(header.Filename, header.Size); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid file", err)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "failed to read uploaded file", err)
		return
	}

	ctxzap.Info(ctx, "processing uploaded document",
		zap.String("filename", header.Filename),
		zap.Int64("size", header.Size),
	)

	saved, err := h.usecase.IngestPDF(ctx, header.Filename, data)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Created(w, entity.IngestResponse{
		Message:     "document ingested successfully",
		ChunksSaved: saved,
	})
}

// Health handles GET /ingestion/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "IngestionHealth")

	if err := h.health.HealthCheck(ctx); err != nil {
		ctxzap.Error(ctx, "metadata store unreachable", zap.Error(err))
		response.JSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}

	response.Success(w, map[string]string{
		"status":   "healthy",
		"database": "connected",
	})
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Error(ctx, message)
	}
	response.JSON(w, status, entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrMissingField), errors.Is(err, entity.ErrInvalidParameter), errors.Is(err, entity.ErrTextTooLong):
		h.respondError(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	case errors.Is(err, entity.ErrInvalidFile), errors.Is(err, entity.ErrFileTooLarge), errors.Is(err, entity.ErrEmptyDocument):
		h.respondError(ctx, w, http.StatusBadRequest, "invalid file", err)
	case errors.Is(err, entity.ErrEmbeddingProvider):
		h.respondError(ctx, w, http.StatusBadGateway, "embedding provider unavailable", err)
	case errors.Is(err, entity.ErrVectorIndex):
		h.respondError(ctx, w, http.StatusBadGateway, "vector index unavailable", err)
	case errors.Is(err, entity.ErrMetadataStore):
		h.respondError(ctx, w, http.StatusBadGateway, "metadata store unavailable", err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}

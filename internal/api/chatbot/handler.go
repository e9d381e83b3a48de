package chatbot

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/physical-ai/chatbot-backend/internal/entity"
	"github.com/physical-ai/chatbot-backend/internal/pkg/logger"
	"github.com/physical-ai/chatbot-backend/internal/pkg/response"
	"github.com/physical-ai/chatbot-backend/internal/pkg/validator"
)

const interactionLogTimeout = 5 * time.Second

type Handler struct {
	usecase      ChatbotUsecase
	interactions InteractionRecorder
	validator    *validator.Validator
}

func NewHandler(usecase ChatbotUsecase, interactions InteractionRecorder, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:      usecase,
		interactions: interactions,
		validator:    validator,
	}
}

// Query handles POST /chatbot/query
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Query")

	req, ok := h.decodeQuery(ctx, w, r)
	if !ok {
		return
	}

	answer, err := h.usecase.Query(ctx, req.Text)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.recordInteraction(ctx, req.Text, answer.Answer, answer.ConfidenceScore)

	response.Success(w, answer)
}

// QueryStream handles POST /chatbot/query/stream
func (h *Handler) QueryStream(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "QueryStream")

	req, ok := h.decodeQuery(ctx, w, r)
	if !ok {
		return
	}

	answer, err := h.usecase.QueryStream(ctx, req.Text)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}
	defer answer.Fragments.Close()

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)

	if err := enc.Encode(toMetadataFragment(answer)); err != nil {
		ctxzap.Warn(ctx, "client gone before metadata fragment", zap.Error(err))
		return
	}
	if flusher != nil {
		flusher.Flush()
	}

	var full strings.Builder
	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "client disconnected mid-stream")
			return
		default:
		}

		chunk, err := answer.Fragments.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			ctxzap.Error(ctx, "fragment stream failed", zap.Error(err))
			return
		}

		full.WriteString(chunk)

		if err := enc.Encode(toContentFragment(chunk)); err != nil {
			ctxzap.Warn(ctx, "client gone mid-stream", zap.Error(err))
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}

	h.recordInteraction(ctx, req.Text, full.String(), answer.ConfidenceScore)
}

func (h *Handler) decodeQuery(ctx context.Context, w http.ResponseWriter, r *http.Request) (entity.QueryRequest, bool) {
	var req entity.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return req, false
	}

	if err := h.validator.ValidateQuery(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return req, false
	}

	return req, true
}

// recordInteraction writes the answered query to the interaction log
// without blocking or failing the response.
func (h *Handler) recordInteraction(ctx context.Context, question, answer string, confidence float64) {
	bgCtx := ctxzap.ToContext(context.Background(), ctxzap.Extract(ctx))

	go func() {
		logCtx, cancel := context.WithTimeout(bgCtx, interactionLogTimeout)
		defer cancel()

		err := h.interactions.Insert(logCtx, entity.InteractionLog{
			QueryText:  question,
			AnswerText: answer,
			Confidence: confidence,
		})
		if err != nil {
			ctxzap.Warn(logCtx, "failed to record interaction", zap.Error(err))
		}
	}()
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
	case errors.Is(err, entity.ErrEmbeddingProvider):
		h.respondError(ctx, w, http.StatusBadGateway, "embedding provider unavailable", err)
	case errors.Is(err, entity.ErrVectorIndex):
		h.respondError(ctx, w, http.StatusBadGateway, "vector index unavailable", err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}

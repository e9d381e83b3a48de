package ingestion

import (
	"context"

	"github.com/physical-ai/chatbot-backend/internal/entity"
)

type IngestUsecase interface {
	IngestContent(ctx context.Context, records []entity.ContentRecord) (int, error)
	IngestPDF(ctx context.Context, filename string, data []byte) (int, error)
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

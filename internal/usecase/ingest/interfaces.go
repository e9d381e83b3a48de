package ingest

import (
	"context"

	"github.com/physical-ai/chatbot-backend/internal/entity"
)

type EmbeddingConnector interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

type VectorIndex interface {
	EnsureCollection(ctx context.Context, name string, dimension int, distance string) error
	UpsertPoints(ctx context.Context, collection string, points []entity.VectorPoint) error
}

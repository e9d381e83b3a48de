package query

import (
	"context"

	"github.com/physical-ai/chatbot-backend/internal/entity"
)

type EmbeddingConnector interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

type VectorIndex interface {
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]entity.SearchHit, error)
}

type LLMConnector interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteStream(ctx context.Context, prompt string) (entity.TokenStream, error)
}

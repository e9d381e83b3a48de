package query

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/physical-ai/chatbot-backend/internal/entity"
)

const defaultTopK = 3

// RetrievalService turns a user question into ranked context items by
// embedding it and searching the vector index.
type RetrievalService struct {
	embedder   EmbeddingConnector
	index      VectorIndex
	collection string
	topK       int
}

func NewRetrievalService(
	embedder EmbeddingConnector,
	index VectorIndex,
	collection string,
	topK int,
) *RetrievalService {
	if topK <= 0 {
		topK = defaultTopK
	}

	return &RetrievalService{
		embedder:   embedder,
		index:      index,
		collection: collection,
		topK:       topK,
	}
}

// Retrieve returns the top-ranked context items for the question. An
// empty result is not an error; the caller decides how to answer
// without context.
func (s *RetrievalService) Retrieve(ctx context.Context, question string) ([]entity.ContextItem, error) {
	vector, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.index.Search(ctx, s.collection, vector, s.topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	items := make([]entity.ContextItem, 0, len(hits))
	for _, hit := range hits {
		items = append(items, entity.ContextItem{
			Text:  hit.Payload.TextPreview,
			Score: hit.Score,
			Metadata: entity.SectionMetadata{
				Title:      hit.Payload.Title,
				Chapter:    hit.Payload.Chapter,
				Section:    hit.Payload.Section,
				PageNumber: hit.Payload.PageNumber,
			},
		})
	}

	ctxzap.Debug(ctx, "retrieval complete",
		zap.Int("hits", len(items)),
		zap.Int("top_k", s.topK),
	)

	return items, nil
}

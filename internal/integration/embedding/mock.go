package embedding

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector produces deterministic pseudo-embeddings so the full
// pipeline can run without the provider. The same text always maps to
// the same unit vector, so self-similarity search behaves sensibly.
type MockConnector struct {
	dimension int
}

func NewMockConnector(dimension int) *MockConnector {
	if dimension <= 0 {
		dimension = 1024
	}
	return &MockConnector{dimension: dimension}
}

func (m *MockConnector) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	ctxzap.Info(ctx, "[MOCK] embedding documents", zap.Int("count", len(texts)))

	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = m.pseudoEmbedding(text)
	}
	return embeddings, nil
}

func (m *MockConnector) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	ctxzap.Info(ctx, "[MOCK] embedding query")
	return m.pseudoEmbedding(text), nil
}

func (m *MockConnector) pseudoEmbedding(text string) []float32 {
	vec := make([]float32, m.dimension)

	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	var norm float64
	for i := range vec {
		// xorshift over the text hash keeps the vector stable per text
		seed ^= seed << 13
		seed ^= seed >> 7
		seed ^= seed << 17
		v := float32(int64(seed%2000)-1000) / 1000
		vec[i] = v
		norm += float64(v) * float64(v)
	}

	norm = math.Sqrt(norm)
	if norm == 0 {
		vec[0] = 1
		return vec
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}

	return vec
}

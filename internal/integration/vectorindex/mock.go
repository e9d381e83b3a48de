package vectorindex

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/physical-ai/chatbot-backend/internal/entity"
)

// MockConnector is an in-memory vector index with brute-force cosine
// search. It backs local development and the pipeline tests.
type MockConnector struct {
	mu          sync.RWMutex
	collections map[string][]entity.VectorPoint
}

func NewMockConnector() *MockConnector {
	return &MockConnector{
		collections: make(map[string][]entity.VectorPoint),
	}
}

func (m *MockConnector) EnsureCollection(ctx context.Context, name string, dimension int, distance string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.collections[name]; !ok {
		ctxzap.Info(ctx, "[MOCK] creating vector collection", zap.String("collection", name))
		m.collections[name] = nil
	}
	return nil
}

func (m *MockConnector) UpsertPoints(ctx context.Context, collection string, points []entity.VectorPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing := m.collections[collection]
	for _, p := range points {
		replaced := false
		for i := range existing {
			if existing[i].ID == p.ID {
				existing[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, p)
		}
	}
	m.collections[collection] = existing

	ctxzap.Info(ctx, "[MOCK] vector points upserted",
		zap.String("collection", collection),
		zap.Int("count", len(points)),
	)
	return nil
}

func (m *MockConnector) Search(ctx context.Context, collection string, vector []float32, limit int) ([]entity.SearchHit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	points := m.collections[collection]
	hits := make([]entity.SearchHit, 0, len(points))
	for _, p := range points {
		hits = append(hits, entity.SearchHit{
			Score:   cosineSimilarity(vector, p.Vector),
			Payload: p.Payload,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

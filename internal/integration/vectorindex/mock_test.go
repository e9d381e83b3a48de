package vectorindex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/physical-ai/chatbot-backend/internal/entity"
)

func TestMockConnector_SearchRanksByCosineSimilarity(t *testing.T) {
	m := NewMockConnector()
	ctx := context.Background()

	require.NoError(t, m.EnsureCollection(ctx, "test", 2, "Cosine"))
	require.NoError(t, m.UpsertPoints(ctx, "test", []entity.VectorPoint{
		{ID: "p1", Vector: []float32{1, 0}, Payload: entity.PointPayload{ContentID: "aligned"}},
		{ID: "p2", Vector: []float32{0, 1}, Payload: entity.PointPayload{ContentID: "orthogonal"}},
		{ID: "p3", Vector: []float32{1, 1}, Payload: entity.PointPayload{ContentID: "diagonal"}},
	}))

	hits, err := m.Search(ctx, "test", []float32{1, 0}, 2)
	require.NoError(t, err)

	require.Len(t, hits, 2)
	assert.Equal(t, "aligned", hits[0].Payload.ContentID)
	assert.Equal(t, "diagonal", hits[1].Payload.ContentID)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestMockConnector_UpsertReplacesByPointID(t *testing.T) {
	m := NewMockConnector()
	ctx := context.Background()

	require.NoError(t, m.UpsertPoints(ctx, "test", []entity.VectorPoint{
		{ID: "p1", Vector: []float32{1, 0}, Payload: entity.PointPayload{ContentID: "old"}},
	}))
	require.NoError(t, m.UpsertPoints(ctx, "test", []entity.VectorPoint{
		{ID: "p1", Vector: []float32{1, 0}, Payload: entity.PointPayload{ContentID: "new"}},
	}))

	hits, err := m.Search(ctx, "test", []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "new", hits[0].Payload.ContentID)
}

func TestMockConnector_EmptyCollectionSearch(t *testing.T) {
	m := NewMockConnector()

	hits, err := m.Search(context.Background(), "missing", []float32{1}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/physical-ai/chatbot-backend/internal/entity"
)

type recordingIndex struct {
	collection string
	limit      int
	hits       []entity.SearchHit
}

func (r *recordingIndex) Search(ctx context.Context, collection string, vector []float32, limit int) ([]entity.SearchHit, error) {
	r.collection = collection
	r.limit = limit
	return r.hits, nil
}

func TestRetrieve_ProjectsHitsToContextItems(t *testing.T) {
	index := &recordingIndex{hits: []entity.SearchHit{
		{
			Score: 0.42,
			Payload: entity.PointPayload{
				ContentID:   "ch1-s2-0",
				Title:       "Sensing",
				Chapter:     "Chapter 1",
				Section:     "Sensors",
				PageNumber:  12,
				TextPreview: "Cameras and IMUs are the primary senses.",
			},
		},
	}}
	svc := NewRetrievalService(&stubEmbedder{vector: []float32{1, 0}}, index, "textbook", 5)

	items, err := svc.Retrieve(context.Background(), "how do robots sense?")
	require.NoError(t, err)

	assert.Equal(t, "textbook", index.collection)
	assert.Equal(t, 5, index.limit)

	require.Len(t, items, 1)
	assert.Equal(t, "Cameras and IMUs are the primary senses.", items[0].Text)
	assert.InDelta(t, 0.42, items[0].Score, 1e-9)
	assert.Equal(t, "Sensing", items[0].Metadata.Title)
	assert.Equal(t, "Chapter 1", items[0].Metadata.Chapter)
	assert.Equal(t, "Sensors", items[0].Metadata.Section)
	assert.Equal(t, 12, items[0].Metadata.PageNumber)
}

func TestRetrieve_EmptyResultIsNotAnError(t *testing.T) {
	svc := NewRetrievalService(&stubEmbedder{vector: []float32{1}}, &recordingIndex{}, "textbook", 3)

	items, err := svc.Retrieve(context.Background(), "unrelated question")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestNewRetrievalService_DefaultsTopK(t *testing.T) {
	index := &recordingIndex{}
	svc := NewRetrievalService(&stubEmbedder{vector: []float32{1}}, index, "textbook", 0)

	_, err := svc.Retrieve(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, defaultTopK, index.limit)
}

package vectorindex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/physical-ai/chatbot-backend/internal/config"
	"github.com/physical-ai/chatbot-backend/internal/entity"
)

func testConfig(url string) config.VectorIndexConfig {
	return config.VectorIndexConfig{
		HTTPClientConfig: config.HTTPClientConfig{
			Url:            url,
			RequestTimeout: 5 * time.Second,
			Token:          "qdrant-key",
		},
		Collection: "textbook_embeddings_v3",
		VectorSize: 4,
		Distance:   "Cosine",
	}
}

func TestEnsureCollection_ExistingCollectionIsLeftAlone(t *testing.T) {
	var creates int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "qdrant-key", r.Header.Get("api-key"))
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`{"result":{"status":"green"}}`))
		case http.MethodPut:
			creates++
			w.Write([]byte(`{"result":true}`))
		}
	}))
	defer server.Close()

	conn := NewConnector(testConfig(server.URL), zap.NewNop())

	err := conn.EnsureCollection(context.Background(), "textbook_embeddings_v3", 4, "Cosine")
	require.NoError(t, err)
	assert.Zero(t, creates)
}

func TestEnsureCollection_CreatesMissingCollection(t *testing.T) {
	var created createCollectionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			http.Error(w, `{"status":"not found"}`, http.StatusNotFound)
		case http.MethodPut:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			w.Write([]byte(`{"result":true}`))
		}
	}))
	defer server.Close()

	conn := NewConnector(testConfig(server.URL), zap.NewNop())

	err := conn.EnsureCollection(context.Background(), "textbook_embeddings_v3", 4, "Cosine")
	require.NoError(t, err)
	assert.Equal(t, 4, created.Vectors.Size)
	assert.Equal(t, "Cosine", created.Vectors.Distance)
}

func TestEnsureCollection_ConcurrentCreateConflictIsTolerated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			http.Error(w, "not found", http.StatusNotFound)
		case http.MethodPut:
			http.Error(w, "already exists", http.StatusConflict)
		}
	}))
	defer server.Close()

	conn := NewConnector(testConfig(server.URL), zap.NewNop())

	err := conn.EnsureCollection(context.Background(), "textbook_embeddings_v3", 4, "Cosine")
	assert.NoError(t, err)
}

func TestEnsureCollection_CreateFailureSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	conn := NewConnector(testConfig(server.URL), zap.NewNop())

	err := conn.EnsureCollection(context.Background(), "textbook_embeddings_v3", 4, "Cosine")
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrVectorIndex)
}

func TestUpsertPoints_SendsPointsAndWaits(t *testing.T) {
	var (
		path string
		req  upsertPointsRequest
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path + "?" + r.URL.RawQuery
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Write([]byte(`{"result":{"status":"completed"}}`))
	}))
	defer server.Close()

	conn := NewConnector(testConfig(server.URL), zap.NewNop())

	err := conn.UpsertPoints(context.Background(), "textbook", []entity.VectorPoint{
		{
			ID:     "6f1c2a9e-0000-0000-0000-000000000001",
			Vector: []float32{1, 2, 3, 4},
			Payload: entity.PointPayload{
				ContentID: "ch1-0",
				Chapter:   "Ch 1",
				Section:   "Intro",
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "/collections/textbook/points?wait=true", path)
	require.Len(t, req.Points, 1)
	assert.Equal(t, "ch1-0", req.Points[0].Payload.ContentID)
}

func TestUpsertPoints_EmptyBatchSkipsCall(t *testing.T) {
	conn := NewConnector(testConfig("http://unreachable.invalid"), zap.NewNop())

	err := conn.UpsertPoints(context.Background(), "textbook", nil)
	assert.NoError(t, err)
}

func TestSearch_ParsesHits(t *testing.T) {
	var req searchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collections/textbook/points/search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Write([]byte(`{"result":[
			{"score":0.91,"payload":{"content_id":"a","chapter":"Ch 1","section":"S 1","text_preview":"first"}},
			{"score":0.40,"payload":{"content_id":"b","chapter":"Ch 2","section":"S 2","text_preview":"second"}}
		]}`))
	}))
	defer server.Close()

	conn := NewConnector(testConfig(server.URL), zap.NewNop())

	hits, err := conn.Search(context.Background(), "textbook", []float32{1, 0, 0, 0}, 2)
	require.NoError(t, err)

	assert.True(t, req.WithPayload)
	assert.Equal(t, 2, req.Limit)

	require.Len(t, hits, 2)
	assert.InDelta(t, 0.91, hits[0].Score, 1e-9)
	assert.Equal(t, "a", hits[0].Payload.ContentID)
	assert.Equal(t, "second", hits[1].Payload.TextPreview)
}

func TestSearch_FailureWrapsSentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	conn := NewConnector(testConfig(server.URL), zap.NewNop())

	_, err := conn.Search(context.Background(), "textbook", []float32{1}, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrVectorIndex)
}

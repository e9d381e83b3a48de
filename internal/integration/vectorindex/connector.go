package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/physical-ai/chatbot-backend/internal/config"
	"github.com/physical-ai/chatbot-backend/internal/entity"
	"github.com/physical-ai/chatbot-backend/internal/integration/common"
	pkghttp "github.com/physical-ai/chatbot-backend/pkg/http"
)

type vectorParams struct {
	Size     int    `json:"size"`
	Distance string `json:"distance"`
}

type createCollectionRequest struct {
	Vectors vectorParams `json:"vectors"`
}

type point struct {
	ID      string              `json:"id"`
	Vector  []float32           `json:"vector"`
	Payload entity.PointPayload `json:"payload"`
}

type upsertPointsRequest struct {
	Points []point `json:"points"`
}

type searchRequest struct {
	Vector      []float32 `json:"vector"`
	Limit       int       `json:"limit"`
	WithPayload bool      `json:"with_payload"`
}

type searchResponse struct {
	Result []struct {
		Score   float64             `json:"score"`
		Payload entity.PointPayload `json:"payload"`
	} `json:"result"`
}

// Connector adapts the vector similarity store's REST API.
type Connector struct {
	connector *pkghttp.Connector
}

func NewConnector(cfg config.VectorIndexConfig, logger *zap.Logger) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger, pkghttp.WithAPIKeyHeader("api-key", cfg.Token)),
	}
}

// EnsureCollection makes sure the collection exists with the given
// vector dimension and distance metric. A failed existence probe is
// treated as "absent" and followed by a create attempt, so a true
// connectivity failure still surfaces through the create call instead
// of being masked as success.
func (c *Connector) EnsureCollection(ctx context.Context, name string, dimension int, distance string) error {
	err := c.connector.DoRequest(ctx, http.MethodGet, "/collections/"+name, nil, nil)
	if err == nil {
		return nil
	}

	ctxzap.Info(ctx, "vector collection not found, creating",
		zap.String("collection", name),
		zap.Int("dimension", dimension),
		zap.String("distance", distance),
	)

	req := createCollectionRequest{
		Vectors: vectorParams{Size: dimension, Distance: distance},
	}
	if err := c.connector.DoRequest(ctx, http.MethodPut, "/collections/"+name, req, nil); err != nil {
		// A concurrent create may have won the race.
		var httpErr *pkghttp.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusConflict {
			return nil
		}
		return fmt.Errorf("%w: create collection %s: %v", entity.ErrVectorIndex, name, err)
	}

	return nil
}

// UpsertPoints writes or overwrites points by point id.
func (c *Connector) UpsertPoints(ctx context.Context, collection string, points []entity.VectorPoint) error {
	if len(points) == 0 {
		return nil
	}

	req := upsertPointsRequest{Points: make([]point, len(points))}
	for i, p := range points {
		req.Points[i] = point{ID: p.ID, Vector: p.Vector, Payload: p.Payload}
	}

	if err := c.connector.DoRequest(ctx, http.MethodPut, "/collections/"+collection+"/points?wait=true", req, nil); err != nil {
		return fmt.Errorf("%w: upsert %d points: %v", entity.ErrVectorIndex, len(points), err)
	}

	ctxzap.Info(ctx, "vector points upserted",
		zap.String("collection", collection),
		zap.Int("count", len(points)),
	)

	return nil
}

// Search returns the nearest neighbors of the query vector, descending
// by score. Tie order among equal scores is provider-native and not
// deterministic.
func (c *Connector) Search(ctx context.Context, collection string, vector []float32, limit int) ([]entity.SearchHit, error) {
	req := searchRequest{
		Vector:      vector,
		Limit:       limit,
		WithPayload: true,
	}

	var resp searchResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, "/collections/"+collection+"/points/search", req, &resp); err != nil {
		return nil, fmt.Errorf("%w: search: %v", entity.ErrVectorIndex, err)
	}

	hits := make([]entity.SearchHit, len(resp.Result))
	for i, r := range resp.Result {
		hits[i] = entity.SearchHit{Score: r.Score, Payload: r.Payload}
	}

	return hits, nil
}

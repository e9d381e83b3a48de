package embedding

import (
	"context"
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/physical-ai/chatbot-backend/internal/config"
	"github.com/physical-ai/chatbot-backend/internal/entity"
	"github.com/physical-ai/chatbot-backend/internal/integration/common"
	pkghttp "github.com/physical-ai/chatbot-backend/pkg/http"
)

const embedEndpoint = "/v1/embed"

// Provider input types. Asymmetric embedding models tune document and
// query vectors differently; mixing the two roles degrades retrieval.
const (
	inputTypeDocument = "search_document"
	inputTypeQuery    = "search_query"
)

type embedRequest struct {
	Texts     []string `json:"texts"`
	Model     string   `json:"model"`
	InputType string   `json:"input_type"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Connector is the gateway to the embedding provider. Query embeddings
// are cached for a short TTL; document embeddings never are, since
// corpus texts are embedded once.
type Connector struct {
	config     config.EmbeddingConnectorConfig
	connector  *pkghttp.Connector
	queryCache *gocache.Cache
}

func NewConnector(cfg config.EmbeddingConnectorConfig, logger *zap.Logger) *Connector {
	return &Connector{
		connector:  common.NewBaseConnector(cfg.HTTPClientConfig, logger, pkghttp.WithAuthToken(cfg.Token)),
		config:     cfg,
		queryCache: gocache.New(cfg.QueryCacheTTL, 2*cfg.QueryCacheTTL),
	}
}

// EmbedDocuments embeds corpus texts in document mode. Inputs beyond
// the provider batch cap are split into sub-batches and the outputs
// reassembled in input order.
func (c *Connector) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	ctxzap.Info(ctx, "embedding documents", zap.Int("count", len(texts)))

	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.config.MaxBatchSize {
		end := start + c.config.MaxBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := c.embed(ctx, texts[start:end], inputTypeDocument)
		if err != nil {
			return nil, err
		}
		embeddings = append(embeddings, batch...)
	}

	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: provider returned %d embeddings for %d texts",
			entity.ErrEmbeddingProvider, len(embeddings), len(texts))
	}

	return embeddings, nil
}

// EmbedQuery embeds a single question in query mode.
func (c *Connector) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := c.queryCache.Get(text); ok {
		ctxzap.Debug(ctx, "query embedding cache hit")
		return cached.([]float32), nil
	}

	embeddings, err := c.embed(ctx, []string{text}, inputTypeQuery)
	if err != nil {
		return nil, err
	}
	if len(embeddings) != 1 {
		return nil, fmt.Errorf("%w: provider returned %d embeddings for one query",
			entity.ErrEmbeddingProvider, len(embeddings))
	}

	c.queryCache.SetDefault(text, embeddings[0])

	return embeddings[0], nil
}

func (c *Connector) embed(ctx context.Context, texts []string, inputType string) ([][]float32, error) {
	req := embedRequest{
		Texts:     texts,
		Model:     c.config.Model,
		InputType: inputType,
	}

	var resp embedResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, embedEndpoint, req, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrEmbeddingProvider, err)
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: provider returned %d embeddings for %d texts",
			entity.ErrEmbeddingProvider, len(resp.Embeddings), len(texts))
	}

	return resp.Embeddings, nil
}

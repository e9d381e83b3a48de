package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/physical-ai/chatbot-backend/internal/config"
	"github.com/physical-ai/chatbot-backend/internal/entity"
	"github.com/physical-ai/chatbot-backend/internal/integration/common"
	pkghttp "github.com/physical-ai/chatbot-backend/pkg/http"
)

const chatCompletionsEndpoint = "/v1/chat/completions"

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Connector speaks an OpenAI-compatible chat completions API.
type Connector struct {
	config config.LLMConnectorConfig
	// streamConnector has no overall request timeout: the client-level
	// timeout covers the whole body read, which would truncate long
	// generations. ResponseHeaderTimeout still bounds the handshake.
	connector       *pkghttp.Connector
	streamConnector *pkghttp.Connector
}

func NewConnector(cfg config.LLMConnectorConfig, logger *zap.Logger) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger, pkghttp.WithAuthToken(cfg.Token)),
		streamConnector: common.NewBaseConnector(cfg.HTTPClientConfig, logger,
			pkghttp.WithAuthToken(cfg.Token),
			pkghttp.WithRequestTimeout(0),
		),
		config: cfg,
	}
}

// Complete issues a single-shot completion for a fully-formed prompt.
func (c *Connector) Complete(ctx context.Context, prompt string) (string, error) {
	ctxzap.Info(ctx, "requesting completion", zap.String("model", c.config.Model))

	req := chatRequest{
		Model:    c.config.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}

	var resp chatResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, chatCompletionsEndpoint, req, &resp); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion response contains no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// CompleteStream opens an incremental completion. Each call issues a
// fresh provider request; the returned stream is finite and not
// restartable. The consumer pulls fragments with Recv and must Close
// when done, which releases the underlying connection.
func (c *Connector) CompleteStream(ctx context.Context, prompt string) (entity.TokenStream, error) {
	ctxzap.Info(ctx, "opening completion stream", zap.String("model", c.config.Model))

	req := chatRequest{
		Model:    c.config.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		Stream:   true,
	}

	body, err := c.streamConnector.DoStreamRequest(ctx, http.MethodPost, chatCompletionsEndpoint, req)
	if err != nil {
		return nil, err
	}

	return newStream(body), nil
}

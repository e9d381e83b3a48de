package llm

import (
	"context"
	"io"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/physical-ai/chatbot-backend/internal/entity"
)

// MockConnector returns canned completions for local development.
type MockConnector struct{}

func NewMockConnector() *MockConnector {
	return &MockConnector{}
}

const mockAnswer = "Based on the provided textbook sections, this is a mock answer. " +
	"Enable the real generative model connector to get grounded responses."

func (m *MockConnector) Complete(ctx context.Context, prompt string) (string, error) {
	ctxzap.Info(ctx, "[MOCK] completing prompt", zap.Int("prompt_length", len(prompt)))
	return mockAnswer, nil
}

func (m *MockConnector) CompleteStream(ctx context.Context, prompt string) (entity.TokenStream, error) {
	ctxzap.Info(ctx, "[MOCK] opening completion stream", zap.Int("prompt_length", len(prompt)))
	return &staticStream{fragments: strings.SplitAfter(mockAnswer, " ")}, nil
}

// staticStream replays a fixed fragment sequence.
type staticStream struct {
	fragments []string
	next      int
}

func (s *staticStream) Recv() (string, error) {
	if s.next >= len(s.fragments) {
		return "", io.EOF
	}
	fragment := s.fragments[s.next]
	s.next++
	return fragment, nil
}

func (s *staticStream) Close() error {
	return nil
}

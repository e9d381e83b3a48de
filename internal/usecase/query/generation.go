package query

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/physical-ai/chatbot-backend/internal/entity"
	pkgHTTP "github.com/physical-ai/chatbot-backend/pkg/http"
)

const (
	promptHeader = "You are an expert AI assistant for a Physical AI and Humanoid Robotics textbook. " +
		"Answer the user's question using only the provided textbook content. " +
		"Be accurate, concise, and educational. " +
		"If the content does not fully cover the question, say so honestly."

	quotaMessage = "I've reached the current API quota limit for answering questions. " +
		"Please try again later or check your API configuration."
)

var quotaMarkers = []string{"429", "quota", "exhausted", "limit", "resource"}

// GenerationService produces answer text from a question and its
// retrieved context. It never returns an error: provider failures
// degrade into explanatory answer text so the caller can still respond.
type GenerationService struct {
	llm LLMConnector
}

func NewGenerationService(llm LLMConnector) *GenerationService {
	return &GenerationService{llm: llm}
}

// Generate returns the full answer text for the question.
func (s *GenerationService) Generate(ctx context.Context, question string, items []entity.ContextItem) string {
	answer, err := s.llm.Complete(ctx, buildPrompt(question, items))
	if err != nil {
		ctxzap.Warn(ctx, "generation failed", zap.Error(err))
		return failureAnswer(err)
	}

	return answer
}

// GenerateStream returns the answer as a token stream. Like Generate it
// never returns an error: if the provider stream cannot be opened the
// result is a single-fragment stream carrying the failure answer, and a
// mid-stream failure is converted into one trailing explanatory
// fragment before the stream ends.
func (s *GenerationService) GenerateStream(ctx context.Context, question string, items []entity.ContextItem) entity.TokenStream {
	stream, err := s.llm.CompleteStream(ctx, buildPrompt(question, items))
	if err != nil {
		ctxzap.Warn(ctx, "generation stream open failed", zap.Error(err))
		return newStaticStream(failureAnswer(err))
	}

	return &degradingStream{ctx: ctx, inner: stream}
}

func buildPrompt(question string, items []entity.ContextItem) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	b.WriteString("\n\nTextbook Content:\n")

	for _, item := range items {
		label := item.Metadata.Title
		if label == "" {
			label = fmt.Sprintf("%s - %s", item.Metadata.Chapter, item.Metadata.Section)
		}
		b.WriteString("\nSection: ")
		b.WriteString(label)
		b.WriteString("\nContent: ")
		b.WriteString(item.Text)
		b.WriteString("\n")
	}

	b.WriteString("\nUser Question: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer:")

	return b.String()
}

// failureAnswer maps a provider error to user-facing answer text.
// Quota-style failures get a dedicated message so users know the
// outage is transient.
func failureAnswer(err error) string {
	if isQuotaError(err) {
		return quotaMessage
	}

	return "The generation service encountered an error: " + err.Error()
}

func isQuotaError(err error) bool {
	var httpErr *pkgHTTP.HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == 429 {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range quotaMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}

	return false
}

// degradingStream passes fragments through from the provider stream,
// replacing a mid-stream failure with a single explanatory fragment.
type degradingStream struct {
	ctx    context.Context
	inner  entity.TokenStream
	failed bool
	done   bool
}

func (s *degradingStream) Recv() (string, error) {
	if s.done {
		return "", io.EOF
	}
	if s.failed {
		s.done = true
		return "", io.EOF
	}

	fragment, err := s.inner.Recv()
	if err == nil {
		return fragment, nil
	}
	if errors.Is(err, io.EOF) {
		s.done = true
		return "", io.EOF
	}

	ctxzap.Warn(s.ctx, "generation stream failed mid-answer", zap.Error(err))
	s.failed = true

	return failureAnswer(err), nil
}

func (s *degradingStream) Close() error {
	return s.inner.Close()
}

// staticStream replays a fixed answer as one fragment.
type staticStream struct {
	mu   sync.Mutex
	text string
	sent bool
}

func newStaticStream(text string) *staticStream {
	return &staticStream{text: text}
}

func (s *staticStream) Recv() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sent {
		return "", io.EOF
	}
	s.sent = true

	return s.text, nil
}

func (s *staticStream) Close() error {
	return nil
}

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/physical-ai/chatbot-backend/internal/config"
)

func testConfig(url string) config.LLMConnectorConfig {
	return config.LLMConnectorConfig{
		HTTPClientConfig: config.HTTPClientConfig{
			Url:            url,
			RequestTimeout: 5 * time.Second,
			Token:          "llm-token",
		},
		Model: "gemini-2.0-flash",
	}
}

func TestComplete_ReturnsFirstChoice(t *testing.T) {
	var req chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, chatCompletionsEndpoint, r.URL.Path)
		require.Equal(t, "Bearer llm-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Write([]byte(`{"choices":[{"message":{"content":"the answer"}}]}`))
	}))
	defer server.Close()

	conn := NewConnector(testConfig(server.URL), zap.NewNop())

	got, err := conn.Complete(context.Background(), "the prompt")
	require.NoError(t, err)
	assert.Equal(t, "the answer", got)

	assert.Equal(t, "gemini-2.0-flash", req.Model)
	assert.False(t, req.Stream)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
	assert.Equal(t, "the prompt", req.Messages[0].Content)
}

func TestComplete_NoChoicesFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	conn := NewConnector(testConfig(server.URL), zap.NewNop())

	_, err := conn.Complete(context.Background(), "prompt")
	require.Error(t, err)
}

func TestCompleteStream_PullsFragmentsUntilDone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, word := range []string{"Robots ", "walk ", "with ", "actuators."} {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", word)
			flusher.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	conn := NewConnector(testConfig(server.URL), zap.NewNop())

	stream, err := conn.CompleteStream(context.Background(), "prompt")
	require.NoError(t, err)
	defer stream.Close()

	var got string
	for {
		fragment, err := stream.Recv()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got += fragment
	}

	assert.Equal(t, "Robots walk with actuators.", got)
}

func TestCompleteStream_HTTPErrorSurfacesOnOpen(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exhausted", http.StatusTooManyRequests)
	}))
	defer server.Close()

	conn := NewConnector(testConfig(server.URL), zap.NewNop())

	_, err := conn.CompleteStream(context.Background(), "prompt")
	require.Error(t, err)
}

package llm

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Stream is a pull-based reader over one server-sent-events completion.
// Recv blocks until the provider emits the next non-empty text delta
// and returns io.EOF when the stream is exhausted.
type Stream struct {
	body   io.ReadCloser
	reader *bufio.Reader
}

func newStream(body io.ReadCloser) *Stream {
	return &Stream{
		body:   body,
		reader: bufio.NewReader(body),
	}
}

func (s *Stream) Recv() (string, error) {
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return "", io.EOF
			}
			return "", err
		}

		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}

		if line == "data: [DONE]" {
			return "", io.EOF
		}

		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Keep-alives and unknown event shapes are skipped.
			continue
		}

		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			return chunk.Choices[0].Delta.Content, nil
		}
	}
}

// Close releases the underlying provider connection. Safe to call after
// Recv returned io.EOF.
func (s *Stream) Close() error {
	return s.body.Close()
}

package chunker

import (
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 100
)

// Chunker windows raw document text into fixed-size chunks with a
// small overlap so sentences straddling a boundary stay retrievable.
type Chunker struct {
	splitter textsplitter.RecursiveCharacter
}

func New(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultChunkOverlap
	}

	return &Chunker{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(overlap),
		),
	}
}

// Split windows the text and drops empty windows.
func (c *Chunker) Split(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	parts, err := c.splitter.SplitText(text)
	if err != nil {
		return nil, err
	}

	chunks := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		chunks = append(chunks, part)
	}

	return chunks, nil
}

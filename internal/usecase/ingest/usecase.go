package ingest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/physical-ai/chatbot-backend/internal/entity"
	"github.com/physical-ai/chatbot-backend/internal/pkg/chunker"
	"github.com/physical-ai/chatbot-backend/internal/pkg/pdftext"
)

// Usecase orchestrates ingestion: validate, embed in batch, then hand
// the embedded chunks to the dual-store writer.
type Usecase struct {
	embedder EmbeddingConnector
	writer   *DualStoreWriter
	chunker  *chunker.Chunker
}

func NewUsecase(
	embedder EmbeddingConnector,
	writer *DualStoreWriter,
	chunker *chunker.Chunker,
) *Usecase {
	return &Usecase{
		embedder: embedder,
		writer:   writer,
		chunker:  chunker,
	}
}

// IngestContent embeds and persists a batch of submitted records.
// Returns the number of chunks stored.
func (uc *Usecase) IngestContent(ctx context.Context, records []entity.ContentRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	ctxzap.Info(ctx, "starting ingestion", zap.Int("records", len(records)))

	chunks := make([]entity.TextbookChunk, len(records))
	texts := make([]string, len(records))
	for i, rec := range records {
		id := rec.ID
		if id == "" {
			id = uuid.NewString()
		}
		chunks[i] = entity.TextbookChunk{
			ID:   id,
			Text: rec.Text,
			Metadata: entity.SectionMetadata{
				Title:      rec.Title,
				Chapter:    rec.Chapter,
				Section:    rec.Section,
				PageNumber: rec.PageNumber,
			},
		}
		texts[i] = rec.Text
	}

	embeddings, err := uc.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed documents: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return 0, fmt.Errorf("%w: got %d embeddings for %d chunks",
			entity.ErrEmbeddingProvider, len(embeddings), len(chunks))
	}

	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	if err := uc.writer.StoreContent(ctx, chunks); err != nil {
		return 0, err
	}

	ctxzap.Info(ctx, "ingestion complete", zap.Int("chunks", len(chunks)))

	return len(chunks), nil
}

// IngestDocument windows raw document text into fixed-size chunks and
// ingests them under the given source name.
func (uc *Usecase) IngestDocument(ctx context.Context, sourceName, text string) (int, error) {
	windows, err := uc.chunker.Split(text)
	if err != nil {
		return 0, fmt.Errorf("split document: %w", err)
	}
	if len(windows) == 0 {
		return 0, entity.ErrEmptyDocument
	}

	records := make([]entity.ContentRecord, len(windows))
	for i, window := range windows {
		records[i] = entity.ContentRecord{
			Text:    window,
			Title:   fmt.Sprintf("%s - Part %d", sourceName, i+1),
			Chapter: "Uploaded Document",
			Section: sourceName,
		}
	}

	return uc.IngestContent(ctx, records)
}

// IngestPDF extracts the text of an uploaded PDF and ingests it as a
// windowed document.
func (uc *Usecase) IngestPDF(ctx context.Context, filename string, data []byte) (int, error) {
	text, err := pdftext.Extract(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", entity.ErrInvalidFile, err)
	}

	return uc.IngestDocument(ctx, filename, text)
}

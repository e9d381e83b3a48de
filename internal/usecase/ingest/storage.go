package ingest

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/physical-ai/chatbot-backend/internal/entity"
	"github.com/physical-ai/chatbot-backend/internal/repository"
)

// textPreviewLen bounds the text copy carried in the vector payload.
// The full text of record lives only in the metadata store.
const textPreviewLen = 200

// DualStoreWriter owns the write path into both stores. Writes are a
// best-effort coordinated batch: there is no two-phase commit, and a
// metadata failure after a successful vector upsert leaves the stores
// inconsistent until an operator retries or compensates.
type DualStoreWriter struct {
	index       VectorIndex
	contentRepo repository.ContentRepository
	collection  string
	vectorSize  int
	distance    string
}

func NewDualStoreWriter(
	index VectorIndex,
	contentRepo repository.ContentRepository,
	collection string,
	vectorSize int,
	distance string,
) *DualStoreWriter {
	return &DualStoreWriter{
		index:       index,
		contentRepo: contentRepo,
		collection:  collection,
		vectorSize:  vectorSize,
		distance:    distance,
	}
}

// StoreContent persists a batch of chunks across both stores. Chunks
// without an embedding skip the vector write but are still written to
// metadata, so their text can be backfilled into the index later.
func (w *DualStoreWriter) StoreContent(ctx context.Context, chunks []entity.TextbookChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	if err := w.index.EnsureCollection(ctx, w.collection, w.vectorSize, w.distance); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}

	points := make([]entity.VectorPoint, 0, len(chunks))
	rows := make([]entity.ContentRow, 0, len(chunks))

	for _, chunk := range chunks {
		if chunk.Embedded() {
			// The point id is a fresh UUID, deliberately distinct from
			// the chunk id; the payload's content_id links back.
			points = append(points, entity.VectorPoint{
				ID:     uuid.NewString(),
				Vector: chunk.Embedding,
				Payload: entity.PointPayload{
					ContentID:   chunk.ID,
					Title:       chunk.Metadata.Title,
					Chapter:     chunk.Metadata.Chapter,
					Section:     chunk.Metadata.Section,
					PageNumber:  chunk.Metadata.PageNumber,
					TextPreview: preview(chunk.Text),
				},
			})
		}

		rows = append(rows, entity.ContentRow{
			ID:         chunk.ID,
			Text:       chunk.Text,
			Chapter:    chunk.Metadata.Chapter,
			Section:    chunk.Metadata.Section,
			PageNumber: chunk.Metadata.PageNumber,
		})
	}

	if err := w.index.UpsertPoints(ctx, w.collection, points); err != nil {
		return fmt.Errorf("upsert points: %w", err)
	}

	if err := w.contentRepo.BulkInsert(ctx, rows); err != nil {
		// The vector upsert already went through; the index now holds
		// points without backing metadata rows. Surface the error so
		// the caller can retry or compensate.
		ctxzap.Warn(ctx, "metadata insert failed after vector upsert, stores are inconsistent",
			zap.Int("orphaned_points", len(points)),
			zap.Error(err),
		)
		return fmt.Errorf("insert metadata rows: %w", err)
	}

	ctxzap.Info(ctx, "chunk batch stored",
		zap.Int("chunks", len(chunks)),
		zap.Int("vector_points", len(points)),
	)

	return nil
}

func preview(text string) string {
	if len(text) <= textPreviewLen {
		return text
	}
	cut := textPreviewLen
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

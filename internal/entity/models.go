package entity

import "time"

// SectionMetadata locates a chunk inside the textbook structure.
type SectionMetadata struct {
	Title      string `json:"title,omitempty"`
	Chapter    string `json:"chapter"`
	Section    string `json:"section"`
	PageNumber int    `json:"page_number,omitempty"`
}

// TextbookChunk is the unit of ingestion: a bounded piece of textbook
// text plus its structural metadata. The embedding stays empty until
// the embedding gateway fills it in.
type TextbookChunk struct {
	ID        string
	Text      string
	Metadata  SectionMetadata
	Embedding []float32
}

// Embedded reports whether the chunk is eligible for a vector write.
func (c TextbookChunk) Embedded() bool {
	return len(c.Embedding) > 0
}

// ContentRow is the relational representation of a chunk. The metadata
// store is the source of truth for the full chunk text.
type ContentRow struct {
	ID         string
	Text       string
	Chapter    string
	Section    string
	PageNumber int
	CreatedAt  time.Time
}

// PointPayload is the denormalized payload attached to a vector point.
// It carries a bounded preview of the text, not the full text of record.
type PointPayload struct {
	ContentID   string `json:"content_id"`
	Title       string `json:"title,omitempty"`
	Chapter     string `json:"chapter"`
	Section     string `json:"section"`
	PageNumber  int    `json:"page_number"`
	TextPreview string `json:"text_preview"`
}

// VectorPoint is a single entry in the vector index. The point id is a
// random UUID and lives in a separate identifier space from the chunk
// id; the two are linked through Payload.ContentID.
type VectorPoint struct {
	ID      string
	Vector  []float32
	Payload PointPayload
}

// SearchHit is one nearest-neighbor result from the vector index.
type SearchHit struct {
	Score   float64
	Payload PointPayload
}

// ContextItem is a query-scoped projection of a search hit, consumed
// by the generation service. Score is the provider-native similarity
// and is treated as an opaque relevance basis.
type ContextItem struct {
	Text     string
	Score    float64
	Metadata SectionMetadata
}

// QueryAnswer is the batch response to one question.
type QueryAnswer struct {
	Answer          string            `json:"answer"`
	ConfidenceScore float64           `json:"confidence_score"`
	Sources         []SectionMetadata `json:"sources"`
}

// InteractionLog records one answered query for offline analysis.
type InteractionLog struct {
	ID         string
	QueryText  string
	AnswerText string
	Confidence float64
	CreatedAt  time.Time
}

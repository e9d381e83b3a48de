package entity

// ContentRecord is one ingestion record as submitted by the caller.
type ContentRecord struct {
	ID         string `json:"id,omitempty"`
	Text       string `json:"text"`
	Title      string `json:"title,omitempty"`
	Chapter    string `json:"chapter"`
	Section    string `json:"section"`
	PageNumber int    `json:"page_number,omitempty"`
}

// IngestContentRequest is the body of POST /ingestion/textbook-content.
// A single record or a batch may be submitted.
type IngestContentRequest struct {
	Records []ContentRecord `json:"records"`
}

// IngestResponse reports the outcome of one ingestion batch.
type IngestResponse struct {
	Message     string `json:"message"`
	ChunksSaved int    `json:"chunks_saved"`
}

package entity

// QueryRequest is the body of POST /chatbot/query.
type QueryRequest struct {
	Text string `json:"text"`
}

// Stream fragment types for the NDJSON query stream.
const (
	FragmentTypeMetadata = "metadata"
	FragmentTypeContent  = "content"
)

// MetadataFragment is the first line of every query stream. Sources is
// always present, empty when nothing was retrieved.
type MetadataFragment struct {
	Type            string            `json:"type"`
	ConfidenceScore float64           `json:"confidence_score"`
	Sources         []SectionMetadata `json:"sources"`
}

// ContentFragment carries one piece of generated answer text.
type ContentFragment struct {
	Type  string `json:"type"`
	Chunk string `json:"chunk"`
}

// ErrorResponse is the JSON error envelope returned by handlers.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

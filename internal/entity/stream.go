package entity

// TokenStream is a finite, pull-based sequence of generated text
// fragments. Recv returns io.EOF when the stream is exhausted; Close
// releases the underlying provider connection and may be called at any
// point to abandon the stream.
type TokenStream interface {
	Recv() (string, error)
	Close() error
}

// StreamAnswer is the streaming counterpart of QueryAnswer: the
// confidence and sources are known up front, the answer text arrives
// through Fragments.
type StreamAnswer struct {
	ConfidenceScore float64
	Sources         []SectionMetadata
	Fragments       TokenStream
}

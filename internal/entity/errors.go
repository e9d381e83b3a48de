package entity

import "errors"

// Domain errors
var (
	// Provider / adapter errors. Adapters wrap the underlying cause
	// with these sentinels; they surface to the orchestrator unchanged.
	ErrEmbeddingProvider = errors.New("embedding provider failure")
	ErrVectorIndex       = errors.New("vector index failure")
	ErrMetadataStore     = errors.New("metadata store failure")

	// Content errors
	ErrContentNotFound = errors.New("content not found")
	ErrEmptyDocument   = errors.New("document contains no text")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrTextTooLong      = errors.New("text exceeds maximum length")
	ErrInvalidFile      = errors.New("invalid file")
	ErrFileTooLarge     = errors.New("file too large")
)

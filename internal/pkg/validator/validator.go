package validator

import (
	"fmt"
	"strings"

	"github.com/physical-ai/chatbot-backend/internal/entity"
)

// Validator checks incoming request payloads against configured bounds.
type Validator struct {
	maxTextLen  int
	maxPDFBytes int64
}

func New(maxTextLen int, maxPDFBytes int64) *Validator {
	return &Validator{
		maxTextLen:  maxTextLen,
		maxPDFBytes: maxPDFBytes,
	}
}

// ValidateQuery checks a chatbot query request.
func (v *Validator) ValidateQuery(req *entity.QueryRequest) error {
	if strings.TrimSpace(req.Text) == "" {
		return fmt.Errorf("%w: text", entity.ErrMissingField)
	}
	if v.maxTextLen > 0 && len(req.Text) > v.maxTextLen {
		return fmt.Errorf("%w: query text is %d bytes, limit %d", entity.ErrTextTooLong, len(req.Text), v.maxTextLen)
	}
	return nil
}

// ValidateContentRecords checks an ingestion batch.
func (v *Validator) ValidateContentRecords(records []entity.ContentRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("%w: records", entity.ErrMissingField)
	}

	for i, rec := range records {
		if strings.TrimSpace(rec.Text) == "" {
			return fmt.Errorf("%w: records[%d].text", entity.ErrMissingField, i)
		}
		if strings.TrimSpace(rec.Chapter) == "" {
			return fmt.Errorf("%w: records[%d].chapter", entity.ErrMissingField, i)
		}
		if strings.TrimSpace(rec.Section) == "" {
			return fmt.Errorf("%w: records[%d].section", entity.ErrMissingField, i)
		}
		if rec.PageNumber < 0 {
			return fmt.Errorf("%w: records[%d].page_number must not be negative", entity.ErrInvalidParameter, i)
		}
		if v.maxTextLen > 0 && len(rec.Text) > v.maxTextLen {
			return fmt.Errorf("%w: records[%d].text is %d bytes, limit %d", entity.ErrTextTooLong, i, len(rec.Text), v.maxTextLen)
		}
	}

	return nil
}

// ValidatePDFUpload checks an uploaded document before parsing.
func (v *Validator) ValidatePDFUpload(filename string, size int64) error {
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return fmt.Errorf("%w: only PDF files are accepted", entity.ErrInvalidFile)
	}
	if v.maxPDFBytes > 0 && size > v.maxPDFBytes {
		return fmt.Errorf("%w: %d bytes, limit %d", entity.ErrFileTooLarge, size, v.maxPDFBytes)
	}
	return nil
}

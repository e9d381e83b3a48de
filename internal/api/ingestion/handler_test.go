package ingestion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/physical-ai/chatbot-backend/internal/config"
	"github.com/physical-ai/chatbot-backend/internal/entity"
	"github.com/physical-ai/chatbot-backend/internal/pkg/validator"
)

type stubUsecase struct {
	saved    int
	err      error
	records  []entity.ContentRecord
	filename string
	data     []byte
}

func (s *stubUsecase) IngestContent(ctx context.Context, records []entity.ContentRecord) (int, error) {
	s.records = records
	return s.saved, s.err
}

func (s *stubUsecase) IngestPDF(ctx context.Context, filename string, data []byte) (int, error) {
	s.filename = filename
	s.data = data
	return s.saved, s.err
}

type stubHealth struct {
	err error
}

func (s *stubHealth) HealthCheck(ctx context.Context) error { return s.err }

func newTestRouter(uc IngestUsecase, health HealthChecker) http.Handler {
	cfg := config.IngestConfig{
		ChunkSize:    1000,
		ChunkOverlap: 100,
		MaxTextLen:   20000,
		MaxPDFBytes:  1 << 20,
	}
	h := NewHandler(uc, health, cfg, validator.New(cfg.MaxTextLen, cfg.MaxPDFBytes))
	r := chi.NewRouter()
	RegisterRoutes(r, h)
	return r
}

func TestIngestContent_StoresBatch(t *testing.T) {
	uc := &stubUsecase{saved: 2}
	router := newTestRouter(uc, &stubHealth{})

	body := `{"records":[
		{"id":"a","text":"first","chapter":"Ch 1","section":"S 1","page_number":3},
		{"text":"second","chapter":"Ch 1","section":"S 2"}
	]}`
	req := httptest.NewRequest(http.MethodPost, "/ingestion/textbook-content", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp entity.IngestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.ChunksSaved)
	require.Len(t, uc.records, 2)
	assert.Equal(t, "a", uc.records[0].ID)
}

func TestIngestContent_MissingChapterIsBadRequest(t *testing.T) {
	uc := &stubUsecase{}
	router := newTestRouter(uc, &stubHealth{})

	body := `{"records":[{"text":"first","section":"S 1"}]}`
	req := httptest.NewRequest(http.MethodPost, "/ingestion/textbook-content", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, uc.records)
}

func TestIngestContent_StoreFailureIsBadGateway(t *testing.T) {
	uc := &stubUsecase{err: entity.ErrMetadataStore}
	router := newTestRouter(uc, &stubHealth{})

	body := `{"records":[{"text":"first","chapter":"Ch 1","section":"S 1"}]}`
	req := httptest.NewRequest(http.MethodPost, "/ingestion/textbook-content", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func multipartPDF(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestUploadPDF_PassesFileToUsecase(t *testing.T) {
	uc := &stubUsecase{saved: 4}
	router := newTestRouter(uc, &stubHealth{})

	body, contentType := multipartPDF(t, "file", "robotics.pdf", []byte("%PDF-1.4 fake"))
	req := httptest.NewRequest(http.MethodPost, "/ingestion/upload-pdf", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp entity.IngestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.ChunksSaved)
	assert.Equal(t, "robotics.pdf", uc.filename)
	assert.Equal(t, []byte("%PDF-1.4 fake"), uc.data)
}

func TestUploadPDF_RejectsNonPDF(t *testing.T) {
	uc := &stubUsecase{}
	router := newTestRouter(uc, &stubHealth{})

	body, contentType := multipartPDF(t, "file", "notes.txt", []byte("plain text"))
	req := httptest.NewRequest(http.MethodPost, "/ingestion/upload-pdf", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, uc.filename)
}

func TestUploadPDF_MissingFileField(t *testing.T) {
	router := newTestRouter(&stubUsecase{}, &stubHealth{})

	body, contentType := multipartPDF(t, "document", "robotics.pdf", []byte("%PDF"))
	req := httptest.NewRequest(http.MethodPost, "/ingestion/upload-pdf", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadPDF_EmptyDocumentIsBadRequest(t *testing.T) {
	uc := &stubUsecase{err: entity.ErrEmptyDocument}
	router := newTestRouter(uc, &stubHealth{})

	body, contentType := multipartPDF(t, "file", "blank.pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/ingestion/upload-pdf", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth_Healthy(t *testing.T) {
	router := newTestRouter(&stubUsecase{}, &stubHealth{})

	req := httptest.NewRequest(http.MethodGet, "/ingestion/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"connected"`)
}

func TestHealth_DatabaseDown(t *testing.T) {
	router := newTestRouter(&stubUsecase{}, &stubHealth{err: errors.New("connection refused")})

	req := httptest.NewRequest(http.MethodGet, "/ingestion/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"disconnected"`)
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloo-solutions/citemeai/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) Upload(ctx context.Context, chunks []domain.Chunk) (int, error) {
	args := m.Called(ctx, chunks)
	return args.Int(0), args.Error(1)
}

func multipartUploadRequest(t *testing.T, fields map[string]string, fileContent []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if fileContent != nil {
		part, err := writer.CreateFormFile("file", "chunks.json")
		require.NoError(t, err)
		_, err = part.Write(fileContent)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func validChunkJSON() []byte {
	return []byte(`[{
		"id": "chunk-1",
		"source_doc_id": "doc-1",
		"chunk_index": 0,
		"section_heading": "Introduction",
		"journal": "Journal of Agronomy",
		"publish_year": 2021,
		"usage_count": 3,
		"link": "https://example.org/doc-1",
		"text": "Legumes fix nitrogen in the soil.",
		"attributes": ["legume"]
	}]`)
}

func TestUploadHandler_Success(t *testing.T) {
	mockSvc := new(MockUploadService)
	handler := NewUploadHandler(mockSvc)

	mockSvc.On("Upload", mock.Anything, mock.MatchedBy(func(chunks []domain.Chunk) bool {
		return len(chunks) == 1 && chunks[0].ID == "chunk-1"
	})).Return(1, nil)

	req := multipartUploadRequest(t, map[string]string{"schema_version": "1.0"}, validChunkJSON())
	w := httptest.NewRecorder()

	handler.Upload(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "Successfully processed and stored 1 chunks", data["message"])
	assert.Equal(t, "accepted", data["status"])
	mockSvc.AssertExpectations(t)
}

func TestUploadHandler_MissingSchemaVersion(t *testing.T) {
	mockSvc := new(MockUploadService)
	handler := NewUploadHandler(mockSvc)

	req := multipartUploadRequest(t, nil, validChunkJSON())
	w := httptest.NewRecorder()

	handler.Upload(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "schema_version")
	mockSvc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestUploadHandler_FileURLNotImplemented(t *testing.T) {
	mockSvc := new(MockUploadService)
	handler := NewUploadHandler(mockSvc)

	req := multipartUploadRequest(t, map[string]string{
		"schema_version": "1.0",
		"file_url":       "https://example.org/chunks.json",
	}, nil)
	w := httptest.NewRecorder()

	handler.Upload(w, req)

	assert.Equal(t, http.StatusNotImplemented, w.Code)
	mockSvc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestUploadHandler_FilePrecedesFileURL(t *testing.T) {
	mockSvc := new(MockUploadService)
	handler := NewUploadHandler(mockSvc)

	mockSvc.On("Upload", mock.Anything, mock.MatchedBy(func(chunks []domain.Chunk) bool {
		return len(chunks) == 1 && chunks[0].ID == "chunk-1"
	})).Return(1, nil)

	req := multipartUploadRequest(t, map[string]string{
		"schema_version": "1.0",
		"file_url":       "https://example.org/chunks.json",
	}, validChunkJSON())
	w := httptest.NewRecorder()

	handler.Upload(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestUploadHandler_MissingFile(t *testing.T) {
	mockSvc := new(MockUploadService)
	handler := NewUploadHandler(mockSvc)

	req := multipartUploadRequest(t, map[string]string{"schema_version": "1.0"}, nil)
	w := httptest.NewRecorder()

	handler.Upload(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "file or file_url")
}

func TestUploadHandler_InvalidJSON(t *testing.T) {
	mockSvc := new(MockUploadService)
	handler := NewUploadHandler(mockSvc)

	req := multipartUploadRequest(t, map[string]string{"schema_version": "1.0"}, []byte(`{"not":"an array"}`))
	w := httptest.NewRecorder()

	handler.Upload(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadHandler_ValidationFailureRejectsBatch(t *testing.T) {
	mockSvc := new(MockUploadService)
	handler := NewUploadHandler(mockSvc)

	content := []byte(`[{"id": "chunk-1"}]`)
	req := multipartUploadRequest(t, map[string]string{"schema_version": "1.0"}, content)
	w := httptest.NewRecorder()

	handler.Upload(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "chunk-1")
	mockSvc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestUploadHandler_ServiceError(t *testing.T) {
	mockSvc := new(MockUploadService)
	handler := NewUploadHandler(mockSvc)

	mockSvc.On("Upload", mock.Anything, mock.Anything).Return(0, domain.ErrVectorStoreUnavailable)

	req := multipartUploadRequest(t, map[string]string{"schema_version": "1.0"}, validChunkJSON())
	w := httptest.NewRecorder()

	handler.Upload(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestUploadHandler_NotMultipart(t *testing.T) {
	mockSvc := new(MockUploadService)
	handler := NewUploadHandler(mockSvc)

	req := httptest.NewRequest(http.MethodPut, "/api/upload", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.Upload(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

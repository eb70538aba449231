package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cloo-solutions/citemeai/internal/api"
	"github.com/cloo-solutions/citemeai/internal/domain"
	"github.com/cloo-solutions/citemeai/internal/ingest"
)

// maxUploadMemory bounds the in-memory portion of multipart parsing.
const maxUploadMemory = 32 << 20

type UploadService interface {
	Upload(ctx context.Context, chunks []domain.Chunk) (int, error)
}

type UploadHandler struct {
	svc UploadService
}

func NewUploadHandler(svc UploadService) *UploadHandler {
	return &UploadHandler{svc: svc}
}

type UploadResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Stored  int    `json:"stored"`
}

// Upload ingests a multipart request carrying a JSON array of chunk records.
// The whole batch is validated before anything is stored; a validation
// failure anywhere rejects the batch. file_url is accepted as a field but
// its handling is not implemented.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	if r.FormValue("schema_version") == "" {
		api.HandleError(w, domain.ErrMissingSchemaVersion)
		return
	}

	// An attached file takes precedence over file_url when both are present.
	file, _, err := r.FormFile("file")
	if err != nil {
		if r.FormValue("file_url") != "" {
			api.HandleError(w, domain.ErrURLIngestNotImplemented)
			return
		}
		api.HandleError(w, domain.ErrMissingUploadSource)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	var records []ingest.RawChunk
	if err := json.Unmarshal(content, &records); err != nil {
		api.Error(w, http.StatusBadRequest, "uploaded file is not a JSON array of chunks")
		return
	}

	chunks, err := ingest.Normalize(records)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	stored, err := h.svc.Upload(r.Context(), chunks)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusAccepted, UploadResponse{
		Message: fmt.Sprintf("Successfully processed and stored %d chunks", stored),
		Status:  "accepted",
		Stored:  stored,
	})
}

//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/cloo-solutions/citemeai/internal/api/handlers"
	"github.com/cloo-solutions/citemeai/internal/server"
	"github.com/cloo-solutions/citemeai/internal/service"
	"github.com/cloo-solutions/citemeai/internal/vector"
)

const embeddingDim = 32

// fakeEmbedder produces deterministic bag-of-words embeddings so that texts
// sharing words land close together under cosine similarity.
type fakeEmbedder struct{}

func (fakeEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	v := make([]float32, embeddingDim)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		v[h.Sum32()%embeddingDim]++
	}
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range v {
			v[i] *= scale
		}
	}
	return v, nil
}

// fakeLLM echoes back a canned answer that includes the grounding size.
type fakeLLM struct{}

func (fakeLLM) GenerateAnswer(ctx context.Context, system, user string) (string, error) {
	chunks := strings.Count(user, "CHUNK ")
	return fmt.Sprintf("Answer grounded in %d chunks.", chunks), nil
}

// memoryStore is an in-memory vector.Store with exact cosine scoring.
type memoryStore struct {
	mu      sync.Mutex
	records map[string]vector.Record
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: map[string]vector.Record{}}
}

func (s *memoryStore) Upsert(ctx context.Context, records []vector.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range records {
		s.records[record.ID] = record
	}
	return nil
}

func (s *memoryStore) Query(ctx context.Context, embedding []float32, topK int, includeMetadata bool) ([]vector.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matches := make([]vector.Match, 0, len(s.records))
	for _, record := range s.records {
		match := vector.Match{ID: record.ID, Score: cosine(embedding, record.Embedding)}
		if includeMetadata {
			match.Payload = record.Payload
		}
		matches = append(matches, match)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (s *memoryStore) Stats(ctx context.Context) (*vector.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &vector.Stats{TotalVectorCount: len(s.records)}, nil
}

func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		if i >= len(b) {
			break
		}
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

// Env is an in-process test environment wrapping the full HTTP stack.
type Env struct {
	Server *httptest.Server
	Store  *memoryStore
}

func SetupE2EEnv(t *testing.T) *Env {
	t.Helper()

	store := newMemoryStore()
	embedder := fakeEmbedder{}
	llm := fakeLLM{}

	uploadSvc := service.NewUploadService(embedder, store)
	searchSvc := service.NewSearchService(embedder, store)
	answerSvc := service.NewAnswerService(searchSvc, llm)

	router := server.NewRouter(server.RouterConfig{
		UploadHandler: handlers.NewUploadHandler(uploadSvc),
		SearchHandler: handlers.NewSearchHandler(searchSvc),
		QAHandler:     handlers.NewQAHandler(answerSvc),
		StatsHandler:  handlers.NewStatsHandler(store),
	})

	return &Env{
		Server: httptest.NewServer(router),
		Store:  store,
	}
}

func (e *Env) Cleanup() {
	e.Server.Close()
}

// APIResponse mirrors the server's response envelope.
type APIResponse struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Post sends a JSON request and decodes the envelope. The HTTP status is
// returned alongside so error cases can assert on it.
func (e *Env) Post(path string, body interface{}) (*APIResponse, int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, 0, err
	}

	resp, err := http.Post(e.Server.URL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	apiResp, err := decodeEnvelope(resp)
	return apiResp, resp.StatusCode, err
}

// Get sends a GET request and decodes the envelope.
func (e *Env) Get(path string) (*APIResponse, int, error) {
	resp, err := http.Get(e.Server.URL + path)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	apiResp, err := decodeEnvelope(resp)
	return apiResp, resp.StatusCode, err
}

// Upload PUTs a multipart chunk file with the given form fields.
func (e *Env) Upload(fields map[string]string, fileContent []byte) (*APIResponse, int, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, 0, err
		}
	}
	if fileContent != nil {
		part, err := writer.CreateFormFile("file", "chunks.json")
		if err != nil {
			return nil, 0, err
		}
		if _, err := part.Write(fileContent); err != nil {
			return nil, 0, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequest(http.MethodPut, e.Server.URL+"/api/upload", &buf)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	apiResp, err := decodeEnvelope(resp)
	return apiResp, resp.StatusCode, err
}

func decodeEnvelope(resp *http.Response) (*APIResponse, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var apiResp APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response %q: %w", string(body), err)
	}
	return &apiResp, nil
}

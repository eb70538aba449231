package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloo-solutions/citemeai/internal/api/handlers"
	"github.com/cloo-solutions/citemeai/internal/domain"
	"github.com/cloo-solutions/citemeai/internal/service"
	"github.com/cloo-solutions/citemeai/internal/vector"
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

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, input service.SearchInput) ([]domain.SearchResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SearchResult), args.Error(1)
}

type MockAnswerService struct {
	mock.Mock
}

func (m *MockAnswerService) Answer(ctx context.Context, input service.AnswerInput) (*service.AnswerOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AnswerOutput), args.Error(1)
}

type MockStatsProvider struct {
	mock.Mock
}

func (m *MockStatsProvider) Stats(ctx context.Context) (*vector.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vector.Stats), args.Error(1)
}

func setupRouter() (http.Handler, *MockUploadService, *MockSearchService, *MockAnswerService, *MockStatsProvider) {
	uploadSvc := new(MockUploadService)
	searchSvc := new(MockSearchService)
	answerSvc := new(MockAnswerService)
	statsProvider := new(MockStatsProvider)

	cfg := RouterConfig{
		UploadHandler: handlers.NewUploadHandler(uploadSvc),
		SearchHandler: handlers.NewSearchHandler(searchSvc),
		QAHandler:     handlers.NewQAHandler(answerSvc),
		StatsHandler:  handlers.NewStatsHandler(statsProvider),
	}

	router := NewRouter(cfg)
	return router, uploadSvc, searchSvc, answerSvc, statsProvider
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router, _, _, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
}

func TestRouter_SimilaritySearch(t *testing.T) {
	router, _, searchSvc, _, _ := setupRouter()

	searchSvc.On("Search", mock.Anything, mock.MatchedBy(func(input service.SearchInput) bool {
		return input.Query == "nitrogen"
	})).Return([]domain.SearchResult{}, nil)

	body := bytes.NewReader([]byte(`{"query":"nitrogen"}`))
	req := httptest.NewRequest(http.MethodPost, "/api/similarity_search", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	searchSvc.AssertExpectations(t)
}

func TestRouter_QuestionAnswer(t *testing.T) {
	router, _, _, answerSvc, _ := setupRouter()

	answerSvc.On("Answer", mock.Anything, mock.Anything).Return(&service.AnswerOutput{
		Answer:    "the answer",
		Citations: []domain.Citation{},
	}, nil)

	body := bytes.NewReader([]byte(`{"question":"how?"}`))
	req := httptest.NewRequest(http.MethodPost, "/api/question_answer", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	answerSvc.AssertExpectations(t)
}

func TestRouter_Stats(t *testing.T) {
	router, _, _, _, statsProvider := setupRouter()

	statsProvider.On("Stats", mock.Anything).Return(&vector.Stats{TotalVectorCount: 7}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	statsProvider.AssertExpectations(t)
}

func TestRouter_UploadRequiresPut(t *testing.T) {
	router, uploadSvc, _, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	uploadSvc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestRouter_RequestIDHeaderSet(t *testing.T) {
	router, _, _, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

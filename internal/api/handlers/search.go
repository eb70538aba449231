package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cloo-solutions/citemeai/internal/api"
	"github.com/cloo-solutions/citemeai/internal/domain"
	"github.com/cloo-solutions/citemeai/internal/service"
)

type SearchService interface {
	Search(ctx context.Context, input service.SearchInput) ([]domain.SearchResult, error)
}

type SearchHandler struct {
	svc SearchService
}

func NewSearchHandler(svc SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

// SearchRequest uses pointers for k and min_score so that an explicit zero
// can be told apart from an absent field.
type SearchRequest struct {
	Query    string   `json:"query"`
	K        *int     `json:"k,omitempty"`
	MinScore *float32 `json:"min_score,omitempty"`
}

type SearchResultResponse struct {
	ID       string               `json:"id"`
	Score    float32              `json:"score"`
	Metadata domain.ChunkMetadata `json:"metadata"`
	Text     string               `json:"text"`
}

type SearchResponse struct {
	Results []SearchResultResponse `json:"results"`
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		api.HandleError(w, domain.ErrEmptyQuery)
		return
	}

	results, err := h.svc.Search(r.Context(), service.SearchInput{
		Query:    req.Query,
		TopK:     intOrDefault(req.K, service.DefaultTopK),
		MinScore: scoreOrDefault(req.MinScore, service.DefaultMinScore),
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]SearchResultResponse, len(results))
	for i, result := range results {
		responses[i] = SearchResultResponse{
			ID:       result.ID,
			Score:    result.Score,
			Metadata: result.Metadata,
			Text:     result.Text,
		}
	}

	api.Success(w, http.StatusOK, SearchResponse{Results: responses})
}

func intOrDefault(value *int, fallback int) int {
	if value == nil {
		return fallback
	}
	return *value
}

func scoreOrDefault(value *float32, fallback float32) float32 {
	if value == nil {
		return fallback
	}
	return *value
}

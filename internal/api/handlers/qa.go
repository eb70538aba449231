package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cloo-solutions/citemeai/internal/api"
	"github.com/cloo-solutions/citemeai/internal/domain"
	"github.com/cloo-solutions/citemeai/internal/service"
)

type AnswerService interface {
	Answer(ctx context.Context, input service.AnswerInput) (*service.AnswerOutput, error)
}

type QAHandler struct {
	svc AnswerService
}

func NewQAHandler(svc AnswerService) *QAHandler {
	return &QAHandler{svc: svc}
}

type QuestionAnswerRequest struct {
	Question string   `json:"question"`
	K        *int     `json:"k,omitempty"`
	MinScore *float32 `json:"min_score,omitempty"`
}

type QuestionAnswerResponse struct {
	Answer    string            `json:"answer"`
	Citations []domain.Citation `json:"citations"`
}

func (h *QAHandler) QuestionAnswer(w http.ResponseWriter, r *http.Request) {
	var req QuestionAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Question == "" {
		api.HandleError(w, domain.ErrEmptyQuestion)
		return
	}

	output, err := h.svc.Answer(r.Context(), service.AnswerInput{
		Question: req.Question,
		TopK:     intOrDefault(req.K, service.DefaultTopK),
		MinScore: scoreOrDefault(req.MinScore, service.DefaultMinScore),
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, QuestionAnswerResponse{
		Answer:    output.Answer,
		Citations: output.Citations,
	})
}

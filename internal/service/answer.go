package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloo-solutions/citemeai/internal/domain"
	"github.com/cloo-solutions/citemeai/internal/telemetry"
)

// LLMClient defines the interface for grounded answer generation
type LLMClient interface {
	GenerateAnswer(ctx context.Context, system, user string) (string, error)
}

// Searcher defines the retrieval interface the synthesizer depends on
type Searcher interface {
	Search(ctx context.Context, input SearchInput) ([]domain.SearchResult, error)
}

// NoInformationAnswer is returned when retrieval finds nothing relevant.
// This is an informational response, not an error.
const NoInformationAnswer = "I couldn't find any relevant information to answer your question."

const answerSystemPrompt = "You are a helpful research assistant that provides accurate information with proper citations."

// AnswerInput carries the question-answering parameters.
type AnswerInput struct {
	Question string
	TopK     int
	MinScore float32
}

// AnswerOutput pairs the generated answer with citations derived from
// retrieval. Citations are never parsed out of the model's text.
type AnswerOutput struct {
	Answer    string
	Citations []domain.Citation
}

// AnswerService synthesizes grounded answers from retrieved chunks.
type AnswerService struct {
	search Searcher
	llm    LLMClient
}

// NewAnswerService creates a new AnswerService instance
func NewAnswerService(search Searcher, llm LLMClient) *AnswerService {
	return &AnswerService{search: search, llm: llm}
}

// Answer retrieves relevant chunks for the question, builds a grounding
// context, and asks the language model for an answer constrained to that
// context. One citation is emitted per retrieved chunk, in ranked order,
// without deduplication. A generation failure is not retried here.
func (s *AnswerService) Answer(ctx context.Context, input AnswerInput) (*AnswerOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "AnswerService.Answer", telemetry.SpanAttributes{
		Query:     input.Question,
		Operation: "question_answer",
	})
	defer span.End()

	// Missing LLM credentials is a configuration error, surfaced before any
	// retrieval work happens.
	if s.llm == nil {
		return nil, domain.ErrLLMNotConfigured
	}

	results, err := s.search.Search(ctx, SearchInput{
		Query:    input.Question,
		TopK:     input.TopK,
		MinScore: input.MinScore,
	})
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return &AnswerOutput{
			Answer:    NoInformationAnswer,
			Citations: []domain.Citation{},
		}, nil
	}

	var grounding strings.Builder
	citations := make([]domain.Citation, 0, len(results))
	for i, result := range results {
		fmt.Fprintf(&grounding, "\n\nCHUNK %d:\n%s\n", i+1, result.Text)
		fmt.Fprintf(&grounding, "SOURCE: %s, SECTION: %s\n", result.Metadata.SourceDocID, result.Metadata.SectionHeading)
		citations = append(citations, domain.CitationForResult(result))
	}

	answer, err := s.llm.GenerateAnswer(ctx, answerSystemPrompt, buildAnswerPrompt(input.Question, grounding.String()))
	if err != nil {
		span.SetError(err)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUnavailable, "failed to generate answer", err)
	}

	return &AnswerOutput{
		Answer:    answer,
		Citations: citations,
	}, nil
}

func buildAnswerPrompt(question, context string) string {
	return fmt.Sprintf(`Answer the following question based on the provided context.
Include information only from the context. If you cannot answer the question based on the context,
say that you don't have enough information.

QUESTION: %s

CONTEXT: %s

Provide a comprehensive answer with proper citations. Do not mention 'CHUNK' or 'SOURCE' in your answer.
Instead, integrate the information smoothly and cite sources at the end of relevant sentences or paragraphs.`, question, context)
}

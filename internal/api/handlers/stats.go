package handlers

import (
	"context"
	"net/http"

	"github.com/cloo-solutions/citemeai/internal/api"
	"github.com/cloo-solutions/citemeai/internal/domain"
	"github.com/cloo-solutions/citemeai/internal/vector"
)

type StatsProvider interface {
	Stats(ctx context.Context) (*vector.Stats, error)
}

// StatsHandler exposes vector index statistics.
type StatsHandler struct {
	store StatsProvider
}

func NewStatsHandler(store StatsProvider) *StatsHandler {
	return &StatsHandler{store: store}
}

func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		api.HandleError(w, domain.ErrVectorStoreUnavailable)
		return
	}

	stats, err := h.store.Stats(r.Context())
	if err != nil {
		api.HandleError(w, domain.NewDomainErrorWithCause(domain.ErrCodeUnavailable, "failed to read index stats", err))
		return
	}

	api.Success(w, http.StatusOK, stats)
}

package server

import (
	"net/http"

	"github.com/cloo-solutions/citemeai/internal/api"
	"github.com/cloo-solutions/citemeai/internal/api/handlers"
	"github.com/cloo-solutions/citemeai/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	UploadHandler *handlers.UploadHandler
	SearchHandler *handlers.SearchHandler
	QAHandler     *handlers.QAHandler
	StatsHandler  *handlers.StatsHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Uploads carry whole chunk files, so the cap is generous.
	const maxBodyBytes int64 = 32 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Put("/upload", cfg.UploadHandler.Upload)
		r.Post("/similarity_search", cfg.SearchHandler.Search)
		r.Post("/question_answer", cfg.QAHandler.QuestionAnswer)
		r.Get("/stats", cfg.StatsHandler.Stats)
	})

	return r
}

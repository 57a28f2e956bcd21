package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pagelake/pagelake/internal/api"
	"github.com/pagelake/pagelake/internal/api/handlers"
	"github.com/pagelake/pagelake/internal/api/middleware"
)

type RouterConfig struct {
	PageHandler    *handlers.PageHandler
	PresignHandler *handlers.PresignHandler
	SweepHandler   *handlers.SweepHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/pages", cfg.PageHandler.Ingest)
	r.Get("/sign-url", cfg.PresignHandler.SignURL)
	r.Post("/sweep", cfg.SweepHandler.Trigger)

	return r
}

package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"listing-matcher/internal/config"
	matchHnd "listing-matcher/internal/match/handler"
	"listing-matcher/internal/middleware"
	"listing-matcher/internal/runstore"
	"listing-matcher/server/http/handlers"
)

// NewRouter собирает маршруты. store может быть nil: тогда прогоны не сохраняются.
func NewRouter(cfg config.Config, store *runstore.Store, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// порядок важен: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(cfg.MaxUploadBytes()))

	r.Get("/health", handlers.Health)

	r.Post("/match", matchHnd.Match(cfg, store, logger))
	r.Post("/compare", matchHnd.Compare(store, logger))
	r.Get("/runs", matchHnd.ListRuns(store, logger))
	r.Get("/runs/{id}", matchHnd.GetRun(store, logger))

	return r
}

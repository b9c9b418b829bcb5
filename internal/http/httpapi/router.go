package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Purvav0511/cinefibo/internal/http/handlers"
	"github.com/Purvav0511/cinefibo/internal/infra"
	"github.com/Purvav0511/cinefibo/internal/middleware"
)

// NewRouter wires the HTTP surface: health probe, generation endpoints and
// render history, wrapped in the shared middleware chain.
func NewRouter(app *handlers.App, cfg *infra.Config, logger infra.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))

	r.Get("/health", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/fibo/generate", app.FiboGenerate)
		r.Post("/shot/generate", app.ShotGenerate)
		r.Post("/shot/tune", app.ShotTune)
		r.Post("/shot/coverage", app.ShotCoverage)
		r.Get("/shots/history", app.ShotsHistory)
	})

	return r
}

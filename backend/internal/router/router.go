package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/itchan-dev/threads/backend/internal/setup"
	mw "github.com/itchan-dev/threads/shared/middleware"
	"github.com/itchan-dev/threads/shared/middleware/metrics"
	rl "github.com/itchan-dev/threads/shared/middleware/ratelimiter"
)

// New builds the API router.
// Rate limiters attached with Use limit all routes of that group combined.
func New(deps *setup.Dependencies) *chi.Mux {
	cfg := deps.Config.Public
	h := deps.Handler

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware("api"))
	r.Use(chimw.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))
	r.Use(mw.SecurityHeaders(mw.APIHeaderPolicy(cfg.SecureCookies)))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1/threads", func(r chi.Router) {
		r.Use(mw.GlobalRateLimit(rl.New(1000, 1000, time.Hour)))

		r.With(mw.RateLimit(rl.Rps10(), mw.GetIP)).Get("/", h.GetThreads)
		r.With(mw.RateLimit(rl.Rps10(), mw.GetIP)).Get("/{thread}", h.GetThread)

		// writes share one per-IP bucket
		writes := rl.New(cfg.WriteRPS, cfg.WriteBurst, time.Hour)
		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit(writes, mw.GetIP))
			r.Post("/", h.CreateThread)
			r.Post("/{thread}/comments", h.AddComment)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not found", http.StatusNotFound)
	})

	return r
}

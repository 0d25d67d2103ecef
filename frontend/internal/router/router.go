package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/itchan-dev/threads/frontend/internal/setup"
	mw "github.com/itchan-dev/threads/shared/middleware"
	"github.com/itchan-dev/threads/shared/middleware/metrics"
	rl "github.com/itchan-dev/threads/shared/middleware/ratelimiter"
)

func New(deps *setup.Dependencies) *chi.Mux {
	h := deps.Handler

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware("frontend"))
	r.Use(chimw.Compress(5))
	r.Use(mw.SecurityHeaders(mw.PageHeaderPolicy(deps.Public.SecureCookies)))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(deps.StaticFS))))

	r.Group(func(r chi.Router) {
		r.Use(mw.RateLimit(rl.Rps10(), mw.GetIP))
		r.Get("/", h.IndexGetHandler)
		r.Get("/thread/", h.ThreadGetHandler)
		r.Get("/thread/{thread}", h.ThreadGetHandler)
	})

	return r
}

// Package api serves the price dataset, chart series, rendered charts, and
// the static chart page over HTTP.
package api

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sells-group/pricechart/internal/config"
	"github.com/sells-group/pricechart/internal/source"
)

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	cfg     *config.Config
	src     source.Source
	limiter *RateLimiter
	static  fs.FS
	now     func() time.Time
}

// New creates a Server reading from src on every request.
func New(cfg *config.Config, src source.Source) *Server {
	window := time.Duration(cfg.Server.RateLimit.WindowSecs) * time.Second
	return &Server{
		cfg:     cfg,
		src:     src,
		limiter: NewRateLimiter(cfg.Server.RateLimit.Requests, window),
		static:  staticFS(),
		now:     time.Now,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	if s.cfg.Server.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(AccessLog)
	r.Use(middleware.Recoverer)
	r.Use(SecurityHeaders)
	if len(s.cfg.Server.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.Server.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}))
	}
	r.Use(s.limiter.Middleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/prices", s.handlePrices)
		r.Get("/series", s.handleSeries)
		r.Get("/chart.png", s.handleChart)
		r.Get("/chart.svg", s.handleChart)
		r.Post("/chart/click", s.handleClick)
		r.Get("/chart/hit", s.handleHit)
		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusNotFound, errorBody{Error: "Not found"})
		})
	})

	r.Get("/", s.page("index.html"))
	r.Get("/about", s.page("about.html"))
	r.Handle("/*", http.FileServer(http.FS(s.static)))

	return r
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/dgallion1/mdquery/internal/cache"
	"github.com/dgallion1/mdquery/internal/config"
	"github.com/dgallion1/mdquery/internal/extract"
	"github.com/dgallion1/mdquery/internal/parser"
	"github.com/dgallion1/mdquery/internal/query"
)

// Server is the HTTP API server for mdquery.
type Server struct {
	router chi.Router
	docs   *cache.Store
	stats  *extract.Stats
	log    *zap.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(cfg config.Config, docs *cache.Store, stats *extract.Stats, log *zap.Logger) *Server {
	s := &Server{
		docs:  docs,
		stats: stats,
		log:   log.Named("api"),
		cfg:   cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/query", s.handleQuery)
		r.Post("/api/outline", s.handleOutline)
		r.Get("/api/stats", s.handleStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) parserOptions() parser.Options {
	return parser.Options{
		Backend:           s.cfg.Parser,
		FallbackPdftotext: s.cfg.PDFFallbackPdftotext,
	}
}

func (s *Server) limits() query.Limits {
	return query.Limits{
		MaxSelectors:  s.cfg.MaxSelectors,
		MaxRangeWidth: s.cfg.MaxRangeWidth,
	}
}

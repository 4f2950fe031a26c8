package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ghosh9691/mmelParser/internal/config"
	"github.com/ghosh9691/mmelParser/internal/pipeline"
	"github.com/ghosh9691/mmelParser/internal/scanner"
	"github.com/ghosh9691/mmelParser/internal/store"
)

// Server is the HTTP API server for mmelParser.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	parser       *scanner.Parser
	store        *store.Store
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. A nil store disables
// the document routes.
func NewServer(orch *pipeline.Orchestrator, parser *scanner.Parser, st *store.Store, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		parser:       parser,
		store:        st,
		log:          log,
		cfg:          cfg,
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
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Get("/api/families", s.handleFamilies)

		r.Post("/api/parse/lines", s.handleParseLines)
		r.Post("/api/parse", s.handleParse)
		r.Post("/api/parse/batch", s.handleParseBatch)
		r.Get("/api/parse/{jobID}/status", s.handleParseStatus)
		r.Get("/api/stats/parse", s.handleParseStats)

		r.Group(func(r chi.Router) {
			r.Use(s.requireStore)
			r.Get("/api/documents", s.handleListDocuments)
			r.Get("/api/documents/{docID}", s.handleGetDocument)
			r.Get("/api/documents/{docID}/entries", s.handleListEntries)
			r.Delete("/api/documents/{docID}", s.handleDeleteDocument)
			r.Get("/api/summary/{family}", s.handleSummary)
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"status": "ok", "queue_depth": s.orchestrator.QueueDepth()}
	if s.store != nil {
		status["database"] = s.store.Driver()
		if err := s.store.Ping(r.Context()); err != nil {
			s.log.Warn("health check ping failed", "error", err)
			status["status"] = "degraded"
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) requireStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.store == nil {
			jsonError(w, "document store is not configured", http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}

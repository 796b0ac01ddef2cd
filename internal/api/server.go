package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/pdfassembly/internal/assembly"
	"github.com/dgallion1/pdfassembly/internal/config"
	"github.com/dgallion1/pdfassembly/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for document assembly.
type Server struct {
	handler      http.Handler
	orchestrator *pipeline.Orchestrator
	docs         assembly.Backend
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. docs opens documents for
// the read-only outline endpoint.
func NewServer(orch *pipeline.Orchestrator, docs assembly.Backend, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		docs:         docs,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
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
		r.Use(AuthMiddleware(s.cfg.AssemblyAPIKey, s.log))
		r.Use(BodyLimit(s.cfg.MaxRequestBytes))

		r.Post("/api/extract", s.handleExtract)
		r.Post("/api/merge", s.handleMerge)
		r.Post("/api/merge/batch", s.handleBatchMerge)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)

		r.Get("/api/documents/outline", s.handleOutline)
		r.Get("/api/stats", s.handleStats)
	})

	s.handler = CORS(s.cfg.CORSAllowedOrigins, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

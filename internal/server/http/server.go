// Package httpserver provides the HTTP API server for the scholarly search proxy.
package httpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/helixir/scholarly-search-proxy/internal/domain"
	"github.com/helixir/scholarly-search-proxy/internal/json"
	"github.com/helixir/scholarly-search-proxy/internal/observability"
	"github.com/helixir/scholarly-search-proxy/internal/search"
)

// Searcher is the search capability the HTTP server depends on.
// *search.Service implements it.
type Searcher interface {
	ParseRequest(p search.Params) (domain.SearchRequest, error)
	Search(ctx context.Context, req domain.SearchRequest, opts search.Options) (*domain.SearchResponse, error)
	Lookup(ctx context.Context, entity domain.Entity, id string) (json.RawMessage, error)
	Providers() []domain.Provider
}

// Server is the HTTP API server.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	searcher   Searcher
	config     Config
	logger     zerolog.Logger
	metrics    *observability.Metrics
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// APIPrefix is where the search API is mounted, e.g. "/api".
	APIPrefix string

	// StaticDir is served under /public/ when it exists.
	StaticDir string

	// CORSAllowedOrigins defaults to any origin.
	CORSAllowedOrigins []string
}

// NewServer creates a new HTTP server. metrics may be nil.
func NewServer(cfg Config, searcher Searcher, logger zerolog.Logger, metrics *observability.Metrics) *Server {
	cfg.APIPrefix = strings.TrimRight(cfg.APIPrefix, "/")
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	s := &Server{
		searcher: searcher,
		config:   cfg,
		logger:   logger.With().Str("component", "http-server").Logger(),
		metrics:  metrics,
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(correlationIDMiddleware)
	r.Use(s.requestLoggingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", correlationIDHeader},
		ExposedHeaders: []string{correlationIDHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)

	api := func(r chi.Router) {
		r.Use(jsonContentTypeMiddleware)
		r.Get("/search", s.handleSearch)
		r.Get("/sources", s.handleSources)
		r.Get("/works/*", s.handleLookup(domain.EntityWorks))
		r.Get("/authors/*", s.handleLookup(domain.EntityAuthors))
	}
	if s.config.APIPrefix == "" {
		r.Group(api)
	} else {
		r.Route(s.config.APIPrefix, api)
	}

	s.mountStatic(r)

	return r
}

// mountStatic serves the bundled frontend when its directory exists.
func (s *Server) mountStatic(r chi.Router) {
	if s.config.StaticDir == "" {
		return
	}
	info, err := os.Stat(s.config.StaticDir)
	if err != nil || !info.IsDir() {
		s.logger.Debug().Str("static_dir", s.config.StaticDir).Msg("static directory not found, frontend disabled")
		return
	}

	fs := http.StripPrefix("/public/", http.FileServer(http.Dir(s.config.StaticDir)))
	r.Handle("/public/*", fs)
	r.Get("/public", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/public/", http.StatusMovedPermanently)
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/public/", http.StatusFound)
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// healthHandler reports liveness.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// readinessHandler reports ready once at least one provider is enabled.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	providers := s.searcher.Providers()
	if len(providers) == 0 {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{
			Status: "not_ready",
			Error:  "no paper sources enabled",
		})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ready",
		Sources: providerNames(providers),
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorResponse{Error: message})
}

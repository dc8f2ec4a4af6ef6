// Package server provides the HTTP API for Seshat.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/seshat/internal/config"
	"github.com/hyperjump/seshat/internal/keyword"
	"github.com/hyperjump/seshat/internal/oracle"
	"github.com/hyperjump/seshat/internal/storage"
)

// WatchService manages the watched article directories. *watcher.Watcher satisfies it.
type WatchService interface {
	Directories() []string
	AddDirectory(path string, syncExisting bool) error
	RemoveDirectory(path string) error
}

// Server is the HTTP server for the Seshat API.
type Server struct {
	oracle       *oracle.Service
	storage      storage.Storage
	keywordIndex keyword.KeywordIndex
	config       *config.Config
	configPath   string
	configMu     sync.Mutex
	watch        WatchService
	logger       *zap.Logger
	server       *http.Server
}

// NewServer creates a server with the given dependencies. watch may be nil,
// in which case the import directory endpoints answer 501. When configPath is
// set, directory changes are persisted to it.
func NewServer(
	svc *oracle.Service,
	store storage.Storage,
	kw keyword.KeywordIndex,
	cfg *config.Config,
	logger *zap.Logger,
	watch WatchService,
	configPath string,
) *Server {
	return &Server{
		oracle:       svc,
		storage:      store,
		keywordIndex: kw,
		config:       cfg,
		configPath:   configPath,
		watch:        watch,
		logger:       logger,
	}
}

// Router returns the API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/summary", s.handleSummary)
		r.Post("/answer", s.handleAnswer)
		r.Get("/article", s.handleArticle)
		r.Post("/summarize", s.handleSummarize)
		r.Get("/articles/search", s.handleSearch)
		r.Get("/articles/{id}", s.handleGetArticle)
		r.Delete("/articles/{id}", s.handleDeleteArticle)
		r.Get("/import/directories", s.handleImportDirectoriesList)
		r.Post("/import/directories", s.handleImportDirectoriesAdd)
		r.Delete("/import/directories", s.handleImportDirectoriesRemove)
	})
	return r
}

// requestLogger logs each request with zap at debug level.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.config.Server.Addr()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

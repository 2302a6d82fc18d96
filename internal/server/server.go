// Package server exposes the plan store, ingestion trigger and recommendation
// engine over an HTTP JSON API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/coverscan/coverscan/internal/config"
	"github.com/coverscan/coverscan/internal/ingest"
	"github.com/coverscan/coverscan/internal/recommend"
	"github.com/coverscan/coverscan/internal/store"
)

// Ingestor triggers a scrape run. Satisfied by *ingest.Runner.
type Ingestor interface {
	Run(ctx context.Context) (*ingest.RunReport, error)
}

// Server holds the API dependencies and builds the router.
type Server struct {
	cfg      config.ServerConfig
	store    store.Store
	engine   *recommend.Engine
	ingestor Ingestor
	validate *validator.Validate
}

// New wires the API server. The ingestor may be nil, in which case the scrape
// trigger reports unavailability.
func New(cfg config.ServerConfig, st store.Store, engine *recommend.Engine, ingestor Ingestor) *Server {
	return &Server{
		cfg:      cfg,
		store:    st,
		engine:   engine,
		ingestor: ingestor,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Router builds the chi router with CORS for the frontend origins.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/plans", s.handlePlans)
		r.Get("/stats", s.handleStats)
		r.Post("/recommend", s.handleRecommend)
		r.Post("/compare", s.handleCompare)
		r.Post("/chat", s.handleChat)
		r.Post("/estimate", s.handleEstimate)
		r.Post("/scrape", s.handleScrape)
	})
	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("api server listening", zap.Int("port", s.cfg.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// requestLogger logs one line per request through the global zap logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

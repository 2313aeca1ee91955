// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server exposes an Engine over HTTP so a browser extension or
// script can check pages without embedding the engine.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/poiesic/catscan"
	"github.com/poiesic/catscan/core"
	"github.com/poiesic/catscan/dataset"
	"github.com/poiesic/catscan/scanner"
	"github.com/poiesic/catscan/search"
	"github.com/poiesic/catscan/suppress"
)

// ErrEngineRequired is returned when New is called without an engine.
var ErrEngineRequired = errors.New("engine required")

const shutdownTimeout = 5 * time.Second

// Engine is the subset of catscan.Engine served over HTTP.
type Engine interface {
	CheckPage(ctx context.Context, rawURL string, notify scanner.NotifyFunc) (*catscan.Report, error)
	Mute(ctx context.Context, pageID core.ID) error
	Hide(ctx context.Context, pageID core.ID) error
	Reset(ctx context.Context, pageID core.ID) error
	State(ctx context.Context, pageID core.ID) (suppress.State, error)
	Store() *search.Store
	Refresh(ctx context.Context) (*dataset.Result, error)
	DatasetInfo(ctx context.Context) (*core.DatasetSnapshot, error)
	DatasetChecksum() string
}

var _ Engine = (*catscan.Engine)(nil)

// Server routes HTTP requests to an Engine.
type Server struct {
	engine Engine
	router *chi.Mux
	logger *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// New creates a Server with all routes registered.
func New(engine Engine, opts ...Option) (*Server, error) {
	if engine == nil {
		return nil, ErrEngineRequired
	}

	s := &Server{
		engine: engine,
		logger: slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	s.registerRoutes(r)
	s.router = r

	return s, nil
}

func (s *Server) registerRoutes(r chi.Router) {
	r.Get("/healthz", s.handleHealth)
	r.Post("/scan", s.handleScan)
	r.Get("/search", s.handleSearch)

	r.Route("/pages/{id}", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Post("/mute", s.handleMute)
		r.Post("/hide", s.handleHide)
		r.Delete("/suppression", s.handleReset)
	})

	r.Get("/dataset", s.handleDatasetInfo)
	r.Post("/dataset/refresh", s.handleRefresh)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requestLogger logs one line per request with its chi request ID.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}

// Package server is the browser front end: a form to submit a URL, pick a
// chart type, a backend and a minimum count, plus a JSON API, health check
// and Prometheus metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/wordfreq/internal/pipeline"
	"github.com/hyperifyio/wordfreq/internal/render"
)

// Options configures a Server.
type Options struct {
	Addr      string
	Analyzer  *pipeline.Analyzer
	Renderers *render.Registry
	// Defaults seeds the form and fills parameters a request leaves out.
	Defaults pipeline.RenderConfig
	// Metrics defaults to a fresh registry.
	Metrics *Metrics
}

type Server struct {
	httpServer *http.Server
	analyzer   *pipeline.Analyzer
	renderers  *render.Registry
	defaults   pipeline.RenderConfig
	metrics    *Metrics
	page       *template.Template
}

// New builds the server. Fetch metrics are hooked into a copy of
// opts.Analyzer, so the caller's Analyzer is left unchanged.
func New(opts Options) *Server {
	m := opts.Metrics
	if m == nil {
		m = NewMetrics()
	}
	an := *opts.Analyzer
	prev := opts.Analyzer.Observe
	an.Observe = func(r pipeline.Result, d time.Duration) {
		m.ObserveFetch(r, d)
		if prev != nil {
			prev(r, d)
		}
	}
	reg := opts.Renderers
	if reg == nil {
		reg = render.DefaultRegistry(render.Options{})
	}
	s := &Server{
		analyzer:  &an,
		renderers: reg,
		defaults:  withDefaults(opts.Defaults),
		metrics:   m,
		page:      template.Must(template.New("page").Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).Parse(pageTemplate)),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /chart", s.handleChart)
	mux.HandleFunc("GET /api/analyze", s.handleAPIAnalyze)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", m.Handler())

	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           withRequestID(withLogging(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Msg("server starting")
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

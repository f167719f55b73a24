// Package web serves the browsing UI as server-rendered HTML pages.
//
// The URL carries the navigation state exactly as the terminal UI's location
// does, so "/?view=details&id=603" and "marquee -open '?view=details&id=603'"
// show the same page.
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/mmcdole/marquee/internal/config"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Server renders pages from a BrowseService
type Server struct {
	browse    *service.BrowseService
	logger    *slog.Logger
	addr      string
	rateLimit int
	defaults  Prefs
	templates *template.Template
	handler   http.Handler
}

// New creates a web server. Preference defaults come from cfg.UI, the
// listen address and rate limit from cfg.Server.
func New(browse *service.BrowseService, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("web: nil config")
	}
	if logger == nil {
		logger = slog.Default()
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	category, ok := domain.ParseCategory(cfg.UI.HomeCategory)
	if !ok {
		category = domain.DefaultCategory
	}

	s := &Server{
		browse:    browse,
		logger:    logger,
		addr:      cfg.Server.Addr,
		rateLimit: cfg.Server.RateLimit,
		defaults: Prefs{
			Category: category,
			Columns:  service.ClampColumns(cfg.UI.GridColumns),
		},
		templates: tmpl,
	}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.addr
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimiddleware.Recoverer)

	// Probes stay outside the rate limit
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if s.rateLimit > 0 {
			r.Use(httprate.LimitByIP(s.rateLimit, time.Minute))
		}
		r.Get("/", s.handlePage)
		r.Get("/prefs", s.handlePrefs)
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web server listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("web server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// requestLogger logs one line per request with its id, status and duration
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"request_id", chimiddleware.GetReqID(r.Context()),
			)
		})
	}
}

// Package httpserver exposes the file-sharing API over HTTP using a chi
// router, together with health, readiness and Prometheus endpoints.
package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/shareme/internal/logging"
	"github.com/dmitrijs2005/shareme/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// FileService is the upload and retrieval side used by the handlers.
type FileService interface {
	Upload(ctx context.Context, p *services.FilePayload) (*services.UploadResult, error)
	GetMetadata(ctx context.Context, id string) (*services.Metadata, error)
	OpenContent(ctx context.Context, id string) (*services.Content, error)
}

// ShareService is the share-by-email side used by the handlers.
type ShareService interface {
	ShareByEmail(ctx context.Context, req services.ShareRequest) (*services.ShareResult, error)
}

// ReadinessChecker reports whether a dependency can serve traffic.
type ReadinessChecker interface {
	Ping(ctx context.Context) error
}

// Options configures the HTTP server.
type Options struct {
	Addr            string
	RoutePrefix     string
	UploadField     string
	MaxUploadBytes  int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type HTTPServer struct {
	opts   Options
	files  FileService
	shares ShareService
	ready  ReadinessChecker
	mounts map[string]http.Handler
	logger logging.Logger
}

func NewHTTPServer(opts Options, l logging.Logger, fs FileService, ss ShareService, ready ReadinessChecker) *HTTPServer {
	if opts.UploadField == "" {
		opts.UploadField = "myFile"
	}
	if opts.RoutePrefix == "" {
		opts.RoutePrefix = "/api/files"
	}
	return &HTTPServer{
		opts:   opts,
		files:  fs,
		shares: ss,
		ready:  ready,
		mounts: make(map[string]http.Handler),
		logger: l.With("module", "http_server"),
	}
}

// Mount attaches an extra handler under pattern, outside the API prefix.
// The handler sees request paths with pattern stripped. Must be called
// before Handler or Run.
func (s *HTTPServer) Mount(pattern string, h http.Handler) {
	s.mounts[pattern] = h
}

// Handler builds the router.
func (s *HTTPServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(metrics)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Handle("/metrics", promhttp.Handler())

	for pattern, h := range s.mounts {
		r.Mount(pattern, http.StripPrefix(pattern, h))
	}

	r.Route(s.opts.RoutePrefix, func(r chi.Router) {
		r.Post("/upload", s.upload)
		r.Post("/email", s.email)
		r.Get("/{id}", s.metadata)
		r.Get("/{id}/download", s.download)
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully within
// ShutdownTimeout.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *HTTPServer) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  s.opts.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	shutdownDone := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		timeout := s.opts.ShutdownTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		sctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		shutdownDone <- srv.Shutdown(sctx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String(), "prefix", s.opts.RoutePrefix)

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-shutdownDone
}

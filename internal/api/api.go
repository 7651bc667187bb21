// Package api provides the HTTP server for LetterCraft.
//
// It exposes JSON endpoints for generating, editing, exporting and sharing
// letters, and for filling letter templates in editor sessions.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/export"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/letter"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/share"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Server defaults.
const (
	DefaultAddr            = ":8080"
	DefaultShutdownTimeout = 10 * time.Second
	maxRequestBodyBytes    = 1 << 20
)

// Opts holds configuration options for running the API server.
type Opts struct {
	Addr            string
	ShutdownTimeout time.Duration
	// Ready, if set, receives the bound address once the listener is open.
	Ready func(addr string)
}

// Option defines a function for configuring Run.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) {
		o.Addr = addr
	}
}

// WithShutdownTimeout bounds graceful shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *Opts) {
		o.ShutdownTimeout = d
	}
}

// WithReadyFunc registers a callback invoked with the bound address.
func WithReadyFunc(fn func(addr string)) Option {
	return func(o *Opts) {
		o.Ready = fn
	}
}

// Server holds the dependencies shared by all handlers.
type Server struct {
	completer letter.Completer
	generator *letter.Generator
	st        store.Store
	sessions  *letter.SessionManager
	exporter  *export.Exporter
	sharer    *share.Sharer
	tracer    trace.Tracer
}

// ServerOption configures optional Server dependencies.
type ServerOption func(*Server)

// WithExporter sets the exporter, e.g. one with a custom PDF font.
func WithExporter(e *export.Exporter) ServerOption {
	return func(s *Server) {
		s.exporter = e
	}
}

// WithSharer enables the share endpoint.
func WithSharer(sh *share.Sharer) ServerOption {
	return func(s *Server) {
		s.sharer = sh
	}
}

// WithSessionManager replaces the default editor session manager.
func WithSessionManager(m *letter.SessionManager) ServerOption {
	return func(s *Server) {
		s.sessions = m
	}
}

// NewServer creates a Server that generates letters through c and keeps them in st.
func NewServer(c letter.Completer, st store.Store, opts ...ServerOption) *Server {
	s := &Server{
		completer: c,
		st:        st,
		tracer:    otel.Tracer("lettercraft/api"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.exporter == nil {
		s.exporter = export.NewExporter(nil)
	}
	if s.sessions == nil {
		s.sessions = letter.NewSessionManager(letter.DefaultSessionTTL)
	}
	s.generator = letter.NewGenerator(c, letter.WithDocumentSaver(st))
	return s
}

// Handler returns the routed and instrumented HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.healthHandler)

	mux.HandleFunc("POST /letters", s.createLetterHandler)
	mux.HandleFunc("GET /letters", s.listLettersHandler)
	mux.HandleFunc("GET /letters/{id}", s.getLetterHandler)
	mux.HandleFunc("PUT /letters/{id}", s.updateLetterHandler)
	mux.HandleFunc("GET /letters/{id}/export", s.exportLetterHandler)
	mux.HandleFunc("GET /letters/{id}/preview", s.previewLetterHandler)
	mux.HandleFunc("POST /letters/{id}/share", s.shareLetterHandler)
	mux.HandleFunc("GET /forms/{formID}/status", s.formStatusHandler)

	mux.HandleFunc("GET /templates", s.listTemplatesHandler)
	mux.HandleFunc("GET /templates/{id}", s.getTemplateHandler)
	mux.HandleFunc("GET /languages", s.listLanguagesHandler)

	mux.HandleFunc("POST /editor/sessions", s.openSessionHandler)
	mux.HandleFunc("GET /editor/sessions/{id}", s.getSessionHandler)
	mux.HandleFunc("PATCH /editor/sessions/{id}", s.updateSessionHandler)
	mux.HandleFunc("POST /editor/sessions/{id}/translate", s.translateSessionHandler)
	mux.HandleFunc("GET /editor/sessions/{id}/export", s.exportSessionHandler)

	return s.withRequestID(mux)
}

// Run serves s until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, s *Server, opts ...Option) error {
	cfg := Opts{Addr: DefaultAddr, ShutdownTimeout: DefaultShutdownTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("api.Run: LetterCraft API listening", "addr", ln.Addr().String())
	if cfg.Ready != nil {
		cfg.Ready(ln.Addr().String())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("API server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		slog.Info("api.Run: shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("API server shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}

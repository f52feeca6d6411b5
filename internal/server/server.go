// Package server exposes the conversion pipeline over HTTP and serves the
// uploaded inputs, the results and the viewer frontend.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/0mao0/minerpick/internal/parser"
)

type Config struct {
	Addr string

	InputDir  string
	OutputDir string
	StaticDir string

	DefaultProvider string

	// Shown by /api/config; the key is masked.
	MineruAPIURL string
	MineruAPIKey string

	Parsers *parser.Registry
	Logger  *slog.Logger
}

type Server struct {
	cfg    Config
	logger *slog.Logger

	httpServer *http.Server
}

func New(cfg Config) (*Server, error) {
	if cfg.Parsers == nil {
		return nil, errors.New("missing parser registry")
	}

	if cfg.InputDir == "" || cfg.OutputDir == "" {
		return nil, errors.New("missing input or output directory")
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{
		cfg:    cfg,
		logger: cfg.Logger,
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// Handler returns the router, for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr, "providers", s.cfg.Parsers.Names())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("server stopped")
	return nil
}

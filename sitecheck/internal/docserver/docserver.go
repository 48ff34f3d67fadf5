// Package docserver serves the directory holding the target document on a
// loopback port, so the page is loaded over http:// rather than file://.
package docserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is a static file server bound to 127.0.0.1 on a random port.
type Server struct {
	root   string
	file   string
	logger *slog.Logger

	mu   sync.Mutex
	srv  *http.Server
	base string
	done chan struct{}
}

// New creates a Server for the document at path. The document's directory
// becomes the document root.
func New(path string, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("docserver: resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("docserver: stat: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("docserver: %s is a directory", abs)
	}
	return &Server{
		root:   filepath.Dir(abs),
		file:   filepath.Base(abs),
		logger: logger,
	}, nil
}

// Handler returns the chi router serving the document root.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Handle("/*", http.FileServer(http.Dir(s.root)))
	return r
}

// Start listens on 127.0.0.1:0 and returns the URL of the document.
func (s *Server) Start() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil {
		return s.documentURL(), nil
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("docserver: listen: %w", err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	done := make(chan struct{})
	s.srv, s.done = srv, done
	s.base = "http://" + ln.Addr().String()

	// The goroutine only touches locals: Close may clear s.srv before it runs.
	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("docserver: serve", "error", err)
		}
	}()

	s.logger.Info("docserver: serving", "root", s.root, "url", s.base)
	return s.documentURL(), nil
}

// BaseURL returns the server origin, or "" before Start.
func (s *Server) BaseURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.base
}

func (s *Server) documentURL() string {
	return s.base + "/" + url.PathEscape(s.file)
}

// Close shuts the server down, waiting up to five seconds for in-flight
// requests. Safe to call before Start and more than once.
func (s *Server) Close() error {
	s.mu.Lock()
	srv, done := s.srv, s.done
	s.srv = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(ctx)
	<-done
	if err != nil {
		return fmt.Errorf("docserver: shutdown: %w", err)
	}
	return nil
}

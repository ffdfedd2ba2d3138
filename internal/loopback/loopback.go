// Package loopback runs the short-lived localhost HTTP listener that
// receives the OAuth redirect.
package loopback

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/dragon-display/dragonsync/internal/apperrors"
	"github.com/dragon-display/dragonsync/internal/logger"
)

const (
	// DefaultHost is the host put in redirect URLs.
	DefaultHost     = "localhost"
	shutdownTimeout = 5 * time.Second
)

// Handler receives the raw request URI ("/?state=...") of every redirect.
// A nil return means the callback was accepted.
type Handler func(rawURI string) error

type Server struct {
	ln          net.Listener
	srv         *http.Server
	redirectURL string

	mu      sync.RWMutex
	handler Handler

	once    sync.Once
	stopErr error
	done    chan struct{}
}

// Start binds addr and serves in the background. Port 0 picks an ephemeral
// port. Until Arm is called, every request gets a "still starting" page.
func Start(addr string) (*Server, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, apperrors.New(apperrors.KindListenerUnavailable, "", fmt.Errorf("invalid listen address %q: %w", addr, err))
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, apperrors.New(apperrors.KindListenerUnavailable, "", err)
	}
	if host == "" {
		host = DefaultHost
	}
	port := ln.Addr().(*net.TCPAddr).Port

	s := &Server{
		ln:          ln,
		redirectURL: fmt.Sprintf("http://%s/", net.JoinHostPort(host, strconv.Itoa(port))),
		done:        make(chan struct{}),
	}
	s.srv = &http.Server{
		Handler:           http.HandlerFunc(s.serveHTTP),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("OAuth redirect listener stopped", "error", err)
		}
	}()
	logger.Debug("OAuth redirect listener started", "addr", ln.Addr().String())
	return s, nil
}

// RedirectURL is the URL the provider must redirect to.
func (s *Server) RedirectURL() string {
	return s.redirectURL
}

// Port returns the bound TCP port.
func (s *Server) Port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

// Arm installs the callback handler.
func (s *Server) Arm(h Handler) {
	s.mu.Lock()
	s.handler = h
	s.mu.Unlock()
}

// Done is closed once Shutdown has run.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Shutdown stops the listener. Calls after the first are no-ops.
func (s *Server) Shutdown() error {
	s.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.stopErr = s.srv.Shutdown(ctx)
		close(s.done)
		logger.Debug("OAuth redirect listener stopped", "addr", s.ln.Addr().String())
	})
	return s.stopErr
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/favicon.ico" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	h := s.handler
	s.mu.RUnlock()
	if h == nil {
		writePage(w, http.StatusServiceUnavailable, startingPage)
		return
	}

	if err := h(r.URL.RequestURI()); err != nil {
		logger.Warn("Rejected OAuth callback", "error", apperrors.PublicMessage(err))
		writePage(w, http.StatusBadRequest, rejectedPage)
		return
	}
	writePage(w, http.StatusOK, successPage)
}

func writePage(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

const startingPage = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Dragon Display</title></head>
<body><p>Dragon Display is still starting. Refresh this page in a moment.</p></body></html>
`

const rejectedPage = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Dragon Display</title></head>
<body><p>The sign-in response was not understood. Return to Dragon Display and try connecting again.</p></body></html>
`

const successPage = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Dragon Display</title></head>
<body><p>Google Drive is connected. You can close this tab and return to Dragon Display.</p></body></html>
`

// Package server exposes the coordinator over HTTP: chat dispatch,
// configuration upsert, instance listing and health. It owns transport
// concerns only (routing, JSON codec, status mapping, rate limiting,
// graceful shutdown); all orchestration lives in the coordinator.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/hupe1980/agentfleet/coordinator"
	"github.com/hupe1980/agentfleet/logging"
)

// Options configures the HTTP server.
type Options struct {
	Addr               string
	RateLimitPerMinute int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
	Logger             logging.Logger
}

// Server is the HTTP front of AgentFleet.
type Server struct {
	opts         Options
	coord        *coordinator.Coordinator
	server       *http.Server
	rateLimiter  *RateLimiter
	logger       logging.Logger
	startTime    time.Time
	inFlightReqs sync.WaitGroup

	shutdownMu     sync.RWMutex
	isShuttingDown bool
}

// New creates a server around the given coordinator.
func New(coord *coordinator.Coordinator, optFns ...func(o *Options)) *Server {
	opts := Options{
		Addr:               ":8000",
		RateLimitPerMinute: 120,
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       120 * time.Second,
		ShutdownTimeout:    30 * time.Second,
		Logger:             logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Server{
		opts:        opts,
		coord:       coord,
		rateLimiter: NewRateLimiter(opts.RateLimitPerMinute),
		logger:      opts.Logger,
		startTime:   time.Now(),
	}
}

// Handler builds the route table. Exposed so tests can drive the server
// through httptest without binding a socket.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /agent/chat", s.withMiddleware(s.handleChat))
	mux.HandleFunc("PUT /agent/hierarchy", s.withMiddleware(s.handleHierarchy))
	mux.HandleFunc("GET /agent/instances/{tenant_id}", s.withMiddleware(s.handleInstances))
	return mux
}

// Start runs the server until ListenAndServe returns.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	s.logger.Info("server.start", "addr", s.opts.Addr)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	return nil
}

// Stop gracefully stops the server: refuse new work, wait for in-flight
// requests up to the shutdown timeout, then close.
func (s *Server) Stop() error {
	s.shutdownMu.Lock()
	s.isShuttingDown = true
	s.shutdownMu.Unlock()

	s.logger.Info("server.stop")

	done := make(chan struct{})
	go func() {
		s.inFlightReqs.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(s.opts.ShutdownTimeout):
		s.logger.Warn("server.stop.timeout")
	}

	s.rateLimiter.Stop()

	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// withMiddleware wraps a handler with shutdown refusal, in-flight tracking
// and per-client rate limiting.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.shutdownMu.RLock()
		shuttingDown := s.isShuttingDown
		s.shutdownMu.RUnlock()
		if shuttingDown {
			writeError(w, http.StatusServiceUnavailable, "server is shutting down")
			return
		}

		ip := clientIP(r)
		if !s.rateLimiter.Allow(ip) {
			w.Header().Set("Retry-After", strconv.Itoa(s.rateLimiter.RetryAfter(ip)))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		s.inFlightReqs.Add(1)
		defer s.inFlightReqs.Done()

		next(w, r)
	}
}

// clientIP extracts the caller address, honoring the usual proxy header.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

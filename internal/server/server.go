package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jonathan/resume-editor/internal/server/middleware"
	"github.com/jonathan/resume-editor/internal/server/ratelimit"
)

// RequestIDHeader is echoed into request logs so they line up with client logs.
const RequestIDHeader = "X-Request-ID"

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	store      Store
	suggester  Suggester
	limiter    *ratelimit.Limiter
	auth       *TokenService
	logger     *log.Logger
}

// Config holds server configuration
type Config struct {
	Port      int
	Store     Store
	Suggester Suggester         // defaults to StaticSuggester
	RateLimit *ratelimit.Config // nil disables rate limiting
	Auth      *TokenService     // nil serves without authentication
	Logger    *log.Logger       // defaults to a "[server] " stderr logger
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("server store is required")
	}

	s := &Server{
		store:     cfg.Store,
		suggester: cfg.Suggester,
		auth:      cfg.Auth,
		logger:    cfg.Logger,
	}
	if s.suggester == nil {
		s.suggester = StaticSuggester{}
	}
	if s.logger == nil {
		s.logger = log.New(os.Stderr, "[server] ", log.LstdFlags)
	}
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		s.limiter = ratelimit.NewLimiter(cfg.RateLimit)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second, // suggestions may wait on a model
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /resume/{kind}", s.handleList)
	mux.HandleFunc("POST /resume/{kind}", s.handleCreate)
	mux.HandleFunc("PUT /resume/{kind}/{position}", s.handleReplace)
	mux.HandleFunc("DELETE /resume/{kind}/{position}", s.handleDelete)

	// The positional route exists for clients whose contract requires an index;
	// the description in the body always wins over the stored one.
	mux.HandleFunc("POST /resume/{kind}/{position}/suggest-description", s.handleSuggest)
	mux.HandleFunc("POST /resume/{kind}/suggest-description", s.handleSuggest)

	var handler http.Handler = mux
	if s.auth != nil {
		handler = middleware.BearerAuth(s.auth.AsTokenValidator(), "/health")(mux)
	}
	return s.withRateLimit(s.withLogging(s.withCORS(handler)))
}

// Start begins listening for requests and blocks until SIGINT/SIGTERM.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.close()
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	s.logger.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.close()
	s.logger.Println("Server stopped")
	return nil
}

func (s *Server) close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	s.store.Close()
}

// withRateLimit rejects requests over the client's limit with 429
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := s.limiter.Allow(clientID(r), r.Method, r.URL.Path)
		if d.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetTime.Unix(), 10))
		}
		if !d.Allowed {
			retry := int(d.RetryAfter.Seconds())
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			s.logger.Printf("[rate-limit] %s %s from %s over %s limit (%d)", r.Method, r.URL.Path, clientID(r), d.Rule, d.Limit)
			s.errorResponse(w, http.StatusTooManyRequests, fmt.Sprintf("Rate limit exceeded. Retry in %ds.", retry))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientID identifies the caller by remote IP.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+RequestIDHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get(RequestIDHeader)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Printf("[%s] %s -> %d in %v (request %s)", r.Method, r.URL.Path, rec.status, time.Since(start), requestID)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// Package api exposes the assistant over a JSON HTTP API: chat turns,
// session lifecycle and knowledge base management.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloudwalk/assistant/internal/chat"
	"github.com/cloudwalk/assistant/internal/knowledge"
	"github.com/cloudwalk/assistant/internal/language"
	"github.com/cloudwalk/assistant/internal/log"
	"github.com/cloudwalk/assistant/internal/session"
)

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger      log.Logger
	Assistant   *chat.Assistant    // Required
	Sessions    *session.Manager   // Required
	Knowledge   *knowledge.Store   // Required
	Detector    *language.Detector // Required: session-creation greetings and language checks
	Pool        *pgxpool.Pool      // Optional: nil disables the database check in /ready
	CORSOrigins []string
	TrustProxy  bool    // Trust X-Real-IP/X-Forwarded-For (behind reverse proxy)
	RateRPS     float64 // Token refill rate per IP (0 = default 5/sec)
	RateBurst   int     // Rate limiter burst per IP (0 = default 10)
}

// Server is the JSON API HTTP server.
type Server struct {
	mux    *http.ServeMux
	logger log.Logger
}

// NewServer creates a server with all routes and middleware configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Assistant == nil {
		return nil, errors.New("assistant is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("session manager is required")
	}
	if cfg.Knowledge == nil {
		return nil, errors.New("knowledge store is required")
	}
	if cfg.Detector == nil {
		return nil, errors.New("language detector is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	ch := &chatHandler{
		assistant: cfg.Assistant,
		sessions:  cfg.Sessions,
		logger:    logger,
	}
	sh := &sessionHandler{sessions: cfg.Sessions, detector: cfg.Detector, logger: logger}
	kh := &knowledgeHandler{store: cfg.Knowledge, logger: logger}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/chat", ch.send)

	mux.HandleFunc("POST /api/v1/sessions", sh.create)
	mux.HandleFunc("GET /api/v1/sessions/{id}", sh.get)
	mux.HandleFunc("DELETE /api/v1/sessions/{id}", sh.end)

	mux.HandleFunc("POST /api/v1/knowledge", kh.add)
	mux.HandleFunc("GET /api/v1/knowledge/categories/{category}", kh.byCategory)
	mux.HandleFunc("GET /api/v1/knowledge/products/{product}", kh.productInfo)

	rps := cfg.RateRPS
	if rps <= 0 {
		rps = 5.0
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 10
	}
	rl := newRateLimiter(rps, burst)

	// Middleware stack, outermost first:
	//   Recovery -> RequestID -> Logging -> CORS -> RateLimit -> Routes
	// CORS sits before RateLimit so preflight OPTIONS still gets CORS
	// headers when a bucket is empty.
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, cfg.TrustProxy, logger)(handler)
	handler = corsMiddleware(cfg.CORSOrigins)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Health probes bypass the middleware stack.
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", health)
	topMux.Handle("GET /ready", readiness(cfg.Pool, logger))
	topMux.Handle("/", handler)

	return &Server{mux: topMux, logger: logger}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run serves HTTP on addr until ctx is cancelled, then shuts down
// gracefully with a 10 second drain.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}

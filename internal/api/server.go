// Package api exposes the chat pipeline over a small JSON HTTP API.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger   *slog.Logger
	Resolver Resolver      // Required
	ChatLog  ChatLog       // Optional: nil disables history recording and /history
	Quota    QuotaReader   // Optional: nil omits remaining_quota from responses
	Pool     *pgxpool.Pool // Optional: nil makes /ready always report unready
}

// Server is the JSON API HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates a new API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Resolver == nil {
		return nil, errors.New("resolver is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ch := &chatHandler{
		resolver: cfg.Resolver,
		chatLog:  cfg.ChatLog,
		quota:    cfg.Quota,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/chat", ch.send)
	if cfg.ChatLog != nil {
		mux.HandleFunc("GET /api/v1/history", ch.history)
	}

	// Middleware stack, outermost first: Recovery -> Logging -> Routes.
	var handler http.Handler = mux
	handler = loggingMiddleware(logger)(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Health probes stay outside the middleware stack so probe traffic
	// does not clutter request logs.
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", health)
	topMux.Handle("GET /ready", readiness(cfg.Pool))
	topMux.Handle("/", handler)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

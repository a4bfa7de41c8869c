package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// ServerConfig tunes the observability HTTP server.
type ServerConfig struct {
	Port          int
	EnableMetrics bool
}

// Server serves the health endpoints and, when enabled, the Prometheus
// metrics endpoint on a port separate from user traffic.
type Server struct {
	cfg  ServerConfig
	http *http.Server
}

// NewServer creates an observability server.
func NewServer(cfg ServerConfig) *Server {
	return &Server{cfg: cfg}
}

// Start listens and blocks until Shutdown is called.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", HealthHandler())
	mux.HandleFunc("/health/live", LivenessHandler())
	mux.HandleFunc("/health/ready", ReadinessHandler())
	if s.cfg.EnableMetrics {
		mux.Handle("/metrics", MetricsHandler())
	}

	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s.http.ListenAndServe()
}

// Shutdown stops the server, waiting for in-flight requests up to the
// context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

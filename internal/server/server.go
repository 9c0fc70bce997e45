// Package server exposes the summarizer over HTTP: a JSON API, the
// embedded single-page UI, and the health/metrics endpoints.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Config holds everything the HTTP server needs beyond the engine globals.
type Config struct {
	Addr string

	// BasicAuthUser/Pass enable edge authentication when both are set.
	BasicAuthUser string
	BasicAuthPass string

	// RateLimit is requests per second allowed on /api/; zero disables limiting.
	RateLimit float64
	RateBurst int
}

type Server struct {
	cfg     Config
	http    *http.Server
	limiter *rate.Limiter
}

func New(cfg Config) *Server {
	s := &Server{cfg: cfg}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = int(cfg.RateLimit) + 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/summarize", s.handleSummarize)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /metrics", handleMetrics)
	mux.Handle("/", staticHandler())

	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.withMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		// Summarization holds the connection through transcript polling
		// and the LLM call, so the write timeout has to cover both.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}
	return s
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", s.cfg.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	slog.Info("http server shutting down")
	return s.http.Shutdown(shutdownCtx)
}

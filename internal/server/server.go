// Package server implements the HTTP server that exposes the document RAG
// backend via a REST API: document upload, question answering, document
// listing, health and readiness probes, and Prometheus metrics.
// The server is started by the `docrag serve` CLI command.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/docuquest/docrag-go/internal/logging"
)

// defaultMaxUploadBytes caps upload request bodies at 50 MiB.
const defaultMaxUploadBytes = 50 << 20

// New constructs a Server from the provided pipeline, composer, ledger, and config.
// The ledger may be nil; GET /api/documents then returns an empty listing.
func New(ing ingester, ans answerer, docs documentLister, cfg *Config) (*Server, error) {
	if ing == nil {
		return nil, fmt.Errorf("server: ingester must not be nil")
	}
	if ans == nil {
		return nil, fmt.Errorf("server: answerer must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		// WriteTimeout must cover a full ingestion of a large document.
		cfg.WriteTimeout = 5 * time.Minute
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.New()
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = defaultRateBurst
	}
	if cfg.MaxUploadBytes == 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}

	var reg prometheus.Registerer = prometheus.DefaultRegisterer
	metricsHandler := promhttp.Handler()
	if cfg.Registry != nil {
		reg = cfg.Registry
		metricsHandler = promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})
	}

	s := &Server{
		ingester:  ing,
		answerer:  ans,
		documents: docs,
		cfg:       cfg,
		log:       cfg.Logger,
		pingers:   cfg.Pingers,
		metrics:   newServerMetrics(reg),
	}

	if cfg.APIKey == "" {
		s.log.Warn("server: DOCRAG_API_KEY not set — API authentication is disabled")
	}

	rl, stopRL := newRateLimiter(cfg.RateLimit, cfg.RateBurst, s.log)
	s.stopRL = stopRL

	// protect applies the middleware shared by all /api routes: rate limiting
	// then bearer auth. Upload additionally gets a body size cap.
	protect := func(name string, h http.HandlerFunc) http.Handler {
		return s.instrument(name, rl.middleware(authMiddleware(cfg.APIKey, h)))
	}

	mux := http.NewServeMux()
	mux.Handle("POST /api/upload", protect("upload",
		maxBytesHandler(cfg.MaxUploadBytes, s.handleUpload)))
	mux.Handle("POST /api/query", protect("query", s.handleQuery))
	mux.Handle("GET /api/documents", protect("documents", s.handleDocuments))
	mux.Handle("GET /api/health", s.instrument("health", http.HandlerFunc(s.handleHealth)))
	mux.Handle("GET /api/ready", s.instrument("ready", http.HandlerFunc(s.handleReady)))
	mux.Handle("GET /metrics", metricsHandler)
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("HEAD /{$}", s.handleRoot)

	handler := requestLogger(s.log, corsMiddleware(cfg.AllowedOrigins, mux))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s, nil
}

// Start begins listening and serving HTTP requests. It blocks until the
// context is cancelled, then performs a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("docrag server listening", slog.String("addr", "http://"+s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.stopRL()
		return fmt.Errorf("server: listen error: %w", err)
	case <-ctx.Done():
		s.stopRL()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: graceful shutdown failed: %w", err)
		}
		return nil
	}
}

// Handler returns the server's root HTTP handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// handleRoot handles GET and HEAD / with a minimal service banner so load
// balancer probes and curl users get a sane response.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method == http.MethodHead {
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{
		"service": "docrag",
		"status":  "ok",
	})
}

// handleHealth handles GET /api/health for liveness checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON encodes v as the response body with the given status code.
// Encode failures are logged, not surfaced — headers are already written.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("response encode error", slog.Any("error", err))
	}
}

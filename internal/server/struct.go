package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/docuquest/docrag-go/internal/answer"
	"github.com/docuquest/docrag-go/internal/ingestion"
	"github.com/docuquest/docrag-go/internal/store"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8080).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [logging.New] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// APIKey is the Bearer token required on all protected /api/* routes.
	// If empty, authentication is disabled (development mode).
	APIKey string
	// AllowedOrigins is the CORS origin allowlist. An entry of "*" allows any
	// origin. If empty, cross-origin requests are refused.
	AllowedOrigins []string
	// MaxUploadBytes caps the request body size on POST /api/upload.
	// Defaults to 50 MiB if zero.
	MaxUploadBytes int64
	// Registry receives the server's Prometheus metrics. If nil, the default
	// registry is used.
	Registry *prometheus.Registry
}

// ingester is the interface handleUpload calls to run the ingestion pipeline.
// *ingestion.Pipeline satisfies it; tests inject a fake.
type ingester interface {
	Ingest(ctx context.Context, filename string, data []byte) (*ingestion.Result, error)
}

// answerer is the interface handleQuery calls to answer a question.
// *answer.Composer satisfies it; tests inject a fake.
type answerer interface {
	Ask(ctx context.Context, question string, topK int) (*answer.Answer, error)
}

// documentLister is the interface handleDocuments calls to list the ledger.
// store.DocumentStore satisfies it; tests inject a fake.
type documentLister interface {
	List(ctx context.Context) ([]store.Document, error)
}

// Server is the HTTP server that exposes the document RAG backend.
type Server struct {
	// ingester runs the upload ingestion pipeline.
	ingester ingester
	// answerer handles question answering.
	answerer answerer
	// documents lists ingested documents. May be nil when no ledger is configured.
	documents documentLister
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// metrics holds the Prometheus instruments owned by this server.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// uploadChunk is one indexed chunk echoed in the upload response.
type uploadChunk struct {
	// ChunkIndex is the chunk's 0-based position within the document.
	ChunkIndex int `json:"chunk_index"`
	// Text is the chunk content as indexed (post-translation).
	Text string `json:"text"`
	// OriginalLanguage is the detected language of the source document.
	OriginalLanguage string `json:"original_language"`
	// Embedding is the vector stored for this chunk.
	Embedding []float32 `json:"embedding"`
}

// uploadResponse is the JSON response for POST /api/upload.
type uploadResponse struct {
	// Filename is the original upload filename.
	Filename string `json:"filename"`
	// TotalChunks is the number of chunks indexed for this document.
	TotalChunks int `json:"total_chunks"`
	// Language is the detected source language (ISO 639-1 or "unknown").
	Language string `json:"language"`
	// Status is always "indexed" on success.
	Status string `json:"status"`
	// Chunks echoes the indexed chunks in document order.
	Chunks []uploadChunk `json:"chunks"`
}

// queryRequest is the JSON body for POST /api/query.
type queryRequest struct {
	// Question is the user's natural language question.
	Question string `json:"question"`
	// TopK is the number of chunks to retrieve. Absent selects the default;
	// an explicit value must be positive.
	TopK *int `json:"top_k"`
}

// documentInfo is one entry in the GET /api/documents listing.
type documentInfo struct {
	// Filename is the original upload filename.
	Filename string `json:"filename"`
	// TotalChunks is the number of chunks indexed for this document.
	TotalChunks int `json:"total_chunks"`
	// OriginalLanguage is the detected source language.
	OriginalLanguage string `json:"original_language"`
	// IngestedAt is when the document was last (re-)ingested, RFC 3339.
	IngestedAt string `json:"ingested_at"`
}

// documentsResponse is the JSON response for GET /api/documents.
type documentsResponse struct {
	// Documents lists all recorded documents ordered by filename.
	Documents []documentInfo `json:"documents"`
}

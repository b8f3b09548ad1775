package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/docuquest/docrag-go/internal/chunker"
	"github.com/docuquest/docrag-go/internal/embedder"
	"github.com/docuquest/docrag-go/internal/extract"
	"github.com/docuquest/docrag-go/internal/ingestion"
	"github.com/docuquest/docrag-go/internal/language"
	"github.com/docuquest/docrag-go/internal/rag"
	"github.com/docuquest/docrag-go/internal/store"
)

// chatModeler is the minimal chat surface the CLI wiring needs; every
// provider backend satisfies it.
type chatModeler = language.ChatModel

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

// vectorBackend is the full surface the CLI needs from a vector store:
// search and upsert, readiness probing, and shutdown.
type vectorBackend interface {
	rag.VectorStore
	Ping(ctx context.Context) error
	Name() string
	Close() error
}

// buildVectorStore selects the vector store backend. VECTOR_STORE=memory
// picks the in-process store (useful for demos and smoke tests); anything
// else connects to Qdrant using the QDRANT_* environment variables and
// ensures the target collection exists with the embedding dimensionality
// of the configured backend.
func buildVectorStore(ctx context.Context, log *slog.Logger) (vectorBackend, error) {
	if os.Getenv("VECTOR_STORE") == "memory" {
		log.Info("using in-memory vector store", slog.String("reason", "VECTOR_STORE=memory"))
		return rag.NewMemoryStore(), nil
	}

	host := getEnvOrDefault("QDRANT_HOST", "localhost")
	port := getEnvInt("QDRANT_PORT", 6334)
	collection := getEnvOrDefault("QDRANT_COLLECTION", "docrag-docs")
	embBackend := getEnvOrDefault("EMBEDDING_PROVIDER", getEnvOrDefault("MODEL_PROVIDER", "ollama"))
	vectorSize := uint64(embedder.DefaultDimensions(embBackend)) //nolint:gosec // dimensions are bounded

	vs, err := rag.NewQdrantStore(ctx, &rag.QdrantConfig{
		Host:       host,
		Port:       port,
		Collection: collection,
		VectorSize: vectorSize,
		APIKey:     os.Getenv("QDRANT_API_KEY"),
		UseTLS:     os.Getenv("QDRANT_TLS") == "true",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant at %s:%d: %w", host, port, err)
	}
	log.Info("qdrant store ready",
		slog.String("host", host),
		slog.Int("port", port),
		slog.String("collection", collection),
	)
	return vs, nil
}

// buildNormalizer wires the language detector and, unless translation is
// disabled, an LLM-backed translator sharing the given chat model.
func buildNormalizer(chatModel chatModeler, log *slog.Logger) (*language.Normalizer, error) {
	detector := language.NewLinguaDetector()

	var translator language.Translator
	if os.Getenv("TRANSLATION_DISABLED") == "true" {
		log.Info("translation disabled via TRANSLATION_DISABLED")
	} else {
		tr, err := language.NewLLMTranslator(chatModel, getEnvInt("TRANSLATION_MAX_TOKENS", 0))
		if err != nil {
			return nil, fmt.Errorf("failed to initialise translator: %w", err)
		}
		translator = tr
	}

	norm, err := language.NewNormalizer(detector, translator)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise language normalizer: %w", err)
	}
	return norm, nil
}

// buildLedger opens the SQLite document ledger. DOCRAG_DOCUMENTS_DB overrides
// the default path (~/.docrag/documents.db); set it to "disabled" to run
// without a ledger. Failures degrade to no ledger rather than aborting,
// because the vector store remains fully usable without one.
func buildLedger(log *slog.Logger) (store.DocumentStore, func()) {
	dbPath := os.Getenv("DOCRAG_DOCUMENTS_DB")
	if dbPath == "disabled" {
		log.Info("document ledger disabled via DOCRAG_DOCUMENTS_DB=disabled")
		return nil, func() {}
	}
	if dbPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			log.Warn("ledger: could not resolve default DB path, disabling", slog.Any("error", err))
			return nil, func() {}
		}
		dbPath = p
	}
	ledger, err := store.Open(dbPath)
	if err != nil {
		log.Warn("ledger: failed to open store, disabling", slog.Any("error", err))
		return nil, func() {}
	}
	log.Info("document ledger opened", slog.String("path", dbPath))
	return ledger, func() { _ = ledger.Close() }
}

// buildEmbedder validates the embedding configuration and constructs the
// batched embedder from the environment.
func buildEmbedder(log *slog.Logger) (rag.Embedder, error) {
	if err := embedder.Validate(log); err != nil {
		return nil, err
	}
	emb, err := embedder.NewFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to initialise embedder: %w", err)
	}
	log.Info("embedder initialised",
		slog.String("provider", getEnvOrDefault("EMBEDDING_PROVIDER", getEnvOrDefault("MODEL_PROVIDER", "ollama"))),
	)
	return emb, nil
}

// buildPipeline assembles the full ingestion pipeline: extraction, language
// normalisation, chunking, batched embedding, vector upsert, and the
// document ledger.
func buildPipeline(chatModel chatModeler, emb rag.Embedder, vs rag.VectorStore, ledger store.DocumentStore, log *slog.Logger) (*ingestion.Pipeline, error) {
	norm, err := buildNormalizer(chatModel, log)
	if err != nil {
		return nil, err
	}

	splitter, err := chunker.New(chunker.Config{
		Size:    getEnvInt("CHUNK_SIZE", 0),
		Overlap: getEnvInt("CHUNK_OVERLAP", 0),
	})
	if err != nil {
		return nil, fmt.Errorf("invalid chunking configuration: %w", err)
	}

	pipeline, err := ingestion.NewPipeline(extract.NewRegistry(), norm, splitter, emb, vs, ledger)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}
	return pipeline, nil
}

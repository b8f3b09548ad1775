// Package rag defines the interfaces for the retrieval-augmented generation
// core: vector storage, chunk retrieval, and embedding. Concrete
// implementations (Qdrant, in-memory) satisfy these interfaces so the
// ingestion and answer layers never depend on a specific backend.
package rag

import (
	"context"
	"fmt"
)

// Record is one stored chunk: the unit of embedding, persistence, and
// retrieval. The triple (ID, metadata fields, Text) must round-trip through
// Upsert and Search unchanged.
type Record struct {
	// ID is the stable record key, "{source}_chunk_{index}". Re-upserting the
	// same ID overwrites the prior record.
	ID string

	// Text is the chunk text as it was stored.
	Text string

	// Source is the filename the chunk was extracted from.
	Source string

	// ChunkIndex is the dense 0-based position of the chunk within its source.
	// A retrieved record with missing index metadata reports -1.
	ChunkIndex int

	// Language is the ISO 639-1 code detected for the source document before
	// normalization, or "unknown".
	Language string

	// Score is the similarity score assigned during retrieval.
	// Zero value means the score was not computed.
	Score float32
}

// RecordID returns the canonical record key for a chunk of the given source.
func RecordID(source string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", source, index)
}

// VectorStore is the interface for persisting and searching chunk embeddings.
// Implementations must be safe to call from multiple goroutines; concurrent
// reads and writes never observe a half-written record.
type VectorStore interface {
	// Upsert stores or updates a batch of records with their pre-computed
	// embeddings. embeddings must be parallel to records: embeddings[i] is the
	// vector for records[i]. An existing record with the same ID is replaced.
	Upsert(ctx context.Context, records []Record, embeddings [][]float32) error

	// Search returns the top-k nearest records for the query embedding,
	// ordered by descending similarity. Fewer than topK records are returned
	// when the corpus is smaller than topK.
	Search(ctx context.Context, queryEmbedding []float32, topK int) ([]Record, error)

	// Delete removes records by their IDs.
	Delete(ctx context.Context, ids []string) error

	// Close releases any resources held by the store.
	Close() error
}

// Embedder is the interface for converting text into dense vector embeddings.
// Implementations must be safe to call from multiple goroutines.
type Embedder interface {
	// Embed converts a batch of texts into their corresponding embeddings.
	// The returned slice is parallel to the input slice.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Retriever is the high-level interface used by the answer composer to fetch
// relevant chunks for a question. It combines embedding and vector search.
type Retriever interface {
	// Retrieve returns the top-k most relevant records for the given query.
	Retrieve(ctx context.Context, query string, topK int) ([]Record, error)
}

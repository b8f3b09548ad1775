package embedder

import (
	"context"
	"fmt"

	"github.com/docuquest/docrag-go/internal/rag"
)

// defaultBatchSize is the number of texts sent per embedding request.
const defaultBatchSize = 8

// BatchEmbedder wraps another rag.Embedder and partitions large inputs into
// fixed-size request batches, preserving input order across batches. A single
// failing batch fails the whole call.
type BatchEmbedder struct {
	inner     rag.Embedder
	batchSize int
}

// NewBatchEmbedder wraps inner with the default batch size.
func NewBatchEmbedder(inner rag.Embedder) *BatchEmbedder {
	return NewBatchEmbedderSize(inner, defaultBatchSize)
}

// NewBatchEmbedderSize wraps inner with an explicit batch size.
// A size less than 1 falls back to the default.
func NewBatchEmbedderSize(inner rag.Embedder, size int) *BatchEmbedder {
	if size < 1 {
		size = defaultBatchSize
	}
	return &BatchEmbedder{inner: inner, batchSize: size}
}

// Embed converts texts into embeddings, issuing one request per batch of at
// most batchSize texts. An empty input returns an empty result without
// contacting the underlying embedder.
func (b *BatchEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += b.batchSize {
		end := start + b.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := b.inner.Embed(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embedder: batch %d-%d: %w", start, end, err)
		}
		if len(vectors) != end-start {
			return nil, fmt.Errorf("embedder: batch %d-%d: expected %d embeddings, got %d", start, end, end-start, len(vectors))
		}
		out = append(out, vectors...)
	}
	return out, nil
}

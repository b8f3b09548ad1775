// Package ingestion implements the document ingestion pipeline.
// It extracts text from uploaded files, normalizes the language to English,
// chunks the content, embeds each chunk, and upserts the results into the
// vector store. The pipeline is invoked by the upload handler and the
// `docrag ingest` CLI command.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/docuquest/docrag-go/internal/chunker"
	"github.com/docuquest/docrag-go/internal/language"
	"github.com/docuquest/docrag-go/internal/logging"
	"github.com/docuquest/docrag-go/internal/rag"
	"github.com/docuquest/docrag-go/internal/store"
)

// ErrEmptyFilename is returned when the upload carries no filename.
var ErrEmptyFilename = errors.New("ingestion: filename must not be empty")

// ErrNoText is returned when extraction succeeds but yields no usable text.
var ErrNoText = errors.New("ingestion: no text could be extracted")

// Extractor converts raw file bytes into plain text, dispatching on the
// filename's extension.
type Extractor interface {
	Extract(filename string, data []byte) (string, error)
}

// Chunk is one indexed segment of a document as echoed back to the caller.
type Chunk struct {
	// ChunkIndex is the dense 0-based position of this chunk in the document.
	ChunkIndex int
	// Text is the chunk content as indexed (post-translation).
	Text string
	// OriginalLanguage is the detected language of the source document.
	OriginalLanguage string
	// Embedding is the vector stored for this chunk.
	Embedding []float32
}

// Result summarizes a completed ingestion run for one document.
type Result struct {
	// Filename is the original upload filename.
	Filename string
	// Format is the document kind inferred from the filename (pdf, word, ...).
	Format string
	// Language is the detected source language (ISO 639-1 or "unknown").
	Language string
	// Outcome records how the language normalization step resolved.
	Outcome language.Outcome
	// TotalChunks is the number of chunks indexed for this document.
	TotalChunks int
	// Chunks echoes the indexed chunks in document order.
	Chunks []Chunk
}

// Pipeline orchestrates the extract → normalize → chunk → embed → upsert
// flow for uploaded documents. It is safe for concurrent use; ingestions of
// the same filename are serialized so a re-upload cannot interleave with an
// in-flight run for the same document.
type Pipeline struct {
	// extractor converts file bytes into plain text.
	extractor Extractor

	// normalizer detects the source language and translates to English.
	normalizer *language.Normalizer

	// splitter produces overlapping text chunks.
	splitter *chunker.Chunker

	// embedder converts text chunks into dense vector embeddings.
	embedder rag.Embedder

	// store persists the embedded chunks.
	store rag.VectorStore

	// ledger records ingested documents for listing. Optional; a nil ledger
	// disables recording, and ledger failures never fail an ingestion.
	ledger store.DocumentStore

	// mu guards locks.
	mu sync.Mutex
	// locks holds one mutex per filename currently or previously ingested.
	locks map[string]*sync.Mutex
}

// NewPipeline constructs a Pipeline from the provided dependencies.
// The ledger may be nil.
func NewPipeline(extractor Extractor, normalizer *language.Normalizer, splitter *chunker.Chunker, embedder rag.Embedder, vs rag.VectorStore, ledger store.DocumentStore) (*Pipeline, error) {
	if extractor == nil {
		return nil, fmt.Errorf("ingestion: extractor must not be nil")
	}
	if normalizer == nil {
		return nil, fmt.Errorf("ingestion: normalizer must not be nil")
	}
	if splitter == nil {
		return nil, fmt.Errorf("ingestion: splitter must not be nil")
	}
	if embedder == nil {
		return nil, fmt.Errorf("ingestion: embedder must not be nil")
	}
	if vs == nil {
		return nil, fmt.Errorf("ingestion: store must not be nil")
	}
	return &Pipeline{
		extractor:  extractor,
		normalizer: normalizer,
		splitter:   splitter,
		embedder:   embedder,
		store:      vs,
		ledger:     ledger,
		locks:      make(map[string]*sync.Mutex),
	}, nil
}

// Ingest runs the full pipeline for a single uploaded file and returns a
// summary of what was indexed. Re-ingesting a filename overwrites the chunks
// from the previous upload of that file.
func (p *Pipeline) Ingest(ctx context.Context, filename string, data []byte) (*Result, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, ErrEmptyFilename
	}

	unlock := p.lock(filename)
	defer unlock()

	log := logging.FromContext(ctx)
	meta := InferMetadata(filename)

	text, err := p.extractor.Extract(filename, data)
	if err != nil {
		return nil, fmt.Errorf("ingestion: extract %s: %w", filename, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoText, filename)
	}

	norm := p.normalizer.Normalize(ctx, text)
	log.Info("ingestion: language normalized",
		slog.String("filename", filename),
		slog.String("title", meta.Title),
		slog.String("language", norm.Language),
		slog.String("outcome", norm.Outcome.String()),
	)

	chunks := p.splitter.Split(norm.Text)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoText, filename)
	}

	embeddings, err := p.embedder.Embed(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("ingestion: embedding failed for %s: %w", filename, err)
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("ingestion: %s: expected %d embeddings, got %d", filename, len(chunks), len(embeddings))
	}

	records := make([]rag.Record, 0, len(chunks))
	for i, chunk := range chunks {
		records = append(records, rag.Record{
			ID:         rag.RecordID(filename, i),
			Text:       chunk,
			Source:     filename,
			ChunkIndex: i,
			Language:   norm.Language,
		})
	}

	if err := p.store.Upsert(ctx, records, embeddings); err != nil {
		return nil, fmt.Errorf("ingestion: upsert failed for %s: %w", filename, err)
	}

	if p.ledger != nil {
		doc := store.Document{
			Filename:         filename,
			TotalChunks:      len(chunks),
			OriginalLanguage: norm.Language,
		}
		if err := p.ledger.Record(ctx, doc); err != nil {
			// The chunks are already searchable; a ledger miss only affects listing.
			log.Warn("ingestion: ledger record failed",
				slog.String("filename", filename),
				slog.String("error", err.Error()),
			)
		}
	}

	log.Info("ingestion: document indexed",
		slog.String("filename", filename),
		slog.Int("chunks", len(chunks)),
	)

	echoed := make([]Chunk, 0, len(chunks))
	for i, chunk := range chunks {
		echoed = append(echoed, Chunk{
			ChunkIndex:       i,
			Text:             chunk,
			OriginalLanguage: norm.Language,
			Embedding:        embeddings[i],
		})
	}

	return &Result{
		Filename:    filename,
		Format:      meta.Format,
		Language:    norm.Language,
		Outcome:     norm.Outcome,
		TotalChunks: len(chunks),
		Chunks:      echoed,
	}, nil
}

// lock acquires the per-filename mutex, creating it on first use, and returns
// the corresponding unlock function.
func (p *Pipeline) lock(filename string) func() {
	p.mu.Lock()
	m, ok := p.locks[filename]
	if !ok {
		m = &sync.Mutex{}
		p.locks[filename] = m
	}
	p.mu.Unlock()

	m.Lock()
	return m.Unlock
}

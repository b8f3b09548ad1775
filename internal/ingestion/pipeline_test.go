package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/docuquest/docrag-go/internal/chunker"
	"github.com/docuquest/docrag-go/internal/extract"
	"github.com/docuquest/docrag-go/internal/language"
	"github.com/docuquest/docrag-go/internal/rag"
	"github.com/docuquest/docrag-go/internal/store"
)

type fakeDetector struct {
	lang string
}

func (f *fakeDetector) Detect(string) string { return f.lang }

type fakeTranslator struct {
	calls int
}

func (f *fakeTranslator) Translate(_ context.Context, text string) (string, error) {
	f.calls++
	return "translated: " + text, nil
}

type fakeIngestEmbedder struct {
	calls [][]string
	err   error
	short bool
}

func (f *fakeIngestEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls = append(f.calls, texts)
	if f.err != nil {
		return nil, f.err
	}
	n := len(texts)
	if f.short && n > 0 {
		n--
	}
	out := make([][]float32, n)
	for i := range out {
		out[i] = []float32{float32(i)}
	}
	return out, nil
}

type fakeVectorStore struct {
	records map[string]rag.Record
	upserts int
	err     error
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{records: make(map[string]rag.Record)}
}

func (f *fakeVectorStore) Upsert(_ context.Context, records []rag.Record, embeddings [][]float32) error {
	f.upserts++
	if f.err != nil {
		return f.err
	}
	if len(records) != len(embeddings) {
		return fmt.Errorf("length mismatch: %d records, %d embeddings", len(records), len(embeddings))
	}
	for _, r := range records {
		f.records[r.ID] = r
	}
	return nil
}

func (f *fakeVectorStore) Search(context.Context, []float32, int) ([]rag.Record, error) {
	return nil, nil
}

func (f *fakeVectorStore) Delete(context.Context, []string) error { return nil }
func (f *fakeVectorStore) Close() error                           { return nil }

type fakeLedger struct {
	docs map[string]store.Document
	err  error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{docs: make(map[string]store.Document)}
}

func (f *fakeLedger) Record(_ context.Context, doc store.Document) error {
	if f.err != nil {
		return f.err
	}
	f.docs[doc.Filename] = doc
	return nil
}

func (f *fakeLedger) List(context.Context) ([]store.Document, error) { return nil, nil }
func (f *fakeLedger) Close() error                                   { return nil }

// newTestPipeline wires a pipeline with the real extractor registry and
// chunker defaults around the given fakes.
func newTestPipeline(t *testing.T, detector language.Detector, translator language.Translator, emb rag.Embedder, vs rag.VectorStore, ledger store.DocumentStore) *Pipeline {
	t.Helper()
	norm, err := language.NewNormalizer(detector, translator)
	if err != nil {
		t.Fatalf("NewNormalizer() error = %v", err)
	}
	split, err := chunker.New(chunker.Config{})
	if err != nil {
		t.Fatalf("chunker.New() error = %v", err)
	}
	p, err := NewPipeline(extract.NewRegistry(), norm, split, emb, vs, ledger)
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	return p
}

func TestIngest_EnglishDocument(t *testing.T) {
	t.Parallel()

	translator := &fakeTranslator{}
	emb := &fakeIngestEmbedder{}
	vs := newFakeVectorStore()
	ledger := newFakeLedger()
	p := newTestPipeline(t, &fakeDetector{lang: "en"}, translator, emb, vs, ledger)

	data := []byte(strings.Repeat("a", 2500))
	res, err := p.Ingest(context.Background(), "notes.txt", data)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if res.TotalChunks != 3 {
		t.Errorf("expected 3 chunks for 2500 chars, got %d", res.TotalChunks)
	}
	if res.Language != "en" {
		t.Errorf("expected language en, got %s", res.Language)
	}
	if res.Outcome != language.OutcomePassThrough {
		t.Errorf("expected pass-through outcome, got %s", res.Outcome)
	}
	if translator.calls != 0 {
		t.Errorf("expected no translation for English text, got %d calls", translator.calls)
	}
	if len(res.Chunks) != 3 {
		t.Fatalf("expected 3 echoed chunks, got %d", len(res.Chunks))
	}
	for i, c := range res.Chunks {
		if c.ChunkIndex != i {
			t.Errorf("chunk %d has index %d", i, c.ChunkIndex)
		}
		if c.OriginalLanguage != "en" {
			t.Errorf("chunk %d language = %q", i, c.OriginalLanguage)
		}
		if len(c.Embedding) == 0 {
			t.Errorf("chunk %d has no embedding", i)
		}
	}
	if vs.upserts != 1 {
		t.Fatalf("expected 1 upsert, got %d", vs.upserts)
	}
	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("notes.txt_chunk_%d", i)
		rec, ok := vs.records[id]
		if !ok {
			t.Fatalf("missing record %s", id)
		}
		if rec.Source != "notes.txt" || rec.ChunkIndex != i {
			t.Errorf("record %s has wrong metadata: %+v", id, rec)
		}
	}
	doc, ok := ledger.docs["notes.txt"]
	if !ok {
		t.Fatal("expected ledger entry for notes.txt")
	}
	if doc.TotalChunks != 3 || doc.OriginalLanguage != "en" {
		t.Errorf("ledger entry wrong: %+v", doc)
	}
}

func TestIngest_TranslatesForeignDocument(t *testing.T) {
	t.Parallel()

	translator := &fakeTranslator{}
	emb := &fakeIngestEmbedder{}
	vs := newFakeVectorStore()
	p := newTestPipeline(t, &fakeDetector{lang: "de"}, translator, emb, vs, newFakeLedger())

	res, err := p.Ingest(context.Background(), "bericht.md", []byte("Hallo Welt"))
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if translator.calls != 1 {
		t.Errorf("expected 1 translation call, got %d", translator.calls)
	}
	if res.Language != "de" {
		t.Errorf("expected original language de, got %s", res.Language)
	}
	if res.Outcome != language.OutcomeTranslated {
		t.Errorf("expected translated outcome, got %s", res.Outcome)
	}
	rec := vs.records["bericht.md_chunk_0"]
	if !strings.HasPrefix(rec.Text, "translated:") {
		t.Errorf("expected translated text to be indexed, got %q", rec.Text)
	}
	if rec.Language != "de" {
		t.Errorf("expected record to keep original language, got %q", rec.Language)
	}
}

func TestIngest_EmptyFilename(t *testing.T) {
	t.Parallel()

	emb := &fakeIngestEmbedder{}
	vs := newFakeVectorStore()
	p := newTestPipeline(t, &fakeDetector{lang: "en"}, nil, emb, vs, nil)

	if _, err := p.Ingest(context.Background(), "  ", []byte("hello")); !errors.Is(err, ErrEmptyFilename) {
		t.Fatalf("expected ErrEmptyFilename, got %v", err)
	}
	if len(emb.calls) != 0 || vs.upserts != 0 {
		t.Error("expected no collaborator calls for empty filename")
	}
}

func TestIngest_UnsupportedType(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t, &fakeDetector{lang: "en"}, nil, &fakeIngestEmbedder{}, newFakeVectorStore(), nil)

	_, err := p.Ingest(context.Background(), "image.png", []byte{0x89, 0x50})
	if !errors.Is(err, extract.ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestIngest_NoText(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t, &fakeDetector{lang: "en"}, nil, &fakeIngestEmbedder{}, newFakeVectorStore(), nil)

	_, err := p.Ingest(context.Background(), "blank.txt", []byte("   \n\t  "))
	if !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
}

func TestIngest_EmbedFailureSkipsUpsert(t *testing.T) {
	t.Parallel()

	emb := &fakeIngestEmbedder{err: errors.New("backend down")}
	vs := newFakeVectorStore()
	ledger := newFakeLedger()
	p := newTestPipeline(t, &fakeDetector{lang: "en"}, nil, emb, vs, ledger)

	if _, err := p.Ingest(context.Background(), "doc.txt", []byte("hello world")); err == nil {
		t.Fatal("expected error when embedding fails")
	}
	if vs.upserts != 0 {
		t.Errorf("expected no upsert after embed failure, got %d", vs.upserts)
	}
	if len(ledger.docs) != 0 {
		t.Error("expected no ledger entry after embed failure")
	}
}

func TestIngest_EmbeddingCountMismatch(t *testing.T) {
	t.Parallel()

	emb := &fakeIngestEmbedder{short: true}
	vs := newFakeVectorStore()
	p := newTestPipeline(t, &fakeDetector{lang: "en"}, nil, emb, vs, nil)

	if _, err := p.Ingest(context.Background(), "doc.txt", []byte("hello world")); err == nil {
		t.Fatal("expected error on embedding count mismatch")
	}
	if vs.upserts != 0 {
		t.Errorf("expected no upsert on count mismatch, got %d", vs.upserts)
	}
}

func TestIngest_LedgerFailureIsAbsorbed(t *testing.T) {
	t.Parallel()

	vs := newFakeVectorStore()
	ledger := newFakeLedger()
	ledger.err = errors.New("disk full")
	p := newTestPipeline(t, &fakeDetector{lang: "en"}, nil, &fakeIngestEmbedder{}, vs, ledger)

	res, err := p.Ingest(context.Background(), "doc.txt", []byte("hello world"))
	if err != nil {
		t.Fatalf("expected ledger failure to be absorbed, got %v", err)
	}
	if res.TotalChunks != 1 {
		t.Errorf("expected 1 chunk, got %d", res.TotalChunks)
	}
	if vs.upserts != 1 {
		t.Errorf("expected chunks to be indexed despite ledger failure, got %d upserts", vs.upserts)
	}
}

func TestIngest_ReingestOverwrites(t *testing.T) {
	t.Parallel()

	vs := newFakeVectorStore()
	ledger := newFakeLedger()
	p := newTestPipeline(t, &fakeDetector{lang: "en"}, nil, &fakeIngestEmbedder{}, vs, ledger)

	ctx := context.Background()
	if _, err := p.Ingest(ctx, "doc.txt", []byte("first version")); err != nil {
		t.Fatalf("first Ingest() error = %v", err)
	}
	if _, err := p.Ingest(ctx, "doc.txt", []byte("second version")); err != nil {
		t.Fatalf("second Ingest() error = %v", err)
	}

	if len(vs.records) != 1 {
		t.Fatalf("expected 1 record after re-ingest, got %d", len(vs.records))
	}
	if got := vs.records["doc.txt_chunk_0"].Text; got != "second version" {
		t.Errorf("expected re-ingest to overwrite, got %q", got)
	}
	if len(ledger.docs) != 1 {
		t.Errorf("expected single ledger entry, got %d", len(ledger.docs))
	}
}

package rag

import (
	"context"
	"testing"
)

func TestMemoryStore_SearchRanksByCosine(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	records := []Record{
		{ID: "a_chunk_0", Text: "alpha", Source: "a.txt", ChunkIndex: 0},
		{ID: "b_chunk_0", Text: "beta", Source: "b.txt", ChunkIndex: 0},
		{ID: "c_chunk_0", Text: "gamma", Source: "c.txt", ChunkIndex: 0},
	}
	embeddings := [][]float32{
		{1, 0},        // identical direction to the query
		{0.7, 0.7},    // 45 degrees off
		{0, 1},        // orthogonal
	}
	if err := s.Upsert(context.Background(), records, embeddings); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := s.Search(context.Background(), []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Search returned %d records, want 2", len(got))
	}
	if got[0].ID != "a_chunk_0" || got[1].ID != "b_chunk_0" {
		t.Errorf("ranking = [%s, %s], want [a_chunk_0, b_chunk_0]", got[0].ID, got[1].ID)
	}
	if got[0].Score <= got[1].Score {
		t.Errorf("scores not descending: %v then %v", got[0].Score, got[1].Score)
	}
	if got[0].Text != "alpha" || got[0].Source != "a.txt" {
		t.Errorf("record payload not preserved: %+v", got[0])
	}
}

func TestMemoryStore_SearchFewerThanTopK(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	err := s.Upsert(context.Background(),
		[]Record{{ID: "only", Text: "one"}},
		[][]float32{{1, 1}},
	)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := s.Search(context.Background(), []float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Search returned %d records, want 1", len(got))
	}
}

func TestMemoryStore_UpsertReplacesByID(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	first := []Record{{ID: "doc_chunk_0", Text: "first version"}}
	if err := s.Upsert(ctx, first, [][]float32{{1, 0}}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	second := []Record{{ID: "doc_chunk_0", Text: "second version"}}
	if err := s.Upsert(ctx, second, [][]float32{{0, 1}}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if s.Len() != 1 {
		t.Fatalf("Len = %d after re-upsert, want 1", s.Len())
	}
	got, err := s.Search(ctx, []float32{0, 1}, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got[0].Text != "second version" {
		t.Errorf("Text = %q, want the replacing record", got[0].Text)
	}
}

func TestMemoryStore_UpsertLengthMismatch(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	err := s.Upsert(context.Background(), []Record{{ID: "x"}}, nil)
	if err == nil {
		t.Fatal("Upsert accepted mismatched records/embeddings")
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()
	err := s.Upsert(ctx,
		[]Record{{ID: "keep"}, {ID: "drop"}},
		[][]float32{{1, 0}, {0, 1}},
	)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if err := s.Delete(ctx, []string{"drop", "never-existed"}); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d after delete, want 1", s.Len())
	}
	got, err := s.Search(ctx, []float32{0, 1}, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].ID != "keep" {
		t.Errorf("Search after delete = %+v, want only the kept record", got)
	}
}

func TestCosine_ZeroVector(t *testing.T) {
	t.Parallel()

	if got := cosine([]float32{0, 0}, []float32{1, 1}); got != 0 {
		t.Errorf("cosine with zero vector = %v, want 0", got)
	}
}

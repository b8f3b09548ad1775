package rag

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryStore is a VectorStore backed by process memory using brute-force
// cosine similarity. It is the backend selected with VECTOR_STORE=memory and
// the store used throughout the test suite. Safe for concurrent use.
type MemoryStore struct {
	// mu protects records and vectors.
	mu sync.RWMutex
	// order holds record IDs in insertion order so Search is deterministic
	// for equal scores.
	order []string
	// records maps record ID to the stored record.
	records map[string]Record
	// vectors maps record ID to the stored embedding.
	vectors map[string][]float32
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
		vectors: make(map[string][]float32),
	}
}

// Upsert stores each record keyed by its ID, replacing any prior record with
// the same ID. embeddings must be parallel to records.
func (s *MemoryStore) Upsert(_ context.Context, records []Record, embeddings [][]float32) error {
	if len(records) != len(embeddings) {
		return errLengthMismatch(len(records), len(embeddings))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rec := range records {
		if _, exists := s.records[rec.ID]; !exists {
			s.order = append(s.order, rec.ID)
		}
		s.records[rec.ID] = rec
		v := make([]float32, len(embeddings[i]))
		copy(v, embeddings[i])
		s.vectors[rec.ID] = v
	}
	return nil
}

// Search scores every stored vector against the query by cosine similarity
// and returns the topK best records in descending score order.
func (s *MemoryStore) Search(_ context.Context, queryEmbedding []float32, topK int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		rec   Record
		score float32
		pos   int
	}

	all := make([]scored, 0, len(s.order))
	for pos, id := range s.order {
		rec := s.records[id]
		rec.Score = cosine(s.vectors[id], queryEmbedding)
		all = append(all, scored{rec: rec, score: rec.Score, pos: pos})
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].pos < all[j].pos
	})

	if topK > len(all) {
		topK = len(all)
	}
	out := make([]Record, 0, topK)
	for i := 0; i < topK; i++ {
		out = append(out, all[i].rec)
	}
	return out, nil
}

// Delete removes records by ID. Unknown IDs are ignored.
func (s *MemoryStore) Delete(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if _, ok := s.records[id]; !ok {
			continue
		}
		delete(s.records, id)
		delete(s.vectors, id)
		for i, o := range s.order {
			if o == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	return nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Ping always succeeds: the store lives in-process.
func (s *MemoryStore) Ping(_ context.Context) error { return nil }

// Name returns the dependency label used in readiness responses.
func (s *MemoryStore) Name() string { return "memory" }

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

// cosine returns the cosine similarity of a and b, 0 when either is zero.
func cosine(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

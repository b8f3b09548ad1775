package rag

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// Payload keys used for the stored record schema. The record key itself is
// kept in the payload because Qdrant point IDs must be UUIDs; the point UUID
// is derived deterministically from the record key so re-ingestion of the
// same source overwrites rather than duplicates.
const (
	payloadRecordID   = "record_id"
	payloadDocument   = "document"
	payloadSource     = "source"
	payloadChunkIndex = "chunk_index"
	payloadLanguage   = "original_language"
)

// recordNamespace is the fixed UUIDv5 namespace for deriving point IDs from
// record keys. Changing it would orphan every previously stored point.
var recordNamespace = uuid.MustParse("8f0c2a1e-5d8b-4c39-9f52-4f4be4a4d1a7")

// QdrantConfig holds connection parameters for a Qdrant vector store instance.
type QdrantConfig struct {
	// Host is the Qdrant server hostname (default: localhost).
	Host string

	// Port is the Qdrant gRPC port (default: 6334).
	Port int

	// Collection is the Qdrant collection name to use.
	Collection string

	// VectorSize is the dimensionality of the embeddings stored in this collection.
	VectorSize uint64

	// APIKey is the optional Qdrant API key for authenticated clusters.
	APIKey string

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool
}

// QdrantStore implements VectorStore backed by a Qdrant instance.
type QdrantStore struct {
	// client is the underlying Qdrant gRPC client.
	client *qdrant.Client

	// cfg holds the resolved configuration for this store.
	cfg *QdrantConfig
}

// NewQdrantStore creates a new QdrantStore, ensuring the target collection
// exists (creating it if necessary), and returns a ready-to-use VectorStore.
func NewQdrantStore(ctx context.Context, cfg *QdrantConfig) (*QdrantStore, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: failed to create client: %w", err)
	}

	store := &QdrantStore{client: client, cfg: cfg}
	if err := store.ensureCollection(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// ensureCollection creates the Qdrant collection if it does not already exist.
func (s *QdrantStore) ensureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.cfg.Collection)
	if err != nil {
		return fmt.Errorf("qdrant: failed to check collection existence: %w", err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.cfg.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.cfg.VectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant: failed to create collection %q: %w", s.cfg.Collection, err)
	}

	return nil
}

// pointID derives the deterministic Qdrant point UUID for a record key.
func pointID(recordID string) string {
	return uuid.NewSHA1(recordNamespace, []byte(recordID)).String()
}

// Upsert stores or updates a batch of records with their embeddings.
// embeddings[i] is the vector for records[i]; a length mismatch is rejected
// before anything is written so a partial batch can never be persisted here.
func (s *QdrantStore) Upsert(ctx context.Context, records []Record, embeddings [][]float32) error {
	if len(records) != len(embeddings) {
		return fmt.Errorf("qdrant: %d records but %d embeddings", len(records), len(embeddings))
	}

	points := make([]*qdrant.PointStruct, 0, len(records))
	for i, rec := range records {
		payload := map[string]interface{}{
			payloadRecordID:   rec.ID,
			payloadDocument:   rec.Text,
			payloadSource:     rec.Source,
			payloadChunkIndex: int64(rec.ChunkIndex),
			payloadLanguage:   rec.Language,
		}

		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(pointID(rec.ID)),
			Vectors: qdrant.NewVectors(embeddings[i]...),
			Payload: qdrant.NewValueMap(payload),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.cfg.Collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant: upsert failed: %w", err)
	}

	return nil
}

// Search performs a cosine similarity search and returns the top-k records.
// Records with missing metadata degrade to Source "unknown" and ChunkIndex -1
// rather than failing the query.
func (s *QdrantStore) Search(ctx context.Context, queryEmbedding []float32, topK int) ([]Record, error) {
	limit := uint64(topK)
	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.cfg.Collection,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: search failed: %w", err)
	}

	records := make([]Record, 0, len(results))
	for _, r := range results {
		rec := Record{
			Source:     "unknown",
			ChunkIndex: -1,
			Score:      r.Score,
		}
		if p := r.Payload; p != nil {
			if v, ok := p[payloadRecordID]; ok {
				rec.ID = v.GetStringValue()
			}
			if v, ok := p[payloadDocument]; ok {
				rec.Text = v.GetStringValue()
			}
			if v, ok := p[payloadSource]; ok && v.GetStringValue() != "" {
				rec.Source = v.GetStringValue()
			}
			if v, ok := p[payloadChunkIndex]; ok {
				rec.ChunkIndex = int(v.GetIntegerValue())
			}
			if v, ok := p[payloadLanguage]; ok {
				rec.Language = v.GetStringValue()
			}
		}
		records = append(records, rec)
	}

	return records, nil
}

// Delete removes records from the collection by their record keys.
func (s *QdrantStore) Delete(ctx context.Context, ids []string) error {
	pointIDs := make([]*qdrant.PointId, 0, len(ids))
	for _, id := range ids {
		pointIDs = append(pointIDs, qdrant.NewIDUUID(pointID(id)))
	}

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.cfg.Collection,
		Points:         qdrant.NewPointsSelector(pointIDs...),
	})
	if err != nil {
		return fmt.Errorf("qdrant: delete failed: %w", err)
	}

	return nil
}

// Ping checks Qdrant reachability via its native HealthCheck RPC.
// Used by the server's GET /api/ready readiness probe.
func (s *QdrantStore) Ping(ctx context.Context) error {
	if _, err := s.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// Name returns the dependency label used in readiness responses.
func (s *QdrantStore) Name() string { return "qdrant" }

// Close closes the underlying Qdrant gRPC connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

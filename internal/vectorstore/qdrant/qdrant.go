package qdrant

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"crisiscompass/internal/domain"
)

// Store is a Qdrant-backed vector index over the official gRPC client.
type Store struct {
	client     *qdrant.Client
	collection string
}

// Config contains connection details for Qdrant.
type Config struct {
	Host       string
	Port       int
	APIKey     string
	Collection string
}

// NewStore connects to Qdrant. The collection is created on Init.
func NewStore(cfg Config) (*Store, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %v", domain.ErrIndex, err)
	}
	return &Store{client: client, collection: cfg.Collection}, nil
}

// Init creates the collection with cosine distance if it does not exist.
// An existing collection is reused as-is.
func (s *Store) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("%w: invalid dimension %d", domain.ErrIndex, dimension)
	}
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("%w: collection exists check: %v", domain.ErrIndex, err)
	}
	if exists {
		return nil
	}
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     uint64(dimension),
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: create collection: %v", domain.ErrIndex, err)
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%w: chunks and vectors length mismatch", domain.ErrIndex)
	}
	points := make([]*qdrant.PointStruct, len(chunks))
	for i, ch := range chunks {
		id := ch.ID
		if id == "" {
			id = uuid.New().String()
		}
		payload := map[string]any{"text": ch.Text}
		for k, v := range ch.Metadata {
			payload[k] = v
		}
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(id),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(payload),
		}
	}
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("%w: upsert: %v", domain.ErrIndex, err)
	}
	return nil
}

// Query retrieves at most topK points scoring at or above scoreThreshold.
func (s *Store) Query(ctx context.Context, vector []float32, topK int, scoreThreshold float32) ([]domain.SearchResult, error) {
	limit := uint64(topK)
	resp, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Limit:          &limit,
		Query:          qdrant.NewQuery(vector...),
		ScoreThreshold: &scoreThreshold,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", domain.ErrIndex, err)
	}

	results := make([]domain.SearchResult, 0, len(resp))
	for _, r := range resp {
		meta := make(map[string]any, len(r.Payload))
		for key, v := range r.Payload {
			meta[key] = convertValue(v)
		}
		text := ""
		if val, ok := meta["text"].(string); ok {
			text = val
			delete(meta, "text")
		}
		var id string
		if r.Id != nil {
			switch x := r.Id.PointIdOptions.(type) {
			case *qdrant.PointId_Uuid:
				id = x.Uuid
			case *qdrant.PointId_Num:
				id = fmt.Sprintf("%d", x.Num)
			}
		}
		results = append(results, domain.SearchResult{
			Chunk: domain.Chunk{ID: id, Text: text, Metadata: meta},
			Score: r.Score,
		})
	}
	return results, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func convertValue(v *qdrant.Value) any {
	switch val := v.Kind.(type) {
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_ListValue:
		out := make([]any, len(val.ListValue.Values))
		for i, lv := range val.ListValue.Values {
			out[i] = convertValue(lv)
		}
		return out
	case *qdrant.Value_StructValue:
		out := make(map[string]any)
		for k, nv := range val.StructValue.Fields {
			out[k] = convertValue(nv)
		}
		return out
	}
	return nil
}

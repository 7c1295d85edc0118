package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"crisiscompass/internal/domain"
)

// Store is an in-memory vector index using brute-force cosine similarity.
// Suitable for development and tests; the production index is Qdrant.
type Store struct {
	mu        sync.RWMutex
	dimension int
	chunks    []domain.Chunk
	vectors   [][]float32
}

func NewStore() *Store { return &Store{} }

// Init fixes the dimensionality. Calling it again with the same dimension
// is a no-op; existing entries are kept, mirroring index reuse.
func (s *Store) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("%w: invalid dimension %d", domain.ErrIndex, dimension)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension != 0 && s.dimension != dimension {
		return fmt.Errorf("%w: dimension mismatch: index has %d, requested %d", domain.ErrIndex, s.dimension, dimension)
	}
	s.dimension = dimension
	return nil
}

func (s *Store) Upsert(_ context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%w: chunks and vectors length mismatch", domain.ErrIndex)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension == 0 {
		return fmt.Errorf("%w: index not initialized", domain.ErrIndex)
	}
	for _, v := range vectors {
		if len(v) != s.dimension {
			return fmt.Errorf("%w: vector dimension %d, index has %d", domain.ErrIndex, len(v), s.dimension)
		}
	}
	s.chunks = append(s.chunks, chunks...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

// Query returns at most topK results with cosine similarity at or above
// scoreThreshold, descending. No qualifying entry yields an empty slice.
func (s *Store) Query(_ context.Context, vector []float32, topK int, scoreThreshold float32) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		return nil, fmt.Errorf("%w: invalid topK %d", domain.ErrIndex, topK)
	}
	var results []domain.SearchResult
	for i := range s.vectors {
		score := cosine(s.vectors[i], vector)
		if score < scoreThreshold {
			continue
		}
		results = append(results, domain.SearchResult{Chunk: s.chunks[i], Score: score})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

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

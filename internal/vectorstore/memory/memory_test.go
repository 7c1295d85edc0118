package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"crisiscompass/internal/domain"
)

func seeded(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	require.NoError(t, s.Init(context.Background(), 3))
	chunks := []domain.Chunk{
		{ID: "a", Text: "ambulance 108"},
		{ID: "b", Text: "flood relief"},
		{ID: "c", Text: "child helpline"},
	}
	vectors := [][]float32{
		{1, 0, 0},
		{0.7, 0.7, 0},
		{0, 0, 1},
	}
	require.NoError(t, s.Upsert(context.Background(), chunks, vectors))
	return s
}

func TestQueryOrderedDescending(t *testing.T) {
	s := seeded(t)
	results, err := s.Query(context.Background(), []float32{1, 0, 0}, 10, 0)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i := 1; i < len(results); i++ {
		require.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
	require.Equal(t, "a", results[0].Chunk.ID)
}

func TestQueryThresholdMonotonic(t *testing.T) {
	s := seeded(t)
	prev := -1
	for _, threshold := range []float32{0, 0.5, 0.9, 1.1} {
		results, err := s.Query(context.Background(), []float32{1, 0, 0}, 10, threshold)
		require.NoError(t, err)
		if prev >= 0 {
			require.LessOrEqual(t, len(results), prev, "raising the threshold must never add results")
		}
		prev = len(results)
		for _, r := range results {
			require.GreaterOrEqual(t, r.Score, threshold)
		}
	}
}

func TestQueryTopKCap(t *testing.T) {
	s := seeded(t)
	results, err := s.Query(context.Background(), []float32{1, 0, 0}, 2, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
}

func TestQueryEmptyIndex(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Init(context.Background(), 3))
	results, err := s.Query(context.Background(), []float32{1, 0, 0}, 5, 0)
	require.NoError(t, err)
	require.Empty(t, results, "empty index must yield an empty result, not an error")
}

func TestUpsertDimensionMismatch(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Init(context.Background(), 3))
	err := s.Upsert(context.Background(), []domain.Chunk{{ID: "x"}}, [][]float32{{1, 0}})
	require.ErrorIs(t, err, domain.ErrIndex)
}

func TestUpsertBeforeInit(t *testing.T) {
	s := NewStore()
	err := s.Upsert(context.Background(), []domain.Chunk{{ID: "x"}}, [][]float32{{1, 0, 0}})
	require.ErrorIs(t, err, domain.ErrIndex)
}

func TestInitIdempotent(t *testing.T) {
	s := seeded(t)
	require.NoError(t, s.Init(context.Background(), 3), "re-init with the same dimension reuses the index")
	results, err := s.Query(context.Background(), []float32{1, 0, 0}, 10, 0)
	require.NoError(t, err)
	require.Len(t, results, 3, "entries survive re-init")

	err = s.Init(context.Background(), 5)
	require.ErrorIs(t, err, domain.ErrIndex)
}

func TestQueryScoreIsCosine(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Init(context.Background(), 2))
	require.NoError(t, s.Upsert(context.Background(),
		[]domain.Chunk{{ID: fmt.Sprint(1), Text: "t"}},
		[][]float32{{3, 0}},
	))
	results, err := s.Query(context.Background(), []float32{7, 0}, 1, 0)
	require.NoError(t, err)
	require.InDelta(t, 1.0, float64(results[0].Score), 1e-6, "cosine is magnitude-invariant")
}

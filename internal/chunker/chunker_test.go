package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"crisiscompass/internal/domain"
)

func reconstruct(chunks []string, overlap int) string {
	var b strings.Builder
	for i, ch := range chunks {
		runes := []rune(ch)
		if i > 0 {
			runes = runes[overlap:]
		}
		b.WriteString(string(runes))
	}
	return b.String()
}

func TestChunkReconstructsInput(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		max     int
		overlap int
	}{
		{"short text single chunk", "help needed", 400, 80},
		{"exact boundary", strings.Repeat("a", 400), 400, 80},
		{"multiple chunks", strings.Repeat("oxygen cylinder needed in Delhi. ", 50), 400, 80},
		{"no overlap", strings.Repeat("x", 1000), 100, 0},
		{"unicode text", strings.Repeat("दिल्ली में मदद चाहिए ", 100), 50, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.max, tt.overlap)
			require.NoError(t, err)
			chunks := c.Chunk(tt.text)
			require.NotEmpty(t, chunks)
			for _, ch := range chunks {
				require.LessOrEqual(t, len([]rune(ch)), tt.max)
			}
			require.Equal(t, tt.text, reconstruct(chunks, tt.overlap))
		})
	}
}

func TestChunkDeterministic(t *testing.T) {
	c, err := New(120, 30)
	require.NoError(t, err)
	text := strings.Repeat("flood relief volunteers needed near the riverbank. ", 20)
	first := c.Chunk(text)
	second := c.Chunk(text)
	require.Equal(t, first, second)
}

func TestChunkConsecutiveOverlap(t *testing.T) {
	c, err := New(100, 20)
	require.NoError(t, err)
	text := strings.Repeat("b", 500)
	chunks := c.Chunk(text)
	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		cur := []rune(chunks[i])
		require.Equal(t, string(prev[len(prev)-20:]), string(cur[:20]))
	}
}

func TestChunkEmptyInput(t *testing.T) {
	c, err := New(100, 20)
	require.NoError(t, err)
	require.Empty(t, c.Chunk(""))
}

func TestNewRejectsBadParameters(t *testing.T) {
	tests := []struct {
		name    string
		max     int
		overlap int
	}{
		{"overlap equals max", 100, 100},
		{"overlap above max", 100, 150},
		{"negative overlap", 100, -1},
		{"zero max", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.max, tt.overlap)
			require.ErrorIs(t, err, domain.ErrConfig)
		})
	}
}

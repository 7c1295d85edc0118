package chunker

import (
	"fmt"

	"crisiscompass/internal/domain"
)

// Chunker splits text into fixed-size overlapping segments. It is a pure,
// deterministic function of its configuration and input: concatenating the
// produced chunks with the overlap removed reconstructs the input exactly.
type Chunker struct {
	maxChars     int
	overlapChars int
}

// New validates the chunking parameters. overlap must stay strictly below
// max or the stride never advances.
func New(maxChars, overlapChars int) (*Chunker, error) {
	if maxChars <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrConfig, maxChars)
	}
	if overlapChars < 0 || overlapChars >= maxChars {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", domain.ErrConfig, overlapChars, maxChars)
	}
	return &Chunker{maxChars: maxChars, overlapChars: overlapChars}, nil
}

// Chunk splits text into rune-based segments of at most maxChars, each
// sharing overlapChars with its predecessor. Empty input yields no chunks.
func (c *Chunker) Chunk(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	var chunks []string
	stride := c.maxChars - c.overlapChars
	for start := 0; start < len(runes); start += stride {
		end := start + c.maxChars
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// Overlap returns the configured overlap in runes.
func (c *Chunker) Overlap() int { return c.overlapChars }

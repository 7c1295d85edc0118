package cluster

import (
	"testing"

	"github.com/stretchr/testify/require"

	"crisiscompass/internal/corpus"
)

func samplePosts() []corpus.Post {
	return []corpus.Post{
		{"text": "post one", "geolocation": "Kerala", "time_date": "2024-01-01"},
		{"text": "post two", "geolocation": "Kerala", "time_date": "2024-01-02"},
		{"text": "post three", "geolocation": "Assam"},
		{"text": "post four", "geolocation": "  "},
		{"text": "post five"},
	}
}

func TestStateCounts(t *testing.T) {
	counts := StateCounts(samplePosts())
	require.Equal(t, map[string]int{
		"Kerala":  2,
		"Assam":   1,
		"Unknown": 2,
	}, counts)
}

func TestGroupPreservesOrder(t *testing.T) {
	groups := Group(samplePosts())
	require.Len(t, groups["Kerala"], 2)
	require.Equal(t, Entry{Text: "post one", TimeDate: "2024-01-01"}, groups["Kerala"][0])
	require.Equal(t, Entry{Text: "post two", TimeDate: "2024-01-02"}, groups["Kerala"][1])
	require.Len(t, groups["Unknown"], 1, "only fully absent geolocation falls back to Unknown in grouping")
}

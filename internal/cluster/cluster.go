package cluster

import (
	"strings"

	"crisiscompass/internal/corpus"
)

// Entry is one report within a geolocation group.
type Entry struct {
	Text     string `json:"text"`
	TimeDate string `json:"time_date"`
}

// StateCounts counts reports per geolocation. Blank geolocations are
// grouped under "Unknown".
func StateCounts(posts []corpus.Post) map[string]int {
	counts := make(map[string]int)
	for _, p := range posts {
		state := strings.TrimSpace(p.Geolocation())
		if state == "" {
			state = "Unknown"
		}
		counts[state]++
	}
	return counts
}

// Group buckets reports by their geolocation, preserving input order
// within each bucket.
func Group(posts []corpus.Post) map[string][]Entry {
	groups := make(map[string][]Entry)
	for _, p := range posts {
		geo := p.Geolocation()
		if geo == "" {
			geo = "Unknown"
		}
		groups[geo] = append(groups[geo], Entry{Text: p.Text(), TimeDate: p.TimeDate()})
	}
	return groups
}

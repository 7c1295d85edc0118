package inmemory

import (
	"context"
	"sync"

	"crisiscompass/internal/domain"
)

// Store keeps session transcripts in process memory. Sessions are created
// lazily on first append and live for the process lifetime; a restart
// loses all of them.
type Store struct {
	mu       sync.RWMutex
	sessions map[string][]domain.Turn
}

func NewStore() *Store {
	return &Store{sessions: make(map[string][]domain.Turn)}
}

// History returns a copy of the session's transcript, empty for unseen IDs.
func (s *Store) History(_ context.Context, sessionID string) ([]domain.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := s.sessions[sessionID]
	out := make([]domain.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

// Append adds turns to the session's transcript in one atomic step.
func (s *Store) Append(_ context.Context, sessionID string, turns ...domain.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = append(s.sessions[sessionID], turns...)
	return nil
}

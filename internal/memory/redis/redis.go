package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"crisiscompass/internal/domain"
)

// Store keeps session transcripts in a redis list per session, each turn
// JSON-encoded. Lists are appended with RPUSH so [human, assistant] pairs
// pushed in one call stay adjacent.
type Store struct {
	client *redis.Client
}

// Config contains redis connection details.
type Config struct {
	Addr     string
	Password string
	DB       int
}

func NewStore(cfg Config) *Store {
	return &Store{client: redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})}
}

func key(sessionID string) string {
	return fmt.Sprintf("session:%s:turns", sessionID)
}

func (s *Store) History(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	vals, err := s.client.LRange(ctx, key(sessionID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	turns := make([]domain.Turn, 0, len(vals))
	for _, v := range vals {
		var t domain.Turn
		if err := json.Unmarshal([]byte(v), &t); err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	return turns, nil
}

func (s *Store) Append(ctx context.Context, sessionID string, turns ...domain.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	vals := make([]interface{}, len(turns))
	for i, t := range turns {
		data, err := json.Marshal(t)
		if err != nil {
			return err
		}
		vals[i] = data
	}
	return s.client.RPush(ctx, key(sessionID), vals...).Err()
}

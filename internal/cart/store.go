package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

type Store interface {
	Load(ctx context.Context, sessionID string) (Cart, error)
	Save(ctx context.Context, sessionID string, c Cart) error
	Delete(ctx context.Context, sessionID string) error
}

// RedisStore keeps each session's cart as one JSON array under its own key.
// Concurrent writers to the same session overwrite each other.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *log.Logger
}

func NewRedisStore(client redis.Cmdable, ttl time.Duration, logger *log.Logger) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, logger: logger}
}

func cartKey(sessionID string) string {
	return "storefront:cart:" + sessionID
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (Cart, error) {
	raw, err := s.client.Get(ctx, cartKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Cart{}, nil
		}
		return Cart{}, fmt.Errorf("get cart: %w", err)
	}

	var lines []Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		s.logger.Printf("discarding unreadable cart session=%s err=%v", sessionID, err)
		return Cart{}, nil
	}
	return Cart{Lines: lines}, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, c Cart) error {
	lines := c.Lines
	if lines == nil {
		lines = []Line{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	// a zero ttl keeps the key forever
	if err := s.client.Set(ctx, cartKey(sessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("set cart: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

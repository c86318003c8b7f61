package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/abhisek/quizarcade/internal/session"
)

// DefaultSessionKey is the Redis key holding the current session.
const DefaultSessionKey = "quiz:current"

// RedisSessionStore keeps the current session under a single Redis key.
type RedisSessionStore struct {
	client *redis.Client
	key    string
}

// NewRedisSessionStore returns a store using key, or DefaultSessionKey when
// key is empty.
func NewRedisSessionStore(client *redis.Client, key string) *RedisSessionStore {
	if key == "" {
		key = DefaultSessionKey
	}
	return &RedisSessionStore{client: client, key: key}
}

func (r *RedisSessionStore) Save(ctx context.Context, sess *session.Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, r.key, b, 0).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Load(ctx context.Context) (*session.Session, error) {
	b, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return decodeSession(b), nil
}

func (r *RedisSessionStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

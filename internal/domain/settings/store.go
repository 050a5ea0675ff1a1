// Package settings persists small per-user preferences. Values are opaque
// JSON documents addressed by (user, key); writes are last-write-wins.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/clinic/clinic/internal/platform/cache"
	"github.com/clinic/clinic/internal/platform/db"
)

var ErrNotFound = errors.New("setting not found")

type Store interface {
	Get(ctx context.Context, userID, key string) (json.RawMessage, error)
	Put(ctx context.Context, userID, key string, value json.RawMessage) error
	Delete(ctx context.Context, userID, key string) error
}

// -- Postgres --

type pgStore struct {
	db db.Querier
}

func NewPGStore(q db.Querier) Store {
	return &pgStore{db: q}
}

func (s *pgStore) Get(ctx context.Context, userID, key string) (json.RawMessage, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, `SELECT value FROM user_setting WHERE user_id = $1 AND key = $2`, userID, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get setting %s: %w", key, err)
	}
	return raw, nil
}

func (s *pgStore) Put(ctx context.Context, userID, key string, value json.RawMessage) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO user_setting (user_id, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		userID, key, []byte(value))
	if err != nil {
		return fmt.Errorf("put setting %s: %w", key, err)
	}
	return nil
}

func (s *pgStore) Delete(ctx context.Context, userID, key string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM user_setting WHERE user_id = $1 AND key = $2`, userID, key); err != nil {
		return fmt.Errorf("delete setting %s: %w", key, err)
	}
	return nil
}

// -- Redis --

// redisStore keeps one hash per user: settings:<user> -> {key: json}.
type redisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func (s *redisStore) Get(ctx context.Context, userID, key string) (json.RawMessage, error) {
	data, err := s.client.HGet(ctx, cache.Key("settings", userID), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get setting %s: %w", key, err)
	}
	return data, nil
}

func (s *redisStore) Put(ctx context.Context, userID, key string, value json.RawMessage) error {
	return s.client.HSet(ctx, cache.Key("settings", userID), key, []byte(value)).Err()
}

func (s *redisStore) Delete(ctx context.Context, userID, key string) error {
	return s.client.HDel(ctx, cache.Key("settings", userID), key).Err()
}

// -- Memory --

type memoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]json.RawMessage
}

// NewMemoryStore returns a process-local store for development and tests.
func NewMemoryStore() Store {
	return &memoryStore{data: make(map[string]map[string]json.RawMessage)}
}

func (s *memoryStore) Get(_ context.Context, userID, key string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[userID][key]
	if !ok {
		return nil, ErrNotFound
	}
	return append(json.RawMessage(nil), v...), nil
}

func (s *memoryStore) Put(_ context.Context, userID, key string, value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[userID] == nil {
		s.data[userID] = make(map[string]json.RawMessage)
	}
	s.data[userID][key] = append(json.RawMessage(nil), value...)
	return nil
}

func (s *memoryStore) Delete(_ context.Context, userID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data[userID], key)
	return nil
}

package redis

import (
	"context"
	"encoding/json"
	"fmt"

	backend "github.com/redis/go-redis/v9"

	"quantisuite/internal/history"
)

// Store keeps the history as a Redis list of JSON entries, newest at the head.
type Store struct {
	client *backend.Client
	key    string
	limit  int64
}

type Option func(*Store)

// WithKey sets the list key.
func WithKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}

// WithLimit trims the list to n entries on every save.
func WithLimit(n int) Option {
	return func(s *Store) {
		s.limit = int64(n)
	}
}

const defaultKey = "quantisuite:history"

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		key:    defaultKey,
		limit:  history.DefaultLimit,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Load reads the whole list.
func (s *Store) Load(ctx context.Context) ([]history.Entry, error) {
	vals, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history from redis: %w", err)
	}

	entries := make([]history.Entry, 0, len(vals))
	for _, v := range vals {
		var e history.Entry
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Save replaces the list in one transaction.
func (s *Store) Save(ctx context.Context, entries []history.Entry) error {
	values := make([]any, 0, len(entries))
	for _, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal entry: %w", err)
		}
		values = append(values, data)
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key)
	if len(values) > 0 {
		pipe.RPush(ctx, s.key, values...)
		if s.limit > 0 {
			pipe.LTrim(ctx, s.key, 0, s.limit-1)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

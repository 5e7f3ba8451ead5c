// Package cache holds Redis-backed stores.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix    = "idempotency:"
	pendingValue = "pending"
)

// Entry states
const (
	StateMissing = iota
	StatePending
	StateDone
)

// StoredResponse is a completed response kept for replay
type StoredResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// IdempotencyStore remembers responses by Idempotency-Key
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient opens a client and pings the server
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

// NewIdempotencyStore creates a store whose entries expire after ttl
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Reserve claims key for a request in flight. It returns false when the key
// is already reserved or completed.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (bool, error) {
	return s.client.SetNX(ctx, keyPrefix+key, pendingValue, s.ttl).Result()
}

// Lookup returns the state of key and, when done, the stored response
func (s *IdempotencyStore) Lookup(ctx context.Context, key string) (int, *StoredResponse, error) {
	val, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return StateMissing, nil, nil
	}
	if err != nil {
		return StateMissing, nil, err
	}
	if string(val) == pendingValue {
		return StatePending, nil, nil
	}

	var resp StoredResponse
	if err := json.Unmarshal(val, &resp); err != nil {
		return StateMissing, nil, fmt.Errorf("decode stored response: %w", err)
	}
	return StateDone, &resp, nil
}

// Complete stores the final response for key
func (s *IdempotencyStore) Complete(ctx context.Context, key string, resp *StoredResponse) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+key, payload, s.ttl).Err()
}

// Release drops a reservation so the request can be retried
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefix+key).Err()
}

package limiter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Storage is an interface for storing and retrieving token buckets
type Storage interface {
	// Get retrieves a token bucket for the given key, or nil if there is none
	Get(ctx context.Context, key string) (*TokenBucket, error)

	// Set stores a token bucket for the given key
	Set(ctx context.Context, key string, bucket *TokenBucket) error

	// Delete removes a token bucket for the given key
	Delete(ctx context.Context, key string) error
}

type InMemoryStorage struct {
	buckets map[string]*TokenBucket
	mu      sync.RWMutex
}

func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{
		buckets: make(map[string]*TokenBucket),
	}
}

func (s *InMemoryStorage) Get(_ context.Context, key string) (*TokenBucket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.buckets[key], nil
}

func (s *InMemoryStorage) Set(_ context.Context, key string, bucket *TokenBucket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buckets[key] = bucket
	return nil
}

func (s *InMemoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.buckets, key)
	return nil
}

// RedisClient is the subset of *redis.Client the Redis storage needs.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStorage shares buckets between processes. Buckets expire after ttl
// of inactivity.
type RedisStorage struct {
	client RedisClient
	ttl    time.Duration
}

func NewRedisStorage(client RedisClient, ttl time.Duration) *RedisStorage {
	return &RedisStorage{
		client: client,
		ttl:    ttl,
	}
}

func redisKey(key string) string {
	return "ratelimit:" + key
}

func (s *RedisStorage) Get(ctx context.Context, key string) (*TokenBucket, error) {
	data, err := s.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var bucket TokenBucket
	if err := json.Unmarshal(data, &bucket); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bucket: %w", err)
	}
	return &bucket, nil
}

func (s *RedisStorage) Set(ctx context.Context, key string, bucket *TokenBucket) error {
	bucket.mu.Lock()
	data, err := json.Marshal(bucket)
	bucket.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to marshal bucket: %w", err)
	}
	return s.client.Set(ctx, redisKey(key), data, s.ttl).Err()
}

func (s *RedisStorage) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, redisKey(key)).Err()
}

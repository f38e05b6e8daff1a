package redis

import (
	"context"
	"errors"
	"time"

	"campusconnect/infrastructure/kv"
	"campusconnect/pkg/breaker"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

// Client is the subset of *redis.Client the backend needs.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Backend stores snapshots as plain Redis strings with no expiry.
// Every call goes through a circuit breaker so a dead Redis fails fast.
type Backend struct {
	client Client
	cb     *gobreaker.CircuitBreaker
}

func NewBackend(client Client) *Backend {
	return &Backend{
		client: client,
		cb: breaker.New(breaker.Config{
			Name:        "redis-snapshot",
			MaxRequests: 3,
			Interval:    60 * time.Second,
			Timeout:     15 * time.Second,
			Threshold:   0.5,
			MinRequests: 5,
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, kv.ErrNotFound)
			},
		}),
	}
}

func (b *Backend) Get(ctx context.Context, key string) (string, error) {
	return breaker.Execute(b.cb, func() (string, error) {
		val, err := b.client.Get(ctx, key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return "", kv.ErrNotFound
			}
			return "", err
		}
		return val, nil
	})
}

func (b *Backend) Set(ctx context.Context, key, value string) error {
	_, err := breaker.Execute(b.cb, func() (struct{}, error) {
		return struct{}{}, b.client.Set(ctx, key, value, 0).Err()
	})
	return err
}

package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"campusconnect/apperrors"
	"campusconnect/infrastructure/kv"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRedisClient struct {
	mock.Mock
	data map[string]string
	mu   sync.RWMutex
}

func newMockRedisClient() *mockRedisClient {
	return &mockRedisClient{data: make(map[string]string)}
}

func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	if err := args.Error(0); err != nil {
		return redis.NewStatusResult("", err)
	}

	m.mu.Lock()
	m.data[key] = value.(string)
	m.mu.Unlock()

	return redis.NewStatusResult("OK", nil)
}

func (m *mockRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	if err := args.Error(0); err != nil {
		return redis.NewStringResult("", err)
	}

	m.mu.RLock()
	val, exists := m.data[key]
	m.mu.RUnlock()

	if !exists {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func TestBackend_RoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newMockRedisClient()
	client.On("Get", ctx, "student_portal_db").Return(nil)
	client.On("Set", ctx, "student_portal_db", `{"users":[]}`, time.Duration(0)).Return(nil)

	b := NewBackend(client)

	_, err := b.Get(ctx, "student_portal_db")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, b.Set(ctx, "student_portal_db", `{"users":[]}`))

	got, err := b.Get(ctx, "student_portal_db")
	require.NoError(t, err)
	assert.Equal(t, `{"users":[]}`, got)

	client.AssertNumberOfCalls(t, "Get", 2)
	client.AssertNumberOfCalls(t, "Set", 1)
}

func TestBackend_MissingKeysDoNotTripBreaker(t *testing.T) {
	ctx := context.Background()
	client := newMockRedisClient()
	client.On("Get", ctx, "absent").Return(nil)

	b := NewBackend(client)
	for i := 0; i < 10; i++ {
		_, err := b.Get(ctx, "absent")
		assert.ErrorIs(t, err, kv.ErrNotFound)
	}
}

func TestBackend_FailuresOpenBreaker(t *testing.T) {
	ctx := context.Background()
	down := errors.New("connection refused")
	client := newMockRedisClient()
	client.On("Get", ctx, "student_portal_db").Return(down)

	b := NewBackend(client)
	for i := 0; i < 5; i++ {
		_, err := b.Get(ctx, "student_portal_db")
		assert.ErrorIs(t, err, down)
	}

	_, err := b.Get(ctx, "student_portal_db")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeServiceUnavail))
	client.AssertNumberOfCalls(t, "Get", 5)
}

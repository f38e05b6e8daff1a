package breaker

import (
	"errors"
	"testing"
	"time"

	"campusconnect/apperrors"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_PassesThroughResults(t *testing.T) {
	cb := New(Config{Name: "test"})

	v, err := Execute(cb, func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)

	boom := errors.New("boom")
	_, err = Execute(cb, func() (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
}

func TestExecute_OpenBreakerIsServiceUnavailable(t *testing.T) {
	cb := New(Config{Name: "trip", MinRequests: 2, Threshold: 0.5, Timeout: time.Minute})
	boom := errors.New("down")

	for i := 0; i < 2; i++ {
		_, _ = Execute(cb, func() (int, error) { return 0, boom })
	}
	require.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := Execute(cb, func() (int, error) { return 1, nil })
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeServiceUnavail))
}

func TestIsSuccessful_IgnoresExpectedErrors(t *testing.T) {
	notFound := errors.New("missing")
	cb := New(Config{
		Name:         "expected",
		MinRequests:  1,
		IsSuccessful: func(err error) bool { return err == nil || errors.Is(err, notFound) },
	})

	for i := 0; i < 5; i++ {
		_, _ = Execute(cb, func() (int, error) { return 0, notFound })
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

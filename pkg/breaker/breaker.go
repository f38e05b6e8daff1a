package breaker

import (
	"errors"
	"time"

	"campusconnect/apperrors"
	"campusconnect/pkg/logger"

	"github.com/sony/gobreaker"
)

// Config allows custom settings for specific breakers
type Config struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// Threshold is the failure ratio that trips the breaker.
	Threshold float64
	// MinRequests is the number of requests seen before Threshold applies.
	MinRequests uint32
	// IsSuccessful decides which errors count as failures. Defaults to err == nil.
	IsSuccessful func(err error) bool
}

// New creates a new CircuitBreaker with sensible defaults
func New(cfg Config) *gobreaker.CircuitBreaker {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 0.5
	}
	if cfg.MinRequests == 0 {
		cfg.MinRequests = 5
	}

	settings := gobreaker.Settings{
		Name:         cfg.Name,
		MaxRequests:  cfg.MaxRequests,
		Interval:     cfg.Interval,
		Timeout:      cfg.Timeout,
		IsSuccessful: cfg.IsSuccessful,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests && failureRatio >= cfg.Threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithField("breaker", name).Warn("circuit breaker changed state from %s to %s", from.String(), to.String())
		},
	}

	if settings.MaxRequests == 0 {
		settings.MaxRequests = 5 // Half-open max requests
	}
	if settings.Interval == 0 {
		settings.Interval = 60 * time.Second // Clear counts interval
	}
	if settings.Timeout == 0 {
		settings.Timeout = 30 * time.Second // Open state duration
	}

	return gobreaker.NewCircuitBreaker(settings)
}

// Execute runs fn through cb and turns a rejected call into a
// SERVICE_UNAVAILABLE AppError.
func Execute[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	res, err := cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, apperrors.NewCircuitBreakerError(cb.Name(), cb.State().String()).WithInternal(err)
		}
		return zero, err
	}
	if res == nil {
		var zero T
		return zero, nil
	}
	return res.(T), nil
}

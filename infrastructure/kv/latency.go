package kv

import (
	"context"
	"time"
)

// Delayed wraps a Backend and sleeps before every Get, standing in for the
// round trip of a remote API. Set is not delayed: by the time a caller
// writes, it has already paid for the read.
type Delayed struct {
	Backend
	delay time.Duration
}

// WithLatency returns b unchanged when d is zero.
func WithLatency(b Backend, d time.Duration) Backend {
	if d <= 0 {
		return b
	}
	return &Delayed{Backend: b, delay: d}
}

func (d *Delayed) Get(ctx context.Context, key string) (string, error) {
	t := time.NewTimer(d.delay)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-t.C:
	}
	return d.Backend.Get(ctx, key)
}

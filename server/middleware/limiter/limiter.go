package limiter

import (
	"sync"
	"time"

	"campusconnect/pkg/metrics"

	"github.com/gofiber/fiber/v2"
)

type TokenBucket struct {
	Capacity     int64         `json:"capacity"`
	Tokens       int64         `json:"tokens"`
	RefillRate   int64         `json:"refill_rate"`
	RefillPeriod time.Duration `json:"refill_period"`
	LastRefill   time.Time     `json:"last_refill"`
	mu           sync.Mutex
}

func NewTokenBucket(capacity, refillRate int64, refillPeriod time.Duration) *TokenBucket {
	return &TokenBucket{
		Capacity:     capacity,
		Tokens:       capacity,
		RefillRate:   refillRate,
		RefillPeriod: refillPeriod,
		LastRefill:   time.Now(),
	}
}

// Take removes n tokens if that many are available.
func (tb *TokenBucket) Take(n int64) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(time.Now())

	if tb.Tokens >= n {
		tb.Tokens -= n
		return true
	}
	return false
}

// refill adds RefillRate tokens for every whole period since LastRefill.
// LastRefill only advances by whole periods so partial periods are not lost.
func (tb *TokenBucket) refill(now time.Time) {
	if tb.RefillPeriod <= 0 {
		return
	}
	elapsed := now.Sub(tb.LastRefill)
	if elapsed < tb.RefillPeriod {
		return
	}

	periods := int64(elapsed / tb.RefillPeriod)
	tb.Tokens = min(tb.Capacity, tb.Tokens+periods*tb.RefillRate)
	tb.LastRefill = tb.LastRefill.Add(time.Duration(periods) * tb.RefillPeriod)
}

func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		key := cfg.KeyGenerator(c)
		ctx := c.UserContext()

		bucket, err := cfg.Storage.Get(ctx, key)
		if err != nil {
			return err
		}
		if bucket == nil {
			bucket = NewTokenBucket(cfg.Capacity, cfg.RefillRate, cfg.RefillPeriod)
		}

		took := bucket.Take(1)

		if err := cfg.Storage.Set(ctx, key, bucket); err != nil {
			return err
		}

		if !took {
			metrics.IncrementRateLimitExceeded(c.Route().Path)
			return cfg.LimitReachedHandler(c)
		}

		return c.Next()
	}
}

package limiter

import (
	"time"

	"campusconnect/apperrors"

	"github.com/gofiber/fiber/v2"
)

// Config holds one token bucket policy. The portal runs a single policy
// over the whole API, keyed by client IP.
type Config struct {
	// Next skips limiting for a request. The server uses it to exempt
	// /health and /metrics so probes and scrapes never spend tokens.
	Next func(c *fiber.Ctx) bool

	// Capacity is the burst size of a fresh bucket. Default: 100
	Capacity int64

	// RefillRate tokens come back every RefillPeriod. Defaults: 10 per second
	RefillRate   int64
	RefillPeriod time.Duration

	// KeyGenerator picks the bucket for a request. Default: c.IP(), so a
	// student and an admin behind the same address share one bucket.
	KeyGenerator func(c *fiber.Ctx) string

	// LimitReachedHandler answers a request whose bucket is empty.
	// Default: a RATE_LIMITED AppError rendered by the error handler.
	LimitReachedHandler fiber.Handler

	// Storage keeps buckets between requests. Default: a fresh
	// InMemoryStorage; main passes RedisStorage for the redis backend so
	// every instance draws from the same buckets.
	Storage Storage
}

// ConfigDefault is the policy used for zero fields.
var ConfigDefault = Config{
	Capacity:     100,
	RefillRate:   10,
	RefillPeriod: time.Second,
	KeyGenerator: func(c *fiber.Ctx) string {
		return c.IP()
	},
	LimitReachedHandler: func(c *fiber.Ctx) error {
		return apperrors.NewRateLimitError()
	},
}

// configDefault fills zero fields of the first config from ConfigDefault.
func configDefault(config ...Config) Config {
	cfg := ConfigDefault
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Capacity <= 0 {
		cfg.Capacity = ConfigDefault.Capacity
	}
	if cfg.RefillRate <= 0 {
		cfg.RefillRate = ConfigDefault.RefillRate
	}
	if cfg.RefillPeriod <= 0 {
		cfg.RefillPeriod = ConfigDefault.RefillPeriod
	}
	if cfg.KeyGenerator == nil {
		cfg.KeyGenerator = ConfigDefault.KeyGenerator
	}
	if cfg.LimitReachedHandler == nil {
		cfg.LimitReachedHandler = ConfigDefault.LimitReachedHandler
	}
	if cfg.Storage == nil {
		cfg.Storage = NewInMemoryStorage()
	}

	return cfg
}

package metrics

import (
	"database/sql"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

type poolStat struct {
	desc      *prometheus.Desc
	valueType prometheus.ValueType
	value     func() float64
}

// poolCollector reports connection pool statistics of a storage backend.
// Values are read on every scrape.
type poolCollector struct {
	mu      sync.Mutex
	refresh func()
	stats   []poolStat
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, s := range c.stats {
		ch <- s.desc
	}
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.refresh()
	for _, s := range c.stats {
		ch <- prometheus.MustNewConstMetric(s.desc, s.valueType, s.value())
	}
}

func gauge(name, help string, v func() float64) poolStat {
	return poolStat{prometheus.NewDesc(name, help, nil, nil), prometheus.GaugeValue, v}
}

func counter(name, help string, v func() float64) poolStat {
	return poolStat{prometheus.NewDesc(name, help, nil, nil), prometheus.CounterValue, v}
}

// NewDatabaseStatsCollector exposes database/sql pool statistics for the Postgres backend
func NewDatabaseStatsCollector(db *sql.DB) prometheus.Collector {
	var s sql.DBStats
	return &poolCollector{
		refresh: func() { s = db.Stats() },
		stats: []poolStat{
			gauge("database_open_connections", "The number of established connections both in use and idle",
				func() float64 { return float64(s.OpenConnections) }),
			gauge("database_connections_in_use", "The number of connections currently in use",
				func() float64 { return float64(s.InUse) }),
			gauge("database_connections_idle", "The number of idle connections",
				func() float64 { return float64(s.Idle) }),
			counter("database_wait_count_total", "The total number of connections waited for",
				func() float64 { return float64(s.WaitCount) }),
			counter("database_wait_duration_seconds_total", "The total time blocked waiting for a new connection",
				func() float64 { return s.WaitDuration.Seconds() }),
		},
	}
}

// NewRedisStatsCollector exposes go-redis pool statistics for the Redis backend
func NewRedisStatsCollector(client *redis.Client) prometheus.Collector {
	var s *redis.PoolStats
	return &poolCollector{
		refresh: func() { s = client.PoolStats() },
		stats: []poolStat{
			counter("redis_pool_hits_total", "Number of times free connection was found in the pool",
				func() float64 { return float64(s.Hits) }),
			counter("redis_pool_misses_total", "Number of times free connection was NOT found in the pool",
				func() float64 { return float64(s.Misses) }),
			counter("redis_pool_timeouts_total", "Number of times a wait timeout occurred",
				func() float64 { return float64(s.Timeouts) }),
			gauge("redis_pool_total_connections", "Number of total connections in the pool",
				func() float64 { return float64(s.TotalConns) }),
			gauge("redis_pool_idle_connections", "Number of idle connections in the pool",
				func() float64 { return float64(s.IdleConns) }),
		},
	}
}

// RegisterCollectors registers the pool collectors for whichever backend is in use
func RegisterCollectors(db *sql.DB, redisClient *redis.Client) {
	if db != nil {
		prometheus.MustRegister(NewDatabaseStatsCollector(db))
	}

	if redisClient != nil {
		prometheus.MustRegister(NewRedisStatsCollector(redisClient))
	}
}

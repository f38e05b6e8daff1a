package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Redis     RedisConfig
	Database  DatabaseConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	Environment  string
	LogFile      string
	LogLevel     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// StorageConfig selects and tunes the snapshot backend.
type StorageConfig struct {
	Backend string        // memory, file, redis or postgres
	Key     string        // key the snapshot lives under
	DataDir string        // file backend directory
	Latency time.Duration // simulated round-trip delay per operation
}

type RedisConfig struct {
	Address  string
	Username string
	Password string
	DB       int
}

type DatabaseConfig struct {
	ConnectionString string
}

type RateLimitConfig struct {
	Capacity     int64
	RefillRate   int64
	RefillPeriod time.Duration
}

type CacheConfig struct {
	StaleTime time.Duration
}

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// getProjectRoot finds the project root by looking for go.mod
func getProjectRoot() (string, error) {
	if projectRoot := os.Getenv("PROJECT_ROOT"); projectRoot != "" {
		return projectRoot, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find project root (no go.mod found)")
		}
		dir = parent
	}
}

// resolvePath resolves a path relative to the project root if it's not absolute.
// Outside a source checkout the working directory is used instead.
func resolvePath(path string) string {
	if filepath.IsAbs(path) || path == "stdout" || path == "-" {
		return path
	}

	root, err := getProjectRoot()
	if err != nil {
		if wd, werr := os.Getwd(); werr == nil {
			return filepath.Join(wd, path)
		}
		return path
	}
	return filepath.Join(root, path)
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvAsInt("SERVER_PORT", 8000),
			Environment:  getEnv("APP_ENV", "production"),
			LogFile:      resolvePath(getEnv("LOG_FILE", "stdout")),
			LogLevel:     getEnv("LOG_LEVEL", "INFO"),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Storage: StorageConfig{
			Backend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendFile)),
			Key:     getEnv("STORAGE_KEY", "student_portal_db"),
			DataDir: resolvePath(getEnv("STORAGE_DATA_DIR", "./data")),
			Latency: getEnvAsDuration("STORAGE_LATENCY", 300*time.Millisecond),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDR", "localhost:6379"),
			Username: getEnv("REDIS_USERNAME", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Database: DatabaseConfig{
			ConnectionString: getEnv("GOOSE_DBSTRING", ""),
		},
		RateLimit: RateLimitConfig{
			Capacity:     getEnvAsInt64("RATE_LIMIT_CAPACITY", 100),
			RefillRate:   getEnvAsInt64("RATE_LIMIT_REFILL", 10),
			RefillPeriod: getEnvAsDuration("RATE_LIMIT_PERIOD", time.Second),
		},
		Cache: CacheConfig{
			StaleTime: getEnvAsDuration("CACHE_STALE_TIME", 30*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks every section and reports all problems at once
func (c *Config) Validate() error {
	var errors []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid server port: %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errors = append(errors, "server read timeout must be > 0")
	}
	if c.Server.WriteTimeout <= 0 {
		errors = append(errors, "server write timeout must be > 0")
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendFile:
		if c.Storage.DataDir == "" {
			errors = append(errors, "storage data directory (STORAGE_DATA_DIR) is required for the file backend")
		}
	case BackendRedis:
		if c.Redis.Address == "" {
			errors = append(errors, "redis address (REDIS_ADDR) is required for the redis backend")
		}
	case BackendPostgres:
		if c.Database.ConnectionString == "" {
			errors = append(errors, "database connection string (GOOSE_DBSTRING) is required for the postgres backend")
		}
	default:
		errors = append(errors, fmt.Sprintf("unknown storage backend %q (want memory, file, redis or postgres)", c.Storage.Backend))
	}
	if c.Storage.Key == "" {
		errors = append(errors, "storage key (STORAGE_KEY) is required")
	}
	if c.Storage.Latency < 0 {
		errors = append(errors, "storage latency must be >= 0")
	}

	if c.RateLimit.Capacity <= 0 {
		errors = append(errors, "rate limit capacity must be > 0")
	}
	if c.RateLimit.RefillRate <= 0 {
		errors = append(errors, "rate limit refill rate must be > 0")
	}
	if c.RateLimit.RefillPeriod <= 0 {
		errors = append(errors, "rate limit refill period must be > 0")
	}

	if c.Cache.StaleTime < 0 {
		errors = append(errors, "cache stale time must be >= 0")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// PrintSummary logs a summary of the loaded configuration
func (c *Config) PrintSummary() {
	fmt.Println("Configuration Summary:")
	fmt.Printf("  Server: %s (%s)\n", c.ServerAddress(), c.Server.Environment)
	fmt.Printf("  Storage: %s (key: %s, latency: %s)\n", c.Storage.Backend, c.Storage.Key, c.Storage.Latency)
	switch c.Storage.Backend {
	case BackendFile:
		fmt.Printf("  Data dir: %s\n", c.Storage.DataDir)
	case BackendRedis:
		fmt.Printf("  Redis: %s (DB: %d)\n", c.Redis.Address, c.Redis.DB)
	case BackendPostgres:
		fmt.Printf("  Database: %s\n", maskConnectionString(c.Database.ConnectionString))
	}
	fmt.Printf("  Cache stale time: %s\n", c.Cache.StaleTime)
	fmt.Printf("  Rate Limit: %d requests/%s (capacity: %d)\n",
		c.RateLimit.RefillRate, c.RateLimit.RefillPeriod, c.RateLimit.Capacity)
}

// maskConnectionString masks sensitive parts of the connection string
func maskConnectionString(connStr string) string {
	if len(connStr) < 20 {
		return "***"
	}
	return connStr[:20] + "..." + connStr[len(connStr)-10:]
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	if val, err := strconv.ParseInt(os.Getenv(key), 10, 64); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return val
	}
	return defaultVal
}

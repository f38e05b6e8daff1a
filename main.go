package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campusconnect/config"
	"campusconnect/db"
	"campusconnect/infrastructure/kv"
	"campusconnect/infrastructure/postgres"
	infraredis "campusconnect/infrastructure/redis"
	"campusconnect/pkg/logger"
	"campusconnect/pkg/metrics"
	"campusconnect/server"
	"campusconnect/server/handlers"
	"campusconnect/server/middleware/limiter"
	"campusconnect/services/portal"
	"campusconnect/services/querycache"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application failed: %v", err)
	}
}

// backend is the storage the snapshot store runs on, plus what main needs
// to report on it and release it.
type backend struct {
	kv      kv.Backend
	checks  map[string]handlers.Check
	limiter limiter.Storage
	db      *sql.DB
	redis   *redis.Client
	close   func()
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	b := &backend{
		checks: make(map[string]handlers.Check),
		close:  func() {},
	}

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		b.kv = kv.NewMemory()

	case config.BackendFile:
		file, err := kv.NewFile(cfg.Storage.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open data directory: %w", err)
		}
		b.kv = file
		b.checks["data_dir"] = func(context.Context) error {
			_, err := os.Stat(cfg.Storage.DataDir)
			return err
		}

	case config.BackendRedis:
		rdb, err := infraredis.NewClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis client: %w", err)
		}
		b.kv = infraredis.NewBackend(rdb)
		b.redis = rdb
		b.limiter = limiter.NewRedisStorage(rdb, 10*time.Minute)
		b.checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
		b.close = func() { rdb.Close() }

	case config.BackendPostgres:
		sqlDB, err := postgres.Open(ctx, cfg.Database.ConnectionString)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		b.kv = postgres.NewBackend(sqlDB)
		b.db = sqlDB
		b.checks["database"] = sqlDB.PingContext
		b.close = func() { sqlDB.Close() }

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	return b, nil
}

func run() error {
	// Load environment
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log.Println("✓ Configuration loaded and validated")
	cfg.PrintSummary()

	logCfg := logger.DefaultConfig(cfg.Server.LogFile)
	logCfg.Level = logger.ParseLevel(cfg.Server.LogLevel)
	appLog, err := logger.NewWithConfig(logCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLog.Close()
	logger.SetDefault(appLog)

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startCancel()

	b, err := openBackend(startCtx, cfg)
	if err != nil {
		return err
	}
	defer b.close()
	metrics.RegisterCollectors(b.db, b.redis)
	log.Printf("✓ Opened %s storage", cfg.Storage.Backend)

	store := db.NewStore(kv.WithLatency(b.kv, cfg.Storage.Latency), cfg.Storage.Key, appLog)
	svc := portal.NewService(store, querycache.New(cfg.Cache.StaleTime))
	log.Println("✓ Initialized portal service")

	// Create server
	srv, err := server.NewServer(cfg, svc, server.Options{
		Logger:         appLog,
		LimiterStorage: b.limiter,
		Checks:         b.checks,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errChan <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Printf("Received signal: %v. Shutting down gracefully...", sig)
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("✓ Server shutdown complete")
	return nil
}

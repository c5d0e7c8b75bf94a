package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/skateiq/fantasy-agent/internal/agent"
	"github.com/skateiq/fantasy-agent/internal/config"
	"github.com/skateiq/fantasy-agent/internal/handlers"
	"github.com/skateiq/fantasy-agent/internal/logic"
	"github.com/skateiq/fantasy-agent/internal/nhl"
	"github.com/skateiq/fantasy-agent/internal/store"
	"github.com/skateiq/fantasy-agent/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootstrap, _ := zap.NewProduction()
		bootstrap.Fatal("failed to load config", zap.Error(err))
	}

	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	// PostgreSQL
	if err := store.Migrate(cfg.PostgresURL, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	pgPool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pgPool.Close()
	if err := pgPool.Ping(ctx); err != nil {
		logger.Fatal("failed to ping postgres", zap.Error(err))
	}
	logger.Info("connected to postgres")

	// Redis
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal("invalid redis url", zap.Error(err))
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable at startup, cache reads will fall back to live fetches", zap.Error(err))
	}

	// ClickHouse (optional analytics sink)
	var chConn driver.Conn
	if cfg.ClickHouseURL != "" {
		chConn, err = openClickHouse(ctx, cfg.ClickHouseURL, logger)
		if err != nil {
			logger.Warn("clickhouse unavailable, analytics sink disabled", zap.Error(err))
			chConn = nil
		} else {
			defer chConn.Close()
		}
	}

	// Data access
	client := nhl.NewClient(nhl.Config{
		BaseURL:            cfg.NHLAPIBase,
		Timeout:            cfg.APIRequestTimeout,
		MaxRetries:         cfg.APIMaxRetries,
		RateLimitPerSecond: cfg.APIRateLimitPerSecond,
		Logger:             logger,
	})
	cache := logic.NewTieredCache(logic.NewMemoryCache(cfg.CacheMaxSize), logic.NewRedisCache(rdb), time.Minute)
	data := logic.NewDataAccess(logic.DataAccessConfig{
		Provider:    client,
		Cache:       cache,
		ProfileTTL:  cfg.ProfileCacheTTL,
		StatsTTL:    cfg.StatsCacheTTL,
		ScheduleTTL: cfg.ScheduleCacheTTL,
		Logger:      logger,
	})

	var rater logic.MatchupRater = logic.BaselineRater{}
	if cfg.MatchupStrategy == "standings" {
		rater = logic.NewStandingsRater(data)
	}

	composer := logic.NewComposer(logic.ComposerConfig{
		Data:          data,
		Rater:         rater,
		Weights:       logic.ScoringWeights(cfg.Scoring),
		LookAheadDays: cfg.LookAheadDays,
		GameLogLimit:  cfg.GameLogLimit,
		Concurrency:   cfg.AnalysisConcurrency,
		Logger:        logger,
	})

	// Analytics worker pool
	pool := worker.NewPool(worker.PoolConfig{
		WorkerCount:   cfg.WorkerCount,
		QueueSize:     cfg.QueueSize,
		BatchSize:     cfg.BatchSize,
		FlushInterval: cfg.FlushInterval,
		ClickHouse:    chConn,
		Publisher:     worker.NewRedisPublisher(rdb),
		Logger:        logger,
	})
	pool.Start(ctx)

	// Agent
	pgStore := store.NewPostgresStore(pgPool, cfg.MemoryLimit)
	ag := agent.New(agent.Config{
		AgentID:                cfg.AgentID,
		MemoryLimit:            cfg.MemoryLimit,
		SaveDebounce:           cfg.SaveDebounce,
		FlushInterval:          cfg.StateFlushInterval,
		StatsRefreshInterval:   cfg.StatsRefreshInterval,
		RecommendationInterval: cfg.RecommendationInterval,
		RefreshChunkSize:       cfg.RefreshChunkSize,
		GameLogLimit:           cfg.GameLogLimit,
		Store:                  pgStore,
		Recommender:            composer,
		Data:                   data,
		Sink:                   pool,
		Logger:                 logger,
	})
	if err := ag.Initialize(ctx); err != nil {
		logger.Fatal("failed to initialize agent", zap.Error(err))
	}

	h := handlers.New(handlers.Config{
		Agent:           ag,
		Recommendations: pgStore,
		Postgres:        pgPool,
		Redis:           rdb,
		ClickHouse:      chConn,
		Queue:           pool,
		Logger:          logger,
	})
	router := handlers.NewRouter(h, handlers.RouterOptions{
		AllowedOrigins:     cfg.AllowedOrigins,
		RateLimitPerSecond: float64(cfg.RateLimitPerSecond),
		RateLimitBurst:     cfg.RateLimitBurst,
		Logger:             logger,
	})

	addr := ":" + strconv.Itoa(cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	if err := ag.Shutdown(shutdownCtx); err != nil {
		logger.Error("agent shutdown flush failed", zap.Error(err))
	}
	pool.Stop()

	logger.Info("server stopped")
}

func newLogger(cfg *config.Config) *zap.Logger {
	zapCfg := zap.NewProductionConfig()
	if cfg.Env == "development" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	logger, err := zapCfg.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}

func openClickHouse(ctx context.Context, url string, logger *zap.Logger) (driver.Conn, error) {
	opts, err := clickhouse.ParseDSN(url)
	if err != nil {
		return nil, err
	}
	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	if err := worker.EnsureSchema(ctx, conn, logger); err != nil {
		conn.Close()
		return nil, err
	}
	logger.Info("connected to clickhouse")
	return conn, nil
}

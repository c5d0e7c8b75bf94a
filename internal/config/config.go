package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Server
	Port     int
	Env      string
	LogLevel string

	// CORS
	AllowedOrigins []string

	// Database URLs
	PostgresURL   string
	ClickHouseURL string
	RedisURL      string

	// Data provider
	NHLAPIBase            string
	APIRequestTimeout     time.Duration
	APIMaxRetries         int
	APIRateLimitPerSecond float64

	// Data access facade
	LookAheadDays    int
	GameLogLimit     int
	ProfileCacheTTL  time.Duration
	StatsCacheTTL    time.Duration
	ScheduleCacheTTL time.Duration
	CacheMaxSize     int
	MatchupStrategy  string

	// Agent
	AgentID                string
	MemoryLimit            int
	SaveDebounce           time.Duration
	StateFlushInterval     time.Duration
	StatsRefreshInterval   time.Duration
	RecommendationInterval time.Duration
	RefreshChunkSize       int
	AnalysisConcurrency    int

	// Scoring
	Scoring Scoring

	// Analytics worker pool
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration

	// Rate limiting
	RateLimitPerSecond int
	RateLimitBurst     int
}

// Scoring holds per-stat fantasy point weights.
type Scoring struct {
	Goal             float64 `yaml:"goal"`
	Assist           float64 `yaml:"assist"`
	Shot             float64 `yaml:"shot"`
	Hit              float64 `yaml:"hit"`
	Block            float64 `yaml:"block"`
	PlusMinus        float64 `yaml:"plus_minus"`
	PowerPlayPoint   float64 `yaml:"power_play_point"`
	ShorthandedPoint float64 `yaml:"shorthanded_point"`
}

// DefaultScoring is the standard points-league weighting.
func DefaultScoring() Scoring {
	return Scoring{
		Goal:      3,
		Assist:    2,
		Shot:      0.3,
		Hit:       0.2,
		Block:     0.2,
		PlusMinus: 0.5,
	}
}

// fileOverlay is the optional YAML file layered between defaults and env.
type fileOverlay struct {
	NHLAPIBase             string   `yaml:"nhl_api_base"`
	LookAheadDays          int      `yaml:"lookahead_days"`
	GameLogLimit           int      `yaml:"game_log_limit"`
	MatchupStrategy        string   `yaml:"matchup_strategy"`
	AgentID                string   `yaml:"agent_id"`
	MemoryLimit            int      `yaml:"memory_limit"`
	SaveDebounce           string   `yaml:"save_debounce"`
	StateFlushInterval     string   `yaml:"state_flush_interval"`
	StatsRefreshInterval   string   `yaml:"stats_refresh_interval"`
	RecommendationInterval string   `yaml:"recommendation_interval"`
	RefreshChunkSize       int      `yaml:"refresh_chunk_size"`
	Scoring                *Scoring `yaml:"scoring"`
}

// Load loads configuration from environment variables.
// A .env file is read first when present, then the YAML file named by
// AGENT_CONFIG_FILE, and finally the process environment wins.
// It returns an error if critical configuration is missing.
func Load() (*Config, error) {
	envFile := getEnv("AGENT_ENV_FILE", ".env")
	_ = godotenv.Load(envFile)

	cfg := defaults()

	if path := os.Getenv("AGENT_CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnvInt("PORT", cfg.Port)
	cfg.Env = getEnv("ENV", cfg.Env)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	cfg.NHLAPIBase = strings.TrimRight(getEnv("NHL_API_BASE", cfg.NHLAPIBase), "/")
	cfg.APIRequestTimeout = getEnvDuration("API_REQUEST_TIMEOUT", cfg.APIRequestTimeout)
	cfg.APIMaxRetries = getEnvInt("API_MAX_RETRIES", cfg.APIMaxRetries)
	cfg.APIRateLimitPerSecond = getEnvFloat("API_RATE_LIMIT_PER_SECOND", cfg.APIRateLimitPerSecond)

	cfg.LookAheadDays = getEnvInt("LOOKAHEAD_DAYS", cfg.LookAheadDays)
	cfg.GameLogLimit = getEnvInt("GAME_LOG_LIMIT", cfg.GameLogLimit)
	cfg.ProfileCacheTTL = getEnvDuration("CACHE_TTL", cfg.ProfileCacheTTL)
	cfg.StatsCacheTTL = getEnvDuration("STATS_CACHE_TTL", cfg.StatsCacheTTL)
	cfg.ScheduleCacheTTL = getEnvDuration("SCHEDULE_CACHE_TTL", cfg.ScheduleCacheTTL)
	cfg.CacheMaxSize = getEnvInt("CACHE_MAX_SIZE", cfg.CacheMaxSize)
	cfg.MatchupStrategy = getEnv("MATCHUP_STRATEGY", cfg.MatchupStrategy)

	cfg.AgentID = getEnv("AGENT_ID", cfg.AgentID)
	cfg.MemoryLimit = getEnvInt("MEMORY_LIMIT", cfg.MemoryLimit)
	cfg.SaveDebounce = getEnvDuration("SAVE_DEBOUNCE", cfg.SaveDebounce)
	cfg.StateFlushInterval = getEnvDuration("STATE_FLUSH_INTERVAL", cfg.StateFlushInterval)
	cfg.StatsRefreshInterval = getEnvDuration("STATS_REFRESH_INTERVAL", cfg.StatsRefreshInterval)
	cfg.RecommendationInterval = getEnvDuration("RECOMMENDATION_INTERVAL", cfg.RecommendationInterval)
	cfg.RefreshChunkSize = getEnvInt("REFRESH_CHUNK_SIZE", cfg.RefreshChunkSize)
	cfg.AnalysisConcurrency = getEnvInt("ANALYSIS_CONCURRENCY", cfg.AnalysisConcurrency)

	cfg.WorkerCount = getEnvInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.QueueSize = getEnvInt("QUEUE_SIZE", cfg.QueueSize)
	cfg.BatchSize = getEnvInt("BATCH_SIZE", cfg.BatchSize)
	cfg.FlushInterval = getEnvDuration("FLUSH_INTERVAL", cfg.FlushInterval)

	cfg.RateLimitPerSecond = getEnvInt("RATE_LIMIT_PER_SECOND", cfg.RateLimitPerSecond)
	cfg.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", cfg.RateLimitBurst)

	// CORS
	origins := getEnv("ALLOWED_ORIGINS", "http://localhost:3000")
	rawOrigins := strings.Split(origins, ",")
	for _, o := range rawOrigins {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	// Critical configuration - fail if missing
	var err error
	if cfg.PostgresURL, err = getEnvRequired("POSTGRES_URL"); err != nil {
		return nil, err
	}
	if cfg.RedisURL, err = getEnvRequired("REDIS_URL"); err != nil {
		return nil, err
	}
	// ClickHouse is optional; the analytics sink is disabled without it.
	cfg.ClickHouseURL = os.Getenv("CLICKHOUSE_URL")

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Port:     8080,
		Env:      "development",
		LogLevel: "info",

		NHLAPIBase:            "https://api-web.nhle.com/v1",
		APIRequestTimeout:     15 * time.Second,
		APIMaxRetries:         3,
		APIRateLimitPerSecond: 5,

		LookAheadDays:    7,
		GameLogLimit:     10,
		ProfileCacheTTL:  6 * time.Hour,
		StatsCacheTTL:    time.Hour,
		ScheduleCacheTTL: time.Hour,
		CacheMaxSize:     1000,
		MatchupStrategy:  "baseline",

		AgentID:                "hockey-agent",
		MemoryLimit:            1000,
		SaveDebounce:           time.Second,
		StateFlushInterval:     30 * time.Second,
		StatsRefreshInterval:   time.Hour,
		RecommendationInterval: 6 * time.Hour,
		RefreshChunkSize:       5,
		AnalysisConcurrency:    8,

		Scoring: DefaultScoring(),

		WorkerCount:   2,
		QueueSize:     1000,
		BatchSize:     200,
		FlushInterval: 5 * time.Second,

		RateLimitPerSecond: 100,
		RateLimitBurst:     200,
	}
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var o fileOverlay
	if err := yaml.Unmarshal(raw, &o); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if o.NHLAPIBase != "" {
		c.NHLAPIBase = o.NHLAPIBase
	}
	if o.LookAheadDays > 0 {
		c.LookAheadDays = o.LookAheadDays
	}
	if o.GameLogLimit > 0 {
		c.GameLogLimit = o.GameLogLimit
	}
	if o.MatchupStrategy != "" {
		c.MatchupStrategy = o.MatchupStrategy
	}
	if o.AgentID != "" {
		c.AgentID = o.AgentID
	}
	if o.MemoryLimit > 0 {
		c.MemoryLimit = o.MemoryLimit
	}
	if o.RefreshChunkSize > 0 {
		c.RefreshChunkSize = o.RefreshChunkSize
	}
	durations := []struct {
		raw string
		dst *time.Duration
	}{
		{o.SaveDebounce, &c.SaveDebounce},
		{o.StateFlushInterval, &c.StateFlushInterval},
		{o.StatsRefreshInterval, &c.StatsRefreshInterval},
		{o.RecommendationInterval, &c.RecommendationInterval},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("parse config file %s: %w", path, err)
		}
		*d.dst = parsed
	}
	if o.Scoring != nil {
		c.Scoring = *o.Scoring
	}
	return nil
}

func (c *Config) validate() error {
	if c.LookAheadDays <= 0 {
		return fmt.Errorf("LOOKAHEAD_DAYS must be positive, got %d", c.LookAheadDays)
	}
	if c.MemoryLimit <= 0 {
		return fmt.Errorf("MEMORY_LIMIT must be positive, got %d", c.MemoryLimit)
	}
	switch c.MatchupStrategy {
	case "baseline", "standings":
	default:
		return fmt.Errorf("unknown MATCHUP_STRATEGY %q", c.MatchupStrategy)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvRequired(key string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("missing required environment variable: %s", key)
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

package logic

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/skateiq/fantasy-agent/internal/models"
)

// DataProvider is the upstream hockey data source. Implementations return an
// error wrapping models.ErrDataUnavailable when the provider has no data.
type DataProvider interface {
	GetPlayer(ctx context.Context, playerID int64) (*models.PlayerProfile, error)
	GetStats(ctx context.Context, playerID int64, windowDays int) (*models.SeasonStats, error)
	GetGameLog(ctx context.Context, playerID int64, limit int) ([]models.GameLogEntry, error)
	GetTeamSchedule(ctx context.Context, teamAbbrev string, daysAhead int) ([]models.UpcomingGame, error)
	GetStandings(ctx context.Context) ([]models.TeamDefense, error)
}

// Cache is an advisory key/value store. A miss or any error means the caller
// fetches live.
type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// RedisClient defines the subset of the Redis client the cache uses
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
}

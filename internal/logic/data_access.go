package logic

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/skateiq/fantasy-agent/internal/models"
)

// Prometheus metrics
var (
	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fantasy_agent_fetch_duration_seconds",
		Help:    "Latency of live data provider calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	fetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fantasy_agent_fetch_failures_total",
		Help: "Data provider calls that returned no usable data",
	}, []string{"kind"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fantasy_agent_cache_lookups_total",
		Help: "Facade cache lookups by kind and result",
	}, []string{"kind", "result"})
)

const (
	kindProfile   = "profile"
	kindStats     = "stats"
	kindGameLog   = "game_log"
	kindSchedule  = "schedule"
	kindStandings = "standings"
)

// DataAccessConfig configures the facade.
type DataAccessConfig struct {
	Provider    DataProvider
	Cache       Cache
	ProfileTTL  time.Duration
	StatsTTL    time.Duration
	ScheduleTTL time.Duration

	// FetchTimeout bounds one shared provider call.
	FetchTimeout time.Duration
	Logger       *zap.Logger
}

// DataAccess is the single entry point for player data. Every failure is
// reported as models.ErrDataUnavailable; the cache is advisory and a miss
// always goes to the provider.
type DataAccess struct {
	provider     DataProvider
	cache        Cache
	profileTTL   time.Duration
	statsTTL     time.Duration
	scheduleTTL  time.Duration
	fetchTimeout time.Duration
	logger       *zap.SugaredLogger
	group        singleflight.Group

	mu    sync.RWMutex
	known map[int64]struct{}
}

func NewDataAccess(cfg DataAccessConfig) *DataAccess {
	if cfg.ProfileTTL <= 0 {
		cfg.ProfileTTL = 6 * time.Hour
	}
	if cfg.StatsTTL <= 0 {
		cfg.StatsTTL = time.Hour
	}
	if cfg.ScheduleTTL <= 0 {
		cfg.ScheduleTTL = time.Hour
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}
	if cfg.Cache == nil {
		cfg.Cache = NewMemoryCache(1000)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &DataAccess{
		provider:     cfg.Provider,
		cache:        cfg.Cache,
		profileTTL:   cfg.ProfileTTL,
		statsTTL:     cfg.StatsTTL,
		scheduleTTL:  cfg.ScheduleTTL,
		fetchTimeout: cfg.FetchTimeout,
		logger:       cfg.Logger.Sugar(),
		known:        make(map[int64]struct{}),
	}
}

func playerPrefix(playerID int64) string {
	return "fa:player:" + strconv.FormatInt(playerID, 10) + ":"
}

// FetchProfile returns a player's identity.
func (d *DataAccess) FetchProfile(ctx context.Context, playerID int64) (*models.PlayerProfile, error) {
	key := playerPrefix(playerID) + kindProfile
	p, err := fetchCached(ctx, d, kindProfile, key, d.profileTTL, func(ctx context.Context) (*models.PlayerProfile, error) {
		return d.provider.GetPlayer(ctx, playerID)
	})
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.known[playerID] = struct{}{}
	d.mu.Unlock()
	return p, nil
}

// FetchStats returns season totals, or totals over the trailing windowDays
// when windowDays is positive.
func (d *DataAccess) FetchStats(ctx context.Context, playerID int64, windowDays int) (*models.SeasonStats, error) {
	key := fmt.Sprintf("%s%s:%d", playerPrefix(playerID), kindStats, windowDays)
	return fetchCached(ctx, d, kindStats, key, d.statsTTL, func(ctx context.Context) (*models.SeasonStats, error) {
		return d.provider.GetStats(ctx, playerID, windowDays)
	})
}

// FetchGameLog returns up to limit games, most recent first.
func (d *DataAccess) FetchGameLog(ctx context.Context, playerID int64, limit int) ([]models.GameLogEntry, error) {
	key := fmt.Sprintf("%s%s:%d", playerPrefix(playerID), kindGameLog, limit)
	return fetchCached(ctx, d, kindGameLog, key, d.statsTTL, func(ctx context.Context) ([]models.GameLogEntry, error) {
		return d.provider.GetGameLog(ctx, playerID, limit)
	})
}

// FetchUpcomingGames returns the player's club schedule for the next
// daysAhead days. The player's team comes from the profile.
func (d *DataAccess) FetchUpcomingGames(ctx context.Context, playerID int64, daysAhead int) ([]models.UpcomingGame, error) {
	profile, err := d.FetchProfile(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if profile.TeamAbbrev == "" {
		return nil, fmt.Errorf("%w: player %d has no current team", models.ErrDataUnavailable, playerID)
	}
	key := fmt.Sprintf("%s%s:%s:%d", playerPrefix(playerID), kindSchedule, profile.TeamAbbrev, daysAhead)
	return fetchCached(ctx, d, kindSchedule, key, d.scheduleTTL, func(ctx context.Context) ([]models.UpcomingGame, error) {
		return d.provider.GetTeamSchedule(ctx, profile.TeamAbbrev, daysAhead)
	})
}

// FetchStandings returns per-club scoring records.
func (d *DataAccess) FetchStandings(ctx context.Context) ([]models.TeamDefense, error) {
	return fetchCached(ctx, d, kindStandings, "fa:standings", d.scheduleTTL, func(ctx context.Context) ([]models.TeamDefense, error) {
		return d.provider.GetStandings(ctx)
	})
}

// Invalidate drops every cached entry for a player.
func (d *DataAccess) Invalidate(ctx context.Context, playerID int64) error {
	d.mu.Lock()
	delete(d.known, playerID)
	d.mu.Unlock()
	return d.cache.DeletePrefix(ctx, playerPrefix(playerID))
}

// KnownPlayers is the number of distinct players whose profile has been
// resolved since startup.
func (d *DataAccess) KnownPlayers() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.known)
}

func fetchCached[T any](ctx context.Context, d *DataAccess, kind, key string, ttl time.Duration, call func(context.Context) (T, error)) (T, error) {
	var cached T
	if err := d.cache.Get(ctx, key, &cached); err == nil {
		cacheLookups.WithLabelValues(kind, "hit").Inc()
		return cached, nil
	} else if !errors.Is(err, ErrCacheMiss) {
		d.logger.Warnw("Cache read failed, fetching live", "key", key, "error", err)
	}
	cacheLookups.WithLabelValues(kind, "miss").Inc()

	// The flight outlives any single caller; each caller waits on its own ctx.
	ch := d.group.DoChan(key, func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.fetchTimeout)
		defer cancel()

		start := time.Now()
		res, err := call(fctx)
		elapsed := time.Since(start)
		fetchDuration.WithLabelValues(kind).Observe(elapsed.Seconds())

		if err != nil {
			fetchFailures.WithLabelValues(kind).Inc()
			d.logger.Warnw("Data fetch failed", "kind", kind, "key", key, "duration", elapsed, "error", err)
			// The cause is flattened so transport errors never leak to callers.
			return nil, fmt.Errorf("%w: %s %s: %v", models.ErrDataUnavailable, kind, key, err)
		}
		d.logger.Debugw("Data fetched", "kind", kind, "key", key, "duration", elapsed)

		if err := d.cache.Set(fctx, key, res, ttl); err != nil {
			d.logger.Warnw("Cache write failed", "key", key, "error", err)
		}
		return res, nil
	})

	var v interface{}
	select {
	case r := <-ch:
		if r.Err != nil {
			var zero T
			return zero, r.Err
		}
		v = r.Val
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("%w: %s %s: %v", models.ErrDataUnavailable, kind, key, ctx.Err())
	}
	return v.(T), nil
}

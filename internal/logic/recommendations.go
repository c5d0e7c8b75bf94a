package logic

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/skateiq/fantasy-agent/internal/models"
)

// PlayerData is the read surface the composer needs from the data facade.
type PlayerData interface {
	FetchProfile(ctx context.Context, playerID int64) (*models.PlayerProfile, error)
	FetchStats(ctx context.Context, playerID int64, windowDays int) (*models.SeasonStats, error)
	FetchGameLog(ctx context.Context, playerID int64, limit int) ([]models.GameLogEntry, error)
	FetchUpcomingGames(ctx context.Context, playerID int64, daysAhead int) ([]models.UpcomingGame, error)
}

const (
	// MaxStarters is the number of active lineup slots.
	MaxStarters = 9

	coldStreakMinGames = 3
	coldStreakWindow   = 5
	heavyScheduleGames = 4
)

// ComposerConfig configures the recommendation composer.
type ComposerConfig struct {
	Data          PlayerData
	Rater         MatchupRater
	Weights       ScoringWeights
	LookAheadDays int
	GameLogLimit  int
	Concurrency   int
	Logger        *zap.Logger
}

// Composer analyzes players and assembles team recommendations.
type Composer struct {
	data          PlayerData
	rater         MatchupRater
	weights       ScoringWeights
	lookAheadDays int
	gameLogLimit  int
	concurrency   int
	logger        *zap.SugaredLogger
	now           func() time.Time
}

func NewComposer(cfg ComposerConfig) *Composer {
	if cfg.Rater == nil {
		cfg.Rater = BaselineRater{}
	}
	if cfg.Weights == (ScoringWeights{}) {
		cfg.Weights = DefaultScoringWeights
	}
	if cfg.LookAheadDays <= 0 {
		cfg.LookAheadDays = 7
	}
	if cfg.GameLogLimit <= 0 {
		cfg.GameLogLimit = 10
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Composer{
		data:          cfg.Data,
		rater:         cfg.Rater,
		weights:       cfg.Weights,
		lookAheadDays: cfg.LookAheadDays,
		gameLogLimit:  cfg.GameLogLimit,
		concurrency:   cfg.Concurrency,
		logger:        cfg.Logger.Sugar(),
		now:           time.Now,
	}
}

// LookAheadDays is the configured schedule window.
func (c *Composer) LookAheadDays() int { return c.lookAheadDays }

// AnalyzePlayer runs the full single-player pipeline. Only a missing profile
// fails the player; missing stats, log or schedule are treated as empty.
func (c *Composer) AnalyzePlayer(ctx context.Context, playerID int64) (*models.PlayerAnalysis, error) {
	var (
		profile  *models.PlayerProfile
		stats    *models.SeasonStats
		gameLog  []models.GameLogEntry
		upcoming []models.UpcomingGame
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := c.data.FetchProfile(gctx, playerID)
		if err != nil {
			return err
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		s, err := c.data.FetchStats(gctx, playerID, 0)
		if err != nil {
			c.logger.Warnw("Stats unavailable, using empty stats", "player", playerID, "error", err)
			return nil
		}
		stats = s
		return nil
	})
	g.Go(func() error {
		l, err := c.data.FetchGameLog(gctx, playerID, c.gameLogLimit)
		if err != nil {
			c.logger.Warnw("Game log unavailable, using empty log", "player", playerID, "error", err)
			return nil
		}
		gameLog = l
		return nil
	})
	g.Go(func() error {
		u, err := c.data.FetchUpcomingGames(gctx, playerID, c.lookAheadDays)
		if err != nil {
			c.logger.Warnw("Schedule unavailable, assuming no games", "player", playerID, "error", err)
			return nil
		}
		upcoming = u
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analyze player %d: %w", playerID, err)
	}

	if stats == nil {
		stats = &models.SeasonStats{PlayerID: playerID}
	}
	if gameLog == nil {
		gameLog = []models.GameLogEntry{}
	}
	if upcoming == nil {
		upcoming = []models.UpcomingGame{}
	}

	trend := AnalyzeTrend(gameLog, c.weights)
	matchups := RateMatchups(ctx, c.rater, *profile, upcoming)
	projection := Project(ProjectionInput{
		Profile:       *profile,
		Stats:         *stats,
		GameLogSize:   len(gameLog),
		Trend:         trend,
		Matchups:      matchups,
		UpcomingGames: len(upcoming),
		LookAheadDays: c.lookAheadDays,
	})

	return &models.PlayerAnalysis{
		Profile:    *profile,
		Stats:      *stats,
		GameLog:    gameLog,
		Upcoming:   upcoming,
		Trend:      trend,
		Matchups:   matchups,
		Projection: projection,
	}, nil
}

// Recommend analyzes every roster player concurrently and composes the
// result. Players that fail are logged and left out.
func (c *Composer) Recommend(ctx context.Context, userID string, playerIDs []int64) (*models.TeamRecommendations, error) {
	analyses := make([]*models.PlayerAnalysis, len(playerIDs))
	failed := make([]bool, len(playerIDs))

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, id := range playerIDs {
		g.Go(func() error {
			a, err := c.AnalyzePlayer(ctx, id)
			if err != nil {
				c.logger.Warnw("Player analysis failed, omitting from recommendations",
					"user", userID, "player", id, "error", err)
				failed[i] = true
				return nil
			}
			analyses[i] = a
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec := &models.TeamRecommendations{
		UserID:        userID,
		PlayerAlerts:  []models.PlayerAlert{},
		WaiverTargets: []models.TargetSuggestion{},
		TradeTargets:  []models.TargetSuggestion{},
		GeneratedAt:   c.now().UTC(),
	}

	ok := make([]*models.PlayerAnalysis, 0, len(analyses))
	for i, a := range analyses {
		if failed[i] || a == nil {
			rec.FailedPlayers = append(rec.FailedPlayers, playerIDs[i])
			continue
		}
		ok = append(ok, a)
	}

	projections := make([]models.PlayerProjection, 0, len(ok))
	for _, a := range ok {
		projections = append(projections, a.Projection)
	}
	SortProjections(projections)

	rec.StartSit = projections
	rec.LineupOptimization = OptimizeLineup(projections)
	for _, a := range ok {
		rec.PlayerAlerts = append(rec.PlayerAlerts, Alerts(a)...)
	}

	c.logger.Infow("Recommendations composed",
		"user", userID,
		"players", len(playerIDs),
		"analyzed", len(ok),
		"failed", len(rec.FailedPlayers),
		"alerts", len(rec.PlayerAlerts),
	)
	return rec, nil
}

// SortProjections orders by projected points, then confidence, both
// descending, then player id ascending.
func SortProjections(p []models.PlayerProjection) {
	sort.SliceStable(p, func(i, j int) bool {
		if p[i].ProjectedPoints != p[j].ProjectedPoints {
			return p[i].ProjectedPoints > p[j].ProjectedPoints
		}
		if p[i].Confidence != p[j].Confidence {
			return p[i].Confidence > p[j].Confidence
		}
		return p[i].PlayerID < p[j].PlayerID
	})
}

// OptimizeLineup starts the top MaxStarters of an already ranked list.
func OptimizeLineup(ranked []models.PlayerProjection) models.LineupOptimization {
	n := min(len(ranked), MaxStarters)
	lineup := models.LineupOptimization{
		Starters: append([]models.PlayerProjection{}, ranked[:n]...),
		Bench:    append([]models.PlayerProjection{}, ranked[n:]...),
	}
	for _, p := range lineup.Starters {
		lineup.ProjectedPoints += p.ProjectedPoints
	}
	return lineup
}

// Alerts derives the roster alerts for one analyzed player.
func Alerts(a *models.PlayerAnalysis) []models.PlayerAlert {
	var alerts []models.PlayerAlert
	name := a.Profile.FullName()
	id := a.Profile.PlayerID

	if n := len(a.GameLog); n >= coldStreakMinGames {
		window := min(n, coldStreakWindow)
		points := 0
		for _, g := range a.GameLog[:window] {
			points += g.Goals + g.Assists
		}
		if points == 0 {
			alerts = append(alerts, models.PlayerAlert{
				PlayerID:   id,
				PlayerName: name,
				Type:       models.AlertColdStreak,
				Message:    fmt.Sprintf("%s has no points in the last %d games", name, window),
			})
		}
	}

	switch games := len(a.Upcoming); {
	case games == 0:
		alerts = append(alerts, models.PlayerAlert{
			PlayerID:   id,
			PlayerName: name,
			Type:       models.AlertNoGames,
			Message:    fmt.Sprintf("%s has no games scheduled", name),
		})
	case games >= heavyScheduleGames:
		alerts = append(alerts, models.PlayerAlert{
			PlayerID:   id,
			PlayerName: name,
			Type:       models.AlertHeavySchedule,
			Message:    fmt.Sprintf("%s plays %d games in the window", name, games),
		})
	}
	return alerts
}

package logic

import (
	"context"
	"strings"

	"github.com/skateiq/fantasy-agent/internal/models"
)

// MatchupRater scores one upcoming game for a player on a 0-100 scale.
type MatchupRater interface {
	Rate(ctx context.Context, p models.PlayerProfile, g models.UpcomingGame) float64
}

// BaselineRater is used when no opponent defensive data is available. It only
// distinguishes home from road games and always stays within [50, 70).
type BaselineRater struct{}

const (
	baselineRating    = 60.0
	baselineHomeDelta = 5.0
)

func (BaselineRater) Rate(_ context.Context, _ models.PlayerProfile, g models.UpcomingGame) float64 {
	if g.Home {
		return baselineRating + baselineHomeDelta
	}
	return baselineRating - baselineHomeDelta
}

// StandingsSource supplies league standings.
type StandingsSource interface {
	FetchStandings(ctx context.Context) ([]models.TeamDefense, error)
}

// StandingsRater rates skaters by how many goals the opponent concedes and
// goalies by how many the opponent scores, both relative to league average.
type StandingsRater struct {
	source   StandingsSource
	fallback MatchupRater
}

// NewStandingsRater falls back to BaselineRater whenever standings are
// unavailable or the opponent is not listed.
func NewStandingsRater(source StandingsSource) *StandingsRater {
	return &StandingsRater{source: source, fallback: BaselineRater{}}
}

const standingsHomeBonus = 2.5

func (r *StandingsRater) Rate(ctx context.Context, p models.PlayerProfile, g models.UpcomingGame) float64 {
	teams, err := r.source.FetchStandings(ctx)
	if err != nil || len(teams) == 0 {
		return r.fallback.Rate(ctx, p, g)
	}

	var opp *models.TeamDefense
	var leagueGA, leagueGF float64
	counted := 0
	for i := range teams {
		t := &teams[i]
		if t.GamesPlayed <= 0 {
			continue
		}
		leagueGA += t.GoalsAgainstPerGame()
		leagueGF += t.GoalsForPerGame()
		counted++
		if strings.EqualFold(t.TeamAbbrev, g.Opponent) {
			opp = t
		}
	}
	if opp == nil || counted == 0 {
		return r.fallback.Rate(ctx, p, g)
	}
	leagueGA /= float64(counted)
	leagueGF /= float64(counted)

	var rel float64
	if p.Position.IsGoalie() {
		if leagueGF == 0 {
			return r.fallback.Rate(ctx, p, g)
		}
		rel = (leagueGF - opp.GoalsForPerGame()) / leagueGF
	} else {
		if leagueGA == 0 {
			return r.fallback.Rate(ctx, p, g)
		}
		rel = (opp.GoalsAgainstPerGame() - leagueGA) / leagueGA
	}

	rating := 50 + rel*100
	if g.Home {
		rating += standingsHomeBonus
	}
	return clamp(rating, 0, 100)
}

// MatchupQualityFor buckets a rating.
func MatchupQualityFor(rating float64) models.MatchupQuality {
	switch {
	case rating >= 70:
		return models.MatchupExcellent
	case rating >= 60:
		return models.MatchupGood
	case rating >= 40:
		return models.MatchupAverage
	case rating >= 30:
		return models.MatchupDifficult
	default:
		return models.MatchupVeryDifficult
	}
}

const (
	favorableRating = 60.0
	difficultRating = 40.0
)

// RateMatchups rates every game and aggregates the results. With no games the
// average rating is 0.
func RateMatchups(ctx context.Context, rater MatchupRater, p models.PlayerProfile, games []models.UpcomingGame) models.MatchupSummary {
	summary := models.MatchupSummary{Assessments: make([]models.MatchupAssessment, 0, len(games))}
	if len(games) == 0 {
		return summary
	}

	var total float64
	for _, g := range games {
		rating := rater.Rate(ctx, p, g)
		summary.Assessments = append(summary.Assessments, models.MatchupAssessment{
			Game:    g,
			Rating:  rating,
			Quality: MatchupQualityFor(rating),
		})
		total += rating
		if rating > favorableRating {
			summary.FavorableCount++
		}
		if rating < difficultRating {
			summary.DifficultCount++
		}
	}
	summary.AverageRating = total / float64(len(games))
	return summary
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

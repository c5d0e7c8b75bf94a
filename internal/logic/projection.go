package logic

import (
	"fmt"

	"github.com/skateiq/fantasy-agent/internal/models"
)

// ProjectionInput is everything the projection calculator needs for one
// player over the look-ahead window.
type ProjectionInput struct {
	Profile       models.PlayerProfile
	Stats         models.SeasonStats
	GameLogSize   int
	Trend         models.TrendResult
	Matchups      models.MatchupSummary
	UpcomingGames int
	LookAheadDays int
}

// Project computes projected points, confidence, verdict and reasoning.
// Reasoning lines always appear in the order trend, schedule, matchups,
// sample size.
func Project(in ProjectionInput) models.PlayerProjection {
	out := models.PlayerProjection{
		PlayerID:       in.Profile.PlayerID,
		PlayerName:     in.Profile.FullName(),
		Position:       in.Profile.Position,
		TeamAbbrev:     in.Profile.TeamAbbrev,
		UpcomingGames:  in.UpcomingGames,
		Trend:          in.Trend.Classification,
		AverageMatchup: in.Matchups.AverageRating,
	}

	if in.UpcomingGames > 0 {
		matchupMult := 0.8 + in.Matchups.AverageRating/100
		out.ProjectedPoints = in.Stats.PointsPerGame() *
			float64(in.UpcomingGames) *
			TrendMultiplier(in.Trend.Classification) *
			matchupMult
	}

	out.Confidence = confidence(in)
	out.Verdict = verdict(in.UpcomingGames, out.ProjectedPoints, out.Confidence)
	out.Reasoning = reasoning(in)
	return out
}

func confidence(in ProjectionInput) float64 {
	c := 50.0

	switch gp := in.Stats.GamesPlayed; {
	case gp > 40:
		c += 20
	case gp > 20:
		c += 10
	case gp < 5:
		c -= 20
	}

	switch {
	case in.GameLogSize >= 10:
		c += 15
	case in.GameLogSize < 3:
		c -= 15
	}

	switch {
	case in.UpcomingGames >= 3:
		c += 15
	case in.UpcomingGames == 0:
		c -= 30
	}

	return clamp(c, 0, 100)
}

func verdict(upcoming int, projected, confidence float64) models.Verdict {
	switch {
	case upcoming == 0:
		return models.VerdictSit
	case projected > 3 && confidence > 60:
		return models.VerdictStart
	case projected < 1.5 || confidence < 40:
		return models.VerdictSit
	default:
		return models.VerdictConsider
	}
}

func reasoning(in ProjectionInput) []string {
	lines := make([]string, 0, 5)

	switch in.Trend.Classification {
	case models.TrendHot:
		lines = append(lines, fmt.Sprintf("Hot streak: %.1f fantasy points per game over the last 3 games", in.Trend.RecentAverage))
	case models.TrendCold:
		lines = append(lines, fmt.Sprintf("Cold streak: %.1f fantasy points per game over the last 3 games", in.Trend.RecentAverage))
	case models.TrendStable:
		lines = append(lines, fmt.Sprintf("Steady form: %.1f fantasy points per game over the last 3 games", in.Trend.RecentAverage))
	default:
		lines = append(lines, "No recent game log available")
	}

	switch in.UpcomingGames {
	case 0:
		lines = append(lines, fmt.Sprintf("No games scheduled in the next %d days", in.LookAheadDays))
	case 1:
		lines = append(lines, fmt.Sprintf("1 game in the next %d days", in.LookAheadDays))
	default:
		lines = append(lines, fmt.Sprintf("%d games in the next %d days", in.UpcomingGames, in.LookAheadDays))
	}

	if in.Matchups.FavorableCount > 0 {
		lines = append(lines, fmt.Sprintf("%d favorable matchup(s)", in.Matchups.FavorableCount))
	}
	if in.Matchups.DifficultCount > 0 {
		lines = append(lines, fmt.Sprintf("%d difficult matchup(s)", in.Matchups.DifficultCount))
	}

	if in.Stats.GamesPlayed < 5 {
		lines = append(lines, fmt.Sprintf("Limited season sample (%d games played)", in.Stats.GamesPlayed))
	}
	return lines
}

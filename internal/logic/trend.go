package logic

import "github.com/skateiq/fantasy-agent/internal/models"

const (
	shortTrendWindow  = 3
	mediumTrendWindow = 7

	hotThreshold  = 1.2
	coldThreshold = 0.8
)

// AnalyzeTrend classifies recent form from a most-recent-first game log.
// Windows shorter than the log use whatever games exist.
func AnalyzeTrend(log []models.GameLogEntry, w ScoringWeights) models.TrendResult {
	if len(log) == 0 {
		return models.TrendResult{Classification: models.TrendUnknown}
	}

	recent := averageFantasyPoints(log[:min(shortTrendWindow, len(log))], w)
	medium := averageFantasyPoints(log[:min(mediumTrendWindow, len(log))], w)

	res := models.TrendResult{
		RecentAverage: recent,
		MediumAverage: medium,
		SeasonAverage: averageFantasyPoints(log, w),
		GamesSampled:  len(log),
	}

	switch {
	case recent > medium*hotThreshold:
		res.Classification = models.TrendHot
		res.Score = recent * hotThreshold
	case recent < medium*coldThreshold:
		res.Classification = models.TrendCold
		res.Score = recent * coldThreshold
	default:
		res.Classification = models.TrendStable
		res.Score = recent
	}
	return res
}

// TrendMultiplier scales a projection by form.
func TrendMultiplier(c models.TrendClass) float64 {
	switch c {
	case models.TrendHot:
		return 1.15
	case models.TrendCold:
		return 0.85
	default:
		return 1.0
	}
}

package logic

import "github.com/skateiq/fantasy-agent/internal/models"

// ScoringWeights are the per-stat multipliers used to turn a game line into
// fantasy points.
type ScoringWeights struct {
	Goal             float64
	Assist           float64
	Shot             float64
	Hit              float64
	Block            float64
	PlusMinus        float64
	PowerPlayPoint   float64
	ShorthandedPoint float64
}

// DefaultScoringWeights has no power-play or short-handed bonus.
var DefaultScoringWeights = ScoringWeights{
	Goal:      3,
	Assist:    2,
	Shot:      0.3,
	Hit:       0.2,
	Block:     0.2,
	PlusMinus: 0.5,
}

// FantasyPoints scores a single game.
func FantasyPoints(g models.GameLogEntry, w ScoringWeights) float64 {
	return float64(g.Goals)*w.Goal +
		float64(g.Assists)*w.Assist +
		float64(g.Shots)*w.Shot +
		float64(g.Hits)*w.Hit +
		float64(g.Blocks)*w.Block +
		float64(g.PlusMinus)*w.PlusMinus +
		float64(g.PowerPlayPoints)*w.PowerPlayPoint +
		float64(g.ShorthandedPoints)*w.ShorthandedPoint
}

func averageFantasyPoints(games []models.GameLogEntry, w ScoringWeights) float64 {
	if len(games) == 0 {
		return 0
	}
	var sum float64
	for _, g := range games {
		sum += FantasyPoints(g, w)
	}
	return sum / float64(len(games))
}

package models

import "time"

// AlertType identifies a player alert.
type AlertType string

const (
	AlertColdStreak    AlertType = "cold-streak"
	AlertNoGames       AlertType = "no-games"
	AlertHeavySchedule AlertType = "heavy-schedule"
)

// PlayerAlert flags a roster situation worth the user's attention.
type PlayerAlert struct {
	PlayerID   int64     `json:"player_id"`
	PlayerName string    `json:"player_name"`
	Type       AlertType `json:"type"`
	Message    string    `json:"message"`
}

// LineupOptimization is the suggested starter/bench split.
type LineupOptimization struct {
	Starters        []PlayerProjection `json:"starters"`
	Bench           []PlayerProjection `json:"bench"`
	ProjectedPoints float64            `json:"projected_points"`
}

// TargetSuggestion is a waiver or trade candidate.
type TargetSuggestion struct {
	PlayerID int64  `json:"player_id"`
	Reason   string `json:"reason"`
}

// TeamRecommendations is the composed advice for one roster.
type TeamRecommendations struct {
	UserID             string             `json:"user_id,omitempty"`
	StartSit           []PlayerProjection `json:"start_sit"`
	LineupOptimization LineupOptimization `json:"lineup_optimization"`
	PlayerAlerts       []PlayerAlert      `json:"player_alerts"`
	WaiverTargets      []TargetSuggestion `json:"waiver_targets"`
	TradeTargets       []TargetSuggestion `json:"trade_targets"`
	FailedPlayers      []int64            `json:"failed_players,omitempty"`
	GeneratedAt        time.Time          `json:"generated_at"`
}

package models

// TrendClass labels recent form relative to the medium window.
type TrendClass string

const (
	TrendHot     TrendClass = "hot"
	TrendCold    TrendClass = "cold"
	TrendStable  TrendClass = "stable"
	TrendUnknown TrendClass = "unknown"
)

// TrendResult is the output of trend analysis over a game log.
type TrendResult struct {
	Classification TrendClass `json:"classification"`
	Score          float64    `json:"score"`
	RecentAverage  float64    `json:"recent_average"`
	MediumAverage  float64    `json:"medium_average"`
	SeasonAverage  float64    `json:"season_average"`
	GamesSampled   int        `json:"games_sampled"`
}

// MatchupQuality buckets a numeric matchup rating.
type MatchupQuality string

const (
	MatchupExcellent     MatchupQuality = "excellent"
	MatchupGood          MatchupQuality = "good"
	MatchupAverage       MatchupQuality = "average"
	MatchupDifficult     MatchupQuality = "difficult"
	MatchupVeryDifficult MatchupQuality = "very-difficult"
)

// MatchupAssessment rates one upcoming game on a 0-100 scale.
type MatchupAssessment struct {
	Game    UpcomingGame   `json:"game"`
	Rating  float64        `json:"rating"`
	Quality MatchupQuality `json:"quality"`
}

// MatchupSummary aggregates assessments across the look-ahead window.
type MatchupSummary struct {
	Assessments    []MatchupAssessment `json:"assessments"`
	AverageRating  float64             `json:"average_rating"`
	FavorableCount int                 `json:"favorable_count"`
	DifficultCount int                 `json:"difficult_count"`
}

// Verdict is the start/sit recommendation for a player.
type Verdict string

const (
	VerdictStart    Verdict = "start"
	VerdictConsider Verdict = "consider"
	VerdictSit      Verdict = "sit"
)

// PlayerProjection is the per-player output of the projection calculator.
type PlayerProjection struct {
	PlayerID        int64      `json:"player_id"`
	PlayerName      string     `json:"player_name"`
	Position        Position   `json:"position"`
	TeamAbbrev      string     `json:"team_abbrev"`
	ProjectedPoints float64    `json:"projected_points"`
	Confidence      float64    `json:"confidence"`
	Verdict         Verdict    `json:"verdict"`
	Reasoning       []string   `json:"reasoning"`
	UpcomingGames   int        `json:"upcoming_games"`
	Trend           TrendClass `json:"trend"`
	AverageMatchup  float64    `json:"average_matchup"`
}

// PlayerAnalysis bundles everything computed for one player.
type PlayerAnalysis struct {
	Profile    PlayerProfile    `json:"profile"`
	Stats      SeasonStats      `json:"stats"`
	GameLog    []GameLogEntry   `json:"game_log"`
	Upcoming   []UpcomingGame   `json:"upcoming"`
	Trend      TrendResult      `json:"trend"`
	Matchups   MatchupSummary   `json:"matchups"`
	Projection PlayerProjection `json:"projection"`
}

package models

import "time"

// Position is a roster position code as reported by the league.
type Position string

const (
	PositionCenter     Position = "C"
	PositionLeftWing   Position = "L"
	PositionRightWing  Position = "R"
	PositionDefense    Position = "D"
	PositionGoalie     Position = "G"
	PositionUnassigned Position = ""
)

// IsGoalie reports whether the position is a goaltender.
func (p Position) IsGoalie() bool { return p == PositionGoalie }

// PlayerProfile is the stable identity of a player.
type PlayerProfile struct {
	PlayerID      int64    `json:"player_id"`
	FirstName     string   `json:"first_name"`
	LastName      string   `json:"last_name"`
	Position      Position `json:"position"`
	TeamAbbrev    string   `json:"team_abbrev"`
	SweaterNum    int      `json:"sweater_number,omitempty"`
	ShootsCatches string   `json:"shoots_catches,omitempty"`
}

// FullName joins first and last name.
func (p PlayerProfile) FullName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// SeasonStats are aggregate counters over a season or a trailing window.
type SeasonStats struct {
	PlayerID          int64 `json:"player_id"`
	WindowDays        int   `json:"window_days"`
	GamesPlayed       int   `json:"games_played"`
	Goals             int   `json:"goals"`
	Assists           int   `json:"assists"`
	Points            int   `json:"points"`
	PlusMinus         int   `json:"plus_minus"`
	Shots             int   `json:"shots"`
	Hits              int   `json:"hits"`
	Blocks            int   `json:"blocks"`
	PenaltyMinutes    int   `json:"pim"`
	PowerPlayPoints   int   `json:"power_play_points"`
	ShorthandedPoints int   `json:"shorthanded_points"`
}

// PointsPerGame is points over games played, zero when no games were played.
func (s SeasonStats) PointsPerGame() float64 {
	if s.GamesPlayed <= 0 {
		return 0
	}
	return float64(s.Points) / float64(s.GamesPlayed)
}

// GameLogEntry is a single game's per-player counters. Logs are ordered most
// recent first.
type GameLogEntry struct {
	GameID            int64     `json:"game_id"`
	GameDate          time.Time `json:"game_date"`
	Opponent          string    `json:"opponent"`
	Home              bool      `json:"home"`
	Goals             int       `json:"goals"`
	Assists           int       `json:"assists"`
	Shots             int       `json:"shots"`
	Hits              int       `json:"hits"`
	Blocks            int       `json:"blocks"`
	PlusMinus         int       `json:"plus_minus"`
	PenaltyMinutes    int       `json:"pim"`
	PowerPlayPoints   int       `json:"power_play_points"`
	ShorthandedPoints int       `json:"shorthanded_points"`
}

// UpcomingGame is a scheduled game within the look-ahead window.
type UpcomingGame struct {
	GameID    int64     `json:"game_id"`
	StartTime time.Time `json:"start_time"`
	Opponent  string    `json:"opponent"`
	Home      bool      `json:"home"`
}

// TeamDefense summarizes a club's scoring and defensive record, used by
// matchup strategies that have standings data.
type TeamDefense struct {
	TeamAbbrev   string `json:"team_abbrev"`
	GamesPlayed  int    `json:"games_played"`
	GoalsFor     int    `json:"goals_for"`
	GoalsAgainst int    `json:"goals_against"`
}

// GoalsAgainstPerGame returns 0 when the team has not played.
func (t TeamDefense) GoalsAgainstPerGame() float64 {
	if t.GamesPlayed <= 0 {
		return 0
	}
	return float64(t.GoalsAgainst) / float64(t.GamesPlayed)
}

// GoalsForPerGame returns 0 when the team has not played.
func (t TeamDefense) GoalsForPerGame() float64 {
	if t.GamesPlayed <= 0 {
		return 0
	}
	return float64(t.GoalsFor) / float64(t.GamesPlayed)
}

package models

// Wire types for the public league API (api-web.nhle.com/v1). Only the fields
// the agent reads are declared.

// NHLPlayerLanding is the /player/{id}/landing payload.
type NHLPlayerLanding struct {
	PlayerID          int64           `json:"playerId"`
	FirstName         LocalizedString `json:"firstName"`
	LastName          LocalizedString `json:"lastName"`
	Position          string          `json:"position"`
	CurrentTeamAbbrev string          `json:"currentTeamAbbrev"`
	SweaterNumber     FlexInt         `json:"sweaterNumber"`
	ShootsCatches     string          `json:"shootsCatches"`
	FeaturedStats     struct {
		RegularSeason struct {
			SubSeason NHLSeasonTotals `json:"subSeason"`
		} `json:"regularSeason"`
	} `json:"featuredStats"`
}

// NHLSeasonTotals is the season aggregate block of a landing payload.
type NHLSeasonTotals struct {
	GamesPlayed       FlexInt `json:"gamesPlayed"`
	Goals             FlexInt `json:"goals"`
	Assists           FlexInt `json:"assists"`
	Points            FlexInt `json:"points"`
	PlusMinus         FlexInt `json:"plusMinus"`
	Shots             FlexInt `json:"shots"`
	PIM               FlexInt `json:"pim"`
	PowerPlayPoints   FlexInt `json:"powerPlayPoints"`
	ShorthandedPoints FlexInt `json:"shorthandedPoints"`
}

// NHLGameLog is the /player/{id}/game-log/now payload.
type NHLGameLog struct {
	GameLog []NHLGameLogRow `json:"gameLog"`
}

// NHLGameLogRow is one game of a player's log.
type NHLGameLogRow struct {
	GameID            int64   `json:"gameId"`
	GameDate          string  `json:"gameDate"`
	HomeRoadFlag      string  `json:"homeRoadFlag"`
	OpponentAbbrev    string  `json:"opponentAbbrev"`
	Goals             FlexInt `json:"goals"`
	Assists           FlexInt `json:"assists"`
	Points            FlexInt `json:"points"`
	PlusMinus         FlexInt `json:"plusMinus"`
	Shots             FlexInt `json:"shots"`
	Hits              FlexInt `json:"hits"`
	BlockedShots      FlexInt `json:"blockedShots"`
	PIM               FlexInt `json:"pim"`
	PowerPlayPoints   FlexInt `json:"powerPlayPoints"`
	ShorthandedPoints FlexInt `json:"shorthandedPoints"`
}

// NHLSchedule is the /club-schedule-season/{team}/now payload.
type NHLSchedule struct {
	Games []NHLScheduledGame `json:"games"`
}

// NHLScheduledGame is one scheduled or completed club game.
type NHLScheduledGame struct {
	ID           int64  `json:"id"`
	StartTimeUTC string `json:"startTimeUTC"`
	GameState    string `json:"gameState"`
	HomeTeam     struct {
		Abbrev string `json:"abbrev"`
	} `json:"homeTeam"`
	AwayTeam struct {
		Abbrev string `json:"abbrev"`
	} `json:"awayTeam"`
}

// NHLStandings is the /standings/now payload.
type NHLStandings struct {
	Standings []NHLStandingRow `json:"standings"`
}

// NHLStandingRow is one club's standings line.
type NHLStandingRow struct {
	TeamAbbrev  LocalizedString `json:"teamAbbrev"`
	GamesPlayed FlexInt         `json:"gamesPlayed"`
	GoalFor     FlexInt         `json:"goalFor"`
	GoalAgainst FlexInt         `json:"goalAgainst"`
}

package nhl

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/skateiq/fantasy-agent/internal/models"
)

const gameDateLayout = "2006-01-02"

// GetPlayer returns the player's profile from the landing endpoint.
func (c *Client) GetPlayer(ctx context.Context, playerID int64) (*models.PlayerProfile, error) {
	var landing models.NHLPlayerLanding
	if err := c.getJSON(ctx, playerPath(playerID, "/landing"), &landing); err != nil {
		return nil, err
	}
	if landing.PlayerID == 0 {
		return nil, fmt.Errorf("%w: empty landing for player %d", models.ErrDataUnavailable, playerID)
	}
	return &models.PlayerProfile{
		PlayerID:      landing.PlayerID,
		FirstName:     landing.FirstName.String(),
		LastName:      landing.LastName.String(),
		Position:      models.Position(strings.ToUpper(landing.Position)),
		TeamAbbrev:    landing.CurrentTeamAbbrev,
		SweaterNum:    int(landing.SweaterNumber),
		ShootsCatches: landing.ShootsCatches,
	}, nil
}

// GetStats returns season totals when windowDays is zero, otherwise totals
// summed from the game log over the trailing window.
func (c *Client) GetStats(ctx context.Context, playerID int64, windowDays int) (*models.SeasonStats, error) {
	if windowDays > 0 {
		return c.windowStats(ctx, playerID, windowDays)
	}

	var landing models.NHLPlayerLanding
	if err := c.getJSON(ctx, playerPath(playerID, "/landing"), &landing); err != nil {
		return nil, err
	}
	t := landing.FeaturedStats.RegularSeason.SubSeason
	return &models.SeasonStats{
		PlayerID:          playerID,
		GamesPlayed:       int(t.GamesPlayed),
		Goals:             int(t.Goals),
		Assists:           int(t.Assists),
		Points:            int(t.Points),
		PlusMinus:         int(t.PlusMinus),
		Shots:             int(t.Shots),
		PenaltyMinutes:    int(t.PIM),
		PowerPlayPoints:   int(t.PowerPlayPoints),
		ShorthandedPoints: int(t.ShorthandedPoints),
	}, nil
}

func (c *Client) windowStats(ctx context.Context, playerID int64, windowDays int) (*models.SeasonStats, error) {
	log, err := c.GetGameLog(ctx, playerID, 0)
	if err != nil {
		return nil, err
	}
	cutoff := c.now().AddDate(0, 0, -windowDays)

	s := &models.SeasonStats{PlayerID: playerID, WindowDays: windowDays}
	for _, g := range log {
		if g.GameDate.Before(cutoff) {
			continue
		}
		s.GamesPlayed++
		s.Goals += g.Goals
		s.Assists += g.Assists
		s.Points += g.Goals + g.Assists
		s.PlusMinus += g.PlusMinus
		s.Shots += g.Shots
		s.Hits += g.Hits
		s.Blocks += g.Blocks
		s.PenaltyMinutes += g.PenaltyMinutes
		s.PowerPlayPoints += g.PowerPlayPoints
		s.ShorthandedPoints += g.ShorthandedPoints
	}
	return s, nil
}

// GetGameLog returns the current season log, most recent first, truncated to
// limit when limit is positive.
func (c *Client) GetGameLog(ctx context.Context, playerID int64, limit int) ([]models.GameLogEntry, error) {
	var raw models.NHLGameLog
	if err := c.getJSON(ctx, playerPath(playerID, "/game-log/now"), &raw); err != nil {
		return nil, err
	}

	log := make([]models.GameLogEntry, 0, len(raw.GameLog))
	for _, r := range raw.GameLog {
		date, err := time.Parse(gameDateLayout, r.GameDate)
		if err != nil {
			c.logger.Warnw("Skipping game log row with bad date", "player", playerID, "game", r.GameID, "date", r.GameDate)
			continue
		}
		log = append(log, models.GameLogEntry{
			GameID:            r.GameID,
			GameDate:          date,
			Opponent:          r.OpponentAbbrev,
			Home:              r.HomeRoadFlag == "H",
			Goals:             int(r.Goals),
			Assists:           int(r.Assists),
			Shots:             int(r.Shots),
			Hits:              int(r.Hits),
			Blocks:            int(r.BlockedShots),
			PlusMinus:         int(r.PlusMinus),
			PenaltyMinutes:    int(r.PIM),
			PowerPlayPoints:   int(r.PowerPlayPoints),
			ShorthandedPoints: int(r.ShorthandedPoints),
		})
	}

	sort.SliceStable(log, func(i, j int) bool { return log[i].GameDate.After(log[j].GameDate) })
	if limit > 0 && len(log) > limit {
		log = log[:limit]
	}
	return log, nil
}

// GetTeamSchedule returns the club's unplayed games starting within the next
// daysAhead days.
func (c *Client) GetTeamSchedule(ctx context.Context, teamAbbrev string, daysAhead int) ([]models.UpcomingGame, error) {
	var raw models.NHLSchedule
	if err := c.getJSON(ctx, "/club-schedule-season/"+strings.ToUpper(teamAbbrev)+"/now", &raw); err != nil {
		return nil, err
	}

	now := c.now()
	until := now.AddDate(0, 0, daysAhead)
	games := make([]models.UpcomingGame, 0)
	for _, g := range raw.Games {
		start, err := time.Parse(time.RFC3339, g.StartTimeUTC)
		if err != nil || start.Before(now) || !start.Before(until) {
			continue
		}
		if g.GameState != "" && g.GameState != "FUT" && g.GameState != "PRE" {
			continue
		}
		game := models.UpcomingGame{GameID: g.ID, StartTime: start}
		if strings.EqualFold(g.HomeTeam.Abbrev, teamAbbrev) {
			game.Home = true
			game.Opponent = g.AwayTeam.Abbrev
		} else {
			game.Opponent = g.HomeTeam.Abbrev
		}
		games = append(games, game)
	}
	sort.Slice(games, func(i, j int) bool { return games[i].StartTime.Before(games[j].StartTime) })
	return games, nil
}

// GetStandings returns the current league table.
func (c *Client) GetStandings(ctx context.Context) ([]models.TeamDefense, error) {
	var raw models.NHLStandings
	if err := c.getJSON(ctx, "/standings/now", &raw); err != nil {
		return nil, err
	}
	if len(raw.Standings) == 0 {
		return nil, fmt.Errorf("%w: empty standings", models.ErrDataUnavailable)
	}
	teams := make([]models.TeamDefense, 0, len(raw.Standings))
	for _, r := range raw.Standings {
		teams = append(teams, models.TeamDefense{
			TeamAbbrev:   r.TeamAbbrev.String(),
			GamesPlayed:  int(r.GamesPlayed),
			GoalsFor:     int(r.GoalFor),
			GoalsAgainst: int(r.GoalAgainst),
		})
	}
	return teams, nil
}

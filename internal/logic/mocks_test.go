package logic

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/skateiq/fantasy-agent/internal/models"
)

// MockPlayerData implements PlayerData for testing
type MockPlayerData struct {
	FetchProfileFunc       func(ctx context.Context, playerID int64) (*models.PlayerProfile, error)
	FetchStatsFunc         func(ctx context.Context, playerID int64, windowDays int) (*models.SeasonStats, error)
	FetchGameLogFunc       func(ctx context.Context, playerID int64, limit int) ([]models.GameLogEntry, error)
	FetchUpcomingGamesFunc func(ctx context.Context, playerID int64, daysAhead int) ([]models.UpcomingGame, error)
}

func (m *MockPlayerData) FetchProfile(ctx context.Context, playerID int64) (*models.PlayerProfile, error) {
	if m.FetchProfileFunc != nil {
		return m.FetchProfileFunc(ctx, playerID)
	}
	return &models.PlayerProfile{PlayerID: playerID, LastName: fmt.Sprintf("Player%d", playerID), TeamAbbrev: "EDM"}, nil
}

func (m *MockPlayerData) FetchStats(ctx context.Context, playerID int64, windowDays int) (*models.SeasonStats, error) {
	if m.FetchStatsFunc != nil {
		return m.FetchStatsFunc(ctx, playerID, windowDays)
	}
	return &models.SeasonStats{PlayerID: playerID}, nil
}

func (m *MockPlayerData) FetchGameLog(ctx context.Context, playerID int64, limit int) ([]models.GameLogEntry, error) {
	if m.FetchGameLogFunc != nil {
		return m.FetchGameLogFunc(ctx, playerID, limit)
	}
	return nil, nil
}

func (m *MockPlayerData) FetchUpcomingGames(ctx context.Context, playerID int64, daysAhead int) ([]models.UpcomingGame, error) {
	if m.FetchUpcomingGamesFunc != nil {
		return m.FetchUpcomingGamesFunc(ctx, playerID, daysAhead)
	}
	return nil, nil
}

// MockProvider implements DataProvider and counts live calls
type MockProvider struct {
	GetPlayerFunc       func(ctx context.Context, playerID int64) (*models.PlayerProfile, error)
	GetStatsFunc        func(ctx context.Context, playerID int64, windowDays int) (*models.SeasonStats, error)
	GetGameLogFunc      func(ctx context.Context, playerID int64, limit int) ([]models.GameLogEntry, error)
	GetTeamScheduleFunc func(ctx context.Context, teamAbbrev string, daysAhead int) ([]models.UpcomingGame, error)
	GetStandingsFunc    func(ctx context.Context) ([]models.TeamDefense, error)

	mu    sync.Mutex
	calls map[string]int
	total atomic.Int64
}

func (m *MockProvider) record(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[kind]++
	m.total.Add(1)
}

func (m *MockProvider) Calls(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[kind]
}

func (m *MockProvider) GetPlayer(ctx context.Context, playerID int64) (*models.PlayerProfile, error) {
	m.record(kindProfile)
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(ctx, playerID)
	}
	return &models.PlayerProfile{PlayerID: playerID, TeamAbbrev: "EDM"}, nil
}

func (m *MockProvider) GetStats(ctx context.Context, playerID int64, windowDays int) (*models.SeasonStats, error) {
	m.record(kindStats)
	if m.GetStatsFunc != nil {
		return m.GetStatsFunc(ctx, playerID, windowDays)
	}
	return &models.SeasonStats{PlayerID: playerID}, nil
}

func (m *MockProvider) GetGameLog(ctx context.Context, playerID int64, limit int) ([]models.GameLogEntry, error) {
	m.record(kindGameLog)
	if m.GetGameLogFunc != nil {
		return m.GetGameLogFunc(ctx, playerID, limit)
	}
	return []models.GameLogEntry{}, nil
}

func (m *MockProvider) GetTeamSchedule(ctx context.Context, teamAbbrev string, daysAhead int) ([]models.UpcomingGame, error) {
	m.record(kindSchedule)
	if m.GetTeamScheduleFunc != nil {
		return m.GetTeamScheduleFunc(ctx, teamAbbrev, daysAhead)
	}
	return []models.UpcomingGame{}, nil
}

func (m *MockProvider) GetStandings(ctx context.Context) ([]models.TeamDefense, error) {
	m.record(kindStandings)
	if m.GetStandingsFunc != nil {
		return m.GetStandingsFunc(ctx)
	}
	return []models.TeamDefense{}, nil
}

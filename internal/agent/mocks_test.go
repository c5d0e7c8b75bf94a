package agent

import (
	"context"
	"sync"

	"github.com/skateiq/fantasy-agent/internal/models"
)

// MockStore is an in-memory Store with optional failure hooks
type MockStore struct {
	mu      sync.Mutex
	state   *models.AgentState
	memory  []models.AgentMemoryEntry
	teams   map[string]*models.UserTeam
	recs    map[string]*models.TeamRecommendations
	saves   int
	appends int

	SaveUserTeamErr      error
	AppendAgentMemoryErr error
	LoadAgentStateErr    error
}

func NewMockStore() *MockStore {
	return &MockStore{
		teams: make(map[string]*models.UserTeam),
		recs:  make(map[string]*models.TeamRecommendations),
	}
}

func (m *MockStore) LoadAgentState(ctx context.Context, agentID string) (*models.AgentState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadAgentStateErr != nil {
		return nil, m.LoadAgentStateErr
	}
	if m.state == nil {
		return nil, models.NotFoundf("agent %s", agentID)
	}
	s := *m.state
	return &s, nil
}

func (m *MockStore) SaveAgentState(ctx context.Context, state *models.AgentState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := *state
	m.state = &s
	return nil
}

func (m *MockStore) LoadAgentMemory(ctx context.Context, agentID string, limit int) ([]models.AgentMemoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.memory
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return append([]models.AgentMemoryEntry{}, out...), nil
}

func (m *MockStore) AppendAgentMemory(ctx context.Context, entries []models.AgentMemoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendAgentMemoryErr != nil {
		return m.AppendAgentMemoryErr
	}
	m.appends++
	m.memory = append(m.memory, entries...)
	return nil
}

func (m *MockStore) LoadUserTeam(ctx context.Context, userID string) (*models.UserTeam, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teams[userID]
	if !ok {
		return nil, models.NotFoundf("team for %s", userID)
	}
	return t.Clone(), nil
}

func (m *MockStore) SaveUserTeam(ctx context.Context, team *models.UserTeam) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveUserTeamErr != nil {
		return m.SaveUserTeamErr
	}
	m.saves++
	m.teams[team.UserID] = team.Clone()
	return nil
}

func (m *MockStore) SaveUserRecommendations(ctx context.Context, userID string, rec *models.TeamRecommendations) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[userID] = rec
	return nil
}

func (m *MockStore) ListUserIDs(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.teams))
	for id := range m.teams {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *MockStore) setFailures(saveErr, appendErr error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveUserTeamErr = saveErr
	m.AppendAgentMemoryErr = appendErr
}

func (m *MockStore) team(userID string) *models.UserTeam {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.teams[userID]; ok {
		return t.Clone()
	}
	return nil
}

func (m *MockStore) writeCounts() (saves, appends int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves, m.appends
}

func (m *MockStore) memoryLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.memory)
}

func (m *MockStore) savedState() *models.AgentState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil
	}
	s := *m.state
	return &s
}

// MockRecommender implements Recommender for testing
type MockRecommender struct {
	AnalyzePlayerFunc func(ctx context.Context, playerID int64) (*models.PlayerAnalysis, error)
	RecommendFunc     func(ctx context.Context, userID string, playerIDs []int64) (*models.TeamRecommendations, error)
}

func (m *MockRecommender) AnalyzePlayer(ctx context.Context, playerID int64) (*models.PlayerAnalysis, error) {
	if m.AnalyzePlayerFunc != nil {
		return m.AnalyzePlayerFunc(ctx, playerID)
	}
	return &models.PlayerAnalysis{Profile: models.PlayerProfile{PlayerID: playerID}}, nil
}

func (m *MockRecommender) Recommend(ctx context.Context, userID string, playerIDs []int64) (*models.TeamRecommendations, error) {
	if m.RecommendFunc != nil {
		return m.RecommendFunc(ctx, userID, playerIDs)
	}
	return &models.TeamRecommendations{UserID: userID}, nil
}

// MockData implements PlayerData for testing
type MockData struct {
	FetchProfileFunc func(ctx context.Context, playerID int64) (*models.PlayerProfile, error)
	FetchStatsFunc   func(ctx context.Context, playerID int64, windowDays int) (*models.SeasonStats, error)

	mu          sync.Mutex
	invalidated []int64
	statsCalls  int
}

func (m *MockData) FetchProfile(ctx context.Context, playerID int64) (*models.PlayerProfile, error) {
	if m.FetchProfileFunc != nil {
		return m.FetchProfileFunc(ctx, playerID)
	}
	return &models.PlayerProfile{PlayerID: playerID, FirstName: "Connor", LastName: "McDavid", Position: models.PositionCenter}, nil
}

func (m *MockData) FetchStats(ctx context.Context, playerID int64, windowDays int) (*models.SeasonStats, error) {
	m.mu.Lock()
	m.statsCalls++
	m.mu.Unlock()
	if m.FetchStatsFunc != nil {
		return m.FetchStatsFunc(ctx, playerID, windowDays)
	}
	return &models.SeasonStats{PlayerID: playerID}, nil
}

func (m *MockData) FetchGameLog(ctx context.Context, playerID int64, limit int) ([]models.GameLogEntry, error) {
	return nil, nil
}

func (m *MockData) Invalidate(ctx context.Context, playerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated = append(m.invalidated, playerID)
	return nil
}

func (m *MockData) KnownPlayers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.invalidated)
}

// MockSink records forwarded recommendations
type MockSink struct {
	mu   sync.Mutex
	recs []*models.TeamRecommendations
}

func (m *MockSink) EnqueueRecommendations(rec *models.TeamRecommendations) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return len(rec.StartSit)
}

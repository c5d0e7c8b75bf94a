package handlers

import (
	"context"

	"github.com/skateiq/fantasy-agent/internal/models"
)

// MockAgent implements AgentService for testing
type MockAgent struct {
	ProcessCommandFunc func(ctx context.Context, cmd models.Command) (*models.CommandResult, error)
	Status             models.AgentStatus
}

func (m *MockAgent) ProcessCommand(ctx context.Context, cmd models.Command) (*models.CommandResult, error) {
	if m.ProcessCommandFunc != nil {
		return m.ProcessCommandFunc(ctx, cmd)
	}
	return &models.CommandResult{Type: cmd.Type, UserID: cmd.UserID}, nil
}

func (m *MockAgent) GetStatus() models.AgentStatus { return m.Status }

// MockRecommendationStore implements RecommendationStore for testing
type MockRecommendationStore struct {
	LoadFunc func(ctx context.Context, userID string) (*models.TeamRecommendations, error)
}

func (m *MockRecommendationStore) LoadUserRecommendations(ctx context.Context, userID string) (*models.TeamRecommendations, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, userID)
	}
	return nil, models.NotFoundf("recommendations for %s", userID)
}

// MockPinger implements Pinger for testing
type MockPinger struct {
	Err error
}

func (m *MockPinger) Ping(ctx context.Context) error { return m.Err }

type MockQueue struct{ Depth int }

func (m *MockQueue) QueueDepth() int { return m.Depth }

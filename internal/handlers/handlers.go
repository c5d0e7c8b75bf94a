package handlers

import (
	"context"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/skateiq/fantasy-agent/internal/models"
)

// MaxBodySize limits the size of request bodies to 1MB
const MaxBodySize = 1048576

// AgentService is the agent surface the routing layer drives.
type AgentService interface {
	ProcessCommand(ctx context.Context, cmd models.Command) (*models.CommandResult, error)
	GetStatus() models.AgentStatus
}

// RecommendationStore serves previously generated recommendations.
type RecommendationStore interface {
	LoadUserRecommendations(ctx context.Context, userID string) (*models.TeamRecommendations, error)
}

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// QueueDepther reports the analytics backlog.
type QueueDepther interface {
	QueueDepth() int
}

type Config struct {
	Agent           AgentService
	Recommendations RecommendationStore
	Postgres        Pinger
	Redis           redis.Cmdable
	// ClickHouse is optional; the analytics sink is disabled without it.
	ClickHouse driver.Conn
	Queue      QueueDepther
	Logger     *zap.Logger
}

type Handler struct {
	agent  AgentService
	recs   RecommendationStore
	pg     Pinger
	redis  redis.Cmdable
	ch     driver.Conn
	queue  QueueDepther
	logger *zap.SugaredLogger
}

func New(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Handler{
		agent:  cfg.Agent,
		recs:   cfg.Recommendations,
		pg:     cfg.Postgres,
		redis:  cfg.Redis,
		ch:     cfg.ClickHouse,
		queue:  cfg.Queue,
		logger: cfg.Logger.Sugar(),
	}
}

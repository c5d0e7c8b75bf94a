// Package agent is the long-lived fantasy hockey agent: it owns user teams,
// serializes mutating commands, keeps a bounded memory log, persists with a
// debounce and runs the periodic refresh jobs.
package agent

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/skateiq/fantasy-agent/internal/models"
)

// Prometheus metrics
var (
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fantasy_agent_commands_total",
		Help: "Agent commands by type and outcome",
	}, []string{"type", "outcome"})

	flushesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fantasy_agent_state_flushes_total",
		Help: "Persistence flushes by result",
	}, []string{"result"})

	pendingDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fantasy_agent_pending_memory_dropped_total",
		Help: "Memory entries dropped before they could be persisted",
	})

	jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fantasy_agent_job_duration_seconds",
		Help:    "Duration of background agent jobs",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
)

// State is the agent lifecycle state.
type State int32

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateShuttingDown
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateShuttingDown:
		return "shutting-down"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Store is the durable persistence contract.
type Store interface {
	LoadAgentState(ctx context.Context, agentID string) (*models.AgentState, error)
	SaveAgentState(ctx context.Context, state *models.AgentState) error
	LoadAgentMemory(ctx context.Context, agentID string, limit int) ([]models.AgentMemoryEntry, error)
	AppendAgentMemory(ctx context.Context, entries []models.AgentMemoryEntry) error
	LoadUserTeam(ctx context.Context, userID string) (*models.UserTeam, error)
	SaveUserTeam(ctx context.Context, team *models.UserTeam) error
	SaveUserRecommendations(ctx context.Context, userID string, rec *models.TeamRecommendations) error
	ListUserIDs(ctx context.Context) ([]string, error)
}

// Recommender analyzes players and composes roster advice.
type Recommender interface {
	AnalyzePlayer(ctx context.Context, playerID int64) (*models.PlayerAnalysis, error)
	Recommend(ctx context.Context, userID string, playerIDs []int64) (*models.TeamRecommendations, error)
}

// PlayerData is the subset of the data facade the agent drives directly.
type PlayerData interface {
	FetchProfile(ctx context.Context, playerID int64) (*models.PlayerProfile, error)
	FetchStats(ctx context.Context, playerID int64, windowDays int) (*models.SeasonStats, error)
	FetchGameLog(ctx context.Context, playerID int64, limit int) ([]models.GameLogEntry, error)
	Invalidate(ctx context.Context, playerID int64) error
	KnownPlayers() int
}

// AnalyticsSink receives generated recommendations for offline analysis.
type AnalyticsSink interface {
	EnqueueRecommendations(rec *models.TeamRecommendations) int
}

// Capability is the narrow surface other components use to drive the agent.
type Capability interface {
	ProcessCommand(ctx context.Context, cmd models.Command) (*models.CommandResult, error)
	GenerateRecommendations(ctx context.Context, userID string) (*models.TeamRecommendations, error)
}

// Config configures an Agent.
type Config struct {
	AgentID                string
	MemoryLimit            int
	SaveDebounce           time.Duration
	FlushInterval          time.Duration
	StatsRefreshInterval   time.Duration
	RecommendationInterval time.Duration
	RefreshChunkSize       int
	GameLogLimit           int

	Store       Store
	Recommender Recommender
	Data        PlayerData
	Sink        AnalyticsSink
	Logger      *zap.Logger
}

// Agent is safe for concurrent use.
type Agent struct {
	cfg       Config
	store     Store
	rec       Recommender
	data      PlayerData
	sink      AnalyticsSink
	logger    *zap.SugaredLogger
	validator *validator.Validate
	events    *EventBus
	now       func() time.Time

	lifecycleMu sync.Mutex
	state       State

	// cmdMu serializes mutating commands.
	cmdMu sync.Mutex

	mu            sync.RWMutex
	teams         map[string]*models.UserTeam
	agentState    models.AgentState
	memory        *MemoryLog
	dirtyUsers    map[string]struct{}
	stateDirty    bool
	pendingMemory []models.AgentMemoryEntry

	persist   *persister
	scheduler *scheduler
}

var _ Capability = (*Agent)(nil)

func New(cfg Config) *Agent {
	if cfg.AgentID == "" {
		cfg.AgentID = "hockey-agent"
	}
	if cfg.MemoryLimit <= 0 {
		cfg.MemoryLimit = 1000
	}
	if cfg.SaveDebounce <= 0 {
		cfg.SaveDebounce = time.Second
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 30 * time.Second
	}
	if cfg.RefreshChunkSize <= 0 {
		cfg.RefreshChunkSize = 5
	}
	if cfg.GameLogLimit <= 0 {
		cfg.GameLogLimit = 10
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	a := &Agent{
		cfg:        cfg,
		store:      cfg.Store,
		rec:        cfg.Recommender,
		data:       cfg.Data,
		sink:       cfg.Sink,
		logger:     cfg.Logger.Sugar().With("agent", cfg.AgentID),
		validator:  validator.New(),
		events:     NewEventBus(),
		now:        time.Now,
		teams:      make(map[string]*models.UserTeam),
		agentState: models.AgentState{AgentID: cfg.AgentID, KnownUsers: []string{}},
		memory:     NewMemoryLog(cfg.MemoryLimit),
		dirtyUsers: make(map[string]struct{}),
	}
	a.persist = newPersister(a, cfg.SaveDebounce)
	return a
}

// Events exposes the agent's event bus for observers.
func (a *Agent) Events() *EventBus { return a.events }

// State returns the current lifecycle state.
func (a *Agent) State() State {
	a.lifecycleMu.Lock()
	defer a.lifecycleMu.Unlock()
	return a.state
}

func (a *Agent) setState(s State) {
	a.lifecycleMu.Lock()
	prev := a.state
	a.state = s
	a.lifecycleMu.Unlock()

	a.logger.Infow("Agent state changed", "from", prev.String(), "to", s.String())
	a.events.Publish(Event{Type: EventStateChanged, Detail: s.String()})
}

func (a *Agent) requireReady() error {
	if s := a.State(); s != StateReady {
		return fmt.Errorf("%w: state is %s", models.ErrAgentNotReady, s)
	}
	return nil
}

// Initialize restores persisted state on a best-effort basis and starts
// background work. Load failures leave the agent empty but ready.
func (a *Agent) Initialize(ctx context.Context) error {
	a.lifecycleMu.Lock()
	if a.state != StateUninitialized {
		s := a.state
		a.lifecycleMu.Unlock()
		return fmt.Errorf("%w: cannot initialize from state %s", models.ErrAgentNotReady, s)
	}
	a.lifecycleMu.Unlock()
	a.setState(StateInitializing)

	a.restore(ctx)

	a.scheduler = newScheduler(a.logger)
	a.scheduler.every("state_flush", a.cfg.FlushInterval, func(ctx context.Context) {
		a.persist.flush(ctx)
	})
	if a.cfg.StatsRefreshInterval > 0 {
		a.scheduler.every("stats_refresh", a.cfg.StatsRefreshInterval, func(ctx context.Context) {
			if err := a.RefreshStats(ctx); err != nil {
				a.logger.Warnw("Stats refresh skipped", "error", err)
			}
		})
	}
	if a.cfg.RecommendationInterval > 0 {
		a.scheduler.every("recommendations", a.cfg.RecommendationInterval, func(ctx context.Context) {
			if err := a.RegenerateRecommendations(ctx); err != nil {
				a.logger.Warnw("Recommendation run skipped", "error", err)
			}
		})
	}

	a.setState(StateReady)
	return nil
}

func (a *Agent) restore(ctx context.Context) {
	state, err := a.store.LoadAgentState(ctx, a.cfg.AgentID)
	switch {
	case err == nil:
		if state.KnownUsers == nil {
			state.KnownUsers = []string{}
		}
		a.agentState = *state
		a.agentState.AgentID = a.cfg.AgentID
	case errors.Is(err, models.ErrNotFound):
		a.logger.Infow("No persisted agent state, starting fresh")
	default:
		a.logger.Warnw("Failed to load agent state, starting fresh", "error", err)
	}

	entries, err := a.store.LoadAgentMemory(ctx, a.cfg.AgentID, a.cfg.MemoryLimit)
	if err != nil {
		a.logger.Warnw("Failed to load agent memory, starting empty", "error", err)
	} else {
		a.memory.Load(entries)
	}

	// Teams saved by another agent instance are adopted too.
	if ids, err := a.store.ListUserIDs(ctx); err != nil {
		a.logger.Warnw("Failed to list stored users", "error", err)
	} else {
		for _, id := range ids {
			if !slices.Contains(a.agentState.KnownUsers, id) {
				a.agentState.KnownUsers = append(a.agentState.KnownUsers, id)
			}
		}
	}

	for _, userID := range a.agentState.KnownUsers {
		team, err := a.store.LoadUserTeam(ctx, userID)
		if err != nil {
			a.logger.Warnw("Failed to load user team", "user", userID, "error", err)
			continue
		}
		a.teams[userID] = team
	}

	a.logger.Infow("Agent state restored",
		"users", len(a.teams),
		"memoryEntries", a.memory.Len(),
	)
}

// Shutdown stops background work, waits for in-flight mutations and flushes
// everything synchronously. The agent ends stopped even if the flush fails.
func (a *Agent) Shutdown(ctx context.Context) error {
	a.lifecycleMu.Lock()
	switch a.state {
	case StateShuttingDown, StateStopped:
		a.lifecycleMu.Unlock()
		return nil
	}
	a.lifecycleMu.Unlock()
	a.setState(StateShuttingDown)

	if a.scheduler != nil {
		a.scheduler.stop()
	}
	a.persist.stop()

	a.cmdMu.Lock()
	err := a.persist.flush(ctx)
	a.cmdMu.Unlock()

	a.setState(StateStopped)
	if err != nil {
		return fmt.Errorf("final flush: %w", err)
	}
	return nil
}

// GetStatus reports readiness and bookkeeping counters.
func (a *Agent) GetStatus() models.AgentStatus {
	state := a.State()

	a.mu.RLock()
	defer a.mu.RUnlock()

	rosterCount := 0
	for _, t := range a.teams {
		rosterCount += len(t.Roster)
	}

	status := models.AgentStatus{
		Ready:            state == StateReady,
		State:            state.String(),
		RosterCount:      rosterCount,
		MemoryEntryCount: a.memory.Len(),
	}
	if a.data != nil {
		status.PlayerCacheSize = a.data.KnownPlayers()
	}
	if t := a.agentState.LastStatsRefresh; !t.IsZero() {
		status.LastStatsRefresh = &t
	}
	if t := a.agentState.LastRecommendationRun; !t.IsZero() {
		status.LastRecommendationRun = &t
	}
	return status
}

package models

import (
	"encoding/json"
	"time"
)

// MemoryCategory groups memory entries.
type MemoryCategory string

const (
	MemoryRoster      MemoryCategory = "roster"
	MemoryLineup      MemoryCategory = "lineup"
	MemoryPreferences MemoryCategory = "preferences"
	MemoryCache       MemoryCategory = "cache"
	MemorySystem      MemoryCategory = "system"
)

// AgentMemoryEntry is one append-only record of an agent decision or
// user-visible mutation.
type AgentMemoryEntry struct {
	ID        string          `json:"id"`
	AgentID   string          `json:"agent_id"`
	UserID    string          `json:"user_id,omitempty"`
	Category  MemoryCategory  `json:"category"`
	Action    string          `json:"action"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// AgentState is the persisted snapshot of agent bookkeeping.
type AgentState struct {
	AgentID               string    `json:"agent_id"`
	KnownUsers            []string  `json:"known_users"`
	LastStatsRefresh      time.Time `json:"last_stats_refresh"`
	LastRecommendationRun time.Time `json:"last_recommendation_run"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// AgentStatus is the read-only status view.
type AgentStatus struct {
	Ready                 bool       `json:"ready"`
	State                 string     `json:"state"`
	RosterCount           int        `json:"roster_count"`
	PlayerCacheSize       int        `json:"player_cache_size"`
	LastStatsRefresh      *time.Time `json:"last_stats_refresh"`
	LastRecommendationRun *time.Time `json:"last_recommendation_run"`
	MemoryEntryCount      int        `json:"memory_entry_count"`
}

// CommandType names an agent command.
type CommandType string

const (
	CommandAddPlayer          CommandType = "add_player"
	CommandRemovePlayer       CommandType = "remove_player"
	CommandSetLineup          CommandType = "set_lineup"
	CommandUpdatePreferences  CommandType = "update_preferences"
	CommandGetRecommendations CommandType = "get_recommendations"
	CommandAnalyzePlayer      CommandType = "analyze_player"
	CommandGetMemory          CommandType = "get_memory"
	CommandRefreshPlayer      CommandType = "refresh_player"
)

// Mutating reports whether the command changes agent state.
func (c CommandType) Mutating() bool {
	switch c {
	case CommandAddPlayer, CommandRemovePlayer, CommandSetLineup, CommandUpdatePreferences, CommandRefreshPlayer:
		return true
	}
	return false
}

// Command is a typed request handed to the agent.
type Command struct {
	Type    CommandType     `json:"type" validate:"required"`
	UserID  string          `json:"user_id" validate:"required,max=128"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// CommandResult is the agent's reply to a command.
type CommandResult struct {
	Type    CommandType `json:"type"`
	UserID  string      `json:"user_id"`
	Changed bool        `json:"changed"`
	Data    any         `json:"data,omitempty"`
}

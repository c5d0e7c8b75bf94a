// Package store persists agent state, memory, user teams and recommendations
// in PostgreSQL.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/skateiq/fantasy-agent/internal/models"
)

// DBStore abstracts the database operations
type DBStore interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// recommendationHistory is how many snapshots are kept per user.
const recommendationHistory = 20

// PostgresStore implements the agent's durable store.
type PostgresStore struct {
	db          DBStore
	memoryLimit int
	now         func() time.Time
}

// NewPostgresStore keeps at most memoryLimit memory entries per agent.
func NewPostgresStore(db DBStore, memoryLimit int) *PostgresStore {
	if memoryLimit <= 0 {
		memoryLimit = 1000
	}
	return &PostgresStore{db: db, memoryLimit: memoryLimit, now: time.Now}
}

// LoadAgentState returns models.ErrNotFound when the agent has never saved.
func (s *PostgresStore) LoadAgentState(ctx context.Context, agentID string) (*models.AgentState, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, `SELECT state FROM agent_state WHERE agent_id = $1`, agentID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NotFoundf("agent state %s", agentID)
	}
	if err != nil {
		return nil, fmt.Errorf("load agent state: %w", err)
	}

	var state models.AgentState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode agent state: %w", err)
	}
	return &state, nil
}

func (s *PostgresStore) SaveAgentState(ctx context.Context, state *models.AgentState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode agent state: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO agent_state (agent_id, state, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (agent_id) DO UPDATE SET state = EXCLUDED.state, updated_at = EXCLUDED.updated_at
	`, state.AgentID, raw, s.now().UTC())
	if err != nil {
		return fmt.Errorf("save agent state: %w", err)
	}
	return nil
}

// LoadAgentMemory returns up to limit entries, oldest first.
func (s *PostgresStore) LoadAgentMemory(ctx context.Context, agentID string, limit int) ([]models.AgentMemoryEntry, error) {
	if limit <= 0 || limit > s.memoryLimit {
		limit = s.memoryLimit
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, agent_id, user_id, category, action, payload, created_at
		FROM (
			SELECT id::text AS id, agent_id, user_id, category, action, payload, created_at
			FROM agent_memory
			WHERE agent_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC, id ASC
	`, agentID, limit)
	if err != nil {
		return nil, fmt.Errorf("load agent memory: %w", err)
	}
	defer rows.Close()

	entries := make([]models.AgentMemoryEntry, 0, limit)
	for rows.Next() {
		var (
			e        models.AgentMemoryEntry
			category string
			payload  []byte
		)
		if err := rows.Scan(&e.ID, &e.AgentID, &e.UserID, &category, &e.Action, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan agent memory: %w", err)
		}
		e.Category = models.MemoryCategory(category)
		if len(payload) > 0 {
			e.Payload = json.RawMessage(payload)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate agent memory: %w", err)
	}
	return entries, nil
}

// AppendAgentMemory inserts entries and trims the log to the store bound,
// evicting the oldest first.
func (s *PostgresStore) AppendAgentMemory(ctx context.Context, entries []models.AgentMemoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	for _, e := range entries {
		var payload []byte
		if len(e.Payload) > 0 {
			payload = e.Payload
		}
		_, err := s.db.Exec(ctx, `
			INSERT INTO agent_memory (id, agent_id, user_id, category, action, payload, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO NOTHING
		`, e.ID, e.AgentID, e.UserID, string(e.Category), e.Action, payload, e.CreatedAt)
		if err != nil {
			return fmt.Errorf("append agent memory: %w", err)
		}
	}

	_, err := s.db.Exec(ctx, `
		DELETE FROM agent_memory
		WHERE agent_id = $1 AND id NOT IN (
			SELECT id FROM agent_memory
			WHERE agent_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		)
	`, entries[0].AgentID, s.memoryLimit)
	if err != nil {
		return fmt.Errorf("trim agent memory: %w", err)
	}
	return nil
}

// LoadUserTeam returns models.ErrNotFound for unknown users.
func (s *PostgresStore) LoadUserTeam(ctx context.Context, userID string) (*models.UserTeam, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, `SELECT team FROM user_teams WHERE user_id = $1`, userID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NotFoundf("team for user %s", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("load user team: %w", err)
	}

	team := models.NewUserTeam(userID)
	if err := json.Unmarshal(raw, team); err != nil {
		return nil, fmt.Errorf("decode user team: %w", err)
	}
	team.Normalize()
	return team, nil
}

// SaveUserTeam overwrites the stored team.
func (s *PostgresStore) SaveUserTeam(ctx context.Context, team *models.UserTeam) error {
	raw, err := json.Marshal(team)
	if err != nil {
		return fmt.Errorf("encode user team: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO user_teams (user_id, team, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET team = EXCLUDED.team, updated_at = EXCLUDED.updated_at
	`, team.UserID, raw, s.now().UTC())
	if err != nil {
		return fmt.Errorf("save user team: %w", err)
	}
	return nil
}

// ListUserIDs returns every user with a stored team.
func (s *PostgresStore) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT user_id FROM user_teams ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SaveUserRecommendations appends a recommendation snapshot and drops all
// but the newest recommendationHistory rows for the user.
func (s *PostgresStore) SaveUserRecommendations(ctx context.Context, userID string, rec *models.TeamRecommendations) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode recommendations: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO user_recommendations (user_id, recommendations, generated_at)
		VALUES ($1, $2, $3)
	`, userID, raw, rec.GeneratedAt)
	if err != nil {
		return fmt.Errorf("save recommendations: %w", err)
	}

	_, err = s.db.Exec(ctx, `
		DELETE FROM user_recommendations
		WHERE user_id = $1 AND id NOT IN (
			SELECT id FROM user_recommendations
			WHERE user_id = $1
			ORDER BY generated_at DESC, id DESC
			LIMIT $2
		)
	`, userID, recommendationHistory)
	if err != nil {
		return fmt.Errorf("trim recommendations: %w", err)
	}
	return nil
}

// LoadUserRecommendations returns the most recent snapshot.
func (s *PostgresStore) LoadUserRecommendations(ctx context.Context, userID string) (*models.TeamRecommendations, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, `
		SELECT recommendations FROM user_recommendations
		WHERE user_id = $1
		ORDER BY generated_at DESC, id DESC
		LIMIT 1
	`, userID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NotFoundf("recommendations for user %s", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("load recommendations: %w", err)
	}

	var rec models.TeamRecommendations
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode recommendations: %w", err)
	}
	return &rec, nil
}

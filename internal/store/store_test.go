package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skateiq/fantasy-agent/internal/models"
)

type execCall struct {
	sql  string
	args []any
}

// MockDBStore implements DBStore and records statements
type MockDBStore struct {
	QueryRowFunc func(sql string, args ...any) pgx.Row
	QueryFunc    func(sql string, args ...any) (pgx.Rows, error)
	ExecErr      error
	Execs        []execCall
}

func (m *MockDBStore) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(sql, args...)
	}
	return &MockPGXRows{}, nil
}

func (m *MockDBStore) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.QueryRowFunc != nil {
		return m.QueryRowFunc(sql, args...)
	}
	return &MockPGXRow{err: pgx.ErrNoRows}
}

func (m *MockDBStore) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.Execs = append(m.Execs, execCall{sql: sql, args: args})
	return pgconn.CommandTag{}, m.ExecErr
}

// MockPGXRow scans a single JSON column
type MockPGXRow struct {
	raw []byte
	err error
}

func (m *MockPGXRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if p, ok := dest[0].(*[]byte); ok {
		*p = m.raw
	}
	return nil
}

// MockPGXRows yields preset rows of values
type MockPGXRows struct {
	rows [][]any
	i    int
}

func (m *MockPGXRows) Close()                                       {}
func (m *MockPGXRows) Err() error                                   { return nil }
func (m *MockPGXRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (m *MockPGXRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (m *MockPGXRows) Values() ([]any, error)                       { return nil, nil }
func (m *MockPGXRows) RawValues() [][]byte                          { return nil }
func (m *MockPGXRows) Conn() *pgx.Conn                              { return nil }

func (m *MockPGXRows) Next() bool {
	if m.i >= len(m.rows) {
		return false
	}
	m.i++
	return true
}

func (m *MockPGXRows) Scan(dest ...any) error {
	row := m.rows[m.i-1]
	if len(row) != len(dest) {
		return fmt.Errorf("scan: %d values into %d targets", len(row), len(dest))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = row[i].(string)
		case *[]byte:
			if row[i] != nil {
				*p = row[i].([]byte)
			}
		case *time.Time:
			*p = row[i].(time.Time)
		default:
			return fmt.Errorf("unsupported scan target %T", d)
		}
	}
	return nil
}

func TestLoadUserTeam_NotFound(t *testing.T) {
	s := NewPostgresStore(&MockDBStore{}, 10)

	_, err := s.LoadUserTeam(context.Background(), "ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestLoadUserTeam_Decodes(t *testing.T) {
	raw, _ := json.Marshal(models.UserTeam{
		UserID: "u1",
		Roster: []models.RosterEntry{{PlayerID: 97}},
		Lineup: models.Lineup{Starters: []int64{97}},
	})
	db := &MockDBStore{
		QueryRowFunc: func(sql string, args ...any) pgx.Row {
			assert.Equal(t, "u1", args[0])
			return &MockPGXRow{raw: raw}
		},
	}
	s := NewPostgresStore(db, 10)

	team, err := s.LoadUserTeam(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, team.HasPlayer(97))
	assert.NotNil(t, team.Preferences)
}

func TestLoadUserTeam_NullCollections(t *testing.T) {
	db := &MockDBStore{
		QueryRowFunc: func(sql string, args ...any) pgx.Row {
			return &MockPGXRow{raw: []byte(`{"user_id":"u1","roster":null,"lineup":{"starters":null,"bench":null},"preferences":null}`)}
		},
	}
	s := NewPostgresStore(db, 10)

	team, err := s.LoadUserTeam(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, team.Roster)
	assert.NotNil(t, team.Lineup.Starters)
	assert.NotNil(t, team.Lineup.Bench)
	require.NotNil(t, team.Preferences)
	team.Preferences["scoring"] = "points"
}

func TestLoadAgentState_DatabaseError(t *testing.T) {
	db := &MockDBStore{
		QueryRowFunc: func(sql string, args ...any) pgx.Row {
			return &MockPGXRow{err: errors.New("connection reset")}
		},
	}
	s := NewPostgresStore(db, 10)

	_, err := s.LoadAgentState(context.Background(), "agent")
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrNotFound)
}

func TestSaveUserTeam_Upserts(t *testing.T) {
	db := &MockDBStore{}
	s := NewPostgresStore(db, 10)

	require.NoError(t, s.SaveUserTeam(context.Background(), models.NewUserTeam("u1")))
	require.Len(t, db.Execs, 1)
	assert.Contains(t, db.Execs[0].sql, "ON CONFLICT (user_id) DO UPDATE")
	assert.Equal(t, "u1", db.Execs[0].args[0])
}

func TestAppendAgentMemory_TrimsToLimit(t *testing.T) {
	db := &MockDBStore{}
	s := NewPostgresStore(db, 25)
	now := time.Now()

	entries := []models.AgentMemoryEntry{
		{ID: "0190b6a4-0000-7000-8000-000000000001", AgentID: "a", Category: models.MemoryRoster, Action: "add_player", CreatedAt: now},
		{ID: "0190b6a4-0000-7000-8000-000000000002", AgentID: "a", Category: models.MemoryRoster, Action: "remove_player", CreatedAt: now},
	}
	require.NoError(t, s.AppendAgentMemory(context.Background(), entries))

	require.Len(t, db.Execs, 3)
	trim := db.Execs[2]
	assert.True(t, strings.Contains(trim.sql, "DELETE FROM agent_memory"))
	assert.Equal(t, []any{"a", 25}, trim.args)
}

func TestSaveUserRecommendations_TrimsHistory(t *testing.T) {
	db := &MockDBStore{}
	s := NewPostgresStore(db, 25)

	rec := &models.TeamRecommendations{UserID: "u1", GeneratedAt: time.Now()}
	require.NoError(t, s.SaveUserRecommendations(context.Background(), "u1", rec))

	require.Len(t, db.Execs, 2)
	assert.Contains(t, db.Execs[0].sql, "INSERT INTO user_recommendations")
	trim := db.Execs[1]
	assert.Contains(t, trim.sql, "DELETE FROM user_recommendations")
	assert.Equal(t, []any{"u1", recommendationHistory}, trim.args)
}

func TestAppendAgentMemory_Empty(t *testing.T) {
	db := &MockDBStore{}
	s := NewPostgresStore(db, 25)

	require.NoError(t, s.AppendAgentMemory(context.Background(), nil))
	assert.Empty(t, db.Execs)
}

func TestLoadAgentMemory(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	db := &MockDBStore{
		QueryFunc: func(sql string, args ...any) (pgx.Rows, error) {
			assert.Equal(t, 5, args[1], "limit above the bound is clamped")
			return &MockPGXRows{rows: [][]any{
				{"id-1", "a", "u1", "roster", "add_player", []byte(`{"player_id":1}`), created},
				{"id-2", "a", "u1", "lineup", "set_lineup", nil, created.Add(time.Second)},
			}}, nil
		},
	}
	s := NewPostgresStore(db, 5)

	entries, err := s.LoadAgentMemory(context.Background(), "a", 100)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.MemoryRoster, entries[0].Category)
	assert.JSONEq(t, `{"player_id":1}`, string(entries[0].Payload))
	assert.Nil(t, entries[1].Payload)
}

func TestLoadUserRecommendations(t *testing.T) {
	raw, _ := json.Marshal(models.TeamRecommendations{UserID: "u1", StartSit: []models.PlayerProjection{{PlayerID: 4}}})
	db := &MockDBStore{
		QueryRowFunc: func(sql string, args ...any) pgx.Row {
			return &MockPGXRow{raw: raw}
		},
	}
	s := NewPostgresStore(db, 5)

	rec, err := s.LoadUserRecommendations(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, rec.StartSit, 1)
	assert.Equal(t, int64(4), rec.StartSit[0].PlayerID)
}

func TestListUserIDs(t *testing.T) {
	db := &MockDBStore{
		QueryFunc: func(sql string, args ...any) (pgx.Rows, error) {
			return &MockPGXRows{rows: [][]any{{"a"}, {"b"}}}, nil
		},
	}
	s := NewPostgresStore(db, 5)

	ids, err := s.ListUserIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

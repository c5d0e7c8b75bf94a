package models

import "time"

// RosterEntry is one player on a user's roster.
type RosterEntry struct {
	PlayerID int64     `json:"player_id"`
	Name     string    `json:"name,omitempty"`
	Position Position  `json:"position,omitempty"`
	AddedAt  time.Time `json:"added_at"`
}

// Lineup is a user's active/bench split. Every id must be on the roster.
type Lineup struct {
	Starters []int64 `json:"starters"`
	Bench    []int64 `json:"bench"`
}

// Preferences are free-form user settings merged key by key.
type Preferences map[string]any

// UserTeam is the durable per-user team record.
type UserTeam struct {
	UserID      string        `json:"user_id"`
	Roster      []RosterEntry `json:"roster"`
	Lineup      Lineup        `json:"lineup"`
	Preferences Preferences   `json:"preferences"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NewUserTeam returns an empty team for userID.
func NewUserTeam(userID string) *UserTeam {
	return &UserTeam{
		UserID:      userID,
		Roster:      []RosterEntry{},
		Lineup:      Lineup{Starters: []int64{}, Bench: []int64{}},
		Preferences: Preferences{},
	}
}

// HasPlayer reports whether playerID is on the roster.
func (t *UserTeam) HasPlayer(playerID int64) bool {
	return t.indexOf(playerID) >= 0
}

func (t *UserTeam) indexOf(playerID int64) int {
	for i, e := range t.Roster {
		if e.PlayerID == playerID {
			return i
		}
	}
	return -1
}

// RemovePlayer drops playerID from the roster and the lineup. It reports
// whether the player was present.
func (t *UserTeam) RemovePlayer(playerID int64) bool {
	i := t.indexOf(playerID)
	if i < 0 {
		return false
	}
	t.Roster = append(t.Roster[:i], t.Roster[i+1:]...)
	t.Lineup.Starters = without(t.Lineup.Starters, playerID)
	t.Lineup.Bench = without(t.Lineup.Bench, playerID)
	return true
}

// PlayerIDs lists roster ids in roster order.
func (t *UserTeam) PlayerIDs() []int64 {
	ids := make([]int64, 0, len(t.Roster))
	for _, e := range t.Roster {
		ids = append(ids, e.PlayerID)
	}
	return ids
}

// Clone returns a deep copy safe to hand to another goroutine.
func (t *UserTeam) Clone() *UserTeam {
	c := &UserTeam{
		UserID:      t.UserID,
		Roster:      append([]RosterEntry{}, t.Roster...),
		Lineup:      Lineup{Starters: append([]int64{}, t.Lineup.Starters...), Bench: append([]int64{}, t.Lineup.Bench...)},
		Preferences: make(Preferences, len(t.Preferences)),
		UpdatedAt:   t.UpdatedAt,
	}
	for k, v := range t.Preferences {
		c.Preferences[k] = v
	}
	return c
}

// Normalize replaces nil collections, as decoded from JSON null, with empty
// ones so callers can mutate a loaded team directly.
func (t *UserTeam) Normalize() {
	if t.Roster == nil {
		t.Roster = []RosterEntry{}
	}
	if t.Lineup.Starters == nil {
		t.Lineup.Starters = []int64{}
	}
	if t.Lineup.Bench == nil {
		t.Lineup.Bench = []int64{}
	}
	if t.Preferences == nil {
		t.Preferences = Preferences{}
	}
}

func without(ids []int64, id int64) []int64 {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

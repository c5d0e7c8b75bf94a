package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/skateiq/fantasy-agent/internal/logic"
	"github.com/skateiq/fantasy-agent/internal/models"
)

// ProcessCommand validates and executes one command. Mutating commands are
// serialized and each successful mutation appends exactly one memory entry.
func (a *Agent) ProcessCommand(ctx context.Context, cmd models.Command) (*models.CommandResult, error) {
	res, err := a.processCommand(ctx, cmd)
	outcome := "ok"
	if err != nil {
		outcome = string(models.KindOf(err))
	}
	commandsTotal.WithLabelValues(string(cmd.Type), outcome).Inc()
	return res, err
}

func (a *Agent) processCommand(ctx context.Context, cmd models.Command) (*models.CommandResult, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	if err := a.validator.Struct(cmd); err != nil {
		return nil, models.Validationf("invalid command: %v", err)
	}

	if cmd.Type.Mutating() {
		a.cmdMu.Lock()
		defer a.cmdMu.Unlock()
		// Shutdown may have started while we waited for the lock.
		if err := a.requireReady(); err != nil {
			return nil, err
		}
	}

	switch cmd.Type {
	case models.CommandAddPlayer:
		return a.addPlayer(ctx, cmd)
	case models.CommandRemovePlayer:
		return a.removePlayer(ctx, cmd)
	case models.CommandSetLineup:
		return a.setLineup(ctx, cmd)
	case models.CommandUpdatePreferences:
		return a.updatePreferences(ctx, cmd)
	case models.CommandRefreshPlayer:
		return a.refreshPlayer(ctx, cmd)
	case models.CommandGetRecommendations:
		return a.getRecommendations(ctx, cmd)
	case models.CommandAnalyzePlayer:
		return a.analyzePlayer(ctx, cmd)
	case models.CommandGetMemory:
		return a.getMemory(cmd)
	default:
		return nil, models.Validationf("unknown command type %q", cmd.Type)
	}
}

func (a *Agent) decode(cmd models.Command, dest any) error {
	if len(cmd.Payload) == 0 {
		return models.Validationf("%s: payload is required", cmd.Type)
	}
	if err := json.Unmarshal(cmd.Payload, dest); err != nil {
		return models.Validationf("%s: malformed payload: %v", cmd.Type, err)
	}
	if err := a.validator.Struct(dest); err != nil {
		return models.Validationf("%s: %v", cmd.Type, err)
	}
	return nil
}

// teamForUpdate returns a private copy of the user's team, loading it from
// the store or creating it on first use. Callers hold cmdMu.
func (a *Agent) teamForUpdate(ctx context.Context, userID string) (*models.UserTeam, error) {
	a.mu.RLock()
	t, ok := a.teams[userID]
	a.mu.RUnlock()
	if ok {
		return t.Clone(), nil
	}

	team, err := a.store.LoadUserTeam(ctx, userID)
	switch {
	case err == nil:
		return team, nil
	case errors.Is(err, models.ErrNotFound):
		return models.NewUserTeam(userID), nil
	default:
		return nil, fmt.Errorf("%w: load team for %s: %v", models.ErrDataUnavailable, userID, err)
	}
}

// teamSnapshot returns a copy of a known user's team for read-only use.
func (a *Agent) teamSnapshot(ctx context.Context, userID string) (*models.UserTeam, error) {
	a.mu.RLock()
	t, ok := a.teams[userID]
	a.mu.RUnlock()
	if ok {
		return t.Clone(), nil
	}

	team, err := a.store.LoadUserTeam(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NotFoundf("no team for user %s", userID)
		}
		return nil, fmt.Errorf("%w: load team for %s: %v", models.ErrDataUnavailable, userID, err)
	}
	return team, nil
}

// commit installs team (if non-nil), records one memory entry and schedules
// a save.
func (a *Agent) commit(userID string, team *models.UserTeam, category models.MemoryCategory, action string, payload any) {
	entry := a.newMemoryEntry(userID, category, action, payload)

	a.mu.Lock()
	if team != nil {
		team.UpdatedAt = a.now().UTC()
		a.teams[userID] = team
		a.dirtyUsers[userID] = struct{}{}
		if !slices.Contains(a.agentState.KnownUsers, userID) {
			a.agentState.KnownUsers = append(a.agentState.KnownUsers, userID)
			a.stateDirty = true
		}
	}
	a.memory.Append(entry)
	a.pendingMemory = a.boundPending(append(a.pendingMemory, entry))
	a.mu.Unlock()

	a.events.Publish(Event{Type: EventCommandApplied, UserID: userID, Detail: action})
	a.persist.schedule()
}

func (a *Agent) newMemoryEntry(userID string, category models.MemoryCategory, action string, payload any) models.AgentMemoryEntry {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	entry := models.AgentMemoryEntry{
		ID:        id.String(),
		AgentID:   a.cfg.AgentID,
		UserID:    userID,
		Category:  category,
		Action:    action,
		CreatedAt: a.now().UTC(),
	}
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			entry.Payload = raw
		}
	}
	return entry
}

func (a *Agent) addPlayer(ctx context.Context, cmd models.Command) (*models.CommandResult, error) {
	var p models.AddPlayerPayload
	if err := a.decode(cmd, &p); err != nil {
		return nil, err
	}

	team, err := a.teamForUpdate(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if team.HasPlayer(p.PlayerID) {
		return nil, models.Validationf("player %d is already on the roster", p.PlayerID)
	}

	entry := models.RosterEntry{PlayerID: p.PlayerID, Name: p.Name, AddedAt: a.now().UTC()}
	if a.data != nil {
		// Enrichment only; an unknown player can still be rostered.
		if profile, err := a.data.FetchProfile(ctx, p.PlayerID); err == nil {
			if entry.Name == "" {
				entry.Name = profile.FullName()
			}
			entry.Position = profile.Position
		}
	}
	team.Roster = append(team.Roster, entry)
	team.Lineup.Bench = append(team.Lineup.Bench, p.PlayerID)

	a.commit(cmd.UserID, team, models.MemoryRoster, string(cmd.Type), p)
	return &models.CommandResult{Type: cmd.Type, UserID: cmd.UserID, Changed: true, Data: team}, nil
}

func (a *Agent) removePlayer(ctx context.Context, cmd models.Command) (*models.CommandResult, error) {
	var p models.RemovePlayerPayload
	if err := a.decode(cmd, &p); err != nil {
		return nil, err
	}

	team, err := a.teamForUpdate(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if !team.RemovePlayer(p.PlayerID) {
		return nil, models.NotFoundf("player %d is not on the roster", p.PlayerID)
	}

	a.commit(cmd.UserID, team, models.MemoryRoster, string(cmd.Type), p)
	return &models.CommandResult{Type: cmd.Type, UserID: cmd.UserID, Changed: true, Data: team}, nil
}

func (a *Agent) setLineup(ctx context.Context, cmd models.Command) (*models.CommandResult, error) {
	var p models.SetLineupPayload
	if err := a.decode(cmd, &p); err != nil {
		return nil, err
	}

	team, err := a.teamForUpdate(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if err := validateLineup(team, p); err != nil {
		return nil, err
	}

	team.Lineup = models.Lineup{
		Starters: append([]int64{}, p.Starters...),
		Bench:    append([]int64{}, p.Bench...),
	}
	a.commit(cmd.UserID, team, models.MemoryLineup, string(cmd.Type), p)
	return &models.CommandResult{Type: cmd.Type, UserID: cmd.UserID, Changed: true, Data: team.Lineup}, nil
}

// validateLineup checks the whole lineup before anything is applied.
func validateLineup(team *models.UserTeam, p models.SetLineupPayload) error {
	if len(p.Starters) > logic.MaxStarters {
		return models.Validationf("at most %d starters allowed, got %d", logic.MaxStarters, len(p.Starters))
	}
	seen := make(map[int64]bool, len(p.Starters)+len(p.Bench))
	for _, id := range append(append([]int64{}, p.Starters...), p.Bench...) {
		if !team.HasPlayer(id) {
			return models.Validationf("player %d is not on the roster", id)
		}
		if seen[id] {
			return models.Validationf("player %d appears more than once in the lineup", id)
		}
		seen[id] = true
	}
	return nil
}

func (a *Agent) updatePreferences(ctx context.Context, cmd models.Command) (*models.CommandResult, error) {
	var p models.UpdatePreferencesPayload
	if err := a.decode(cmd, &p); err != nil {
		return nil, err
	}

	team, err := a.teamForUpdate(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if team.Preferences == nil {
		team.Preferences = models.Preferences{}
	}
	for k, v := range p.Preferences {
		team.Preferences[k] = v
	}

	a.commit(cmd.UserID, team, models.MemoryPreferences, string(cmd.Type), p)
	return &models.CommandResult{Type: cmd.Type, UserID: cmd.UserID, Changed: true, Data: team.Preferences}, nil
}

func (a *Agent) refreshPlayer(ctx context.Context, cmd models.Command) (*models.CommandResult, error) {
	var p models.AnalyzePlayerPayload
	if err := a.decode(cmd, &p); err != nil {
		return nil, err
	}
	if a.data == nil {
		return nil, fmt.Errorf("%w: no data source configured", models.ErrDataUnavailable)
	}
	if err := a.data.Invalidate(ctx, p.PlayerID); err != nil {
		a.logger.Warnw("Cache invalidation failed", "player", p.PlayerID, "error", err)
	}

	a.commit(cmd.UserID, nil, models.MemoryCache, string(cmd.Type), p)
	return &models.CommandResult{Type: cmd.Type, UserID: cmd.UserID, Changed: true}, nil
}

// getRecommendations is read-only: nothing is stored or forwarded.
func (a *Agent) getRecommendations(ctx context.Context, cmd models.Command) (*models.CommandResult, error) {
	team, err := a.teamSnapshot(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	rec, err := a.rec.Recommend(ctx, cmd.UserID, team.PlayerIDs())
	if err != nil {
		return nil, fmt.Errorf("%w: recommendations for %s: %v", models.ErrDataUnavailable, cmd.UserID, err)
	}
	return &models.CommandResult{Type: cmd.Type, UserID: cmd.UserID, Data: rec}, nil
}

func (a *Agent) analyzePlayer(ctx context.Context, cmd models.Command) (*models.CommandResult, error) {
	var p models.AnalyzePlayerPayload
	if err := a.decode(cmd, &p); err != nil {
		return nil, err
	}
	analysis, err := a.rec.AnalyzePlayer(ctx, p.PlayerID)
	if err != nil {
		if errors.Is(err, models.ErrDataUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: analyze player %d: %v", models.ErrDataUnavailable, p.PlayerID, err)
	}
	return &models.CommandResult{Type: cmd.Type, UserID: cmd.UserID, Data: analysis}, nil
}

func (a *Agent) getMemory(cmd models.Command) (*models.CommandResult, error) {
	var p models.GetMemoryPayload
	if len(cmd.Payload) > 0 {
		if err := a.decode(cmd, &p); err != nil {
			return nil, err
		}
	}

	a.mu.RLock()
	entries := a.memory.Recent(p.Limit, p.Category)
	a.mu.RUnlock()

	return &models.CommandResult{Type: cmd.Type, UserID: cmd.UserID, Data: entries}, nil
}

package agent

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/skateiq/fantasy-agent/internal/models"
)

// RefreshStats drops cached data for every rostered player and refetches
// stats and game logs in fixed-size chunks. Per-player failures are logged
// and do not stop the refresh.
func (a *Agent) RefreshStats(ctx context.Context) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	if a.data == nil {
		return fmt.Errorf("%w: no data source configured", models.ErrDataUnavailable)
	}

	ids := a.rosteredPlayers()
	failed := 0
	for start := 0; start < len(ids); start += a.cfg.RefreshChunkSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunk := ids[start:min(start+a.cfg.RefreshChunkSize, len(ids))]

		var g errgroup.Group
		errs := make([]error, len(chunk))
		for i, id := range chunk {
			g.Go(func() error {
				errs[i] = a.refreshPlayerData(ctx, id)
				return nil
			})
		}
		_ = g.Wait()

		for i, err := range errs {
			if err != nil {
				failed++
				a.logger.Warnw("Player refresh failed", "player", chunk[i], "error", err)
			}
		}
	}

	a.mu.Lock()
	a.agentState.LastStatsRefresh = a.now().UTC()
	a.stateDirty = true
	a.mu.Unlock()
	a.persist.schedule()

	a.logger.Infow("Stats refreshed", "players", len(ids), "failed", failed)
	a.events.Publish(Event{Type: EventStatsRefreshed, Detail: fmt.Sprintf("%d players, %d failed", len(ids), failed)})
	return nil
}

func (a *Agent) refreshPlayerData(ctx context.Context, playerID int64) error {
	if err := a.data.Invalidate(ctx, playerID); err != nil {
		return err
	}
	if _, err := a.data.FetchStats(ctx, playerID, 0); err != nil {
		return err
	}
	_, err := a.data.FetchGameLog(ctx, playerID, a.cfg.GameLogLimit)
	return err
}

// rosteredPlayers returns the distinct player ids across all teams, sorted.
func (a *Agent) rosteredPlayers() []int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	seen := make(map[int64]struct{})
	var ids []int64
	for _, t := range a.teams {
		for _, e := range t.Roster {
			if _, ok := seen[e.PlayerID]; ok {
				continue
			}
			seen[e.PlayerID] = struct{}{}
			ids = append(ids, e.PlayerID)
		}
	}
	slices.Sort(ids)
	return ids
}

// RegenerateRecommendations recomputes advice for every known user. One
// user's failure does not stop the run.
func (a *Agent) RegenerateRecommendations(ctx context.Context) error {
	if err := a.requireReady(); err != nil {
		return err
	}

	a.mu.RLock()
	users := make([]string, 0, len(a.teams))
	for userID := range a.teams {
		users = append(users, userID)
	}
	a.mu.RUnlock()
	slices.Sort(users)

	failed := 0
	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := a.GenerateRecommendations(ctx, userID); err != nil {
			failed++
			a.logger.Warnw("Recommendation generation failed", "user", userID, "error", err)
		}
	}

	a.mu.Lock()
	a.agentState.LastRecommendationRun = a.now().UTC()
	a.stateDirty = true
	a.mu.Unlock()
	a.persist.schedule()

	a.logger.Infow("Recommendation run complete", "users", len(users), "failed", failed)
	return nil
}

// GenerateRecommendations composes, stores and forwards advice for one user.
func (a *Agent) GenerateRecommendations(ctx context.Context, userID string) (*models.TeamRecommendations, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	team, err := a.teamSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	rec, err := a.rec.Recommend(ctx, userID, team.PlayerIDs())
	if err != nil {
		return nil, fmt.Errorf("%w: recommendations for %s: %v", models.ErrDataUnavailable, userID, err)
	}
	if err := a.store.SaveUserRecommendations(ctx, userID, rec); err != nil {
		a.logger.Warnw("Failed to store recommendations", "user", userID, "error", err)
	}
	if a.sink != nil {
		a.sink.EnqueueRecommendations(rec)
	}

	a.events.Publish(Event{Type: EventRecommendationsReady, UserID: userID})
	return rec, nil
}

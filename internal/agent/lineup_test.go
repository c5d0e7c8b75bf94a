package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/skateiq/fantasy-agent/internal/logic"
	"github.com/skateiq/fantasy-agent/internal/models"
)

func lineupAcceptable(roster map[int64]bool, p models.SetLineupPayload) bool {
	if len(p.Starters) > logic.MaxStarters {
		return false
	}
	seen := make(map[int64]bool)
	for _, id := range append(append([]int64{}, p.Starters...), p.Bench...) {
		if !roster[id] || seen[id] {
			return false
		}
		seen[id] = true
	}
	return true
}

func TestSetLineup_AppliesWholeLineupOrNothing(t *testing.T) {
	f := newFixture(t, nil)
	f.start(t)

	round := 0
	rapid.Check(t, func(rt *rapid.T) {
		round++
		userID := fmt.Sprintf("u%d", round)

		ids := rapid.SliceOfNDistinct(rapid.Int64Range(1, 30), 0, 14, rapid.ID[int64]).Draw(rt, "roster")
		team := models.NewUserTeam(userID)
		roster := make(map[int64]bool, len(ids))
		for _, id := range ids {
			team.Roster = append(team.Roster, models.RosterEntry{PlayerID: id})
			roster[id] = true
		}
		team.Lineup.Bench = append([]int64{}, ids...)

		f.agent.mu.Lock()
		f.agent.teams[userID] = team.Clone()
		f.agent.mu.Unlock()

		payload := models.SetLineupPayload{
			Starters: rapid.SliceOfN(rapid.Int64Range(1, 40), 0, 12).Draw(rt, "starters"),
			Bench:    rapid.SliceOfN(rapid.Int64Range(1, 40), 0, 12).Draw(rt, "bench"),
		}

		_, err := f.agent.ProcessCommand(context.Background(), cmd(t, models.CommandSetLineup, userID, payload))

		f.agent.mu.RLock()
		got := f.agent.teams[userID].Lineup
		f.agent.mu.RUnlock()

		if lineupAcceptable(roster, payload) {
			if err != nil {
				rt.Fatalf("valid lineup rejected: %v", err)
			}
			want := models.Lineup{
				Starters: append([]int64{}, payload.Starters...),
				Bench:    append([]int64{}, payload.Bench...),
			}
			if fmt.Sprint(got) != fmt.Sprint(want) {
				rt.Fatalf("lineup %v, want %v", got, want)
			}
			return
		}
		if !errors.Is(err, models.ErrValidation) {
			rt.Fatalf("invalid lineup %+v: got %v, want validation error", payload, err)
		}
		if fmt.Sprint(got) != fmt.Sprint(team.Lineup) {
			rt.Fatalf("lineup changed on rejection: %v, was %v", got, team.Lineup)
		}
	})
}

package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/skateiq/fantasy-agent/internal/models"
)

const flushTimeout = 10 * time.Second

// persister coalesces saves behind a debounce timer and writes dirty state
// to the store. Failed writes stay dirty for the next flush.
type persister struct {
	agent    *Agent
	debounce time.Duration

	timerMu sync.Mutex
	timer   *time.Timer
	stopped bool

	flushMu sync.Mutex
}

func newPersister(a *Agent, debounce time.Duration) *persister {
	return &persister{agent: a, debounce: debounce}
}

// schedule (re)arms the debounce timer.
func (p *persister) schedule() {
	p.timerMu.Lock()
	defer p.timerMu.Unlock()
	if p.stopped {
		return
	}
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.debounce, func() {
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()
		p.flush(ctx)
	})
}

// stop cancels any pending debounced save.
func (p *persister) stop() {
	p.timerMu.Lock()
	defer p.timerMu.Unlock()
	p.stopped = true
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// flush writes dirty teams, agent state and pending memory entries.
func (p *persister) flush(ctx context.Context) error {
	p.flushMu.Lock()
	defer p.flushMu.Unlock()

	a := p.agent

	a.mu.Lock()
	teams := make([]*models.UserTeam, 0, len(a.dirtyUsers))
	for userID := range a.dirtyUsers {
		if t, ok := a.teams[userID]; ok {
			teams = append(teams, t.Clone())
		}
	}
	a.dirtyUsers = make(map[string]struct{})

	var state *models.AgentState
	if a.stateDirty || len(teams) > 0 {
		s := a.agentState
		s.KnownUsers = append([]string{}, a.agentState.KnownUsers...)
		s.UpdatedAt = a.now().UTC()
		state = &s
	}
	a.stateDirty = false

	pending := a.pendingMemory
	a.pendingMemory = nil
	a.mu.Unlock()

	if len(teams) == 0 && state == nil && len(pending) == 0 {
		return nil
	}

	var errs []error
	for _, t := range teams {
		if err := a.store.SaveUserTeam(ctx, t); err != nil {
			errs = append(errs, fmt.Errorf("save team %s: %w", t.UserID, err))
			a.markUserDirty(t.UserID)
		}
	}
	if state != nil {
		if err := a.store.SaveAgentState(ctx, state); err != nil {
			errs = append(errs, fmt.Errorf("save agent state: %w", err))
			a.mu.Lock()
			a.stateDirty = true
			a.mu.Unlock()
		}
	}
	if len(pending) > 0 {
		if err := a.store.AppendAgentMemory(ctx, pending); err != nil {
			errs = append(errs, fmt.Errorf("append memory: %w", err))
			a.mu.Lock()
			a.pendingMemory = a.boundPending(append(pending, a.pendingMemory...))
			a.mu.Unlock()
		}
	}

	if err := errors.Join(errs...); err != nil {
		flushesTotal.WithLabelValues("failure").Inc()
		a.logger.Errorw("State flush failed, will retry on next flush", "error", err)
		a.events.Publish(Event{Type: EventPersistenceFailed, Detail: err.Error()})
		return err
	}

	flushesTotal.WithLabelValues("success").Inc()
	a.logger.Debugw("State flushed", "teams", len(teams), "memoryEntries", len(pending), "state", state != nil)
	a.events.Publish(Event{Type: EventPersisted})
	return nil
}

// boundPending keeps the newest MemoryLimit unwritten entries. Older ones
// remain only in the in-memory log. Callers hold a.mu.
func (a *Agent) boundPending(entries []models.AgentMemoryEntry) []models.AgentMemoryEntry {
	if over := len(entries) - a.cfg.MemoryLimit; over > 0 {
		pendingDroppedTotal.Add(float64(over))
		a.logger.Warnw("Dropping unpersisted memory entries", "dropped", over)
		entries = append([]models.AgentMemoryEntry(nil), entries[over:]...)
	}
	return entries
}

func (a *Agent) markUserDirty(userID string) {
	a.mu.Lock()
	a.dirtyUsers[userID] = struct{}{}
	a.mu.Unlock()
}

package agent

import (
	"github.com/skateiq/fantasy-agent/internal/models"
)

// MemoryLog is a bounded, append-only log. Once full, the oldest entry is
// evicted on every append. It is not safe for concurrent use.
type MemoryLog struct {
	limit   int
	entries []models.AgentMemoryEntry
}

func NewMemoryLog(limit int) *MemoryLog {
	if limit <= 0 {
		limit = 1000
	}
	return &MemoryLog{limit: limit, entries: make([]models.AgentMemoryEntry, 0, min(limit, 64))}
}

// Append adds e, evicting from the front past the limit.
func (m *MemoryLog) Append(e models.AgentMemoryEntry) {
	m.entries = append(m.entries, e)
	if over := len(m.entries) - m.limit; over > 0 {
		m.entries = append(m.entries[:0:0], m.entries[over:]...)
	}
}

// Load replaces the log with entries, keeping the newest within the limit.
func (m *MemoryLog) Load(entries []models.AgentMemoryEntry) {
	m.entries = m.entries[:0]
	for _, e := range entries {
		m.Append(e)
	}
}

func (m *MemoryLog) Len() int { return len(m.entries) }

// Recent returns up to limit of the newest entries in chronological order,
// optionally filtered by category.
func (m *MemoryLog) Recent(limit int, category models.MemoryCategory) []models.AgentMemoryEntry {
	if limit <= 0 {
		limit = m.limit
	}
	out := make([]models.AgentMemoryEntry, 0, min(limit, len(m.entries)))
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if category != "" && m.entries[i].Category != category {
			continue
		}
		out = append(out, m.entries[i])
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

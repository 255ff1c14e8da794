package session

import (
	"sort"
	"sync"

	"deskfolio.dev/internal/desktop/content"
)

// Metrics aggregates counters across sessions.
type Metrics struct {
	mu    sync.Mutex
	acts  map[string]uint64
	opens map[content.Key]uint64
	clues uint64
}

func NewMetrics() *Metrics {
	return &Metrics{
		acts:  map[string]uint64{},
		opens: map[content.Key]uint64{},
	}
}

func (m *Metrics) incAct(code string) {
	if code == "" {
		code = "OK"
	}
	m.mu.Lock()
	m.acts[code]++
	m.mu.Unlock()
}

func (m *Metrics) incOpen(k content.Key) {
	m.mu.Lock()
	m.opens[k]++
	m.mu.Unlock()
}

func (m *Metrics) incClue() {
	m.mu.Lock()
	m.clues++
	m.mu.Unlock()
}

type Counter struct {
	Label string
	Value uint64
}

type MetricsSnapshot struct {
	ActsByCode []Counter
	OpensByKey []Counter
	Clues      uint64
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := MetricsSnapshot{Clues: m.clues}
	for code, n := range m.acts {
		snap.ActsByCode = append(snap.ActsByCode, Counter{Label: code, Value: n})
	}
	for k, n := range m.opens {
		snap.OpensByKey = append(snap.OpensByKey, Counter{Label: string(k), Value: n})
	}
	sortCounters(snap.ActsByCode)
	sortCounters(snap.OpensByKey)
	return snap
}

func sortCounters(cs []Counter) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].Label < cs[j].Label })
}

package session

import (
	"errors"
	"sort"
	"sync"
)

// ErrBusy is returned by Register when the manager is at capacity.
var ErrBusy = errors.New("session capacity reached")

// Manager tracks live sessions for admission, metrics and admin listing.
// It never touches session state beyond the published Summary.
type Manager struct {
	mu    sync.RWMutex
	max   int
	live  map[string]*Session
	total uint64
}

// NewManager caps live sessions at max; max <= 0 means no cap.
func NewManager(max int) *Manager {
	return &Manager{max: max, live: map[string]*Session{}}
}

func (m *Manager) Register(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.max > 0 && len(m.live) >= m.max {
		return ErrBusy
	}
	m.live[s.ID()] = s
	m.total++
	return nil
}

func (m *Manager) Unregister(id string) {
	m.mu.Lock()
	delete(m.live, id)
	m.mu.Unlock()
}

func (m *Manager) Live() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.live)
}

func (m *Manager) Total() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.total
}

// List returns live session summaries ordered by open time.
func (m *Manager) List() []Summary {
	m.mu.RLock()
	out := make([]Summary, 0, len(m.live))
	for _, s := range m.live {
		out = append(out, s.Summary())
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OpenedAt.Equal(out[j].OpenedAt) {
			return out[i].OpenedAt.Before(out[j].OpenedAt)
		}
		return out[i].SessionID < out[j].SessionID
	})
	return out
}

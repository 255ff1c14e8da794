// Package clues tracks scavenger-hunt progress for one session.
//
// The collected set is owned by a Tracker. Content modules only ever receive
// a CollectFunc, so they can add to the hunt but cannot read or clear it.
package clues

import (
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ID identifies one clue. IDs are not validated against a catalog.
type ID int

// CollectFunc records a clue. It is safe to call repeatedly with the same id.
type CollectFunc func(id ID)

// Progress is a read-only view of the hunt.
type Progress struct {
	Collected int `json:"collected"`
	Total     int `json:"total"`
}

// Complete reports whether every wired clue has been found.
func (p Progress) Complete() bool {
	return p.Total > 0 && p.Collected >= p.Total
}

// Label renders progress copy such as "3/5 clues found".
func (p Progress) Label(tag language.Tag) string {
	return message.NewPrinter(tag).Sprintf("%d/%d clues found", p.Collected, p.Total)
}

// Tracker is not safe for concurrent use; the owning session serialises access.
type Tracker struct {
	total     int
	collected map[ID]struct{}
	onCollect []func(ID)
}

// NewTracker returns an empty tracker. total comes from configuration.
func NewTracker(total int) *Tracker {
	if total < 0 {
		total = 0
	}
	return &Tracker{
		total:     total,
		collected: map[ID]struct{}{},
	}
}

// Collect adds id if absent and reports whether the set grew.
func (t *Tracker) Collect(id ID) bool {
	if _, ok := t.collected[id]; ok {
		return false
	}
	t.collected[id] = struct{}{}
	for _, fn := range t.onCollect {
		fn(id)
	}
	return true
}

func (t *Tracker) Progress() Progress {
	return Progress{Collected: len(t.collected), Total: t.total}
}

// Collector returns the capability handed to content modules.
func (t *Tracker) Collector() CollectFunc {
	return func(id ID) { t.Collect(id) }
}

// OnCollect registers fn to run after a new id is added. Duplicates do not fire.
func (t *Tracker) OnCollect(fn func(ID)) {
	if fn == nil {
		return
	}
	t.onCollect = append(t.onCollect, fn)
}

// Sorted returns a copy of the collected ids in ascending order.
// It is meant for digests and journals, not for content modules.
func (t *Tracker) Sorted() []ID {
	out := make([]ID, 0, len(t.collected))
	for id := range t.collected {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

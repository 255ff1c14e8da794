// Package content maps content keys to the interactive modules shown in
// desktop windows.
//
// A Registry is built once from a fixed list of entries and never changes
// afterwards, so it needs no locking and lookups have no side effects.
package content

import (
	"fmt"

	"github.com/a-h/templ"

	"deskfolio.dev/internal/desktop/clues"
	"deskfolio.dev/internal/desktop/phase"
)

// Module is a self-contained renderable unit. It takes no input from the
// core when rendering.
type Module interface {
	templ.Component
}

// Event is a widget-level input (click, drag, key, scroll) forwarded to
// the mounted module.
type Event struct {
	Target string `json:"target,omitempty"`
	Name   string `json:"name"`
	X      int    `json:"x,omitempty"`
	Y      int    `json:"y,omitempty"`
	DX     int    `json:"dx,omitempty"`
	DY     int    `json:"dy,omitempty"`
	Index  int    `json:"index,omitempty"`
	AtMS   int64  `json:"at_ms,omitempty"`
	Text   string `json:"text,omitempty"`
}

// Capabilities are the only hooks a module gets into the core.
type Capabilities struct {
	NavigateTo  func(phase.Phase)
	CollectClue clues.CollectFunc
}

// Navigate is nil-safe.
func (c Capabilities) Navigate(p phase.Phase) {
	if c.NavigateTo != nil {
		c.NavigateTo(p)
	}
}

// Collect is nil-safe.
func (c Capabilities) Collect(id clues.ID) {
	if c.CollectClue != nil {
		c.CollectClue(id)
	}
}

// Interactive modules accept events. Modules that are pure markup don't
// implement it.
type Interactive interface {
	HandleEvent(ev Event, caps Capabilities)
}

// TextRenderer is implemented by modules that can draw themselves for the
// terminal client.
type TextRenderer interface {
	Text() string
}

// Entry is one (key, module) registration.
type Entry struct {
	Key    Key
	Title  string
	Module Module
}

type Registry struct {
	entries []Entry
	byKey   map[Key]int
}

// New validates entries and freezes them into a Registry.
func New(entries []Entry) (*Registry, error) {
	r := &Registry{
		entries: make([]Entry, 0, len(entries)),
		byKey:   make(map[Key]int, len(entries)),
	}
	for i, e := range entries {
		if !e.Key.Known() {
			return nil, fmt.Errorf("entries[%d]: %w", i, newUnknownKeyError(e.Key, knownKeys))
		}
		if e.Module == nil {
			return nil, fmt.Errorf("entries[%d]: module for %q is nil", i, e.Key)
		}
		if _, dup := r.byKey[e.Key]; dup {
			return nil, fmt.Errorf("entries[%d]: duplicate key %q", i, e.Key)
		}
		if e.Title == "" {
			e.Title = DeriveTitle(e.Key)
		}
		r.byKey[e.Key] = len(r.entries)
		r.entries = append(r.entries, e)
	}
	return r, nil
}

// Resolve returns the module registered for key. The same value is returned
// on every call.
func (r *Registry) Resolve(key Key) (Module, error) {
	i, ok := r.byKey[key]
	if !ok {
		return nil, newUnknownKeyError(key, r.Keys())
	}
	return r.entries[i].Module, nil
}

// Lookup parses raw wire text and resolves it in one step.
func (r *Registry) Lookup(raw string) (Key, Module, error) {
	k, err := ParseKey(raw)
	if err != nil {
		return "", nil, err
	}
	m, err := r.Resolve(k)
	if err != nil {
		return "", nil, err
	}
	return k, m, nil
}

func (r *Registry) Has(key Key) bool {
	_, ok := r.byKey[key]
	return ok
}

// Title returns the registered title, falling back to one derived from key.
func (r *Registry) Title(key Key) string {
	if i, ok := r.byKey[key]; ok {
		return r.entries[i].Title
	}
	return DeriveTitle(key)
}

func (r *Registry) Keys() []Key {
	out := make([]Key, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Key)
	}
	return out
}

// Entries returns a copy in registration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *Registry) Len() int { return len(r.entries) }

// Package host owns the desktop navigation state: which phase is visible
// and which window, if any, is open in the lobby.
//
// A Host is not safe for concurrent use. Every call is expected to come from
// one goroutine (the session loop), in input-event order.
package host

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"deskfolio.dev/internal/desktop/clues"
	"deskfolio.dev/internal/desktop/content"
	"deskfolio.dev/internal/desktop/phase"
)

// Window is the at-most-one open content module in the lobby.
type Window struct {
	Key   content.Key `json:"key"`
	Title string      `json:"title"`
}

type ChangeKind string

const (
	ChangeNavigate ChangeKind = "navigate"
	ChangeOpen     ChangeKind = "open"
	ChangeClose    ChangeKind = "close"
	ChangeClue     ChangeKind = "clue"
)

// Change describes one effective transition. No-op calls produce none.
type Change struct {
	Kind  ChangeKind
	From  phase.Phase
	To    phase.Phase
	Key   content.Key
	Clue  clues.ID
	Phase phase.Phase
}

type Host struct {
	registry *content.Registry
	tracker  *clues.Tracker

	phase  phase.Phase
	active *Window

	listeners []func(Change)
}

func New(reg *content.Registry, tracker *clues.Tracker) *Host {
	h := &Host{
		registry: reg,
		tracker:  tracker,
		phase:    phase.Initial,
	}
	tracker.OnCollect(func(id clues.ID) {
		h.emit(Change{Kind: ChangeClue, Clue: id, Phase: h.phase})
	})
	return h
}

// OnChange subscribes fn to every effective transition.
func (h *Host) OnChange(fn func(Change)) {
	if fn == nil {
		return
	}
	h.listeners = append(h.listeners, fn)
}

func (h *Host) emit(c Change) {
	for _, fn := range h.listeners {
		fn(c)
	}
}

func (h *Host) Phase() phase.Phase { return h.phase }

func (h *Host) Active() (Window, bool) {
	if h.active == nil {
		return Window{}, false
	}
	return *h.active, true
}

func (h *Host) Progress() clues.Progress { return h.tracker.Progress() }

func (h *Host) Registry() *content.Registry { return h.registry }

// NavigateTo switches phase. Navigating to the current phase does nothing.
// Leaving the lobby closes any open window; returning starts with none.
func (h *Host) NavigateTo(to phase.Phase) {
	if !to.Valid() || to == h.phase {
		return
	}
	from := h.phase
	h.active = nil
	h.phase = to
	h.emit(Change{Kind: ChangeNavigate, From: from, To: to, Phase: to})
}

// OpenContent replaces the lobby window with key. An unknown key returns
// content.ErrUnknownContentKey (as *content.UnknownKeyError) and leaves the
// window as it was. Outside the lobby the request is declined silently.
func (h *Host) OpenContent(key content.Key) error {
	if _, err := h.registry.Resolve(key); err != nil {
		return err
	}
	if h.phase != phase.Lobby {
		return nil
	}
	if h.active != nil && h.active.Key == key {
		return nil
	}
	h.active = &Window{Key: key, Title: h.registry.Title(key)}
	h.emit(Change{Kind: ChangeOpen, Key: key, Phase: h.phase})
	return nil
}

// CloseContent clears the lobby window. It is a no-op when nothing is open.
func (h *Host) CloseContent() {
	if h.active == nil {
		return
	}
	key := h.active.Key
	h.active = nil
	h.emit(Change{Kind: ChangeClose, Key: key, Phase: h.phase})
}

// Navigator is the navigateTo capability handed to modules.
func (h *Host) Navigator() func(phase.Phase) { return h.NavigateTo }

// Collector is the collectClue capability handed to modules.
func (h *Host) Collector() clues.CollectFunc { return h.tracker.Collector() }

// Capabilities bundles the callbacks a mounted module may use.
func (h *Host) Capabilities() content.Capabilities {
	return content.Capabilities{
		NavigateTo:  h.Navigator(),
		CollectClue: h.Collector(),
	}
}

// Digest hashes the canonical state (phase, active key, sorted clues).
func (h *Host) Digest() string {
	var b strings.Builder
	b.WriteString(string(h.phase))
	b.WriteByte('|')
	if h.active != nil {
		b.WriteString(string(h.active.Key))
	}
	b.WriteByte('|')
	for i, id := range h.tracker.Sorted() {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", id)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

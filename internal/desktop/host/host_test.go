package host

import (
	"context"
	"errors"
	"io"
	"testing"

	"deskfolio.dev/internal/desktop/clues"
	"deskfolio.dev/internal/desktop/content"
	"deskfolio.dev/internal/desktop/phase"
)

type blankModule struct{}

func (blankModule) Render(context.Context, io.Writer) error { return nil }

func newTestHost(t *testing.T) *Host {
	t.Helper()
	var entries []content.Entry
	for _, k := range content.KnownKeys() {
		entries = append(entries, content.Entry{Key: k, Module: blankModule{}})
	}
	reg, err := content.New(entries)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return New(reg, clues.NewTracker(5))
}

func mustActive(t *testing.T, h *Host, want content.Key) {
	t.Helper()
	w, ok := h.Active()
	if !ok {
		t.Fatalf("expected active window %q, got none", want)
	}
	if w.Key != want {
		t.Fatalf("active=%q want %q", w.Key, want)
	}
}

func mustNoWindow(t *testing.T, h *Host) {
	t.Helper()
	if w, ok := h.Active(); ok {
		t.Fatalf("expected no window, got %q", w.Key)
	}
}

func TestInitialState(t *testing.T) {
	h := newTestHost(t)
	if h.Phase() != phase.Lobby {
		t.Fatalf("phase=%q want lobby", h.Phase())
	}
	mustNoWindow(t, h)
	if p := h.Progress(); p.Collected != 0 || p.Total != 5 {
		t.Fatalf("progress=%+v want 0/5", p)
	}
}

func TestNavigateIsIdempotentAndLastWins(t *testing.T) {
	seqs := [][]phase.Phase{
		{phase.Underworld, phase.Underworld},
		{phase.Underworld, phase.Lobby, phase.Underworld},
		{phase.Lobby, phase.Lobby},
		{phase.Underworld, phase.Lobby},
	}
	for _, seq := range seqs {
		h := newTestHost(t)
		for _, p := range seq {
			h.NavigateTo(p)
		}
		if got, want := h.Phase(), seq[len(seq)-1]; got != want {
			t.Fatalf("seq %v: phase=%q want %q", seq, got, want)
		}
	}
}

func TestNavigateIgnoresInvalidPhase(t *testing.T) {
	h := newTestHost(t)
	h.NavigateTo(phase.Phase("attic"))
	if h.Phase() != phase.Lobby {
		t.Fatalf("invalid phase must be ignored, phase=%q", h.Phase())
	}
}

func TestOpenInUnderworldHasNoEffect(t *testing.T) {
	h := newTestHost(t)
	h.NavigateTo(phase.Underworld)
	if err := h.OpenContent(content.KeyReadme); err != nil {
		t.Fatalf("open in underworld: %v", err)
	}
	mustNoWindow(t, h)
	if h.Phase() != phase.Underworld {
		t.Fatalf("open must not change phase")
	}
}

func TestOpenReplacesWithoutStacking(t *testing.T) {
	h := newTestHost(t)
	if err := h.OpenContent(content.KeyProjMatchFive); err != nil {
		t.Fatalf("open match-five: %v", err)
	}
	if err := h.OpenContent(content.KeyExpCadence); err != nil {
		t.Fatalf("open cadence: %v", err)
	}
	mustActive(t, h, content.KeyExpCadence)
	h.CloseContent()
	mustNoWindow(t, h)
}

func TestOpenUnknownKeyLeavesWindow(t *testing.T) {
	h := newTestHost(t)
	_ = h.OpenContent(content.KeyReadme)
	err := h.OpenContent(content.Key("does-not-exist"))
	if !errors.Is(err, content.ErrUnknownContentKey) {
		t.Fatalf("err=%v want ErrUnknownContentKey", err)
	}
	mustActive(t, h, content.KeyReadme)
}

func TestOpenUnregisteredKnownKey(t *testing.T) {
	reg, err := content.New([]content.Entry{{Key: content.KeyReadme, Module: blankModule{}}})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	h := New(reg, clues.NewTracker(1))
	if err := h.OpenContent(content.KeyTerminal); !errors.Is(err, content.ErrUnknownContentKey) {
		t.Fatalf("err=%v want ErrUnknownContentKey", err)
	}
	mustNoWindow(t, h)
}

func TestCloseIsNoopWhenEmpty(t *testing.T) {
	h := newTestHost(t)
	var changes []Change
	h.OnChange(func(c Change) { changes = append(changes, c) })
	h.CloseContent()
	h.CloseContent()
	if len(changes) != 0 {
		t.Fatalf("close on empty emitted %d changes", len(changes))
	}
}

func TestUnderworldClearsWindowAndReturnIsFresh(t *testing.T) {
	h := newTestHost(t)
	_ = h.OpenContent(content.KeyReadme)
	h.NavigateTo(phase.Underworld)
	mustNoWindow(t, h)
	h.NavigateTo(phase.Lobby)
	mustNoWindow(t, h)
}

func TestEndToEndScenario(t *testing.T) {
	h := newTestHost(t)
	if h.Phase() != phase.Lobby || h.Progress().Collected != 0 {
		t.Fatalf("bad initial state")
	}
	if err := h.OpenContent(content.KeyReadme); err != nil {
		t.Fatalf("open readme: %v", err)
	}
	mustActive(t, h, content.KeyReadme)

	h.NavigateTo(phase.Underworld)
	mustNoWindow(t, h)
	if h.Phase() != phase.Underworld {
		t.Fatalf("phase=%q want underworld", h.Phase())
	}

	h.Collector()(4)
	if p := h.Progress(); p.Collected != 1 || p.Total != 5 {
		t.Fatalf("progress=%+v want 1/5", p)
	}

	h.NavigateTo(phase.Lobby)
	if h.Phase() != phase.Lobby {
		t.Fatalf("phase=%q want lobby", h.Phase())
	}
	mustNoWindow(t, h)
	if p := h.Progress(); p.Collected != 1 {
		t.Fatalf("progress after return=%+v want 1/5", p)
	}
}

func TestChangesAreEmittedInOrder(t *testing.T) {
	h := newTestHost(t)
	var kinds []ChangeKind
	h.OnChange(func(c Change) { kinds = append(kinds, c.Kind) })

	_ = h.OpenContent(content.KeyReadme)
	_ = h.OpenContent(content.KeyReadme)
	h.NavigateTo(phase.Underworld)
	h.NavigateTo(phase.Underworld)
	caps := h.Capabilities()
	caps.Collect(4)
	caps.Collect(4)
	caps.Navigate(phase.Lobby)

	want := []ChangeKind{ChangeOpen, ChangeNavigate, ChangeClue, ChangeNavigate}
	if len(kinds) != len(want) {
		t.Fatalf("changes=%v want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("changes=%v want %v", kinds, want)
		}
	}
}

func TestDigestTracksState(t *testing.T) {
	a := newTestHost(t)
	b := newTestHost(t)
	if a.Digest() != b.Digest() {
		t.Fatalf("fresh hosts should share a digest")
	}
	_ = a.OpenContent(content.KeyReadme)
	if a.Digest() == b.Digest() {
		t.Fatalf("digest should change after open")
	}
	_ = b.OpenContent(content.KeyReadme)
	if a.Digest() != b.Digest() {
		t.Fatalf("same state should share a digest")
	}
	a.Collector()(2)
	a.Collector()(2)
	b.Collector()(2)
	if a.Digest() != b.Digest() {
		t.Fatalf("duplicate collects must not change the digest")
	}
}

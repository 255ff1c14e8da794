package modules

import (
	"context"
	"fmt"
	"io"

	"deskfolio.dev/internal/desktop/content"
	"deskfolio.dev/internal/desktop/markup"
	"deskfolio.dev/internal/desktop/phase"
)

const (
	UnderworldWidth  = 4000
	UnderworldHeight = 4000
	ViewportWidth    = 800
	ViewportHeight   = 600
)

// ClueSpot is where the underworld clue is drawn.
var ClueSpot = struct{ X, Y int }{3200, 3600}

// Underworld is the oversized scroll region shown in the underworld phase.
// It is mounted by the shell, not registered as content.
type Underworld struct {
	x, y  int
	found bool
}

func NewUnderworld() *Underworld { return &Underworld{} }

// Viewport reports the current scroll origin.
func (u *Underworld) Viewport() (int, int) { return u.x, u.y }

func (u *Underworld) HandleEvent(ev content.Event, caps content.Capabilities) {
	switch ev.Name {
	case "scroll":
		u.x = clamp(ev.X, 0, UnderworldWidth-ViewportWidth)
		u.y = clamp(ev.Y, 0, UnderworldHeight-ViewportHeight)
		if u.spotVisible() {
			u.found = true
			caps.Collect(ClueUnderworld)
		}
	case "return":
		caps.Navigate(phase.Lobby)
	}
}

func (u *Underworld) spotVisible() bool {
	return ClueSpot.X >= u.x && ClueSpot.X < u.x+ViewportWidth &&
		ClueSpot.Y >= u.y && ClueSpot.Y < u.y+ViewportHeight
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (u *Underworld) Render(_ context.Context, w io.Writer) error {
	hw := markup.NewWriter(w)
	hw.Printf(`<div class="underworld" data-act="module_event" data-name="scroll" data-x="%d" data-y="%d">`, u.x, u.y)
	hw.Printf(`<div class="underworld-canvas" style="width:%dpx;height:%dpx">`, UnderworldWidth, UnderworldHeight)
	class := "clue-spot"
	if u.found {
		class += " found"
	}
	hw.Printf(`<span class="%s" style="left:%dpx;top:%dpx">4</span>`, class, ClueSpot.X, ClueSpot.Y)
	hw.Raw(`</div>`)
	hw.Raw(`<button class="ladder" data-act="module_event" data-name="return">climb back up</button>`)
	hw.Raw(`</div>`)
	return hw.Err()
}

func (u *Underworld) Text() string {
	s := fmt.Sprintf("underworld  view %d,%d  (%dx%d)", u.x, u.y, UnderworldWidth, UnderworldHeight)
	if u.spotVisible() {
		s += "\n  something glints here: 4"
	}
	return s
}

package modules

import (
	"context"
	"io"
	"strings"

	"deskfolio.dev/internal/desktop/content"
	"deskfolio.dev/internal/desktop/markup"
)

const matchFiveTiles = 5

// MatchFive is a one-row lights puzzle. Flipping a tile toggles it and its
// neighbours; the board is solved when every tile is lit.
type MatchFive struct {
	tiles  [matchFiveTiles]bool
	moves  int
	solved bool
}

func NewMatchFive() *MatchFive { return &MatchFive{} }

func (m *MatchFive) Solved() bool { return m.solved }
func (m *MatchFive) Moves() int   { return m.moves }

func (m *MatchFive) HandleEvent(ev content.Event, caps content.Capabilities) {
	switch ev.Name {
	case "flip":
		if m.solved || ev.Index < 0 || ev.Index >= matchFiveTiles {
			return
		}
		for i := ev.Index - 1; i <= ev.Index+1; i++ {
			if i >= 0 && i < matchFiveTiles {
				m.tiles[i] = !m.tiles[i]
			}
		}
		m.moves++
		if m.allLit() {
			m.solved = true
			caps.Collect(ClueMatchFive)
		}
	case "reset":
		*m = MatchFive{}
	}
}

func (m *MatchFive) allLit() bool {
	for _, on := range m.tiles {
		if !on {
			return false
		}
	}
	return true
}

func (m *MatchFive) Render(_ context.Context, w io.Writer) error {
	hw := markup.NewWriter(w)
	hw.Raw(`<div class="match-five"><div class="tiles">`)
	for i, on := range m.tiles {
		class := "tile"
		if on {
			class += " lit"
		}
		hw.Printf(`<button class="%s" data-act="module_event" data-name="flip" data-index="%d"></button>`, class, i)
	}
	hw.Raw(`</div>`)
	if m.solved {
		hw.Printf(`<p class="status">solved in %d moves</p>`, m.moves)
	} else {
		hw.Printf(`<p class="status">moves: %d</p>`, m.moves)
	}
	hw.Raw(`<button data-act="module_event" data-name="reset">reset</button></div>`)
	return hw.Err()
}

func (m *MatchFive) Text() string {
	var b strings.Builder
	for _, on := range m.tiles {
		if on {
			b.WriteString("[#]")
		} else {
			b.WriteString("[ ]")
		}
	}
	if m.solved {
		b.WriteString("  solved")
	}
	return b.String()
}

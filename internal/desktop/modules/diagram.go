package modules

import (
	"context"
	"fmt"
	"io"

	"deskfolio.dev/internal/desktop/content"
	"deskfolio.dev/internal/desktop/markup"
)

// DiagramClueRadius is how far the viewport must be dragged from the origin,
// on either axis, before the diagram gives up its clue.
const DiagramClueRadius = 600

type diagramNode struct {
	ID    string
	Label string
	X, Y  int
}

type diagramEdge struct{ From, To string }

var (
	diagramNodes = []diagramNode{
		{"browser", "browser", 40, 40},
		{"ws", "websocket edge", 240, 40},
		{"session", "session actor", 440, 40},
		{"host", "phase host", 440, 180},
		{"journal", "journal (zstd)", 240, 180},
		{"index", "index (sqlite)", 240, 300},
		{"hidden", "there is more below", 1100, 900},
	}
	diagramEdges = []diagramEdge{
		{"browser", "ws"},
		{"ws", "session"},
		{"session", "host"},
		{"session", "journal"},
		{"session", "index"},
	}
)

// Diagram is a drag-pan architecture drawing.
type Diagram struct {
	offX, offY int
}

func NewDiagram() *Diagram { return &Diagram{} }

// Offset reports the current pan offset.
func (d *Diagram) Offset() (int, int) { return d.offX, d.offY }

func (d *Diagram) HandleEvent(ev content.Event, caps content.Capabilities) {
	switch ev.Name {
	case "pan":
		d.offX += ev.DX
		d.offY += ev.DY
	case "reset":
		d.offX, d.offY = 0, 0
		return
	default:
		return
	}
	if absInt(d.offX) > DiagramClueRadius || absInt(d.offY) > DiagramClueRadius {
		caps.Collect(ClueDiagram)
	}
}

func (d *Diagram) Render(_ context.Context, w io.Writer) error {
	hw := markup.NewWriter(w)
	hw.Raw(`<div class="diagram" data-act="module_event" data-name="pan">`)
	hw.Printf(`<svg viewBox="0 0 640 400"><g transform="translate(%d %d)">`, -d.offX, -d.offY)
	pos := make(map[string]diagramNode, len(diagramNodes))
	for _, n := range diagramNodes {
		pos[n.ID] = n
	}
	for _, e := range diagramEdges {
		a, b := pos[e.From], pos[e.To]
		hw.Printf(`<line x1="%d" y1="%d" x2="%d" y2="%d"/>`, a.X+60, a.Y+20, b.X+60, b.Y+20)
	}
	for _, n := range diagramNodes {
		hw.Printf(`<g class="node" id="node-%s"><rect x="%d" y="%d" width="120" height="40"/><text x="%d" y="%d">%s</text></g>`,
			markup.Esc(n.ID), n.X, n.Y, n.X+8, n.Y+24, markup.Esc(n.Label))
	}
	hw.Raw(`</g></svg>`)
	hw.Printf(`<p class="diagram-offset">offset %d,%d <button data-act="module_event" data-name="reset">reset</button></p>`, d.offX, d.offY)
	hw.Raw(`</div>`)
	return hw.Err()
}

func (d *Diagram) Text() string {
	s := fmt.Sprintf("offset %d,%d\n", d.offX, d.offY)
	for _, e := range diagramEdges {
		s += fmt.Sprintf("  %s -> %s\n", e.From, e.To)
	}
	return s
}

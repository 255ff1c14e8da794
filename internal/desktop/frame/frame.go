// Package frame draws the window chrome around a content module.
//
// A Frame has three buttons but only close is wired. Minimize and maximize
// are drawn disabled and pressing them changes nothing.
package frame

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

type Control string

const (
	Minimize Control = "minimize"
	Maximize Control = "maximize"
	Close    Control = "close"
)

// ParseControl converts wire text into a Control.
func ParseControl(s string) (Control, error) {
	switch c := Control(s); c {
	case Minimize, Maximize, Close:
		return c, nil
	default:
		return "", fmt.Errorf("unknown window control %q", s)
	}
}

// Capabilities is the set of controls that affect desktop state.
var Capabilities = map[Control]bool{Close: true}

// Wired reports whether pressing c can change state.
func (c Control) Wired() bool { return Capabilities[c] }

// Frame holds nothing beyond what it needs to render.
type Frame struct {
	Title   string
	Child   templ.Component
	OnClose func()
}

func New(title string, child templ.Component, onClose func()) Frame {
	return Frame{Title: title, Child: child, OnClose: onClose}
}

// Press handles a chrome button and reports whether it did anything.
func (f Frame) Press(c Control) bool {
	if !c.Wired() {
		return false
	}
	if f.OnClose == nil {
		return false
	}
	f.OnClose()
	return true
}

// Render implements templ.Component.
func (f Frame) Render(ctx context.Context, w io.Writer) error {
	title := templ.EscapeString(f.Title)
	if _, err := fmt.Fprintf(w, `<section class="window" role="dialog" aria-label="%s">`, title); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, `<header class="window-bar"><span class="window-title">%s</span><span class="window-controls">`, title); err != nil {
		return err
	}
	for _, c := range []Control{Minimize, Maximize, Close} {
		if err := renderControl(w, c, f.OnClose != nil); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, `</span></header><div class="window-body">`); err != nil {
		return err
	}
	if f.Child != nil {
		if err := f.Child.Render(ctx, w); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</div></section>`)
	return err
}

var controlGlyph = map[Control]string{
	Minimize: "_",
	Maximize: "□",
	Close:    "×",
}

func renderControl(w io.Writer, c Control, closable bool) error {
	glyph := controlGlyph[c]
	if c.Wired() && closable {
		_, err := fmt.Fprintf(w, `<button class="window-%s" data-act="%s" aria-label="%s">%s</button>`, c, c, c, glyph)
		return err
	}
	_, err := fmt.Fprintf(w, `<button class="window-%s" disabled aria-label="%s">%s</button>`, c, c, glyph)
	return err
}

// Text draws the frame as a plain-text box around body.
func (f Frame) Text(body string) string {
	width := len([]rune(f.Title)) + 16
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	for _, l := range lines {
		if n := len([]rune(l)) + 4; n > width {
			width = n
		}
	}
	var b strings.Builder
	b.WriteString("+" + strings.Repeat("-", width-2) + "+\n")
	bar := fmt.Sprintf("| %s", f.Title)
	controls := "[_][□][x] |"
	pad := width - len([]rune(bar)) - len([]rune(controls))
	if pad < 1 {
		pad = 1
	}
	b.WriteString(bar + strings.Repeat(" ", pad) + controls + "\n")
	b.WriteString("+" + strings.Repeat("-", width-2) + "+\n")
	for _, l := range lines {
		b.WriteString("| " + l + strings.Repeat(" ", width-4-len([]rune(l))) + " |\n")
	}
	b.WriteString("+" + strings.Repeat("-", width-2) + "+")
	return b.String()
}

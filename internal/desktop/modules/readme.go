package modules

import (
	"context"
	"io"
	"strings"

	"deskfolio.dev/internal/desktop/markup"
)

var readmeLines = []string{
	"Welcome to deskfolio.",
	"",
	"Double-click an icon to open a window. Each window is its own little demo:",
	"a terminal, an architecture diagram you can drag around, an analytics",
	"dashboard and a couple of puzzles.",
	"",
	"Some things here are hidden. Five of them, to be exact.",
}

// Readme is a static panel.
type Readme struct{}

func NewReadme() *Readme { return &Readme{} }

func (r *Readme) Render(_ context.Context, w io.Writer) error {
	hw := markup.NewWriter(w)
	hw.Raw(`<article class="readme">`)
	for _, l := range readmeLines {
		if l == "" {
			hw.Raw(`<br>`)
			continue
		}
		hw.Printf(`<p>%s</p>`, markup.Esc(l))
	}
	hw.Raw(`</article>`)
	return hw.Err()
}

func (r *Readme) Text() string { return strings.Join(readmeLines, "\n") }

// Package shell composes the visible desktop surface from navigation state.
// Render and Text depend only on the View they are given.
package shell

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/text/language"

	"deskfolio.dev/internal/desktop/clues"
	"deskfolio.dev/internal/desktop/content"
	"deskfolio.dev/internal/desktop/frame"
	"deskfolio.dev/internal/desktop/host"
	"deskfolio.dev/internal/desktop/markup"
	"deskfolio.dev/internal/desktop/phase"
)

// MenuItem is one lobby launcher entry.
type MenuItem struct {
	Key   content.Key `json:"key" yaml:"key"`
	Title string      `json:"title" yaml:"title"`
}

// View is everything the surface is drawn from.
type View struct {
	Phase    phase.Phase
	Active   *host.Window
	Module   content.Module
	Menu     []MenuItem
	Progress clues.Progress
	Lang     language.Tag

	// Missing is set when the last open failed; the lobby shows a fallback
	// panel in place of a window.
	Missing *content.UnknownKeyError

	Underworld content.Module

	// OnClose is passed to the frame. The shell never calls it.
	OnClose func()
}

// Render returns the surface as a templ component.
func Render(v View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		sw := markup.NewWriter(w)
		sw.Printf(`<main class="desktop phase-%s">`, v.Phase)
		switch v.Phase {
		case phase.Underworld:
			if v.Underworld != nil {
				sw.Component(ctx, v.Underworld)
			}
		default:
			renderLobby(ctx, sw, v)
		}
		renderBadge(sw, v)
		sw.Raw(`</main>`)
		return sw.Err()
	})
}

func renderLobby(ctx context.Context, sw *markup.Writer, v View) {
	sw.Raw(`<nav class="explorer"><ul>`)
	for _, it := range v.Menu {
		class := "icon"
		if v.Active != nil && v.Active.Key == it.Key {
			class += " selected"
		}
		sw.Printf(`<li><button class="%s" data-act="open" data-key="%s">%s</button></li>`,
			class, templ.EscapeString(string(it.Key)), templ.EscapeString(it.Title))
	}
	sw.Printf(`<li><button class="icon trapdoor" data-act="navigate" data-phase="%s">..</button></li>`, phase.Underworld)
	sw.Raw(`</ul></nav>`)

	switch {
	case v.Missing != nil:
		renderFallback(sw, v.Missing)
	case v.Active != nil && v.Module != nil:
		sw.Component(ctx, frame.New(v.Active.Title, v.Module, v.OnClose))
	}
}

func renderFallback(sw *markup.Writer, missing *content.UnknownKeyError) {
	sw.Printf(`<section class="window fallback"><p>Nothing is registered under %q.</p>`, templ.EscapeString(string(missing.Key)))
	if len(missing.Suggestions) > 0 {
		sw.Raw(`<p>Did you mean:</p><ul>`)
		for _, s := range missing.Suggestions {
			k := templ.EscapeString(string(s))
			sw.Printf(`<li><button data-act="open" data-key="%s">%s</button></li>`, k, k)
		}
		sw.Raw(`</ul>`)
	}
	sw.Raw(`</section>`)
}

func renderBadge(sw *markup.Writer, v View) {
	class := "progress-badge"
	if v.Progress.Complete() {
		class += " complete"
	}
	sw.Printf(`<aside class="%s" data-collected="%d" data-total="%d">%s</aside>`,
		class, v.Progress.Collected, v.Progress.Total, templ.EscapeString(v.Progress.Label(v.Lang)))
}

// Text renders the surface for the terminal client.
func Text(v View) string {
	var b strings.Builder
	if v.Phase == phase.Underworld {
		if tr, ok := v.Underworld.(content.TextRenderer); ok {
			b.WriteString(tr.Text())
			b.WriteByte('\n')
		}
	} else {
		for i, it := range v.Menu {
			marker := " "
			if v.Active != nil && v.Active.Key == it.Key {
				marker = "*"
			}
			fmt.Fprintf(&b, "%s %d. %s\n", marker, i+1, it.Title)
		}
		b.WriteString("     ..\n")
		switch {
		case v.Missing != nil:
			b.WriteString(v.Missing.Error())
			b.WriteByte('\n')
		case v.Active != nil:
			body := ""
			if tr, ok := v.Module.(content.TextRenderer); ok {
				body = tr.Text()
			}
			b.WriteString(frame.New(v.Active.Title, nil, nil).Text(body))
			b.WriteByte('\n')
		}
	}
	b.WriteString(v.Progress.Label(v.Lang))
	return b.String()
}

// ViewOf collects the current host state into a View. Menu, Lang, Missing and
// OnClose are left for the caller.
func ViewOf(h *host.Host, underworld content.Module) View {
	v := View{
		Phase:      h.Phase(),
		Progress:   h.Progress(),
		Underworld: underworld,
	}
	if w, ok := h.Active(); ok {
		v.Active = &w
		if m, err := h.Registry().Resolve(w.Key); err == nil {
			v.Module = m
		}
	}
	return v
}

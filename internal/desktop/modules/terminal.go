package modules

import (
	"context"
	"io"
	"sort"
	"strings"

	"deskfolio.dev/internal/desktop/content"
	"deskfolio.dev/internal/desktop/markup"
	"deskfolio.dev/internal/desktop/phase"
)

const (
	terminalPrompt     = "visitor@deskfolio:~$ "
	terminalScrollback = 200
)

var terminalFiles = map[string]string{
	"about.txt":    "Backend engineer. Likes queues, state machines and small binaries.",
	"projects.txt": "match-five, cadence, this desktop.",
	".clue":        "The first clue: not everything on this desktop sits above the floor.",
}

// Terminal is a tiny line-oriented shell.
type Terminal struct {
	lines []string
}

func NewTerminal() *Terminal {
	return &Terminal{lines: []string{"deskfolio terminal. type 'help'."}}
}

func (t *Terminal) HandleEvent(ev content.Event, caps content.Capabilities) {
	if ev.Name != "command" {
		return
	}
	t.run(strings.TrimSpace(ev.Text), caps)
}

func (t *Terminal) run(line string, caps content.Capabilities) {
	t.print(terminalPrompt + line)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	switch fields[0] {
	case "help":
		t.print("commands: help ls cat whoami clear descend")
	case "ls":
		if len(fields) > 1 && fields[1] == "-a" {
			t.print(strings.Join(terminalFileNames(true), "  "))
			return
		}
		t.print(strings.Join(terminalFileNames(false), "  "))
	case "cat":
		if len(fields) < 2 {
			t.print("cat: missing file operand")
			return
		}
		body, ok := terminalFiles[fields[1]]
		if !ok {
			t.print("cat: " + fields[1] + ": no such file")
			return
		}
		t.print(body)
		if fields[1] == ".clue" {
			caps.Collect(ClueTerminal)
		}
	case "whoami":
		t.print("visitor")
	case "clear":
		t.lines = t.lines[:0]
	case "descend":
		t.print("the floor gives way...")
		caps.Navigate(phase.Underworld)
	default:
		t.print(fields[0] + ": command not found")
	}
}

func (t *Terminal) print(s string) {
	t.lines = append(t.lines, s)
	if over := len(t.lines) - terminalScrollback; over > 0 {
		t.lines = append(t.lines[:0], t.lines[over:]...)
	}
}

func terminalFileNames(hidden bool) []string {
	out := make([]string, 0, len(terminalFiles))
	for name := range terminalFiles {
		if !hidden && strings.HasPrefix(name, ".") {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (t *Terminal) Render(_ context.Context, w io.Writer) error {
	hw := markup.NewWriter(w)
	hw.Raw(`<div class="terminal"><pre class="term-scrollback">`)
	for _, l := range t.lines {
		hw.Printf("%s\n", markup.Esc(l))
	}
	hw.Raw(`</pre>`)
	hw.Printf(`<form class="term-input" data-act="module_event" data-name="command"><label>%s</label><input name="text" autocomplete="off" autofocus></form>`, markup.Esc(terminalPrompt))
	hw.Raw(`</div>`)
	return hw.Err()
}

func (t *Terminal) Text() string { return strings.Join(t.lines, "\n") }

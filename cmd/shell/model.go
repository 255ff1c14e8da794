package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"deskfolio.dev/internal/desktop/content"
	"deskfolio.dev/internal/desktop/phase"
	"deskfolio.dev/internal/desktop/shell"
	"deskfolio.dev/internal/protocol"
	"deskfolio.dev/internal/session"
)

// --- Styles ---
var (
	title  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	warn   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	prompt = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	desk   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

const helpLine = "1-9 open · open KEY · close · descend · return · $ CMD · pan DX DY · scroll X Y · flip N · tap · reset · q"

type model struct {
	sess   *session.Session
	input  string
	status string
	failed bool
	next   int

	now func() time.Time
}

func newModel(sess *session.Session) model {
	return model{sess: sess, now: time.Now}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.input = ""
		return m, nil
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
		return m, nil
	case tea.KeySpace:
		m.input += " "
		return m, nil
	case tea.KeyRunes:
		m.input += string(key.Runes)
		return m, nil
	case tea.KeyEnter:
		return m.submit()
	}
	return m, nil
}

func (m model) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input)
	m.input = ""
	if line == "" {
		return m, nil
	}
	if line == "q" || line == "quit" {
		return m, tea.Quit
	}
	act, err := m.parse(line)
	if err != nil {
		m.status, m.failed = err.Error(), true
		return m, nil
	}
	m.next++
	act.Type = protocol.TypeAct
	act.ProtocolVersion = protocol.Version
	act.ID = strconv.Itoa(m.next)
	ack := m.sess.Apply(act)
	m.status, m.failed = "", !ack.Accepted
	if !ack.Accepted {
		m.status = ack.Code
		if ack.Message != "" {
			m.status += ": " + ack.Message
		}
	} else if ack.Message != "" {
		m.status = ack.Message
	}
	return m, nil
}

// parse maps one input line onto an ACT.
func (m model) parse(line string) (protocol.ActMsg, error) {
	if n, err := strconv.Atoi(line); err == nil {
		menu := m.sess.ShellView().Menu
		if n < 1 || n > len(menu) {
			return protocol.ActMsg{}, fmt.Errorf("no menu entry %d", n)
		}
		return protocol.ActMsg{Op: protocol.OpOpen, Key: string(menu[n-1].Key)}, nil
	}
	if rest, ok := strings.CutPrefix(line, "$"); ok {
		return event(content.Event{Name: "command", Text: strings.TrimSpace(rest)}), nil
	}

	f := strings.Fields(line)
	args := f[1:]
	switch f[0] {
	case "open":
		if len(args) != 1 {
			return protocol.ActMsg{}, fmt.Errorf("usage: open KEY")
		}
		return protocol.ActMsg{Op: protocol.OpOpen, Key: args[0]}, nil
	case "close":
		return protocol.ActMsg{Op: protocol.OpClose}, nil
	case "minimize", "maximize":
		return protocol.ActMsg{Op: protocol.OpFrameControl, Control: f[0]}, nil
	case "descend":
		return protocol.ActMsg{Op: protocol.OpNavigate, Phase: string(phase.Underworld)}, nil
	case "lobby":
		return protocol.ActMsg{Op: protocol.OpNavigate, Phase: string(phase.Lobby)}, nil
	case "return", "reset":
		return event(content.Event{Name: f[0]}), nil
	case "tap":
		return event(content.Event{Name: "tap", AtMS: m.now().UnixMilli()}), nil
	case "flip":
		n, err := ints(args, 1)
		if err != nil {
			return protocol.ActMsg{}, fmt.Errorf("usage: flip N")
		}
		return event(content.Event{Name: "flip", Index: n[0]}), nil
	case "pan":
		n, err := ints(args, 2)
		if err != nil {
			return protocol.ActMsg{}, fmt.Errorf("usage: pan DX DY")
		}
		return event(content.Event{Name: "pan", DX: n[0], DY: n[1]}), nil
	case "scroll":
		n, err := ints(args, 2)
		if err != nil {
			return protocol.ActMsg{}, fmt.Errorf("usage: scroll X Y")
		}
		return event(content.Event{Name: "scroll", X: n[0], Y: n[1]}), nil
	}
	return protocol.ActMsg{}, fmt.Errorf("unknown command %q", f[0])
}

func event(e content.Event) protocol.ActMsg {
	return protocol.ActMsg{Op: protocol.OpModuleEvent, Event: &e}
}

func ints(args []string, n int) ([]int, error) {
	if len(args) != n {
		return nil, fmt.Errorf("want %d numbers", n)
	}
	out := make([]int, n)
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m model) View() string {
	v := m.sess.ShellView()
	var b strings.Builder
	b.WriteString(title.Render("deskfolio") + dim.Render("  "+string(v.Phase)) + "\n")
	b.WriteString(desk.Render(shell.Text(v)) + "\n")
	if m.status != "" {
		style := dim
		if m.failed {
			style = warn
		}
		b.WriteString(style.Render(m.status) + "\n")
	}
	b.WriteString(prompt.Render("> ") + m.input + "\n")
	b.WriteString(dim.Render(helpLine) + "\n")
	return b.String()
}

package modules

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"deskfolio.dev/internal/desktop/clues"
	"deskfolio.dev/internal/desktop/content"
	"deskfolio.dev/internal/desktop/phase"
)

type recorder struct {
	navigated []phase.Phase
	collected []clues.ID
}

func (r *recorder) caps() content.Capabilities {
	return content.Capabilities{
		NavigateTo:  func(p phase.Phase) { r.navigated = append(r.navigated, p) },
		CollectClue: func(id clues.ID) { r.collected = append(r.collected, id) },
	}
}

func render(t *testing.T, m content.Module) string {
	t.Helper()
	var buf bytes.Buffer
	if err := m.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func TestCatalogBuildsRegistryForEveryKey(t *testing.T) {
	reg, err := NewRegistry(Deps{})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	for _, k := range content.KnownKeys() {
		if !reg.Has(k) {
			t.Fatalf("catalog missing %q", k)
		}
	}
	if got := reg.Title(content.KeyProjMatchFive); got != "Match Five" {
		t.Fatalf("match-five title=%q", got)
	}
}

func TestCatalogReturnsFreshModules(t *testing.T) {
	a, b := Catalog(Deps{}), Catalog(Deps{})
	for i := range a {
		if a[i].Key == content.KeyReadme {
			// stateless
			continue
		}
		if a[i].Module == b[i].Module {
			t.Fatalf("entry %q shares a module value across catalogs", a[i].Key)
		}
	}
}

func TestTerminalCommands(t *testing.T) {
	term := NewTerminal()
	rec := &recorder{}
	run := func(cmd string) { term.HandleEvent(content.Event{Name: "command", Text: cmd}, rec.caps()) }

	run("ls")
	if strings.Contains(term.Text(), ".clue") {
		t.Fatalf("plain ls must hide dotfiles:\n%s", term.Text())
	}
	run("ls -a")
	if !strings.Contains(term.Text(), ".clue") {
		t.Fatalf("ls -a must show dotfiles")
	}
	run("cat .clue")
	run("cat .clue")
	if len(rec.collected) != 2 || rec.collected[0] != ClueTerminal {
		t.Fatalf("collected=%v", rec.collected)
	}
	run("frobnicate")
	if !strings.Contains(term.Text(), "frobnicate: command not found") {
		t.Fatalf("missing not-found line")
	}
	run("clear")
	if term.Text() != "" {
		t.Fatalf("clear left %q", term.Text())
	}
	run("descend")
	if len(rec.navigated) != 1 || rec.navigated[0] != phase.Underworld {
		t.Fatalf("navigated=%v", rec.navigated)
	}
}

func TestTerminalScrollbackIsBounded(t *testing.T) {
	term := NewTerminal()
	for i := 0; i < terminalScrollback*2; i++ {
		term.HandleEvent(content.Event{Name: "command", Text: "whoami"}, content.Capabilities{})
	}
	if n := len(term.lines); n != terminalScrollback {
		t.Fatalf("scrollback=%d want %d", n, terminalScrollback)
	}
}

func TestTerminalEscapesInput(t *testing.T) {
	term := NewTerminal()
	term.HandleEvent(content.Event{Name: "command", Text: "<script>"}, content.Capabilities{})
	if out := render(t, term); strings.Contains(out, "<script>") {
		t.Fatalf("input not escaped: %s", out)
	}
}

func TestDiagramPanCollectsBeyondRadius(t *testing.T) {
	d := NewDiagram()
	rec := &recorder{}
	d.HandleEvent(content.Event{Name: "pan", DX: 300}, rec.caps())
	d.HandleEvent(content.Event{Name: "pan", DX: 300}, rec.caps())
	if len(rec.collected) != 0 {
		t.Fatalf("600px exactly must not collect")
	}
	d.HandleEvent(content.Event{Name: "pan", DY: -601}, rec.caps())
	if len(rec.collected) != 1 || rec.collected[0] != ClueDiagram {
		t.Fatalf("collected=%v", rec.collected)
	}
	d.HandleEvent(content.Event{Name: "reset"}, rec.caps())
	if x, y := d.Offset(); x != 0 || y != 0 {
		t.Fatalf("offset after reset=%d,%d", x, y)
	}
	if !strings.Contains(render(t, d), `translate(0 0)`) {
		t.Fatalf("render does not reflect reset offset")
	}
}

func TestMatchFiveSolve(t *testing.T) {
	m := NewMatchFive()
	rec := &recorder{}
	// 0 lights tiles 0,1; 3 lights tiles 2,3,4.
	m.HandleEvent(content.Event{Name: "flip", Index: 0}, rec.caps())
	if m.Solved() {
		t.Fatalf("solved too early")
	}
	m.HandleEvent(content.Event{Name: "flip", Index: 3}, rec.caps())
	if !m.Solved() || m.Moves() != 2 {
		t.Fatalf("solved=%v moves=%d", m.Solved(), m.Moves())
	}
	if len(rec.collected) != 1 || rec.collected[0] != ClueMatchFive {
		t.Fatalf("collected=%v", rec.collected)
	}
	m.HandleEvent(content.Event{Name: "flip", Index: 2}, rec.caps())
	if m.Moves() != 2 {
		t.Fatalf("flips after solve must be ignored")
	}
	m.HandleEvent(content.Event{Name: "flip", Index: 9}, rec.caps())
	m.HandleEvent(content.Event{Name: "reset"}, rec.caps())
	if m.Solved() || m.Text() != "[ ][ ][ ][ ][ ]" {
		t.Fatalf("reset board=%q", m.Text())
	}
}

func TestCadence(t *testing.T) {
	cases := []struct {
		name string
		taps []int64
		want bool
	}{
		{"steady", []int64{0, 500, 1000, 1500, 2000}, true},
		{"within tolerance", []int64{0, 520, 1000, 1480, 2000}, true},
		{"too few", []int64{0, 500, 1000, 1500}, false},
		{"uneven", []int64{0, 500, 1200, 1500, 2000}, false},
		{"reset by clock going back", []int64{0, 500, 1000, 900, 1400, 1900, 2400}, false},
		{"steady after restart", []int64{0, 500, 100, 400, 700, 1000, 1300}, true},
		{"uneven then steady", []int64{0, 900, 1000, 1300, 1600, 1900, 2200}, true},
		{"steady far in the future", []int64{1 << 61, 1<<61 + 500, 1<<61 + 1000, 1<<61 + 1500, 1<<61 + 2000}, true},
		{"huge first gap", []int64{0, 1 << 61, 1<<61 + 1, 1<<61 + 2, 1<<61 + 3}, false},
		{"gaps past int64 range", []int64{math.MinInt64, 0, math.MaxInt64 - 2, math.MaxInt64 - 1, math.MaxInt64}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewCadence()
			rec := &recorder{}
			for _, at := range tc.taps {
				c.HandleEvent(content.Event{Name: "tap", AtMS: at}, rec.caps())
			}
			if c.Locked() != tc.want {
				t.Fatalf("locked=%v want %v (taps %v)", c.Locked(), tc.want, c.taps)
			}
			if tc.want && (len(rec.collected) != 1 || rec.collected[0] != ClueCadence) {
				t.Fatalf("collected=%v", rec.collected)
			}
		})
	}
}

func TestUnderworldScrollToSpot(t *testing.T) {
	u := NewUnderworld()
	rec := &recorder{}
	u.HandleEvent(content.Event{Name: "scroll", X: 0, Y: 0}, rec.caps())
	if len(rec.collected) != 0 {
		t.Fatalf("origin must not reveal the spot")
	}
	u.HandleEvent(content.Event{Name: "scroll", X: 2800, Y: 3300}, rec.caps())
	if len(rec.collected) != 1 || rec.collected[0] != ClueUnderworld {
		t.Fatalf("collected=%v", rec.collected)
	}
	u.HandleEvent(content.Event{Name: "scroll", X: 99999, Y: -5}, rec.caps())
	if x, y := u.Viewport(); x != UnderworldWidth-ViewportWidth || y != 0 {
		t.Fatalf("viewport not clamped: %d,%d", x, y)
	}
	u.HandleEvent(content.Event{Name: "return"}, rec.caps())
	if len(rec.navigated) != 1 || rec.navigated[0] != phase.Lobby {
		t.Fatalf("navigated=%v", rec.navigated)
	}
	if !strings.Contains(render(t, u), "clue-spot found") {
		t.Fatalf("found spot not rendered")
	}
}

type fakeAnalytics struct {
	err error
}

func (f fakeAnalytics) OpensByContent(context.Context) (map[string]int, error) {
	return map[string]int{"readme": 3, "terminal": 7}, f.err
}
func (f fakeAnalytics) ClueFinds(context.Context) (map[int]int, error) {
	return map[int]int{4: 2}, f.err
}
func (f fakeAnalytics) SessionCount(context.Context) (int, error) { return 9, f.err }

func TestDashboard(t *testing.T) {
	out := render(t, NewDashboard(fakeAnalytics{}))
	if !strings.Contains(out, "9 sessions") {
		t.Fatalf("missing session count: %s", out)
	}
	if strings.Index(out, "terminal") > strings.Index(out, "readme") {
		t.Fatalf("opens not sorted by count: %s", out)
	}
	if !strings.Contains(out, "clue 4") {
		t.Fatalf("missing clue row: %s", out)
	}

	if out := render(t, NewDashboard(nil)); !strings.Contains(out, "analytics disabled") {
		t.Fatalf("nil source: %s", out)
	}
	if out := render(t, NewDashboard(fakeAnalytics{err: errors.New("db closed")})); !strings.Contains(out, "db closed") {
		t.Fatalf("error source: %s", out)
	}
}

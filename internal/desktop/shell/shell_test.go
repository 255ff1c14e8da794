package shell

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/text/language"

	"deskfolio.dev/internal/desktop/clues"
	"deskfolio.dev/internal/desktop/content"
	"deskfolio.dev/internal/desktop/host"
	"deskfolio.dev/internal/desktop/modules"
	"deskfolio.dev/internal/desktop/phase"
)

func renderString(t *testing.T, v View) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Render(v).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func testMenu() []MenuItem {
	return []MenuItem{
		{Key: content.KeyReadme, Title: "README.txt"},
		{Key: content.KeyTerminal, Title: "Terminal"},
	}
}

func newHost(t *testing.T) *host.Host {
	t.Helper()
	reg, err := modules.NewRegistry(modules.Deps{})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return host.New(reg, clues.NewTracker(5))
}

func TestLobbyWithoutWindow(t *testing.T) {
	h := newHost(t)
	v := ViewOf(h, modules.NewUnderworld())
	v.Menu = testMenu()
	v.Lang = language.English
	out := renderString(t, v)
	for _, want := range []string{
		`data-act="open" data-key="readme"`,
		`data-act="open" data-key="terminal"`,
		`data-act="navigate" data-phase="underworld"`,
		"0/5 clues found",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, `class="window"`) {
		t.Fatalf("no window expected:\n%s", out)
	}
}

func TestLobbyWithFramedWindow(t *testing.T) {
	h := newHost(t)
	if err := h.OpenContent(content.KeyTerminal); err != nil {
		t.Fatalf("open: %v", err)
	}
	v := ViewOf(h, nil)
	v.Menu = testMenu()
	v.OnClose = h.CloseContent
	out := renderString(t, v)
	if !strings.Contains(out, `class="window"`) || !strings.Contains(out, `data-act="close"`) {
		t.Fatalf("frame missing:\n%s", out)
	}
	if !strings.Contains(out, `class="terminal"`) {
		t.Fatalf("module body missing:\n%s", out)
	}
	if !strings.Contains(out, `icon selected" data-act="open" data-key="terminal"`) {
		t.Fatalf("active icon not selected:\n%s", out)
	}
}

func TestLobbyFallbackPanel(t *testing.T) {
	h := newHost(t)
	err := h.OpenContent(content.Key("readmee"))
	var missing *content.UnknownKeyError
	if !errors.As(err, &missing) {
		t.Fatalf("err=%v", err)
	}
	v := ViewOf(h, nil)
	v.Missing = missing
	out := renderString(t, v)
	if !strings.Contains(out, "fallback") || !strings.Contains(out, `data-key="readme"`) {
		t.Fatalf("fallback missing suggestion:\n%s", out)
	}
	if !strings.Contains(Text(v), "did you mean readme") {
		t.Fatalf("text fallback: %s", Text(v))
	}
}

func TestUnderworldSurface(t *testing.T) {
	h := newHost(t)
	h.NavigateTo(phase.Underworld)
	h.Collector()(modules.ClueUnderworld)
	v := ViewOf(h, modules.NewUnderworld())
	v.Menu = testMenu()
	out := renderString(t, v)
	if strings.Contains(out, "explorer") {
		t.Fatalf("underworld must not show the lobby menu:\n%s", out)
	}
	if !strings.Contains(out, "underworld-canvas") || !strings.Contains(out, "1/5 clues found") {
		t.Fatalf("underworld surface:\n%s", out)
	}
}

func TestRenderIsPure(t *testing.T) {
	h := newHost(t)
	_ = h.OpenContent(content.KeyReadme)
	v := ViewOf(h, nil)
	v.Menu = testMenu()
	if a, b := renderString(t, v), renderString(t, v); a != b {
		t.Fatalf("render not deterministic")
	}
}

func TestTextLobby(t *testing.T) {
	h := newHost(t)
	_ = h.OpenContent(content.KeyReadme)
	v := ViewOf(h, nil)
	v.Menu = testMenu()
	out := Text(v)
	if !strings.Contains(out, "* 1. README.txt") || !strings.Contains(out, "Welcome to deskfolio.") {
		t.Fatalf("text lobby:\n%s", out)
	}
	if !strings.HasSuffix(out, "0/5 clues found") {
		t.Fatalf("text badge:\n%s", out)
	}
}

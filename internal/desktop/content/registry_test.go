package content

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

type stubModule struct {
	body    string
	renders int
}

func (s *stubModule) Render(_ context.Context, w io.Writer) error {
	s.renders++
	_, err := io.WriteString(w, s.body)
	return err
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := New([]Entry{
		{Key: KeyReadme, Title: "README.txt", Module: &stubModule{body: "readme"}},
		{Key: KeyProjMatchFive, Module: &stubModule{body: "match"}},
		{Key: KeyExpCadence, Module: &stubModule{body: "cadence"}},
	})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	return r
}

func TestResolveIsPure(t *testing.T) {
	r := newTestRegistry(t)
	m1, err := r.Resolve(KeyProjMatchFive)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	m2, err := r.Resolve(KeyProjMatchFive)
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	if m1 != m2 {
		t.Fatalf("resolve returned different modules for the same key")
	}
	if m1.(*stubModule).renders != 0 {
		t.Fatalf("resolve must not render or instantiate")
	}
}

func TestResolveUnknownKey(t *testing.T) {
	r := newTestRegistry(t)
	_, err := r.Resolve(KeyTerminal)
	if !errors.Is(err, ErrUnknownContentKey) {
		t.Fatalf("err=%v want ErrUnknownContentKey", err)
	}
	var uk *UnknownKeyError
	if !errors.As(err, &uk) || uk.Key != KeyTerminal {
		t.Fatalf("expected UnknownKeyError for terminal, got %v", err)
	}
}

func TestLookupRejectsUnknownText(t *testing.T) {
	r := newTestRegistry(t)
	_, _, err := r.Lookup("does-not-exist")
	if !errors.Is(err, ErrUnknownContentKey) {
		t.Fatalf("err=%v want ErrUnknownContentKey", err)
	}
	k, m, err := r.Lookup(" readme ")
	if err != nil || k != KeyReadme || m == nil {
		t.Fatalf("lookup readme: key=%q module=%v err=%v", k, m, err)
	}
}

func TestUnknownKeySuggestions(t *testing.T) {
	_, err := ParseKey("readmee")
	var uk *UnknownKeyError
	if !errors.As(err, &uk) {
		t.Fatalf("expected UnknownKeyError, got %v", err)
	}
	if len(uk.Suggestions) == 0 || uk.Suggestions[0] != KeyReadme {
		t.Fatalf("suggestions=%v want readme first", uk.Suggestions)
	}
	if !strings.Contains(err.Error(), "did you mean readme") {
		t.Fatalf("error text=%q", err.Error())
	}

	_, err = ParseKey("match-five")
	if !errors.As(err, &uk) || len(uk.Suggestions) == 0 || uk.Suggestions[0] != KeyProjMatchFive {
		t.Fatalf("suffix match should suggest proj-match-five, got %v", err)
	}
}

func TestNewRejectsBadEntries(t *testing.T) {
	cases := []struct {
		name    string
		entries []Entry
	}{
		{"unknown key", []Entry{{Key: "nope", Module: &stubModule{}}}},
		{"nil module", []Entry{{Key: KeyReadme}}},
		{"duplicate", []Entry{
			{Key: KeyReadme, Module: &stubModule{}},
			{Key: KeyReadme, Module: &stubModule{}},
		}},
	}
	for _, tc := range cases {
		if _, err := New(tc.entries); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestTitles(t *testing.T) {
	r := newTestRegistry(t)
	if got := r.Title(KeyReadme); got != "README.txt" {
		t.Fatalf("explicit title=%q", got)
	}
	if got := r.Title(KeyProjMatchFive); got != "Match Five" {
		t.Fatalf("derived title=%q", got)
	}
	if got := DeriveTitle(KeyExpCadence); got != "Cadence" {
		t.Fatalf("derived title=%q", got)
	}
	if got := DeriveTitle(KeyDashboard); got != "Dashboard" {
		t.Fatalf("derived title=%q", got)
	}
}

func TestEntriesKeepOrderAndCopy(t *testing.T) {
	r := newTestRegistry(t)
	es := r.Entries()
	if len(es) != 3 || es[0].Key != KeyReadme || es[2].Key != KeyExpCadence {
		t.Fatalf("entries order mismatch: %+v", es)
	}
	es[0].Key = KeyTerminal
	if r.Entries()[0].Key != KeyReadme {
		t.Fatalf("Entries must return a copy")
	}
	m, _ := r.Resolve(KeyReadme)
	var buf bytes.Buffer
	if err := m.Render(context.Background(), &buf); err != nil || buf.String() != "readme" {
		t.Fatalf("render=%q err=%v", buf.String(), err)
	}
}

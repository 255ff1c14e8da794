// Package phase names the top-level regions a visitor can be in.
package phase

import "fmt"

// Phase is the region of the desktop that is currently visible.
type Phase string

const (
	Lobby      Phase = "lobby"
	Underworld Phase = "underworld"
)

// Initial is the phase every session starts in.
const Initial = Lobby

func (p Phase) String() string { return string(p) }

// Valid reports whether p is one of the known phases.
func (p Phase) Valid() bool {
	switch p {
	case Lobby, Underworld:
		return true
	default:
		return false
	}
}

// Parse converts wire text into a Phase.
func Parse(s string) (Phase, error) {
	p := Phase(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown phase %q", s)
	}
	return p, nil
}

// All lists the phases in a stable order.
func All() []Phase { return []Phase{Lobby, Underworld} }

// Package modules holds the desktop's content modules and the underworld
// surface. Each value keeps its own state; nothing here reads another
// module's state or the clue set.
package modules

import (
	"context"

	"deskfolio.dev/internal/desktop/clues"
	"deskfolio.dev/internal/desktop/content"
)

// Clue ids wired across the modules.
const (
	ClueTerminal   clues.ID = 1
	ClueDiagram    clues.ID = 2
	ClueCadence    clues.ID = 3
	ClueUnderworld clues.ID = 4
	ClueMatchFive  clues.ID = 5
)

// TotalClues is the number of clues the modules in this package can emit.
const TotalClues = 5

// Analytics is the read side the dashboard draws from. It may be nil.
type Analytics interface {
	OpensByContent(ctx context.Context) (map[string]int, error)
	ClueFinds(ctx context.Context) (map[int]int, error)
	SessionCount(ctx context.Context) (int, error)
}

type Deps struct {
	Analytics Analytics
}

// Catalog returns the fixed registration list with fresh module values.
// Call it once per session.
func Catalog(deps Deps) []content.Entry {
	return []content.Entry{
		{Key: content.KeyReadme, Title: "README.txt", Module: NewReadme()},
		{Key: content.KeyTerminal, Title: "Terminal", Module: NewTerminal()},
		{Key: content.KeyDiagram, Title: "Architecture", Module: NewDiagram()},
		{Key: content.KeyDashboard, Title: "Analytics", Module: NewDashboard(deps.Analytics)},
		{Key: content.KeyProjMatchFive, Module: NewMatchFive()},
		{Key: content.KeyExpCadence, Module: NewCadence()},
	}
}

// NewRegistry builds a session registry from Catalog.
func NewRegistry(deps Deps) (*content.Registry, error) {
	return content.New(Catalog(deps))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

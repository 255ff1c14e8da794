package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"deskfolio.dev/internal/config"
	"deskfolio.dev/internal/session"
)

func main() {
	configPath := flag.String("config", "./configs/desktop.yaml", "desktop config path (missing file means defaults)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err == nil {
		err = config.ApplyEnv(&cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	sess, err := session.New(session.Options{
		ClueTotal: cfg.ClueTotal,
		Menu:      cfg.Menu(),
		Lang:      cfg.LangTag(),
	}, "", "shell", nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "session: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(newModel(sess), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "shell: %v\n", err)
		os.Exit(1)
	}
}

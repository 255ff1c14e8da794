package main

import (
	"flag"
	"fmt"
	"os"

	plog "deskfolio.dev/internal/persistence/log"
)

const usage = "usage: admin sessions|analytics [-url URL] | db [-db PATH] content|clues|sessions | journal [-journal DIR]"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	switch os.Args[1] {
	case "sessions":
		httpCmd("sessions", "/admin/v1/sessions", os.Args[2:])
	case "analytics":
		httpCmd("analytics", "/admin/v1/analytics", os.Args[2:])
	case "db":
		dbCmd(os.Args[2:])
	case "journal":
		journalCmd(os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
}

type journalFile struct {
	Path     string `json:"path"`
	Entries  int    `json:"entries"`
	Sessions int    `json:"sessions"`
}

func journalCmd(args []string) {
	fs := flag.NewFlagSet("journal", flag.ExitOnError)
	dir := fs.String("journal", "./data/journal", "journal dir")
	_ = fs.Parse(args)

	files, err := summarizeJournal(*dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "journal:", err)
		os.Exit(1)
	}
	for _, f := range files {
		printJSON(f)
	}
}

func summarizeJournal(dir string) ([]journalFile, error) {
	paths, err := plog.Files(dir)
	if err != nil {
		return nil, err
	}
	out := make([]journalFile, 0, len(paths))
	for _, p := range paths {
		jf := journalFile{Path: p}
		seen := map[string]bool{}
		err := plog.ReadFile(p, func(e plog.Entry) error {
			jf.Entries++
			if !seen[e.SessionID] {
				seen[e.SessionID] = true
				jf.Sessions++
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		out = append(out, jf)
	}
	return out, nil
}

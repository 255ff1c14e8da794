package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"deskfolio.dev/internal/persistence/indexdb"
)

func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dbPath := fs.String("db", "./data/index/analytics.sqlite", "sqlite index path")
	limit := fs.Int("limit", 20, "result limit")
	_ = fs.Parse(args)

	q := "content"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}

	idx, err := indexdb.OpenSQLite(*dbPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer idx.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	v, err := queryIndex(ctx, idx, q, *limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	printJSON(v)
}

func queryIndex(ctx context.Context, idx *indexdb.SQLiteIndex, q string, limit int) (any, error) {
	switch q {
	case "content":
		return idx.TopContent(ctx, limit)
	case "clues":
		return idx.ClueCounts(ctx)
	case "sessions":
		n, err := idx.SessionCount(ctx)
		return map[string]int{"sessions": n}, err
	default:
		return nil, fmt.Errorf("unknown query: %s", q)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

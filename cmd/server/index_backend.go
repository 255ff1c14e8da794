package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"deskfolio.dev/internal/config"
	"deskfolio.dev/internal/persistence/indexdb"
)

type indexBackend interface {
	Close() error
	Stats() indexdb.Stats
	TopContent(ctx context.Context, limit int) ([]indexdb.ContentCount, error)
	ClueCounts(ctx context.Context) ([]indexdb.ClueCount, error)
	SessionCount(ctx context.Context) (int, error)
}

// openIndex returns nil for the "none" backend. File DSNs are relative to
// dataDir.
func openIndex(spec config.IndexSpec, dataDir string, logger *log.Logger) (*indexdb.SQLiteIndex, error) {
	switch strings.ToLower(strings.TrimSpace(spec.Backend)) {
	case config.BackendNone:
		logger.Printf("analytics index disabled")
		return nil, nil
	case config.BackendSQLite, "":
		dsn := spec.DSN
		if dsn == "" {
			dsn = indexdb.MemoryDSN
		}
		if dsn != indexdb.MemoryDSN && !strings.HasPrefix(dsn, "file:") && !filepath.IsAbs(dsn) {
			dsn = filepath.Join(dataDir, dsn)
		}
		idx, err := indexdb.OpenSQLite(dsn)
		if err != nil {
			return nil, fmt.Errorf("open index %s: %w", dsn, err)
		}
		logger.Printf("analytics index dsn=%s", dsn)
		return idx, nil
	default:
		return nil, fmt.Errorf("unsupported index backend: %s", spec.Backend)
	}
}

func journalDir(spec config.JournalSpec, dataDir string) string {
	if filepath.IsAbs(spec.Dir) {
		return spec.Dir
	}
	return filepath.Join(dataDir, spec.Dir)
}

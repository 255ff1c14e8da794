package indexdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

// MemoryDSN keeps the index in process memory.
const MemoryDSN = ":memory:"

const defaultQueueSize = 65536

var ErrClosed = errors.New("index closed")

type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropSession atomic.Uint64
	dropAct     atomic.Uint64
	dropClue    atomic.Uint64
}

type reqKind int

const (
	reqSessionOpen reqKind = iota + 1
	reqSessionClose
	reqAct
	reqClue
	reqFlush
)

type req struct {
	kind reqKind

	session SessionRow
	act     ActRow
	clue    ClueRow
	done    chan struct{}
}

type SessionRow struct {
	SessionID  string
	ClientName string
	At         time.Time
	Acts       int
	Collected  int
}

type ActRow struct {
	SessionID string
	Seq       uint64
	Op        string
	Key       string
	Accepted  bool
	Code      string
	At        time.Time
}

type ClueRow struct {
	SessionID string
	Clue      int
	Phase     string
	At        time.Time
}

// OpenSQLite opens (or creates) the index. dsn may be MemoryDSN.
func OpenSQLite(dsn string) (*SQLiteIndex, error) {
	return openSQLite(dsn, defaultQueueSize)
}

func openSQLite(dsn string, queue int) (*SQLiteIndex, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty db dsn")
	}
	if !isMemory(dsn) {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection: an in-memory database lives and dies with it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, queue),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func isMemory(dsn string) bool {
	return dsn == MemoryDSN || strings.Contains(dsn, "mode=memory")
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			client_name TEXT NOT NULL,
			opened_at TEXT NOT NULL,
			closed_at TEXT,
			acts INTEGER NOT NULL DEFAULT 0,
			collected INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS acts (
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			op TEXT NOT NULL,
			content_key TEXT,
			accepted INTEGER NOT NULL,
			code TEXT,
			at TEXT NOT NULL,
			PRIMARY KEY (session_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_acts_op_key ON acts(op, content_key);`,
		`CREATE TABLE IF NOT EXISTS clues (
			session_id TEXT NOT NULL,
			clue INTEGER NOT NULL,
			phase TEXT NOT NULL,
			at TEXT NOT NULL,
			PRIMARY KEY (session_id, clue)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// enqueue drops the request if the writer falls behind; the journal remains
// the source of truth.
func (s *SQLiteIndex) enqueue(r req) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- r:
	default:
		switch r.kind {
		case reqSessionOpen, reqSessionClose:
			s.dropSession.Add(1)
		case reqAct:
			s.dropAct.Add(1)
		case reqClue:
			s.dropClue.Add(1)
		}
	}
}

func (s *SQLiteIndex) RecordSessionOpen(r SessionRow) {
	s.enqueue(req{kind: reqSessionOpen, session: r})
}

func (s *SQLiteIndex) RecordSessionClose(r SessionRow) {
	s.enqueue(req{kind: reqSessionClose, session: r})
}

func (s *SQLiteIndex) RecordAct(r ActRow) {
	s.enqueue(req{kind: reqAct, act: r})
}

func (s *SQLiteIndex) RecordClue(r ClueRow) {
	s.enqueue(req{kind: reqClue, clue: r})
}

// Flush blocks until every request queued before the call is committed.
func (s *SQLiteIndex) Flush(ctx context.Context) error {
	if s == nil || s.closed.Load() {
		return ErrClosed
	}
	done := make(chan struct{})
	select {
	case s.ch <- req{kind: reqFlush, done: done}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type Stats struct {
	QueueDepth       int    `json:"queue_depth"`
	QueueCapacity    int    `json:"queue_capacity"`
	DropSessionTotal uint64 `json:"drop_session_total"`
	DropActTotal     uint64 `json:"drop_act_total"`
	DropClueTotal    uint64 `json:"drop_clue_total"`
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:       len(s.ch),
		QueueCapacity:    cap(s.ch),
		DropSessionTotal: s.dropSession.Load(),
		DropActTotal:     s.dropAct.Load(),
		DropClueTotal:    s.dropClue.Load(),
	}
}

func ts(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertSession, _ := s.db.Prepare(`INSERT OR IGNORE INTO sessions(session_id,client_name,opened_at) VALUES(?,?,?)`)
	closeSession, _ := s.db.Prepare(`UPDATE sessions SET closed_at=?, acts=?, collected=? WHERE session_id=?`)
	insertAct, _ := s.db.Prepare(`INSERT OR REPLACE INTO acts(session_id,seq,op,content_key,accepted,code,at) VALUES(?,?,?,?,?,?,?)`)
	insertClue, _ := s.db.Prepare(`INSERT OR IGNORE INTO clues(session_id,clue,phase,at) VALUES(?,?,?,?)`)
	defer func() {
		for _, st := range []*sql.Stmt{insertSession, closeSession, insertAct, insertClue} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 500
		commitMaxWait = 250 * time.Millisecond
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	exec := func(st *sql.Stmt, args ...any) {
		if tx == nil || st == nil {
			return
		}
		if _, err := tx.Stmt(st).Exec(args...); err != nil {
			rollback()
			return
		}
		opCount++
	}

	for r := range s.ch {
		if r.kind == reqFlush {
			commit()
			close(r.done)
			continue
		}
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqSessionOpen:
			exec(insertSession, r.session.SessionID, r.session.ClientName, ts(r.session.At))
		case reqSessionClose:
			exec(closeSession, ts(r.session.At), r.session.Acts, r.session.Collected, r.session.SessionID)
		case reqAct:
			accepted := 0
			if r.act.Accepted {
				accepted = 1
			}
			exec(insertAct, r.act.SessionID, int64(r.act.Seq), r.act.Op, nullable(r.act.Key), accepted, nullable(r.act.Code), ts(r.act.At))
		case reqClue:
			exec(insertClue, r.clue.SessionID, r.clue.Clue, r.clue.Phase, ts(r.clue.At))
		}
		// Queries share the single connection; keep transactions short.
		if len(s.ch) == 0 || opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}
	commit()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

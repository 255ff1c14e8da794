// Package log writes and reads the session journal: one zstd-compressed
// JSON line per applied ACT.
package log

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"deskfolio.dev/internal/protocol"
)

const journalPrefix = "journal"

// Entry is one applied ACT and the state it left behind.
type Entry struct {
	SessionID string          `json:"session_id"`
	Seq       uint64          `json:"seq"`
	At        string          `json:"at"`
	Act       protocol.ActMsg `json:"act"`
	Accepted  bool            `json:"accepted"`
	Code      string          `json:"code,omitempty"`
	Phase     string          `json:"phase"`
	Active    string          `json:"active,omitempty"`
	Collected []int           `json:"collected"`
	Digest    string          `json:"digest"`
}

// Journal is shared by every session on a server.
type Journal struct{ w *JSONLZstdWriter }

func NewJournal(dir string) *Journal {
	return &Journal{w: NewJSONLZstdWriter(dir, journalPrefix)}
}

func (j *Journal) WriteEntry(e Entry) error { return j.w.Write(e) }
func (j *Journal) Close() error             { return j.w.Close() }
func (j *Journal) Stats() (lines, bytes uint64) {
	return j.w.Stats()
}

// Files lists journal files under dir in name (hour) order.
func Files(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, journalPrefix+"-*.jsonl.zst"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// ReadFile calls fn for each entry in one journal file, in order.
func ReadFile(path string, fn func(Entry) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return fmt.Errorf("%s:%d: %w", filepath.Base(path), line, err)
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return err
	}
	return nil
}

// ReadDir reads every journal file under dir.
func ReadDir(dir string, fn func(Entry) error) error {
	files, err := Files(dir)
	if err != nil {
		return err
	}
	for _, p := range files {
		if err := ReadFile(p, fn); err != nil {
			return err
		}
	}
	return nil
}

package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"deskfolio.dev/internal/config"
	plog "deskfolio.dev/internal/persistence/log"
	"deskfolio.dev/internal/session"
)

func main() {
	var (
		journalDir = flag.String("journal", "./data/journal", "journal dir containing journal-*.jsonl.zst")
		configPath = flag.String("config", "./configs/desktop.yaml", "desktop config path (for clue_total)")
		sessionID  = flag.String("session", "", "only replay this session (optional)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	rep, err := replay(*journalDir, cfg.ClueTotal, *sessionID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
	if rep.Sessions == 0 {
		fmt.Fprintln(os.Stderr, "no journal entries found in", *journalDir)
		os.Exit(1)
	}
	fmt.Printf("replay ok: sessions=%d entries=%d\n", rep.Sessions, rep.Entries)
}

type report struct {
	Sessions int
	Entries  int
}

// replay groups journal entries by session and re-applies each session's
// ACTs to a fresh session, checking the outcome and digest after every one.
func replay(dir string, clueTotal int, only string) (report, error) {
	bySession := map[string][]plog.Entry{}
	err := plog.ReadDir(dir, func(e plog.Entry) error {
		if only == "" || e.SessionID == only {
			bySession[e.SessionID] = append(bySession[e.SessionID], e)
		}
		return nil
	})
	if err != nil {
		return report{}, err
	}

	ids := make([]string, 0, len(bySession))
	for id := range bySession {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var rep report
	for _, id := range ids {
		n, err := replaySession(id, bySession[id], clueTotal)
		if err != nil {
			return rep, err
		}
		rep.Sessions++
		rep.Entries += n
	}
	return rep, nil
}

func replaySession(id string, entries []plog.Entry, clueTotal int) (int, error) {
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Seq < entries[j].Seq })
	sess, err := session.New(session.Options{ClueTotal: clueTotal}, id, "replay", nil)
	if err != nil {
		return 0, err
	}
	for i, e := range entries {
		if want := uint64(i + 1); e.Seq != want {
			return i, fmt.Errorf("session %s: seq gap: want=%d got=%d", id, want, e.Seq)
		}
		ack := sess.Apply(e.Act)
		if ack.Accepted != e.Accepted || ack.Code != e.Code {
			return i, fmt.Errorf("session %s seq %d: ack mismatch: got=%v/%s want=%v/%s", id, e.Seq, ack.Accepted, ack.Code, e.Accepted, e.Code)
		}
		if got := sess.Digest(); got != e.Digest {
			return i, fmt.Errorf("session %s seq %d: digest mismatch: got=%s want=%s", id, e.Seq, got, e.Digest)
		}
	}
	return len(entries), nil
}

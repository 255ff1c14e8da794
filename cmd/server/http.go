package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"deskfolio.dev/internal/persistence/indexdb"
)

//go:embed static/index.html
var indexHTML []byte

func (a *app) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/", gzhttp.GzipHandler(http.HandlerFunc(a.handleIndex)))
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", a.handleMetrics)
	if a.cfg.Admin.Enabled {
		// Local-only admin endpoints.
		mux.HandleFunc("/admin/v1/sessions", a.handleAdminSessions)
		mux.HandleFunc("/admin/v1/analytics", a.handleAdminAnalytics)
	} else {
		a.log.Printf("admin endpoints disabled (admin.enabled=false)")
	}
	mux.HandleFunc("/v1/ws", a.ws.Handler())
	return mux
}

func (a *app) handleIndex(rw http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(rw, r)
		return
	}
	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = rw.Write(indexHTML)
}

func (a *app) handleMetrics(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
	snap := a.metrics.Snapshot()

	// Minimal Prometheus exposition format.
	fmt.Fprintf(rw, "# HELP deskfolio_sessions_live Current number of connected sessions.\n")
	fmt.Fprintf(rw, "# TYPE deskfolio_sessions_live gauge\n")
	fmt.Fprintf(rw, "deskfolio_sessions_live %d\n", a.manager.Live())
	fmt.Fprintf(rw, "# HELP deskfolio_sessions_total Sessions admitted since start.\n")
	fmt.Fprintf(rw, "# TYPE deskfolio_sessions_total counter\n")
	fmt.Fprintf(rw, "deskfolio_sessions_total %d\n", a.manager.Total())
	fmt.Fprintf(rw, "# HELP deskfolio_acts_total Applied ACTs by result code.\n")
	fmt.Fprintf(rw, "# TYPE deskfolio_acts_total counter\n")
	for _, c := range snap.ActsByCode {
		fmt.Fprintf(rw, "deskfolio_acts_total{code=%q} %d\n", c.Label, c.Value)
	}
	fmt.Fprintf(rw, "# HELP deskfolio_opens_total Accepted opens by content key.\n")
	fmt.Fprintf(rw, "# TYPE deskfolio_opens_total counter\n")
	for _, c := range snap.OpensByKey {
		fmt.Fprintf(rw, "deskfolio_opens_total{key=%q} %d\n", c.Label, c.Value)
	}
	fmt.Fprintf(rw, "# HELP deskfolio_clues_total Clues collected across sessions.\n")
	fmt.Fprintf(rw, "# TYPE deskfolio_clues_total counter\n")
	fmt.Fprintf(rw, "deskfolio_clues_total %d\n", snap.Clues)
	if a.journal != nil {
		lines, bytes := a.journal.Stats()
		fmt.Fprintf(rw, "# HELP deskfolio_journal_lines_total Journal lines written.\n")
		fmt.Fprintf(rw, "# TYPE deskfolio_journal_lines_total counter\n")
		fmt.Fprintf(rw, "deskfolio_journal_lines_total %d\n", lines)
		fmt.Fprintf(rw, "# HELP deskfolio_journal_bytes_total Uncompressed journal bytes written.\n")
		fmt.Fprintf(rw, "# TYPE deskfolio_journal_bytes_total counter\n")
		fmt.Fprintf(rw, "deskfolio_journal_bytes_total %d\n", bytes)
	}
	writeIndexMetrics(rw, a.index)
}

func writeIndexMetrics(rw http.ResponseWriter, idx indexBackend) {
	if idx == nil {
		return
	}
	s := idx.Stats()
	fmt.Fprintf(rw, "# HELP deskfolio_index_queue_depth Current index writer queue depth.\n")
	fmt.Fprintf(rw, "# TYPE deskfolio_index_queue_depth gauge\n")
	fmt.Fprintf(rw, "deskfolio_index_queue_depth %d\n", s.QueueDepth)
	fmt.Fprintf(rw, "# HELP deskfolio_index_queue_capacity Index writer queue capacity.\n")
	fmt.Fprintf(rw, "# TYPE deskfolio_index_queue_capacity gauge\n")
	fmt.Fprintf(rw, "deskfolio_index_queue_capacity %d\n", s.QueueCapacity)
	fmt.Fprintf(rw, "# HELP deskfolio_index_dropped_total Index rows dropped because the queue was full.\n")
	fmt.Fprintf(rw, "# TYPE deskfolio_index_dropped_total counter\n")
	fmt.Fprintf(rw, "deskfolio_index_dropped_total{kind=%q} %d\n", "session", s.DropSessionTotal)
	fmt.Fprintf(rw, "deskfolio_index_dropped_total{kind=%q} %d\n", "act", s.DropActTotal)
	fmt.Fprintf(rw, "deskfolio_index_dropped_total{kind=%q} %d\n", "clue", s.DropClueTotal)
}

func (a *app) handleAdminSessions(rw http.ResponseWriter, r *http.Request) {
	if !isLoopbackRemote(r.RemoteAddr) {
		http.Error(rw, "forbidden", http.StatusForbidden)
		return
	}
	rw.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(rw).Encode(map[string]any{
		"live":     a.manager.Live(),
		"total":    a.manager.Total(),
		"sessions": a.manager.List(),
	})
}

type analyticsResp struct {
	Enabled  bool                   `json:"enabled"`
	Sessions int                    `json:"sessions"`
	Content  []indexdb.ContentCount `json:"content"`
	Clues    []indexdb.ClueCount    `json:"clues"`
	Index    indexdb.Stats          `json:"index"`
}

func (a *app) handleAdminAnalytics(rw http.ResponseWriter, r *http.Request) {
	if !isLoopbackRemote(r.RemoteAddr) {
		http.Error(rw, "forbidden", http.StatusForbidden)
		return
	}
	rw.Header().Set("Content-Type", "application/json")
	if a.index == nil {
		_ = json.NewEncoder(rw).Encode(analyticsResp{})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	resp, err := a.analytics(ctx)
	if err != nil {
		rw.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(rw).Encode(map[string]any{"ok": false, "error": err.Error()})
		return
	}
	_ = json.NewEncoder(rw).Encode(resp)
}

func (a *app) analytics(ctx context.Context) (analyticsResp, error) {
	resp := analyticsResp{Enabled: true, Index: a.index.Stats()}
	var err error
	if resp.Sessions, err = a.index.SessionCount(ctx); err != nil {
		return resp, fmt.Errorf("session count: %w", err)
	}
	if resp.Content, err = a.index.TopContent(ctx, 0); err != nil {
		return resp, fmt.Errorf("top content: %w", err)
	}
	if resp.Clues, err = a.index.ClueCounts(ctx); err != nil {
		return resp, fmt.Errorf("clue counts: %w", err)
	}
	return resp, nil
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

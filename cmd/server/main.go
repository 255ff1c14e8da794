package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"deskfolio.dev/internal/config"
	"deskfolio.dev/internal/desktop/modules"
	plog "deskfolio.dev/internal/persistence/log"
	"deskfolio.dev/internal/protocol"
	"deskfolio.dev/internal/session"
	"deskfolio.dev/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", "", "http listen address (overrides config listen)")
		configPath = flag.String("config", "./configs/desktop.yaml", "desktop config path (missing file means defaults)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		logger.Fatalf("config: %v", err)
	}
	if a := strings.TrimSpace(*addr); a != "" {
		cfg.Listen = a
	}

	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(cfg, *dataDir, logger)
	if err != nil {
		logger.Fatalf("init: %v", err)
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           a.mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", cfg.Listen)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

type app struct {
	cfg     config.Config
	log     *log.Logger
	manager *session.Manager
	metrics *session.Metrics
	journal *plog.Journal
	index   indexBackend
	ws      *ws.Server
}

// newApp opens the journal and index and builds the websocket server. Close
// releases both.
func newApp(cfg config.Config, dataDir string, logger *log.Logger) (*app, error) {
	a := &app{
		cfg:     cfg,
		log:     logger,
		manager: session.NewManager(cfg.Session.MaxSessions),
		metrics: session.NewMetrics(),
	}

	// The lobby menu must resolve against the same catalog sessions use.
	reg, err := modules.NewRegistry(modules.Deps{})
	if err != nil {
		return nil, err
	}
	if err := cfg.CheckMenu(reg); err != nil {
		return nil, err
	}

	opts := session.Options{
		ClueTotal: cfg.ClueTotal,
		Menu:      cfg.Menu(),
		Lang:      cfg.LangTag(),
		Metrics:   a.metrics,
		Logger:    log.New(os.Stdout, "[session] ", log.LstdFlags|log.Lmicroseconds),
	}

	if cfg.Journal.Enabled {
		dir := journalDir(cfg.Journal, dataDir)
		a.journal = plog.NewJournal(dir)
		opts.Journal = a.journal
		logger.Printf("journal dir=%s", dir)
	}

	idx, err := openIndex(cfg.Index, dataDir, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	if idx != nil {
		a.index = idx
		opts.Index = idx
		opts.Deps.Analytics = idx
	}

	wsLogger := log.New(os.Stdout, "[ws] ", log.LstdFlags|log.Lmicroseconds)
	a.ws = ws.NewServer(opts, a.manager, protocol.MustValidator(), cfg.Session.MaxQueue, wsLogger)
	return a, nil
}

func (a *app) Close() {
	if a.index != nil {
		if err := a.index.Close(); err != nil {
			a.log.Printf("close index: %v", err)
		}
	}
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			a.log.Printf("close journal: %v", err)
		}
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

// Package session runs one visitor's desktop. A Session owns a host, a clue
// tracker and fresh module values; all of them are touched only from the
// goroutine that calls Run (or, for in-process clients, from whoever calls
// Apply).
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"deskfolio.dev/internal/desktop/clues"
	"deskfolio.dev/internal/desktop/content"
	"deskfolio.dev/internal/desktop/frame"
	"deskfolio.dev/internal/desktop/host"
	"deskfolio.dev/internal/desktop/modules"
	"deskfolio.dev/internal/desktop/phase"
	"deskfolio.dev/internal/desktop/shell"
	"deskfolio.dev/internal/persistence/indexdb"
	plog "deskfolio.dev/internal/persistence/log"
	"deskfolio.dev/internal/protocol"
)

const inboxSize = 64

// Journal receives one entry per applied ACT.
type Journal interface {
	WriteEntry(plog.Entry) error
}

// Index receives analytics rows. Implementations must not block.
type Index interface {
	RecordSessionOpen(indexdb.SessionRow)
	RecordSessionClose(indexdb.SessionRow)
	RecordAct(indexdb.ActRow)
	RecordClue(indexdb.ClueRow)
}

// Options are shared by every session on a server.
type Options struct {
	ClueTotal int
	Menu      []shell.MenuItem
	Lang      language.Tag
	Deps      modules.Deps

	Journal Journal
	Index   Index
	Metrics *Metrics
	Logger  *log.Logger
	Now     func() time.Time
}

// Summary is the published, read-only view used by admin listings.
type Summary struct {
	SessionID  string         `json:"session_id"`
	ClientName string         `json:"client_name"`
	OpenedAt   time.Time      `json:"opened_at"`
	Phase      phase.Phase    `json:"phase"`
	Active     content.Key    `json:"active,omitempty"`
	Progress   clues.Progress `json:"progress"`
	Acts       int            `json:"acts"`
}

type Session struct {
	id         string
	clientName string
	opts       Options
	openedAt   time.Time

	host       *host.Host
	tracker    *clues.Tracker
	underworld *modules.Underworld

	inbox chan protocol.ActMsg
	out   *Outbox

	seq     uint64
	acts    int
	missing *content.UnknownKeyError
	pending []clues.ID

	summary atomic.Pointer[Summary]
}

// NewID returns a fresh session id.
func NewID() string { return uuid.NewString() }

// New builds a session. out may be nil for in-process use (Apply/View only).
func New(opts Options, id, clientName string, out *Outbox) (*Session, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ClueTotal <= 0 {
		opts.ClueTotal = modules.TotalClues
	}
	if id == "" {
		id = NewID()
	}
	reg, err := modules.NewRegistry(opts.Deps)
	if err != nil {
		return nil, fmt.Errorf("session registry: %w", err)
	}
	tracker := clues.NewTracker(opts.ClueTotal)
	s := &Session{
		id:         id,
		clientName: clientName,
		opts:       opts,
		openedAt:   opts.Now(),
		host:       host.New(reg, tracker),
		tracker:    tracker,
		underworld: modules.NewUnderworld(),
		inbox:      make(chan protocol.ActMsg, inboxSize),
		out:        out,
	}
	s.host.OnChange(s.onChange)
	s.publish()
	if opts.Index != nil {
		opts.Index.RecordSessionOpen(indexdb.SessionRow{SessionID: id, ClientName: clientName, At: s.openedAt})
	}
	return s, nil
}

func (s *Session) ID() string                    { return s.id }
func (s *Session) Host() *host.Host              { return s.host }
func (s *Session) Digest() string                { return s.host.Digest() }
func (s *Session) Summary() Summary              { return *s.summary.Load() }
func (s *Session) Inbox() chan<- protocol.ActMsg { return s.inbox }

func (s *Session) logf(format string, args ...any) {
	if s.opts.Logger != nil {
		s.opts.Logger.Printf("session=%s "+format, append([]any{s.id}, args...)...)
	}
}

// Welcome is the handshake reply for this session.
func (s *Session) Welcome() protocol.WelcomeMsg {
	refs := make([]protocol.ContentRef, 0, len(s.opts.Menu))
	for _, it := range s.opts.Menu {
		refs = append(refs, protocol.ContentRef{Key: string(it.Key), Title: it.Title})
	}
	return protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       s.id,
		ClueTotal:       s.tracker.Progress().Total,
		Content:         refs,
	}
}

// Run serves the inbox until ctx ends. It sends the initial VIEW first.
// Each ACT is applied, journaled and answered before the next is read.
func (s *Session) Run(ctx context.Context) error {
	defer s.close()
	if err := s.sendView(ctx); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case act := <-s.inbox:
			ack := s.Apply(act)
			if err := s.sendAck(ctx, ack); err != nil {
				return err
			}
			if err := s.sendView(ctx); err != nil {
				return err
			}
		}
	}
}

func (s *Session) close() {
	if s.opts.Index != nil {
		s.opts.Index.RecordSessionClose(indexdb.SessionRow{
			SessionID: s.id,
			At:        s.opts.Now(),
			Acts:      s.acts,
			Collected: s.tracker.Progress().Collected,
		})
	}
}

func (s *Session) sendAck(ctx context.Context, ack protocol.AckMsg) error {
	if s.out == nil {
		return nil
	}
	b, err := marshal(ack)
	if err != nil {
		return err
	}
	select {
	case s.out.Acks <- b:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) sendView(ctx context.Context) error {
	if s.out == nil {
		return nil
	}
	v, err := s.View(ctx)
	if err != nil {
		s.logf("render: %v", err)
		return nil
	}
	b, err := marshal(v)
	if err != nil {
		return err
	}
	sendLatest(s.out.Views, b)
	return nil
}

// Apply runs one ACT against the desktop and reports the outcome.
func (s *Session) Apply(act protocol.ActMsg) protocol.AckMsg {
	s.seq++
	s.acts++
	s.missing = nil
	ack := s.apply(act)

	if m := s.opts.Metrics; m != nil {
		m.incAct(ack.Code)
	}
	s.record(act, ack)
	s.publish()
	return ack
}

func (s *Session) apply(act protocol.ActMsg) protocol.AckMsg {
	reject := func(code, msg string) protocol.AckMsg {
		return protocol.NewAck(act.ID, false, code, msg)
	}
	accept := func(msg string) protocol.AckMsg {
		return protocol.NewAck(act.ID, true, "", msg)
	}
	inLobby := s.host.Phase() == phase.Lobby

	switch act.Op {
	case protocol.OpNavigate:
		p, err := phase.Parse(act.Phase)
		if err != nil {
			return reject(protocol.ErrBadRequest, err.Error())
		}
		s.host.NavigateTo(p)
		return accept("")

	case protocol.OpOpen:
		key := content.Key(act.Key)
		if err := s.host.OpenContent(key); err != nil {
			var missing *content.UnknownKeyError
			if errors.As(err, &missing) {
				s.missing = missing
				return reject(protocol.ErrUnknownContent, err.Error())
			}
			return reject(protocol.ErrInternal, err.Error())
		}
		if !inLobby {
			return reject(protocol.ErrWrongPhase, "content opens only in the lobby")
		}
		return accept("")

	case protocol.OpClose:
		if !inLobby {
			return reject(protocol.ErrWrongPhase, "no windows outside the lobby")
		}
		s.host.CloseContent()
		return accept("")

	case protocol.OpFrameControl:
		if !inLobby {
			return reject(protocol.ErrWrongPhase, "no windows outside the lobby")
		}
		c, err := frame.ParseControl(act.Control)
		if err != nil {
			return reject(protocol.ErrBadRequest, err.Error())
		}
		w, ok := s.host.Active()
		if !ok {
			return reject(protocol.ErrBadRequest, "no open window")
		}
		f := frame.New(w.Title, nil, s.host.CloseContent)
		if !f.Press(c) {
			return accept(string(c) + " is not wired")
		}
		return accept("")

	case protocol.OpModuleEvent:
		if act.Event == nil {
			return reject(protocol.ErrBadRequest, "missing event")
		}
		caps := s.host.Capabilities()
		if !inLobby {
			s.underworld.HandleEvent(*act.Event, caps)
			return accept("")
		}
		w, ok := s.host.Active()
		if !ok {
			return reject(protocol.ErrBadRequest, "no open window")
		}
		m, err := s.host.Registry().Resolve(w.Key)
		if err != nil {
			return reject(protocol.ErrInternal, err.Error())
		}
		if im, ok := m.(content.Interactive); ok {
			im.HandleEvent(*act.Event, caps)
		}
		return accept("")

	default:
		return reject(protocol.ErrBadRequest, fmt.Sprintf("unknown op %q", act.Op))
	}
}

func (s *Session) onChange(c host.Change) {
	switch c.Kind {
	case host.ChangeOpen:
		if m := s.opts.Metrics; m != nil {
			m.incOpen(c.Key)
		}
	case host.ChangeClue:
		s.pending = append(s.pending, c.Clue)
		if m := s.opts.Metrics; m != nil {
			m.incClue()
		}
		s.logf("clue=%d phase=%s", c.Clue, c.Phase)
	}
}

func (s *Session) record(act protocol.ActMsg, ack protocol.AckMsg) {
	now := s.opts.Now()
	ph := s.host.Phase()
	if idx := s.opts.Index; idx != nil {
		idx.RecordAct(indexdb.ActRow{
			SessionID: s.id,
			Seq:       s.seq,
			Op:        act.Op,
			Key:       act.Key,
			Accepted:  ack.Accepted,
			Code:      ack.Code,
			At:        now,
		})
		for _, id := range s.pending {
			idx.RecordClue(indexdb.ClueRow{SessionID: s.id, Clue: int(id), Phase: string(ph), At: now})
		}
	}
	s.pending = s.pending[:0]

	if s.opts.Journal == nil {
		return
	}
	collected := make([]int, 0, len(s.tracker.Sorted()))
	for _, id := range s.tracker.Sorted() {
		collected = append(collected, int(id))
	}
	e := plog.Entry{
		SessionID: s.id,
		Seq:       s.seq,
		At:        now.UTC().Format(time.RFC3339Nano),
		Act:       act,
		Accepted:  ack.Accepted,
		Code:      ack.Code,
		Phase:     string(ph),
		Collected: collected,
		Digest:    s.host.Digest(),
	}
	if w, ok := s.host.Active(); ok {
		e.Active = string(w.Key)
	}
	if err := s.opts.Journal.WriteEntry(e); err != nil {
		s.logf("journal: %v", err)
	}
}

func (s *Session) publish() {
	sum := &Summary{
		SessionID:  s.id,
		ClientName: s.clientName,
		OpenedAt:   s.openedAt,
		Phase:      s.host.Phase(),
		Progress:   s.host.Progress(),
		Acts:       s.acts,
	}
	if w, ok := s.host.Active(); ok {
		sum.Active = w.Key
	}
	s.summary.Store(sum)
}

// ShellView is the shell input for the current state.
func (s *Session) ShellView() shell.View {
	v := shell.ViewOf(s.host, s.underworld)
	v.Menu = s.opts.Menu
	v.Lang = s.opts.Lang
	v.Missing = s.missing
	v.OnClose = s.host.CloseContent
	return v
}

// View renders the current surface into a VIEW message.
func (s *Session) View(ctx context.Context) (protocol.ViewMsg, error) {
	v := s.ShellView()
	var buf bytes.Buffer
	if err := shell.Render(v).Render(ctx, &buf); err != nil {
		return protocol.ViewMsg{}, err
	}
	p := v.Progress
	msg := protocol.ViewMsg{
		Type:            protocol.TypeView,
		ProtocolVersion: protocol.Version,
		Seq:             s.seq,
		Phase:           string(v.Phase),
		Progress: protocol.ProgressRef{
			Collected: p.Collected,
			Total:     p.Total,
			Label:     p.Label(s.opts.Lang),
		},
		HTML: buf.String(),
	}
	if v.Active != nil {
		msg.Active = &protocol.ContentRef{Key: string(v.Active.Key), Title: v.Active.Title}
	}
	if s.missing != nil {
		msg.Notice = s.missing.Error()
	}
	return msg, nil
}

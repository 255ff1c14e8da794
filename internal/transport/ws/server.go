package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"deskfolio.dev/internal/protocol"
	"deskfolio.dev/internal/session"
)

const (
	defaultMaxQueue = 8
	maxQueueLimit   = 64

	handshakeTimeout = 5 * time.Second
	readTimeout      = 120 * time.Second
	writeTimeout     = 5 * time.Second
)

type Server struct {
	opts      session.Options
	manager   *session.Manager
	validator *protocol.Validator
	maxQueue  int
	log       *log.Logger

	upgrader websocket.Upgrader
}

// NewServer serves one session per websocket connection. maxQueue bounds
// the per-connection out queue when the client asks for none.
func NewServer(opts session.Options, m *session.Manager, v *protocol.Validator, maxQueue int, logger *log.Logger) *Server {
	if maxQueue <= 0 {
		maxQueue = defaultMaxQueue
	}
	return &Server{
		opts:      opts,
		manager:   m,
		validator: v,
		maxQueue:  maxQueue,
		log:       logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) logf(format string, args ...any) {
	if s.log != nil {
		s.log.Printf(format, args...)
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sess, out := s.handshake(conn)
		if sess == nil {
			return
		}
		defer s.manager.Unregister(sess.ID())

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		runDone := make(chan struct{})
		go func() {
			defer close(runDone)
			if err := sess.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logf("session=%s run: %v", sess.ID(), err)
			}
		}()

		// Writer goroutine.
		go func() {
			for {
				b, err := out.Next(ctx)
				if err != nil {
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					cancel()
					return
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			act, ack, ok := s.decodeAct(msg)
			if !ok {
				b, _ := json.Marshal(ack)
				select {
				case out.Acks <- b:
				case <-ctx.Done():
				}
				continue
			}
			select {
			case sess.Inbox() <- act:
			case <-ctx.Done():
			}
		}
		<-runDone
		s.logf("session=%s closed", sess.ID())
	}
}

// decodeAct validates one inbound frame. Failures come back as a rejecting
// ACK; they never reach the session.
func (s *Server) decodeAct(msg []byte) (protocol.ActMsg, protocol.AckMsg, bool) {
	var act protocol.ActMsg
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return act, protocol.NewAck("", false, protocol.ErrProtoBadRequest, "bad json"), false
	}
	if base.Type != protocol.TypeAct {
		return act, protocol.NewAck("", false, protocol.ErrProtoBadRequest, "expected ACT, got "+base.Type), false
	}
	// Best-effort id for the ACK.
	_ = json.Unmarshal(msg, &act)
	if base.ProtocolVersion != protocol.Version {
		return act, protocol.NewAck(act.ID, false, protocol.ErrProtoBadRequest, "bad protocol_version"), false
	}
	if s.validator != nil {
		if err := s.validator.Act(msg); err != nil {
			return act, protocol.NewAck(act.ID, false, protocol.ErrProtoBadRequest, err.Error()), false
		}
	}
	if err := json.Unmarshal(msg, &act); err != nil {
		return act, protocol.NewAck(act.ID, false, protocol.ErrProtoBadRequest, err.Error()), false
	}
	return act, protocol.AckMsg{}, true
}

func (s *Server) handshake(conn *websocket.Conn) (*session.Session, *session.Outbox) {
	_ = conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		closeWith(conn, websocket.ClosePolicyViolation, "expected HELLO")
		return nil, nil
	}
	if s.validator != nil {
		if err := s.validator.Hello(msg); err != nil {
			closeWith(conn, websocket.ClosePolicyViolation, "bad HELLO")
			return nil, nil
		}
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return nil, nil
	}
	if hello.ProtocolVersion != protocol.Version {
		closeWith(conn, websocket.ClosePolicyViolation, "bad protocol_version")
		return nil, nil
	}
	name := strings.TrimSpace(hello.ClientName)
	if name == "" {
		name = "visitor"
	}

	maxQ := hello.Capabilities.MaxQueue
	if maxQ <= 0 {
		maxQ = s.maxQueue
	}
	if maxQ > maxQueueLimit {
		maxQ = maxQueueLimit
	}
	out := session.NewOutbox(maxQ)

	sess, err := session.New(s.opts, session.NewID(), name, out)
	if err != nil {
		s.logf("new session: %v", err)
		_ = writeJSON(conn, protocol.NewAck("", false, protocol.ErrInternal, "session unavailable"))
		closeWith(conn, websocket.CloseInternalServerErr, "session unavailable")
		return nil, nil
	}
	if err := s.manager.Register(sess); err != nil {
		_ = writeJSON(conn, protocol.NewAck("", false, protocol.ErrSessionBusy, err.Error()))
		closeWith(conn, websocket.CloseTryAgainLater, "busy")
		return nil, nil
	}

	if err := writeJSON(conn, sess.Welcome()); err != nil {
		s.manager.Unregister(sess.ID())
		return nil, nil
	}
	s.logf("session=%s client=%q opened", sess.ID(), name)
	return sess, out
}

func closeWith(conn *websocket.Conn, code int, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(time.Second))
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, b)
}

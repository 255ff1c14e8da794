package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"deskfolio.dev/internal/desktop/content"
	"deskfolio.dev/internal/protocol"
)

func main() {
	var (
		url  = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name = flag.String("name", "bot", "client name")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	last, err := runTour(conn, *name, logger)
	if err != nil {
		logger.Fatalf("tour: %v", err)
	}
	logger.Printf("done: %s", last.Progress.Label)
}

type step struct {
	act  protocol.ActMsg
	want bool // accepted
}

func ev(e content.Event) protocol.ActMsg {
	return protocol.ActMsg{Op: protocol.OpModuleEvent, Event: &e}
}

// tour visits every window and finds every clue.
func tour() []step {
	steps := []step{
		{protocol.ActMsg{Op: protocol.OpOpen, Key: "readme"}, true},
		{protocol.ActMsg{Op: protocol.OpOpen, Key: "readmee"}, false},
		{protocol.ActMsg{Op: protocol.OpFrameControl, Control: "maximize"}, true},
		{protocol.ActMsg{Op: protocol.OpOpen, Key: "terminal"}, true},
		{ev(content.Event{Name: "command", Text: "ls -a"}), true},
		{ev(content.Event{Name: "command", Text: "cat .clue"}), true},
		{protocol.ActMsg{Op: protocol.OpOpen, Key: "diagram"}, true},
		{ev(content.Event{Name: "pan", DX: 700}), true},
		{protocol.ActMsg{Op: protocol.OpOpen, Key: "proj-match-five"}, true},
		{ev(content.Event{Name: "flip", Index: 1}), true},
		{ev(content.Event{Name: "flip", Index: 4}), true},
		{protocol.ActMsg{Op: protocol.OpOpen, Key: "exp-cadence"}, true},
	}
	for i := 0; i < 5; i++ {
		steps = append(steps, step{ev(content.Event{Name: "tap", AtMS: int64(1000 + 500*i)}), true})
	}
	steps = append(steps,
		step{protocol.ActMsg{Op: protocol.OpOpen, Key: "dashboard"}, true},
		step{protocol.ActMsg{Op: protocol.OpNavigate, Phase: "underworld"}, true},
		step{protocol.ActMsg{Op: protocol.OpOpen, Key: "readme"}, false},
		step{protocol.ActMsg{Op: protocol.OpFrameControl, Control: "maximize"}, false},
		step{ev(content.Event{Name: "scroll", X: 2800, Y: 3300}), true},
		step{ev(content.Event{Name: "return"}), true},
		// Closing with nothing open is a no-op.
		step{protocol.ActMsg{Op: protocol.OpClose}, true},
	)
	return steps
}

func runTour(conn *websocket.Conn, name string, logger *log.Logger) (protocol.ViewMsg, error) {
	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ClientName:      name,
		Capabilities:    protocol.HelloCapabilities{MaxQueue: 8},
	}
	if err := conn.WriteJSON(hello); err != nil {
		return protocol.ViewMsg{}, fmt.Errorf("send HELLO: %w", err)
	}

	var w protocol.WelcomeMsg
	if err := readInto(conn, protocol.TypeWelcome, &w); err != nil {
		return protocol.ViewMsg{}, err
	}
	logger.Printf("WELCOME session=%s clues=%d content=%d", w.SessionID, w.ClueTotal, len(w.Content))

	var view protocol.ViewMsg
	if err := readInto(conn, protocol.TypeView, &view); err != nil {
		return view, err
	}

	for i, st := range tour() {
		act := st.act
		act.Type = protocol.TypeAct
		act.ProtocolVersion = protocol.Version
		act.ID = strconv.Itoa(i + 1)
		if err := conn.WriteJSON(act); err != nil {
			return view, fmt.Errorf("send ACT %s: %w", act.ID, err)
		}
		var ack protocol.AckMsg
		if err := readInto(conn, protocol.TypeAck, &ack); err != nil {
			return view, err
		}
		if ack.AckFor != act.ID || ack.Accepted != st.want {
			return view, fmt.Errorf("act %s (%s): accepted=%v code=%s", act.ID, act.Op, ack.Accepted, ack.Code)
		}
		if err := readInto(conn, protocol.TypeView, &view); err != nil {
			return view, err
		}
		active := "-"
		if view.Active != nil {
			active = view.Active.Key
		}
		logger.Printf("VIEW seq=%d op=%s phase=%s active=%s %s", view.Seq, act.Op, view.Phase, active, view.Progress.Label)
	}
	if view.Progress.Collected != view.Progress.Total {
		return view, fmt.Errorf("tour ended with %s", view.Progress.Label)
	}
	return view, nil
}

func readInto(conn *websocket.Conn, typ string, v any) error {
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("read %s: %w", typ, err)
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return fmt.Errorf("read %s: %w", typ, err)
	}
	if base.Type != typ {
		return fmt.Errorf("got %s want %s: %s", base.Type, typ, msg)
	}
	return json.Unmarshal(msg, v)
}

package session

import (
	"context"
	"encoding/json"
)

func marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Outbox carries frames to the connection writer. Acks are never dropped;
// Views keeps only the newest frames when the writer falls behind.
type Outbox struct {
	Acks  chan []byte
	Views chan []byte

	held []byte // writer side only
}

func NewOutbox(size int) *Outbox {
	if size <= 0 {
		size = 1
	}
	return &Outbox{
		Acks:  make(chan []byte, size),
		Views: make(chan []byte, size),
	}
}

// Next returns the next frame to write. Queued acks always go first, so a
// view is never written ahead of the ack for the act that produced it.
// Next must be called from a single goroutine.
func (o *Outbox) Next(ctx context.Context) ([]byte, error) {
	for {
		select {
		case b := <-o.Acks:
			return b, nil
		default:
		}
		if o.held != nil {
			b := o.held
			o.held = nil
			return b, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case b := <-o.Acks:
			return b, nil
		case b := <-o.Views:
			// Re-check acks before writing it.
			o.held = b
		}
	}
}

// sendLatest never blocks: when ch is full the oldest message is dropped.
func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}

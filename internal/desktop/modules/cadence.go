package modules

import (
	"context"
	"fmt"
	"io"
	"math"

	"deskfolio.dev/internal/desktop/content"
	"deskfolio.dev/internal/desktop/markup"
)

const (
	cadenceIntervals = 4
	// cadenceTolerancePct is the allowed deviation of each interval from the mean.
	cadenceTolerancePct = 10
)

// Cadence listens for a steady rhythm of taps timed by the client clock.
type Cadence struct {
	taps   []int64
	locked bool
}

func NewCadence() *Cadence { return &Cadence{} }

func (c *Cadence) Locked() bool { return c.locked }

func (c *Cadence) HandleEvent(ev content.Event, caps content.Capabilities) {
	switch ev.Name {
	case "tap":
		if n := len(c.taps); n > 0 && ev.AtMS <= c.taps[n-1] {
			c.taps = c.taps[:0]
		}
		c.taps = append(c.taps, ev.AtMS)
		if over := len(c.taps) - (cadenceIntervals + 1); over > 0 {
			c.taps = append(c.taps[:0], c.taps[over:]...)
		}
		if !c.locked && steady(c.taps) {
			c.locked = true
			caps.Collect(ClueCadence)
		}
	case "reset":
		c.taps = c.taps[:0]
	}
}

// steady reports whether taps hold cadenceIntervals intervals each within
// the tolerance of their mean.
func steady(taps []int64) bool {
	if len(taps) < cadenceIntervals+1 {
		return false
	}
	taps = taps[len(taps)-(cadenceIntervals+1):]
	// Taps strictly increase, so each gap fits in a uint64 even when the
	// int64 subtraction would wrap.
	var gaps [cadenceIntervals]float64
	var sum float64
	for i := 1; i < len(taps); i++ {
		gaps[i-1] = float64(uint64(taps[i]) - uint64(taps[i-1]))
		sum += gaps[i-1]
	}
	if sum <= 0 {
		return false
	}
	mean := sum / cadenceIntervals
	for _, g := range gaps {
		if math.Abs(g-mean)*100 > mean*cadenceTolerancePct {
			return false
		}
	}
	return true
}

func (c *Cadence) Render(_ context.Context, w io.Writer) error {
	hw := markup.NewWriter(w)
	hw.Raw(`<div class="cadence">`)
	hw.Raw(`<button class="tap-pad" data-act="module_event" data-name="tap">tap</button>`)
	hw.Printf(`<p class="status">%s</p>`, markup.Esc(c.status()))
	hw.Raw(`</div>`)
	return hw.Err()
}

func (c *Cadence) status() string {
	if c.locked {
		return "locked in"
	}
	return fmt.Sprintf("%d/%d taps", len(c.taps), cadenceIntervals+1)
}

func (c *Cadence) Text() string { return "cadence: " + c.status() }

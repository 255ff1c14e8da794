package modules

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"deskfolio.dev/internal/desktop/markup"
)

const dashboardQueryTimeout = 500 * time.Millisecond

// Dashboard renders aggregate analytics. It holds no state of its own.
type Dashboard struct {
	src Analytics
}

func NewDashboard(src Analytics) *Dashboard { return &Dashboard{src: src} }

type dashboardData struct {
	sessions int
	opens    []keyCount
	clues    []keyCount
	err      error
}

type keyCount struct {
	Key   string
	Count int
}

func (d *Dashboard) load(ctx context.Context) dashboardData {
	var out dashboardData
	if d.src == nil {
		out.err = fmt.Errorf("analytics disabled")
		return out
	}
	ctx, cancel := context.WithTimeout(ctx, dashboardQueryTimeout)
	defer cancel()

	n, err := d.src.SessionCount(ctx)
	if err != nil {
		out.err = err
		return out
	}
	out.sessions = n
	opens, err := d.src.OpensByContent(ctx)
	if err != nil {
		out.err = err
		return out
	}
	for k, c := range opens {
		out.opens = append(out.opens, keyCount{Key: k, Count: c})
	}
	finds, err := d.src.ClueFinds(ctx)
	if err != nil {
		out.err = err
		return out
	}
	for id, c := range finds {
		out.clues = append(out.clues, keyCount{Key: fmt.Sprintf("clue %d", id), Count: c})
	}
	sortCounts(out.opens)
	sortCounts(out.clues)
	return out
}

func sortCounts(xs []keyCount) {
	sort.Slice(xs, func(i, j int) bool {
		if xs[i].Count != xs[j].Count {
			return xs[i].Count > xs[j].Count
		}
		return xs[i].Key < xs[j].Key
	})
}

func (d *Dashboard) Render(ctx context.Context, w io.Writer) error {
	data := d.load(ctx)
	hw := markup.NewWriter(w)
	hw.Raw(`<div class="dashboard">`)
	if data.err != nil {
		hw.Printf(`<p class="dashboard-empty">no analytics: %s</p></div>`, markup.Esc(data.err.Error()))
		return hw.Err()
	}
	hw.Printf(`<p class="dashboard-sessions">%d sessions</p>`, data.sessions)
	writeBars(hw, "opens", data.opens)
	writeBars(hw, "clues", data.clues)
	hw.Raw(`</div>`)
	return hw.Err()
}

func writeBars(hw *markup.Writer, title string, rows []keyCount) {
	max := 1
	for _, r := range rows {
		if r.Count > max {
			max = r.Count
		}
	}
	hw.Printf(`<h4>%s</h4><ul class="bars">`, markup.Esc(title))
	for _, r := range rows {
		hw.Printf(`<li><span class="bar" style="width:%d%%"></span>%s <b>%d</b></li>`, r.Count*100/max, markup.Esc(r.Key), r.Count)
	}
	hw.Raw(`</ul>`)
}

func (d *Dashboard) Text() string {
	data := d.load(context.Background())
	if data.err != nil {
		return "no analytics: " + data.err.Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d sessions\n", data.sessions)
	for _, r := range data.opens {
		fmt.Fprintf(&b, "  open  %-16s %d\n", r.Key, r.Count)
	}
	for _, r := range data.clues {
		fmt.Fprintf(&b, "  found %-16s %d\n", r.Key, r.Count)
	}
	return b.String()
}

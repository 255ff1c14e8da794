// Package markup writes hand-built HTML fragments. A Writer keeps the first
// write error and ignores everything after it, so render code checks once.
package markup

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

type Writer struct {
	w   io.Writer
	err error
}

func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

func (m *Writer) Printf(format string, args ...any) {
	if m.err != nil {
		return
	}
	_, m.err = fmt.Fprintf(m.w, format, args...)
}

func (m *Writer) Raw(s string) {
	if m.err != nil {
		return
	}
	_, m.err = io.WriteString(m.w, s)
}

// Component renders c in place.
func (m *Writer) Component(ctx context.Context, c templ.Component) {
	if m.err != nil {
		return
	}
	m.err = c.Render(ctx, m.w)
}

func (m *Writer) Err() error { return m.err }

// Esc escapes s for HTML text and attribute values.
func Esc(s string) string { return templ.EscapeString(s) }

package ui

import (
	"fmt"
	"io"
)

// Progress counts processed extensions with a simple "[n/total]" prefix.
type Progress struct {
	out       io.Writer
	total     int
	completed int
}

// NewProgress creates a progress counter for total items.
func NewProgress(out io.Writer, total int) *Progress {
	return &Progress{out: out, total: total}
}

// Done marks one item as processed and prints its label and detail.
func (p *Progress) Done(label, detail string) {
	p.completed++
	if detail == "" {
		_, _ = fmt.Fprintf(p.out, "[%d/%d] %s\n", p.completed, p.total, label)
		return
	}
	_, _ = fmt.Fprintf(p.out, "[%d/%d] %s: %s\n", p.completed, p.total, label, detail)
}

// Log prints an informational line between progress lines.
func (p *Progress) Log(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, "  "+format+"\n", args...)
}

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
)

// progressBar redraws a single status line on w.
type progressBar struct {
	w          io.Writer
	paint      *color.Color
	interval   time.Duration
	lastUpdate time.Time
	started    bool
	last       string
}

func newProgressBar(w io.Writer) *progressBar {
	return &progressBar{
		w:        w,
		paint:    color.New(color.FgCyan),
		interval: 100 * time.Millisecond,
	}
}

// update is an ftp.ProgressFunc.
func (p *progressBar) update(transferred int64, total uint64) {
	p.last = formatProgress(transferred, total)
	now := time.Now()
	if p.started && now.Sub(p.lastUpdate) < p.interval {
		return
	}
	p.started = true
	p.lastUpdate = now

	_, _ = p.paint.Fprintf(p.w, "\r%s", p.last)
}

// finish draws the final state and ends the line.
func (p *progressBar) finish() {
	if !p.started {
		return
	}
	_, _ = p.paint.Fprintf(p.w, "\r%s", p.last)
	_, _ = fmt.Fprintln(p.w)
}

// formatProgress renders "written/total bytes (pct%)". The percentage is
// omitted when the size is unknown (zero).
func formatProgress(transferred int64, total uint64) string {
	if total == 0 {
		return fmt.Sprintf("%d bytes", transferred)
	}
	pct := float64(transferred) / float64(total) * 100
	if pct > 100 {
		pct = 100
	}
	return fmt.Sprintf("%d/%d bytes (%.1f%%)", transferred, total, pct)
}

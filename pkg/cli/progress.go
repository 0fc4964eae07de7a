package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

const progressBarWidth = 40

// Progress renders a single-line progress bar for a fixed number of rounds.
type Progress struct {
	mu      sync.Mutex
	writer  io.Writer
	label   string
	total   int
	done    int
	wins    int
	started time.Time
}

// NewProgress creates a progress bar. A nil w writes to os.Stderr.
func NewProgress(w io.Writer, label string, total int) *Progress {
	if w == nil {
		w = os.Stderr
	}
	return &Progress{
		writer:  w,
		label:   label,
		total:   total,
		started: time.Now(),
	}
}

// Step records one finished round.
func (p *Progress) Step(success bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	if success {
		p.wins++
	}
	p.render()
}

// Finish ends the progress line.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.writer)
}

func (p *Progress) render() {
	if p.total <= 0 {
		return
	}

	done := min(p.done, p.total)
	filled := progressBarWidth * done / p.total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", progressBarWidth-filled)

	rate := 0.0
	if elapsed := time.Since(p.started).Seconds(); elapsed > 0 {
		rate = float64(p.done) / elapsed
	}

	fmt.Fprintf(p.writer, "\r%s: [%s] %d/%d (%d successful) %.1f/s",
		p.label, bar, done, p.total, p.wins, rate)
}

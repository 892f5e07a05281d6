package reembed

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports maintenance-run progress to a writer, typically
// os.Stderr. Reports are throttled to every reportInterval processed items;
// Finish always emits a final line. Safe for concurrent use.
type ProgressTracker struct {
	mu             sync.Mutex
	writer         io.Writer
	total          int
	reportInterval int
	current        int
	lastReported   int
	startedAt      time.Time
}

// NewProgressTracker creates a tracker for total items, reporting every
// reportInterval items.
func NewProgressTracker(writer io.Writer, total, reportInterval int) *ProgressTracker {
	return &ProgressTracker{
		writer:         writer,
		total:          total,
		reportInterval: reportInterval,
	}
}

// Start resets the tracker and begins timing.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startedAt = time.Now()
	p.current = 0
	p.lastReported = 0
}

// Update records that current items have been processed so far. Values above
// total are clamped. Calls before Start are ignored.
func (p *ProgressTracker) Update(current int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.startedAt.IsZero() {
		return
	}

	p.current = min(current, p.total)
	if p.current-p.lastReported >= p.reportInterval {
		p.report()
		p.lastReported = p.current
	}
}

// Finish forces the count to total and emits the final report line.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.startedAt.IsZero() {
		return
	}

	p.current = p.total
	p.report()
	fmt.Fprintln(p.writer)
}

// Elapsed returns the time since Start, or zero before the first Start.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.startedAt.IsZero() {
		return 0
	}
	return time.Since(p.startedAt)
}

// report writes a progress line. Caller holds the lock.
func (p *ProgressTracker) report() {
	rate := float64(p.current) / time.Since(p.startedAt).Seconds()

	var pct float64
	if p.total > 0 {
		pct = float64(p.current) / float64(p.total) * 100
	}

	fmt.Fprintf(p.writer, "\rProgress: %d/%d (%.1f%%) - %.1f chunks/s",
		p.current, p.total, pct, rate)
}

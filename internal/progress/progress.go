// Package progress prints a live status line while a replay runs.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"datacenter/internal/eventbus"
)

type Progress struct {
	startTime time.Time
	total     int
	actions   atomic.Int64
	completed atomic.Int64
	ticker    *time.Ticker
	stopCh    chan struct{}
	stopped   atomic.Bool
	quiet     bool
	output    io.Writer
	mu        sync.Mutex
}

// NewProgress reports on a replay of total actions.
func NewProgress(total int, quiet bool) *Progress {
	return &Progress{
		total:  total,
		quiet:  quiet,
		output: os.Stderr,
	}
}

func (p *Progress) SetOutput(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.output = w
}

// Observe tracks the number of completed activities from bus.
func (p *Progress) Observe(bus *eventbus.Bus) *eventbus.Subscription {
	return bus.ActivityChanged.Subscribe(func(e eventbus.ActivityChanged) error {
		if e.Completed {
			p.completed.Add(1)
		} else {
			p.completed.Add(-1)
		}
		return nil
	})
}

// Step records one applied action.
func (p *Progress) Step() {
	p.actions.Add(1)
}

func (p *Progress) Start() {
	if p.quiet {
		return
	}
	p.startTime = time.Now()
	p.stopCh = make(chan struct{})
	p.ticker = time.NewTicker(1 * time.Second)
	go p.run()
}

func (p *Progress) run() {
	for {
		select {
		case <-p.stopCh:
			return
		case <-p.ticker.C:
			p.printProgress()
		}
	}
}

func (p *Progress) printProgress() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.output, p.line(time.Since(p.startTime)))
}

func (p *Progress) line(elapsed time.Duration) string {
	elapsed = elapsed.Round(time.Second)
	mins := int(elapsed.Minutes())
	secs := int(elapsed.Seconds()) % 60
	return fmt.Sprintf("\033[K[%02d:%02d] Actions: %d/%d | Activities completed: %d",
		mins, secs, p.actions.Load(), p.total, p.completed.Load())
}

func (p *Progress) Stop() {
	if p.quiet || p.stopped.Swap(true) {
		return
	}
	if p.ticker != nil {
		p.ticker.Stop()
	}
	if p.stopCh != nil {
		close(p.stopCh)
	}
	p.mu.Lock()
	fmt.Fprintf(p.output, "\033[K")
	p.mu.Unlock()
}

func (p *Progress) Print(message string) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	fmt.Fprintf(p.output, "\033[K%s\n", message)
	p.mu.Unlock()
}

func (p *Progress) Printf(format string, args ...interface{}) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	fmt.Fprintf(p.output, "\033[K"+format+"\n", args...)
	p.mu.Unlock()
}

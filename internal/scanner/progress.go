package scanner

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/term"
)

// progress is a single-writer line updater driven by atomic counters,
// refreshed at a bounded rate so it never contends the hot path.
type progress struct {
	enabled bool
	scanned atomic.Int64
	written atomic.Int64
	done    chan struct{}
	stopped chan struct{}
}

func newProgress() *progress {
	return &progress{
		enabled: term.IsTerminal(int(os.Stdout.Fd())),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

func (p *progress) incScanned()      { p.scanned.Add(1) }
func (p *progress) incWritten(n int) { p.written.Add(int64(n)) }

// run refreshes the line at 10 Hz until stop is called. If the process is
// not attached to a terminal, run exits immediately and prints nothing.
func (p *progress) run() {
	defer close(p.stopped)
	if !p.enabled {
		return
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.render()
		case <-p.done:
			p.render()
			fmt.Fprintln(os.Stdout)
			return
		}
	}
}

func (p *progress) render() {
	fmt.Fprintf(os.Stdout, "\rscanned %d files, %d records written", p.scanned.Load(), p.written.Load())
}

func (p *progress) stop() {
	close(p.done)
	<-p.stopped
}

package cmd

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// progressPrinter renders a single-line live view of a running scan.
type progressPrinter struct {
	total    int
	target   string
	mu       sync.Mutex
	pass     int
	fail     int
	duration float64
	updates  chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newProgressPrinter(total int, target string) *progressPrinter {
	if total <= 0 {
		total = 1
	}
	return &progressPrinter{
		total:   total,
		target:  target,
		updates: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

func (p *progressPrinter) Start() {
	go p.loop()
}

// Increment records one finished probe. Safe for concurrent use.
func (p *progressPrinter) Increment(compliant bool, duration float64) {
	p.mu.Lock()
	if compliant {
		p.pass++
	} else {
		p.fail++
	}
	p.duration += duration
	p.mu.Unlock()

	select {
	case p.updates <- struct{}{}:
	default:
	}
}

func (p *progressPrinter) Stop() {
	p.stopOnce.Do(func() {
		close(p.done)
	})
	fmt.Fprintf(os.Stdout, "\r%s\r", strings.Repeat(" ", 80))
	p.print()
	fmt.Fprintln(os.Stdout)
}

func (p *progressPrinter) loop() {
	ticker := time.NewTicker(300 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-p.updates:
			p.print()
		case <-ticker.C:
			p.print()
		case <-p.done:
			return
		}
	}
}

func (p *progressPrinter) print() {
	p.mu.Lock()
	pass := p.pass
	fail := p.fail
	dur := p.duration
	p.mu.Unlock()

	completed := pass + fail
	if completed > p.total {
		p.total = completed
	}

	percent := (float64(completed) / float64(p.total)) * 100
	avg := 0.0
	if completed > 0 {
		avg = dur / float64(completed)
	}

	line := fmt.Sprintf("\r[%s] Probes: %d/%d (%.1f%%) Pass:%d Fail:%d Avg:%.2fs",
		p.target, completed, p.total, percent, pass, fail, avg)
	fmt.Fprintf(os.Stdout, "%s", line)
}

// Package scanner runs the probe registry against a target with bounded
// concurrency and collects the results.
package scanner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/datnt-sec/webcomply/internal/probe"
)

// Orchestrator executes all registered probes against one target using a
// worker pool with global rate limiting.
type Orchestrator struct {
	Concurrency  int           // maximum probes in flight
	RateLimit    int           // probe starts per second (global)
	ProbeTimeout time.Duration // deadline for each probe
	ScanTimeout  time.Duration // deadline for the whole scan
	Options      probe.Options // shared probe tuning
	Logger       *zap.SugaredLogger

	// Probes overrides the default registry when non-nil; used by tests.
	Probes []probe.Probe

	// OnResult, when set, is invoked once per finished probe with its
	// result and wall-clock duration. Calls may arrive from multiple
	// goroutines.
	OnResult func(probe.Result, time.Duration)
}

func (o *Orchestrator) withDefaults() *Orchestrator {
	out := *o
	if out.Concurrency <= 0 {
		out.Concurrency = 8
	}
	if out.RateLimit <= 0 {
		out.RateLimit = 10
	}
	if out.ProbeTimeout <= 0 {
		out.ProbeTimeout = 30 * time.Second
	}
	if out.ScanTimeout <= 0 {
		out.ScanTimeout = 5 * time.Minute
	}
	if out.Probes == nil {
		out.Probes = probe.Registry()
	}
	return &out
}

// Run executes every probe against the target and returns one result per
// probe. A probe that overruns its deadline or panics still yields a
// result, so the caller always receives a verdict for each catalog item a
// probe covers.
func (o *Orchestrator) Run(ctx context.Context, tgt *probe.Target) []probe.Result {
	r := o.withDefaults()

	ctx, cancel := context.WithTimeout(ctx, r.ScanTimeout)
	defer cancel()

	limiter := rate.NewLimiter(rate.Limit(r.RateLimit), r.RateLimit)

	sem := make(chan struct{}, r.Concurrency)
	var wg sync.WaitGroup
	mu := sync.Mutex{}
	results := make([]probe.Result, 0, len(r.Probes))

	for _, p := range r.Probes {
		wg.Add(1)
		go func(p probe.Probe) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			_ = limiter.Wait(ctx)

			start := time.Now()
			result := r.runOne(ctx, p, tgt)

			elapsed := time.Since(start)
			if r.Logger != nil {
				r.Logger.Debugw("probe finished",
					"probe_id", p.ID,
					"compliant", result.Compliant,
					"duration_ms", elapsed.Milliseconds())
			}
			if r.OnResult != nil {
				r.OnResult(result, elapsed)
			}

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		}(p)
	}

	wg.Wait()
	return results
}

// runOne executes a single probe under its own deadline, converting
// overruns and panics into synthetic results.
func (r *Orchestrator) runOne(ctx context.Context, p probe.Probe, tgt *probe.Target) probe.Result {
	probeCtx, cancel := context.WithTimeout(ctx, r.ProbeTimeout)
	defer cancel()

	done := make(chan probe.Result, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				if r.Logger != nil {
					r.Logger.Errorw("probe panicked", "probe_id", p.ID, "panic", rec)
				}
				done <- probe.Result{
					ProbeID:   p.ID,
					CatalogID: p.CatalogID,
					Compliant: false,
					Severity:  probe.SeverityHigh,
					Remark:    "Probe failed unexpectedly and could not produce a verdict.",
					Evidence:  map[string]any{"panic": fmt.Sprint(rec)},
				}
			}
		}()
		done <- p.Execute(probeCtx, tgt, r.Options)
	}()

	select {
	case result := <-done:
		return result
	case <-probeCtx.Done():
		// The probe goroutine is abandoned; it will exit once its own
		// network calls observe the cancelled context.
		return probe.Result{
			ProbeID:   p.ID,
			CatalogID: p.CatalogID,
			Compliant: false,
			Severity:  probe.SeverityHigh,
			Remark:    "Probe timed out before producing a verdict.",
		}
	}
}

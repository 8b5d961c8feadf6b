package scanner

import (
	"context"
	"testing"
	"time"

	"github.com/datnt-sec/webcomply/internal/probe"
)

func stubProbe(id string, catalogID int, fn probe.ProbeFunc) probe.Probe {
	return probe.Probe{ID: id, CatalogID: catalogID, Run: fn}
}

func TestRunCollectsOneResultPerProbe(t *testing.T) {
	o := &Orchestrator{
		Probes: []probe.Probe{
			stubProbe("a", 1, func(ctx context.Context, tgt *probe.Target, opts probe.Options) probe.Result {
				return probe.Result{ProbeID: "a", CatalogID: 1, Compliant: true}
			}),
			stubProbe("b", 2, func(ctx context.Context, tgt *probe.Target, opts probe.Options) probe.Result {
				return probe.Result{ProbeID: "b", CatalogID: 2, Compliant: false, Severity: probe.SeverityHigh}
			}),
		},
	}

	results := o.Run(context.Background(), &probe.Target{Host: "example.com", Scheme: "https"})

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	seen := map[string]bool{}
	for _, r := range results {
		seen[r.ProbeID] = true
	}
	if !seen["a"] || !seen["b"] {
		t.Errorf("missing probe results: %v", seen)
	}
}

func TestRunProducesSyntheticResultOnTimeout(t *testing.T) {
	o := &Orchestrator{
		ProbeTimeout: 50 * time.Millisecond,
		Probes: []probe.Probe{
			stubProbe("slow", 7, func(ctx context.Context, tgt *probe.Target, opts probe.Options) probe.Result {
				<-ctx.Done()
				time.Sleep(time.Second)
				return probe.Result{ProbeID: "slow", CatalogID: 7, Compliant: true}
			}),
		},
	}

	start := time.Now()
	results := o.Run(context.Background(), &probe.Target{Host: "example.com", Scheme: "https"})
	elapsed := time.Since(start)

	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Compliant {
		t.Error("a timed-out probe must yield a non-compliant result")
	}
	if results[0].CatalogID != 7 {
		t.Errorf("synthetic result carries catalog ID %d, want 7", results[0].CatalogID)
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("Run blocked for %s waiting on an abandoned probe", elapsed)
	}
}

func TestRunIsolatesPanics(t *testing.T) {
	o := &Orchestrator{
		Probes: []probe.Probe{
			stubProbe("panics", 3, func(ctx context.Context, tgt *probe.Target, opts probe.Options) probe.Result {
				panic("boom")
			}),
			stubProbe("fine", 4, func(ctx context.Context, tgt *probe.Target, opts probe.Options) probe.Result {
				return probe.Result{ProbeID: "fine", CatalogID: 4, Compliant: true}
			}),
		},
	}

	results := o.Run(context.Background(), &probe.Target{Host: "example.com", Scheme: "https"})

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, r := range results {
		if r.ProbeID == "panics" {
			if r.Compliant {
				t.Error("a panicking probe must yield a non-compliant result")
			}
			if r.CatalogID != 3 {
				t.Errorf("panic result carries catalog ID %d, want 3", r.CatalogID)
			}
		}
	}
}

func TestRunHonorsConcurrencyBound(t *testing.T) {
	const bound = 2
	var mu = make(chan struct{}, 1)
	inFlight, peak := 0, 0

	track := func(delta int) {
		mu <- struct{}{}
		inFlight += delta
		if inFlight > peak {
			peak = inFlight
		}
		<-mu
	}

	probes := make([]probe.Probe, 0, 6)
	for i := 0; i < 6; i++ {
		probes = append(probes, stubProbe("p", i+1, func(ctx context.Context, tgt *probe.Target, opts probe.Options) probe.Result {
			track(1)
			time.Sleep(20 * time.Millisecond)
			track(-1)
			return probe.Result{Compliant: true}
		}))
	}

	o := &Orchestrator{Concurrency: bound, RateLimit: 1000, Probes: probes}
	o.Run(context.Background(), &probe.Target{Host: "example.com", Scheme: "https"})

	if peak > bound {
		t.Errorf("peak concurrency %d exceeded the bound %d", peak, bound)
	}
}

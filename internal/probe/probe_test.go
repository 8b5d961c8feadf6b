package probe

import (
	"encoding/json"
	"testing"
)

func TestSeverityOrdering(t *testing.T) {
	ordered := []Severity{
		SeverityInfo, SeverityLow, SeverityMedium,
		SeverityWarning, SeverityHigh, SeverityCritical,
	}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1] >= ordered[i] {
			t.Errorf("expected %s < %s", ordered[i-1], ordered[i])
		}
	}
}

func TestSeverityJSONRoundTrip(t *testing.T) {
	for _, sev := range []Severity{SeverityInfo, SeverityWarning, SeverityCritical} {
		data, err := json.Marshal(sev)
		if err != nil {
			t.Fatalf("marshal %s: %v", sev, err)
		}

		var back Severity
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if back != sev {
			t.Errorf("round trip changed %s into %s", sev, back)
		}
	}
}

func TestParseSeverityUnknown(t *testing.T) {
	if _, err := ParseSeverity("catastrophic"); err == nil {
		t.Error("expected error for unknown severity name")
	}
}

func TestRegistryCoversCatalogRange(t *testing.T) {
	probes := Registry()
	if len(probes) != 28 {
		t.Fatalf("registry has %d probes, want 28", len(probes))
	}

	seenIDs := map[string]bool{}
	seenCatalog := map[int]bool{}
	for _, p := range probes {
		if p.ID == "" || p.Run == nil {
			t.Errorf("probe %+v is incomplete", p)
		}
		if seenIDs[p.ID] {
			t.Errorf("duplicate probe ID %q", p.ID)
		}
		seenIDs[p.ID] = true
		seenCatalog[p.CatalogID] = true
	}

	for id := 1; id <= 28; id++ {
		if !seenCatalog[id] {
			t.Errorf("no probe covers catalog item %d", id)
		}
	}
}

func TestOptionsWithDefaults(t *testing.T) {
	opts := Options{}.withDefaults()

	if opts.HTTPTimeout <= 0 || opts.DialTimeout <= 0 || opts.PortTimeout <= 0 {
		t.Error("expected positive default timeouts")
	}
	if opts.PortWorkers <= 0 {
		t.Error("expected positive default port workers")
	}
	if opts.UserAgent == "" {
		t.Error("expected a default User-Agent")
	}

	custom := Options{PortWorkers: 3}.withDefaults()
	if custom.PortWorkers != 3 {
		t.Errorf("withDefaults overwrote explicit PortWorkers: got %d", custom.PortWorkers)
	}
}

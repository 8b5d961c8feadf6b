// Package probe implements the network checks behind each compliance
// parameter in the catalog.
//
// Architecture overview:
//
//   - Every check is a Probe: a declared identifier, the catalog ID its
//     verdict maps to, and a Func performing exactly one bounded network
//     operation. Funcs never panic and never return an error; connection
//     failures, timeouts and parse problems are folded into the Result.
//   - Probes share no mutable state. Each invocation opens its own
//     connections using the timeouts in Options and releases them before
//     returning.
//   - The Registry function in registry.go is the static table the scanner
//     iterates; there is no dynamic discovery of check modules.
package probe

import (
	"fmt"
	"time"

	"github.com/datnt-sec/webcomply/internal/shared/constants"
)

// Severity classifies how serious a non-compliant (or degraded) verdict is.
// The numeric order is total and drives the worst-severity-wins merge when
// several probe results land on the same catalog parameter.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityLow
	SeverityMedium
	SeverityWarning
	SeverityHigh
	SeverityCritical
)

var severityNames = map[Severity]string{
	SeverityInfo:     "info",
	SeverityLow:      "low",
	SeverityMedium:   "medium",
	SeverityWarning:  "warning",
	SeverityHigh:     "high",
	SeverityCritical: "critical",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// MarshalJSON renders the severity as its lowercase name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON parses a lowercase severity name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	name := string(data)
	if len(name) >= 2 && name[0] == '"' && name[len(name)-1] == '"' {
		name = name[1 : len(name)-1]
	}
	parsed, err := ParseSeverity(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity converts a severity name to its enum value.
func ParseSeverity(name string) (Severity, error) {
	for sev, n := range severityNames {
		if n == name {
			return sev, nil
		}
	}
	return SeverityInfo, fmt.Errorf("unknown severity %q", name)
}

// Result is the normalized outcome of one probe invocation. A probe produces
// exactly one Result and never mutates it after returning.
type Result struct {
	ProbeID   string         `json:"probe_id"`
	CatalogID int            `json:"catalog_id"`
	Compliant bool           `json:"compliant"`
	Severity  Severity       `json:"severity"`
	Remark    string         `json:"remark"`
	Evidence  map[string]any `json:"evidence,omitempty"`
}

// Options carries the runtime tuning shared by all probes. Zero values fall
// back to the defaults below.
type Options struct {
	HTTPTimeout time.Duration // per HTTP request
	DialTimeout time.Duration // raw TCP/TLS connections
	PortTimeout time.Duration // single port connect attempt
	Ports       []int         // candidate set for the port scan
	PortWorkers int           // concurrent port connect attempts
	UserAgent   string
}

const (
	defaultHTTPTimeout = 10 * time.Second
	defaultDialTimeout = 5 * time.Second
	defaultPortTimeout = 2 * time.Second
	defaultPortWorkers = 10
	defaultUserAgent   = "webcomply/1.0 (compliance scanner)"
)

// withDefaults fills unset fields so probe code can use Options directly.
func (o Options) withDefaults() Options {
	if o.HTTPTimeout <= 0 {
		o.HTTPTimeout = defaultHTTPTimeout
	}
	if o.DialTimeout <= 0 {
		o.DialTimeout = defaultDialTimeout
	}
	if o.PortTimeout <= 0 {
		o.PortTimeout = defaultPortTimeout
	}
	if o.PortWorkers <= 0 {
		o.PortWorkers = defaultPortWorkers
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
	return o
}

// failure builds the non-compliant Result used when a probe cannot assess
// the target (unreachable host, handshake refused, timeout).
func failure(id string, catalogID int, remark string, err error) Result {
	res := Result{
		ProbeID:   id,
		CatalogID: catalogID,
		Compliant: false,
		Severity:  SeverityHigh,
		Remark:    remark,
	}
	if err != nil {
		res.Evidence = map[string]any{"error": clip(err.Error())}
	}
	return res
}

// compliant builds a passing Result with info severity.
func compliant(id string, catalogID int, remark string) Result {
	return Result{
		ProbeID:   id,
		CatalogID: catalogID,
		Compliant: true,
		Severity:  SeverityInfo,
		Remark:    remark,
	}
}

// clip truncates evidence strings so stored results stay small.
func clip(s string) string {
	if len(s) > constants.EvidenceCaptureLimit {
		return s[:constants.EvidenceCaptureLimit]
	}
	return s
}

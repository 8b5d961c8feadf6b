package scan

import (
	"fmt"
	"time"

	"github.com/datnt-sec/webcomply/internal/compliance"
	"github.com/datnt-sec/webcomply/internal/shared/errors"
)

// Scan represents one compliance scan of a target host. It is the
// aggregate root owning the findings and the compliance matrix produced
// by the probe run.
type Scan struct {
	id          string
	target      string
	status      Status
	createdAt   time.Time
	startedAt   time.Time
	completedAt time.Time
	findings    []*Finding
	matrix      compliance.Matrix
	summary     string
	failReason  string
}

// Status represents the lifecycle state of a scan.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// NewScan creates a pending scan for a target.
func NewScan(target string) (*Scan, error) {
	if target == "" {
		return nil, errors.ErrEmptyTarget
	}

	return &Scan{
		id:        generateScanID(),
		target:    target,
		status:    StatusPending,
		createdAt: time.Now(),
		findings:  make([]*Finding, 0),
	}, nil
}

// Reconstruct creates a scan from persisted data.
func Reconstruct(id, target string, status Status, createdAt, startedAt, completedAt time.Time,
	findings []*Finding, matrix compliance.Matrix, summary, failReason string) *Scan {
	return &Scan{
		id:          id,
		target:      target,
		status:      status,
		createdAt:   createdAt,
		startedAt:   startedAt,
		completedAt: completedAt,
		findings:    findings,
		matrix:      matrix,
		summary:     summary,
		failReason:  failReason,
	}
}

// Business methods

// Start marks the scan as running.
func (s *Scan) Start() error {
	if s.status != StatusPending {
		return errors.ErrScanAlreadyStarted
	}
	s.status = StatusRunning
	s.startedAt = time.Now()
	return nil
}

// Complete records the scan outcome and marks it completed.
func (s *Scan) Complete(matrix compliance.Matrix, findings []*Finding, summary string) error {
	if s.status != StatusRunning {
		return errors.ErrScanNotStarted
	}
	s.status = StatusCompleted
	s.completedAt = time.Now()
	s.matrix = matrix
	s.findings = findings
	s.summary = summary
	return nil
}

// Fail marks the scan as failed with a reason.
func (s *Scan) Fail(reason string) error {
	if s.status != StatusRunning {
		return errors.ErrScanNotStarted
	}
	s.status = StatusFailed
	s.completedAt = time.Now()
	s.failReason = reason
	return nil
}

// IsTerminal reports whether the scan reached a final state.
func (s *Scan) IsTerminal() bool {
	return s.status == StatusCompleted || s.status == StatusFailed
}

// Getters

func (s *Scan) ID() string             { return s.id }
func (s *Scan) Target() string         { return s.target }
func (s *Scan) Status() Status         { return s.status }
func (s *Scan) CreatedAt() time.Time   { return s.createdAt }
func (s *Scan) StartedAt() time.Time   { return s.startedAt }
func (s *Scan) CompletedAt() time.Time { return s.completedAt }
func (s *Scan) Summary() string        { return s.summary }
func (s *Scan) FailReason() string     { return s.failReason }

// Matrix returns the compliance matrix, nil until the scan completes.
func (s *Scan) Matrix() compliance.Matrix { return s.matrix }

// Findings returns the scan findings.
func (s *Scan) Findings() []*Finding { return s.findings }

// Duration returns how long the scan ran, zero before completion.
func (s *Scan) Duration() time.Duration {
	if s.completedAt.IsZero() || s.startedAt.IsZero() {
		return 0
	}
	return s.completedAt.Sub(s.startedAt)
}

func generateScanID() string {
	now := time.Now()
	return fmt.Sprintf("scan-%s-%06d", now.Format("20060102150405"), now.Nanosecond()/1000)
}

// Package compliance folds probe results into the fixed 28-item
// compliance matrix reported for every scan.
package compliance

import (
	"sort"

	"github.com/datnt-sec/webcomply/internal/catalog"
	"github.com/datnt-sec/webcomply/internal/probe"
)

// Status is the Y/N verdict for one catalog item.
type Status string

const (
	StatusCompliant    Status = "Y"
	StatusNonCompliant Status = "N"
)

// Entry is the verdict for a single catalog item.
type Entry struct {
	Status   Status         `json:"status"`
	Remark   string         `json:"remark"`
	Severity probe.Severity `json:"severity"`
}

// Matrix holds one Entry per catalog item, keyed by catalog ID. A matrix
// always carries all 28 entries; items no probe reported on stay at their
// compliant default.
type Matrix map[int]Entry

// NewMatrix returns a matrix with every catalog item at its compliant
// default.
func NewMatrix() Matrix {
	m := make(Matrix, catalog.MaxID)
	for id := catalog.MinID; id <= catalog.MaxID; id++ {
		m[id] = Entry{Status: StatusCompliant, Remark: "Compliant.", Severity: probe.SeverityInfo}
	}
	return m
}

// IDs returns the catalog IDs of the matrix in ascending order.
func (m Matrix) IDs() []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// NonCompliant returns the IDs of all non-compliant entries in ascending
// order.
func (m Matrix) NonCompliant() []int {
	var ids []int
	for id, e := range m {
		if e.Status == StatusNonCompliant {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// WorstSeverity returns the highest severity among non-compliant entries,
// or SeverityInfo when everything is compliant.
func (m Matrix) WorstSeverity() probe.Severity {
	worst := probe.SeverityInfo
	for _, e := range m {
		if e.Status == StatusNonCompliant && e.Severity > worst {
			worst = e.Severity
		}
	}
	return worst
}

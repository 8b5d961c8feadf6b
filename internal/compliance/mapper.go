package compliance

import (
	"sort"

	"go.uber.org/zap"

	"github.com/datnt-sec/webcomply/internal/catalog"
	"github.com/datnt-sec/webcomply/internal/probe"
)

// Mapper turns a batch of probe results into a Matrix.
type Mapper struct {
	logger *zap.SugaredLogger
}

func NewMapper(logger *zap.SugaredLogger) *Mapper {
	return &Mapper{logger: logger}
}

// Map folds results into a fresh matrix. Every catalog item starts at the
// compliant default; the first result for an item replaces that default, so
// compliant-with-warning verdicts keep their severity and remark. A
// non-compliant result always wins over a compliant one, and within the
// same status the highest severity wins. Results are folded in probe-ID
// order so the outcome does not depend on scheduling.
func (m *Mapper) Map(results []probe.Result) Matrix {
	matrix := NewMatrix()
	touched := make(map[int]bool)

	sorted := make([]probe.Result, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProbeID < sorted[j].ProbeID })

	for _, res := range sorted {
		if !catalog.Contains(res.CatalogID) {
			if m.logger != nil {
				m.logger.Warnw("probe result references unknown catalog item",
					"probe_id", res.ProbeID, "catalog_id", res.CatalogID)
			}
			continue
		}

		status := StatusCompliant
		if !res.Compliant {
			status = StatusNonCompliant
		}

		if !touched[res.CatalogID] {
			matrix[res.CatalogID] = Entry{Status: status, Remark: res.Remark, Severity: res.Severity}
			touched[res.CatalogID] = true
			continue
		}

		entry := matrix[res.CatalogID]
		switch {
		case entry.Status == StatusNonCompliant && res.Compliant:
			// an earlier failure already settled the item
		case entry.Status == StatusCompliant && !res.Compliant:
			entry = Entry{Status: StatusNonCompliant, Remark: res.Remark, Severity: res.Severity}
		case res.Severity > entry.Severity:
			entry.Severity = res.Severity
			entry.Remark = res.Remark
		case res.Severity == entry.Severity && res.Remark != entry.Remark:
			entry.Remark = entry.Remark + " " + res.Remark
		}
		matrix[res.CatalogID] = entry
	}

	return matrix
}

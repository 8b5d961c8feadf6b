package scan

import (
	"github.com/datnt-sec/webcomply/internal/probe"
)

// Finding is one non-compliant observation produced by a scan.
type Finding struct {
	CatalogID      int            `json:"catalog_id"`
	CheckType      string         `json:"check_type"`
	Name           string         `json:"name"`
	Severity       probe.Severity `json:"severity"`
	Description    string         `json:"description"`
	Recommendation string         `json:"recommendation"`
	RawData        map[string]any `json:"raw_data,omitempty"`
}

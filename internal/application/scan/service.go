package scan

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/datnt-sec/webcomply/internal/catalog"
	"github.com/datnt-sec/webcomply/internal/compliance"
	scandomain "github.com/datnt-sec/webcomply/internal/domain/scan"
	"github.com/datnt-sec/webcomply/internal/probe"
	"github.com/datnt-sec/webcomply/internal/scanner"
)

// Service coordinates the scan lifecycle: create, run probes, fold the
// results into the matrix and persist the outcome.
type Service struct {
	repo         scandomain.Repository
	orchestrator *scanner.Orchestrator
	mapper       *compliance.Mapper
	logger       *zap.SugaredLogger
}

// NewService creates a new scan service.
func NewService(repo scandomain.Repository, orchestrator *scanner.Orchestrator, logger *zap.SugaredLogger) *Service {
	return &Service{
		repo:         repo,
		orchestrator: orchestrator,
		mapper:       compliance.NewMapper(logger),
		logger:       logger,
	}
}

// RunScan executes a full compliance scan against rawTarget. The scan
// record is persisted in its terminal state even when the run fails.
func (s *Service) RunScan(ctx context.Context, rawTarget string) (*scandomain.Scan, error) {
	tgt, err := probe.ParseTarget(rawTarget)
	if err != nil {
		return nil, fmt.Errorf("failed to parse target: %w", err)
	}

	sc, err := scandomain.NewScan(tgt.String())
	if err != nil {
		return nil, fmt.Errorf("failed to create scan: %w", err)
	}

	if err := sc.Start(); err != nil {
		return nil, fmt.Errorf("failed to start scan: %w", err)
	}

	if s.logger != nil {
		s.logger.Infow("scan started", "scan_id", sc.ID(), "target", sc.Target())
	}

	results := s.orchestrator.Run(ctx, tgt)

	if ctx.Err() != nil {
		if failErr := sc.Fail(ctx.Err().Error()); failErr != nil {
			return nil, failErr
		}
		if saveErr := s.repo.Save(ctx, sc); saveErr != nil && s.logger != nil {
			s.logger.Errorw("failed to persist failed scan", "scan_id", sc.ID(), "error", saveErr)
		}
		return sc, ctx.Err()
	}

	matrix := s.mapper.Map(results)
	findings := buildFindings(results)
	summary := fmt.Sprintf("Scan completed with %d findings.", len(findings))

	if err := sc.Complete(matrix, findings, summary); err != nil {
		return nil, fmt.Errorf("failed to complete scan: %w", err)
	}

	if err := s.repo.Save(ctx, sc); err != nil {
		return nil, fmt.Errorf("failed to save scan: %w", err)
	}

	if s.logger != nil {
		s.logger.Infow("scan completed",
			"scan_id", sc.ID(),
			"target", sc.Target(),
			"findings", len(findings),
			"worst_severity", matrix.WorstSeverity().String(),
			"duration", sc.Duration().String())
	}

	return sc, nil
}

// GetScan retrieves a scan by ID.
func (s *Service) GetScan(ctx context.Context, id string) (*scandomain.Scan, error) {
	sc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan: %w", err)
	}
	return sc, nil
}

// ListScans retrieves all persisted scans.
func (s *Service) ListScans(ctx context.Context) ([]*scandomain.Scan, error) {
	scans, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	return scans, nil
}

// DeleteScan removes a scan by ID.
func (s *Service) DeleteScan(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete scan: %w", err)
	}
	return nil
}

// buildFindings converts the non-compliant probe results into findings
// carrying catalog titles, remediation guidance and the raw evidence
// captured by the probe. Results referencing an unknown catalog item never
// reach the matrix, but they are still reported here.
func buildFindings(results []probe.Result) []*scandomain.Finding {
	sorted := make([]probe.Result, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].CatalogID != sorted[j].CatalogID {
			return sorted[i].CatalogID < sorted[j].CatalogID
		}
		return sorted[i].ProbeID < sorted[j].ProbeID
	})

	findings := make([]*scandomain.Finding, 0)
	for _, res := range sorted {
		if res.Compliant {
			continue
		}
		name := catalog.Title(res.CatalogID)
		if name == "" {
			name = res.ProbeID
		}
		findings = append(findings, &scandomain.Finding{
			CatalogID:      res.CatalogID,
			CheckType:      fmt.Sprintf("check-%d", res.CatalogID),
			Name:           name,
			Severity:       res.Severity,
			Description:    res.Remark,
			Recommendation: compliance.Recommendation(res.CatalogID),
			RawData:        res.Evidence,
		})
	}
	return findings
}

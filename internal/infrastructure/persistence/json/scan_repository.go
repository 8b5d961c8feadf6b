package json

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/datnt-sec/webcomply/internal/compliance"
	"github.com/datnt-sec/webcomply/internal/domain/scan"
	"github.com/datnt-sec/webcomply/internal/probe"
	"github.com/datnt-sec/webcomply/internal/shared/constants"
	sharedErrors "github.com/datnt-sec/webcomply/internal/shared/errors"
	"github.com/datnt-sec/webcomply/internal/shared/security"
)

// scanDTO is the data transfer object for JSON serialization
type scanDTO struct {
	ID          string              `json:"id"`
	Target      string              `json:"target"`
	Status      string              `json:"status"`
	CreatedAt   string              `json:"created_at"`
	StartedAt   string              `json:"started_at,omitempty"`
	CompletedAt string              `json:"completed_at,omitempty"`
	Findings    []findingDTO        `json:"findings"`
	Matrix      map[int]matrixEntry `json:"compliance_matrix,omitempty"`
	Summary     string              `json:"summary,omitempty"`
	FailReason  string              `json:"fail_reason,omitempty"`
}

type findingDTO struct {
	CatalogID      int            `json:"catalog_id"`
	CheckType      string         `json:"check_type"`
	Name           string         `json:"name"`
	Severity       string         `json:"severity"`
	Description    string         `json:"description"`
	Recommendation string         `json:"recommendation"`
	RawData        map[string]any `json:"raw_data,omitempty"`
}

type matrixEntry struct {
	Status   string `json:"status"`
	Remark   string `json:"remark"`
	Severity string `json:"severity"`
}

// ScanRepository implements scan.Repository using one JSON file per scan
type ScanRepository struct {
	scansDir string
	mu       sync.RWMutex
}

// NewScanRepository creates a new JSON-based scan repository
func NewScanRepository(scansDir string) (*ScanRepository, error) {
	if scansDir == "" {
		return nil, fmt.Errorf("scans directory cannot be empty")
	}

	if err := os.MkdirAll(scansDir, constants.DefaultDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create scans directory: %w", err)
	}

	return &ScanRepository{scansDir: scansDir}, nil
}

// Save persists a scan with its findings and matrix
func (r *ScanRepository) Save(ctx context.Context, s *scan.Scan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	filePath, err := security.ResolveWithin(r.scansDir, s.ID()+".json")
	if err != nil {
		return fmt.Errorf("invalid scan file path: %w", err)
	}

	data, err := json.MarshalIndent(toDTO(s), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scan: %w", err)
	}

	if err := os.WriteFile(filePath, data, constants.DefaultFilePerm); err != nil {
		return fmt.Errorf("failed to save scan: %w", err)
	}

	return nil
}

// FindByID retrieves a scan by its ID
func (r *ScanRepository) FindByID(ctx context.Context, id string) (*scan.Scan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	filePath, err := security.ResolveWithin(r.scansDir, id+".json")
	if err != nil {
		return nil, fmt.Errorf("invalid scan file path: %w", err)
	}

	s, err := r.loadFromFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, sharedErrors.ErrScanNotFound
		}
		return nil, err
	}
	return s, nil
}

// FindByTarget retrieves all scans of a target
func (r *ScanRepository) FindByTarget(ctx context.Context, target string) ([]*scan.Scan, error) {
	all, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	scans := make([]*scan.Scan, 0)
	for _, s := range all {
		if s.Target() == target {
			scans = append(scans, s)
		}
	}
	return scans, nil
}

// FindAll retrieves all scans
func (r *ScanRepository) FindAll(ctx context.Context) ([]*scan.Scan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries, err := os.ReadDir(r.scansDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scans directory: %w", err)
	}

	scans := make([]*scan.Scan, 0)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		s, err := r.loadFromFile(filepath.Join(r.scansDir, entry.Name()))
		if err != nil {
			continue
		}
		scans = append(scans, s)
	}

	return scans, nil
}

// Delete removes a scan by its ID
func (r *ScanRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	filePath, err := security.ResolveWithin(r.scansDir, id+".json")
	if err != nil {
		return fmt.Errorf("invalid scan file path: %w", err)
	}

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return sharedErrors.ErrScanNotFound
		}
		return fmt.Errorf("failed to delete scan: %w", err)
	}
	return nil
}

// Helper methods

func (r *ScanRepository) loadFromFile(filePath string) (*scan.Scan, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var dto scanDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("%w: %v", sharedErrors.ErrDeserializationFailed, err)
	}

	return fromDTO(dto)
}

func toDTO(s *scan.Scan) scanDTO {
	dto := scanDTO{
		ID:         s.ID(),
		Target:     s.Target(),
		Status:     string(s.Status()),
		CreatedAt:  s.CreatedAt().Format(time.RFC3339),
		Summary:    s.Summary(),
		FailReason: s.FailReason(),
		Findings:   make([]findingDTO, 0, len(s.Findings())),
	}
	if !s.StartedAt().IsZero() {
		dto.StartedAt = s.StartedAt().Format(time.RFC3339)
	}
	if !s.CompletedAt().IsZero() {
		dto.CompletedAt = s.CompletedAt().Format(time.RFC3339)
	}

	for _, f := range s.Findings() {
		dto.Findings = append(dto.Findings, findingDTO{
			CatalogID:      f.CatalogID,
			CheckType:      f.CheckType,
			Name:           f.Name,
			Severity:       f.Severity.String(),
			Description:    f.Description,
			Recommendation: f.Recommendation,
			RawData:        f.RawData,
		})
	}

	if m := s.Matrix(); m != nil {
		dto.Matrix = make(map[int]matrixEntry, len(m))
		for id, e := range m {
			dto.Matrix[id] = matrixEntry{
				Status:   string(e.Status),
				Remark:   e.Remark,
				Severity: e.Severity.String(),
			}
		}
	}

	return dto
}

func fromDTO(dto scanDTO) (*scan.Scan, error) {
	createdAt, err := time.Parse(time.RFC3339, dto.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid created_at: %v", sharedErrors.ErrInvalidData, err)
	}

	var startedAt, completedAt time.Time
	if dto.StartedAt != "" {
		if startedAt, err = time.Parse(time.RFC3339, dto.StartedAt); err != nil {
			return nil, fmt.Errorf("%w: invalid started_at: %v", sharedErrors.ErrInvalidData, err)
		}
	}
	if dto.CompletedAt != "" {
		if completedAt, err = time.Parse(time.RFC3339, dto.CompletedAt); err != nil {
			return nil, fmt.Errorf("%w: invalid completed_at: %v", sharedErrors.ErrInvalidData, err)
		}
	}

	findings := make([]*scan.Finding, 0, len(dto.Findings))
	for _, f := range dto.Findings {
		sev, err := probe.ParseSeverity(f.Severity)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", sharedErrors.ErrInvalidData, err)
		}
		findings = append(findings, &scan.Finding{
			CatalogID:      f.CatalogID,
			CheckType:      f.CheckType,
			Name:           f.Name,
			Severity:       sev,
			Description:    f.Description,
			Recommendation: f.Recommendation,
			RawData:        f.RawData,
		})
	}

	var matrix compliance.Matrix
	if len(dto.Matrix) > 0 {
		matrix = make(compliance.Matrix, len(dto.Matrix))
		for id, e := range dto.Matrix {
			sev, err := probe.ParseSeverity(e.Severity)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", sharedErrors.ErrInvalidData, err)
			}
			matrix[id] = compliance.Entry{
				Status:   compliance.Status(e.Status),
				Remark:   e.Remark,
				Severity: sev,
			}
		}
	}

	return scan.Reconstruct(dto.ID, dto.Target, scan.Status(dto.Status),
		createdAt, startedAt, completedAt, findings, matrix, dto.Summary, dto.FailReason), nil
}

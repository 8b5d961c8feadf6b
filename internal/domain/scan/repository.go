package scan

import "context"

// Repository defines the interface for scan persistence.
type Repository interface {
	// Save persists a scan with its findings and matrix.
	Save(ctx context.Context, s *Scan) error

	// FindByID retrieves a scan by its ID.
	FindByID(ctx context.Context, id string) (*Scan, error)

	// FindByTarget retrieves all scans of a target.
	FindByTarget(ctx context.Context, target string) ([]*Scan, error)

	// FindAll retrieves all scans.
	FindAll(ctx context.Context) ([]*Scan, error)

	// Delete removes a scan by its ID.
	Delete(ctx context.Context, id string) error
}

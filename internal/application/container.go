package application

import (
	"fmt"

	"go.uber.org/zap"

	scanapp "github.com/datnt-sec/webcomply/internal/application/scan"
	"github.com/datnt-sec/webcomply/internal/domain/scan"
	"github.com/datnt-sec/webcomply/internal/infrastructure/persistence/json"
	"github.com/datnt-sec/webcomply/internal/scanner"
)

// Container holds the application services and repositories
// This is a simple dependency injection container
type Container struct {
	// Repositories
	ScanRepo scan.Repository

	// Services
	ScanService *scanapp.Service
}

// NewContainer creates a new application service container
func NewContainer(scansDir string, orchestrator *scanner.Orchestrator, logger *zap.SugaredLogger) (*Container, error) {
	scanRepo, err := json.NewScanRepository(scansDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create scan repository: %w", err)
	}

	return &Container{
		ScanRepo:    scanRepo,
		ScanService: scanapp.NewService(scanRepo, orchestrator, logger),
	}, nil
}

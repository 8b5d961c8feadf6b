package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/datnt-sec/webcomply/internal/api"
	"github.com/datnt-sec/webcomply/internal/application"
	scanapp "github.com/datnt-sec/webcomply/internal/application/scan"
	"github.com/datnt-sec/webcomply/internal/catalog"
	"github.com/datnt-sec/webcomply/internal/compliance"
	"github.com/datnt-sec/webcomply/internal/probe"
	"github.com/datnt-sec/webcomply/internal/scanner"
)

var serveConfig = newScanRuntimeConfig()

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the compliance scanner as a REST API service",
	Long: `Starts an HTTP server exposing scans as asynchronous jobs.
POST /api/v1/scans starts a scan job; stored results, job status and
the parameter catalog are served read-only.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		serveConfig.applyViper(cmd.Flags())

		addr, _ := cmd.Flags().GetString("addr")
		authToken, _ := cmd.Flags().GetString("auth-token")
		shutdownTimeout, _ := cmd.Flags().GetDuration("shutdown-timeout")
		corsOrigins, _ := cmd.Flags().GetStringSlice("cors-origins")
		rateLimit, _ := cmd.Flags().GetInt("rate-limit")
		rateBurst, _ := cmd.Flags().GetInt("rate-burst")

		orchestrator := &scanner.Orchestrator{
			Concurrency:  serveConfig.Concurrency,
			RateLimit:    serveConfig.RateLimit,
			ProbeTimeout: serveConfig.probeTimeout(),
			ScanTimeout:  serveConfig.scanTimeout(),
			Logger:       logger,
			Options: probe.Options{
				HTTPTimeout: time.Duration(serveConfig.HTTPTimeoutSecs) * time.Second,
				DialTimeout: time.Duration(serveConfig.DialTimeoutSecs) * time.Second,
				PortTimeout: time.Duration(serveConfig.PortTimeoutSecs) * time.Second,
				Ports:       serveConfig.Ports,
				PortWorkers: serveConfig.PortWorkers,
				UserAgent:   serveConfig.UserAgent,
			},
		}

		container, err := application.NewContainer(scansDir, orchestrator, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}

		server := api.NewServer(api.Config{
			Scans: &scanAPIService{svc: container.ScanService},
			Jobs: &jobAPIService{
				manager:     api.NewJobManager(),
				svc:         container.ScanService,
				scanTimeout: serveConfig.scanTimeout(),
			},
			Health:      &healthAPIService{scansDir: scansDir},
			Catalog:     buildCatalogEntries(),
			AuthToken:   authToken,
			Logger:      logger.Desugar(),
			CORSOrigins: corsOrigins,
			RateLimit:   rateLimit,
			RateBurst:   rateBurst,
		})

		httpServer := &http.Server{
			Addr:         addr,
			Handler:      server,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			fmt.Printf("%s API server listening on %s (scans dir: %s)\n", colorInfo("→"), addr, scansDir)
			fmt.Printf("%s Press Ctrl+C to gracefully shutdown\n", colorInfo("→"))
			serverErrors <- httpServer.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
		case sig := <-shutdown:
			fmt.Printf("\n%s Received signal %v, initiating graceful shutdown...\n", colorInfo("→"), sig)

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := httpServer.Shutdown(ctx); err != nil {
				if closeErr := httpServer.Close(); closeErr != nil {
					return fmt.Errorf("failed to gracefully shutdown server: %w (close error: %v)", err, closeErr)
				}
				return fmt.Errorf("failed to gracefully shutdown server: %w", err)
			}

			fmt.Printf("%s Server shutdown complete\n", colorSuccess("✓"))
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "127.0.0.1:8080", "Address for the API server")
	serveCmd.Flags().String("auth-token", "", "Optional shared secret for API requests")
	serveCmd.Flags().Duration("shutdown-timeout", 30*time.Second, "Graceful shutdown timeout")
	serveCmd.Flags().StringSlice("cors-origins", []string{}, "Allowed CORS origins (empty = allow all)")
	serveCmd.Flags().Int("rate-limit", 10, "Rate limit per IP (requests/second, 0 = disabled)")
	serveCmd.Flags().Int("rate-burst", 20, "Rate limit burst size")
}

func buildCatalogEntries() []api.CatalogEntry {
	items := catalog.Items()
	entries := make([]api.CatalogEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, api.CatalogEntry{
			ID:             item.ID,
			Title:          item.Title,
			Recommendation: compliance.Recommendation(item.ID),
		})
	}
	return entries
}

type scanAPIService struct {
	svc *scanapp.Service
}

func (s *scanAPIService) ListScans(ctx context.Context) ([]api.ScanSummary, error) {
	scans, err := s.svc.ListScans(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]api.ScanSummary, 0, len(scans))
	for _, sc := range scans {
		summary := api.ScanSummary{
			ID:        sc.ID(),
			Target:    sc.Target(),
			Status:    string(sc.Status()),
			Summary:   sc.Summary(),
			CreatedAt: sc.CreatedAt(),
		}
		if completed := sc.CompletedAt(); !completed.IsZero() {
			c := completed
			summary.CompletedAt = &c
		}
		resp = append(resp, summary)
	}
	return resp, nil
}

func (s *scanAPIService) GetScan(ctx context.Context, id string) ([]byte, error) {
	sc, err := s.svc.GetScan(ctx, id)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(scanJSONView(sc), "", "  ")
}

func (s *scanAPIService) DeleteScan(ctx context.Context, id string) error {
	return s.svc.DeleteScan(ctx, id)
}

type jobAPIService struct {
	manager     *api.JobManager
	svc         *scanapp.Service
	scanTimeout time.Duration
}

func (s *jobAPIService) StartJob(ctx context.Context, req api.JobRequest) (*api.Job, error) {
	if req.Target == "" {
		return nil, fmt.Errorf("target required")
	}
	if _, err := probe.ParseTarget(req.Target); err != nil {
		return nil, fmt.Errorf("invalid target: %w", err)
	}
	job := s.manager.CreateJob(req.Target)
	go s.execute(job.ID, req.Target)
	return job, nil
}

// execute runs the scan detached from the request context: the job
// outlives the POST that started it.
func (s *jobAPIService) execute(jobID, target string) {
	now := time.Now()
	s.manager.UpdateJob(jobID, func(j *api.Job) {
		j.Status = "running"
		j.StartedAt = &now
	})

	timeout := s.scanTimeout + 30*time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	sc, err := s.svc.RunScan(ctx, target)
	finished := time.Now()
	if err != nil {
		s.manager.UpdateJob(jobID, func(j *api.Job) {
			j.Status = "error"
			j.Error = err.Error()
			j.FinishedAt = &finished
		})
		return
	}
	s.manager.UpdateJob(jobID, func(j *api.Job) {
		j.Status = "done"
		j.ScanID = sc.ID()
		j.FinishedAt = &finished
	})
}

func (s *jobAPIService) GetJob(ctx context.Context, id string) (*api.Job, error) {
	job := s.manager.GetJob(id)
	if job == nil {
		return nil, fmt.Errorf("job not found")
	}
	return job, nil
}

func (s *jobAPIService) ListJobs(ctx context.Context, limit int) ([]api.Job, error) {
	return s.manager.ListJobs(limit), nil
}

func (s *jobAPIService) Subscribe() (chan api.Job, func()) {
	return s.manager.Subscribe()
}

type healthAPIService struct {
	scansDir string
}

func (s *healthAPIService) Check(ctx context.Context) error {
	if s.scansDir == "" {
		return fmt.Errorf("scans directory not configured")
	}
	return nil
}

func (s *healthAPIService) Ready(ctx context.Context) error {
	if _, err := os.Stat(s.scansDir); err != nil {
		return fmt.Errorf("scans directory not available: %w", err)
	}
	return nil
}

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/datnt-sec/webcomply/internal/application"
	"github.com/datnt-sec/webcomply/internal/catalog"
	"github.com/datnt-sec/webcomply/internal/domain/scan"
	"github.com/datnt-sec/webcomply/internal/probe"
	"github.com/datnt-sec/webcomply/internal/scanner"
)

var scanConfig = newScanRuntimeConfig()
var scanJSONOutput bool
var scanProgress bool

var scanCmd = &cobra.Command{
	Use:   "scan <target>",
	Short: "Run the full compliance scan against a target host",
	Long: `Runs every registered probe against the target and reports the
28-parameter compliance matrix. The target may be a bare hostname
(https is assumed) or a full http/https URL.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scanConfig.applyViper(cmd.Flags())

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		orchestrator := &scanner.Orchestrator{
			Concurrency:  scanConfig.Concurrency,
			RateLimit:    scanConfig.RateLimit,
			ProbeTimeout: scanConfig.probeTimeout(),
			ScanTimeout:  scanConfig.scanTimeout(),
			Logger:       logger,
			Options: probe.Options{
				HTTPTimeout: time.Duration(scanConfig.HTTPTimeoutSecs) * time.Second,
				DialTimeout: time.Duration(scanConfig.DialTimeoutSecs) * time.Second,
				PortTimeout: time.Duration(scanConfig.PortTimeoutSecs) * time.Second,
				Ports:       scanConfig.Ports,
				PortWorkers: scanConfig.PortWorkers,
				UserAgent:   scanConfig.UserAgent,
			},
		}

		var printer *progressPrinter
		if scanProgress && !scanJSONOutput {
			printer = newProgressPrinter(len(probe.Registry()), args[0])
			orchestrator.OnResult = func(res probe.Result, elapsed time.Duration) {
				printer.Increment(res.Compliant, elapsed.Seconds())
			}
			printer.Start()
		}

		container, err := application.NewContainer(scansDir, orchestrator, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}

		result, err := container.ScanService.RunScan(ctx, args[0])
		if printer != nil {
			printer.Stop()
		}
		if err != nil {
			return err
		}

		if scanJSONOutput {
			return printScanJSON(result)
		}

		printScanReport(result)
		return nil
	},
}

func init() {
	flags := scanCmd.Flags()
	flags.IntVar(&scanConfig.Concurrency, "concurrency", scanConfig.Concurrency, "maximum probes in flight")
	flags.IntVar(&scanConfig.RateLimit, "rate-limit", scanConfig.RateLimit, "probe starts per second")
	flags.IntVar(&scanConfig.ProbeTimeoutSecs, "probe-timeout", scanConfig.ProbeTimeoutSecs, "per-probe timeout in seconds")
	flags.IntVar(&scanConfig.ScanTimeoutSecs, "scan-timeout", scanConfig.ScanTimeoutSecs, "whole-scan timeout in seconds")
	flags.IntVar(&scanConfig.HTTPTimeoutSecs, "http-timeout", scanConfig.HTTPTimeoutSecs, "HTTP request timeout in seconds")
	flags.IntVar(&scanConfig.DialTimeoutSecs, "dial-timeout", scanConfig.DialTimeoutSecs, "TCP/TLS dial timeout in seconds")
	flags.IntVar(&scanConfig.PortTimeoutSecs, "port-timeout", scanConfig.PortTimeoutSecs, "port connect timeout in seconds")
	flags.IntVar(&scanConfig.PortWorkers, "port-workers", scanConfig.PortWorkers, "concurrent port connect attempts")
	flags.IntSliceVar(&scanConfig.Ports, "ports", nil, "ports to scan (default: built-in list)")
	flags.StringVar(&scanConfig.UserAgent, "user-agent", "", "User-Agent header for HTTP probes")
	flags.BoolVar(&scanJSONOutput, "json", false, "emit the scan result as JSON")
	flags.BoolVar(&scanProgress, "progress", true, "show live probe progress")
}

func printScanJSON(s *scan.Scan) error {
	out := scanJSONView(s)
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scan: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func printScanReport(s *scan.Scan) {
	fmt.Printf("%s %s\n", colorInfo("Target:"), s.Target())
	fmt.Printf("%s %s\n", colorInfo("Scan ID:"), s.ID())
	fmt.Printf("%s %s (%s)\n\n", colorInfo("Status:"), string(s.Status()), s.Duration().Round(time.Millisecond))

	matrix := s.Matrix()
	if matrix == nil {
		if s.FailReason() != "" {
			fmt.Printf("%s %s\n", colorError("Failed:"), s.FailReason())
		}
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPARAMETER\tSTATUS\tSEVERITY\tREMARK")
	for _, id := range matrix.IDs() {
		entry := matrix[id]
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			id,
			catalog.Title(id),
			formatStatusWithColor(entry.Status),
			formatSeverityWithColor(entry.Severity),
			entry.Remark)
	}
	w.Flush()

	findings := s.Findings()
	if len(findings) == 0 {
		fmt.Printf("\n%s %s\n", colorSuccess("✓"), "All parameters compliant.")
		return
	}

	fmt.Printf("\n%s\n", colorWarn(s.Summary()))
	for _, f := range findings {
		fmt.Printf("\n[%d] %s (%s)\n", f.CatalogID, f.Name, formatSeverityWithColor(f.Severity))
		fmt.Printf("    %s\n", f.Description)
		if f.Recommendation != "" {
			fmt.Printf("    Recommendation: %s\n", f.Recommendation)
		}
	}
}

// scanJSONView builds the JSON shape shared by scan and results show.
func scanJSONView(s *scan.Scan) map[string]any {
	matrixView := map[int]map[string]string{}
	for id, e := range s.Matrix() {
		matrixView[id] = map[string]string{
			"parameter": catalog.Title(id),
			"status":    string(e.Status),
			"severity":  e.Severity.String(),
			"remark":    e.Remark,
		}
	}

	return map[string]any{
		"id":                s.ID(),
		"target":            s.Target(),
		"status":            string(s.Status()),
		"summary":           s.Summary(),
		"duration_ms":       s.Duration().Milliseconds(),
		"compliance_matrix": matrixView,
		"findings":          s.Findings(),
	}
}

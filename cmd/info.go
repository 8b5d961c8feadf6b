package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/datnt-sec/webcomply/internal/catalog"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show configuration and data directory paths",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		scansExists := "✗ (not created yet)"
		if _, err := os.Stat(scansDir); err == nil {
			scansExists = "✓ (exists)"
		}

		configPath := cfgFile
		if configPath == "" {
			home, err := os.UserHomeDir()
			if err == nil {
				configPath = filepath.Join(home, ".webcomply.yaml")
			} else {
				configPath = "~/.webcomply.yaml"
			}
		}
		configExists := "✗ (using defaults)"
		if _, err := os.Stat(configPath); err == nil {
			configExists = "✓ (exists)"
		}

		fmt.Fprintln(out, "webcomply System Information")
		fmt.Fprintln(out, "============================")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Platform:           %s/%s\n", runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(out, "Catalog Parameters: %d\n", len(catalog.Items()))
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Data Locations:")
		fmt.Fprintf(out, "  Scans Directory:  %s %s\n", scansDir, scansExists)
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Configuration File: %s %s\n", configPath, configExists)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "To override the scans directory, create ~/.webcomply.yaml with:")
		fmt.Fprintln(out, "  scans_dir: /custom/path/to/scans")

		return nil
	},
}

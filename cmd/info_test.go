package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestInfoCommandOutput(t *testing.T) {
	originalScansDir := scansDir
	t.Cleanup(func() { scansDir = originalScansDir })
	scansDir = t.TempDir()

	cmd := &cobra.Command{}
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := infoCmd.RunE(cmd, nil); err != nil {
		t.Fatalf("info command failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "webcomply System Information") {
		t.Fatalf("expected header in output, got %q", output)
	}
	if !strings.Contains(output, scansDir) {
		t.Fatalf("expected scans directory path in output, got %q", output)
	}
	if !strings.Contains(output, "✓ (exists)") {
		t.Fatalf("expected existing scans directory marker, got %q", output)
	}
	if !strings.Contains(output, "Catalog Parameters: 28") {
		t.Fatalf("expected catalog size in output, got %q", output)
	}
}

func TestInfoCommandMissingScansDir(t *testing.T) {
	originalScansDir := scansDir
	t.Cleanup(func() { scansDir = originalScansDir })
	scansDir = "/nonexistent/webcomply-scans"

	cmd := &cobra.Command{}
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := infoCmd.RunE(cmd, nil); err != nil {
		t.Fatalf("info command failed: %v", err)
	}

	if !strings.Contains(buf.String(), "✗ (not created yet)") {
		t.Fatalf("expected missing directory marker, got %q", buf.String())
	}
}

package cmd

import (
	"testing"

	"github.com/fatih/color"

	"github.com/datnt-sec/webcomply/internal/compliance"
	"github.com/datnt-sec/webcomply/internal/probe"
)

func TestFormatStatusWithColor(t *testing.T) {
	original := color.NoColor
	color.NoColor = true
	t.Cleanup(func() {
		color.NoColor = original
	})

	if got := formatStatusWithColor(compliance.StatusCompliant); got != "Y" {
		t.Fatalf("formatStatusWithColor(compliant) = %q, want Y", got)
	}
	if got := formatStatusWithColor(compliance.StatusNonCompliant); got != "N" {
		t.Fatalf("formatStatusWithColor(non-compliant) = %q, want N", got)
	}
}

func TestFormatSeverityWithColor(t *testing.T) {
	original := color.NoColor
	color.NoColor = true
	t.Cleanup(func() {
		color.NoColor = original
	})

	tests := []struct {
		name string
		sev  probe.Severity
		want string
	}{
		{name: "critical", sev: probe.SeverityCritical, want: "critical"},
		{name: "high", sev: probe.SeverityHigh, want: "high"},
		{name: "warning", sev: probe.SeverityWarning, want: "warning"},
		{name: "low", sev: probe.SeverityLow, want: "low"},
		{name: "info", sev: probe.SeverityInfo, want: "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatSeverityWithColor(tt.sev); got != tt.want {
				t.Fatalf("formatSeverityWithColor(%v) = %q, want %q", tt.sev, got, tt.want)
			}
		})
	}
}

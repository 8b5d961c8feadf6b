package cmd

import (
	"github.com/fatih/color"

	"github.com/datnt-sec/webcomply/internal/compliance"
	"github.com/datnt-sec/webcomply/internal/probe"
)

var (
	colorSuccess  = color.New(color.FgGreen).SprintFunc()
	colorInfo     = color.New(color.FgCyan).SprintFunc()
	colorWarn     = color.New(color.FgYellow).SprintFunc()
	colorError    = color.New(color.FgRed).SprintFunc()
	colorCritical = color.New(color.FgRed, color.Bold).SprintFunc()
)

func formatStatusWithColor(status compliance.Status) string {
	if status == compliance.StatusCompliant {
		return colorSuccess(string(status))
	}
	return colorError(string(status))
}

func formatSeverityWithColor(sev probe.Severity) string {
	name := sev.String()
	switch sev {
	case probe.SeverityCritical:
		return colorCritical(name)
	case probe.SeverityHigh:
		return colorError(name)
	case probe.SeverityWarning, probe.SeverityMedium:
		return colorWarn(name)
	case probe.SeverityLow:
		return colorInfo(name)
	default:
		return name
	}
}

// Package ui holds terminal output helpers shared by the CLI commands.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"fluidnet/internal/domain"
)

var (
	Brand  = color.New(color.FgHiCyan, color.Bold)
	Subtle = color.New(color.FgHiBlack)
	Warn   = color.New(color.FgYellow)
	Info   = color.New(color.FgCyan)
	Good   = color.New(color.FgGreen)
	Bad    = color.New(color.FgRed)
)

// ForSeverity returns the colour used for a notification severity
func ForSeverity(s domain.Severity) *color.Color {
	switch s {
	case domain.SeveritySuccess:
		return Good
	case domain.SeverityWarning:
		return Warn
	default:
		return Bad
	}
}

// Icon returns the status icon for a severity
func Icon(s domain.Severity) string {
	switch s {
	case domain.SeveritySuccess:
		return Good.Sprint("\u2713")
	case domain.SeverityWarning:
		return Warn.Sprint("\u26A0")
	default:
		return Bad.Sprint("\u2717")
	}
}

// Notification prints a notification, one line per message line
func Notification(w io.Writer, n domain.Notification) {
	c := ForSeverity(n.Severity)
	for i, line := range strings.Split(n.Message, "\n") {
		if i == 0 {
			fmt.Fprintf(w, "%s %s\n", Icon(n.Severity), c.Sprint(line))
			continue
		}
		fmt.Fprintf(w, "  %s\n", line)
	}
}

// Table prints a simple aligned table.
func Table(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	headerLine := "  "
	sepLine := "  "
	for i, h := range headers {
		headerLine += fmt.Sprintf("%-*s  ", widths[i], h)
		sepLine += strings.Repeat("\u2500", widths[i]) + "  "
	}
	Subtle.Fprintln(w, strings.TrimRight(headerLine, " "))
	Subtle.Fprintln(w, strings.TrimRight(sepLine, " "))

	for _, row := range rows {
		line := "  "
		for i, cell := range row {
			if i < len(widths) {
				line += fmt.Sprintf("%-*s  ", widths[i], cell)
			}
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

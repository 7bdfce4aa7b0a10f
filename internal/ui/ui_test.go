package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"fluidnet/internal/domain"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func TestNotification(t *testing.T) {
	var b bytes.Buffer
	Notification(&b, domain.Notification{
		Message:  "Calculation Failed!\nsingular matrix",
		Severity: domain.SeverityError,
	})

	want := "\u2717 Calculation Failed!\n  singular matrix\n"
	if b.String() != want {
		t.Errorf("expected %q, got %q", want, b.String())
	}
}

func TestForSeverity(t *testing.T) {
	tests := []struct {
		severity domain.Severity
		want     *color.Color
	}{
		{domain.SeveritySuccess, Good},
		{domain.SeverityWarning, Warn},
		{domain.SeverityError, Bad},
		{domain.Severity("other"), Bad},
	}
	for _, tt := range tests {
		if got := ForSeverity(tt.severity); got != tt.want {
			t.Errorf("ForSeverity(%s) returned the wrong colour", tt.severity)
		}
	}
}

func TestTable(t *testing.T) {
	t.Run("rows are aligned under headers", func(t *testing.T) {
		var b bytes.Buffer
		Table(&b, []string{"TYPE", "INLETS"}, [][]string{{"Pump", "1"}, {"Splitter", "1"}})
		lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
		if len(lines) != 4 {
			t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), b.String())
		}
		if lines[0] != "  TYPE      INLETS" {
			t.Errorf("unexpected header %q", lines[0])
		}
		if lines[3] != "  Splitter  1" {
			t.Errorf("unexpected row %q", lines[3])
		}
	})

	t.Run("empty table prints nothing", func(t *testing.T) {
		var b bytes.Buffer
		Table(&b, []string{"A"}, nil)
		if b.Len() != 0 {
			t.Errorf("expected no output, got %q", b.String())
		}
	})
}

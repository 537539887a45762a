package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sokinpui/coder.go/internal/fs"
	"github.com/sokinpui/coder.go/model"
)

var (
	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	InfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))
	FaintStyle   = lipgloss.NewStyle().Faint(true)
)

// Out is where the helpers print.
var Out io.Writer = os.Stderr

func Header(format string, a ...any) {
	fmt.Fprintln(Out, HeaderStyle.Render(fmt.Sprintf(format, a...)))
}

func Info(format string, a ...any) {
	fmt.Fprintln(Out, InfoStyle.Render(fmt.Sprintf(format, a...)))
}

func Success(format string, a ...any) {
	fmt.Fprintln(Out, SuccessStyle.Render(fmt.Sprintf(format, a...)))
}

func Warning(format string, a ...any) {
	fmt.Fprintln(Out, WarningStyle.Render(fmt.Sprintf(format, a...)))
}

func Error(format string, a ...any) {
	fmt.Fprintln(Out, ErrorStyle.Render(fmt.Sprintf(format, a...)))
}

// StatusStyle colors a batch status.
func StatusStyle(s model.Status) lipgloss.Style {
	switch s {
	case model.Complete:
		return SuccessStyle
	case model.Partial:
		return WarningStyle
	default:
		return ErrorStyle
	}
}

// FormatDiagnostic renders one diagnostic on a single line.
func FormatDiagnostic(d model.Diagnostic) string {
	if d.Path != "" {
		d.Path = fs.Relativize([]string{d.Path})[0]
	}
	if d.Severity == model.Error {
		return ErrorStyle.Render(d.String())
	}
	return WarningStyle.Render(d.String())
}

// RenderSummary formats a Summary for the terminal.
func RenderSummary(s model.Summary) string {
	var b strings.Builder
	line := func(str string) {
		b.WriteString(str)
		b.WriteString("\n")
	}

	if s.Message != "" {
		line(HeaderStyle.Render(s.Message))
	}

	if r := s.Result; r != nil {
		line(StatusStyle(r.Status).Render(fmt.Sprintf("Batch %s: %d modified, %d unchanged, %d skipped, %d write failed",
			r.Status, r.Modified, r.Unchanged, r.Skipped, r.WriteFailed)))
		for _, o := range r.Outcomes {
			path := fs.Relativize([]string{o.Path})[0]
			switch o.Kind {
			case model.Modified:
				line(SuccessStyle.Render("  modified  ") + path)
			case model.Unchanged:
				line(FaintStyle.Render("  unchanged ") + path)
			default:
				line(ErrorStyle.Render(fmt.Sprintf("  %-9s ", o.Kind)) + path + FaintStyle.Render(" "+o.Reason))
			}
		}
		if len(r.Diagnostics) > 0 {
			line(HeaderStyle.Render("Diagnostics:"))
			for _, d := range r.Diagnostics {
				line("  " + FormatDiagnostic(d))
			}
		}
	}

	if len(s.Written) > 0 {
		line(SuccessStyle.Render(fmt.Sprintf("Wrote %d file(s):", len(s.Written))))
		for _, p := range fs.Relativize(s.Written) {
			line("  - " + p)
		}
	}
	if len(s.Failed) > 0 {
		line(ErrorStyle.Render(fmt.Sprintf("Failed %d file(s):", len(s.Failed))))
		for _, p := range fs.Relativize(s.Failed) {
			line("  - " + p)
		}
	}
	if b.Len() == 0 {
		line(FaintStyle.Render("Nothing to do."))
	}
	return b.String()
}

// PrintSummary writes RenderSummary to Out.
func PrintSummary(s model.Summary) {
	fmt.Fprint(Out, RenderSummary(s))
}

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/marshallshelly/pebble-orders/pkg/etl"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#7C3AED")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	primaryStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
)

// Out is where every helper writes. Tests swap it for a buffer.
var Out io.Writer = os.Stdout

// Success prints a success message
func Success(format string, args ...any) {
	line(successStyle.Render("✓ "), format, args...)
}

// Warning prints a warning message
func Warning(format string, args ...any) {
	line(warningStyle.Render("⚠ "), format, args...)
}

// Error prints an error message
func Error(format string, args ...any) {
	line(errorStyle.Render("✗ "), format, args...)
}

// Section prints a section header
func Section(title string) {
	_, _ = fmt.Fprintln(Out)
	_, _ = fmt.Fprintln(Out, primaryStyle.Render(title))
	_, _ = fmt.Fprintln(Out, mutedStyle.Render(strings.Repeat("═", lipgloss.Width(title))))
	_, _ = fmt.Fprintln(Out)
}

func line(icon, format string, args ...any) {
	_, _ = fmt.Fprint(Out, icon)
	_, _ = fmt.Fprintf(Out, format+"\n", args...)
}

// StatusIcon returns a colored icon for a file result status
func StatusIcon(status string) string {
	switch status {
	case "loaded":
		return successStyle.Render("✓")
	case "failed":
		return errorStyle.Render("✗")
	default:
		return mutedStyle.Render("•")
	}
}

// JSON writes v as indented JSON.
func JSON(v any) error {
	enc := json.NewEncoder(Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Report prints one row per file followed by a summary line.
func Report(r *etl.Report) {
	if r == nil {
		return
	}
	if len(r.Files) == 0 {
		Warning("No data files found under %s", r.Root)
		return
	}

	w := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "FILE\tSTATUS\tRECORDS\tITEMS\tDURATION")
	_, _ = fmt.Fprintln(w, "----\t------\t-------\t-----\t--------")
	for _, f := range r.Files {
		status := "loaded"
		if !f.OK() {
			status = "failed"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s %s\t%d\t%d\t%s\n",
			f.Path,
			StatusIcon(status),
			status,
			f.Records,
			f.Items,
			f.Duration.Round(time.Millisecond),
		)
	}
	_ = w.Flush()

	for _, f := range r.Failures() {
		Error("%s: %s", f.Path, f.Error)
	}

	_, _ = fmt.Fprintf(Out, "\nSummary: %d loaded, %d failed, %d records, %d order items in %s\n",
		r.Loaded, r.Failed, r.Records, r.Items, r.Duration.Round(time.Millisecond))
}

// Counts prints the row count of every table.
func Counts(c etl.TableCounts) {
	w := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TABLE\tROWS")
	_, _ = fmt.Fprintln(w, "-----\t----")
	for _, row := range c.Rows() {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", row.Table, row.Count)
	}
	_ = w.Flush()
}

package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/marshallshelly/pebble-orders/pkg/etl"
)

// ProgressView shows how many files are done and which one is loading.
type ProgressView struct {
	Current int
	Total   int
	Message string
}

// View renders the progress view
func (p ProgressView) View(spinner string) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Ingesting Orders"))
	b.WriteString("\n")

	if p.Message != "" {
		b.WriteString(spinner + " " + infoStyle.Render(p.Message))
		b.WriteString("\n\n")
	}

	b.WriteString(FormatProgressBar(p.Current, p.Total, 40))

	return boxStyle.Render(b.String())
}

// LogView keeps the last MaxLen entries.
type LogView struct {
	Logs   []string
	MaxLen int
}

// NewLogView creates a new log view
func NewLogView(maxLen int) LogView {
	return LogView{
		Logs:   make([]string, 0, maxLen),
		MaxLen: maxLen,
	}
}

// AddLog adds a log entry
func (l *LogView) AddLog(entry string) {
	l.Logs = append(l.Logs, entry)
	if len(l.Logs) > l.MaxLen {
		l.Logs = l.Logs[1:]
	}
}

// View renders the log view
func (l LogView) View() string {
	if len(l.Logs) == 0 {
		return mutedStyle.Render("No files loaded yet")
	}

	var b strings.Builder
	for i, log := range l.Logs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(log)
	}

	return boxStyle.Render(b.String())
}

// FileLine formats one file result for the log view.
func FileLine(res etl.FileResult) string {
	name := filepath.Base(res.Path)
	if !res.OK() {
		return FormatStatus("failed") + " " + name + " " + mutedStyle.Render(res.Error)
	}
	return FormatStatus("loaded") + " " + name + " " + mutedStyle.Render(
		fmt.Sprintf("%d records, %d items, %s", res.Records, res.Items, res.Duration.Round(time.Millisecond)),
	)
}

package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/pebble-orders/pkg/etl"
)

func update(t *testing.T, m IngestModel, msg tea.Msg) (IngestModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(IngestModel)
	require.True(t, ok)
	return model, cmd
}

func TestIngestModel_Progress(t *testing.T) {
	m := NewIngestModel("./data", nil)

	m, _ = update(t, m, progressMsg(etl.Progress{Total: 2, Done: 0, Current: "/data/a.json"}))
	assert.Equal(t, "Loading a.json", m.progress.Message)
	assert.Equal(t, 2, m.progress.Total)

	res := etl.FileResult{Path: "/data/a.json", Records: 3, Items: 4}
	m, _ = update(t, m, progressMsg(etl.Progress{Total: 2, Done: 1, Current: "/data/a.json", Result: &res}))
	assert.Equal(t, 1, m.progress.Current)
	require.Len(t, m.logs.Logs, 1)
	assert.Contains(t, m.logs.Logs[0], "a.json")
	assert.Contains(t, m.logs.Logs[0], "3 records, 4 items")
}

func TestIngestModel_Done(t *testing.T) {
	m := NewIngestModel("./data", nil)
	report := &etl.Report{Loaded: 2, Records: 5, Items: 7}

	m, _ = update(t, m, ingestDoneMsg{report: report})
	assert.Equal(t, ModeComplete, m.mode)
	assert.Contains(t, m.View(), "2 file(s) loaded, 0 failed: 5 records, 7 order items")

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestIngestModel_Error(t *testing.T) {
	m := NewIngestModel("./data", nil)

	m, _ = update(t, m, ingestDoneMsg{report: &etl.Report{Failed: 1}, err: errors.New("boom")})
	assert.Equal(t, ModeError, m.mode)
	assert.Contains(t, m.View(), "boom")
}

func TestIngestModel_Cancel(t *testing.T) {
	cancelled := false
	m := NewIngestModel("./data", func() { cancelled = true })

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.Nil(t, cmd, "quit waits for the ingest to stop")
	assert.True(t, cancelled)
	assert.Equal(t, ModeCancelling, m.mode)

	m, _ = update(t, m, ingestDoneMsg{err: errors.New("ingest interrupted: context canceled")})
	assert.Equal(t, ModeError, m.mode)
}

func TestFormatProgressBar(t *testing.T) {
	tests := []struct {
		name           string
		current, total int
	}{
		{"empty", 0, 0},
		{"half", 1, 2},
		{"full", 2, 2},
		{"overflow", 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := FormatProgressBar(tt.current, tt.total, 10)
			assert.Equal(t, 10, strings.Count(bar, "━"))
			assert.Contains(t, bar, "/")
		})
	}

	assert.Empty(t, FormatProgressBar(1, 2, 0))
}

func TestLogView_Bounded(t *testing.T) {
	l := NewLogView(2)
	l.AddLog("a")
	l.AddLog("b")
	l.AddLog("c")
	assert.Equal(t, []string{"b", "c"}, l.Logs)
}

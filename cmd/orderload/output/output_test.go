package output

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/marshallshelly/pebble-orders/pkg/etl"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Out
	Out = &buf
	t.Cleanup(func() { Out = prev })
	return &buf
}

func TestReport(t *testing.T) {
	buf := capture(t)

	Report(&etl.Report{
		Root: "./data",
		Files: []etl.FileResult{
			{Path: "a.json", Records: 2, Items: 3, Duration: 12 * time.Millisecond},
			{Path: "b.json", Err: errors.New("bad"), Error: "bad"},
		},
		Loaded:  1,
		Failed:  1,
		Records: 2,
		Items:   3,
	})

	out := buf.String()
	assert.Contains(t, out, "a.json")
	assert.Contains(t, out, "loaded")
	assert.Contains(t, out, "b.json: bad")
	assert.Contains(t, out, "Summary: 1 loaded, 1 failed, 2 records, 3 order items")
}

func TestReport_Empty(t *testing.T) {
	buf := capture(t)
	Report(&etl.Report{Root: "./empty"})
	assert.Contains(t, buf.String(), "No data files found under ./empty")

	buf.Reset()
	Report(nil)
	assert.Empty(t, buf.String())
}

func TestCounts(t *testing.T) {
	buf := capture(t)
	Counts(etl.TableCounts{Categories: 1, OrderItems: 9})

	out := buf.String()
	assert.Regexp(t, `categories\s+1`, out)
	assert.Regexp(t, `order_items\s+9`, out)
}

func TestJSON(t *testing.T) {
	buf := capture(t)
	assert.NoError(t, JSON(etl.TableCounts{Orders: 4}))
	assert.Contains(t, buf.String(), `"orders": 4`)
}

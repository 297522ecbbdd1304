package etl

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/pebble-orders/pkg/runtime"
)

const sampleFile = `[
  {
    "category": "Books",
    "product_name": "Atlas",
    "price": 15.50,
    "customer_name": "Xi",
    "customer_email": "x@y.com",
    "customer_address": "1 Main St",
    "order_date": "2024-01-01",
    "products": [{"product_name": "Atlas", "quantity": 3}]
  },
  {
    "category": "Books",
    "product_name": "Globe",
    "price": "22.005",
    "customer_name": "Yu",
    "customer_email": "yu@example.com",
    "customer_address": "2 Side St",
    "order_date": "2024-01-02",
    "products": []
  }
]`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "orders.json", sampleFile)

	records, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "Books", first.Category)
	assert.Equal(t, "Atlas", first.ProductName)
	assert.Equal(t, "15.5", first.Price.String())
	assert.Equal(t, "x@y.com", first.CustomerEmail)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), first.OrderDate.Time)
	require.Len(t, first.Products, 1)
	assert.Equal(t, int32(3), first.Products[0].Quantity)

	assert.Equal(t, "22.01", records[1].Price.Round(2).StringFixed(2))
	assert.Empty(t, records[1].Products)
}

func TestParse_EmptyArray(t *testing.T) {
	records, err := Parse("empty.json", []byte("  []\n"))
	require.NoError(t, err)
	assert.Empty(t, records)
}

// recordJSON returns a valid record with edit applied.
func recordJSON(edit func(rec map[string]any)) string {
	rec := map[string]any{
		"category":         "Books",
		"product_name":     "Atlas",
		"price":            15.5,
		"customer_name":    "Xi",
		"customer_email":   "x@y.com",
		"customer_address": "1 Main St",
		"order_date":       "2024-01-01",
		"products":         []any{map[string]any{"product_name": "Atlas", "quantity": 3}},
	}
	if edit != nil {
		edit(rec)
	}
	data, _ := json.Marshal(rec)
	return string(data)
}

func without(key string) func(map[string]any) {
	return func(rec map[string]any) { delete(rec, key) }
}

func set(key string, value any) func(map[string]any) {
	return func(rec map[string]any) { rec[key] = value }
}

func lineItem(item any) func(map[string]any) {
	return set("products", []any{item})
}

func TestParse_Errors(t *testing.T) {
	valid := recordJSON(nil)

	tests := []struct {
		name        string
		data        string
		wantIndex   int
		wantMissing bool
	}{
		{name: "invalid json", data: `[{"category": "Books"`, wantIndex: -1},
		{name: "empty file", data: ``, wantIndex: -1},
		{name: "object at top level", data: `{"category": "Books"}`, wantIndex: -1},
		{name: "null at top level", data: `null`, wantIndex: -1},
		{name: "record not an object", data: "[" + valid + ", 42]", wantIndex: 1},
		{name: "null record", data: `[null]`, wantIndex: 0},
		{name: "empty record", data: `[{}]`, wantIndex: 0, wantMissing: true},
		{name: "second record without email", data: "[" + valid + ", " + recordJSON(without("customer_email")) + "]", wantIndex: 1, wantMissing: true},
		{name: "null category", data: "[" + recordJSON(set("category", nil)) + "]", wantIndex: 0, wantMissing: true},
		{name: "null price", data: "[" + recordJSON(set("price", nil)) + "]", wantIndex: 0, wantMissing: true},
		{name: "no products", data: "[" + recordJSON(without("products")) + "]", wantIndex: 0, wantMissing: true},
		{name: "no address", data: "[" + recordJSON(without("customer_address")) + "]", wantIndex: 0, wantMissing: true},
		{name: "no order date", data: "[" + recordJSON(without("order_date")) + "]", wantIndex: 0, wantMissing: true},
		{name: "line item without quantity", data: "[" + recordJSON(lineItem(map[string]any{"product_name": "Atlas"})) + "]", wantIndex: 0, wantMissing: true},
		{name: "line item without name", data: "[" + recordJSON(lineItem(map[string]any{"quantity": 1})) + "]", wantIndex: 0, wantMissing: true},
		{name: "null line item", data: "[" + recordJSON(lineItem(nil)) + "]", wantIndex: 0},
		{name: "products not an array", data: "[" + recordJSON(set("products", "Atlas")) + "]", wantIndex: 0},
		{name: "wrong field type", data: "[" + recordJSON(set("category", 7)) + "]", wantIndex: 0},
		{name: "bad date", data: "[" + recordJSON(set("order_date", "2024-13-01")) + "]", wantIndex: 0},
		{name: "bad price", data: "[" + recordJSON(set("price", "abc")) + "]", wantIndex: 0},
		{name: "fractional quantity", data: "[" + valid + ", " + recordJSON(lineItem(map[string]any{"product_name": "A", "quantity": 2.5})) + "]", wantIndex: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.json", []byte(tt.data))
			require.Error(t, err)

			var pe *runtime.ParseError
			require.True(t, errors.As(err, &pe), "expected ParseError, got %T", err)
			assert.Equal(t, "bad.json", pe.Path)
			assert.Equal(t, tt.wantIndex, pe.Index)
			if tt.wantMissing {
				assert.ErrorIs(t, err, errMissingField)
			}
		})
	}
}

func TestParse_EmptyProductsIsValid(t *testing.T) {
	records, err := Parse("ok.json", []byte("["+recordJSON(set("products", []any{}))+"]"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].Products)
}

// A nil database would panic on the first statement, so a clean ParseError
// shows the file was rejected before loading began.
func TestLoadFile_RejectsShapeBeforeLoading(t *testing.T) {
	path := writeFile(t, t.TempDir(), "orders.json",
		"["+recordJSON(nil)+", "+recordJSON(without("customer_email"))+"]")

	res, err := NewLoader(nil, nil, nil).LoadFile(context.Background(), path)
	require.Error(t, err)

	var pe *runtime.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 1, pe.Index)
	assert.False(t, res.OK())
	assert.Zero(t, res.Records)
	assert.Contains(t, res.Error, "customer_email")
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "gone.json"))
	var pe *runtime.ParseError
	require.True(t, errors.As(err, &pe))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

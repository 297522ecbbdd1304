package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_UnmarshalJSON(t *testing.T) {
	data := []byte(`{
		"category": "Books",
		"product_name": "Atlas",
		"price": 15.50,
		"customer_name": "Xi",
		"customer_email": "x@y.com",
		"customer_address": "1 Main St",
		"order_date": "2024-01-01",
		"products": [{"product_name": "Atlas", "quantity": 3}],
		"channel": "web"
	}`)

	var rec Record
	require.NoError(t, json.Unmarshal(data, &rec))

	assert.Equal(t, "Books", rec.Category)
	assert.Equal(t, "Atlas", rec.ProductName)
	assert.Equal(t, "15.5", rec.Price.String())
	assert.Equal(t, "x@y.com", rec.CustomerEmail)
	assert.Equal(t, "2024-01-01", rec.OrderDate.String())
	require.Len(t, rec.Products, 1)
	assert.Equal(t, LineItem{ProductName: "Atlas", Quantity: 3}, rec.Products[0])
}

func TestRecord_PriceAsString(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(`{"price": "19.99", "order_date": "2024-02-29"}`), &rec))
	assert.Equal(t, "19.99", rec.Price.StringFixed(2))
	assert.Equal(t, time.February, rec.OrderDate.Month())
}

func TestRecord_ShapeErrors(t *testing.T) {
	tests := map[string]string{
		"bad date":          `{"order_date": "01/02/2024"}`,
		"date not a string": `{"order_date": 20240101}`,
		"impossible date":   `{"order_date": "2024-02-30"}`,
		"fractional qty":    `{"products": [{"product_name": "A", "quantity": 1.5}]}`,
		"price not numeric": `{"price": "cheap"}`,
		"products object":   `{"products": {"product_name": "A"}}`,
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			var rec Record
			assert.Error(t, json.Unmarshal([]byte(data), &rec))
		})
	}
}

func TestDate_PG(t *testing.T) {
	d := NewDate(2024, time.January, 1)
	pg := d.PG()
	assert.True(t, pg.Valid)
	assert.Equal(t, d.Time, pg.Time)

	assert.False(t, Date{}.PG().Valid)
}

func TestDate_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(NewDate(2023, time.December, 31))
	require.NoError(t, err)
	assert.Equal(t, `"2023-12-31"`, string(out))
}

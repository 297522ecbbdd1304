// Package seed provides a small fixed dataset for a freshly reset schema.
package seed

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/marshallshelly/pebble-orders/pkg/etl"
	"github.com/marshallshelly/pebble-orders/pkg/models"
)

// Source names the seed records in load results.
const Source = "seed"

// Records returns the sample orders: 3 categories, 5 products, 3 customers, 5 orders
// and 8 order items.
// Every line item names a product introduced by the same or an earlier record.
func Records() []models.Record {
	return []models.Record{
		{
			Category:        "Books",
			ProductName:     "Atlas of the World",
			Price:           decimal.RequireFromString("15.50"),
			CustomerName:    "Ada Lovelace",
			CustomerEmail:   "ada@example.com",
			CustomerAddress: "12 St James's Square, London",
			OrderDate:       models.NewDate(2024, time.January, 1),
			Products: []models.LineItem{
				{ProductName: "Atlas of the World", Quantity: 2},
			},
		},
		{
			Category:        "Electronics",
			ProductName:     "USB-C Cable",
			Price:           decimal.RequireFromString("9.99"),
			CustomerName:    "Grace Hopper",
			CustomerEmail:   "grace@example.com",
			CustomerAddress: "1 Navy Yard, Arlington",
			OrderDate:       models.NewDate(2024, time.January, 3),
			Products: []models.LineItem{
				{ProductName: "USB-C Cable", Quantity: 3},
				{ProductName: "Atlas of the World", Quantity: 1},
			},
		},
		{
			Category:        "Electronics",
			ProductName:     "Mechanical Keyboard",
			Price:           decimal.RequireFromString("129.00"),
			CustomerName:    "Ada Lovelace",
			CustomerEmail:   "ada@example.com",
			CustomerAddress: "12 St James's Square, London",
			OrderDate:       models.NewDate(2024, time.February, 14),
			Products: []models.LineItem{
				{ProductName: "Mechanical Keyboard", Quantity: 1},
				{ProductName: "USB-C Cable", Quantity: 2},
			},
		},
		{
			Category:        "Books",
			ProductName:     "The Art of Computer Programming",
			Price:           decimal.RequireFromString("249.99"),
			CustomerName:    "Alan Turing",
			CustomerEmail:   "alan@example.com",
			CustomerAddress: "Bletchley Park, Milton Keynes",
			OrderDate:       models.NewDate(2024, time.March, 2),
			Products: []models.LineItem{
				{ProductName: "The Art of Computer Programming", Quantity: 1},
			},
		},
		{
			Category:        "Kitchen",
			ProductName:     "French Press",
			Price:           decimal.RequireFromString("34.25"),
			CustomerName:    "Grace Hopper",
			CustomerEmail:   "grace@example.com",
			CustomerAddress: "1 Navy Yard, Arlington",
			OrderDate:       models.NewDate(2024, time.March, 9),
			Products: []models.LineItem{
				{ProductName: "French Press", Quantity: 1},
				{ProductName: "Atlas of the World", Quantity: 1},
			},
		},
	}
}

// Run loads the sample records in one transaction.
func Run(ctx context.Context, loader *etl.Loader) (etl.FileResult, error) {
	return loader.LoadRecords(ctx, Source, Records())
}

package etl

import (
	"context"

	"github.com/marshallshelly/pebble-orders/pkg/builder"
	"github.com/marshallshelly/pebble-orders/pkg/models"
)

// TableCounts holds the row count of every order table.
type TableCounts struct {
	Categories int64 `json:"categories"`
	Products   int64 `json:"products"`
	Customers  int64 `json:"customers"`
	Orders     int64 `json:"orders"`
	OrderItems int64 `json:"order_items"`
}

// TableCount is one row of TableCounts.Rows.
type TableCount struct {
	Table string
	Count int64
}

// Rows returns the counts in table creation order.
func (c TableCounts) Rows() []TableCount {
	return []TableCount{
		{"categories", c.Categories},
		{"products", c.Products},
		{"customers", c.Customers},
		{"orders", c.Orders},
		{"order_items", c.OrderItems},
	}
}

// Counts counts the rows of every order table.
func Counts(ctx context.Context, s builder.Session) (TableCounts, error) {
	var c TableCounts
	var err error

	if c.Categories, err = builder.Select[models.Category](s).Count(ctx); err != nil {
		return c, err
	}
	if c.Products, err = builder.Select[models.Product](s).Count(ctx); err != nil {
		return c, err
	}
	if c.Customers, err = builder.Select[models.Customer](s).Count(ctx); err != nil {
		return c, err
	}
	if c.Orders, err = builder.Select[models.Order](s).Count(ctx); err != nil {
		return c, err
	}
	if c.OrderItems, err = builder.Select[models.OrderItem](s).Count(ctx); err != nil {
		return c, err
	}
	return c, nil
}

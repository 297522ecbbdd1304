// Package models defines the normalized order tables and the JSON record they are loaded from.
package models

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Category is deduplicated by name.
type Category struct {
	ID   int64  `po:"id,primaryKey,serial"`
	Name string `po:"name,text,notNull,unique"`
}

func (Category) TableName() string { return "categories" }

// Product is deduplicated by name; the first record naming it fixes price and category.
type Product struct {
	ID         int64           `po:"id,primaryKey,serial"`
	Name       string          `po:"name,text,notNull,unique"`
	Price      decimal.Decimal `po:"price,numeric(10,2),notNull"`
	CategoryID int64           `po:"category_id,integer,notNull,fk:categories(id)"`
}

func (Product) TableName() string { return "products" }

// Customer is deduplicated by email.
type Customer struct {
	ID      int64  `po:"id,primaryKey,serial"`
	Name    string `po:"name,text,notNull"`
	Email   string `po:"email,text,unique,notNull"`
	Address string `po:"address,text,notNull"`
}

func (Customer) TableName() string { return "customers" }

// Order is appended once per input record.
type Order struct {
	ID         int64       `po:"id,primaryKey,serial"`
	CustomerID int64       `po:"customer_id,integer,notNull,fk:customers(id)"`
	OrderDate  pgtype.Date `po:"order_date,date,notNull"`
}

func (Order) TableName() string { return "orders" }

// OrderItem is one line of an order.
type OrderItem struct {
	ID        int64 `po:"id,primaryKey,serial"`
	OrderID   int64 `po:"order_id,integer,notNull,fk:orders(id)"`
	ProductID int64 `po:"product_id,integer,notNull,fk:products(id)"`
	Quantity  int32 `po:"quantity,integer,notNull,check(quantity > 0)"`
}

func (OrderItem) TableName() string { return "order_items" }

// All returns a zero value of every table model.
func All() []any {
	return []any{Category{}, Product{}, Customer{}, Order{}, OrderItem{}}
}

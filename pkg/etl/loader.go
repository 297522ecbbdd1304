package etl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/marshallshelly/pebble-orders/pkg/builder"
	"github.com/marshallshelly/pebble-orders/pkg/models"
	"github.com/marshallshelly/pebble-orders/pkg/registry"
	"github.com/marshallshelly/pebble-orders/pkg/runtime"
)

// FileResult is the outcome of loading one file.
type FileResult struct {
	Path     string        `json:"path"`
	Records  int           `json:"records"`
	Items    int           `json:"items"`
	Duration time.Duration `json:"duration_ns"`
	Err      error         `json:"-"`
	Error    string        `json:"error,omitempty"`
}

// OK reports whether the file was committed.
func (r FileResult) OK() bool {
	return r.Err == nil
}

func (r *FileResult) fail(err error) {
	r.Err = err
	r.Error = err.Error()
}

// Loader normalizes records into the order tables. Each file runs in one transaction.
type Loader struct {
	db     *builder.DB
	logger *zap.Logger
}

// NewLoader creates a loader on db. A nil logger disables logging.
func NewLoader(db *runtime.DB, reg *registry.Registry, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{db: builder.New(db, reg), logger: logger}
}

// LoadFile parses path and loads every record in one transaction.
// On any failure nothing from the file is committed.
func (l *Loader) LoadFile(ctx context.Context, path string) (FileResult, error) {
	start := time.Now()

	records, err := ParseFile(path)
	if err != nil {
		res := FileResult{Path: path, Duration: time.Since(start)}
		res.fail(err)
		l.logger.Warn("file failed", zap.String("path", path), zap.Error(err))
		return res, err
	}

	res, err := l.LoadRecords(ctx, path, records)
	res.Duration = time.Since(start)
	return res, err
}

// LoadRecords loads in-memory records in one transaction. source names them in
// results and errors.
func (l *Loader) LoadRecords(ctx context.Context, source string, records []models.Record) (FileResult, error) {
	start := time.Now()
	res := FileResult{Path: source}

	var items int
	err := l.db.WithTx(ctx, func(tx *builder.Tx) error {
		for i, rec := range records {
			n, err := l.LoadRecord(ctx, tx, rec)
			if err != nil {
				return fmt.Errorf("failed to load %s record %d: %w", source, i, err)
			}
			items += n
		}
		return nil
	})
	res.Duration = time.Since(start)
	if err != nil {
		res.fail(err)
		l.logger.Warn("file failed", zap.String("path", source), zap.Error(err))
		return res, err
	}

	res.Records = len(records)
	res.Items = items
	l.logger.Info("file loaded",
		zap.String("path", source),
		zap.Int("records", res.Records),
		zap.Int("items", res.Items),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

// LoadRecord writes one record inside tx and returns the number of order items inserted.
func (l *Loader) LoadRecord(ctx context.Context, tx *builder.Tx, rec models.Record) (int, error) {
	categoryID, err := upsertCategory(ctx, tx, rec.Category)
	if err != nil {
		return 0, err
	}

	if _, err := builder.Insert[models.Product](tx).
		Values(models.Product{Name: rec.ProductName, Price: rec.Price.Round(2), CategoryID: categoryID}).
		OnConflictDoNothing("name").
		Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to insert product %q: %w", rec.ProductName, err)
	}

	customerID, err := upsertCustomer(ctx, tx, rec)
	if err != nil {
		return 0, err
	}

	var orderID int64
	if err := builder.Insert[models.Order](tx).
		Values(models.Order{CustomerID: customerID, OrderDate: rec.OrderDate.PG()}).
		Returning("id").
		Scan(ctx, &orderID); err != nil {
		return 0, fmt.Errorf("failed to insert order: %w", err)
	}

	for _, item := range rec.Products {
		productID, err := productIDByName(ctx, tx, item.ProductName)
		if err != nil {
			return 0, err
		}
		if _, err := builder.Insert[models.OrderItem](tx).
			Values(models.OrderItem{OrderID: orderID, ProductID: productID, Quantity: item.Quantity}).
			Exec(ctx); err != nil {
			return 0, fmt.Errorf("failed to insert order item for %q: %w", item.ProductName, err)
		}
	}

	return len(rec.Products), nil
}

// upsertCategory returns the id of the category named name, creating it if needed.
func upsertCategory(ctx context.Context, tx *builder.Tx, name string) (int64, error) {
	var id int64
	err := builder.Insert[models.Category](tx).
		Values(models.Category{Name: name}).
		OnConflictUpdateExcluded([]string{"name"}, "name").
		Returning("id").
		Scan(ctx, &id)
	if errors.Is(err, runtime.ErrNotFound) {
		return 0, &runtime.NotFoundError{Entity: "category", Key: name}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve category %q: %w", name, err)
	}
	return id, nil
}

// upsertCustomer returns the id of the customer with rec's email. The first
// record seen for an email keeps its name and address.
func upsertCustomer(ctx context.Context, tx *builder.Tx, rec models.Record) (int64, error) {
	var id int64
	err := builder.Insert[models.Customer](tx).
		Values(models.Customer{Name: rec.CustomerName, Email: rec.CustomerEmail, Address: rec.CustomerAddress}).
		OnConflictUpdateExcluded([]string{"email"}, "email").
		Returning("id").
		Scan(ctx, &id)
	if errors.Is(err, runtime.ErrNotFound) {
		return 0, &runtime.NotFoundError{Entity: "customer", Key: rec.CustomerEmail}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve customer %q: %w", rec.CustomerEmail, err)
	}
	return id, nil
}

func productIDByName(ctx context.Context, tx *builder.Tx, name string) (int64, error) {
	var id int64
	err := builder.Select[models.Product](tx).
		Columns("id").
		Where(builder.Eq("name", name)).
		Scan(ctx, &id)
	if errors.Is(err, runtime.ErrNotFound) {
		return 0, &runtime.NotFoundError{Entity: "product", Key: name}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up product %q: %w", name, err)
	}
	return id, nil
}

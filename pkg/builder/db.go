package builder

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/marshallshelly/pebble-orders/pkg/registry"
	"github.com/marshallshelly/pebble-orders/pkg/runtime"
)

// Querier runs statements. *runtime.DB and pgx.Tx both satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Session is where a query runs: a *DB or a *Tx.
type Session interface {
	Querier() Querier
	Registry() *registry.Registry
}

// DB wraps runtime.DB and provides query builder methods.
type DB struct {
	db       *runtime.DB
	registry *registry.Registry
}

// New creates a query builder DB. A nil registry creates an empty one that
// registers models on first use.
func New(db *runtime.DB, reg *registry.Registry) *DB {
	if reg == nil {
		reg = registry.NewRegistry()
	}
	return &DB{db: db, registry: reg}
}

// Runtime returns the underlying runtime.DB.
func (d *DB) Runtime() *runtime.DB {
	return d.db
}

// Querier implements Session.
func (d *DB) Querier() Querier {
	return d.db
}

// Registry implements Session.
func (d *DB) Registry() *registry.Registry {
	return d.registry
}

// Tx wraps a pgx transaction and provides query builder methods.
type Tx struct {
	tx       pgx.Tx
	registry *registry.Registry
}

// Begin starts a new transaction.
func (d *DB) Begin(ctx context.Context) (*Tx, error) {
	if d.db == nil {
		return nil, runtime.ErrNoConnection
	}
	tx, err := d.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{tx: tx, registry: d.registry}, nil
}

// Querier implements Session.
func (t *Tx) Querier() Querier {
	return t.tx
}

// Registry implements Session.
func (t *Tx) Registry() *registry.Registry {
	return t.registry
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback rolls back the transaction. Rolling back a finished transaction is a no-op.
func (t *Tx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// WithTx runs fn inside a transaction, committing on success and rolling back on error.
func (d *DB) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := d.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Select creates a new type-safe SELECT query.
// Usage: builder.Select[models.Product](db).Where(builder.Eq("name", n)).First(ctx)
func Select[T any](s Session) *SelectQuery[T] {
	var model T
	table, err := s.Registry().GetOrRegister(model)
	return &SelectQuery[T]{
		session: s,
		table:   table,
		err:     err,
		columns: []string{"*"},
	}
}

// Insert creates a new type-safe INSERT query.
// Usage: builder.Insert[models.Category](tx).Values(c).Returning("id").Scan(ctx, &id)
func Insert[T any](s Session) *InsertQuery[T] {
	var model T
	table, err := s.Registry().GetOrRegister(model)
	return &InsertQuery[T]{
		session: s,
		table:   table,
		err:     err,
	}
}

// wrapErr gives errors from a transaction the same shape runtime.DB returns.
func wrapErr(sql string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return runtime.ErrNotFound
	}
	var qe *runtime.QueryError
	if errors.As(err, &qe) {
		return err
	}
	return &runtime.QueryError{Query: sql, Err: runtime.Classify(err)}
}

// Package runtime provides the database connection and error kinds shared by the loader.
package runtime

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when an expected row is not found.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when a unique constraint is violated.
	ErrDuplicateKey = errors.New("duplicate key value")

	// ErrForeignKeyViolation is returned when a foreign key constraint is violated.
	ErrForeignKeyViolation = errors.New("foreign key violation")

	// ErrCheckViolation is returned when a CHECK constraint is violated.
	ErrCheckViolation = errors.New("check constraint violation")

	// ErrNotNullViolation is returned when a NOT NULL column receives NULL.
	ErrNotNullViolation = errors.New("not null violation")

	// ErrNoConnection is returned when no database connection is available.
	ErrNoConnection = errors.New("no database connection")
)

// PostgreSQL SQLSTATE codes for integrity constraint violations (class 23).
const (
	codeNotNullViolation    = "23502"
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
	codeCheckViolation      = "23514"
)

// QueryError represents a query execution error.
type QueryError struct {
	Query string
	Err   error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	return fmt.Sprintf("query error: %v\nQuery: %s", e.Err, e.Query)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// SchemaError is returned when a DDL statement fails during a schema reset.
type SchemaError struct {
	Statement string
	Err       error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error: %v\nStatement: %s", e.Err, e.Statement)
}

// Unwrap returns the underlying error.
func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ParseError is returned when a data file is not valid JSON or has the wrong shape.
// Index is the zero-based record position, or -1 when the whole file is unreadable.
type ParseError struct {
	Path  string
	Index int
	Err   error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("parse error in %s (record %d): %v", e.Path, e.Index, e.Err)
	}
	return fmt.Sprintf("parse error in %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NotFoundError is returned when a lookup by natural key yields no row.
type NotFoundError struct {
	Entity string
	Key    string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ConstraintViolation is returned when an insert breaks an integrity constraint.
type ConstraintViolation struct {
	Code       string
	Constraint string
	Table      string
	Err        error
}

// Error implements the error interface.
func (e *ConstraintViolation) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("constraint %s violated on %s: %v", e.Constraint, e.Table, e.Err)
	}
	return fmt.Sprintf("constraint violated on %s: %v", e.Table, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConstraintViolation) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the violated constraint kind.
func (e *ConstraintViolation) Is(target error) bool {
	switch e.Code {
	case codeUniqueViolation:
		return target == ErrDuplicateKey
	case codeForeignKeyViolation:
		return target == ErrForeignKeyViolation
	case codeCheckViolation:
		return target == ErrCheckViolation
	case codeNotNullViolation:
		return target == ErrNotNullViolation
	}
	return false
}

// Classify converts PostgreSQL integrity errors into a *ConstraintViolation.
// Any other error is returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeNotNullViolation, codeForeignKeyViolation, codeUniqueViolation, codeCheckViolation:
		return &ConstraintViolation{
			Code:       pgErr.Code,
			Constraint: pgErr.ConstraintName,
			Table:      pgErr.TableName,
			Err:        err,
		}
	}

	return err
}

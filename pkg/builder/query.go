// Package builder provides a type-safe query builder for PostgreSQL.
package builder

import "github.com/marshallshelly/pebble-orders/pkg/schema"

// SelectQuery represents a SELECT query with type safety.
type SelectQuery[T any] struct {
	session Session
	table   *schema.TableMetadata
	err     error
	columns []string
	where   []Condition
	orderBy []string
	limit   int
}

// InsertQuery represents an INSERT query.
type InsertQuery[T any] struct {
	session    Session
	table      *schema.TableMetadata
	err        error
	values     []T
	returning  []string
	onConflict *OnConflict
}

// Condition is a column = value match. Conditions of a query are ANDed.
type Condition struct {
	Column string
	Value  any
}

// OnConflict represents an ON CONFLICT clause for upserts.
// Excluded lists columns set from the proposed row (col = EXCLUDED.col).
type OnConflict struct {
	Columns  []string
	Action   ConflictAction
	Excluded []string
}

// ConflictAction represents the action for ON CONFLICT.
type ConflictAction string

const (
	// DoNothing does nothing on conflict.
	DoNothing ConflictAction = "DO NOTHING"
	// DoUpdate updates on conflict.
	DoUpdate ConflictAction = "DO UPDATE SET"
)

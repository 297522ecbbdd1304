package builder

import (
	"context"
	"fmt"
	"strings"

	"github.com/marshallshelly/pebble-orders/pkg/runtime"
)

// Columns narrows the select list; by default every column is selected.
func (q *SelectQuery[T]) Columns(cols ...string) *SelectQuery[T] {
	q.columns = cols
	return q
}

// Where adds a condition. Conditions are ANDed.
func (q *SelectQuery[T]) Where(condition Condition) *SelectQuery[T] {
	q.where = append(q.where, condition)
	return q
}

// OrderBy sorts ascending by the given columns.
func (q *SelectQuery[T]) OrderBy(columns ...string) *SelectQuery[T] {
	q.orderBy = append(q.orderBy, columns...)
	return q
}

// ToSQL generates the SQL query and arguments.
func (q *SelectQuery[T]) ToSQL() (string, []any, error) {
	if q.err != nil {
		return "", nil, fmt.Errorf("table metadata not available: %w", q.err)
	}

	var sql strings.Builder
	sql.WriteString("SELECT ")
	if len(q.columns) == 0 {
		sql.WriteString("*")
	} else {
		sql.WriteString(strings.Join(q.columns, ", "))
	}
	sql.WriteString(" FROM ")
	sql.WriteString(q.table.Name)

	args := q.writeWhere(&sql)

	if len(q.orderBy) > 0 {
		sql.WriteString(" ORDER BY ")
		sql.WriteString(strings.Join(q.orderBy, ", "))
	}

	if q.limit > 0 {
		fmt.Fprintf(&sql, " LIMIT %d", q.limit)
	}

	return sql.String(), args, nil
}

func (q *SelectQuery[T]) writeWhere(sql *strings.Builder) []any {
	whereSQL, args := buildWhere(q.where, 1)
	if whereSQL != "" {
		sql.WriteString(" ")
		sql.WriteString(whereSQL)
	}
	return args
}

// All executes the query and returns all results.
func (q *SelectQuery[T]) All(ctx context.Context) ([]T, error) {
	sql, args, err := q.ToSQL()
	if err != nil {
		return nil, err
	}

	rows, err := q.session.Querier().Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapErr(sql, err)
	}
	defer rows.Close()

	var results []T
	for rows.Next() {
		var item T
		if err := scanIntoStruct(rows, &item, q.table); err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(sql, err)
	}
	return results, nil
}

// First returns the first matching row, or runtime.ErrNotFound.
func (q *SelectQuery[T]) First(ctx context.Context) (*T, error) {
	q.limit = 1

	results, err := q.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, runtime.ErrNotFound
	}
	return &results[0], nil
}

// Scan runs the query with LIMIT 1 and scans the selected columns into dest.
// It returns runtime.ErrNotFound when nothing matches.
func (q *SelectQuery[T]) Scan(ctx context.Context, dest ...any) error {
	q.limit = 1

	sql, args, err := q.ToSQL()
	if err != nil {
		return err
	}
	return wrapErr(sql, q.session.Querier().QueryRow(ctx, sql, args...).Scan(dest...))
}

// CountSQL generates the COUNT query for the current conditions.
func (q *SelectQuery[T]) CountSQL() (string, []any, error) {
	if q.err != nil {
		return "", nil, fmt.Errorf("table metadata not available: %w", q.err)
	}

	var sql strings.Builder
	sql.WriteString("SELECT COUNT(*) FROM ")
	sql.WriteString(q.table.Name)
	args := q.writeWhere(&sql)
	return sql.String(), args, nil
}

// Count executes a COUNT query.
func (q *SelectQuery[T]) Count(ctx context.Context) (int64, error) {
	sql, args, err := q.CountSQL()
	if err != nil {
		return 0, err
	}

	var count int64
	if err := q.session.Querier().QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, wrapErr(sql, err)
	}
	return count, nil
}

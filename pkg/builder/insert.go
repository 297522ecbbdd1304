package builder

import (
	"context"
	"fmt"
	"strings"
)

// Values sets the values to insert (single or multiple rows).
func (q *InsertQuery[T]) Values(values ...T) *InsertQuery[T] {
	q.values = append(q.values, values...)
	return q
}

// Returning specifies columns to return after insert.
func (q *InsertQuery[T]) Returning(columns ...string) *InsertQuery[T] {
	q.returning = columns
	return q
}

// OnConflictDoNothing adds ON CONFLICT DO NOTHING clause.
func (q *InsertQuery[T]) OnConflictDoNothing(columns ...string) *InsertQuery[T] {
	q.onConflict = &OnConflict{
		Columns: columns,
		Action:  DoNothing,
	}
	return q
}

// OnConflictUpdateExcluded adds ON CONFLICT (columns) DO UPDATE SET c = EXCLUDED.c for
// every column in set. Setting the conflict key to itself makes the statement
// return the existing row's columns without changing it.
func (q *InsertQuery[T]) OnConflictUpdateExcluded(columns []string, set ...string) *InsertQuery[T] {
	q.onConflict = &OnConflict{
		Columns:  columns,
		Action:   DoUpdate,
		Excluded: set,
	}
	return q
}

// ToSQL generates the INSERT SQL and arguments.
func (q *InsertQuery[T]) ToSQL() (string, []any, error) {
	if q.err != nil {
		return "", nil, fmt.Errorf("table metadata not available: %w", q.err)
	}
	if len(q.values) == 0 {
		return "", nil, fmt.Errorf("no values to insert")
	}

	var sql strings.Builder
	var args []any
	paramNum := 1

	sql.WriteString("INSERT INTO ")
	sql.WriteString(q.table.Name)

	columns, firstRowValues, err := structToValues(q.values[0], q.table, true)
	if err != nil {
		return "", nil, fmt.Errorf("failed to extract values: %w", err)
	}

	sql.WriteString(" (")
	sql.WriteString(strings.Join(columns, ", "))
	sql.WriteString(") VALUES ")

	valueClauses := make([]string, len(q.values))
	for i, val := range q.values {
		rowValues := firstRowValues
		if i > 0 {
			_, rowValues, err = structToValues(val, q.table, true)
			if err != nil {
				return "", nil, fmt.Errorf("failed to extract values from row %d: %w", i, err)
			}
		}

		placeholders := make([]string, len(rowValues))
		for j := range rowValues {
			placeholders[j] = fmt.Sprintf("$%d", paramNum)
			paramNum++
			args = append(args, rowValues[j])
		}
		valueClauses[i] = "(" + strings.Join(placeholders, ", ") + ")"
	}
	sql.WriteString(strings.Join(valueClauses, ", "))

	if q.onConflict != nil {
		sql.WriteString(" ON CONFLICT")
		if len(q.onConflict.Columns) > 0 {
			sql.WriteString(" (")
			sql.WriteString(strings.Join(q.onConflict.Columns, ", "))
			sql.WriteString(")")
		}

		switch q.onConflict.Action {
		case DoNothing:
			sql.WriteString(" DO NOTHING")
		case DoUpdate:
			if len(q.onConflict.Columns) == 0 {
				return "", nil, fmt.Errorf("ON CONFLICT DO UPDATE requires conflict columns")
			}
			var sets []string
			for _, col := range q.onConflict.Excluded {
				sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
			}
			if len(sets) == 0 {
				return "", nil, fmt.Errorf("ON CONFLICT DO UPDATE requires at least one column to set")
			}
			sql.WriteString(" ")
			sql.WriteString(string(DoUpdate))
			sql.WriteString(" ")
			sql.WriteString(strings.Join(sets, ", "))
		}
	}

	if len(q.returning) > 0 {
		sql.WriteString(" RETURNING ")
		sql.WriteString(strings.Join(q.returning, ", "))
	}

	return sql.String(), args, nil
}

// Exec executes the INSERT query and returns the number of inserted rows.
// Rows skipped by ON CONFLICT DO NOTHING are not counted.
func (q *InsertQuery[T]) Exec(ctx context.Context) (int64, error) {
	sql, args, err := q.ToSQL()
	if err != nil {
		return 0, err
	}
	tag, err := q.session.Querier().Exec(ctx, sql, args...)
	if err != nil {
		return 0, wrapErr(sql, err)
	}
	return tag.RowsAffected(), nil
}

// Scan executes a single-row INSERT ... RETURNING and scans the returned columns.
// It returns runtime.ErrNotFound when no row comes back, e.g. after DO NOTHING.
func (q *InsertQuery[T]) Scan(ctx context.Context, dest ...any) error {
	if len(q.returning) == 0 {
		return fmt.Errorf("scan requires a RETURNING clause")
	}
	if len(q.values) != 1 {
		return fmt.Errorf("scan requires exactly one row, got %d", len(q.values))
	}
	sql, args, err := q.ToSQL()
	if err != nil {
		return err
	}
	return wrapErr(sql, q.session.Querier().QueryRow(ctx, sql, args...).Scan(dest...))
}

package builder

import (
	"fmt"
	"strings"
)

// Eq matches rows whose column equals value.
func Eq(column string, value any) Condition {
	return Condition{Column: column, Value: value}
}

// buildWhere renders conditions as a WHERE clause with placeholders from $paramStart.
func buildWhere(conditions []Condition, paramStart int) (string, []any) {
	if len(conditions) == 0 {
		return "", nil
	}
	parts := make([]string, len(conditions))
	args := make([]any, len(conditions))
	for i, cond := range conditions {
		parts[i] = fmt.Sprintf("%s = $%d", cond.Column, paramStart+i)
		args[i] = cond.Value
	}
	return "WHERE " + strings.Join(parts, " AND "), args
}

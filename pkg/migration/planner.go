// Package migration renders table DDL and performs the destructive schema reset.
package migration

import (
	"fmt"
	"slices"
	"strings"

	"github.com/marshallshelly/pebble-orders/pkg/schema"
)

// PlannerOptions configures DDL generation.
type PlannerOptions struct {
	// IfNotExists adds IF NOT EXISTS to CREATE TABLE and IF EXISTS to DROP TABLE,
	// so a reset can be re-run against any prior state.
	IfNotExists bool
}

// Planner generates DDL statements from table metadata.
type Planner struct {
	options PlannerOptions
}

// NewPlanner creates a planner with IF [NOT] EXISTS guards enabled.
func NewPlanner() *Planner {
	return &Planner{options: PlannerOptions{IfNotExists: true}}
}

// NewPlannerWithOptions creates a planner with custom options.
func NewPlannerWithOptions(opts PlannerOptions) *Planner {
	return &Planner{options: opts}
}

// ResetPlan is the ordered statement list of a reset: drops first, then creates.
type ResetPlan struct {
	Drops   []string `json:"drops"`
	Creates []string `json:"creates"`
}

// Statements returns drops followed by creates.
func (rp ResetPlan) Statements() []string {
	return append(slices.Clone(rp.Drops), rp.Creates...)
}

// String renders the plan as a SQL script.
func (rp ResetPlan) String() string {
	stmts := rp.Statements()
	for i, s := range stmts {
		stmts[i] = s + ";"
	}
	return strings.Join(stmts, "\n\n") + "\n"
}

// Plan builds the reset plan for tables given in dependency order.
// Tables are dropped in reverse order and created in forward order.
func (p *Planner) Plan(tables []*schema.TableMetadata) ResetPlan {
	plan := ResetPlan{
		Drops:   make([]string, 0, len(tables)),
		Creates: make([]string, 0, len(tables)),
	}
	for i := len(tables) - 1; i >= 0; i-- {
		plan.Drops = append(plan.Drops, p.DropTable(tables[i].Name))
	}
	for _, table := range tables {
		plan.Creates = append(plan.Creates, p.CreateTable(table))
	}
	return plan
}

// DropTable generates a DROP TABLE statement.
func (p *Planner) DropTable(name string) string {
	if p.options.IfNotExists {
		return "DROP TABLE IF EXISTS " + name
	}
	return "DROP TABLE " + name
}

// CreateTable generates a CREATE TABLE statement.
func (p *Planner) CreateTable(table *schema.TableMetadata) string {
	var parts []string

	var singlePKColumn string
	if table.PrimaryKey != nil && len(table.PrimaryKey.Columns) == 1 {
		singlePKColumn = table.PrimaryKey.Columns[0]
	}

	for _, col := range table.Columns {
		if col.Name == singlePKColumn {
			parts = append(parts, "    "+col.Name+" "+strings.ToUpper(col.SQLType)+" PRIMARY KEY")
			continue
		}
		parts = append(parts, "    "+p.columnDefinition(col))
	}

	if table.PrimaryKey != nil && len(table.PrimaryKey.Columns) > 1 {
		parts = append(parts, fmt.Sprintf("    CONSTRAINT %s PRIMARY KEY (%s)",
			table.PrimaryKey.Name, strings.Join(table.PrimaryKey.Columns, ", ")))
	}

	for _, fk := range table.ForeignKeys {
		parts = append(parts, "    "+p.foreignKeyDefinition(fk))
	}

	for _, c := range table.Constraints {
		switch c.Type {
		case schema.CheckConstraint:
			parts = append(parts, fmt.Sprintf("    CONSTRAINT %s CHECK (%s)", c.Name, c.Expression))
		case schema.UniqueConstraint:
			parts = append(parts, fmt.Sprintf("    CONSTRAINT %s UNIQUE (%s)", c.Name, strings.Join(c.Columns, ", ")))
		}
	}

	createClause := "CREATE TABLE"
	if p.options.IfNotExists {
		createClause = "CREATE TABLE IF NOT EXISTS"
	}
	return fmt.Sprintf("%s %s (\n%s\n)", createClause, table.Name, strings.Join(parts, ",\n"))
}

// columnDefinition renders a non-primary-key column.
func (p *Planner) columnDefinition(col schema.ColumnMetadata) string {
	parts := []string{col.Name, strings.ToUpper(col.SQLType)}
	if !col.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if col.Default != nil {
		parts = append(parts, "DEFAULT", *col.Default)
	}
	if col.Unique {
		parts = append(parts, "UNIQUE")
	}
	return strings.Join(parts, " ")
}

// foreignKeyDefinition renders a named FOREIGN KEY constraint.
func (p *Planner) foreignKeyDefinition(fk schema.ForeignKeyMetadata) string {
	parts := []string{
		fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s)", fk.Name, strings.Join(fk.Columns, ", ")),
		fmt.Sprintf("REFERENCES %s (%s)", fk.ReferencedTable, strings.Join(fk.ReferencedColumns, ", ")),
	}
	if fk.OnDelete != schema.NoAction && fk.OnDelete != "" {
		parts = append(parts, "ON DELETE "+string(fk.OnDelete))
	}
	if fk.OnUpdate != schema.NoAction && fk.OnUpdate != "" {
		parts = append(parts, "ON UPDATE "+string(fk.OnUpdate))
	}
	return strings.Join(parts, " ")
}

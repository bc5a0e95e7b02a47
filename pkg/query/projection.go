// Package query builds parameterized SELECT statements over a projection:
// a table alias plus a mapping from Go field names to qualified columns.
package query

import "strings"

// ProjectionMap maps field names to alias-qualified columns in select order.
type ProjectionMap struct {
	schema, table, alias string

	byField map[string]string
	ordered []string
}

func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema:  schema,
		table:   table,
		alias:   alias,
		byField: map[string]string{},
	}
}

// Project selects column and exposes it as field.
func (p *ProjectionMap) Project(column, field string) *ProjectionMap {
	qualified := p.alias + "." + column
	p.byField[field] = qualified
	p.ordered = append(p.ordered, qualified)
	return p
}

func (p *ProjectionMap) Alias() string { return p.alias }

// Table is "schema.table alias".
func (p *ProjectionMap) Table() string {
	return p.schema + "." + p.table + " " + p.alias
}

// From is the FROM target for statements over this projection.
func (p *ProjectionMap) From() string { return p.Table() }

// Column resolves field to its qualified column. Unknown names pass through
// unchanged so callers can reference raw expressions.
func (p *ProjectionMap) Column(field string) string {
	if col, ok := p.byField[field]; ok {
		return col
	}
	return field
}

// Columns is the select list.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.ordered, ", ")
}

func (p *ProjectionMap) ColumnList() []string {
	return p.ordered
}

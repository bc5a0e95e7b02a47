package query

import (
	"reflect"
	"strconv"
	"strings"
)

// SortField orders by a projected field, ascending unless Descending.
type SortField struct {
	Field      string
	Descending bool
}

// predicate renders one WHERE term, drawing placeholders from bind.
type predicate func(bind func(arg any) string) string

// Builder accumulates filters and ordering for one SELECT. Filters given a
// nil or empty value are dropped, so optional query parameters can be
// passed straight through.
type Builder struct {
	proj     *ProjectionMap
	where    []predicate
	order    []SortField
	fallback []SortField
}

// NewBuilder starts a query over proj. defaultSort applies when OrderBy is
// never called.
func NewBuilder(proj *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{proj: proj, fallback: defaultSort}
}

// OrderBy replaces the default ordering.
func (b *Builder) OrderBy(fields ...SortField) *Builder {
	b.order = fields
	return b
}

func (b *Builder) WhereEquals(field string, value any) *Builder {
	if isNil(value) {
		return b
	}
	col := b.proj.Column(field)
	b.where = append(b.where, func(bind func(any) string) string {
		return col + " = " + bind(value)
	})
	return b
}

// WhereContains matches a case-insensitive substring.
func (b *Builder) WhereContains(field string, value *string) *Builder {
	if value == nil || *value == "" {
		return b
	}
	col := b.proj.Column(field)
	pattern := "%" + *value + "%"
	b.where = append(b.where, func(bind func(any) string) string {
		return col + " ILIKE " + bind(pattern)
	})
	return b
}

// WhereSearch matches a case-insensitive substring in any of fields.
func (b *Builder) WhereSearch(search *string, fields ...string) *Builder {
	if search == nil || *search == "" || len(fields) == 0 {
		return b
	}
	pattern := "%" + *search + "%"
	b.where = append(b.where, func(bind func(any) string) string {
		terms := make([]string, len(fields))
		for i, f := range fields {
			terms[i] = b.proj.Column(f) + " ILIKE " + bind(pattern)
		}
		return "(" + strings.Join(terms, " OR ") + ")"
	})
	return b
}

// Build renders the statement with $n placeholders and their arguments.
func (b *Builder) Build() (string, []any) {
	var (
		sb   strings.Builder
		args []any
	)

	bind := func(arg any) string {
		args = append(args, arg)
		return "$" + strconv.Itoa(len(args))
	}

	sb.WriteString("SELECT " + b.proj.Columns() + " FROM " + b.proj.From())

	for i, p := range b.where {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		sb.WriteString(p(bind))
	}

	sb.WriteString(b.orderClause())
	return sb.String(), args
}

// BuildSingle selects the row whose idField equals id. Filters and ordering
// are ignored.
func (b *Builder) BuildSingle(idField string, id any) (string, []any) {
	return "SELECT " + b.proj.Columns() + " FROM " + b.proj.From() +
		" WHERE " + b.proj.Column(idField) + " = $1", []any{id}
}

func (b *Builder) orderClause() string {
	fields := b.order
	if len(fields) == 0 {
		fields = b.fallback
	}
	if len(fields) == 0 {
		return ""
	}

	terms := make([]string, len(fields))
	for i, f := range fields {
		dir := " ASC"
		if f.Descending {
			dir = " DESC"
		}
		terms[i] = b.proj.Column(f.Field) + dir
	}
	return " ORDER BY " + strings.Join(terms, ", ")
}

// isNil catches typed nils such as (*string)(nil) wrapped in an interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

package query

import "strings"

// Expr is a node of the predicate tree the query builder assembles before
// anything touches the database. Leaves hold a SQL fragment with `?`
// placeholders plus the values bound to them; composites combine children
// with AND/OR. User-supplied values only ever travel through Args, never
// through the fragment text.
type Expr struct {
	logical  string // "AND" or "OR"; empty for leaves
	children []*Expr
	sql      string
	args     []any
}

func Leaf(sql string, args ...any) *Expr {
	return &Expr{sql: sql, args: args}
}

func And(children ...*Expr) *Expr {
	return composite("AND", children)
}

func Or(children ...*Expr) *Expr {
	return composite("OR", children)
}

func composite(logical string, children []*Expr) *Expr {
	kept := make([]*Expr, 0, len(children))
	for _, c := range children {
		if c != nil {
			kept = append(kept, c)
		}
	}
	if len(kept) == 1 {
		return kept[0]
	}
	return &Expr{logical: logical, children: kept}
}

// Build lowers the tree to a SQL condition string and its bound arguments.
// An empty tree lowers to an empty condition (match everything).
func (e *Expr) Build() (string, []any) {
	if e == nil {
		return "", nil
	}
	if e.logical == "" {
		return e.sql, e.args
	}
	if len(e.children) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(e.children))
	var args []any
	for _, c := range e.children {
		sql, childArgs := c.Build()
		if sql == "" {
			continue
		}
		parts = append(parts, "("+sql+")")
		args = append(args, childArgs...)
	}
	if len(parts) == 0 {
		return "", nil
	}
	return strings.Join(parts, " "+e.logical+" "), args
}

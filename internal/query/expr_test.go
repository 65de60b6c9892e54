package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpr_LeafBuild(t *testing.T) {
	t.Parallel()

	sql, args := Leaf("products.published = ?", true).Build()
	assert.Equal(t, "products.published = ?", sql)
	assert.Equal(t, []any{true}, args)
}

func TestExpr_AndJoinsWithParens(t *testing.T) {
	t.Parallel()

	e := And(
		Leaf("a = ?", 1),
		Leaf("b = ?", 2),
	)
	sql, args := e.Build()
	assert.Equal(t, "(a = ?) AND (b = ?)", sql)
	assert.Equal(t, []any{1, 2}, args)
}

func TestExpr_OrNestedInAnd(t *testing.T) {
	t.Parallel()

	e := And(
		Leaf("a = ?", 1),
		Or(Leaf("b = ?", 2), Leaf("c = ?", 3)),
	)
	sql, args := e.Build()
	assert.Equal(t, "(a = ?) AND ((b = ?) OR (c = ?))", sql)
	assert.Equal(t, []any{1, 2, 3}, args)
}

func TestExpr_SingleChildCollapses(t *testing.T) {
	t.Parallel()

	sql, args := And(Leaf("a = ?", 1)).Build()
	assert.Equal(t, "a = ?", sql)
	assert.Equal(t, []any{1}, args)
}

func TestExpr_NilChildrenDropped(t *testing.T) {
	t.Parallel()

	e := And(Leaf("a = ?", 1), nil, Leaf("b = ?", 2), nil)
	sql, args := e.Build()
	assert.Equal(t, "(a = ?) AND (b = ?)", sql)
	assert.Equal(t, []any{1, 2}, args)
}

func TestExpr_EmptyBuildsToNothing(t *testing.T) {
	t.Parallel()

	sql, args := And().Build()
	require.Empty(t, sql)
	require.Empty(t, args)

	var nilExpr *Expr
	sql, args = nilExpr.Build()
	require.Empty(t, sql)
	require.Empty(t, args)
}

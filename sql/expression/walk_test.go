package expression

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.in/src-d/go-distsql.v0/sql"
)

func TestInspect(t *testing.T) {
	require := require.New(t)

	e := NewPlus(
		NewGetField(0, sql.Int64, "a", false),
		NewMult(
			NewLiteral(int64(2), sql.Int64),
			NewGetField(1, sql.Int64, "b", false),
		),
	)

	var visited []string
	Inspect(e, func(e sql.Expression) bool {
		if e == nil {
			return false
		}
		visited = append(visited, e.String())
		return true
	})

	require.Equal([]string{
		"(a + (2 * b))",
		"a",
		"(2 * b)",
		"2",
		"b",
	}, visited)
}

func TestInspectPrune(t *testing.T) {
	require := require.New(t)

	e := NewPlus(
		NewMult(
			NewLiteral(int64(2), sql.Int64),
			NewGetField(0, sql.Int64, "a", false),
		),
		NewGetField(1, sql.Int64, "b", false),
	)

	var visited []string
	Inspect(e, func(e sql.Expression) bool {
		if e == nil {
			return false
		}
		visited = append(visited, e.String())
		// Do not descend into the multiplication.
		_, mult := e.(*Arithmetic)
		return !mult || e.String() != "(2 * a)"
	})

	require.Equal([]string{
		"((2 * a) + b)",
		"(2 * a)",
		"b",
	}, visited)
}

type countingVisitor struct {
	nodes int
	nils  int
}

func (v *countingVisitor) Visit(e sql.Expression) Visitor {
	if e == nil {
		v.nils++
		return nil
	}
	v.nodes++
	return v
}

func TestWalk(t *testing.T) {
	require := require.New(t)

	e := NewAnd(
		NewGetField(0, sql.Boolean, "x", false),
		NewNot(NewGetField(1, sql.Boolean, "y", false)),
	)

	v := new(countingVisitor)
	Walk(v, e)

	// And, x, Not and y, each followed by a closing Visit(nil).
	require.Equal(4, v.nodes)
	require.Equal(4, v.nils)
}

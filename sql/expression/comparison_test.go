package expression

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.in/src-d/go-distsql.v0/sql"
)

func TestComparisons(t *testing.T) {
	a := NewGetField(0, sql.Int64, "a", true)
	b := NewGetField(1, sql.Int64, "b", true)

	testCases := []struct {
		name     string
		expr     sql.Expression
		row      sql.Row
		expected interface{}
	}{
		{"equals", NewEquals(a, b), sql.NewRow(int64(1), int64(1)), true},
		{"not equals on equal values", NewNotEquals(a, b), sql.NewRow(int64(1), int64(1)), false},
		{"not equals", NewNotEquals(a, b), sql.NewRow(int64(1), int64(2)), true},
		{"less than", NewLessThan(a, b), sql.NewRow(int64(1), int64(2)), true},
		{"less than on greater value", NewLessThan(a, b), sql.NewRow(int64(3), int64(2)), false},
		{"greater than", NewGreaterThan(a, b), sql.NewRow(int64(3), int64(2)), true},
		{"less than or equal", NewLessThanOrEqual(a, b), sql.NewRow(int64(2), int64(2)), true},
		{"greater than or equal", NewGreaterThanOrEqual(a, b), sql.NewRow(int64(2), int64(2)), true},
		{"greater than or equal on smaller value", NewGreaterThanOrEqual(a, b), sql.NewRow(int64(1), int64(2)), false},
		{"null left operand", NewEquals(a, b), sql.NewRow(nil, int64(1)), nil},
		{"null right operand", NewLessThan(a, b), sql.NewRow(int64(1), nil), nil},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, eval(t, tt.expr, tt.row))
		})
	}
}

func TestComparisonMixedTypes(t *testing.T) {
	require := require.New(t)

	// When the sides have different numeric types both are compared as
	// doubles.
	e := NewEquals(
		NewLiteral(int64(2), sql.Int64),
		NewLiteral(float64(2.0), sql.Float64),
	)
	require.Equal(true, eval(t, e, nil))

	e = NewGreaterThan(
		NewLiteral(float64(2.5), sql.Float64),
		NewLiteral(int64(2), sql.Int64),
	)
	require.Equal(true, eval(t, e, nil))
}

func TestComparisonText(t *testing.T) {
	require := require.New(t)

	e := NewLessThan(
		NewLiteral("a", sql.Text),
		NewLiteral("b", sql.Text),
	)
	require.Equal(true, eval(t, e, nil))
}

func TestComparisonType(t *testing.T) {
	require := require.New(t)

	e := NewEquals(
		NewLiteral(int64(1), sql.Int64),
		NewLiteral(int64(1), sql.Int64),
	)
	require.Equal(sql.Boolean, e.Type())
}

func TestComparisonString(t *testing.T) {
	require := require.New(t)

	a := NewGetField(0, sql.Int64, "a", true)
	b := NewGetField(1, sql.Int64, "b", true)

	require.Equal("a = b", NewEquals(a, b).String())
	require.Equal("a != b", NewNotEquals(a, b).String())
	require.Equal("a < b", NewLessThan(a, b).String())
	require.Equal("a > b", NewGreaterThan(a, b).String())
	require.Equal("a <= b", NewLessThanOrEqual(a, b).String())
	require.Equal("a >= b", NewGreaterThanOrEqual(a, b).String())
}

func TestComparisonWithChildren(t *testing.T) {
	require := require.New(t)

	e := NewEquals(
		NewLiteral(int64(1), sql.Int64),
		NewLiteral(int64(2), sql.Int64),
	)

	_, err := e.WithChildren(NewLiteral(int64(1), sql.Int64))
	require.True(sql.ErrInvalidChildrenNumber.Is(err))

	ne, err := e.WithChildren(
		NewLiteral(int64(3), sql.Int64),
		NewLiteral(int64(3), sql.Int64),
	)
	require.NoError(err)
	require.Equal(true, eval(t, ne, nil))
}

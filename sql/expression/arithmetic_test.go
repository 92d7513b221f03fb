package expression

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.in/src-d/go-distsql.v0/sql"
)

func TestArithmetic(t *testing.T) {
	testCases := []struct {
		name     string
		expr     sql.Expression
		row      sql.Row
		expected interface{}
	}{
		{
			"1 + 2",
			NewPlus(
				NewLiteral(int64(1), sql.Int64),
				NewLiteral(int64(2), sql.Int64),
			),
			nil,
			int64(3),
		},
		{
			"int plus float is a float",
			NewPlus(
				NewLiteral(int64(1), sql.Int64),
				NewLiteral(float64(2.5), sql.Float64),
			),
			nil,
			float64(3.5),
		},
		{
			"5 - 3",
			NewMinus(
				NewLiteral(int64(5), sql.Int64),
				NewLiteral(int64(3), sql.Int64),
			),
			nil,
			int64(2),
		},
		{
			"4 * 2",
			NewMult(
				NewLiteral(int64(4), sql.Int64),
				NewLiteral(int64(2), sql.Int64),
			),
			nil,
			int64(8),
		},
		{
			"division is always a float",
			NewDiv(
				NewLiteral(int64(5), sql.Int64),
				NewLiteral(int64(2), sql.Int64),
			),
			nil,
			float64(2.5),
		},
		{
			"division by zero is null",
			NewDiv(
				NewLiteral(int64(1), sql.Int64),
				NewLiteral(int64(0), sql.Int64),
			),
			nil,
			nil,
		},
		{
			"null left operand",
			NewPlus(
				NewLiteral(nil, sql.Null),
				NewLiteral(int64(1), sql.Int64),
			),
			nil,
			nil,
		},
		{
			"null right operand",
			NewMinus(
				NewLiteral(int64(1), sql.Int64),
				NewLiteral(nil, sql.Null),
			),
			nil,
			nil,
		},
		{
			"field values",
			NewMult(
				NewGetField(0, sql.Int64, "a", false),
				NewGetField(1, sql.Int64, "b", false),
			),
			sql.NewRow(int64(6), int64(7)),
			int64(42),
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, eval(t, tt.expr, tt.row))
		})
	}
}

func TestArithmeticType(t *testing.T) {
	require := require.New(t)

	intLit := NewLiteral(int64(1), sql.Int64)
	floatLit := NewLiteral(float64(1), sql.Float64)

	require.Equal(sql.Int64, NewPlus(intLit, intLit).Type())
	require.Equal(sql.Float64, NewPlus(intLit, floatLit).Type())
	require.Equal(sql.Float64, NewDiv(intLit, intLit).Type())
}

func TestArithmeticString(t *testing.T) {
	require := require.New(t)

	e := NewPlus(
		NewGetFieldWithTable(0, sql.Int64, "t", "a", false),
		NewLiteral(int64(1), sql.Int64),
	)
	require.Equal("(t.a + 1)", e.String())
}

func TestArithmeticWithChildren(t *testing.T) {
	require := require.New(t)

	e := NewPlus(
		NewLiteral(int64(1), sql.Int64),
		NewLiteral(int64(2), sql.Int64),
	)

	_, err := e.WithChildren(NewLiteral(int64(1), sql.Int64))
	require.True(sql.ErrInvalidChildrenNumber.Is(err))

	ne, err := e.WithChildren(
		NewLiteral(int64(3), sql.Int64),
		NewLiteral(int64(4), sql.Int64),
	)
	require.NoError(err)
	require.Equal(int64(7), eval(t, ne, nil))
}

func TestUnaryMinus(t *testing.T) {
	testCases := []struct {
		name     string
		child    sql.Expression
		expected interface{}
	}{
		{"int", NewLiteral(int64(1), sql.Int64), int64(-1)},
		{"float", NewLiteral(float64(2.5), sql.Float64), float64(-2.5)},
		{"text number", NewLiteral("3", sql.Text), float64(-3)},
		{"null", NewLiteral(nil, sql.Null), nil},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			e := NewUnaryMinus(tt.child)
			require.Equal(t, tt.expected, eval(t, e, nil))
		})
	}
}

func TestUnaryMinusString(t *testing.T) {
	require := require.New(t)

	e := NewUnaryMinus(NewGetField(0, sql.Int64, "a", false))
	require.Equal("-a", e.String())
}

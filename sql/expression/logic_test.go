package expression

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.in/src-d/go-distsql.v0/sql"
)

func TestAnd(t *testing.T) {
	testCases := []struct {
		name     string
		left     interface{}
		right    interface{}
		expected interface{}
	}{
		{"both true", true, true, true},
		{"left false", false, true, false},
		{"right false", true, false, false},
		{"both false", false, false, false},
		{"null and true is null", nil, true, nil},
		{"null and false is false", nil, false, false},
		{"both null", nil, nil, nil},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			e := NewAnd(
				NewLiteral(tt.left, sql.Boolean),
				NewLiteral(tt.right, sql.Boolean),
			)
			require.Equal(t, tt.expected, eval(t, e, nil))
		})
	}
}

func TestOr(t *testing.T) {
	testCases := []struct {
		name     string
		left     interface{}
		right    interface{}
		expected interface{}
	}{
		{"both true", true, true, true},
		{"left true", true, false, true},
		{"right true", false, true, true},
		{"both false", false, false, false},
		{"null or false is null", nil, false, nil},
		{"null or true is true", nil, true, true},
		{"both null", nil, nil, nil},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			e := NewOr(
				NewLiteral(tt.left, sql.Boolean),
				NewLiteral(tt.right, sql.Boolean),
			)
			require.Equal(t, tt.expected, eval(t, e, nil))
		})
	}
}

func TestJoinAnd(t *testing.T) {
	require := require.New(t)

	require.Nil(JoinAnd())

	lit := NewLiteral(true, sql.Boolean)
	require.Equal(lit, JoinAnd(lit))

	e := JoinAnd(
		NewGetField(0, sql.Boolean, "a", false),
		NewGetField(1, sql.Boolean, "b", false),
		NewGetField(2, sql.Boolean, "c", false),
	)
	require.Equal("((a AND b) AND c)", e.String())
	require.Equal(true, eval(t, e, sql.NewRow(true, true, true)))
	require.Equal(false, eval(t, e, sql.NewRow(true, false, true)))
}

func TestAndOrString(t *testing.T) {
	require := require.New(t)

	a := NewGetField(0, sql.Boolean, "a", false)
	b := NewGetField(1, sql.Boolean, "b", false)

	require.Equal("(a AND b)", NewAnd(a, b).String())
	require.Equal("(a OR b)", NewOr(a, b).String())
}

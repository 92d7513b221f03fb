package aggregation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.in/src-d/go-distsql.v0/sql"
	"gopkg.in/src-d/go-distsql.v0/sql/expression"
)

func TestSumEval(t *testing.T) {
	testCases := []struct {
		name     string
		rows     []sql.Row
		expected interface{}
	}{
		{
			"string int values",
			[]sql.Row{{"1"}, {"2"}, {"3"}, {"4"}},
			float64(10),
		},
		{
			"string float values",
			[]sql.Row{{"1.5"}, {"2"}, {"3"}, {"4"}},
			float64(10.5),
		},
		{
			"int values",
			[]sql.Row{{1}, {2}, {3}},
			float64(6),
		},
		{
			"float values",
			[]sql.Row{{1.}, {2.5}},
			float64(3.5),
		},
		{
			"no rows",
			nil,
			nil,
		},
		{
			"nil values",
			[]sql.Row{{nil}, {nil}},
			nil,
		},
		{
			"int and nil values",
			[]sql.Row{{1}, {2}, {nil}},
			float64(3),
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			ctx := sql.NewEmptyContext()

			m := NewSum(expression.NewGetField(0, sql.Float64, "n", true))
			b := m.NewBuffer()
			for _, row := range tt.rows {
				require.NoError(m.Update(ctx, b, row))
			}

			require.Equal(tt.expected, eval(t, m, b))
		})
	}
}

func TestSumMerge(t *testing.T) {
	require := require.New(t)
	ctx := sql.NewEmptyContext()

	m := NewSum(expression.NewGetField(0, sql.Float64, "n", true))

	b1 := m.NewBuffer()
	for _, n := range []float64{1, 2, 3} {
		require.NoError(m.Update(ctx, b1, sql.NewRow(n)))
	}

	b2 := m.NewBuffer()
	for _, n := range []float64{4, 5} {
		require.NoError(m.Update(ctx, b2, sql.NewRow(n)))
	}

	require.NoError(m.Merge(ctx, b1, b2))
	require.Equal(float64(15), eval(t, m, b1))

	// merging an empty partial keeps the buffer as is
	require.NoError(m.Merge(ctx, b1, m.NewBuffer()))
	require.Equal(float64(15), eval(t, m, b1))

	// merging into an empty buffer adopts the partial sum
	empty := m.NewBuffer()
	require.NoError(m.Merge(ctx, empty, b2))
	require.Equal(float64(9), eval(t, m, empty))
}

func TestSumSerializeBuffer(t *testing.T) {
	require := require.New(t)
	ctx := sql.NewEmptyContext()

	m := NewSum(expression.NewGetField(0, sql.Float64, "n", true))

	b := m.NewBuffer()
	require.NoError(m.Update(ctx, b, sql.NewRow(1.5)))
	require.NoError(m.Update(ctx, b, sql.NewRow(2.25)))

	buf := make([]byte, m.StateSize())
	require.NoError(m.SerializeBuffer(b, buf, 0))
	restored, err := m.DeserializeBuffer(buf, 0)
	require.NoError(err)
	require.Equal(float64(3.75), eval(t, m, restored))

	// an empty buffer round trips to null, not zero
	require.NoError(m.SerializeBuffer(m.NewBuffer(), buf, 0))
	restored, err = m.DeserializeBuffer(buf, 0)
	require.NoError(err)
	require.Nil(eval(t, m, restored))
}

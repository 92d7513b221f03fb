package aggregation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.in/src-d/go-distsql.v0/sql"
	"gopkg.in/src-d/go-distsql.v0/sql/expression"
)

func TestAvgString(t *testing.T) {
	require := require.New(t)

	avg := NewAvg(expression.NewGetField(0, sql.Int64, "col1", true))
	require.Equal("AVG(col1)", avg.String())
}

func TestAvgEvalEmptyBuffer(t *testing.T) {
	require := require.New(t)

	avg := NewAvg(expression.NewGetField(0, sql.Int64, "col1", true))
	require.Nil(eval(t, avg, avg.NewBuffer()))
}

func TestAvgEval(t *testing.T) {
	require := require.New(t)
	ctx := sql.NewEmptyContext()

	avg := NewAvg(expression.NewGetField(0, sql.Int64, "col1", true))
	b := avg.NewBuffer()

	for _, row := range []sql.Row{
		sql.NewRow(int64(1)),
		sql.NewRow(int64(2)),
		sql.NewRow(int64(6)),
	} {
		require.NoError(avg.Update(ctx, b, row))
	}

	require.Equal(float64(3), eval(t, avg, b))
}

func TestAvgNullsSkipped(t *testing.T) {
	require := require.New(t)
	ctx := sql.NewEmptyContext()

	avg := NewAvg(expression.NewGetField(0, sql.Int64, "col1", true))
	b := avg.NewBuffer()

	for _, row := range []sql.Row{
		sql.NewRow(int64(2)),
		sql.NewRow(nil),
		sql.NewRow(int64(4)),
		sql.NewRow(nil),
	} {
		require.NoError(avg.Update(ctx, b, row))
	}

	// null rows do not count towards the divisor
	require.Equal(float64(3), eval(t, avg, b))
}

func TestAvgMerge(t *testing.T) {
	require := require.New(t)
	ctx := sql.NewEmptyContext()

	avg := NewAvg(expression.NewGetField(0, sql.Int64, "col1", true))

	b1 := avg.NewBuffer()
	for _, n := range []int64{1, 2} {
		require.NoError(avg.Update(ctx, b1, sql.NewRow(n)))
	}

	b2 := avg.NewBuffer()
	for _, n := range []int64{3, 4, 5} {
		require.NoError(avg.Update(ctx, b2, sql.NewRow(n)))
	}

	require.NoError(avg.Merge(ctx, b1, b2))

	// the merged average weighs both sides by their row counts
	require.Equal(float64(3), eval(t, avg, b1))
}

func TestAvgSerializeBuffer(t *testing.T) {
	require := require.New(t)
	ctx := sql.NewEmptyContext()

	avg := NewAvg(expression.NewGetField(0, sql.Int64, "col1", true))
	b := avg.NewBuffer()
	require.NoError(avg.Update(ctx, b, sql.NewRow(int64(1))))
	require.NoError(avg.Update(ctx, b, sql.NewRow(int64(4))))

	buf := make([]byte, avg.StateSize())
	require.NoError(avg.SerializeBuffer(b, buf, 0))

	restored, err := avg.DeserializeBuffer(buf, 0)
	require.NoError(err)
	require.Equal(float64(2.5), eval(t, avg, restored))
}

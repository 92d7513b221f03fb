package aggregation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.in/src-d/go-distsql.v0/sql"
	"gopkg.in/src-d/go-distsql.v0/sql/expression"
)

func TestCountString(t *testing.T) {
	require := require.New(t)

	c := NewCount(expression.NewLiteral("foo", sql.Text))
	require.Equal(`COUNT("foo")`, c.String())
}

func TestCountEval(t *testing.T) {
	require := require.New(t)
	ctx := sql.NewEmptyContext()

	c := NewCount(expression.NewLiteral(int64(1), sql.Int64))
	b := c.NewBuffer()
	require.Equal(int64(0), eval(t, c, b))

	require.NoError(c.Update(ctx, b, nil))
	require.NoError(c.Update(ctx, b, sql.NewRow("foo")))
	require.NoError(c.Update(ctx, b, sql.NewRow(1)))
	require.NoError(c.Update(ctx, b, sql.NewRow(nil)))
	require.NoError(c.Update(ctx, b, sql.NewRow(1, 2, 3)))
	require.Equal(int64(5), eval(t, c, b))

	b2 := c.NewBuffer()
	require.NoError(c.Update(ctx, b2, nil))
	require.NoError(c.Update(ctx, b2, sql.NewRow("foo")))
	require.NoError(c.Merge(ctx, b, b2))
	require.Equal(int64(7), eval(t, c, b))
}

func TestCountEvalStar(t *testing.T) {
	require := require.New(t)
	ctx := sql.NewEmptyContext()

	c := NewCount(expression.NewStar())
	b := c.NewBuffer()
	require.Equal(int64(0), eval(t, c, b))

	require.NoError(c.Update(ctx, b, nil))
	require.NoError(c.Update(ctx, b, sql.NewRow("foo")))
	require.NoError(c.Update(ctx, b, sql.NewRow(nil)))
	require.Equal(int64(3), eval(t, c, b))
}

func TestCountEvalNullSkipped(t *testing.T) {
	require := require.New(t)
	ctx := sql.NewEmptyContext()

	c := NewCount(expression.NewGetField(0, sql.Text, "t", true))
	b := c.NewBuffer()

	require.NoError(c.Update(ctx, b, sql.NewRow("foo")))
	require.Equal(int64(1), eval(t, c, b))

	require.NoError(c.Update(ctx, b, sql.NewRow(nil)))
	require.Equal(int64(1), eval(t, c, b))
}

func TestCountSerializeBuffer(t *testing.T) {
	require := require.New(t)
	ctx := sql.NewEmptyContext()

	c := NewCount(expression.NewStar())
	b := c.NewBuffer()
	for i := 0; i < 5; i++ {
		require.NoError(c.Update(ctx, b, sql.NewRow(i)))
	}

	buf := make([]byte, c.StateSize())
	require.NoError(c.SerializeBuffer(b, buf, 0))

	restored, err := c.DeserializeBuffer(buf, 0)
	require.NoError(err)
	require.Equal(int64(5), eval(t, c, restored))

	err = c.SerializeBuffer(b, buf, 1)
	require.Error(err)
	require.True(ErrStateBufferTooSmall.Is(err))
}

func TestCountDistinctEval(t *testing.T) {
	require := require.New(t)
	ctx := sql.NewEmptyContext()

	c := NewCountDistinct(expression.NewGetField(0, sql.Text, "t", true))
	b := c.NewBuffer()
	require.Equal(int64(0), eval(t, c, b))

	for _, row := range []sql.Row{
		sql.NewRow("a"),
		sql.NewRow("b"),
		sql.NewRow("a"),
		sql.NewRow(nil),
		sql.NewRow("c"),
		sql.NewRow("b"),
	} {
		require.NoError(c.Update(ctx, b, row))
	}

	require.Equal(int64(3), eval(t, c, b))
}

func TestCountDistinctMerge(t *testing.T) {
	require := require.New(t)
	ctx := sql.NewEmptyContext()

	c := NewCountDistinct(expression.NewGetField(0, sql.Text, "t", true))

	b1 := c.NewBuffer()
	for _, v := range []string{"a", "b", "c"} {
		require.NoError(c.Update(ctx, b1, sql.NewRow(v)))
	}

	b2 := c.NewBuffer()
	for _, v := range []string{"b", "c", "d"} {
		require.NoError(c.Update(ctx, b2, sql.NewRow(v)))
	}

	require.NoError(c.Merge(ctx, b1, b2))
	require.Equal(int64(4), eval(t, c, b1))
}

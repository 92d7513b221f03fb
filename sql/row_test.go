package sql

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRowCopy(t *testing.T) {
	require := require.New(t)

	row := NewRow("a", int64(1))
	copied := row.Copy()
	copied[0] = "b"

	require.Equal(Row{"a", int64(1)}, row)
	require.Equal(Row{"b", int64(1)}, copied)
}

func TestRowAppend(t *testing.T) {
	require := require.New(t)

	row := NewRow("a").Append(NewRow(int64(1), int64(2)))
	require.Equal(Row{"a", int64(1), int64(2)}, row)
}

func TestRowEquals(t *testing.T) {
	require := require.New(t)

	schema := Schema{
		{Name: "word", Type: Text},
		{Name: "count", Type: Int64},
	}

	eq, err := NewRow("a", int64(1)).Equals(NewRow("a", int64(1)), schema)
	require.NoError(err)
	require.True(eq)

	eq, err = NewRow("a", int64(1)).Equals(NewRow("a", int64(2)), schema)
	require.NoError(err)
	require.False(eq)

	eq, err = NewRow("a", int64(1)).Equals(NewRow("a"), schema)
	require.NoError(err)
	require.False(eq)
}

func TestRowsToRowIter(t *testing.T) {
	require := require.New(t)

	iter := RowsToRowIter(NewRow(int64(1)), NewRow(int64(2)))

	row, err := iter.Next()
	require.NoError(err)
	require.Equal(Row{int64(1)}, row)

	row, err = iter.Next()
	require.NoError(err)
	require.Equal(Row{int64(2)}, row)

	_, err = iter.Next()
	require.Equal(io.EOF, err)
	_, err = iter.Next()
	require.Equal(io.EOF, err)

	require.NoError(iter.Close())
}

func TestRowIterToRows(t *testing.T) {
	require := require.New(t)

	rows, err := RowIterToRows(RowsToRowIter(NewRow(int64(1)), NewRow(int64(2))))
	require.NoError(err)
	require.Equal([]Row{{int64(1)}, {int64(2)}}, rows)

	rows, err = RowIterToRows(RowsToRowIter())
	require.NoError(err)
	require.Empty(rows)

	// A failing iterator is closed before the error surfaces.
	failing := &failingRowIter{}
	_, err = RowIterToRows(failing)
	require.Error(err)
	require.True(failing.closed)
}

type failingRowIter struct {
	closed bool
}

func (i *failingRowIter) Next() (Row, error) {
	return nil, fmt.Errorf("broken iterator")
}

func (i *failingRowIter) Close() error {
	i.closed = true
	return nil
}

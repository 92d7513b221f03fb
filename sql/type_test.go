package sql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInt64(t *testing.T) {
	require := require.New(t)

	v, err := Int64.Convert(int32(7))
	require.NoError(err)
	require.Equal(int64(7), v)

	v, err = Int64.Convert("42")
	require.NoError(err)
	require.Equal(int64(42), v)

	v, err = Int64.Convert(nil)
	require.NoError(err)
	require.Nil(v)

	_, err = Int64.Convert("not a number")
	require.Error(err)

	cmp, err := Int64.Compare(int64(1), int64(2))
	require.NoError(err)
	require.Equal(-1, cmp)

	cmp, err = Int64.Compare(int64(5), int32(5))
	require.NoError(err)
	require.Equal(0, cmp)
}

func TestFloat64(t *testing.T) {
	require := require.New(t)

	v, err := Float64.Convert(int64(2))
	require.NoError(err)
	require.Equal(float64(2), v)

	v, err = Float64.Convert("2.5")
	require.NoError(err)
	require.Equal(2.5, v)

	cmp, err := Float64.Compare(2.5, int64(2))
	require.NoError(err)
	require.Equal(1, cmp)
}

func TestBoolean(t *testing.T) {
	require := require.New(t)

	v, err := Boolean.Convert(true)
	require.NoError(err)
	require.Equal(true, v)

	v, err = Boolean.Convert(1)
	require.NoError(err)
	require.Equal(true, v)

	v, err = Boolean.Convert(0)
	require.NoError(err)
	require.Equal(false, v)

	cmp, err := Boolean.Compare(false, true)
	require.NoError(err)
	require.Equal(-1, cmp)
}

func TestText(t *testing.T) {
	require := require.New(t)

	v, err := Text.Convert("foo")
	require.NoError(err)
	require.Equal("foo", v)

	v, err = Text.Convert(int64(7))
	require.NoError(err)
	require.Equal("7", v)

	cmp, err := Text.Compare("a", "b")
	require.NoError(err)
	require.Equal(-1, cmp)
}

func TestTimestamp(t *testing.T) {
	require := require.New(t)

	now := time.Now()
	v, err := Timestamp.Convert(now)
	require.NoError(err)
	require.Equal(now.UTC(), v)

	v, err = Timestamp.Convert("2020-03-01 12:34:56")
	require.NoError(err)
	require.Equal(
		time.Date(2020, 3, 1, 12, 34, 56, 0, time.UTC),
		v,
	)

	_, err = Timestamp.Convert("not a timestamp")
	require.True(ErrInvalidType.Is(err))

	before := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	after := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	cmp, err := Timestamp.Compare(before, after)
	require.NoError(err)
	require.Equal(-1, cmp)

	cmp, err = Timestamp.Compare(after, after)
	require.NoError(err)
	require.Equal(0, cmp)
}

func TestNull(t *testing.T) {
	require := require.New(t)

	v, err := Null.Convert(nil)
	require.NoError(err)
	require.Nil(v)

	_, err = Null.Convert(int64(1))
	require.True(ErrInvalidType.Is(err))

	cmp, err := Null.Compare(nil, nil)
	require.NoError(err)
	require.Equal(0, cmp)
}

func TestCompareNulls(t *testing.T) {
	require := require.New(t)

	// Nulls sort first for every type.
	cmp, err := Int64.Compare(nil, int64(1))
	require.NoError(err)
	require.Equal(-1, cmp)

	cmp, err = Text.Compare("a", nil)
	require.NoError(err)
	require.Equal(1, cmp)

	cmp, err = Float64.Compare(nil, nil)
	require.NoError(err)
	require.Equal(0, cmp)
}

func TestIsNumberIsInteger(t *testing.T) {
	require := require.New(t)

	require.True(IsNumber(Int64))
	require.True(IsNumber(Float64))
	require.False(IsNumber(Text))

	require.True(IsInteger(Int64))
	require.False(IsInteger(Float64))
}

package aggstate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/src-d/go-distsql.v0/sql"
	"gopkg.in/src-d/go-distsql.v0/sql/expression/function/aggregation"
)

func TestLayoutPackUnpack(t *testing.T) {
	require := require.New(t)

	layout := &Layout{
		Cells: []sql.Type{
			sql.Int64,
			sql.Text,
			sql.Float64,
			sql.Boolean,
			sql.Timestamp,
		},
		States: []int{24, 8},
	}

	when := time.Date(2018, time.August, 6, 9, 30, 0, 0, time.UTC)
	cells := sql.NewRow(int64(-42), "region west", 3.5, true, when)

	record, offsets, err := layout.Pack(cells)
	require.NoError(err)
	require.Len(offsets, 2)
	require.Equal(offsets[0]+24, offsets[1])
	require.Len(record, offsets[1]+8)

	got, gotOffsets, err := layout.Unpack(record)
	require.NoError(err)
	require.Equal(cells, got)
	require.Equal(offsets, gotOffsets)
}

func TestLayoutPackNulls(t *testing.T) {
	require := require.New(t)

	layout := &Layout{
		Cells: []sql.Type{sql.Int64, sql.Text, sql.Null},
	}

	record, _, err := layout.Pack(sql.NewRow(nil, nil, nil))
	require.NoError(err)
	require.Len(record, 3)

	cells, _, err := layout.Unpack(record)
	require.NoError(err)
	require.Equal(sql.NewRow(nil, nil, nil), cells)
}

func TestLayoutPackMismatch(t *testing.T) {
	require := require.New(t)

	layout := &Layout{Cells: []sql.Type{sql.Int64}}
	_, _, err := layout.Pack(sql.NewRow(int64(1), int64(2)))
	require.Error(err)
	require.True(ErrLayoutMismatch.Is(err))
}

func TestLayoutUnpackShortRecord(t *testing.T) {
	require := require.New(t)

	layout := &Layout{
		Cells:  []sql.Type{sql.Text},
		States: []int{24},
	}

	record, _, err := layout.Pack(sql.NewRow("some group key"))
	require.NoError(err)

	_, _, err = layout.Unpack(record[:len(record)-1])
	require.Error(err)
	require.True(ErrShortRecord.Is(err))

	_, _, err = layout.Unpack(record[:3])
	require.Error(err)
	require.True(ErrShortRecord.Is(err))
}

func TestLayoutStateRoundTrip(t *testing.T) {
	require := require.New(t)

	var v aggregation.OnlineVariance
	for _, value := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		v.Add(value)
	}

	layout := &Layout{
		Cells:  []sql.Type{sql.Text},
		States: []int{v.StateSize()},
	}

	record, offsets, err := layout.Pack(sql.NewRow("group a"))
	require.NoError(err)
	require.NoError(v.SerializeTo(record, offsets[0]))

	cells, offsets, err := layout.Unpack(record)
	require.NoError(err)
	require.Equal(sql.NewRow("group a"), cells)

	var got aggregation.OnlineVariance
	require.NoError(got.DeserializeFrom(record, offsets[0]))
	require.Equal(v.Count(), got.Count())
	require.Equal(v.Mean(), got.Mean())
	require.Equal(v.M2(), got.M2())
}

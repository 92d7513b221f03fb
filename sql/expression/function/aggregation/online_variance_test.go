package aggregation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOnlineVarianceAdd(t *testing.T) {
	require := require.New(t)

	var state OnlineVariance
	for _, v := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		state.Add(v)
	}

	require.Equal(uint64(8), state.Count())
	require.InDelta(5.0, state.Mean(), 1e-9)
	require.InDelta(32.0, state.M2(), 1e-9)
	require.InDelta(4.0, state.PopulationVariance(), 1e-9)
	require.InDelta(32.0/7.0, state.SampleVariance(), 1e-9)
}

func TestOnlineVarianceEmpty(t *testing.T) {
	require := require.New(t)

	var state OnlineVariance
	require.Equal(uint64(0), state.Count())
	require.Equal(0.0, state.Mean())
	require.Equal(0.0, state.M2())
	require.True(math.IsNaN(state.SampleVariance()))
	require.True(math.IsNaN(state.PopulationVariance()))
}

func TestOnlineVarianceSingleValue(t *testing.T) {
	require := require.New(t)

	var state OnlineVariance
	state.Add(42)

	require.Equal(uint64(1), state.Count())
	require.Equal(42.0, state.Mean())
	require.Equal(0.0, state.PopulationVariance())
	require.True(math.IsNaN(state.SampleVariance()))
}

func TestOnlineVarianceMerge(t *testing.T) {
	require := require.New(t)

	var whole OnlineVariance
	for _, v := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		whole.Add(v)
	}

	var left, right OnlineVariance
	for _, v := range []float64{2, 4, 4} {
		left.Add(v)
	}
	for _, v := range []float64{4, 5, 5, 7, 9} {
		right.Add(v)
	}

	require.NoError(left.Merge(&right))

	require.Equal(whole.Count(), left.Count())
	require.InDelta(whole.Mean(), left.Mean(), 1e-9)
	require.InDelta(whole.M2(), left.M2(), 1e-9)
	require.InDelta(whole.SampleVariance(), left.SampleVariance(), 1e-9)

	// right must not have been modified
	require.Equal(uint64(5), right.Count())
	require.InDelta(6.0, right.Mean(), 1e-9)
}

func TestOnlineVarianceMergeEmpty(t *testing.T) {
	require := require.New(t)

	var state OnlineVariance
	state.Add(1)
	state.Add(3)

	var empty OnlineVariance
	require.NoError(state.Merge(&empty))
	require.Equal(uint64(2), state.Count())
	require.InDelta(2.0, state.Mean(), 1e-9)

	// merging into an empty state adopts the other state
	var dst OnlineVariance
	require.NoError(dst.Merge(&state))
	require.Equal(uint64(2), dst.Count())
	require.InDelta(2.0, dst.Mean(), 1e-9)
	require.InDelta(state.M2(), dst.M2(), 1e-9)
}

func TestOnlineVarianceMergeOrder(t *testing.T) {
	require := require.New(t)

	chunks := [][]float64{
		{1e6, 1e6 + 1},
		{1e6 + 2},
		{1e6 + 3, 1e6 + 4, 1e6 + 5},
	}

	states := func() []*OnlineVariance {
		var ss []*OnlineVariance
		for _, chunk := range chunks {
			s := new(OnlineVariance)
			for _, v := range chunk {
				s.Add(v)
			}
			ss = append(ss, s)
		}
		return ss
	}

	a := states()
	require.NoError(a[0].Merge(a[1]))
	require.NoError(a[0].Merge(a[2]))

	b := states()
	require.NoError(b[2].Merge(b[1]))
	require.NoError(b[2].Merge(b[0]))

	require.Equal(a[0].Count(), b[2].Count())
	require.InDelta(a[0].Mean(), b[2].Mean(), 1e-9)
	require.InDelta(a[0].M2(), b[2].M2(), 1e-9)
}

func TestOnlineVarianceMergeValues(t *testing.T) {
	require := require.New(t)

	var state OnlineVariance
	require.NoError(state.MergeValues(4, 2.5, 10))
	require.Equal(uint64(4), state.Count())
	require.Equal(2.5, state.Mean())
	require.Equal(10.0, state.M2())

	require.NoError(state.MergeValues(0, 100, 100))
	require.Equal(uint64(4), state.Count())
	require.Equal(2.5, state.Mean())
}

func TestOnlineVarianceCountOverflow(t *testing.T) {
	require := require.New(t)

	var state OnlineVariance
	state.Add(1)
	state.Add(2)

	err := state.MergeValues(math.MaxUint64, 0, 0)
	require.Error(err)
	require.True(ErrCountOverflow.Is(err))

	// the state is left untouched on failure
	require.Equal(uint64(2), state.Count())
}

func TestOnlineVarianceReinitialize(t *testing.T) {
	require := require.New(t)

	var state OnlineVariance
	state.Add(1)
	state.Reinitialize(7, 3.5, 12.25)

	require.Equal(uint64(7), state.Count())
	require.Equal(3.5, state.Mean())
	require.Equal(12.25, state.M2())
}

func TestOnlineVarianceSerialize(t *testing.T) {
	require := require.New(t)

	var state OnlineVariance
	for _, v := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		state.Add(v)
	}

	require.Equal(24, state.StateSize())

	buf := make([]byte, 24)
	require.NoError(state.SerializeTo(buf, 0))

	var restored OnlineVariance
	require.NoError(restored.DeserializeFrom(buf, 0))

	require.Equal(state.Count(), restored.Count())
	require.Equal(state.Mean(), restored.Mean())
	require.Equal(state.M2(), restored.M2())
}

func TestOnlineVarianceSerializeOffset(t *testing.T) {
	require := require.New(t)

	var state OnlineVariance
	state.Add(1.5)
	state.Add(2.5)

	buf := make([]byte, 64)
	require.NoError(state.SerializeTo(buf, 13))

	var restored OnlineVariance
	require.NoError(restored.DeserializeFrom(buf, 13))

	require.Equal(state.Count(), restored.Count())
	require.Equal(state.Mean(), restored.Mean())
	require.Equal(state.M2(), restored.M2())
}

func TestOnlineVarianceSerializeShortBuffer(t *testing.T) {
	require := require.New(t)

	var state OnlineVariance

	err := state.SerializeTo(make([]byte, 23), 0)
	require.Error(err)
	require.True(ErrStateBufferTooSmall.Is(err))

	err = state.SerializeTo(make([]byte, 24), 1)
	require.Error(err)
	require.True(ErrStateBufferTooSmall.Is(err))

	err = state.DeserializeFrom(make([]byte, 16), 0)
	require.Error(err)
	require.True(ErrStateBufferTooSmall.Is(err))
}

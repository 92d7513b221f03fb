package aggregation

import (
	"encoding/binary"
	"math"

	errors "gopkg.in/src-d/go-errors.v1"
)

const (
	countOffset = 0
	meanOffset  = 8
	m2Offset    = 16

	stateSize = 24
)

var (
	// ErrStateBufferTooSmall is returned when a serialized aggregation state
	// does not fit in the given buffer.
	ErrStateBufferTooSmall = errors.NewKind("need %d bytes at offset %d, buffer has %d")

	// ErrCountOverflow is returned when the combined observation count of two
	// merged states does not fit in 64 bits.
	ErrCountOverflow = errors.NewKind("merged observation count overflows: %d + %d")
)

// OnlineVariance accumulates the observation count, the running mean and the
// sum of squared differences from the mean (m2) of a stream of values using
// Welford's online algorithm. States computed over disjoint substreams can
// be combined with Merge, which lets the engine produce exact variances from
// partial aggregation rounds without ever buffering the input values.
//
// The zero value is an empty state ready for use.
type OnlineVariance struct {
	count uint64
	mean  float64
	m2    float64
}

// Add feeds a single value into the state.
func (v *OnlineVariance) Add(value float64) {
	v.count++
	delta := value - v.mean
	v.mean += delta / float64(v.count)
	v.m2 += delta * (value - v.mean)
}

// Merge combines the state of other into v. The other state is not
// modified. Merging an empty state is a no-op.
func (v *OnlineVariance) Merge(other *OnlineVariance) error {
	return v.MergeValues(other.count, other.mean, other.m2)
}

// MergeValues combines another state, given by its raw components, into v.
// Merging a zero count is a no-op. Values merged in any grouping or order
// produce the same state, modulo floating point rounding.
func (v *OnlineVariance) MergeValues(count uint64, mean, m2 float64) error {
	if count == 0 {
		return nil
	}

	newCount := count + v.count
	if newCount < count {
		return ErrCountOverflow.New(count, v.count)
	}

	newMean := ((float64(count) * mean) + (float64(v.count) * v.mean)) / float64(newCount)
	delta := mean - v.mean
	v.m2 += m2 + delta*delta*float64(count)*float64(v.count)/float64(newCount)
	v.count = newCount
	v.mean = newMean

	return nil
}

// Count returns the number of values observed.
func (v *OnlineVariance) Count() uint64 { return v.count }

// Mean returns the mean of the values observed, or 0 for an empty state.
func (v *OnlineVariance) Mean() float64 { return v.mean }

// M2 returns the sum of squared differences from the mean.
func (v *OnlineVariance) M2() float64 { return v.m2 }

// SampleVariance returns m2/(count-1), or NaN when fewer than two values
// have been observed.
func (v *OnlineVariance) SampleVariance() float64 {
	if v.count < 2 {
		return math.NaN()
	}
	return v.m2 / float64(v.count-1)
}

// PopulationVariance returns m2/count, or NaN for an empty state.
func (v *OnlineVariance) PopulationVariance() float64 {
	if v.count == 0 {
		return math.NaN()
	}
	return v.m2 / float64(v.count)
}

// Reinitialize discards the current state and replaces it with the given
// raw components.
func (v *OnlineVariance) Reinitialize(count uint64, mean, m2 float64) {
	v.count = count
	v.mean = mean
	v.m2 = m2
}

// StateSize returns the number of bytes of the serialized state.
func (v *OnlineVariance) StateSize() int { return stateSize }

// SerializeTo writes the state into buf at the given offset using the fixed
// 24 byte little-endian layout: count at +0, mean at +8, m2 at +16.
func (v *OnlineVariance) SerializeTo(buf []byte, offset int) error {
	if offset < 0 || len(buf) < offset+stateSize {
		return ErrStateBufferTooSmall.New(stateSize, offset, len(buf))
	}

	binary.LittleEndian.PutUint64(buf[offset+countOffset:], v.count)
	binary.LittleEndian.PutUint64(buf[offset+meanOffset:], math.Float64bits(v.mean))
	binary.LittleEndian.PutUint64(buf[offset+m2Offset:], math.Float64bits(v.m2))

	return nil
}

// DeserializeFrom replaces the state with the one serialized in buf at the
// given offset, in the layout written by SerializeTo.
func (v *OnlineVariance) DeserializeFrom(buf []byte, offset int) error {
	if offset < 0 || len(buf) < offset+stateSize {
		return ErrStateBufferTooSmall.New(stateSize, offset, len(buf))
	}

	v.count = binary.LittleEndian.Uint64(buf[offset+countOffset:])
	v.mean = math.Float64frombits(binary.LittleEndian.Uint64(buf[offset+meanOffset:]))
	v.m2 = math.Float64frombits(binary.LittleEndian.Uint64(buf[offset+m2Offset:]))

	return nil
}

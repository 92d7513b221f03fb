// Package aggregation implements the aggregation functions of the engine
// on top of mergeable buffers: every function can combine the buffers of
// two partial aggregation rounds into one, so plans are free to aggregate
// partition slices independently and merge the results.
package aggregation

import (
	"gopkg.in/src-d/go-distsql.v0/sql"
)

// SerializableAggregation is an aggregation whose buffer can be packed into
// a fixed width byte record, so per group state can be laid out next to
// other state in a single buffer, spilled to disk and merged back later.
type SerializableAggregation interface {
	sql.Aggregation

	// StateSize returns the number of bytes SerializeBuffer writes.
	StateSize() int
	// SerializeBuffer packs the aggregation buffer into buf at the given
	// offset.
	SerializeBuffer(buffer sql.Row, buf []byte, offset int) error
	// DeserializeBuffer unpacks a buffer previously packed by
	// SerializeBuffer at the given offset of buf.
	DeserializeBuffer(buf []byte, offset int) (sql.Row, error)
}

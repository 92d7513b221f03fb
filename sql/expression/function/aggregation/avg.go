package aggregation

import (
	"encoding/binary"
	"fmt"
	"math"

	"gopkg.in/src-d/go-distsql.v0/sql"
	"gopkg.in/src-d/go-distsql.v0/sql/expression"
)

// Avg node to calculate the average from numeric column. The buffer keeps
// the running sum and the number of non null rows, so partial buffers merge
// without losing precision to intermediate averages.
type Avg struct {
	expression.UnaryExpression
}

// NewAvg creates a new Avg node.
func NewAvg(e sql.Expression) *Avg {
	return &Avg{expression.UnaryExpression{Child: e}}
}

// FunctionName implements the FunctionExpression interface.
func (a *Avg) FunctionName() string {
	return "avg"
}

func (a *Avg) String() string {
	return fmt.Sprintf("AVG(%s)", a.Child)
}

// Type implements the Expression interface.
func (a *Avg) Type() sql.Type {
	return sql.Float64
}

// IsNullable implements the Expression interface.
func (a *Avg) IsNullable() bool {
	return true
}

// WithChildren implements the Expression interface.
func (a *Avg) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(a, len(children), 1)
	}
	return NewAvg(children[0]), nil
}

// NewBuffer implements the Aggregation interface.
func (a *Avg) NewBuffer() sql.Row {
	return sql.NewRow(float64(0), int64(0))
}

// Update implements the Aggregation interface.
func (a *Avg) Update(ctx *sql.Context, buffer, row sql.Row) error {
	v, err := a.Child.Eval(ctx, row)
	if err != nil {
		return err
	}

	if v == nil {
		return nil
	}

	val, err := sql.Float64.Convert(v)
	if err != nil {
		val = float64(0)
	}

	buffer[0] = buffer[0].(float64) + val.(float64)
	buffer[1] = buffer[1].(int64) + 1

	return nil
}

// Merge implements the Aggregation interface.
func (a *Avg) Merge(ctx *sql.Context, buffer, partial sql.Row) error {
	buffer[0] = buffer[0].(float64) + partial[0].(float64)
	buffer[1] = buffer[1].(int64) + partial[1].(int64)
	return nil
}

// Eval implements the Aggregation interface.
func (a *Avg) Eval(ctx *sql.Context, buffer sql.Row) (interface{}, error) {
	sum := buffer[0].(float64)
	rows := buffer[1].(int64)

	if rows == 0 {
		return nil, nil
	}

	return sum / float64(rows), nil
}

// StateSize implements the SerializableAggregation interface.
func (a *Avg) StateSize() int {
	return 16
}

// SerializeBuffer implements the SerializableAggregation interface.
func (a *Avg) SerializeBuffer(buffer sql.Row, buf []byte, offset int) error {
	if offset < 0 || len(buf) < offset+16 {
		return ErrStateBufferTooSmall.New(16, offset, len(buf))
	}

	binary.LittleEndian.PutUint64(buf[offset:], math.Float64bits(buffer[0].(float64)))
	binary.LittleEndian.PutUint64(buf[offset+8:], uint64(buffer[1].(int64)))
	return nil
}

// DeserializeBuffer implements the SerializableAggregation interface.
func (a *Avg) DeserializeBuffer(buf []byte, offset int) (sql.Row, error) {
	if offset < 0 || len(buf) < offset+16 {
		return nil, ErrStateBufferTooSmall.New(16, offset, len(buf))
	}

	return sql.NewRow(
		math.Float64frombits(binary.LittleEndian.Uint64(buf[offset:])),
		int64(binary.LittleEndian.Uint64(buf[offset+8:])),
	), nil
}

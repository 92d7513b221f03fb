package aggregation

import (
	"encoding/binary"
	"fmt"
	"math"

	"gopkg.in/src-d/go-distsql.v0/sql"
	"gopkg.in/src-d/go-distsql.v0/sql/expression"
)

// Sum aggregation returns the sum of all values in the selected column.
// It implements the Aggregation interface.
type Sum struct {
	expression.UnaryExpression
}

// NewSum returns a new Sum node.
func NewSum(e sql.Expression) *Sum {
	return &Sum{expression.UnaryExpression{Child: e}}
}

// FunctionName implements the FunctionExpression interface.
func (m *Sum) FunctionName() string {
	return "sum"
}

// Type returns the resultant type of the aggregation.
func (m *Sum) Type() sql.Type {
	return sql.Float64
}

// IsNullable returns whether the return value can be null.
func (m *Sum) IsNullable() bool {
	return true
}

func (m *Sum) String() string {
	return fmt.Sprintf("SUM(%s)", m.Child)
}

// WithChildren implements the Expression interface.
func (m *Sum) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(m, len(children), 1)
	}
	return NewSum(children[0]), nil
}

// NewBuffer creates a new buffer to compute the result.
func (m *Sum) NewBuffer() sql.Row {
	return sql.NewRow(nil)
}

// Update implements the Aggregation interface.
func (m *Sum) Update(ctx *sql.Context, buffer, row sql.Row) error {
	v, err := m.Child.Eval(ctx, row)
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

	if buffer[0] == nil {
		buffer[0] = float64(0)
	}

	buffer[0] = buffer[0].(float64) + val.(float64)

	return nil
}

// Merge implements the Aggregation interface.
func (m *Sum) Merge(ctx *sql.Context, buffer, partial sql.Row) error {
	if partial[0] == nil {
		return nil
	}

	if buffer[0] == nil {
		buffer[0] = float64(0)
	}

	buffer[0] = buffer[0].(float64) + partial[0].(float64)

	return nil
}

// Eval implements the Aggregation interface.
func (m *Sum) Eval(ctx *sql.Context, buffer sql.Row) (interface{}, error) {
	return buffer[0], nil
}

// StateSize implements the SerializableAggregation interface.
func (m *Sum) StateSize() int {
	return 9
}

// SerializeBuffer implements the SerializableAggregation interface. The
// first byte tells whether any value has been observed yet.
func (m *Sum) SerializeBuffer(buffer sql.Row, buf []byte, offset int) error {
	if offset < 0 || len(buf) < offset+9 {
		return ErrStateBufferTooSmall.New(9, offset, len(buf))
	}

	if buffer[0] == nil {
		buf[offset] = 0
		binary.LittleEndian.PutUint64(buf[offset+1:], 0)
		return nil
	}

	buf[offset] = 1
	binary.LittleEndian.PutUint64(buf[offset+1:], math.Float64bits(buffer[0].(float64)))
	return nil
}

// DeserializeBuffer implements the SerializableAggregation interface.
func (m *Sum) DeserializeBuffer(buf []byte, offset int) (sql.Row, error) {
	if offset < 0 || len(buf) < offset+9 {
		return nil, ErrStateBufferTooSmall.New(9, offset, len(buf))
	}

	if buf[offset] == 0 {
		return sql.NewRow(nil), nil
	}

	return sql.NewRow(math.Float64frombits(binary.LittleEndian.Uint64(buf[offset+1:]))), nil
}

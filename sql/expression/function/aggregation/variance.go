package aggregation

import (
	"fmt"
	"math"

	"gopkg.in/src-d/go-distsql.v0/sql"
	"gopkg.in/src-d/go-distsql.v0/sql/expression"
)

// varianceBase holds the shared machinery of the variance family of
// aggregations. All of them keep a single OnlineVariance state in the
// buffer and differ only in how the final value is derived from it.
type varianceBase struct {
	expression.UnaryExpression
}

// Type implements the Expression interface.
func (b *varianceBase) Type() sql.Type {
	return sql.Float64
}

// IsNullable implements the Expression interface.
func (b *varianceBase) IsNullable() bool {
	return true
}

// NewBuffer implements the Aggregation interface.
func (b *varianceBase) NewBuffer() sql.Row {
	return sql.NewRow(new(OnlineVariance))
}

// Update implements the Aggregation interface.
func (b *varianceBase) Update(ctx *sql.Context, buffer, row sql.Row) error {
	v, err := b.Child.Eval(ctx, row)
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

	buffer[0].(*OnlineVariance).Add(val.(float64))

	return nil
}

// Merge implements the Aggregation interface.
func (b *varianceBase) Merge(ctx *sql.Context, buffer, partial sql.Row) error {
	return buffer[0].(*OnlineVariance).Merge(partial[0].(*OnlineVariance))
}

// StateSize implements the SerializableAggregation interface.
func (b *varianceBase) StateSize() int {
	return stateSize
}

// SerializeBuffer implements the SerializableAggregation interface.
func (b *varianceBase) SerializeBuffer(buffer sql.Row, buf []byte, offset int) error {
	return buffer[0].(*OnlineVariance).SerializeTo(buf, offset)
}

// DeserializeBuffer implements the SerializableAggregation interface.
func (b *varianceBase) DeserializeBuffer(buf []byte, offset int) (sql.Row, error) {
	state := new(OnlineVariance)
	if err := state.DeserializeFrom(buf, offset); err != nil {
		return nil, err
	}
	return sql.NewRow(state), nil
}

// Variance returns the sample variance of all values in the selected
// column. It implements the Aggregation interface.
type Variance struct {
	varianceBase
}

// NewVariance returns a new Variance node.
func NewVariance(e sql.Expression) *Variance {
	return &Variance{varianceBase{expression.UnaryExpression{Child: e}}}
}

// FunctionName implements the FunctionExpression interface.
func (v *Variance) FunctionName() string {
	return "variance"
}

func (v *Variance) String() string {
	return fmt.Sprintf("VARIANCE(%s)", v.Child)
}

// Eval implements the Aggregation interface.
func (v *Variance) Eval(ctx *sql.Context, buffer sql.Row) (interface{}, error) {
	state := buffer[0].(*OnlineVariance)
	if state.Count() < 2 {
		return nil, nil
	}
	return state.SampleVariance(), nil
}

// WithChildren implements the Expression interface.
func (v *Variance) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(v, len(children), 1)
	}
	return NewVariance(children[0]), nil
}

// VarPop returns the population variance of all values in the selected
// column. It implements the Aggregation interface.
type VarPop struct {
	varianceBase
}

// NewVarPop returns a new VarPop node.
func NewVarPop(e sql.Expression) *VarPop {
	return &VarPop{varianceBase{expression.UnaryExpression{Child: e}}}
}

// FunctionName implements the FunctionExpression interface.
func (v *VarPop) FunctionName() string {
	return "var_pop"
}

func (v *VarPop) String() string {
	return fmt.Sprintf("VAR_POP(%s)", v.Child)
}

// Eval implements the Aggregation interface.
func (v *VarPop) Eval(ctx *sql.Context, buffer sql.Row) (interface{}, error) {
	state := buffer[0].(*OnlineVariance)
	if state.Count() == 0 {
		return nil, nil
	}
	return state.PopulationVariance(), nil
}

// WithChildren implements the Expression interface.
func (v *VarPop) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(v, len(children), 1)
	}
	return NewVarPop(children[0]), nil
}

// StdDev returns the sample standard deviation of all values in the
// selected column. It implements the Aggregation interface.
type StdDev struct {
	varianceBase
}

// NewStdDev returns a new StdDev node.
func NewStdDev(e sql.Expression) *StdDev {
	return &StdDev{varianceBase{expression.UnaryExpression{Child: e}}}
}

// FunctionName implements the FunctionExpression interface.
func (s *StdDev) FunctionName() string {
	return "stddev"
}

func (s *StdDev) String() string {
	return fmt.Sprintf("STDDEV(%s)", s.Child)
}

// Eval implements the Aggregation interface.
func (s *StdDev) Eval(ctx *sql.Context, buffer sql.Row) (interface{}, error) {
	state := buffer[0].(*OnlineVariance)
	if state.Count() < 2 {
		return nil, nil
	}
	return math.Sqrt(state.SampleVariance()), nil
}

// WithChildren implements the Expression interface.
func (s *StdDev) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(children), 1)
	}
	return NewStdDev(children[0]), nil
}

// StdDevPop returns the population standard deviation of all values in the
// selected column. It implements the Aggregation interface.
type StdDevPop struct {
	varianceBase
}

// NewStdDevPop returns a new StdDevPop node.
func NewStdDevPop(e sql.Expression) *StdDevPop {
	return &StdDevPop{varianceBase{expression.UnaryExpression{Child: e}}}
}

// FunctionName implements the FunctionExpression interface.
func (s *StdDevPop) FunctionName() string {
	return "stddev_pop"
}

func (s *StdDevPop) String() string {
	return fmt.Sprintf("STDDEV_POP(%s)", s.Child)
}

// Eval implements the Aggregation interface.
func (s *StdDevPop) Eval(ctx *sql.Context, buffer sql.Row) (interface{}, error) {
	state := buffer[0].(*OnlineVariance)
	if state.Count() == 0 {
		return nil, nil
	}
	return math.Sqrt(state.PopulationVariance()), nil
}

// WithChildren implements the Expression interface.
func (s *StdDevPop) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(children), 1)
	}
	return NewStdDevPop(children[0]), nil
}

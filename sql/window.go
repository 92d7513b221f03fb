package sql

import (
	"fmt"
	"strings"
)

// SortOrder represents the order of the sort (ascending or descending).
type SortOrder byte

const (
	// Ascending order.
	Ascending SortOrder = 1
	// Descending order.
	Descending SortOrder = 2
)

func (s SortOrder) String() string {
	switch s {
	case Ascending:
		return "ASC"
	case Descending:
		return "DESC"
	default:
		return "invalid SortOrder"
	}
}

// SortField is a field by which rows are sorted.
type SortField struct {
	// Column to order by.
	Column Expression
	// Order type.
	Order SortOrder
}

func (s SortField) String() string {
	return fmt.Sprintf("%s %s", s.Column, s.Order)
}

// SortFields is a list of SortField.
type SortFields []SortField

// ToExpressions returns the column expressions of the sort fields, in order.
func (sf SortFields) ToExpressions() []Expression {
	es := make([]Expression, len(sf))
	for i, f := range sf {
		es[i] = f.Column
	}
	return es
}

// FromExpressions returns a copy of the sort fields with the column
// expressions replaced by the given ones, which must be exactly as many as
// there are sort fields.
func (sf SortFields) FromExpressions(exprs []Expression) SortFields {
	fields := make(SortFields, len(sf))
	copy(fields, sf)
	for i := range fields {
		fields[i].Column = exprs[i]
	}
	return fields
}

// FrameBoundType is the kind of one bound of a window frame.
type FrameBoundType byte

const (
	// CurrentRow bounds the frame at the row being processed.
	CurrentRow FrameBoundType = iota
	// UnboundedPreceding extends the frame to the start of the partition.
	UnboundedPreceding
	// UnboundedFollowing extends the frame to the end of the partition.
	UnboundedFollowing
	// OffsetPreceding bounds the frame a given offset before the current
	// row. The offset expression is carried by the bound.
	OffsetPreceding
	// OffsetFollowing bounds the frame a given offset after the current
	// row. The offset expression is carried by the bound.
	OffsetFollowing
)

// FrameBound is one bound of a window frame. Offset is only set for the
// OffsetPreceding and OffsetFollowing bound types.
type FrameBound struct {
	Type   FrameBoundType
	Offset Expression
}

func (b FrameBound) String() string {
	switch b.Type {
	case CurrentRow:
		return "CURRENT ROW"
	case UnboundedPreceding:
		return "UNBOUNDED PRECEDING"
	case UnboundedFollowing:
		return "UNBOUNDED FOLLOWING"
	case OffsetPreceding:
		return fmt.Sprintf("%s PRECEDING", b.Offset)
	case OffsetFollowing:
		return fmt.Sprintf("%s FOLLOWING", b.Offset)
	default:
		return "invalid FrameBound"
	}
}

// WindowFrame bounds the subset of the partition a window function runs
// over. The end bound is optional; without it the frame ends at the
// current row.
type WindowFrame struct {
	Start FrameBound
	End   *FrameBound
}

func (f *WindowFrame) String() string {
	if f.End == nil {
		return fmt.Sprintf("rows %s", f.Start)
	}
	return fmt.Sprintf("rows between %s and %s", f.Start, *f.End)
}

// boundExpressions returns the offset expressions carried by the frame
// bounds, in start to end order.
func (f *WindowFrame) boundExpressions() []Expression {
	var es []Expression
	if f.Start.Offset != nil {
		es = append(es, f.Start.Offset)
	}
	if f.End != nil && f.End.Offset != nil {
		es = append(es, f.End.Offset)
	}
	return es
}

// fromExpressions returns a copy of the frame with its bound offsets
// replaced by the given expressions, which must be exactly as many as the
// frame currently carries.
func (f *WindowFrame) fromExpressions(exprs []Expression) *WindowFrame {
	nf := *f
	if nf.End != nil {
		end := *nf.End
		nf.End = &end
	}
	i := 0
	if nf.Start.Offset != nil {
		nf.Start.Offset = exprs[i]
		i++
	}
	if nf.End != nil && nf.End.Offset != nil {
		nf.End.Offset = exprs[i]
	}
	return &nf
}

// A Window specifies the window parameters of a window function.
type Window struct {
	PartitionBy []Expression
	OrderBy     SortFields
	Frame       *WindowFrame
}

// NewWindow creates a new window with the given partitioning, ordering and
// optional frame.
func NewWindow(partitionBy []Expression, orderBy []SortField, frame *WindowFrame) *Window {
	return &Window{PartitionBy: partitionBy, OrderBy: orderBy, Frame: frame}
}

func (w *Window) String() string {
	if w == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("over (")
	if len(w.PartitionBy) > 0 {
		sb.WriteString("partition by ")
		for i, e := range w.PartitionBy {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(e.String())
		}
	}
	if len(w.OrderBy) > 0 {
		if len(w.PartitionBy) > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString("order by ")
		for i, f := range w.OrderBy {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(f.String())
		}
	}
	if w.Frame != nil {
		sb.WriteString(" ")
		sb.WriteString(w.Frame.String())
	}
	sb.WriteString(")")
	return sb.String()
}

// ToExpressions returns all expressions of the window: the partition
// expressions, then the order by columns, then the frame bound offsets.
func (w *Window) ToExpressions() []Expression {
	if w == nil {
		return nil
	}
	es := make([]Expression, 0, len(w.PartitionBy)+len(w.OrderBy))
	es = append(es, w.PartitionBy...)
	es = append(es, w.OrderBy.ToExpressions()...)
	if w.Frame != nil {
		es = append(es, w.Frame.boundExpressions()...)
	}
	return es
}

// FromExpressions returns a copy of this window with its expressions
// replaced by the given ones, in the same order ToExpressions returns them.
func (w *Window) FromExpressions(exprs []Expression) (*Window, error) {
	if w == nil {
		if len(exprs) != 0 {
			return nil, ErrInvalidChildrenNumber.New(w, len(exprs), 0)
		}
		return nil, nil
	}

	want := len(w.ToExpressions())
	if len(exprs) != want {
		return nil, ErrInvalidChildrenNumber.New(w, len(exprs), want)
	}

	nw := *w
	nw.PartitionBy = exprs[:len(w.PartitionBy)]
	nw.OrderBy = w.OrderBy.FromExpressions(exprs[len(w.PartitionBy) : len(w.PartitionBy)+len(w.OrderBy)])
	if w.Frame != nil {
		nw.Frame = w.Frame.fromExpressions(exprs[len(w.PartitionBy)+len(w.OrderBy):])
	}
	return &nw, nil
}

package expression

import "gopkg.in/src-d/go-distsql.v0/sql"

// Star represents the selection of all available fields. This is just a
// placeholder node: the binder expands it to the fields of the scope before
// any analysis or execution runs.
type Star struct{}

// NewStar returns a new Star expression.
func NewStar() *Star {
	return new(Star)
}

// Resolved implements the Expression interface.
func (*Star) Resolved() bool {
	return false
}

// IsNullable implements the Expression interface.
func (*Star) IsNullable() bool {
	panic("star is just a placeholder node, but IsNullable was called")
}

// Type implements the Expression interface.
func (*Star) Type() sql.Type {
	panic("star is just a placeholder node, but Type was called")
}

func (*Star) String() string {
	return "*"
}

// Eval implements the Expression interface.
func (*Star) Eval(ctx *sql.Context, r sql.Row) (interface{}, error) {
	panic("star is just a placeholder node, but Eval was called")
}

// Children implements the Expression interface.
func (*Star) Children() []sql.Expression {
	return nil
}

// WithChildren implements the Expression interface.
func (s *Star) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(children), 0)
	}
	return s, nil
}

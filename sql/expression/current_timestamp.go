package expression

import (
	"gopkg.in/src-d/go-distsql.v0/sql"
)

// CurrentTimestamp returns the time the current query started executing.
// Every occurrence inside one query evaluates to the same instant, so the
// node is legal anywhere in an aggregation query without appearing in the
// grouping keys.
type CurrentTimestamp struct{}

// NewCurrentTimestamp creates a new CurrentTimestamp node.
func NewCurrentTimestamp() sql.Expression {
	return &CurrentTimestamp{}
}

// Children implements the Expression interface.
func (*CurrentTimestamp) Children() []sql.Expression { return nil }

// Resolved implements the Expression interface.
func (*CurrentTimestamp) Resolved() bool { return true }

// IsNullable implements the Expression interface.
func (*CurrentTimestamp) IsNullable() bool { return false }

// Type implements the Expression interface.
func (*CurrentTimestamp) Type() sql.Type { return sql.Timestamp }

func (*CurrentTimestamp) String() string { return "CURRENT_TIMESTAMP" }

// Eval implements the Expression interface.
func (*CurrentTimestamp) Eval(ctx *sql.Context, _ sql.Row) (interface{}, error) {
	return ctx.QueryTime().UTC(), nil
}

// WithChildren implements the Expression interface.
func (t *CurrentTimestamp) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(t, len(children), 0)
	}
	return t, nil
}

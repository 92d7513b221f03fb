package plan

import (
	"fmt"

	"gopkg.in/src-d/go-distsql.v0/sql"
)

// ResolvedTable represents a table of the catalog.
type ResolvedTable struct {
	sql.Table
}

// NewResolvedTable creates a new instance of ResolvedTable.
func NewResolvedTable(table sql.Table) *ResolvedTable {
	return &ResolvedTable{table}
}

// Resolved implements the Resolvable interface.
func (*ResolvedTable) Resolved() bool { return true }

// Children implements the Node interface.
func (*ResolvedTable) Children() []sql.Node { return nil }

func (t *ResolvedTable) String() string {
	return fmt.Sprintf("Table(%s)", t.Name())
}

// RowIter implements the Node interface. Partitions are iterated one
// after another; Exchange distributes them instead.
func (t *ResolvedTable) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	span, ctx := ctx.Span("plan.ResolvedTable")

	partitions, err := t.Table.Partitions(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}

	return sql.NewSpanIter(span, sql.NewTableRowIter(ctx, t.Table, partitions)), nil
}

// WithChildren implements the Node interface.
func (t *ResolvedTable) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(t, len(children), 0)
	}

	return t, nil
}

package plan

import (
	"context"
	"fmt"
	"io"

	opentracing "github.com/opentracing/opentracing-go"
	errors "gopkg.in/src-d/go-errors.v1"
	"golang.org/x/sync/errgroup"

	"gopkg.in/src-d/go-distsql.v0/sql"
)

// ErrNoPartitionable is returned when no partitionable table is found in
// the subtree of an exchange.
var ErrNoPartitionable = errors.NewKind("no partitionable table found in exchange subtree")

// Exchange runs its subtree once per partition of the underlying table,
// with the given level of parallelism, and funnels the rows of every
// partition into a single output. Row order across partitions is not
// preserved.
type Exchange struct {
	UnaryNode
	Parallelism int
}

// NewExchange creates a new Exchange node.
func NewExchange(parallelism int, child sql.Node) *Exchange {
	return &Exchange{
		UnaryNode:   UnaryNode{Child: child},
		Parallelism: parallelism,
	}
}

// RowIter implements the Node interface.
func (e *Exchange) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	var t sql.Table
	Inspect(e.Child, func(n sql.Node) bool {
		if table, ok := n.(*ResolvedTable); ok {
			t = table.Table
			return false
		}
		return true
	})
	if t == nil {
		return nil, ErrNoPartitionable.New()
	}

	span, ctx := ctx.Span("plan.Exchange", opentracing.Tags{
		"parallelism": e.Parallelism,
	})

	partitions, err := t.Partitions(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}

	return sql.NewSpanIter(span, newExchangeRowIter(ctx, e.Parallelism, partitions, e.Child)), nil
}

func (e *Exchange) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("Exchange(parallelism=%d)", e.Parallelism)
	_ = pr.WriteChildren(e.Child.String())
	return pr.String()
}

// WithChildren implements the Node interface.
func (e *Exchange) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(e, len(children), 1)
	}

	return NewExchange(e.Parallelism, children[0]), nil
}

type exchangeRowIter struct {
	ctx         *sql.Context
	parallelism int
	partitions  sql.PartitionIter
	tree        sql.Node

	cancel context.CancelFunc
	group  *errgroup.Group
	rows   chan sql.Row
}

func newExchangeRowIter(
	ctx *sql.Context,
	parallelism int,
	iter sql.PartitionIter,
	tree sql.Node,
) *exchangeRowIter {
	if parallelism < 1 {
		parallelism = 1
	}

	return &exchangeRowIter{
		ctx:         ctx,
		parallelism: parallelism,
		partitions:  iter,
		tree:        tree,
	}
}

func (it *exchangeRowIter) start() {
	ctx, cancel := it.ctx.NewSubContext()
	it.cancel = cancel

	group, gctx := ctx.NewErrgroup()
	it.group = group
	it.rows = make(chan sql.Row, it.parallelism)

	partitions := make(chan sql.Partition)
	group.Go(func() error {
		defer close(partitions)

		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			p, err := it.partitions.Next()
			if err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}

			select {
			case partitions <- p:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	for i := 0; i < it.parallelism; i++ {
		group.Go(func() error {
			for p := range partitions {
				if err := it.iterPartition(gctx, p); err != nil {
					return err
				}
			}
			return nil
		})
	}

	go func() {
		// The workers have stopped sending once Wait returns, whether
		// cleanly or not, so the output can be closed. Next surfaces the
		// group error after draining.
		_ = group.Wait()
		close(it.rows)
	}()
}

func (it *exchangeRowIter) iterPartition(ctx *sql.Context, p sql.Partition) error {
	node, err := TransformUp(it.tree, func(n sql.Node) (sql.Node, error) {
		if t, ok := n.(*ResolvedTable); ok {
			return NewExchangePartition(p, t.Table), nil
		}
		return n, nil
	})
	if err != nil {
		return err
	}

	rows, err := node.RowIter(ctx)
	if err != nil {
		return err
	}

	for {
		row, err := rows.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			_ = rows.Close()
			return err
		}

		select {
		case it.rows <- row:
		case <-ctx.Done():
			_ = rows.Close()
			return ctx.Err()
		}
	}

	return rows.Close()
}

func (it *exchangeRowIter) Next() (sql.Row, error) {
	if it.rows == nil {
		it.start()
	}

	row, ok := <-it.rows
	if !ok {
		if err := it.group.Wait(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}

	return row, nil
}

func (it *exchangeRowIter) Close() error {
	if it.cancel != nil {
		it.cancel()
		it.cancel = nil

		// Unblock any worker parked on the output channel so the group
		// can finish.
		for range it.rows {
		}
		_ = it.group.Wait()
	}

	return it.partitions.Close()
}

// ExchangePartition is a leaf node that iterates a single partition of a
// table. Exchange instantiates one per partition in place of the resolved
// table of its subtree.
type ExchangePartition struct {
	sql.Partition
	Table sql.Table
}

// NewExchangePartition creates a new ExchangePartition node.
func NewExchangePartition(p sql.Partition, table sql.Table) *ExchangePartition {
	return &ExchangePartition{p, table}
}

func (p *ExchangePartition) String() string {
	return fmt.Sprintf("Partition(%s)", string(p.Key()))
}

// Resolved implements the Resolvable interface.
func (ExchangePartition) Resolved() bool { return true }

// Children implements the Node interface.
func (ExchangePartition) Children() []sql.Node { return nil }

// Schema implements the Node interface.
func (p *ExchangePartition) Schema() sql.Schema {
	return p.Table.Schema()
}

// RowIter implements the Node interface.
func (p *ExchangePartition) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	return p.Table.PartitionRows(ctx, p.Partition)
}

// WithChildren implements the Node interface.
func (p *ExchangePartition) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(p, len(children), 0)
	}

	return p, nil
}

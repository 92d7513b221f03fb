package sql

import (
	"fmt"

	errors "gopkg.in/src-d/go-errors.v1"
)

// Nameable is something that has a name.
type Nameable interface {
	// Name returns the name.
	Name() string
}

// Tableable is something that belongs to a table.
type Tableable interface {
	// Table returns the table name.
	Table() string
}

// Resolvable is something that can be resolved or not.
type Resolvable interface {
	// Resolved returns whether the node is resolved.
	Resolved() bool
}

// Expression is a combination of one or more SQL expressions.
type Expression interface {
	Resolvable
	fmt.Stringer
	// Type returns the expression type.
	Type() Type
	// IsNullable returns whether the expression can be null.
	IsNullable() bool
	// Eval evaluates the given row and returns a result.
	Eval(ctx *Context, row Row) (interface{}, error)
	// Children returns the children expressions of this expression.
	Children() []Expression
	// WithChildren returns a copy of the expression with children replaced.
	// It must return an error if the number of children is different from
	// the current number of children. It must not modify the receiver.
	WithChildren(children ...Expression) (Expression, error)
}

// Aggregation implements an aggregation expression, where an aggregation
// takes one or more rows and produces exactly one value per group. The
// running state of a group lives in a buffer row so that partial buffers
// accumulated over disjoint subsets of the data can later be combined with
// Merge into the state the group would have reached in a single pass.
type Aggregation interface {
	Expression
	// NewBuffer creates a new zero-valued buffer to accumulate rows into.
	NewBuffer() Row
	// Update updates the given buffer with the given row.
	Update(ctx *Context, buffer, row Row) error
	// Merge merges a partial buffer into the given one. The partial buffer
	// is never mutated and may be merged into several targets.
	Merge(ctx *Context, buffer, partial Row) error
}

// FunctionExpression is an expression that represents a function call.
type FunctionExpression interface {
	Expression
	// FunctionName returns the name of the function.
	FunctionName() string
}

// FunctionMetadata answers questions about registered functions without
// instantiating them. It is the capability the aggregation analyzer consumes
// to tell aggregate calls apart from scalar ones.
type FunctionMetadata interface {
	// IsAggregateFunction returns whether the function with the given name
	// is an aggregate function.
	IsAggregateFunction(name string) bool
}

// Node is a node in the execution plan tree.
type Node interface {
	Resolvable
	fmt.Stringer
	// Schema of the node.
	Schema() Schema
	// Children nodes.
	Children() []Node
	// RowIter produces a row iterator from this node.
	RowIter(ctx *Context) (RowIter, error)
	// WithChildren returns a copy of the node with children replaced.
	// It must return an error if the number of children is different from
	// the current number of children.
	WithChildren(children ...Node) (Node, error)
}

// Expressioner is a node that contains expressions.
type Expressioner interface {
	// Expressions returns the list of expressions contained by the node.
	Expressions() []Expression
	// WithExpressions returns a copy of the node with expressions replaced.
	// It must return an error if the number of expressions is different
	// from the current number of expressions.
	WithExpressions(exprs ...Expression) (Node, error)
}

// Table represents a SQL table split in one or more partitions that can be
// iterated independently.
type Table interface {
	Nameable
	// Schema of the table.
	Schema() Schema
	// Partitions returns the partitions of the table.
	Partitions(ctx *Context) (PartitionIter, error)
	// PartitionRows returns the rows of the given partition.
	PartitionRows(ctx *Context, partition Partition) (RowIter, error)
}

// Partition is a slice of a table held and processed by exactly one task
// at a time.
type Partition interface {
	// Key of the partition, unique within its table.
	Key() []byte
}

// PartitionIter is an iterator that produces partitions.
type PartitionIter interface {
	// Next retrieves the next partition. It will return io.EOF after the
	// last one.
	Next() (Partition, error)
	// Close the iterator.
	Close() error
}

// ErrInvalidChildrenNumber is returned from WithChildren when the wrong
// number of children is given to a node or expression.
var ErrInvalidChildrenNumber = errors.NewKind("%T: invalid children number, got %d, expected %d")

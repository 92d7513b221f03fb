package plan

import (
	"strings"

	opentracing "github.com/opentracing/opentracing-go"

	"gopkg.in/src-d/go-distsql.v0/sql"
)

// Project is a projection of certain expressions from the rows of its
// child.
type Project struct {
	UnaryNode
	// Projections to apply on the rows of the child.
	Projections []sql.Expression
}

// NewProject creates a new projection.
func NewProject(projections []sql.Expression, child sql.Node) *Project {
	return &Project{
		UnaryNode:   UnaryNode{Child: child},
		Projections: projections,
	}
}

// Schema implements the Node interface.
func (p *Project) Schema() sql.Schema {
	s := make(sql.Schema, len(p.Projections))
	for i, e := range p.Projections {
		s[i] = schemaColumn(e)
	}
	return s
}

// Resolved implements the Resolvable interface.
func (p *Project) Resolved() bool {
	return p.UnaryNode.Resolved() && expressionsResolved(p.Projections...)
}

// RowIter implements the Node interface.
func (p *Project) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	span, ctx := ctx.Span("plan.Project", opentracing.Tags{
		"projections": len(p.Projections),
	})

	i, err := p.Child.RowIter(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}

	return sql.NewSpanIter(span, &projectIter{
		ctx:         ctx,
		projections: p.Projections,
		childIter:   i,
	}), nil
}

func (p *Project) String() string {
	pr := sql.NewTreePrinter()
	var exprs = make([]string, len(p.Projections))
	for i, expr := range p.Projections {
		exprs[i] = expr.String()
	}
	_ = pr.WriteNode("Project(%s)", strings.Join(exprs, ", "))
	_ = pr.WriteChildren(p.Child.String())
	return pr.String()
}

// Expressions implements the Expressioner interface.
func (p *Project) Expressions() []sql.Expression {
	return p.Projections
}

// WithChildren implements the Node interface.
func (p *Project) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(p, len(children), 1)
	}

	return NewProject(p.Projections, children[0]), nil
}

// WithExpressions implements the Expressioner interface.
func (p *Project) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	if len(exprs) != len(p.Projections) {
		return nil, sql.ErrInvalidChildrenNumber.New(p, len(exprs), len(p.Projections))
	}

	return NewProject(exprs, p.Child), nil
}

type projectIter struct {
	ctx         *sql.Context
	projections []sql.Expression
	childIter   sql.RowIter
}

func (i *projectIter) Next() (sql.Row, error) {
	childRow, err := i.childIter.Next()
	if err != nil {
		return nil, err
	}

	return ProjectRow(i.ctx, i.projections, childRow)
}

func (i *projectIter) Close() error {
	return i.childIter.Close()
}

// ProjectRow evaluates a set of projections.
func ProjectRow(
	ctx *sql.Context,
	projections []sql.Expression,
	row sql.Row,
) (sql.Row, error) {
	var fields = make(sql.Row, len(projections))
	for i, expr := range projections {
		f, err := expr.Eval(ctx, row)
		if err != nil {
			return nil, err
		}
		fields[i] = f
	}

	return fields, nil
}

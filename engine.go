package distsql

import (
	opentracing "github.com/opentracing/opentracing-go"
	"gopkg.in/src-d/go-distsql.v0/sql"
	"gopkg.in/src-d/go-distsql.v0/sql/analyzer"
	"gopkg.in/src-d/go-distsql.v0/sql/expression/function"
)

// Engine validates and executes query plans against its catalog. Plans are
// built programmatically from the nodes in sql/plan; the engine runs the
// analyzer batches over them, aggregation correctness validation included,
// before asking the analyzed plan for rows.
type Engine struct {
	Catalog  *sql.Catalog
	Analyzer *analyzer.Analyzer
	Config   Config
}

// New creates an Engine with the given configuration and all default
// functions registered.
func New(cfg Config) *Engine {
	c := sql.NewCatalog()
	c.RegisterFunctions(function.Defaults)

	b := analyzer.NewBuilder(c).
		WithParallelism(cfg.Parallelism).
		WithMaxMemoryGroups(cfg.MaxMemoryGroups).
		WithSpillDir(cfg.SpillDir)
	if cfg.Debug {
		b = b.WithDebug()
	}

	return &Engine{Catalog: c, Analyzer: b.Build(), Config: cfg}
}

// NewDefault creates a new Engine with the default configuration.
func NewDefault() *Engine {
	return New(Config{})
}

// Execute analyzes the given plan and returns its schema and rows. The
// schema is the one of the analyzed plan, not of the plan given.
func (e *Engine) Execute(ctx *sql.Context, plan sql.Node) (sql.Schema, sql.RowIter, error) {
	span, ctx := ctx.Span("query", opentracing.Tags{"plan": plan.String()})

	analyzed, err := e.Analyzer.Analyze(ctx, plan)
	if err != nil {
		span.Finish()
		return nil, nil, err
	}

	iter, err := analyzed.RowIter(ctx)
	if err != nil {
		span.Finish()
		return nil, nil, err
	}

	return analyzed.Schema(), sql.NewSpanIter(span, iter), nil
}

package analyzer

import (
	"gopkg.in/src-d/go-distsql.v0/sql"
	"gopkg.in/src-d/go-distsql.v0/sql/plan"
)

// DefaultRules to apply when analyzing nodes.
var DefaultRules = []Rule{
	{"configure_spill", configureSpill},
}

// OnceAfterAll contains the rules to be applied just once after all other
// rules batches.
var OnceAfterAll = []Rule{
	{"parallelize", parallelize},
}

// configureSpill copies the memory bound and spill directory of the
// analyzer onto every aggregation of the plan that has none of its own.
func configureSpill(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, error) {
	span, _ := ctx.Span("configure_spill")
	defer span.Finish()

	if a.MaxMemoryGroups <= 0 {
		return n, nil
	}

	return plan.TransformUp(n, func(n sql.Node) (sql.Node, error) {
		g, ok := n.(*plan.GroupBy)
		if !ok || g.MaxMemoryGroups > 0 {
			return n, nil
		}

		ng := *g
		ng.MaxMemoryGroups = a.MaxMemoryGroups
		ng.SpillDir = a.SpillDir
		return &ng, nil
	})
}

// parallelize distributes the table scans of the plan over Exchange nodes
// when the analyzer has parallelism configured. Plans already carrying an
// Exchange distribute their own scans and are left alone.
func parallelize(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, error) {
	span, _ := ctx.Span("parallelize")
	defer span.Finish()

	if a.Parallelism <= 1 {
		return n, nil
	}

	var exchanged bool
	plan.Inspect(n, func(n sql.Node) bool {
		if _, ok := n.(*plan.Exchange); ok {
			exchanged = true
			return false
		}
		return true
	})

	if exchanged {
		return n, nil
	}

	return plan.TransformUp(n, func(n sql.Node) (sql.Node, error) {
		if t, ok := n.(*plan.ResolvedTable); ok {
			return plan.NewExchange(a.Parallelism, t), nil
		}
		return n, nil
	})
}

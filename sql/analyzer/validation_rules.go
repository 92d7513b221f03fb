package analyzer

import (
	"gopkg.in/src-d/go-distsql.v0/sql"
	"gopkg.in/src-d/go-distsql.v0/sql/plan"
)

// DefaultValidationRules to apply while analyzing nodes.
var DefaultValidationRules = []Rule{
	{"validate_aggregations", validateAggregations},
}

// validateAggregations builds an aggregation analyzer for every GroupBy
// of the plan and checks the selected expressions against the grouping
// clause. Final stages are skipped: they replay accumulation buffers
// produced by an already validated partial stage and their expressions
// never evaluate against the child schema.
func validateAggregations(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, error) {
	span, _ := ctx.Span("validate_aggregations")
	defer span.Finish()

	var err error
	plan.Inspect(n, func(n sql.Node) bool {
		g, ok := n.(*plan.GroupBy)
		if !ok || g.Mode == plan.AggregateFinal {
			return true
		}

		keys := make([]GroupingKey, len(g.GroupByExprs))
		for i, e := range g.GroupByExprs {
			keys[i] = GroupingKey{Expr: e}
		}

		var agg *AggregationAnalyzer
		agg, err = NewAggregationAnalyzer(keys, a.Catalog, sql.ScopeForSchema(g.Child.Schema()))
		if err != nil {
			return false
		}

		for _, e := range g.SelectedExprs {
			if err = agg.Analyze(e); err != nil {
				return false
			}
		}

		return true
	})

	if err != nil {
		return nil, err
	}

	return n, nil
}

package analyzer

import (
	"gopkg.in/src-d/go-distsql.v0/sql"
	"gopkg.in/src-d/go-distsql.v0/sql/expression"
)

// findAggregateCalls returns the topmost aggregate function calls of the
// given expression tree. The arguments of a collected call are not
// searched, so a directly nested aggregation is reported once, for its
// outermost call. Windowed calls are not plain aggregations and their
// arguments are searched instead.
func (a *AggregationAnalyzer) findAggregateCalls(e sql.Expression) []sql.Expression {
	var calls []sql.Expression
	expression.Inspect(e, func(e sql.Expression) bool {
		switch e := e.(type) {
		case *expression.UnresolvedFunction:
			if e.Window == nil && a.fns.IsAggregateFunction(e.Name()) {
				calls = append(calls, e)
				return false
			}
		case sql.Aggregation:
			calls = append(calls, e)
			return false
		}
		return true
	})

	return calls
}

// findWindowCalls returns the topmost window function calls of the given
// expression tree.
func findWindowCalls(e sql.Expression) []sql.Expression {
	var calls []sql.Expression
	expression.Inspect(e, func(e sql.Expression) bool {
		if f, ok := e.(*expression.UnresolvedFunction); ok && f.Window != nil {
			calls = append(calls, f)
			return false
		}
		return true
	})

	return calls
}

package analyzer

import (
	"strings"

	"gopkg.in/src-d/go-distsql.v0/sql"
	"gopkg.in/src-d/go-distsql.v0/sql/expression"
)

// GroupingKey is one element of the grouping clause handed to the
// aggregation analyzer: either a resolved field of the scope or an
// arbitrary grouping expression, never both.
type GroupingKey struct {
	Field *sql.Field
	Expr  sql.Expression
}

// column is implemented by expressions referring to a single column of
// the scope, whether resolved or not.
type column interface {
	sql.Nameable
	sql.Tableable
}

// AggregationAnalyzer checks that the expressions selected by a grouped
// query combine only aggregate calls, grouping values and constants, so
// that every output value is well defined for its group. A built analyzer
// is read only and safe for concurrent use.
type AggregationAnalyzer struct {
	fns   sql.FunctionMetadata
	scope *sql.Scope

	// fields is the set of scope fields derivable from the grouping
	// clause, by field identity.
	fields map[*sql.Field]struct{}
	// expressions is the set of grouping expressions in structural form.
	expressions map[string]struct{}
}

// NewAggregationAnalyzer creates an analyzer for one grouped query given
// its grouping keys, the function metadata that tells aggregate calls
// apart and the scope its column references resolve against. An empty key
// slice means a global aggregation, where only aggregates and constants
// may be selected.
func NewAggregationAnalyzer(
	keys []GroupingKey,
	fns sql.FunctionMetadata,
	scope *sql.Scope,
) (*AggregationAnalyzer, error) {
	if fns == nil {
		return nil, sql.ErrInvalidArgument.New("aggregation analyzer", "function metadata is nil")
	}

	if scope == nil {
		return nil, sql.ErrInvalidArgument.New("aggregation analyzer", "scope is nil")
	}

	a := &AggregationAnalyzer{
		fns:         fns,
		scope:       scope,
		fields:      make(map[*sql.Field]struct{}),
		expressions: make(map[string]struct{}),
	}

	for _, key := range keys {
		switch {
		case key.Field != nil && key.Expr != nil:
			return nil, sql.ErrInvalidArgument.New(
				"aggregation analyzer", "grouping key with both field and expression set",
			)
		case key.Field != nil:
			a.fields[key.Field] = struct{}{}
		case key.Expr != nil:
			a.expressions[structuralForm(key.Expr)] = struct{}{}

			// A grouping expression that is itself a column reference
			// legitimizes the field it names, so later references to that
			// field also pass by identity.
			if c, ok := key.Expr.(column); ok {
				if matches := scope.Resolve(c.Table(), c.Name()); len(matches) == 1 {
					a.fields[matches[0]] = struct{}{}
				}
			}
		default:
			return nil, sql.ErrInvalidArgument.New("aggregation analyzer", "empty grouping key")
		}
	}

	return a, nil
}

// Analyze checks the given selected expression and returns an error when
// any part of it is neither an aggregation result nor derivable from the
// grouping clause.
func (a *AggregationAnalyzer) Analyze(e sql.Expression) error {
	ok, err := a.isConstant(e)
	if err != nil {
		return err
	}

	if !ok {
		return sql.ErrMustBeGroupedOrAggregated.New(e.String())
	}

	return nil
}

// ContainsField reports whether the given field is derivable from the
// grouping clause, by field identity.
func (a *AggregationAnalyzer) ContainsField(f *sql.Field) bool {
	_, ok := a.fields[f]
	return ok
}

// isConstant reports whether the expression has a single well defined
// value per group, that is, whether it is built from grouping values,
// aggregate results and constants only.
func (a *AggregationAnalyzer) isConstant(e sql.Expression) (bool, error) {
	switch e := e.(type) {
	case *expression.Literal, *expression.CurrentTimestamp:
		return true, nil

	case *expression.Alias:
		return a.isConstant(e.Child)

	case *expression.UnresolvedFunction:
		if e.Window == nil && a.fns.IsAggregateFunction(e.Name()) {
			// An aggregate call has one value per group by definition,
			// whatever its arguments range over, but no aggregation or
			// window function may appear anywhere inside them.
			var aggs, windows []sql.Expression
			for _, arg := range e.Arguments {
				aggs = append(aggs, a.findAggregateCalls(arg)...)
				windows = append(windows, findWindowCalls(arg)...)
			}

			if len(aggs) > 0 {
				return false, sql.ErrNestedAggregation.New(e.Name(), exprsString(aggs))
			}

			if len(windows) > 0 {
				return false, sql.ErrNestedWindow.New(e.Name(), exprsString(windows))
			}

			return true, nil
		}

		if e.Window != nil {
			if err := a.analyzeWindow(e.Window); err != nil {
				return false, err
			}
		}

		if a.inGroupBy(e) {
			return true, nil
		}

		return a.allConstant(e.Arguments)

	case *expression.Arithmetic, *expression.UnaryMinus,
		*expression.Equals, *expression.NotEquals,
		*expression.LessThan, *expression.GreaterThan,
		*expression.LessThanOrEqual, *expression.GreaterThanOrEqual,
		*expression.And, *expression.Or, *expression.Not:
		if a.inGroupBy(e) {
			return true, nil
		}

		return a.allConstant(e.Children())

	case column:
		// A column reference passes only if it names exactly one field of
		// the scope and that field is derivable from the grouping clause.
		matches := a.scope.Resolve(e.Table(), e.Name())
		return len(matches) == 1 && a.ContainsField(matches[0]), nil

	default:
		if agg, ok := e.(sql.Aggregation); ok {
			var aggs, windows []sql.Expression
			for _, child := range agg.Children() {
				aggs = append(aggs, a.findAggregateCalls(child)...)
				windows = append(windows, findWindowCalls(child)...)
			}

			if len(aggs) > 0 {
				return false, sql.ErrNestedAggregation.New(functionName(agg), exprsString(aggs))
			}

			if len(windows) > 0 {
				return false, sql.ErrNestedWindow.New(functionName(agg), exprsString(windows))
			}

			return true, nil
		}

		if f, ok := e.(sql.FunctionExpression); ok {
			if a.inGroupBy(f) {
				return true, nil
			}

			return a.allConstant(f.Children())
		}

		return false, sql.ErrUnsupportedAggregationNode.New(e)
	}
}

// analyzeWindow checks the partitioning, ordering and frame offsets of a
// window specification the way selected expressions are checked.
func (a *AggregationAnalyzer) analyzeWindow(w *sql.Window) error {
	for _, p := range w.PartitionBy {
		ok, err := a.isConstant(p)
		if err != nil {
			return err
		}

		if !ok {
			return sql.ErrPartitionMustBeGroupedOrAgg.New(p.String())
		}
	}

	for _, s := range w.OrderBy {
		ok, err := a.isConstant(s.Column)
		if err != nil {
			return err
		}

		if !ok {
			return sql.ErrOrderByMustBeGroupedOrAgg.New(s.Column.String())
		}
	}

	if w.Frame != nil {
		if offset := w.Frame.Start.Offset; offset != nil {
			ok, err := a.isConstant(offset)
			if err != nil {
				return err
			}

			if !ok {
				return sql.ErrFrameStartMustBeGroupedOrAgg.New()
			}
		}

		if w.Frame.End != nil && w.Frame.End.Offset != nil {
			ok, err := a.isConstant(w.Frame.End.Offset)
			if err != nil {
				return err
			}

			if !ok {
				return sql.ErrFrameEndMustBeGroupedOrAgg.New()
			}
		}
	}

	return nil
}

// allConstant reports whether every expression of the slice is constant
// per group. The first analysis error stops the walk.
func (a *AggregationAnalyzer) allConstant(exprs []sql.Expression) (bool, error) {
	for _, e := range exprs {
		ok, err := a.isConstant(e)
		if err != nil || !ok {
			return false, err
		}
	}

	return true, nil
}

// inGroupBy reports whether the expression is one of the grouping
// expressions, compared structurally.
func (a *AggregationAnalyzer) inGroupBy(e sql.Expression) bool {
	_, ok := a.expressions[structuralForm(e)]
	return ok
}

// structuralForm is the canonical textual form grouping expressions are
// compared in. Comparison is case insensitive.
func structuralForm(e sql.Expression) string {
	return strings.ToLower(e.String())
}

func functionName(e sql.Expression) string {
	if f, ok := e.(sql.FunctionExpression); ok {
		return f.FunctionName()
	}

	return e.String()
}

func exprsString(exprs []sql.Expression) string {
	strs := make([]string, len(exprs))
	for i, e := range exprs {
		strs[i] = e.String()
	}

	return strings.Join(strs, ", ")
}

package function

import (
	"gopkg.in/src-d/go-distsql.v0/sql"
	"gopkg.in/src-d/go-distsql.v0/sql/expression"
	"gopkg.in/src-d/go-distsql.v0/sql/expression/function/aggregation"
)

// Defaults is the function map with all the default functions.
var Defaults = sql.Functions{
	"count": sql.Function1(func(e sql.Expression) sql.Expression {
		return aggregation.NewCount(e)
	}),
	"min": sql.Function1(func(e sql.Expression) sql.Expression {
		return aggregation.NewMin(e)
	}),
	"max": sql.Function1(func(e sql.Expression) sql.Expression {
		return aggregation.NewMax(e)
	}),
	"avg": sql.Function1(func(e sql.Expression) sql.Expression {
		return aggregation.NewAvg(e)
	}),
	"sum": sql.Function1(func(e sql.Expression) sql.Expression {
		return aggregation.NewSum(e)
	}),
	"variance": sql.Function1(func(e sql.Expression) sql.Expression {
		return aggregation.NewVariance(e)
	}),
	"var_samp": sql.Function1(func(e sql.Expression) sql.Expression {
		return aggregation.NewVariance(e)
	}),
	"var_pop": sql.Function1(func(e sql.Expression) sql.Expression {
		return aggregation.NewVarPop(e)
	}),
	"stddev": sql.Function1(func(e sql.Expression) sql.Expression {
		return aggregation.NewStdDev(e)
	}),
	"stddev_samp": sql.Function1(func(e sql.Expression) sql.Expression {
		return aggregation.NewStdDev(e)
	}),
	"stddev_pop": sql.Function1(func(e sql.Expression) sql.Expression {
		return aggregation.NewStdDevPop(e)
	}),
	"current_timestamp": sql.Function0(expression.NewCurrentTimestamp),
	"now":               sql.Function0(expression.NewCurrentTimestamp),
	"lower":             sql.Function1(NewLower),
	"upper":             sql.Function1(NewUpper),
}

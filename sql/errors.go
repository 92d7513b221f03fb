package sql

import (
	errors "gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrInvalidType is thrown when there is an unexpected type at some part of
	// the execution tree.
	ErrInvalidType = errors.NewKind("invalid type: %s")

	// ErrInvalidArgument is returned when an operation receives a required
	// argument that is absent or out of domain.
	ErrInvalidArgument = errors.NewKind("invalid argument to %s: %s")

	// ErrMustBeGroupedOrAggregated is returned when an expression of a grouped
	// query is neither an aggregation nor derivable from the GROUP BY clause.
	ErrMustBeGroupedOrAggregated = errors.NewKind("'%s' must be an aggregate expression or appear in GROUP BY clause")

	// ErrNestedAggregation is returned when an aggregate function call appears
	// inside the arguments of another aggregate function call.
	ErrNestedAggregation = errors.NewKind("cannot nest aggregations inside aggregation '%s': %s")

	// ErrNestedWindow is returned when a window function call appears inside
	// the arguments of an aggregate function call.
	ErrNestedWindow = errors.NewKind("cannot nest window functions inside aggregation '%s': %s")

	// ErrPartitionMustBeGroupedOrAgg is returned when a PARTITION BY expression
	// of a window is neither an aggregation nor derivable from GROUP BY.
	ErrPartitionMustBeGroupedOrAgg = errors.NewKind("PARTITION BY expression '%s' must be an aggregate expression or appear in GROUP BY clause")

	// ErrOrderByMustBeGroupedOrAgg is returned when an ORDER BY sort key of a
	// window is neither an aggregation nor derivable from GROUP BY.
	ErrOrderByMustBeGroupedOrAgg = errors.NewKind("ORDER BY expression '%s' must be an aggregate expression or appear in GROUP BY clause")

	// ErrFrameStartMustBeGroupedOrAgg is returned when the start bound of a
	// window frame is neither an aggregation nor derivable from GROUP BY.
	ErrFrameStartMustBeGroupedOrAgg = errors.NewKind("window frame start must be an aggregate expression or appear in GROUP BY clause")

	// ErrFrameEndMustBeGroupedOrAgg is returned when the end bound of a window
	// frame is neither an aggregation nor derivable from GROUP BY.
	ErrFrameEndMustBeGroupedOrAgg = errors.NewKind("window frame end must be an aggregate expression or appear in GROUP BY clause")

	// ErrUnsupportedAggregationNode is returned when the aggregation analyzer
	// reaches an expression it has no rule for. It signals a defect in the
	// analyzer, never a user mistake, and aborts the analysis pass.
	ErrUnsupportedAggregationNode = errors.NewKind("aggregation analysis not implemented for expressions of type %T")

	// ErrFunctionNotFound is thrown when a function is not found.
	ErrFunctionNotFound = errors.NewKind("function not found: %s%s")

	// ErrUnsupportedAggregateMode is returned when a GroupBy carries a mode
	// outside the complete, partial and final triple.
	ErrUnsupportedAggregateMode = errors.NewKind("unsupported aggregate mode: %d")
)

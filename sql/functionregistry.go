package sql

import (
	"strings"

	errors "gopkg.in/src-d/go-errors.v1"
	"gopkg.in/src-d/go-vitess.v0/vt/sqlparser"

	"gopkg.in/src-d/go-distsql.v0/internal/similartext"
)

// ErrInvalidArgumentNumber is returned when the number of arguments to call
// a function is different from the function arity.
var ErrInvalidArgumentNumber = errors.NewKind("expecting %v arguments for calling this function, %d received")

// Function is a SQL function constructor.
type Function interface {
	// Call invokes the constructor with the given arguments.
	Call(args ...Expression) (Expression, error)
	isFunction()
}

type (
	// Function0 is a function with 0 arguments.
	Function0 func() Expression
	// Function1 is a function with 1 argument.
	Function1 func(e Expression) Expression
	// Function2 is a function with 2 arguments.
	Function2 func(e1, e2 Expression) Expression
	// Function3 is a function with 3 arguments.
	Function3 func(e1, e2, e3 Expression) Expression
	// FunctionN is a function with variable number of arguments. This
	// function is expected to return ErrInvalidArgumentNumber for the
	// cases where the number of arguments it receives is not valid.
	FunctionN func(e ...Expression) Expression
)

// Call implements the Function interface.
func (fn Function0) Call(args ...Expression) (Expression, error) {
	if len(args) != 0 {
		return nil, ErrInvalidArgumentNumber.New(0, len(args))
	}

	return fn(), nil
}

// Call implements the Function interface.
func (fn Function1) Call(args ...Expression) (Expression, error) {
	if len(args) != 1 {
		return nil, ErrInvalidArgumentNumber.New(1, len(args))
	}

	return fn(args[0]), nil
}

// Call implements the Function interface.
func (fn Function2) Call(args ...Expression) (Expression, error) {
	if len(args) != 2 {
		return nil, ErrInvalidArgumentNumber.New(2, len(args))
	}

	return fn(args[0], args[1]), nil
}

// Call implements the Function interface.
func (fn Function3) Call(args ...Expression) (Expression, error) {
	if len(args) != 3 {
		return nil, ErrInvalidArgumentNumber.New(3, len(args))
	}

	return fn(args[0], args[1], args[2]), nil
}

// Call implements the Function interface.
func (fn FunctionN) Call(args ...Expression) (Expression, error) {
	return fn(args...), nil
}

func (Function0) isFunction() {}
func (Function1) isFunction() {}
func (Function2) isFunction() {}
func (Function3) isFunction() {}
func (FunctionN) isFunction() {}

// Functions is a map of functions indexed by their name.
type Functions map[string]Function

// FunctionRegistry is used to register functions. It is used both for
// builtin and user defined functions. It also implements FunctionMetadata
// for the aggregation analyzer.
type FunctionRegistry map[string]Function

// NewFunctionRegistry creates a new FunctionRegistry.
func NewFunctionRegistry() FunctionRegistry {
	return make(FunctionRegistry)
}

// RegisterFunction registers a function with the given name.
func (r FunctionRegistry) RegisterFunction(name string, f Function) {
	r[strings.ToLower(name)] = f
}

// RegisterFunctions registers a map of functions.
func (r FunctionRegistry) RegisterFunctions(funcs Functions) {
	for name, f := range funcs {
		r[strings.ToLower(name)] = f
	}
}

// Function returns the function with the given name.
func (r FunctionRegistry) Function(name string) (Function, error) {
	if len(r) == 0 {
		return nil, ErrFunctionNotFound.New(name, "")
	}

	name = strings.ToLower(name)
	if fn, ok := r[name]; ok {
		return fn, nil
	}

	similar := similartext.FindFromMap(r, name)
	return nil, ErrFunctionNotFound.New(name, similar)
}

// IsAggregateFunction implements the FunctionMetadata interface. A name
// refers to an aggregate function when a function is registered under it
// and the SQL grammar classifies the name as an aggregation.
func (r FunctionRegistry) IsAggregateFunction(name string) bool {
	name = strings.ToLower(name)
	if _, ok := r[name]; !ok {
		return false
	}
	return sqlparser.Aggregates[name]
}

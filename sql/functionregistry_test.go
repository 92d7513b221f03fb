package sql

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type dummyExpr struct {
	Expression
}

func TestFunctionRegistry(t *testing.T) {
	require := require.New(t)

	r := NewFunctionRegistry()
	expected := dummyExpr{}
	r.RegisterFunction("UPPER", Function1(func(e Expression) Expression {
		return expected
	}))

	// Lookup is case insensitive.
	fn, err := r.Function("upper")
	require.NoError(err)

	e, err := fn.Call(dummyExpr{})
	require.NoError(err)
	require.Equal(expected, e)

	_, err = fn.Call()
	require.True(ErrInvalidArgumentNumber.Is(err))

	_, err = fn.Call(dummyExpr{}, dummyExpr{})
	require.True(ErrInvalidArgumentNumber.Is(err))
}

func TestFunctionRegistryMissingFunction(t *testing.T) {
	require := require.New(t)

	r := NewFunctionRegistry()
	_, err := r.Function("concat")
	require.True(ErrFunctionNotFound.Is(err))

	r.RegisterFunctions(Functions{
		"count": FunctionN(func(e ...Expression) Expression { return nil }),
	})

	_, err = r.Function("cont")
	require.True(ErrFunctionNotFound.Is(err))
	require.Contains(err.Error(), "maybe you mean count?")
}

func TestIsAggregateFunction(t *testing.T) {
	require := require.New(t)

	r := NewFunctionRegistry()

	// The grammar knows sum, but nothing is registered yet.
	require.False(r.IsAggregateFunction("sum"))

	r.RegisterFunctions(Functions{
		"sum":   Function1(func(e Expression) Expression { return nil }),
		"lower": Function1(func(e Expression) Expression { return nil }),
	})

	require.True(r.IsAggregateFunction("sum"))
	require.True(r.IsAggregateFunction("SUM"))

	// Registered but not an aggregation per the grammar.
	require.False(r.IsAggregateFunction("lower"))
}

func TestFunctionArities(t *testing.T) {
	require := require.New(t)

	f0 := Function0(func() Expression { return dummyExpr{} })
	_, err := f0.Call()
	require.NoError(err)
	_, err = f0.Call(dummyExpr{})
	require.True(ErrInvalidArgumentNumber.Is(err))

	f2 := Function2(func(e1, e2 Expression) Expression { return dummyExpr{} })
	_, err = f2.Call(dummyExpr{}, dummyExpr{})
	require.NoError(err)
	_, err = f2.Call(dummyExpr{})
	require.True(ErrInvalidArgumentNumber.Is(err))

	f3 := Function3(func(e1, e2, e3 Expression) Expression { return dummyExpr{} })
	_, err = f3.Call(dummyExpr{}, dummyExpr{}, dummyExpr{})
	require.NoError(err)

	fn := FunctionN(func(e ...Expression) Expression { return dummyExpr{} })
	_, err = fn.Call()
	require.NoError(err)
	_, err = fn.Call(dummyExpr{}, dummyExpr{}, dummyExpr{}, dummyExpr{})
	require.NoError(err)
}

func TestCatalogFunctions(t *testing.T) {
	require := require.New(t)

	c := NewCatalog()
	c.RegisterFunction("avg", Function1(func(e Expression) Expression { return nil }))

	_, err := c.Function("avg")
	require.NoError(err)
	require.True(c.IsAggregateFunction("avg"))
}

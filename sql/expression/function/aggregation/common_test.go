package aggregation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.in/src-d/go-distsql.v0/sql"
)

func eval(t *testing.T, e sql.Expression, buffer sql.Row) interface{} {
	t.Helper()
	v, err := e.Eval(sql.NewEmptyContext(), buffer)
	require.NoError(t, err)
	return v
}

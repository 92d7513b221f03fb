package sql

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const expectedTree = `GroupBy(partial)
 ├─ Aggregate(count(size))
 ├─ Grouping(kind)
 └─ Exchange(parallelism=4)
     └─ Table(events)
`

func TestTreePrinter(t *testing.T) {
	require := require.New(t)

	exchange := NewTreePrinter()
	exchange.WriteNode("Exchange(parallelism=%d)", 4)
	exchange.WriteChildren("Table(events)")

	p := NewTreePrinter()
	p.WriteNode("GroupBy(%s)", "partial")
	p.WriteChildren(
		"Aggregate(count(size))",
		"Grouping(kind)",
		exchange.String(),
	)

	require.Equal(expectedTree, p.String())
}

func TestTreePrinterNodeAlreadyWritten(t *testing.T) {
	require := require.New(t)

	p := NewTreePrinter()
	require.NoError(p.WriteNode("Filter"))
	require.True(ErrNodeAlreadyWritten.Is(p.WriteNode("Filter")))
}

func TestTreePrinterChildrenBeforeNode(t *testing.T) {
	require := require.New(t)

	p := NewTreePrinter()
	require.True(ErrNodeNotWritten.Is(p.WriteChildren("Table(events)")))

	require.NoError(p.WriteNode("GroupBy"))
	require.NoError(p.WriteChildren("Table(events)"))
	require.True(ErrChildrenAlreadyWritten.Is(p.WriteChildren("Table(events)")))
}

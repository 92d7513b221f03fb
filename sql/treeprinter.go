package sql

import (
	"bytes"
	"fmt"
	"strings"

	errors "gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrNodeAlreadyWritten is returned when the main node has already
	// been written.
	ErrNodeAlreadyWritten = errors.NewKind("treeprinter: node already written")
	// ErrNodeNotWritten is returned when the children are written before
	// the main node.
	ErrNodeNotWritten = errors.NewKind("treeprinter: a node must be written before its children")
	// ErrChildrenAlreadyWritten is returned when the children have already
	// been written.
	ErrChildrenAlreadyWritten = errors.NewKind("treeprinter: children already written")
)

// TreePrinter prints the textual representation of a plan tree, one node
// with its children.
type TreePrinter struct {
	buf             bytes.Buffer
	nodeWritten     bool
	childrenWritten bool
}

// NewTreePrinter creates a new tree printer.
func NewTreePrinter() *TreePrinter {
	return new(TreePrinter)
}

// WriteNode writes the main node of the tree.
func (p *TreePrinter) WriteNode(format string, args ...interface{}) error {
	if p.nodeWritten {
		return ErrNodeAlreadyWritten.New()
	}

	fmt.Fprintf(&p.buf, format, args...)
	p.buf.WriteRune('\n')
	p.nodeWritten = true
	return nil
}

// WriteChildren writes the children of the node. Each child is expected to
// be the printed representation of a tree itself.
func (p *TreePrinter) WriteChildren(children ...string) error {
	if !p.nodeWritten {
		return ErrNodeNotWritten.New()
	}

	if p.childrenWritten {
		return ErrChildrenAlreadyWritten.New()
	}

	p.childrenWritten = true
	for i, child := range children {
		last := i+1 == len(children)
		lines := strings.Split(strings.TrimSuffix(child, "\n"), "\n")
		for j, line := range lines {
			var prefix string
			switch {
			case j == 0 && last:
				prefix = " └─ "
			case j == 0:
				prefix = " ├─ "
			case last:
				prefix = "    "
			default:
				prefix = " │  "
			}

			p.buf.WriteString(prefix)
			p.buf.WriteString(line)
			p.buf.WriteRune('\n')
		}
	}
	return nil
}

// String returns the printed tree.
func (p *TreePrinter) String() string {
	return p.buf.String()
}

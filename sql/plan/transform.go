package plan

import "gopkg.in/src-d/go-distsql.v0/sql"

// TransformUp applies a transformation function to the given plan from the
// bottom up, so when f is applied to a node its children have already been
// transformed.
func TransformUp(node sql.Node, f func(sql.Node) (sql.Node, error)) (sql.Node, error) {
	children := node.Children()
	if len(children) == 0 {
		return f(node)
	}

	newChildren := make([]sql.Node, len(children))
	for i, c := range children {
		c, err := TransformUp(c, f)
		if err != nil {
			return nil, err
		}
		newChildren[i] = c
	}

	node, err := node.WithChildren(newChildren...)
	if err != nil {
		return nil, err
	}

	return f(node)
}

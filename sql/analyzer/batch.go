package analyzer

import (
	"reflect"

	"gopkg.in/src-d/go-distsql.v0/sql"
)

// RuleFunc is the function to be applied by a rule.
type RuleFunc func(*sql.Context, *Analyzer, sql.Node) (sql.Node, error)

// Rule to transform a node.
type Rule struct {
	// Name of the rule.
	Name string
	// Apply transforms a node.
	Apply RuleFunc
}

// Batch executes a set of rules a specific number of times.
// When this number of times is reached, the actual node
// and ErrMaxAnalysisIters is returned.
type Batch struct {
	Desc       string
	Iterations int
	Rules      []Rule
}

// Eval executes the rules of the batch. On any error, the partially
// transformed node is returned along with the error. If the batch's number
// of iterations is reached without achieving stabilization, the current
// node and ErrMaxAnalysisIters is returned.
func (b *Batch) Eval(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, error) {
	if b.Iterations == 0 {
		return n, nil
	}

	prev := n
	cur, err := b.evalOnce(ctx, a, n)
	if err != nil {
		return cur, err
	}

	if b.Iterations == 1 {
		return cur, nil
	}

	for i := 1; !nodesEqual(prev, cur); {
		a.Log("previous node does not match new node, analyzing again, iteration: %d", i)

		prev = cur
		cur, err = b.evalOnce(ctx, a, cur)
		if err != nil {
			return cur, err
		}

		i++
		if i >= b.Iterations {
			return cur, ErrMaxAnalysisIters.New(b.Iterations)
		}
	}

	return cur, nil
}

// evalOnce returns the result of evaluating the batch's rules on the node
// given. In the case of an error, the result of the last successful
// transformation is returned along with the error.
func (b *Batch) evalOnce(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, error) {
	prev := n
	for _, rule := range b.Rules {
		a.Log("applying rule %s", rule.Name)
		next, err := rule.Apply(ctx, a, prev)
		if next != nil {
			prev = next
		}

		if err != nil {
			return prev, err
		}
	}

	return prev, nil
}

func nodesEqual(a, b sql.Node) bool {
	return reflect.DeepEqual(a, b)
}

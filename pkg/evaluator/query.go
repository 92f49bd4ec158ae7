package evaluator

import (
	"context"

	"github.com/sandrolain/goxmatch/pkg/types"
)

// Query is a compiled and analyzed plan.
//
// A Query holds per-node state (the matches pattern memo) and serves one
// caller at a time. Use Clone to get an independent plan for another
// goroutine.
type Query struct {
	ev   *Evaluator
	expr *types.Expression
	root Expression
}

// Eval evaluates the plan against docs under the evaluator timeout.
func (q *Query) Eval(ctx context.Context, docs *types.DocumentSet) (types.Sequence, error) {
	if q.ev.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.ev.opts.Timeout)
		defer cancel()
	}
	return q.root.Eval(ctx, NewFocus(docs))
}

// Clone returns a plan with fresh expression nodes.
func (q *Query) Clone() (*Query, error) {
	return q.ev.Compile(q.expr)
}

// Expression returns the parsed expression the plan was built from.
func (q *Query) Expression() *types.Expression { return q.expr }

// Root returns the root of the expression tree.
func (q *Query) Root() Expression { return q.root }

// String renders the plan as query text.
func (q *Query) String() string { return q.root.String() }

package evaluator

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/sandrolain/goxmatch/pkg/types"
)

// build turns an AST into an unanalyzed expression tree. Every call
// creates fresh nodes.
func (e *Evaluator) build(n *types.ASTNode) (Expression, error) {
	switch n.Type {
	case types.NodeString:
		return NewLiteral(types.Singleton(types.String(n.StrValue))), nil

	case types.NodeNumber:
		return NewLiteral(types.Singleton(numberItem(n))), nil

	case types.NodeEmpty:
		return NewLiteral(types.Empty), nil

	case types.NodeContext:
		if len(n.Predicates) > 0 {
			return e.buildPath(&types.ASTNode{Type: types.NodePath, Steps: []*types.ASTNode{n}, Position: n.Position})
		}
		return ContextItem{}, nil

	case types.NodePath:
		return e.buildPath(n)

	case types.NodeFilter:
		primary, err := e.build(n.Primary)
		if err != nil {
			return nil, err
		}
		preds, err := e.buildAll(n.Predicates)
		if err != nil {
			return nil, err
		}
		return &Filter{primary: primary, predicates: preds}, nil

	case types.NodeFunction:
		return e.buildCall(n)

	default:
		return nil, types.NewError(types.ErrSyntaxError,
			fmt.Sprintf("unsupported expression %s", n.Type), n.Position)
	}
}

func (e *Evaluator) buildAll(nodes []*types.ASTNode) ([]Expression, error) {
	out := make([]Expression, 0, len(nodes))
	for _, n := range nodes {
		expr, err := e.build(n)
		if err != nil {
			return nil, err
		}
		out = append(out, expr)
	}
	return out, nil
}

func (e *Evaluator) buildPath(n *types.ASTNode) (Expression, error) {
	path := &Path{absolute: n.Absolute}
	if n.Primary != nil {
		start, err := e.build(n.Primary)
		if err != nil {
			return nil, err
		}
		path.start = start
	}
	for _, s := range n.Steps {
		step := &Step{axis: s.Axis, name: s.StrValue}
		switch s.Type {
		case types.NodeStep:
			step.test = testName
		case types.NodeWildcard:
			step.test = testWildcard
		case types.NodeContext:
			step.test = testSelf
		default:
			return nil, types.NewError(types.ErrSyntaxError,
				fmt.Sprintf("unsupported path step %s", s.Type), s.Position)
		}
		preds, err := e.buildAll(s.Predicates)
		if err != nil {
			return nil, err
		}
		step.predicates = preds
		path.steps = append(path.steps, step)
	}
	return path, nil
}

func (e *Evaluator) buildCall(n *types.ASTNode) (Expression, error) {
	name := strings.TrimPrefix(n.StrValue, "fn:")
	def, err := e.lookup(name, len(n.Arguments))
	if err != nil {
		var qe *types.Error
		if errors.As(err, &qe) && qe.Position < 0 {
			qe.Position = n.Position
		}
		return nil, err
	}
	args, err := e.buildAll(n.Arguments)
	if err != nil {
		return nil, err
	}
	return def.Factory(e, def.Signature, args)
}

// numberItem keeps integer literals integral.
func numberItem(n *types.ASTNode) types.Item {
	v := n.NumValue
	if v == math.Trunc(v) && !strings.ContainsAny(n.StrValue, ".eE") && math.Abs(v) < 1<<53 {
		return types.Integer(int64(v))
	}
	return types.Double(v)
}

package evaluator

import (
	"context"
	"strings"

	"github.com/sandrolain/goxmatch/pkg/types"
)

// ctxCheckInterval is how many items a scan processes between context
// cancellation checks.
const ctxCheckInterval = 256

type stepTest uint8

const (
	testName stepTest = iota
	testWildcard
	testSelf
)

// Step is one axis step of a path.
type Step struct {
	axis       types.Axis
	test       stepTest
	name       string
	predicates []Expression
}

func (s *Step) String() string {
	var b strings.Builder
	switch s.test {
	case testWildcard:
		b.WriteByte('*')
	case testSelf:
		b.WriteByte('.')
	default:
		b.WriteString(s.name)
	}
	for _, p := range s.predicates {
		b.WriteString("[" + p.String() + "]")
	}
	return b.String()
}

// Path is a location path. Absolute paths start at the document nodes of
// the focus; relative paths start at the focus or at a primary expression.
type Path struct {
	absolute bool
	start    Expression
	steps    []*Step
}

func (p *Path) Analyze(actx AnalyzeContext) error {
	if p.start != nil {
		if err := p.start.Analyze(actx); err != nil {
			return err
		}
	}
	for _, s := range p.steps {
		for _, pred := range s.predicates {
			if err := pred.Analyze(AnalyzeContext{InPredicate: true}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Path) Dependencies() types.Dependency {
	switch {
	case p.absolute:
		return types.NoDependency
	case p.start != nil:
		return p.start.Dependencies()
	default:
		return types.ContextSet
	}
}

func (p *Path) ReturnType() types.Type {
	if len(p.steps) == 0 {
		if p.absolute {
			return types.TypeDocument
		}
		return types.TypeNode
	}
	if p.steps[len(p.steps)-1].test == testSelf {
		return types.TypeNode
	}
	return types.TypeElement
}

func (p *Path) String() string {
	var b strings.Builder
	if p.start != nil {
		b.WriteString(p.start.String())
	}
	for i, s := range p.steps {
		switch {
		case s.axis == types.AxisDescendant:
			b.WriteString("//")
		case i > 0 || p.absolute || p.start != nil:
			b.WriteByte('/')
		}
		b.WriteString(s.String())
	}
	if p.absolute && len(p.steps) == 0 {
		b.WriteByte('/')
	}
	return b.String()
}

func (p *Path) Eval(ctx context.Context, focus Focus) (types.Sequence, error) {
	current, err := p.startNodes(ctx, focus)
	if err != nil {
		return nil, err
	}
	for _, s := range p.steps {
		current, err = p.applyStep(ctx, s, current, focus)
		if err != nil {
			return nil, err
		}
	}
	return current, nil
}

func (p *Path) startNodes(ctx context.Context, focus Focus) (*types.NodeSet, error) {
	var seq types.Sequence
	switch {
	case p.absolute:
		return focus.Docs.Roots(), nil
	case p.start != nil:
		var err error
		if seq, err = p.start.Eval(ctx, focus); err != nil {
			return nil, err
		}
	case focus.Item != nil:
		seq = itemSequence(focus.Item)
	case focus.Sequence != nil:
		seq = focus.Sequence
	default:
		return nil, types.Errorf(types.ErrContextAbsent, "path %s has no context node", p)
	}
	ns, err := types.ToNodeSet(seq)
	if err != nil {
		return nil, types.Errorf(types.ErrTypeMismatch, "path %s must start from nodes", p).WithCause(err)
	}
	return ns, nil
}

func (p *Path) applyStep(ctx context.Context, s *Step, in *types.NodeSet, focus Focus) (*types.NodeSet, error) {
	out := types.NewNodeSet()
	for i, n := range in.Nodes() {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		selected := s.selectFrom(n)
		if len(s.predicates) == 0 {
			for _, c := range selected {
				out.Add(c)
			}
			continue
		}
		var seq types.Sequence = types.NewNodeSet(selected...)
		for _, pred := range s.predicates {
			var err error
			if seq, err = applyPredicate(ctx, pred, seq, focus); err != nil {
				return nil, err
			}
		}
		for j := 0; j < seq.Len(); j++ {
			out.Add(seq.ItemAt(j).(*types.Node))
		}
	}
	return out, nil
}

// selectFrom returns the nodes the step selects from n, in document order.
func (s *Step) selectFrom(n *types.Node) []*types.Node {
	var out []*types.Node
	switch {
	case s.test == testSelf && s.axis == types.AxisDescendant:
		out = append(out, n)
		out = appendDescendants(out, n, s)
	case s.test == testSelf:
		out = append(out, n)
	case s.axis == types.AxisDescendant:
		out = appendDescendants(out, n, s)
	default:
		for _, c := range n.Children() {
			if s.accepts(c) {
				out = append(out, c)
			}
		}
	}
	return out
}

func appendDescendants(out []*types.Node, n *types.Node, s *Step) []*types.Node {
	for _, c := range n.Children() {
		if s.accepts(c) {
			out = append(out, c)
		}
		out = appendDescendants(out, c, s)
	}
	return out
}

func (s *Step) accepts(n *types.Node) bool {
	switch s.test {
	case testSelf:
		return true
	case testWildcard:
		return n.Kind() == types.ElementNode
	default:
		return n.Kind() == types.ElementNode && n.Name() == s.name
	}
}

package evaluator

import (
	"context"
	"strings"

	"github.com/sandrolain/goxmatch/pkg/types"
)

// Filter applies predicates to the result of a primary expression.
type Filter struct {
	primary    Expression
	predicates []Expression
}

func (f *Filter) Analyze(actx AnalyzeContext) error {
	if err := f.primary.Analyze(actx); err != nil {
		return err
	}
	for _, p := range f.predicates {
		if err := p.Analyze(AnalyzeContext{InPredicate: true}); err != nil {
			return err
		}
	}
	return nil
}

func (f *Filter) Dependencies() types.Dependency { return f.primary.Dependencies() }
func (f *Filter) ReturnType() types.Type         { return f.primary.ReturnType() }

func (f *Filter) String() string {
	var b strings.Builder
	if _, isPath := f.primary.(*Path); isPath {
		b.WriteString("(" + f.primary.String() + ")")
	} else {
		b.WriteString(f.primary.String())
	}
	for _, p := range f.predicates {
		b.WriteString("[" + p.String() + "]")
	}
	return b.String()
}

func (f *Filter) Eval(ctx context.Context, focus Focus) (types.Sequence, error) {
	seq, err := f.primary.Eval(ctx, focus)
	if err != nil {
		return nil, err
	}
	for _, p := range f.predicates {
		if seq, err = applyPredicate(ctx, p, seq, focus); err != nil {
			return nil, err
		}
	}
	return seq, nil
}

// applyPredicate filters seq by pred.
//
// A node-valued predicate that does not read the context item is evaluated
// once over the whole sequence, and the context nodes that are
// ancestor-or-self of a returned node are kept. A predicate that reads
// nothing from the focus is evaluated once as well. Every other predicate is
// evaluated per item: a numeric singleton result selects by position, any
// other result by effective boolean value.
func applyPredicate(ctx context.Context, pred Expression, seq types.Sequence, focus Focus) (types.Sequence, error) {
	if seq.Len() == 0 {
		return seq, nil
	}
	deps := pred.Dependencies()

	if types.SubTypeOf(pred.ReturnType(), types.TypeNode) && !deps.DependsOn(types.ContextItem) {
		if nodes, err := types.ToNodeSet(seq); err == nil {
			return selectBySet(ctx, pred, nodes, focus)
		}
	}

	if deps == types.NoDependency {
		res, err := pred.Eval(ctx, focus.ForSequence(seq))
		if err != nil {
			return nil, err
		}
		return keepWhere(seq, func(pos int) (bool, error) { return predicateTruth(res, pos) })
	}

	return keepWhere(seq, func(pos int) (bool, error) {
		if pos%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return false, err
			}
		}
		res, err := pred.Eval(ctx, focus.ForSequence(seq).ForItem(seq.ItemAt(pos-1), pos))
		if err != nil {
			return false, err
		}
		return predicateTruth(res, pos)
	})
}

func selectBySet(ctx context.Context, pred Expression, nodes *types.NodeSet, focus Focus) (types.Sequence, error) {
	res, err := pred.Eval(ctx, focus.ForSequence(nodes))
	if err != nil {
		return nil, err
	}
	selected, err := types.ToNodeSet(res)
	if err != nil {
		return nil, err
	}
	if selected.Len() == 0 {
		return types.NewNodeSet(), nil
	}

	// every ancestor-or-self of a selected node
	hits := make(map[types.NodeKey]struct{}, selected.Len())
	for _, n := range selected.Nodes() {
		for a := n; a != nil; a = a.Parent() {
			if _, seen := hits[a.Key()]; seen {
				break
			}
			hits[a.Key()] = struct{}{}
		}
	}
	out := types.NewNodeSet()
	for _, n := range nodes.Nodes() {
		if _, ok := hits[n.Key()]; ok {
			out.Add(n)
		}
	}
	return out, nil
}

// predicateTruth decides whether the item at pos survives a predicate that
// evaluated to res.
func predicateTruth(res types.Sequence, pos int) (bool, error) {
	if res.Len() == 1 {
		switch v := res.ItemAt(0).(type) {
		case types.Integer:
			return int64(v) == int64(pos), nil
		case types.Double:
			return float64(v) == float64(pos), nil
		}
	}
	return types.EffectiveBooleanValue(res)
}

// keepWhere keeps the items of seq for which keep returns true, passing
// 1-based positions. Node sets stay node sets.
func keepWhere(seq types.Sequence, keep func(pos int) (bool, error)) (types.Sequence, error) {
	if ns, ok := seq.(*types.NodeSet); ok {
		out := types.NewNodeSet()
		for i, n := range ns.Nodes() {
			ok, err := keep(i + 1)
			if err != nil {
				return nil, err
			}
			if ok {
				out.Add(n)
			}
		}
		return out, nil
	}
	var out types.ValueSequence
	for i := 0; i < seq.Len(); i++ {
		ok, err := keep(i + 1)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, seq.ItemAt(i))
		}
	}
	return out, nil
}

package evaluator

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandrolain/goxmatch/pkg/functions"
	"github.com/sandrolain/goxmatch/pkg/types"
)

// Expression is a node of an evaluation plan.
type Expression interface {
	// Analyze runs the static analysis pass over the expression and its
	// operands. It is called once per plan.
	Analyze(actx AnalyzeContext) error
	// Dependencies reports which parts of the focus the expression reads.
	Dependencies() types.Dependency
	// ReturnType is the static type of the items the expression yields.
	ReturnType() types.Type
	// Eval evaluates the expression.
	Eval(ctx context.Context, focus Focus) (types.Sequence, error)
	// String renders the expression as query text.
	String() string
}

// Literal is a constant sequence.
type Literal struct {
	value types.Sequence
}

// NewLiteral creates a literal yielding value.
func NewLiteral(value types.Sequence) *Literal {
	if value == nil {
		value = types.Empty
	}
	return &Literal{value: value}
}

func (l *Literal) Analyze(AnalyzeContext) error   { return nil }
func (l *Literal) Dependencies() types.Dependency { return types.NoDependency }
func (l *Literal) ReturnType() types.Type         { return l.value.ItemType() }

func (l *Literal) Eval(context.Context, Focus) (types.Sequence, error) {
	return l.value, nil
}

func (l *Literal) String() string {
	switch l.value.Len() {
	case 0:
		return "()"
	case 1:
		return literalText(l.value.ItemAt(0))
	}
	parts := make([]string, l.value.Len())
	for i := range parts {
		parts[i] = literalText(l.value.ItemAt(i))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func literalText(it types.Item) string {
	if s, ok := it.(types.String); ok {
		return `"` + strings.ReplaceAll(string(s), `"`, `""`) + `"`
	}
	return it.StringValue()
}

// ContextItem is the '.' expression.
type ContextItem struct{}

func (ContextItem) Analyze(AnalyzeContext) error { return nil }

func (ContextItem) Dependencies() types.Dependency {
	return types.ContextSet | types.ContextItem
}

func (ContextItem) ReturnType() types.Type { return types.TypeItem }

// Eval returns the context item, or the context sequence when evaluation
// is not per item.
func (ContextItem) Eval(_ context.Context, focus Focus) (types.Sequence, error) {
	if focus.Item != nil {
		return itemSequence(focus.Item), nil
	}
	if focus.Sequence != nil {
		return focus.Sequence, nil
	}
	return nil, types.Errorf(types.ErrContextAbsent, "the context item is absent")
}

func (ContextItem) String() string { return "." }

// CardinalityCheck fails when its operand's length violates a cardinality.
// The error names the argument position and the function signature.
type CardinalityCheck struct {
	expr   Expression
	card   types.Cardinality
	argPos int
	sig    functions.Signature
}

// NewCardinalityCheck guards argument argPos (1-based) of sig.
func NewCardinalityCheck(expr Expression, card types.Cardinality, argPos int, sig functions.Signature) *CardinalityCheck {
	return &CardinalityCheck{expr: expr, card: card, argPos: argPos, sig: sig}
}

func (c *CardinalityCheck) Analyze(actx AnalyzeContext) error { return c.expr.Analyze(actx) }
func (c *CardinalityCheck) Dependencies() types.Dependency    { return c.expr.Dependencies() }
func (c *CardinalityCheck) ReturnType() types.Type            { return c.expr.ReturnType() }
func (c *CardinalityCheck) String() string                    { return c.expr.String() }

func (c *CardinalityCheck) Eval(ctx context.Context, focus Focus) (types.Sequence, error) {
	seq, err := c.expr.Eval(ctx, focus)
	if err != nil {
		return nil, err
	}
	if !c.card.Allows(seq.Len()) {
		return nil, types.Errorf(types.ErrCardinality,
			"argument %d of %s must be %s, got %d items", c.argPos, c.sig, cardinalityText(c.card), seq.Len())
	}
	return seq, nil
}

func cardinalityText(c types.Cardinality) string {
	switch c {
	case types.ExactlyOne:
		return "exactly one item"
	case types.ZeroOrOne:
		return "zero or one item"
	case types.OneOrMore:
		return "one or more items"
	default:
		return "any number of items"
	}
}

// Atomize replaces nodes by their typed values.
type Atomize struct {
	expr Expression
}

// NewAtomize atomizes the items of expr.
func NewAtomize(expr Expression) *Atomize {
	return &Atomize{expr: expr}
}

func (a *Atomize) Analyze(actx AnalyzeContext) error { return a.expr.Analyze(actx) }
func (a *Atomize) Dependencies() types.Dependency    { return a.expr.Dependencies() }
func (a *Atomize) String() string                    { return a.expr.String() }

func (a *Atomize) ReturnType() types.Type {
	t := a.expr.ReturnType()
	switch {
	case types.SubTypeOf(t, types.TypeAtomic):
		return t
	case types.SubTypeOf(t, types.TypeNode):
		return types.TypeUntypedAtomic
	default:
		return types.TypeAtomic
	}
}

func (a *Atomize) Eval(ctx context.Context, focus Focus) (types.Sequence, error) {
	seq, err := a.expr.Eval(ctx, focus)
	if err != nil {
		return nil, err
	}
	out := make(types.ValueSequence, seq.Len())
	for i := range out {
		out[i] = types.Atomize(seq.ItemAt(i))
	}
	return out, nil
}

// Not implements fn:not. Its operand is analyzed outside predicate context
// so that it always yields a boolean-compatible value.
type Not struct {
	arg Expression
}

func newNot(_ *Evaluator, _ functions.Signature, args []Expression) (Expression, error) {
	return &Not{arg: args[0]}, nil
}

func (n *Not) Analyze(AnalyzeContext) error {
	return n.arg.Analyze(AnalyzeContext{InPredicate: false})
}

func (n *Not) Dependencies() types.Dependency { return n.arg.Dependencies() }
func (n *Not) ReturnType() types.Type         { return types.TypeBoolean }
func (n *Not) String() string                 { return fmt.Sprintf("not(%s)", n.arg) }

func (n *Not) Eval(ctx context.Context, focus Focus) (types.Sequence, error) {
	seq, err := n.arg.Eval(ctx, focus)
	if err != nil {
		return nil, err
	}
	b, err := types.EffectiveBooleanValue(seq)
	if err != nil {
		return nil, err
	}
	return types.Singleton(types.Boolean(!b)), nil
}

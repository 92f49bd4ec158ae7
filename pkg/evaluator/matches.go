package evaluator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sandrolain/goxmatch/pkg/functions"
	"github.com/sandrolain/goxmatch/pkg/index"
	"github.com/sandrolain/goxmatch/pkg/profiler"
	"github.com/sandrolain/goxmatch/pkg/regex"
	"github.com/sandrolain/goxmatch/pkg/types"
)

// strategy is the evaluation route chosen for one call of a matches node.
type strategy uint8

const (
	strategyEmpty strategy = iota
	strategyIndex
	strategyGeneric
)

func (s strategy) String() string {
	switch s {
	case strategyEmpty:
		return "empty"
	case strategyIndex:
		return "index"
	case strategyGeneric:
		return "generic"
	default:
		return fmt.Sprintf("strategy(%d)", uint8(s))
	}
}

// matchesDependencies computes the dependencies of a matches call.
// The context set is always read. The context item is read unless the
// subject is statically a node sequence and neither the subject nor the
// pattern reads the context item.
func matchesDependencies(subjectType types.Type, subjectDeps, patternDeps types.Dependency) types.Dependency {
	deps := types.ContextSet
	if !types.SubTypeOf(subjectType, types.TypeNode) ||
		subjectDeps.DependsOn(types.ContextItem) ||
		patternDeps.DependsOn(types.ContextItem) {
		deps |= types.ContextItem
	}
	return deps
}

// matchesReturnType is node inside a predicate when the call does not read
// the context item, and boolean otherwise.
func matchesReturnType(inPredicate bool, deps types.Dependency) types.Type {
	if inPredicate && !deps.DependsOn(types.ContextItem) {
		return types.TypeNode
	}
	return types.TypeBoolean
}

// chooseStrategy routes one evaluation given the length of the evaluated
// subject.
func chooseStrategy(subjectLen int, inPredicate bool, deps types.Dependency) strategy {
	switch {
	case subjectLen == 0:
		return strategyEmpty
	case inPredicate && !deps.DependsOn(types.ContextItem):
		return strategyIndex
	default:
		return strategyGeneric
	}
}

// ResultKind tells which variant a MatchResult holds.
type ResultKind uint8

// Result kinds.
const (
	ResultEmpty ResultKind = iota
	ResultNodes
	ResultBoolean
)

// MatchResult is the outcome of one matches evaluation: nothing, the
// matching subject nodes, or a boolean.
type MatchResult struct {
	kind  ResultKind
	nodes *types.NodeSet
	value bool
}

// Kind returns the variant held.
func (r MatchResult) Kind() ResultKind { return r.kind }

// Nodes returns the matching nodes. Nil unless Kind is ResultNodes.
func (r MatchResult) Nodes() *types.NodeSet { return r.nodes }

// Boolean returns the match outcome. False unless Kind is ResultBoolean.
func (r MatchResult) Boolean() bool { return r.value }

// Sequence converts the result to a sequence.
func (r MatchResult) Sequence() types.Sequence {
	switch r.kind {
	case ResultNodes:
		return r.nodes
	case ResultBoolean:
		return types.Singleton(types.Boolean(r.value))
	default:
		return types.Empty
	}
}

// Matches implements fn:matches($input, $pattern[, $flags]).
//
// Inside a predicate, when the subject is a context-independent node
// sequence, the call yields the matching subject nodes and may be answered
// by the value index. Everywhere else it yields a boolean.
//
// A Matches node remembers the last compiled pattern and is not safe for
// concurrent evaluation.
type Matches struct {
	ev          *Evaluator
	sig         functions.Signature
	subject     Expression
	pattern     Expression
	flags       Expression // nil for the two-argument form
	inPredicate bool
	memo        regex.Memo
}

// NewMatches builds a matches call over args: subject, pattern and optional
// flags. Any other argument count is an XPST0017 error.
func (e *Evaluator) NewMatches(args ...Expression) (*Matches, error) {
	def, err := builtins().Lookup("matches", len(args))
	if err != nil {
		return nil, err
	}
	return bindMatches(e, def.Signature, args), nil
}

func newMatches(ev *Evaluator, sig functions.Signature, args []Expression) (Expression, error) {
	return bindMatches(ev, sig, args), nil
}

func bindMatches(ev *Evaluator, sig functions.Signature, args []Expression) *Matches {
	m := &Matches{
		ev:      ev,
		sig:     sig,
		subject: args[0],
		pattern: bindArgument(args[1], 2, sig),
	}
	if len(args) == 3 {
		m.flags = bindArgument(args[2], 3, sig)
	}
	return m
}

// bindArgument guards a single-item argument and atomizes it when its
// static type is not atomic.
func bindArgument(arg Expression, pos int, sig functions.Signature) Expression {
	arg = NewCardinalityCheck(arg, types.ExactlyOne, pos, sig)
	if !types.SubTypeOf(arg.ReturnType(), types.TypeAtomic) {
		arg = NewAtomize(arg)
	}
	return arg
}

// Analyze analyzes every operand and records whether the call sits in a predicate.
func (m *Matches) Analyze(actx AnalyzeContext) error {
	for _, arg := range m.operands() {
		if err := arg.Analyze(actx); err != nil {
			return err
		}
	}
	m.inPredicate = actx.InPredicate
	return nil
}

// Dependencies implements Expression.
func (m *Matches) Dependencies() types.Dependency {
	return matchesDependencies(m.subject.ReturnType(), m.subject.Dependencies(), m.pattern.Dependencies())
}

// ReturnType is a node type for set-at-a-time predicates and Boolean otherwise.
func (m *Matches) ReturnType() types.Type {
	return matchesReturnType(m.inPredicate, m.Dependencies())
}

func (m *Matches) String() string {
	ops := m.operands()
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = op.String()
	}
	return "matches(" + strings.Join(parts, ", ") + ")"
}

func (m *Matches) operands() []Expression {
	if m.flags == nil {
		return []Expression{m.subject, m.pattern}
	}
	return []Expression{m.subject, m.pattern, m.flags}
}

// Eval returns the sequence form of EvalMatch.
func (m *Matches) Eval(ctx context.Context, focus Focus) (types.Sequence, error) {
	res, err := m.EvalMatch(ctx, focus)
	if err != nil {
		return nil, err
	}
	return res.Sequence(), nil
}

// EvalMatch evaluates the call and returns the tagged result.
func (m *Matches) EvalMatch(ctx context.Context, focus Focus) (res MatchResult, err error) {
	prof := m.ev.opts.Profiler
	deps := m.Dependencies()
	if prof.Enabled() {
		prof.Start(m)
		prof.Message(m, profiler.Dependencies, profiler.TitleDependencies, deps.String())
		if focus.Sequence != nil {
			prof.Message(m, profiler.StartSequences, profiler.TitleContextSequence, focus.Sequence)
		}
		if focus.Item != nil {
			prof.Message(m, profiler.StartSequences, profiler.TitleContextItem, itemSequence(focus.Item))
		}
		defer func() { prof.End(m, "", res.Sequence()) }()
	}

	if focus.Item != nil {
		focus.Sequence = itemSequence(focus.Item)
	}
	subject, err := m.subject.Eval(ctx, focus)
	if err != nil {
		return MatchResult{}, err
	}

	strat := chooseStrategy(subject.Len(), m.inPredicate, deps)
	if m.ev.logger.Enabled(ctx, slog.LevelDebug) {
		m.ev.logger.DebugContext(ctx, "matches strategy",
			"expression", m.String(), "strategy", strat.String(), "subject_len", subject.Len())
	}

	switch strat {
	case strategyEmpty:
		if prof.Enabled() {
			prof.Message(m, profiler.Optimizations, profiler.TitleEmptySubject, "")
		}
		return MatchResult{kind: ResultEmpty}, nil
	case strategyIndex:
		if prof.Enabled() {
			prof.Message(m, profiler.Optimizations, profiler.TitleIndexEvaluation, "")
		}
		nodes, err := m.evalWithIndex(ctx, focus, subject)
		if err != nil {
			return MatchResult{}, err
		}
		return MatchResult{kind: ResultNodes, nodes: nodes}, nil
	default:
		if prof.Enabled() {
			prof.Message(m, profiler.Optimizations, profiler.TitleGenericEvaluation, "")
		}
		ok, err := m.evalGeneric(ctx, focus, subject)
		if err != nil {
			return MatchResult{}, err
		}
		return MatchResult{kind: ResultBoolean, value: ok}, nil
	}
}

// evalWithIndex answers the call with the value index when the subject
// nodes are string-indexed, and scans them one by one otherwise.
func (m *Matches) evalWithIndex(ctx context.Context, focus Focus, subject types.Sequence) (*types.NodeSet, error) {
	flagText, flags, err := m.evalFlags(ctx, focus)
	if err != nil {
		return nil, err
	}
	caseSensitive := regex.IsCaseSensitive(flagText)
	pattern, err := m.evalPattern(ctx, focus)
	if err != nil {
		return nil, err
	}
	nodes, err := types.ToNodeSet(subject)
	if err != nil {
		return nil, err
	}

	idx := m.ev.opts.Index
	if idx != nil && types.SubTypeOf(nodes.IndexType(), types.TypeString) {
		if prof := m.ev.opts.Profiler; prof.Enabled() {
			prof.Message(m, profiler.Optimizations, profiler.TitleUsingIndex, idx.Name())
		}
		return idx.Match(ctx, nodes.Documents(), nodes, pattern, index.MatchRegexp, flags, caseSensitive)
	}

	matcher, err := m.compile(pattern, flags)
	if err != nil {
		return nil, err
	}
	out := types.NewNodeSet()
	for i, n := range nodes.Nodes() {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if matcher.MatchString(n.StringValue()) {
			out.Add(n)
		}
	}
	return out, nil
}

// evalGeneric tests the single string value of the subject.
func (m *Matches) evalGeneric(ctx context.Context, focus Focus, subject types.Sequence) (bool, error) {
	s, err := subject.StringValue()
	if err != nil {
		return false, err
	}
	pattern, err := m.evalPattern(ctx, focus)
	if err != nil {
		return false, err
	}
	_, flags, err := m.evalFlags(ctx, focus)
	if err != nil {
		return false, err
	}
	matcher, err := m.compile(pattern, flags)
	if err != nil {
		return false, err
	}
	return matcher.MatchString(s), nil
}

// evalPattern evaluates and translates the pattern operand.
func (m *Matches) evalPattern(ctx context.Context, focus Focus) (string, error) {
	seq, err := m.pattern.Eval(ctx, focus)
	if err != nil {
		return "", err
	}
	src, err := seq.StringValue()
	if err != nil {
		return "", err
	}
	host, err := m.ev.translator.Translate(src)
	if err != nil {
		return "", types.Errorf(types.ErrPatternTranslation, "cannot translate pattern %q", src).WithCause(err)
	}
	return host, nil
}

// evalFlags evaluates and parses the flags operand. The two-argument form
// has no flags.
func (m *Matches) evalFlags(ctx context.Context, focus Focus) (string, regex.FlagSet, error) {
	if m.flags == nil {
		return "", 0, nil
	}
	seq, err := m.flags.Eval(ctx, focus)
	if err != nil {
		return "", 0, err
	}
	text, err := seq.StringValue()
	if err != nil {
		return "", 0, err
	}
	flags, err := regex.ParseFlags(text)
	if err != nil {
		var fe *regex.FlagError
		if errors.As(err, &fe) {
			return "", 0, types.Errorf(types.ErrInvalidFlags, "invalid flag %q", fe.Flag).WithCause(err)
		}
		return "", 0, types.Errorf(types.ErrInvalidFlags, "invalid flags %q", text).WithCause(err)
	}
	return text, flags, nil
}

func (m *Matches) compile(pattern string, flags regex.FlagSet) (regex.Matcher, error) {
	matcher, err := m.memo.GetOrCompile(m.ev.opts.Engine, pattern, flags)
	if err != nil {
		return nil, types.Errorf(types.ErrRegexCompile, "cannot compile pattern %q", pattern).WithCause(err)
	}
	return matcher, nil
}

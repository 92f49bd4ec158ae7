// Package ext provides optional text functions for goxmatch queries beyond
// fn:matches and fn:not.
//
// Every function here is fn:matches with fixed flags, so it gets the same
// static analysis and is answered from a value index when one covers the
// tested nodes:
//   - matches-ci($input, $pattern)       matches($input, $pattern, "i")
//   - contains-text($input, $text)       matches($input, quoted($text))
//   - contains-text-ci($input, $text)    matches($input, quoted($text), "i")
//
// quoted escapes every regex metacharacter of $text.
//
// # Integration: all extensions at once
//
//	import "github.com/sandrolain/goxmatch/pkg/ext"
//
//	books, err := goxmatch.Eval(`//book[contains-text-ci(title, "star")]`, docs, ext.WithAll())
//
// # Integration: single functions
//
//	books, err := goxmatch.Eval(query, docs, ext.With(ext.ContainsText()))
package ext

import (
	"context"

	"github.com/sandrolain/goxmatch/pkg/evaluator"
	"github.com/sandrolain/goxmatch/pkg/functions"
	"github.com/sandrolain/goxmatch/pkg/regex"
	"github.com/sandrolain/goxmatch/pkg/types"
)

// MatchesCI returns matches-ci($input, $pattern): a case-insensitive match.
func MatchesCI() evaluator.CustomFunction {
	return withFlags("matches-ci", "pattern", "i", false,
		"Returns true if $input matches the regular expression $pattern, ignoring case.")
}

// ContainsText returns contains-text($input, $text): a literal substring test.
func ContainsText() evaluator.CustomFunction {
	return withFlags("contains-text", "text", "", true,
		"Returns true if $input contains $text. Metacharacters in $text are literal.")
}

// ContainsTextCI returns contains-text-ci($input, $text): a literal,
// case-insensitive substring test.
func ContainsTextCI() evaluator.CustomFunction {
	return withFlags("contains-text-ci", "text", "i", true,
		"Returns true if $input contains $text, ignoring case. Metacharacters in $text are literal.")
}

// All returns every extension function.
func All() []evaluator.CustomFunction {
	return []evaluator.CustomFunction{
		MatchesCI(),
		ContainsText(),
		ContainsTextCI(),
	}
}

// WithAll registers every extension function.
func WithAll() evaluator.EvalOption {
	return With(All()...)
}

// With registers the given extension functions.
func With(fns ...evaluator.CustomFunction) evaluator.EvalOption {
	return func(opts *evaluator.EvalOptions) {
		opts.CustomFunctions = append(opts.CustomFunctions, fns...)
	}
}

func withFlags(name, second, flags string, literal bool, description string) evaluator.CustomFunction {
	sig := functions.Signature{
		Name:        name,
		Description: description,
		Params: []functions.Param{
			{Name: "input", Type: types.TypeString, Cardinality: types.ZeroOrMore},
			{Name: second, Type: types.TypeString, Cardinality: types.ExactlyOne},
		},
		Return: types.TypeBoolean,
	}
	flagArg := evaluator.NewLiteral(types.Singleton(types.String(flags)))
	factory := func(ev *evaluator.Evaluator, _ functions.Signature, args []evaluator.Expression) (evaluator.Expression, error) {
		pattern := args[1]
		if literal {
			pattern = &quoted{Expression: pattern}
		}
		m, err := ev.NewMatches(args[0], pattern, flagArg)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	return evaluator.CustomFunction{Signature: sig, Factory: factory}
}

// quoted yields its operand's string value with regex metacharacters
// escaped. Sequences that are not singletons pass through unchanged so the
// cardinality check on the pattern reports them.
type quoted struct {
	evaluator.Expression
}

func (q *quoted) ReturnType() types.Type { return types.TypeString }

func (q *quoted) Eval(ctx context.Context, focus evaluator.Focus) (types.Sequence, error) {
	seq, err := q.Expression.Eval(ctx, focus)
	if err != nil || seq.Len() != 1 {
		return seq, err
	}
	return types.Singleton(types.String(regex.QuoteMeta(seq.ItemAt(0).StringValue()))), nil
}

func (q *quoted) String() string { return q.Expression.String() }

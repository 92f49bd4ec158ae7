// Package goxmatch evaluates regular-expression predicates over document
// trees, answering them from a value index when one covers the tested nodes.
//
// Queries use a small path language with predicates and the fn:matches and
// fn:not functions. Patterns follow the XPath regular expression dialect
// and are translated to the host engine's syntax.
//
// # Quick Start
//
//	// Test a single string
//	ok, err := goxmatch.Matches("Hello World", "hello", "i")
//
//	// Query a document set
//	books, err := goxmatch.Eval(`//book[matches(title, "^A", "i")]`, docs)
//
//	// With an index and options
//	books, err := goxmatch.Eval(`//book[matches(title, "^A")]`, docs,
//	    evaluator.WithIndex(idx),
//	    evaluator.WithTimeout(5*time.Second),
//	)
//
// # More Information
//
// For detailed documentation, see:
//   - Parser: github.com/sandrolain/goxmatch/pkg/parser
//   - Evaluator: github.com/sandrolain/goxmatch/pkg/evaluator
//   - Regex translation: github.com/sandrolain/goxmatch/pkg/regex
//   - Value indexes: github.com/sandrolain/goxmatch/pkg/index
//   - Document store: github.com/sandrolain/goxmatch/pkg/store
package goxmatch

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/sandrolain/goxmatch/pkg/evaluator"
	"github.com/sandrolain/goxmatch/pkg/parser"
	"github.com/sandrolain/goxmatch/pkg/regex"
	"github.com/sandrolain/goxmatch/pkg/types"
)

// Version returns the current version of goxmatch.
func Version() string {
	return "v0.1.0-dev"
}

// Compile parses a query for repeated evaluation.
//
// Example:
//
//	expr, err := goxmatch.Compile(`//book[matches(title, "^A")]`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	q, _ := evaluator.New().Compile(expr)
//	books, _ := q.Eval(ctx, docs)
func Compile(query string, opts ...parser.CompileOption) (*types.Expression, error) {
	return parser.Compile(query, opts...)
}

// MustCompile is like Compile but panics if the query cannot be parsed.
// It simplifies safe initialization of global variables.
func MustCompile(query string) *types.Expression {
	expr, err := Compile(query)
	if err != nil {
		panic(fmt.Sprintf("goxmatch: Compile(%q): %v", query, err))
	}
	return expr
}

// Eval is a convenience function that parses and evaluates a query in a
// single call.
func Eval(query string, docs *types.DocumentSet, opts ...evaluator.EvalOption) (types.Sequence, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return EvalWithContext(ctx, query, docs, opts...)
}

// EvalWithContext evaluates a query with a custom context.
func EvalWithContext(ctx context.Context, query string, docs *types.DocumentSet, opts ...evaluator.EvalOption) (types.Sequence, error) {
	expr, err := Compile(query)
	if err != nil {
		return nil, err
	}
	return evaluator.New(opts...).Eval(ctx, expr, docs)
}

// Matches reports whether subject contains a match of the XPath regular
// expression pattern under flags.
func Matches(subject, pattern, flags string, opts ...evaluator.EvalOption) (bool, error) {
	str := func(s string) evaluator.Expression {
		return evaluator.NewLiteral(types.Singleton(types.String(s)))
	}
	m, err := evaluator.New(opts...).NewMatches(str(subject), str(pattern), str(flags))
	if err != nil {
		return false, err
	}
	if err := m.Analyze(evaluator.AnalyzeContext{}); err != nil {
		return false, err
	}
	res, err := m.EvalMatch(context.Background(), evaluator.Focus{})
	if err != nil {
		return false, err
	}
	return res.Boolean(), nil
}

// Translate converts an XPath regular expression into the host syntax.
func Translate(pattern string) (string, error) {
	return regex.Translate(pattern)
}

// EvalMany evaluates queries against docs on a pool of workers goroutines.
// Each query gets its own plan. Results are returned in input order; the
// error is the first failure in input order, if any. workers <= 0 uses
// GOMAXPROCS.
func EvalMany(ctx context.Context, queries []string, docs *types.DocumentSet, workers int, opts ...evaluator.EvalOption) ([]types.Sequence, error) {
	ev := evaluator.New(opts...)
	plans := make([]*evaluator.Query, len(queries))
	for i, query := range queries {
		expr, err := Compile(query)
		if err != nil {
			return nil, fmt.Errorf("query %d: %w", i, err)
		}
		if plans[i], err = ev.Compile(expr); err != nil {
			return nil, fmt.Errorf("query %d: %w", i, err)
		}
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	results := make([]types.Sequence, len(plans))
	errs := make([]error, len(plans))
	var wg sync.WaitGroup
	for i, plan := range plans {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("panic: %v", r)
				}
			}()
			results[i], errs[i] = plan.Eval(ctx, docs)
		})
		if err != nil {
			wg.Done()
			errs[i] = err
		}
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return results, fmt.Errorf("query %d: %w", i, err)
		}
	}
	return results, nil
}

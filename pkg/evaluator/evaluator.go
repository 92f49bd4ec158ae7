// Package evaluator turns parsed queries into expression trees and evaluates
// them against a document set.
//
// An Evaluator holds the configuration shared by every plan it builds: the
// host regex engine, the value index, the translation cache, the profiler
// and the logger. It is safe for concurrent use. The plans it compiles
// (Query values) are not: each concurrent caller needs its own Query, which
// Clone provides.
//
// # Example
//
//	ev := evaluator.New(evaluator.WithIndex(idx))
//	expr, _ := parser.Parse(`//book[matches(title, "^A", "i")]`)
//	q, err := ev.Compile(expr)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	books, err := q.Eval(ctx, store.Documents())
package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sandrolain/goxmatch/pkg/functions"
	"github.com/sandrolain/goxmatch/pkg/index"
	"github.com/sandrolain/goxmatch/pkg/profiler"
	"github.com/sandrolain/goxmatch/pkg/regex"
	"github.com/sandrolain/goxmatch/pkg/types"
)

// Evaluator compiles and evaluates queries.
type Evaluator struct {
	opts       EvalOptions
	logger     *slog.Logger
	translator *regex.Translator
	customFns  *functions.Registry[Factory] // nil without custom functions
}

// EvalOptions configures evaluator behavior.
type EvalOptions struct {
	// Engine compiles host patterns. Defaults to regex.Default.
	Engine regex.Engine
	// Index answers matches predicates over string-indexed nodes.
	// Without an index those predicates scan the nodes.
	Index index.ValueIndex
	// Profiler receives evaluation events. Defaults to profiler.Nop.
	Profiler profiler.Profiler
	// TranslationCacheSize sets the size of a private translation cache.
	// Zero shares the process-wide cache.
	TranslationCacheSize int
	// Translator is a translation cache to use instead of the default one.
	Translator *regex.Translator
	// Timeout sets evaluation timeout.
	Timeout time.Duration
	// Logger for structured logging.
	Logger *slog.Logger
	// CustomFunctions holds user-defined functions to register with the evaluator.
	CustomFunctions []CustomFunction
}

// CustomFunction is a user-defined function made available to queries.
type CustomFunction struct {
	Signature functions.Signature
	Factory   Factory
}

var (
	sharedTranslator     *regex.Translator
	sharedTranslatorOnce sync.Once
)

func defaultTranslator() *regex.Translator {
	sharedTranslatorOnce.Do(func() {
		sharedTranslator = regex.NewTranslator(0)
	})
	return sharedTranslator
}

// New creates a new Evaluator with default options.
func New(opts ...EvalOption) *Evaluator {
	options := EvalOptions{
		Engine:   regex.Default,
		Profiler: profiler.Nop,
		Timeout:  30 * time.Second,
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Engine == nil {
		options.Engine = regex.Default
	}
	if options.Profiler == nil {
		options.Profiler = profiler.Nop
	}

	translator := options.Translator
	switch {
	case translator != nil:
	case options.TranslationCacheSize > 0:
		translator = regex.NewTranslator(options.TranslationCacheSize)
	default:
		translator = defaultTranslator()
	}

	var custom *functions.Registry[Factory]
	if len(options.CustomFunctions) > 0 {
		custom = functions.NewRegistry[Factory]()
		for _, cf := range options.CustomFunctions {
			// a duplicate keeps the first definition
			if err := custom.Register(cf.Signature, cf.Factory); err != nil {
				options.Logger.Warn("custom function ignored", "function", cf.Signature.Name, "error", err)
			}
		}
	}

	return &Evaluator{
		opts:       options,
		logger:     options.Logger,
		translator: translator,
		customFns:  custom,
	}
}

// Options returns the effective options.
func (e *Evaluator) Options() EvalOptions {
	return e.opts
}

// Translator returns the translation cache used by the evaluator.
func (e *Evaluator) Translator() *regex.Translator {
	return e.translator
}

// Compile builds and analyzes the plan for expr.
func (e *Evaluator) Compile(expr *types.Expression) (*Query, error) {
	if expr == nil || expr.AST() == nil {
		return nil, fmt.Errorf("invalid expression")
	}
	root, err := e.build(expr.AST())
	if err != nil {
		return nil, err
	}
	if err := root.Analyze(AnalyzeContext{}); err != nil {
		return nil, err
	}
	return &Query{ev: e, expr: expr, root: root}, nil
}

// Eval compiles expr and evaluates it against docs.
func (e *Evaluator) Eval(ctx context.Context, expr *types.Expression, docs *types.DocumentSet) (types.Sequence, error) {
	q, err := e.Compile(expr)
	if err != nil {
		return nil, err
	}
	return q.Eval(ctx, docs)
}

// lookup resolves a function call, custom functions first.
func (e *Evaluator) lookup(name string, arity int) (*functions.FunctionDef[Factory], error) {
	if e.customFns != nil {
		if def, err := e.customFns.Lookup(name, arity); err == nil {
			return def, nil
		}
	}
	return builtins().Lookup(name, arity)
}

// EvalOption configures evaluation behavior.
type EvalOption func(*EvalOptions)

// WithEngine selects the host regex engine.
func WithEngine(engine regex.Engine) EvalOption {
	return func(opts *EvalOptions) {
		opts.Engine = engine
	}
}

// WithIndex attaches a value index.
func WithIndex(idx index.ValueIndex) EvalOption {
	return func(opts *EvalOptions) {
		opts.Index = idx
	}
}

// WithProfiler sets the profiler.
func WithProfiler(p profiler.Profiler) EvalOption {
	return func(opts *EvalOptions) {
		opts.Profiler = p
	}
}

// WithTranslationCacheSize gives the evaluator a private translation cache
// of the given size.
func WithTranslationCacheSize(size int) EvalOption {
	return func(opts *EvalOptions) {
		opts.TranslationCacheSize = size
	}
}

// WithTranslator attaches an external translation cache.
func WithTranslator(t *regex.Translator) EvalOption {
	return func(opts *EvalOptions) {
		opts.Translator = t
	}
}

// WithTimeout sets the evaluation timeout.
func WithTimeout(timeout time.Duration) EvalOption {
	return func(opts *EvalOptions) {
		opts.Timeout = timeout
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EvalOption {
	return func(opts *EvalOptions) {
		opts.Logger = logger
	}
}

// WithFunction registers a user-defined function.
//
// Example:
//
//	evaluator.WithFunction(functions.Signature{Name: "true", Return: types.TypeBoolean},
//	    func(*evaluator.Evaluator, functions.Signature, []evaluator.Expression) (evaluator.Expression, error) {
//	        return evaluator.NewLiteral(types.Singleton(types.Boolean(true))), nil
//	    })
func WithFunction(sig functions.Signature, factory Factory) EvalOption {
	return func(opts *EvalOptions) {
		opts.CustomFunctions = append(opts.CustomFunctions, CustomFunction{
			Signature: sig,
			Factory:   factory,
		})
	}
}

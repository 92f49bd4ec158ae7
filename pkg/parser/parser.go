// Package parser implements the query parser.
//
// The parser is a hand-written recursive descent parser over a small
// path language: location paths with child and descendant steps, step
// predicates, function calls and string or number literals.
//
// # Grammar
//
//	Expr         := PathExpr
//	PathExpr     := '/' RelPath? | '//' RelPath | RelPath
//	RelPath      := StepExpr (('/' | '//') AxisStep)*
//	StepExpr     := AxisStep | Primary Predicate*
//	AxisStep     := (Name | '*' | '.') Predicate*
//	Primary      := String | Number | FunctionCall | '(' Expr? ')'
//	Predicate    := '[' Expr ']'
//	FunctionCall := Name '(' (Expr (',' Expr)*)? ')'
//
// String literals use single or double quotes; a doubled quote escapes the
// quote character and backslashes are kept as written, so regex patterns
// need no extra escaping.
//
// # Example
//
//	expr, err := parser.Parse(`//book[matches(title, "^A", "i")]`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ast := expr.AST()
package parser

import (
	"github.com/sandrolain/goxmatch/pkg/types"
)

// Parse parses a query and returns the Expression.
//
// Syntax errors are *types.Error values with code XPST0003 and the byte
// offset of the offending token.
func Parse(query string) (*types.Expression, error) {
	p := NewParser(query)
	return p.Parse()
}

// Compile is an alias for Parse accepting options.
func Compile(query string, opts ...CompileOption) (*types.Expression, error) {
	p := NewParser(query, opts...)
	return p.Parse()
}

// CompileOption configures compilation behavior.
type CompileOption func(*CompileOptions)

// CompileOptions holds parser configuration.
type CompileOptions struct {
	// MaxDepth limits recursion depth to prevent stack overflow.
	MaxDepth int
}

// WithMaxDepth sets the maximum parsing depth.
func WithMaxDepth(depth int) CompileOption {
	return func(opts *CompileOptions) {
		opts.MaxDepth = depth
	}
}

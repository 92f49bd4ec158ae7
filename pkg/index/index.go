// Package index provides value indexes that answer string-pattern predicates
// over document nodes without scanning every node.
//
// Two implementations are available:
//   - MemoryIndex: per-document maps held in memory
//   - SQLIndex: a gorm table on pure-Go sqlite
//
// Only nodes whose declared index type is a string type are indexed.
package index

import (
	"context"
	"fmt"

	"github.com/sandrolain/goxmatch/pkg/regex"
	"github.com/sandrolain/goxmatch/pkg/types"
)

// MatchKind selects how the pattern passed to Match is interpreted.
type MatchKind uint8

// Match kinds.
const (
	// MatchRegexp interprets the pattern as a host-dialect regex.
	MatchRegexp MatchKind = iota
	// MatchExact compares values for equality.
	MatchExact
	// MatchWildcard interprets the pattern as a glob.
	MatchWildcard
)

// String returns the match kind name.
func (k MatchKind) String() string {
	switch k {
	case MatchRegexp:
		return "regexp"
	case MatchExact:
		return "exact"
	case MatchWildcard:
		return "wildcard"
	default:
		return fmt.Sprintf("MatchKind(%d)", uint8(k))
	}
}

// ValueIndex answers pattern predicates from indexed node values.
//
// Implementations must be safe for concurrent use.
type ValueIndex interface {
	// Name identifies the index in logs and metrics.
	Name() string
	// Match returns the members of nodes, in order, whose indexed value
	// matches pattern. docs is the set of documents nodes span.
	// caseSensitive is false when flags request case folding.
	Match(ctx context.Context, docs *types.DocumentSet, nodes *types.NodeSet,
		pattern string, kind MatchKind, flags regex.FlagSet, caseSensitive bool) (*types.NodeSet, error)
}

// Indexer is a ValueIndex that can be maintained.
type Indexer interface {
	ValueIndex
	// Index adds or replaces the values of doc.
	Index(ctx context.Context, doc *types.Document) error
	// Remove drops every value of the document.
	Remove(ctx context.Context, id types.DocumentID) error
}

// Unsupported returns the error reported for match kinds an index cannot
// answer.
func Unsupported(index string, kind MatchKind) error {
	return types.NewIndexQueryError(
		fmt.Sprintf("index %s does not support %s matching", index, kind), nil)
}

// Indexable reports whether n's value belongs in a string value index.
func Indexable(n *types.Node) bool {
	return types.SubTypeOf(n.IndexType(), types.TypeString)
}

// compile compiles pattern for an index lookup. Compile failures are
// reported with the regex compile code, not as storage failures.
func compile(engine regex.Engine, pattern string, flags regex.FlagSet) (regex.Matcher, error) {
	m, err := engine.Compile(pattern, flags)
	if err != nil {
		return nil, types.Errorf(types.ErrRegexCompile, "cannot compile %q", pattern).WithCause(err)
	}
	return m, nil
}

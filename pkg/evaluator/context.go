package evaluator

import (
	"github.com/sandrolain/goxmatch/pkg/types"
)

// Focus is the dynamic context an expression is evaluated against.
type Focus struct {
	// Sequence is the context sequence. Nil when there is none.
	Sequence types.Sequence
	// Item is the context item. Nil outside per-item evaluation.
	Item types.Item
	// Position is the 1-based position of Item within Sequence.
	Position int
	// Docs is the document set absolute paths start from.
	Docs *types.DocumentSet
}

// NewFocus creates the top-level focus for docs: the context sequence is
// the document nodes and there is no context item.
func NewFocus(docs *types.DocumentSet) Focus {
	if docs == nil {
		docs = types.NewDocumentSet()
	}
	return Focus{Sequence: docs.Roots(), Docs: docs}
}

// ForItem returns the focus for evaluating against the item at the given
// 1-based position of the context sequence.
func (f Focus) ForItem(it types.Item, position int) Focus {
	f.Item = it
	f.Position = position
	return f
}

// ForSequence returns a focus with seq as context sequence and no context
// item.
func (f Focus) ForSequence(seq types.Sequence) Focus {
	f.Sequence = seq
	f.Item = nil
	f.Position = 0
	return f
}

// AnalyzeContext carries the static context of the analysis pass.
type AnalyzeContext struct {
	// InPredicate is set for expressions lexically inside a filter predicate.
	InPredicate bool
}

// itemSequence wraps a single item, keeping nodes in a NodeSet.
func itemSequence(it types.Item) types.Sequence {
	if n, ok := it.(*types.Node); ok {
		return types.NewNodeSet(n)
	}
	return types.Singleton(it)
}

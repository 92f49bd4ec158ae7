package index

import (
	"context"
	"sync"

	"github.com/sandrolain/goxmatch/pkg/regex"
	"github.com/sandrolain/goxmatch/pkg/types"
)

// MemoryIndex keeps node values in memory.
type MemoryIndex struct {
	engine regex.Engine

	mu     sync.RWMutex
	values map[types.DocumentID]map[int]string
}

// NewMemoryIndex creates an empty index compiling patterns with engine.
// A nil engine selects regex.Default.
func NewMemoryIndex(engine regex.Engine) *MemoryIndex {
	if engine == nil {
		engine = regex.Default
	}
	return &MemoryIndex{
		engine: engine,
		values: make(map[types.DocumentID]map[int]string),
	}
}

// Name implements ValueIndex.
func (m *MemoryIndex) Name() string { return "memory" }

// Index implements Indexer.
func (m *MemoryIndex) Index(_ context.Context, doc *types.Document) error {
	vals := make(map[int]string)
	for _, n := range doc.Nodes() {
		if Indexable(n) {
			vals[n.Position()] = n.StringValue()
		}
	}
	m.mu.Lock()
	m.values[doc.ID()] = vals
	m.mu.Unlock()
	return nil
}

// Remove implements Indexer.
func (m *MemoryIndex) Remove(_ context.Context, id types.DocumentID) error {
	m.mu.Lock()
	delete(m.values, id)
	m.mu.Unlock()
	return nil
}

// Len returns the number of indexed values.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, vals := range m.values {
		n += len(vals)
	}
	return n
}

// Match implements ValueIndex. Each distinct value is tested once.
func (m *MemoryIndex) Match(ctx context.Context, docs *types.DocumentSet, nodes *types.NodeSet,
	pattern string, kind MatchKind, flags regex.FlagSet, _ bool) (*types.NodeSet, error) {
	if kind != MatchRegexp {
		return nil, Unsupported(m.Name(), kind)
	}
	matcher, err := compile(m.engine, pattern, flags)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	tested := make(map[string]bool)
	out := types.NewNodeSet()
	for i, n := range nodes.Nodes() {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, types.NewIndexQueryError("index lookup interrupted", err)
			}
		}
		id := n.Document().ID()
		if !docs.Contains(id) {
			continue
		}
		value, ok := m.values[id][n.Position()]
		if !ok {
			continue
		}
		hit, seen := tested[value]
		if !seen {
			hit = matcher.MatchString(value)
			tested[value] = hit
		}
		if hit {
			out.Add(n)
		}
	}
	return out, nil
}

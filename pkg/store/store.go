// Package store holds the documents a query runs against and keeps a value
// index in sync with them.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/sandrolain/goxmatch/pkg/index"
	"github.com/sandrolain/goxmatch/pkg/types"
)

// ErrNotFound is returned for unknown document identities.
var ErrNotFound = errors.New("document not found")

// Config declares which nodes carry a typed value index.
type Config struct {
	// Paths maps slash-separated element paths to index type names
	// ("string", "integer", "double", "boolean"). Keys may use doublestar
	// patterns such as "**/title".
	Paths map[string]string
}

type rule struct {
	pattern string
	typ     types.Type
}

// Store is a thread-safe in-memory document collection.
type Store struct {
	rules []rule
	idx   index.Indexer

	mu   sync.RWMutex
	docs []*types.Document
	byID map[types.DocumentID]*types.Document
}

// New creates a store. idx may be nil, in which case declared index types
// are still applied to nodes but nothing is indexed.
func New(cfg Config, idx index.Indexer) (*Store, error) {
	keys := make([]string, 0, len(cfg.Paths))
	for k := range cfg.Paths {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rules := make([]rule, 0, len(keys))
	for _, k := range keys {
		if !doublestar.ValidatePattern(k) {
			return nil, fmt.Errorf("invalid index path %q", k)
		}
		t, ok := types.ParseType(cfg.Paths[k])
		if !ok {
			return nil, fmt.Errorf("index path %q: unknown type %q", k, cfg.Paths[k])
		}
		rules = append(rules, rule{pattern: k, typ: t})
	}
	return &Store{
		rules: rules,
		idx:   idx,
		byID:  make(map[types.DocumentID]*types.Document),
	}, nil
}

// Index returns the store's indexer, or nil.
func (s *Store) Index() index.Indexer { return s.idx }

// Add declares index types on doc's nodes and indexes it.
// Adding a document twice re-indexes it.
func (s *Store) Add(ctx context.Context, doc *types.Document) error {
	s.declare(doc)
	if s.idx != nil {
		if err := s.idx.Index(ctx, doc); err != nil {
			return fmt.Errorf("index %s: %w", doc.URI(), err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[doc.ID()]; !ok {
		s.docs = append(s.docs, doc)
	}
	s.byID[doc.ID()] = doc
	return nil
}

func (s *Store) declare(doc *types.Document) {
	if len(s.rules) == 0 {
		return
	}
	for _, n := range doc.Nodes() {
		if n.Kind() != types.ElementNode {
			continue
		}
		path := n.Path()
		for _, r := range s.rules {
			if ok, _ := doublestar.Match(r.pattern, path); ok {
				n.SetIndexType(r.typ)
				break
			}
		}
	}
}

// Remove drops a document and its index entries.
func (s *Store) Remove(ctx context.Context, id types.DocumentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return fmt.Errorf("remove %s: %w", id, ErrNotFound)
	}
	if s.idx != nil {
		if err := s.idx.Remove(ctx, id); err != nil {
			return err
		}
	}
	delete(s.byID, id)
	for i, d := range s.docs {
		if d.ID() == id {
			s.docs = append(s.docs[:i], s.docs[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns the document with the given identity.
func (s *Store) Get(id types.DocumentID) (*types.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return d, nil
}

// Documents returns a snapshot of the stored documents in insertion order.
func (s *Store) Documents() *types.DocumentSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return types.NewDocumentSet(s.docs...)
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// LoadGlob adds every JSON file matching pattern, in lexical order.
func (s *Store) LoadGlob(ctx context.Context, pattern string) ([]*types.Document, error) {
	paths, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	sort.Strings(paths)

	var loaded []*types.Document
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return loaded, err
		}
		doc, err := LoadFile(p)
		if err != nil {
			return loaded, err
		}
		if err := s.Add(ctx, doc); err != nil {
			return loaded, err
		}
		loaded = append(loaded, doc)
	}
	return loaded, nil
}

// LoadFile decodes a JSON file into a document whose URI is the
// slash-separated file path.
func LoadFile(path string) (*types.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return types.FromJSON(filepath.ToSlash(path), v), nil
}

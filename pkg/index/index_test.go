package index

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/goxmatch/pkg/regex"
	"github.com/sandrolain/goxmatch/pkg/types"
)

// library builds a document whose title elements are declared as strings.
func library(titles ...string) (*types.Document, *types.NodeSet, *types.NodeSet) {
	doc := types.NewDocument("library.xml")
	lib := doc.Root().AppendElement("library", "")
	titleSet := types.NewNodeSet()
	yearSet := types.NewNodeSet()
	for _, title := range titles {
		book := lib.AppendElement("book", "")
		n := book.AppendElement("title", title)
		n.SetIndexType(types.TypeString)
		titleSet.Add(n)
		yearSet.Add(book.AppendElement("year", "2024"))
	}
	return doc, titleSet, yearSet
}

func names(ns *types.NodeSet) []string {
	var out []string
	for _, n := range ns.Nodes() {
		out = append(out, n.StringValue())
	}
	return out
}

type indexCase struct {
	name string
	open func(t *testing.T) Indexer
}

func indexes() []indexCase {
	return []indexCase{
		{"memory", func(t *testing.T) Indexer { return NewMemoryIndex(nil) }},
		{"sqlite", func(t *testing.T) Indexer {
			idx, err := NewSQLIndex(":memory:", regex.Coregex)
			require.NoError(t, err)
			t.Cleanup(func() { _ = idx.Close() })
			return idx
		}},
	}
}

func TestIndexMatch(t *testing.T) {
	ctx := context.Background()
	for _, ic := range indexes() {
		t.Run(ic.name, func(t *testing.T) {
			idx := ic.open(t)
			doc, titles, _ := library("Alpha", "Beta", "alphabet", "Alpha")
			require.NoError(t, idx.Index(ctx, doc))
			docs := types.NewDocumentSet(doc)

			got, err := idx.Match(ctx, docs, titles, "^A", MatchRegexp, 0, true)
			require.NoError(t, err)
			assert.Equal(t, []string{"Alpha", "Alpha"}, names(got))

			flags, err := regex.ParseFlags("i")
			require.NoError(t, err)
			got, err = idx.Match(ctx, docs, titles, "^al", MatchRegexp, flags, false)
			require.NoError(t, err)
			assert.Equal(t, []string{"Alpha", "alphabet", "Alpha"}, names(got))

			got, err = idx.Match(ctx, docs, titles, "et", MatchRegexp, 0, true)
			require.NoError(t, err)
			assert.Equal(t, []string{"Beta", "alphabet"}, names(got))

			got, err = idx.Match(ctx, docs, titles, "^Z", MatchRegexp, 0, true)
			require.NoError(t, err)
			assert.Equal(t, 0, got.Len())
		})
	}
}

func TestIndexSubsetOrder(t *testing.T) {
	ctx := context.Background()
	for _, ic := range indexes() {
		t.Run(ic.name, func(t *testing.T) {
			idx := ic.open(t)
			doc, titles, _ := library("a1", "b2", "a3")
			require.NoError(t, idx.Index(ctx, doc))

			subset := types.NewNodeSet(titles.Nodes()[2], titles.Nodes()[1])
			got, err := idx.Match(ctx, types.NewDocumentSet(doc), subset, "[0-9]", MatchRegexp, 0, true)
			require.NoError(t, err)
			assert.Equal(t, []string{"a3", "b2"}, names(got))
		})
	}
}

func TestIndexSkipsUndeclaredNodes(t *testing.T) {
	ctx := context.Background()
	for _, ic := range indexes() {
		t.Run(ic.name, func(t *testing.T) {
			idx := ic.open(t)
			doc, _, years := library("x", "y")
			require.NoError(t, idx.Index(ctx, doc))

			got, err := idx.Match(ctx, types.NewDocumentSet(doc), years, "2024", MatchRegexp, 0, true)
			require.NoError(t, err)
			assert.Equal(t, 0, got.Len())
		})
	}
}

func TestIndexReindexAndRemove(t *testing.T) {
	ctx := context.Background()
	for _, ic := range indexes() {
		t.Run(ic.name, func(t *testing.T) {
			idx := ic.open(t)
			doc, titles, _ := library("keep", "drop")
			other, otherTitles, _ := library("keep too")
			require.NoError(t, idx.Index(ctx, doc))
			require.NoError(t, idx.Index(ctx, doc))
			require.NoError(t, idx.Index(ctx, other))

			docs := types.NewDocumentSet(doc, other)
			all := types.NewNodeSet(append(titles.Nodes(), otherTitles.Nodes()...)...)
			got, err := idx.Match(ctx, docs, all, "^keep", MatchRegexp, 0, true)
			require.NoError(t, err)
			assert.Equal(t, []string{"keep", "keep too"}, names(got))

			require.NoError(t, idx.Remove(ctx, doc.ID()))
			got, err = idx.Match(ctx, docs, all, "^keep", MatchRegexp, 0, true)
			require.NoError(t, err)
			assert.Equal(t, []string{"keep too"}, names(got))
		})
	}
}

func TestIndexErrors(t *testing.T) {
	ctx := context.Background()
	for _, ic := range indexes() {
		t.Run(ic.name, func(t *testing.T) {
			idx := ic.open(t)
			doc, titles, _ := library("x")
			require.NoError(t, idx.Index(ctx, doc))
			docs := types.NewDocumentSet(doc)

			_, err := idx.Match(ctx, docs, titles, "(", MatchRegexp, 0, true)
			require.Error(t, err)
			assert.Equal(t, types.ErrRegexCompile, types.CodeOf(err))
			assert.ErrorIs(t, err, types.ErrRegexCompileError)

			_, err = idx.Match(ctx, docs, titles, "x", MatchWildcard, 0, true)
			require.Error(t, err)
			assert.Equal(t, types.ErrIndexQuery, types.CodeOf(err))
		})
	}
}

func TestMemoryIndexCancelled(t *testing.T) {
	idx := NewMemoryIndex(regex.RE2)
	doc, titles, _ := library("a", "b")
	require.NoError(t, idx.Index(context.Background(), doc))
	assert.Equal(t, 2, idx.Len())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := idx.Match(ctx, types.NewDocumentSet(doc), titles, "a", MatchRegexp, 0, true)
	require.Error(t, err)
	assert.Equal(t, types.ErrIndexQuery, types.CodeOf(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSQLIndexLen(t *testing.T) {
	ctx := context.Background()
	idx, err := NewSQLIndex(":memory:", nil)
	require.NoError(t, err)
	defer idx.Close()

	doc, _, _ := library("a", "b", "c")
	require.NoError(t, idx.Index(ctx, doc))
	n, err := idx.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, "sqlite", idx.Name())
}

func TestSQLIndexManyValues(t *testing.T) {
	if testing.Short() {
		t.Skip("indexes 40000 values")
	}
	ctx := context.Background()
	idx, err := NewSQLIndex(":memory:", nil)
	require.NoError(t, err)
	defer idx.Close()

	titles := make([]string, 40000)
	for i := range titles {
		titles[i] = fmt.Sprintf("t%d", i)
	}
	doc, titleSet, _ := library(titles...)
	require.NoError(t, idx.Index(ctx, doc))
	docs := types.NewDocumentSet(doc)

	got, err := idx.Match(ctx, docs, titleSet, "t", MatchRegexp, 0, true)
	require.NoError(t, err)
	assert.Equal(t, 40000, got.Len())

	got, err = idx.Match(ctx, docs, titleSet, "^t1", MatchRegexp, 0, true)
	require.NoError(t, err)
	assert.Equal(t, 11111, got.Len())
}

func TestSQLIndexManyDocuments(t *testing.T) {
	ctx := context.Background()
	idx, err := NewSQLIndex(":memory:", nil)
	require.NoError(t, err)
	defer idx.Close()

	all := types.NewNodeSet()
	var set []*types.Document
	for i := 0; i < 3*sqlBatchSize+7; i++ {
		doc, titles, _ := library(fmt.Sprintf("doc %d", i))
		require.NoError(t, idx.Index(ctx, doc))
		set = append(set, doc)
		for _, n := range titles.Nodes() {
			all.Add(n)
		}
	}
	docs := types.NewDocumentSet(set...)

	got, err := idx.Match(ctx, docs, all, `7$`, MatchRegexp, 0, true)
	require.NoError(t, err)
	assert.Equal(t, 150, got.Len())
}

func TestLiteralPrefix(t *testing.T) {
	ci, _ := regex.ParseFlags("i")
	ml, _ := regex.ParseFlags("m")
	tests := []struct {
		pattern string
		flags   regex.FlagSet
		cs      bool
		want    string
	}{
		{"^abc", 0, true, "abc"},
		{"^abc$", 0, true, "abc"},
		{"^ab*", 0, true, "a"},
		{"^a.c", 0, true, "a"},
		{"abc", 0, true, ""},
		{"^(abc)", 0, true, ""},
		{"^a|^b", 0, true, ""},
		{"^abc", ci, false, ""},
		{"^abc", ml, true, ""},
		{"(?i)^abc", 0, true, ""},
		{"(", 0, true, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, literalPrefix(tt.pattern, tt.flags, tt.cs), tt.pattern)
	}
}

func TestGlobPrefix(t *testing.T) {
	assert.Equal(t, "abc*", globPrefix("abc"))
	assert.Equal(t, "a[*]b[?]c[[]]*", globPrefix("a*b?c[]"))
}

func TestMatchKindString(t *testing.T) {
	assert.Equal(t, "regexp", MatchRegexp.String())
	assert.Equal(t, "exact", MatchExact.String())
	assert.Equal(t, "wildcard", MatchWildcard.String())
	assert.Equal(t, "MatchKind(9)", MatchKind(9).String())
}

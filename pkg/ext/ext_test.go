package ext_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/sandrolain/goxmatch"
	"github.com/sandrolain/goxmatch/pkg/evaluator"
	"github.com/sandrolain/goxmatch/pkg/ext"
	"github.com/sandrolain/goxmatch/pkg/index"
	"github.com/sandrolain/goxmatch/pkg/types"
)

func library() *types.DocumentSet {
	doc := types.FromJSON("library.json", map[string]interface{}{
		"library": map[string]interface{}{
			"book": []interface{}{
				map[string]interface{}{"title": "Alpha"},
				map[string]interface{}{"title": "beta"},
				map[string]interface{}{"title": "Andromeda"},
				map[string]interface{}{"title": "a.b"},
			},
		},
	})
	return types.NewDocumentSet(doc)
}

func eval(t *testing.T, query string, docs *types.DocumentSet, opts ...evaluator.EvalOption) string {
	t.Helper()
	seq, err := goxmatch.Eval(query, docs, opts...)
	if err != nil {
		t.Fatalf("Eval(%q) error: %v", query, err)
	}
	out := make([]string, seq.Len())
	for i := range out {
		out[i] = seq.ItemAt(i).StringValue()
	}
	return fmt.Sprint(out)
}

func TestWithAll(t *testing.T) {
	docs := library()
	tests := []struct {
		query string
		want  string
	}{
		{`//book[matches-ci(title, "^a")]`, "[Alpha Andromeda a.b]"},
		{`//book[matches-ci(title, "^a\.")]`, "[a.b]"},
		{`//book[contains-text(title, "a.")]`, "[a.b]"},
		{`//book[contains-text(title, "ALP")]`, "[]"},
		{`//book[contains-text-ci(title, "ALP")]`, "[Alpha]"},
		{`//book[not(contains-text-ci(title, "a"))]`, "[]"},
		{`contains-text("x+y", "+")`, "[true]"},
		{`fn:contains-text-ci("ABC", "b")`, "[true]"},
	}
	for _, tt := range tests {
		if got := eval(t, tt.query, docs, ext.WithAll()); got != tt.want {
			t.Fatalf("%s = %s, want %s", tt.query, got, tt.want)
		}
	}
}

func TestWithSingle(t *testing.T) {
	docs := library()
	if got := eval(t, `//book[contains-text(title, "eta")]`, docs, ext.With(ext.ContainsText())); got != "[beta]" {
		t.Fatalf("got %s", got)
	}
	_, err := goxmatch.Eval(`//book[matches-ci(title, "a")]`, docs, ext.With(ext.ContainsText()))
	if types.CodeOf(err) != types.ErrUnknownFunction {
		t.Fatalf("expected XPST0017, got %v", err)
	}
}

func TestIndexed(t *testing.T) {
	docs := library()
	doc := docs.Documents()[0]
	for _, n := range doc.Nodes() {
		if n.Name() == "title" {
			n.SetIndexType(types.TypeString)
		}
	}
	idx := index.NewMemoryIndex(nil)
	if err := idx.Index(context.Background(), doc); err != nil {
		t.Fatal(err)
	}

	for _, query := range []string{
		`//book[matches-ci(title, "^a")]`,
		`//book[contains-text-ci(title, "D")]`,
		`//book[contains-text(title, ".")]`,
	} {
		plain := eval(t, query, docs, ext.WithAll())
		indexed := eval(t, query, docs, ext.WithAll(), evaluator.WithIndex(idx))
		if plain != indexed {
			t.Fatalf("%s: scan %s, index %s", query, plain, indexed)
		}
	}
}

func TestSignatures(t *testing.T) {
	for _, fn := range ext.All() {
		if fn.Signature.Arity() != 2 {
			t.Fatalf("%s: arity %d", fn.Signature.Name, fn.Signature.Arity())
		}
		if fn.Signature.Description == "" {
			t.Fatalf("%s: missing description", fn.Signature.Name)
		}
	}
}

// Benchmarks for matches evaluation.
//
// Run all benchmarks:
//
//	go test -bench=. -benchmem .
//
// Compare the scan and index routes:
//
//	go test -bench=BenchmarkPredicate -benchmem .
package goxmatch_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/sandrolain/goxmatch"
	"github.com/sandrolain/goxmatch/pkg/evaluator"
	"github.com/sandrolain/goxmatch/pkg/index"
	"github.com/sandrolain/goxmatch/pkg/parser"
	"github.com/sandrolain/goxmatch/pkg/regex"
	"github.com/sandrolain/goxmatch/pkg/store"
	"github.com/sandrolain/goxmatch/pkg/types"
)

// ---------------------------------------------------------------------------
// Test data
// ---------------------------------------------------------------------------

var prefixes = []string{"Alpha", "beta", "Gamma", "delta", "Epsilon"}

// buildLibrary returns a document with n books. Titles repeat every
// len(prefixes)*10 books so the index memo sees duplicates.
func buildLibrary(n int) *types.Document {
	books := make([]interface{}, n)
	for i := range books {
		books[i] = map[string]interface{}{
			"title": fmt.Sprintf("%s %d", prefixes[i%len(prefixes)], i%50),
			"isbn":  fmt.Sprintf("978-%d-%04d", i%10, i),
		}
	}
	return types.FromJSON(fmt.Sprintf("library-%d.json", n), map[string]interface{}{
		"library": map[string]interface{}{"book": books},
	})
}

func mustParse(query string) *types.Expression {
	e, err := parser.Parse(query)
	if err != nil {
		panic(fmt.Sprintf("mustParse(%q): %v", query, err))
	}
	return e
}

func indexed(b *testing.B, idx index.Indexer, n int) *types.DocumentSet {
	b.Helper()
	st, err := store.New(store.Config{Paths: map[string]string{"**/title": "string"}}, idx)
	if err != nil {
		b.Fatal(err)
	}
	if err := st.Add(context.Background(), buildLibrary(n)); err != nil {
		b.Fatal(err)
	}
	return st.Documents()
}

func runQuery(b *testing.B, ev *evaluator.Evaluator, query string, docs *types.DocumentSet) {
	b.Helper()
	q, err := ev.Compile(mustParse(query))
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := q.Eval(ctx, docs); err != nil {
			b.Fatal(err)
		}
	}
}

// ---------------------------------------------------------------------------
// Single string
// ---------------------------------------------------------------------------

func BenchmarkMatchesLiteral(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := goxmatch.Matches("The quick brown fox", "brown", ""); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMatchesCaseFold(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := goxmatch.Matches("The quick brown fox", `^the\s+\p{L}+`, "i"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTranslate(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := regex.Translate(`[\p{Lu}\d]\w*\d{2,4}`); err != nil {
			b.Fatal(err)
		}
	}
}

// ---------------------------------------------------------------------------
// Predicates
// ---------------------------------------------------------------------------

const predicateQuery = `//book[matches(title, "^a", "i")]`

func BenchmarkPredicateScan_1000(b *testing.B) {
	docs := types.NewDocumentSet(buildLibrary(1000))
	runQuery(b, evaluator.New(), predicateQuery, docs)
}

func BenchmarkPredicateScanRE2_1000(b *testing.B) {
	docs := types.NewDocumentSet(buildLibrary(1000))
	runQuery(b, evaluator.New(evaluator.WithEngine(regex.RE2)), predicateQuery, docs)
}

func BenchmarkPredicateMemoryIndex_1000(b *testing.B) {
	idx := index.NewMemoryIndex(nil)
	docs := indexed(b, idx, 1000)
	runQuery(b, evaluator.New(evaluator.WithIndex(idx)), predicateQuery, docs)
}

func BenchmarkPredicateSQLIndex_1000(b *testing.B) {
	idx, err := index.NewSQLIndex(":memory:", nil)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = idx.Close() })
	docs := indexed(b, idx, 1000)
	runQuery(b, evaluator.New(evaluator.WithIndex(idx)), predicateQuery, docs)
}

func BenchmarkPredicatePerItem_1000(b *testing.B) {
	docs := types.NewDocumentSet(buildLibrary(1000))
	runQuery(b, evaluator.New(), `//title[matches(., "^a", "i")]`, docs)
}

// ---------------------------------------------------------------------------
// Concurrency
// ---------------------------------------------------------------------------

func BenchmarkEvalMany(b *testing.B) {
	docs := types.NewDocumentSet(buildLibrary(500))
	queries := []string{
		`//book[matches(title, "^Alpha")]`,
		`//book[matches(title, "\d$")]`,
		`//book[matches(isbn, "-0\d{3}$")]`,
		`//book[not(matches(title, "a", "i"))]`,
	}
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := goxmatch.EvalMany(ctx, queries, docs, 4); err != nil {
			b.Fatal(err)
		}
	}
}

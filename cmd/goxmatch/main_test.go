package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/goxmatch/pkg/types"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// library writes two JSON documents into a fresh working directory and
// returns a glob matching both.
func library(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	files := map[string]string{
		"a.json": `{"library": {"book": [{"title": "Alpha"}, {"title": "beta"}]}}`,
		"b.json": `{"library": {"book": [{"title": "Andromeda"}]}}`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir, filepath.Join(dir, "*.json")
}

func decodeLines(t *testing.T, out string) []record {
	t.Helper()
	var recs []record
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		var rec record
		require.NoError(t, json.Unmarshal([]byte(line), &rec), line)
		recs = append(recs, rec)
	}
	return recs
}

func TestMatchCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"match", "Hello World", "hello", "--flags", "i"}, "true\n"},
		{[]string{"match", "Hello World", "hello"}, "false\n"},
		{[]string{"match", "abc", "a b c", "-f", "x"}, "true\n"},
		{[]string{"--engine", "re2", "match", "2024-01-15", `^\d{4}-\d{2}-\d{2}$`}, "true\n"},
		{[]string{"--engine", "coregex", "match", "a\nb", "^b$", "-f", "m"}, "true\n"},
	}
	for _, tt := range tests {
		out, _, err := run(t, tt.args...)
		require.NoError(t, err, tt.args)
		assert.Equal(t, tt.want, out, tt.args)
	}

	_, _, err := run(t, "match", "a", "a", "--flags", "q")
	assert.Equal(t, types.ErrInvalidFlags, types.CodeOf(err))

	_, _, err = run(t, "match", "only-one")
	assert.Error(t, err)
}

func TestTranslateCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	out, _, err := run(t, "translate", `^abc$`)
	require.NoError(t, err)
	assert.Equal(t, "^abc$\n", out)

	_, _, err = run(t, "translate", `(a)\1`)
	assert.Error(t, err)
}

func TestFunctionsCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	out, _, err := run(t, "functions")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "matches("))
	assert.True(t, strings.HasPrefix(lines[1], "matches("))
	assert.True(t, strings.HasPrefix(lines[2], "not("))
}

func TestQueryCommand(t *testing.T) {
	dir, glob := library(t)
	a := filepath.ToSlash(filepath.Join(dir, "a.json"))
	b := filepath.ToSlash(filepath.Join(dir, "b.json"))
	want := []record{
		{Doc: a, Path: "library/book", Value: "Alpha"},
		{Doc: b, Path: "library/book", Value: "Andromeda"},
	}

	variants := map[string][]string{
		"no index": nil,
		"memory":   {"--index", "memory", "--index-path", "**/title=string"},
		"sqlite":   {"--index", "sqlite", "--dsn", ":memory:", "--index-path", "**/title=string"},
	}
	for name, extra := range variants {
		t.Run(name, func(t *testing.T) {
			args := append([]string{"query", `//book[matches(title, "^a", "i")]`, "--docs", glob}, extra...)
			out, _, err := run(t, args...)
			require.NoError(t, err)
			assert.Equal(t, want, decodeLines(t, out))
		})
	}
}

func TestQueryCommandMany(t *testing.T) {
	dir, glob := library(t)
	a := filepath.ToSlash(filepath.Join(dir, "a.json"))

	first := `matches("x", "y")`
	second := `//title[matches(., "eta")]`
	out, _, err := run(t, "query", first, second, "--docs", glob, "--workers", "2")
	require.NoError(t, err)
	assert.Equal(t, []record{
		{Query: first, Value: false},
		{Query: second, Doc: a, Path: "library/book/title", Value: "beta"},
	}, decodeLines(t, out))
}

func TestQueryCommandErrors(t *testing.T) {
	dir, glob := library(t)

	_, _, err := run(t, "query", "//book")
	assert.Error(t, err, "--docs is required")

	_, _, err = run(t, "query", "//book", "--docs", filepath.Join(dir, "*.xml"))
	assert.ErrorContains(t, err, "no documents match")

	_, _, err = run(t, "query", "//book[", "--docs", glob)
	assert.Error(t, err)

	_, _, err = run(t, "query", "//book", "--docs", glob, "--index", "postgres")
	assert.ErrorContains(t, err, "unknown index driver")

	_, _, err = run(t, "query", "//book", "--docs", glob, "--index-path", "**/title=uuid")
	assert.ErrorContains(t, err, "unknown type")

	_, _, err = run(t, "--engine", "pcre", "translate", "a")
	assert.ErrorContains(t, err, "unknown regex engine")
}

func TestConfigFileAndMetrics(t *testing.T) {
	dir, glob := library(t)
	cfgPath := filepath.Join(dir, "goxmatch.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("engine: re2\nindex:\n  driver: memory\n  paths:\n    \"**/title\": string\n"), 0o600))

	out, stderr, err := run(t, "--config", cfgPath, "--metrics", "query", `//book[matches(title, "^A")]`, "--docs", glob)
	require.NoError(t, err)
	assert.Len(t, decodeLines(t, out), 2)
	assert.Contains(t, stderr, "goxmatch_strategy_total")
	assert.Contains(t, stderr, "strategy=index")
	assert.Contains(t, stderr, "goxmatch_index_lookups_total")
}

func TestProfileFlag(t *testing.T) {
	t.Chdir(t.TempDir())

	_, stderr, err := run(t, "--profile", "--log-level", "debug", "--log-format", "json", "match", "abc", "b")
	require.NoError(t, err)
	assert.Contains(t, stderr, `"level":"DEBUG"`)
	assert.Contains(t, stderr, "Generic evaluation")
}

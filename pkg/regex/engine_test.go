package regex

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestPrepare(t *testing.T) {
	tests := []struct {
		pattern string
		flags   FlagSet
		want    string
	}{
		{"abc", 0, "abc"},
		{"abc", CaseInsensitive | UnicodeCase, "(?i)abc"},
		{"^a$", Multiline, "(?m)^a$"},
		{"a.b", 0, `a[^\n\r]b`},
		{`a\.b[.]`, 0, `a\.b[.]`},
		{"a . b", Extended, `a[^\n\r]b`},
		{"a.b", DotAll, "(?s)a.b"},
		{"a.b", Multiline | CaseInsensitive | UnicodeCase | DotAll, "(?ims)a.b"},
		{"a b\tc\n", Extended, "abc"},
		{"[a b] c", Extended, "[a b]c"},
		{"[^ ] x", Extended, "[^ ]x"},
		{`a\ b`, Extended, `a\ b`},
		{"h e l l o", Extended | CaseInsensitive, "(?i)hello"},
	}
	for _, tt := range tests {
		if got := Prepare(tt.pattern, tt.flags); got != tt.want {
			t.Fatalf("Prepare(%q, %s) = %q, want %q", tt.pattern, tt.flags, got, tt.want)
		}
	}
}

func match(t *testing.T, e Engine, subject, pattern, flags string) bool {
	t.Helper()
	host, err := Translate(pattern)
	if err != nil {
		t.Fatalf("Translate(%q): %v", pattern, err)
	}
	f, err := ParseFlags(flags)
	if err != nil {
		t.Fatalf("ParseFlags(%q): %v", flags, err)
	}
	m, err := e.Compile(host, f)
	if err != nil {
		t.Fatalf("Compile(%q): %v", host, err)
	}
	return m.MatchString(subject)
}

func TestEngines(t *testing.T) {
	tests := []struct {
		subject, pattern, flags string
		want                    bool
	}{
		{"Hello World", "hello", "i", true},
		{"Hello World", "hello", "", false},
		{"2024-01-15", `^\d{4}-\d{2}-\d{2}$`, "", true},
		{"not-a-date", `^\d{4}-\d{2}-\d{2}$`, "", false},
		{"abracadabra", "bra", "", true},
		{"abracadabra", "^bra", "", false},
		{"line1\nline2", "^line2$", "", false},
		{"line1\nline2", "^line2$", "m", true},
		{"a\nb", "a.b", "", false},
		{"a\nb", "a.b", "s", true},
		{"a\rb", "a.b", "", false},
		{"a\rb", "a.b", "s", true},
		{"helloworld", "hello world", "x", true},
		{"ΣΊΣΥΦΟΣ", "σίσυφος", "i", true},
		{"value: 42", `\w+:\s\d+`, "", true},
		{"Ω", `\p{IsGreek}`, "", true},
		{"A", `\p{IsGreek}`, "", false},
	}
	for _, e := range []Engine{Coregex, RE2} {
		for _, tt := range tests {
			t.Run(fmt.Sprintf("%s/%s/%s", e.Name(), tt.pattern, tt.flags), func(t *testing.T) {
				if got := match(t, e, tt.subject, tt.pattern, tt.flags); got != tt.want {
					t.Fatalf("matches(%q, %q, %q) = %v, want %v", tt.subject, tt.pattern, tt.flags, got, tt.want)
				}
			})
		}
	}
}

func TestCompileError(t *testing.T) {
	_, err := Coregex.Compile("a(", 0)
	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CompileError, got %v", err)
	}
	if ce.Engine != "coregex" || ce.Pattern != "a(" || ce.Err == nil {
		t.Fatalf("unexpected error contents: %+v", ce)
	}
}

func TestEngineByName(t *testing.T) {
	for name, want := range map[string]Engine{"": Coregex, "coregex": Coregex, "RE2": RE2} {
		got, err := EngineByName(name)
		if err != nil {
			t.Fatalf("EngineByName(%q): %v", name, err)
		}
		if got != want {
			t.Fatalf("EngineByName(%q) = %s", name, got.Name())
		}
	}
	_, err := EngineByName("pcre")
	if err == nil || !strings.Contains(err.Error(), "coregex, re2") {
		t.Fatalf("expected unknown engine error listing engines, got %v", err)
	}
}

type countingEngine struct {
	Engine
	compiles int
}

func (c *countingEngine) Compile(pattern string, flags FlagSet) (Matcher, error) {
	c.compiles++
	return c.Engine.Compile(pattern, flags)
}

type closingMatcher struct {
	Matcher
	closed *int
}

func (c closingMatcher) Close() error {
	*c.closed++
	return nil
}

type closingEngine struct {
	closed int
}

func (closingEngine) Name() string { return "closing" }

func (c *closingEngine) Compile(pattern string, flags FlagSet) (Matcher, error) {
	m, err := Coregex.Compile(pattern, flags)
	if err != nil {
		return nil, err
	}
	return closingMatcher{Matcher: m, closed: &c.closed}, nil
}

func TestMemoReuse(t *testing.T) {
	e := &countingEngine{Engine: Coregex}
	var memo Memo
	for i := 0; i < 5; i++ {
		if _, err := memo.GetOrCompile(e, "a+", 0); err != nil {
			t.Fatal(err)
		}
	}
	if e.compiles != 1 {
		t.Fatalf("expected 1 compile, got %d", e.compiles)
	}
	if !memo.Cached("a+", 0) {
		t.Fatal("expected memo to hold a+")
	}

	if _, err := memo.GetOrCompile(e, "a+", CaseInsensitive|UnicodeCase); err != nil {
		t.Fatal(err)
	}
	if _, err := memo.GetOrCompile(e, "b+", CaseInsensitive|UnicodeCase); err != nil {
		t.Fatal(err)
	}
	if e.compiles != 3 {
		t.Fatalf("expected recompile on flag and pattern change, got %d compiles", e.compiles)
	}
	if memo.Cached("a+", 0) {
		t.Fatal("memo must hold a single entry")
	}
}

func TestMemoFailureKeepsNothing(t *testing.T) {
	var memo Memo
	if _, err := memo.GetOrCompile(Coregex, "a(", 0); err == nil {
		t.Fatal("expected compile error")
	}
	if memo.Cached("a(", 0) {
		t.Fatal("failed compile must not be cached")
	}
}

func TestMemoClosesEvicted(t *testing.T) {
	e := &closingEngine{}
	var memo Memo
	_, _ = memo.GetOrCompile(e, "a", 0)
	_, _ = memo.GetOrCompile(e, "a", 0)
	if e.closed != 0 {
		t.Fatalf("cache hit must not close, closed=%d", e.closed)
	}
	_, _ = memo.GetOrCompile(e, "b", 0)
	if e.closed != 1 {
		t.Fatalf("expected evicted matcher to be closed, closed=%d", e.closed)
	}
	memo.Reset()
	if e.closed != 2 {
		t.Fatalf("expected Reset to close, closed=%d", e.closed)
	}
}

func TestMemoTransparent(t *testing.T) {
	host, err := Translate(`\d+[a-z]`)
	if err != nil {
		t.Fatal(err)
	}
	var memo Memo
	for i := 0; i < 1000; i++ {
		subject := fmt.Sprintf("%d%c", i, 'a'+rune(i%30))
		cached, err := memo.GetOrCompile(Coregex, host, 0)
		if err != nil {
			t.Fatal(err)
		}
		fresh, err := Coregex.Compile(host, 0)
		if err != nil {
			t.Fatal(err)
		}
		if cached.MatchString(subject) != fresh.MatchString(subject) {
			t.Fatalf("memo changed result for %q", subject)
		}
	}
}

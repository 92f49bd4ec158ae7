package regex

import (
	"fmt"
	"sort"
	"strings"

	"github.com/coregx/coregex"
)

// Matcher is a compiled host pattern.
type Matcher interface {
	// MatchString reports whether the pattern matches anywhere in s.
	MatchString(s string) bool
}

// Engine compiles host-dialect patterns.
type Engine interface {
	// Name identifies the engine in configuration and logs.
	Name() string
	// Compile compiles pattern under flags.
	Compile(pattern string, flags FlagSet) (Matcher, error)
}

// CompileError reports a host pattern the engine rejected.
type CompileError struct {
	Engine  string
	Pattern string
	Err     error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: cannot compile %q: %v", e.Engine, e.Pattern, e.Err)
}

// Unwrap returns the engine error.
func (e *CompileError) Unwrap() error { return e.Err }

// Prepare applies flags to a host pattern. Extended mode removes
// unescaped whitespace outside character classes. Without dot-all an
// unescaped dot outside a class becomes [^\n\r]. The remaining flags become
// an inline (?ims) group.
func Prepare(pattern string, flags FlagSet) string {
	pattern = rewrite(pattern, flags.Has(Extended), !flags.Has(DotAll))
	var inline strings.Builder
	if flags.Has(CaseInsensitive) {
		inline.WriteByte('i')
	}
	if flags.Has(Multiline) {
		inline.WriteByte('m')
	}
	if flags.Has(DotAll) {
		inline.WriteByte('s')
	}
	if inline.Len() == 0 {
		return pattern
	}
	return "(?" + inline.String() + ")" + pattern
}

func rewrite(pattern string, strip, lineDot bool) string {
	if !strip && (!lineDot || !strings.Contains(pattern, ".")) {
		return pattern
	}
	var b strings.Builder
	b.Grow(len(pattern))
	inClass := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '\\' && i+1 < len(pattern):
			b.WriteByte(c)
			b.WriteByte(pattern[i+1])
			i++
		case inClass:
			if c == ']' {
				inClass = false
			}
			b.WriteByte(c)
		case c == '[':
			inClass = true
			b.WriteByte(c)
			if i+1 < len(pattern) && pattern[i+1] == '^' {
				b.WriteByte('^')
				i++
			}
		case strip && (c == ' ' || c == '\t' || c == '\n' || c == '\r'):
		case lineDot && c == '.':
			b.WriteString(`[^\n\r]`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

type coregexEngine struct{}

// Coregex compiles patterns with github.com/coregx/coregex.
var Coregex Engine = coregexEngine{}

func (coregexEngine) Name() string { return "coregex" }

func (coregexEngine) Compile(pattern string, flags FlagSet) (Matcher, error) {
	host := Prepare(pattern, flags)
	re, err := coregex.Compile(host)
	if err != nil {
		return nil, &CompileError{Engine: "coregex", Pattern: host, Err: err}
	}
	return re, nil
}

// Default is the engine used when none is configured.
var Default = Coregex

var engines = map[string]Engine{
	"coregex": Coregex,
}

// EngineByName returns the engine registered under name.
// An empty name selects Default.
func EngineByName(name string) (Engine, error) {
	if name == "" {
		return Default, nil
	}
	e, ok := engines[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown regex engine %q (available: %s)", name, strings.Join(EngineNames(), ", "))
	}
	return e, nil
}

// EngineNames lists the registered engine names.
func EngineNames() []string {
	names := make([]string, 0, len(engines))
	for n := range engines {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

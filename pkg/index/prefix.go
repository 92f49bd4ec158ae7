package index

import (
	"regexp/syntax"
	"strings"

	"github.com/sandrolain/goxmatch/pkg/regex"
)

// literalPrefix returns the literal every match of pattern must start
// with, or "" when there is none. Only patterns anchored at the start of
// text with a case-sensitive literal qualify.
func literalPrefix(pattern string, flags regex.FlagSet, caseSensitive bool) string {
	if !caseSensitive || flags.Has(regex.CaseInsensitive) || flags.Has(regex.Multiline) || flags.Has(regex.Extended) {
		return ""
	}
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return ""
	}
	re = re.Simplify()
	if re.Op != syntax.OpConcat || len(re.Sub) < 2 {
		return ""
	}
	if re.Sub[0].Op != syntax.OpBeginText {
		return ""
	}
	lit := re.Sub[1]
	if lit.Op != syntax.OpLiteral || lit.Flags&syntax.FoldCase != 0 {
		return ""
	}
	return string(lit.Rune)
}

// globPrefix builds a GLOB pattern matching values that start with prefix.
func globPrefix(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		switch r {
		case '*', '?', '[':
			b.WriteByte('[')
			b.WriteRune(r)
			b.WriteByte(']')
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('*')
	return b.String()
}

// Package regex translates XPath/XQuery regular expressions into the RE2
// dialect understood by the host engines, parses match flags, and compiles
// patterns through a pluggable Engine.
package regex

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// maxRepeat is the largest repeat bound RE2 accepts.
	maxRepeat = 1000

	digitClassContent    = `\p{Nd}`
	notDigitClassContent = `\P{Nd}`
	spaceClassContent    = `\x20\t\n\r`
	notWordClassContent  = `\p{P}\p{Z}\p{C}`

	// XML 1.0 NameStartChar and NameChar ranges (\i and \c).
	nameStartClassContent = `:A-Z_a-z` +
		`\x{C0}-\x{D6}\x{D8}-\x{F6}\x{F8}-\x{2FF}\x{370}-\x{37D}\x{37F}-\x{1FFF}` +
		`\x{200C}-\x{200D}\x{2070}-\x{218F}\x{2C00}-\x{2FEF}\x{3001}-\x{D7FF}` +
		`\x{F900}-\x{FDCF}\x{FDF0}-\x{FFFD}\x{10000}-\x{EFFFF}`
	nameClassContent = nameStartClassContent +
		`\-.0-9\x{B7}\x{300}-\x{36F}\x{203F}-\x{2040}`
)

// TranslationError reports a construct of the source pattern that has no
// safe equivalent in the host dialect, or that is malformed.
type TranslationError struct {
	Pattern   string
	Construct string
	Position  int
	Reason    string
}

// Error implements the error interface.
func (e *TranslationError) Error() string {
	if e.Construct == "" {
		return fmt.Sprintf("regex %q: %s", e.Pattern, e.Reason)
	}
	return fmt.Sprintf("regex %q: %s at offset %d: %s", e.Pattern, e.Construct, e.Position, e.Reason)
}

// Translate converts an XPath regular expression into RE2 syntax.
// The result is unanchored: matching uses search semantics.
func Translate(pattern string) (string, error) {
	return newTranslator(pattern).translate()
}

// QuoteMeta escapes every XPath regex metacharacter in s, so the result
// matches s literally.
func QuoteMeta(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(`\|.?*+(){}$-[]^`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

type classState struct {
	lastItem       rune
	lastWasRange   bool
	lastWasDash    bool
	lastItemIsChar bool
	isFirst        bool
}

func (s *classState) reset() {
	*s = classState{isFirst: true}
}

func (s *classState) markNonChar() {
	s.lastWasDash = false
	s.lastWasRange = false
	s.lastItemIsChar = false
	s.isFirst = false
}

type translator struct {
	pattern string
	i       int
	out     strings.Builder

	inClass      bool
	classStart   int
	class        classState
	classBuf     strings.Builder
	classNegated bool
	// classAlts holds complement classes that cannot be merged into a
	// positive class and are emitted as alternatives instead.
	classAlts []string

	groups []int
	// canQuantify is set when the previous token is an atom.
	canQuantify bool
	// quantified is set right after a quantifier that may still take a
	// reluctant '?' suffix.
	quantified bool
}

func newTranslator(pattern string) *translator {
	t := &translator{pattern: pattern}
	t.out.Grow(len(pattern) * 2)
	return t
}

func (t *translator) fail(pos, width int, reason string) error {
	end := pos + width
	if end > len(t.pattern) {
		end = len(t.pattern)
	}
	return &TranslationError{
		Pattern:   t.pattern,
		Construct: t.pattern[pos:end],
		Position:  pos,
		Reason:    reason,
	}
}

func (t *translator) translate() (string, error) {
	for t.i < len(t.pattern) {
		var err error
		switch {
		case t.pattern[t.i] == '\\':
			err = t.handleEscape()
		case t.inClass:
			err = t.handleClassChar()
		default:
			err = t.handleOutside()
		}
		if err != nil {
			return "", err
		}
	}
	if t.inClass {
		return "", t.fail(t.classStart, len(t.pattern)-t.classStart, "unclosed character class")
	}
	if len(t.groups) > 0 {
		pos := t.groups[len(t.groups)-1]
		return "", t.fail(pos, 1, "unclosed group")
	}
	return t.out.String(), nil
}

// atom records that an atom was written and may now be quantified.
func (t *translator) atom() {
	t.canQuantify = true
	t.quantified = false
}

// boundary records a token that cannot be quantified.
func (t *translator) boundary() {
	t.canQuantify = false
	t.quantified = false
}

func (t *translator) handleOutside() error {
	c := t.pattern[t.i]
	switch c {
	case '[':
		return t.startClass()
	case ']':
		return t.fail(t.i, 1, "']' is not valid outside a character class")
	case '}':
		return t.fail(t.i, 1, "'}' must be escaped outside a quantifier")
	case '*', '+', '?':
		return t.quantifier(string(c), 1)
	case '{':
		text, end, err := t.parseRepeat(t.i)
		if err != nil {
			return err
		}
		return t.quantifier(text, end-t.i)
	case '(':
		return t.openGroup()
	case ')':
		if len(t.groups) == 0 {
			return t.fail(t.i, 1, "unbalanced ')'")
		}
		t.groups = t.groups[:len(t.groups)-1]
		t.out.WriteByte(')')
		t.i++
		t.atom()
		return nil
	case '|', '^', '$':
		t.out.WriteByte(c)
		t.i++
		t.boundary()
		return nil
	case '.':
		t.out.WriteByte('.')
		t.i++
		t.atom()
		return nil
	}
	r, size := utf8.DecodeRuneInString(t.pattern[t.i:])
	t.out.WriteString(t.pattern[t.i : t.i+size])
	t.i += size
	if r == utf8.RuneError && size == 1 {
		return t.fail(t.i-1, 1, "invalid UTF-8")
	}
	t.atom()
	return nil
}

func (t *translator) quantifier(text string, width int) error {
	if t.quantified && text == "?" {
		t.out.WriteByte('?')
		t.i++
		t.boundary()
		return nil
	}
	if !t.canQuantify {
		return t.fail(t.i, width, "quantifier does not follow an atom")
	}
	t.out.WriteString(text)
	t.i += width
	t.canQuantify = false
	t.quantified = true
	return nil
}

func (t *translator) openGroup() error {
	if strings.HasPrefix(t.pattern[t.i:], "(?") {
		if !strings.HasPrefix(t.pattern[t.i:], "(?:") {
			end := strings.IndexAny(t.pattern[t.i+2:], ":)")
			width := len(t.pattern) - t.i
			if end >= 0 {
				width = end + 3
			}
			return t.fail(t.i, width, "only non-capturing groups '(?:' are supported")
		}
		t.groups = append(t.groups, t.i)
		t.out.WriteString("(?:")
		t.i += 3
		t.boundary()
		return nil
	}
	t.groups = append(t.groups, t.i)
	t.out.WriteByte('(')
	t.i++
	t.boundary()
	return nil
}

func (t *translator) handleEscape() error {
	if t.i+1 >= len(t.pattern) {
		return t.fail(t.i, 1, "escape at end of pattern")
	}
	next := t.pattern[t.i+1]
	switch next {
	case 'p', 'P':
		return t.propertyEscape(next == 'P')
	case 'd':
		return t.classEscape(digitClassContent, "")
	case 'D':
		return t.classEscape(notDigitClassContent, "")
	case 's':
		return t.classEscape(spaceClassContent, "")
	case 'S':
		return t.classEscape("", spaceClassContent)
	case 'w':
		return t.classEscape("", notWordClassContent)
	case 'W':
		return t.classEscape(notWordClassContent, "")
	case 'i':
		return t.classEscape(nameStartClassContent, "")
	case 'I':
		return t.classEscape("", nameStartClassContent)
	case 'c':
		return t.classEscape(nameClassContent, "")
	case 'C':
		return t.classEscape("", nameClassContent)
	case 'n', 'r', 't':
		return t.singleCharEscape(controlRune(next), next)
	case '\\', '|', '.', '?', '*', '+', '(', ')', '{', '}', '$', '-', '[', ']', '^':
		return t.singleCharEscape(rune(next), next)
	}
	if next >= '0' && next <= '9' {
		return t.fail(t.i, 2, "back-references are not supported by the host engine")
	}
	return t.fail(t.i, 2, "unknown escape sequence")
}

func (t *translator) singleCharEscape(r rune, next byte) error {
	text := `\` + string(next)
	if t.inClass {
		if err := t.classChar(r); err != nil {
			return err
		}
		t.classBuf.WriteString(text)
	} else {
		t.out.WriteString(text)
		t.atom()
	}
	t.i += 2
	return nil
}

// classEscape writes a multi-character escape. content is the class body
// when the escape is a positive class; complement is the body of the class
// whose negation the escape denotes.
func (t *translator) classEscape(content, complement string) error {
	if t.inClass {
		if complement != "" {
			if t.classNegated {
				return t.fail(t.i, 2, "this escape cannot be used inside a negated character class")
			}
			t.classAlts = append(t.classAlts, "[^"+complement+"]")
		} else {
			t.classBuf.WriteString(content)
		}
		t.class.markNonChar()
	} else {
		if complement != "" {
			t.out.WriteString("[^" + complement + "]")
		} else {
			t.out.WriteString("[" + content + "]")
		}
		t.atom()
	}
	t.i += 2
	return nil
}

func (t *translator) propertyEscape(negated bool) error {
	start := t.i
	if t.i+2 >= len(t.pattern) || t.pattern[t.i+2] != '{' {
		return t.fail(start, 2, "property escape must be followed by '{'")
	}
	closeIdx := strings.IndexByte(t.pattern[t.i+3:], '}')
	if closeIdx < 0 {
		return t.fail(start, len(t.pattern)-start, "unclosed property escape")
	}
	name := t.pattern[t.i+3 : t.i+3+closeIdx]
	width := closeIdx + 4

	var content string
	switch {
	case strings.HasPrefix(name, "Is"):
		lo, hi, ok := lookupBlock(name[2:])
		if !ok {
			return t.fail(start, width, "unknown Unicode block")
		}
		if negated {
			content = complementRange(lo, hi)
		} else {
			content = blockRange(lo, hi)
		}
	case name == "Cn":
		return t.fail(start, width, "unassigned code points (Cn) are not supported by the host engine")
	case name == "":
		return t.fail(start, width, "empty property name")
	default:
		if _, ok := unicode.Categories[name]; !ok {
			return t.fail(start, width, "unknown Unicode category")
		}
		if negated {
			content = `\P{` + name + `}`
		} else {
			content = `\p{` + name + `}`
		}
	}

	if t.inClass {
		t.classBuf.WriteString(content)
		t.class.markNonChar()
	} else {
		t.out.WriteString("[" + content + "]")
		t.atom()
	}
	t.i += width
	return nil
}

func (t *translator) startClass() error {
	t.inClass = true
	t.classStart = t.i
	t.class.reset()
	t.classBuf.Reset()
	t.classNegated = false
	t.classAlts = t.classAlts[:0]
	t.i++
	if t.i < len(t.pattern) && t.pattern[t.i] == '^' {
		t.classNegated = true
		t.i++
	}
	return nil
}

func (t *translator) handleClassChar() error {
	c := t.pattern[t.i]
	switch c {
	case ']':
		return t.endClass()
	case '[':
		return t.fail(t.i, 1, "nested character classes are not supported")
	case '-':
		return t.classDash()
	}
	r, size := utf8.DecodeRuneInString(t.pattern[t.i:])
	if r == utf8.RuneError && size == 1 {
		return t.fail(t.i, 1, "invalid UTF-8")
	}
	if err := t.classChar(r); err != nil {
		return err
	}
	t.classBuf.WriteString(t.pattern[t.i : t.i+size])
	t.i += size
	return nil
}

func (t *translator) classChar(r rune) error {
	s := &t.class
	if s.lastWasDash {
		if s.lastItem > r {
			return t.fail(t.classStart, t.i+1-t.classStart, "character range start is greater than its end")
		}
		s.lastWasRange = true
		s.lastWasDash = false
	} else {
		s.lastWasRange = false
	}
	s.lastItem = r
	s.lastItemIsChar = true
	s.isFirst = false
	return nil
}

func (t *translator) classDash() error {
	s := &t.class
	if strings.HasPrefix(t.pattern[t.i:], "-[") {
		return t.fail(t.i, 2, "character class subtraction is not supported by the host engine")
	}
	last := t.i+1 < len(t.pattern) && t.pattern[t.i+1] == ']'
	if s.isFirst || last {
		if err := t.classChar('-'); err != nil {
			return err
		}
		t.classBuf.WriteString(`\-`)
		t.i++
		return nil
	}
	switch {
	case s.lastWasRange:
		return t.fail(t.i, 1, "'-' cannot follow a range")
	case s.lastWasDash:
		return t.fail(t.i, 1, "consecutive '-' in character class")
	case !s.lastItemIsChar:
		return t.fail(t.i, 1, "'-' cannot follow a multi-character escape")
	}
	s.lastWasDash = true
	t.classBuf.WriteByte('-')
	t.i++
	return nil
}

func (t *translator) endClass() error {
	if t.class.isFirst && len(t.classAlts) == 0 && t.classBuf.Len() == 0 {
		return t.fail(t.classStart, t.i+1-t.classStart, "empty character class")
	}
	if t.class.lastWasDash {
		return t.fail(t.classStart, t.i+1-t.classStart, "unterminated character range")
	}
	content := t.classBuf.String()
	switch {
	case len(t.classAlts) == 0 && t.classNegated:
		t.out.WriteString("[^" + content + "]")
	case len(t.classAlts) == 0:
		t.out.WriteString("[" + content + "]")
	default:
		parts := append([]string(nil), t.classAlts...)
		if content != "" {
			parts = append(parts, "["+content+"]")
		}
		if len(parts) == 1 {
			t.out.WriteString(parts[0])
		} else {
			t.out.WriteString("(?:" + strings.Join(parts, "|") + ")")
		}
	}
	t.inClass = false
	t.i++
	t.atom()
	return nil
}

// parseRepeat parses {m}, {m,} or {m,n} starting at start and returns the
// quantifier text and the offset just past it.
func (t *translator) parseRepeat(start int) (string, int, error) {
	closeIdx := strings.IndexByte(t.pattern[start:], '}')
	if closeIdx < 0 {
		return "", start, t.fail(start, len(t.pattern)-start, "unclosed quantifier")
	}
	end := start + closeIdx + 1
	body := t.pattern[start+1 : end-1]
	minText, maxText, hasComma := strings.Cut(body, ",")

	min, err := parseBound(minText)
	if err != nil {
		return "", start, t.fail(start, end-start, "invalid quantifier")
	}
	max := min
	if hasComma && maxText != "" {
		if max, err = parseBound(maxText); err != nil {
			return "", start, t.fail(start, end-start, "invalid quantifier")
		}
		if max < min {
			return "", start, t.fail(start, end-start, "quantifier maximum is less than its minimum")
		}
	}
	if min > maxRepeat || max > maxRepeat {
		return "", start, t.fail(start, end-start,
			fmt.Sprintf("repeat count exceeds the host limit of %d", maxRepeat))
	}
	return t.pattern[start:end], end, nil
}

func parseBound(s string) (int, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}

func blockRange(lo, hi rune) string {
	return fmt.Sprintf(`\x{%X}-\x{%X}`, lo, hi)
}

// complementRange returns the ranges outside lo-hi.
func complementRange(lo, hi rune) string {
	var b strings.Builder
	if lo > 0 {
		b.WriteString(blockRange(0, lo-1))
	}
	if hi < unicode.MaxRune {
		b.WriteString(blockRange(hi+1, unicode.MaxRune))
	}
	return b.String()
}

func controlRune(c byte) rune {
	switch c {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	default:
		return '\t'
	}
}

package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sandrolain/goxmatch/pkg/types"
)

const eof = -1

// Lexer converts a query into a sequence of tokens.
// The implementation is based on Rob Pike's "Lexical Scanning in Go" technique.
type Lexer struct {
	input   string // Input string being scanned
	length  int    // Length of input string
	start   int    // Start position of current token
	current int    // Current position in input
	width   int    // Width of last rune read
	err     error  // First error encountered
}

// NewLexer creates a new lexer from the provided input string.
// The input is tokenized by successive calls to the Next method.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		length: len(input),
	}
}

// Next returns the next token from the input.
// When the end of the input is reached, Next returns TokenEOF for all subsequent calls.
func (l *Lexer) Next() Token {
	l.skipWhitespace()

	ch := l.nextRune()
	if ch == eof {
		return l.eof()
	}

	switch {
	case ch == '/':
		if l.acceptRune('/') {
			return l.newToken(TokenDoubleSlash)
		}
		return l.newToken(TokenSlash)
	case ch == '.':
		// .5 is a number, a lone dot is the context item
		if l.acceptAll(isDigit) {
			return l.newToken(TokenNumber)
		}
		return l.newToken(TokenDot)
	case ch == '"' || ch == '\'':
		l.ignore()
		return l.scanString(ch)
	case isDigit(ch):
		l.backup()
		return l.scanNumber()
	case isNameStart(ch):
		l.backup()
		return l.scanName()
	}

	if tt := lookupSymbol1(ch); tt > 0 {
		return l.newToken(tt)
	}
	return l.error("unexpected character " + string(ch))
}

// Error returns the first error encountered during lexing, if any.
func (l *Lexer) Error() error {
	return l.err
}

// scanString reads a string literal from the current position.
// The opening quote has already been consumed. A doubled quote stands
// for one quote character; backslashes are literal.
func (l *Lexer) scanString(quote rune) Token {
	var b strings.Builder
	pos := l.start - 1
	for {
		switch r := l.nextRune(); r {
		case quote:
			if l.acceptRune(quote) {
				b.WriteRune(quote)
				continue
			}
			l.ignore()
			return Token{Type: TokenString, Value: b.String(), Position: pos}
		case eof:
			l.start = pos
			return l.error("unterminated string literal")
		default:
			b.WriteRune(r)
		}
	}
}

// scanNumber reads a number literal from the current position.
// Format: [0-9]*(\.[0-9]+)?
func (l *Lexer) scanNumber() Token {
	l.acceptAll(isDigit)
	if l.acceptRune('.') {
		l.acceptAll(isDigit)
	}
	return l.newToken(TokenNumber)
}

// scanName reads a name. Names may contain a namespace prefix (fn:matches).
func (l *Lexer) scanName() Token {
	l.acceptAll(isNameChar)
	if l.acceptRune(':') {
		if !l.accept(isNameStart) {
			return l.error("malformed prefixed name")
		}
		l.acceptAll(isNameChar)
	}
	return l.newToken(TokenName)
}

// Helper methods

func (l *Lexer) eof() Token {
	return Token{
		Type:     TokenEOF,
		Position: l.current,
	}
}

func (l *Lexer) error(message string) Token {
	t := l.newToken(TokenError)
	l.err = types.NewError(types.ErrSyntaxError, message, t.Position).WithToken(t.Value)
	return t
}

func (l *Lexer) newToken(tt TokenType) Token {
	t := Token{
		Type:     tt,
		Value:    l.input[l.start:l.current],
		Position: l.start,
	}
	l.width = 0
	l.start = l.current
	return t
}

func (l *Lexer) nextRune() rune {
	if l.err != nil || l.current >= l.length {
		l.width = 0
		return eof
	}

	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *Lexer) backup() {
	l.current -= l.width
}

func (l *Lexer) ignore() {
	l.start = l.current
}

func (l *Lexer) acceptRune(r rune) bool {
	return l.accept(func(c rune) bool {
		return c == r
	})
}

func (l *Lexer) accept(isValid func(rune) bool) bool {
	if isValid(l.nextRune()) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) bool {
	var matched bool
	for l.accept(isValid) {
		matched = true
	}
	return matched
}

func (l *Lexer) skipWhitespace() {
	l.acceptAll(isWhitespace)
	l.ignore()
}

// Character classification functions

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r':
		return true
	default:
		return false
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isNameStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isNameChar(r rune) bool {
	return isNameStart(r) || unicode.IsDigit(r) || r == '-' || r == '.'
}

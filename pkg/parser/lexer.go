package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/irvinebroque/jsonpath/pkg/types"
)

const eof = -1

// Lexer converts a JSONPath query string into a sequence of tokens.
// The implementation is based on Rob Pike's "Lexical Scanning in Go"
// technique: a single forward cursor with one-rune backup.
//
// The lexer owns no grammar knowledge. It enforces only the lexical rules of
// RFC 9535: string escape forms, surrogate-pair composition, the integer
// number grammar, and the prohibition of blank space directly after the "."
// and ".." shorthand introducers.
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
// When the end of the input is reached, Next returns TokenEOF for all
// subsequent calls. After a TokenError, Error reports the failure with the
// byte offset of the actual failure point, not the token start.
func (l *Lexer) Next() Token {
	l.acceptAll(isBlank)
	l.ignore()

	if l.err != nil {
		return Token{Type: TokenError, Position: l.start}
	}

	ch := l.nextRune()
	if ch == eof {
		return l.eofToken()
	}
	chPos := l.current - l.width

	// Two-character symbols first (==, !=, <=, >=, &&, ||, ..)
	if rts := lookupSymbol2(ch); rts != nil {
		for _, rt := range rts {
			if l.acceptRune(rt.r) {
				if rt.tt == TokenDotDot {
					return l.shorthandDot(TokenDotDot)
				}
				return l.newToken(rt.tt)
			}
		}
	}

	// A lone "." introduces member shorthand.
	if ch == '.' {
		return l.shorthandDot(TokenDot)
	}

	// Single-character symbols
	if tt := lookupSymbol1(ch); tt > 0 {
		return l.newToken(tt)
	}

	// String literals (single or double quoted)
	if ch == '"' || ch == '\'' {
		return l.scanString(ch)
	}

	// Number literals
	if ch == '-' || ch >= '0' && ch <= '9' {
		l.backup()
		return l.scanNumber()
	}

	// Member shorthand names, function names, keywords
	if isNameFirst(ch) {
		l.backup()
		return l.scanName()
	}

	return l.errorAt(types.ErrUnexpectedChar, chPos,
		fmt.Sprintf("unexpected character %q", ch))
}

// Error returns the first error encountered during lexing, if any.
func (l *Lexer) Error() error {
	return l.err
}

// shorthandDot emits a "." or ".." token, rejecting blank space directly
// after it: the grammar requires the member name, wildcard or bracket to
// follow the dots with no intervening whitespace.
func (l *Lexer) shorthandDot(tt TokenType) Token {
	t := l.newToken(tt)
	if l.current < l.length && isBlank(rune(l.input[l.current])) {
		return l.errorAt(types.ErrSpaceAfterDot, l.current,
			fmt.Sprintf("blank space not allowed after %q", tt.String()))
	}
	return t
}

// scanString reads a string literal, decoding escape sequences.
// The opening quote has already been consumed. Per the grammar, only the
// quote character that delimits the literal may be escaped; raw control
// characters are rejected.
func (l *Lexer) scanString(quote rune) Token {
	start := l.current - l.width // position of the opening quote
	var buf strings.Builder

	for {
		chPos := l.current
		ch := l.nextRune()
		switch {
		case ch == eof:
			return l.errorAt(types.ErrStringNotClosed, l.current, "unterminated string literal")
		case ch == quote:
			t := Token{Type: TokenString, Value: buf.String(), Position: start}
			l.ignore()
			return t
		case ch == '\\':
			if err := l.scanEscape(quote, &buf); err != nil {
				return Token{Type: TokenError, Position: chPos}
			}
		case ch <= 0x1F:
			return l.errorAt(types.ErrControlChar, chPos,
				fmt.Sprintf("raw control character U+%04X in string literal", ch))
		default:
			buf.WriteRune(ch)
		}
	}
}

// scanEscape decodes one backslash escape; the backslash has been consumed.
func (l *Lexer) scanEscape(quote rune, buf *strings.Builder) error {
	chPos := l.current
	ch := l.nextRune()
	switch ch {
	case 'b':
		buf.WriteByte('\b')
	case 'f':
		buf.WriteByte('\f')
	case 'n':
		buf.WriteByte('\n')
	case 'r':
		buf.WriteByte('\r')
	case 't':
		buf.WriteByte('\t')
	case '/':
		buf.WriteByte('/')
	case '\\':
		buf.WriteByte('\\')
	case quote:
		buf.WriteRune(quote)
	case 'u':
		r, err := l.scanUnicodeEscape()
		if err != nil {
			return err
		}
		buf.WriteRune(r)
	case eof:
		l.errorAt(types.ErrStringNotClosed, l.current, "unterminated string literal")
		return l.err
	default:
		l.errorAt(types.ErrInvalidEscape, chPos, fmt.Sprintf("invalid escape sequence \\%c", ch))
		return l.err
	}
	return nil
}

// scanUnicodeEscape decodes the XXXX of a \uXXXX escape, composing UTF-16
// surrogate pairs. The "\u" has been consumed.
func (l *Lexer) scanUnicodeEscape() (rune, error) {
	hi, err := l.scanHex4()
	if err != nil {
		return 0, err
	}

	// Low surrogate with no preceding high surrogate.
	if hi >= 0xDC00 && hi <= 0xDFFF {
		l.errorAt(types.ErrBadSurrogate, l.current-4,
			fmt.Sprintf("unpaired low surrogate \\u%04X", hi))
		return 0, l.err
	}

	// High surrogate: a \uXXXX low surrogate must follow.
	if hi >= 0xD800 && hi <= 0xDBFF {
		pairPos := l.current
		if !l.acceptRune('\\') || !l.acceptRune('u') {
			l.errorAt(types.ErrBadSurrogate, pairPos,
				fmt.Sprintf("high surrogate \\u%04X not followed by low surrogate", hi))
			return 0, l.err
		}
		lo, err := l.scanHex4()
		if err != nil {
			return 0, err
		}
		if lo < 0xDC00 || lo > 0xDFFF {
			l.errorAt(types.ErrBadSurrogate, pairPos,
				fmt.Sprintf("invalid low surrogate \\u%04X", lo))
			return 0, l.err
		}
		return utf16.DecodeRune(rune(hi), rune(lo)), nil
	}

	return rune(hi), nil
}

// scanHex4 reads exactly four hex digits.
func (l *Lexer) scanHex4() (uint32, error) {
	start := l.current
	for i := 0; i < 4; i++ {
		ch := l.nextRune()
		if !isHexDigit(ch) {
			pos := l.current
			if ch != eof {
				pos -= l.width
			}
			l.errorAt(types.ErrInvalidEscape, pos, "invalid \\u escape: expected four hex digits")
			return 0, l.err
		}
	}
	v, err := strconv.ParseUint(l.input[start:l.current], 16, 32)
	if err != nil {
		l.errorAt(types.ErrInvalidEscape, start, "invalid \\u escape")
		return 0, l.err
	}
	return uint32(v), nil
}

// scanNumber reads a number literal, preserving the raw text in the token
// value. The integer part follows the grammar: "0", or a non-zero digit
// followed by digits, optionally negated; "-0" is admitted only so the
// parser can accept it in filter-literal position. Fractional and exponent
// parts mark the literal as a general (non-integer) number.
func (l *Lexer) scanNumber() Token {
	l.acceptRune('-')

	intPos := l.current
	if !l.acceptRune('0') {
		if !l.accept(isNonZeroDigit) {
			return l.errorAt(types.ErrInvalidNumber, intPos, "expected digit in number literal")
		}
		l.acceptAll(isDigit)
	} else if l.accept(isDigit) {
		return l.errorAt(types.ErrInvalidNumber, l.current-l.width, "redundant leading zero in number literal")
	}

	// Fractional part
	if l.acceptRune('.') {
		fracPos := l.current
		if !l.acceptAll(isDigit) {
			return l.errorAt(types.ErrInvalidNumber, fracPos, "expected digit after decimal point")
		}
	}

	// Exponent part
	if l.acceptRunes2('e', 'E') {
		l.acceptRunes2('+', '-')
		expPos := l.current
		if !l.acceptAll(isDigit) {
			return l.errorAt(types.ErrInvalidNumber, expPos, "expected digit in exponent")
		}
	}

	return l.newToken(TokenNumber)
}

// scanName reads a member-name shorthand, function name or keyword.
// Name characters are letters, digits, underscore and any rune >= U+0080.
func (l *Lexer) scanName() Token {
	l.accept(isNameFirst)
	l.acceptAll(isNameChar)

	t := l.newToken(TokenName)
	if tt := lookupKeyword(t.Value); tt > 0 {
		t.Type = tt
	}
	return t
}

// Helper methods

func (l *Lexer) eofToken() Token {
	return Token{
		Type:     TokenEOF,
		Position: l.current,
	}
}

// errorAt records a lexical error at the given byte offset and returns an
// error token. Only the first error is retained.
func (l *Lexer) errorAt(code types.ErrorCode, position int, message string) Token {
	if l.err == nil {
		l.err = types.NewError(code, message, position)
	}
	return Token{Type: TokenError, Position: position}
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

func (l *Lexer) acceptRunes2(r1, r2 rune) bool {
	return l.accept(func(c rune) bool {
		return c == r1 || c == r2
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

// Character classification functions

// isBlank matches the grammar's blank-space set: space, tab, LF, CR.
func isBlank(r rune) bool {
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

func isNonZeroDigit(r rune) bool {
	return r >= '1' && r <= '9'
}

func isHexDigit(r rune) bool {
	return r >= '0' && r <= '9' || r >= 'a' && r <= 'f' || r >= 'A' && r <= 'F'
}

func isNameFirst(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '_' || r >= 0x80
}

func isNameChar(r rune) bool {
	return isNameFirst(r) || isDigit(r)
}

package parser

// TokenType represents the type of a lexical token.
type TokenType uint8

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Literals and names
	TokenString // "hello" or 'hello', decoded
	TokenNumber // 123, -1, 3.14, 1e-10 (raw text preserved)
	TokenName   // member shorthand or function name
	TokenTrue   // true
	TokenFalse  // false
	TokenNull   // null

	// Query structure
	TokenRoot         // $
	TokenCurrent      // @
	TokenDot          // .
	TokenDotDot       // ..
	TokenBracketOpen  // [
	TokenBracketClose // ]
	TokenParenOpen    // (
	TokenParenClose   // )
	TokenComma        // ,
	TokenColon        // :
	TokenStar         // *
	TokenQuestion     // ?

	// Filter operators
	TokenBang         // !
	TokenEqual        // ==
	TokenNotEqual     // !=
	TokenLess         // <
	TokenLessEqual    // <=
	TokenGreater      // >
	TokenGreaterEqual // >=
	TokenAnd          // &&
	TokenOr           // ||
)

// String returns a string representation of the token type.
func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "(eof)"
	case TokenError:
		return "(error)"
	case TokenString:
		return "(string)"
	case TokenNumber:
		return "(number)"
	case TokenName:
		return "(name)"
	case TokenTrue:
		return "true"
	case TokenFalse:
		return "false"
	case TokenNull:
		return "null"
	case TokenRoot:
		return "$"
	case TokenCurrent:
		return "@"
	case TokenDot:
		return "."
	case TokenDotDot:
		return ".."
	case TokenBracketOpen:
		return "["
	case TokenBracketClose:
		return "]"
	case TokenParenOpen:
		return "("
	case TokenParenClose:
		return ")"
	case TokenComma:
		return ","
	case TokenColon:
		return ":"
	case TokenStar:
		return "*"
	case TokenQuestion:
		return "?"
	case TokenBang:
		return "!"
	case TokenEqual:
		return "=="
	case TokenNotEqual:
		return "!="
	case TokenLess:
		return "<"
	case TokenLessEqual:
		return "<="
	case TokenGreater:
		return ">"
	case TokenGreaterEqual:
		return ">="
	case TokenAnd:
		return "&&"
	case TokenOr:
		return "||"
	default:
		return "(unknown)"
	}
}

// Token represents one lexical token of a query. Value holds the decoded
// text for strings and the raw literal text for numbers and names, so the
// parser can distinguish integer from decimal forms. Tokens are immutable
// once produced.
type Token struct {
	Type     TokenType // Type of the token
	Value    string    // Literal or decoded value of the token
	Position int       // Starting byte offset in the input string
}

// symbols1 maps single-character symbols to token types.
var symbols1 = [...]TokenType{
	'$': TokenRoot,
	'@': TokenCurrent,
	'[': TokenBracketOpen,
	']': TokenBracketClose,
	'(': TokenParenOpen,
	')': TokenParenClose,
	',': TokenComma,
	':': TokenColon,
	'*': TokenStar,
	'?': TokenQuestion,
	'<': TokenLess,
	'>': TokenGreater,
	'!': TokenBang,
}

// runeTokenType pairs a rune with its corresponding token type.
type runeTokenType struct {
	r  rune
	tt TokenType
}

// symbols2 maps two-character symbol sequences to token types.
// The key is the first character of the sequence.
var symbols2 = [...][]runeTokenType{
	'=': {{'=', TokenEqual}},
	'!': {{'=', TokenNotEqual}},
	'<': {{'=', TokenLessEqual}},
	'>': {{'=', TokenGreaterEqual}},
	'&': {{'&', TokenAnd}},
	'|': {{'|', TokenOr}},
	'.': {{'.', TokenDotDot}},
}

const (
	symbol1Count = rune(len(symbols1))
	symbol2Count = rune(len(symbols2))
)

// lookupSymbol1 returns the token type for a single-character symbol.
// Returns 0 (TokenEOF) if the rune is not a valid symbol.
func lookupSymbol1(r rune) TokenType {
	if r < 0 || r >= symbol1Count {
		return 0
	}
	return symbols1[r]
}

// lookupSymbol2 returns possible two-character symbol completions.
// Returns nil if the rune cannot start a two-character symbol.
func lookupSymbol2(r rune) []runeTokenType {
	if r < 0 || r >= symbol2Count {
		return nil
	}
	return symbols2[r]
}

// lookupKeyword returns the token type for a literal keyword.
// Returns 0 if the string is not a keyword.
func lookupKeyword(s string) TokenType {
	switch s {
	case "true":
		return TokenTrue
	case "false":
		return TokenFalse
	case "null":
		return TokenNull
	default:
		return 0
	}
}

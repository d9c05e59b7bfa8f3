package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/irvinebroque/jsonpath/pkg/functions"
	"github.com/irvinebroque/jsonpath/pkg/types"
)

// maxSafeInt bounds index, slice and step arguments to the interoperable
// integer range of I-JSON (2^53 - 1).
const maxSafeInt = 1<<53 - 1

// Parser implements a recursive descent parser for JSONPath queries.
type Parser struct {
	lexer   *Lexer
	current Token
	opts    Options
	depth   int
}

// NewParser creates a new parser for the given input string.
func NewParser(input string, opts ...Option) *Parser {
	options := Options{
		MaxDepth: 100,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Registry == nil {
		options.Registry = functions.New()
	}
	if options.MaxDepth <= 0 {
		options.MaxDepth = 100
	}

	p := &Parser{
		lexer: NewLexer(input),
		opts:  options,
	}

	// Read the first token
	p.advance()

	return p
}

// Parse parses the entire query and returns the root AST node.
func (p *Parser) Parse() (*types.Query, error) {
	if p.current.Type == TokenEOF {
		return nil, types.NewError(types.ErrSyntax, "empty query", 0)
	}
	if err := p.expect(TokenRoot); err != nil {
		return nil, err
	}

	segments, err := p.parseSegments()
	if err != nil {
		return nil, err
	}

	if p.current.Type != TokenEOF {
		return nil, p.errorf(types.ErrSyntax, "unexpected token %s after query", p.current.Type)
	}

	return &types.Query{Segments: segments}, nil
}

// advance moves to the next token.
func (p *Parser) advance() {
	p.current = p.lexer.Next()
}

// expect checks that the current token matches the expected type and
// advances past it.
func (p *Parser) expect(tt TokenType) error {
	if p.current.Type != tt {
		return p.errorf(types.ErrExpectedToken, "expected %s but got %s", tt, p.current.Type)
	}
	p.advance()
	return nil
}

// errorf creates a parser error at the current token. A pending lexer error
// takes precedence: it carries the offset of the actual lexical failure.
func (p *Parser) errorf(code types.ErrorCode, format string, args ...any) error {
	if err := p.lexer.Error(); err != nil {
		return err
	}
	if p.current.Type == TokenEOF {
		return types.NewError(types.ErrUnexpectedEnd, "unexpected end of query", p.current.Position)
	}
	return types.NewError(code, fmt.Sprintf(format, args...), p.current.Position).
		WithToken(p.current.Value)
}

// enter guards recursive productions against pathological nesting.
func (p *Parser) enter() error {
	p.depth++
	if p.depth > p.opts.MaxDepth {
		return types.NewError(types.ErrTooDeep,
			fmt.Sprintf("query nesting exceeds depth limit %d", p.opts.MaxDepth),
			p.current.Position)
	}
	return nil
}

func (p *Parser) leave() {
	p.depth--
}

// parseSegments parses zero or more child or descendant segments. It stops
// at the first token that cannot start a segment, leaving it for the caller:
// top-level parsing then requires EOF, while filter-expression parsing
// continues with operators or closing delimiters.
func (p *Parser) parseSegments() ([]*types.Segment, error) {
	var segments []*types.Segment
	for {
		switch p.current.Type {
		case TokenDot:
			p.advance()
			sel, err := p.parseShorthandSelector()
			if err != nil {
				return nil, err
			}
			segments = append(segments, &types.Segment{Selectors: []types.Selector{sel}})

		case TokenDotDot:
			p.advance()
			if p.current.Type == TokenBracketOpen {
				selectors, err := p.parseBracketedSelectors()
				if err != nil {
					return nil, err
				}
				segments = append(segments, &types.Segment{Descendant: true, Selectors: selectors})
				continue
			}
			sel, err := p.parseShorthandSelector()
			if err != nil {
				return nil, err
			}
			segments = append(segments, &types.Segment{Descendant: true, Selectors: []types.Selector{sel}})

		case TokenBracketOpen:
			selectors, err := p.parseBracketedSelectors()
			if err != nil {
				return nil, err
			}
			segments = append(segments, &types.Segment{Selectors: selectors})

		default:
			return segments, nil
		}
	}
}

// parseShorthandSelector parses the member name or wildcard directly after a
// "." or ".." introducer. The literal keywords double as plain member names
// here.
func (p *Parser) parseShorthandSelector() (types.Selector, error) {
	switch p.current.Type {
	case TokenStar:
		p.advance()
		return types.WildcardSelector{}, nil
	case TokenName, TokenTrue, TokenFalse, TokenNull:
		sel := types.NameSelector{Name: p.current.Value}
		p.advance()
		return sel, nil
	default:
		return nil, p.errorf(types.ErrExpectedToken, "expected member name or '*', got %s", p.current.Type)
	}
}

// parseBracketedSelectors parses a non-empty, comma-separated selector list.
// The current token is the opening bracket.
func (p *Parser) parseBracketedSelectors() ([]types.Selector, error) {
	open := p.current.Position
	p.advance()

	if p.current.Type == TokenBracketClose {
		return nil, types.NewError(types.ErrEmptySelection, "empty bracketed selection", open)
	}

	var selectors []types.Selector
	for {
		sel, err := p.parseSelector()
		if err != nil {
			return nil, err
		}
		selectors = append(selectors, sel)

		if p.current.Type != TokenComma {
			break
		}
		p.advance()
	}

	if err := p.expect(TokenBracketClose); err != nil {
		return nil, err
	}
	return selectors, nil
}

// parseSelector classifies one bracketed selector by lookahead on its first
// token: a string is a name, "*" a wildcard, "?" a filter, and a number or
// ":" starts an index or slice.
func (p *Parser) parseSelector() (types.Selector, error) {
	switch p.current.Type {
	case TokenString:
		sel := types.NameSelector{Name: p.current.Value}
		p.advance()
		return sel, nil

	case TokenStar:
		p.advance()
		return types.WildcardSelector{}, nil

	case TokenQuestion:
		p.advance()
		expr, err := p.parseLogicalOr()
		if err != nil {
			return nil, err
		}
		return types.FilterSelector{Expr: expr}, nil

	case TokenNumber:
		n, err := p.parseIndexValue(p.current)
		if err != nil {
			return nil, err
		}
		p.advance()
		if p.current.Type == TokenColon {
			return p.parseSlice(&n)
		}
		return types.IndexSelector{Index: n}, nil

	case TokenColon:
		return p.parseSlice(nil)

	default:
		return nil, p.errorf(types.ErrSyntax, "unexpected token %s in bracketed selection", p.current.Type)
	}
}

// parseSlice parses the remainder of a slice selector after its optional
// start value; the current token is the first ":".
func (p *Parser) parseSlice(start *int) (types.Selector, error) {
	sel := types.SliceSelector{Start: start}
	p.advance()

	if p.current.Type == TokenNumber {
		n, err := p.parseIndexValue(p.current)
		if err != nil {
			return nil, err
		}
		sel.End = &n
		p.advance()
	}

	if p.current.Type == TokenColon {
		p.advance()
		if p.current.Type == TokenNumber {
			n, err := p.parseIndexValue(p.current)
			if err != nil {
				return nil, err
			}
			sel.Step = &n
			p.advance()
		}
	}

	return sel, nil
}

// parseIndexValue validates the integer form of an index, slice or step
// argument: no fraction or exponent, no minus zero, and within the I-JSON
// interoperable range.
func (p *Parser) parseIndexValue(t Token) (int, error) {
	if strings.ContainsAny(t.Value, ".eE") {
		return 0, types.NewError(types.ErrBadSlice,
			fmt.Sprintf("%s is not an integer", t.Value), t.Position).WithToken(t.Value)
	}
	if t.Value == "-0" {
		return 0, types.NewError(types.ErrBadSlice, "-0 is not a valid index", t.Position).WithToken(t.Value)
	}
	n, err := strconv.ParseInt(t.Value, 10, 64)
	if err != nil || n > maxSafeInt || n < -maxSafeInt {
		return 0, types.NewError(types.ErrIndexRange,
			fmt.Sprintf("%s is outside the interoperable integer range", t.Value), t.Position).
			WithToken(t.Value)
	}
	return int(n), nil
}

// Filter expressions.
//
// Precedence, loosest first: ||, &&, unary !, comparisons. Test expressions,
// parenthesized expressions and function calls are atoms.

func (p *Parser) parseLogicalOr() (types.LogicalExpr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	first, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	if p.current.Type != TokenOr {
		return first, nil
	}

	operands := []types.LogicalExpr{first}
	for p.current.Type == TokenOr {
		p.advance()
		next, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		operands = append(operands, next)
	}
	return types.OrExpr{Operands: operands}, nil
}

func (p *Parser) parseLogicalAnd() (types.LogicalExpr, error) {
	first, err := p.parseBasicExpr()
	if err != nil {
		return nil, err
	}
	if p.current.Type != TokenAnd {
		return first, nil
	}

	operands := []types.LogicalExpr{first}
	for p.current.Type == TokenAnd {
		p.advance()
		next, err := p.parseBasicExpr()
		if err != nil {
			return nil, err
		}
		operands = append(operands, next)
	}
	return types.AndExpr{Operands: operands}, nil
}

// parseBasicExpr parses one paren-expr, comparison-expr or test-expr.
func (p *Parser) parseBasicExpr() (types.LogicalExpr, error) {
	switch p.current.Type {
	case TokenBang:
		p.advance()
		inner, err := p.parseNotOperand()
		if err != nil {
			return nil, err
		}
		return types.NotExpr{Expr: inner}, nil

	case TokenParenOpen:
		return p.parseParenExpr()

	case TokenRoot, TokenCurrent:
		query, err := p.parseFilterQuery()
		if err != nil {
			return nil, err
		}
		if op, ok := compareOp(p.current.Type); ok {
			left, err := p.singularOperand(query)
			if err != nil {
				return nil, err
			}
			return p.parseComparisonRest(op, left)
		}
		return types.TestExpr{Query: query}, nil

	case TokenString, TokenNumber, TokenTrue, TokenFalse, TokenNull:
		left, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		op, ok := compareOp(p.current.Type)
		if !ok {
			return nil, p.errorf(types.ErrSyntax, "literal must be part of a comparison")
		}
		return p.parseComparisonRest(op, left)

	case TokenName:
		fe, err := p.parseFunctionExpr()
		if err != nil {
			return nil, err
		}
		if op, ok := compareOp(p.current.Type); ok {
			if err := p.requireValueResult(fe); err != nil {
				return nil, err
			}
			return p.parseComparisonRest(op, fe)
		}
		if err := p.requireLogicalResult(fe); err != nil {
			return nil, err
		}
		return fe, nil

	default:
		return nil, p.errorf(types.ErrSyntax, "unexpected token %s in filter expression", p.current.Type)
	}
}

// parseNotOperand parses the operand of "!", which the grammar restricts to
// a parenthesized expression, a test query or a logical function call.
func (p *Parser) parseNotOperand() (types.LogicalExpr, error) {
	switch p.current.Type {
	case TokenParenOpen:
		return p.parseParenExpr()
	case TokenRoot, TokenCurrent:
		query, err := p.parseFilterQuery()
		if err != nil {
			return nil, err
		}
		return types.TestExpr{Query: query}, nil
	case TokenName:
		fe, err := p.parseFunctionExpr()
		if err != nil {
			return nil, err
		}
		if err := p.requireLogicalResult(fe); err != nil {
			return nil, err
		}
		return fe, nil
	default:
		return nil, p.errorf(types.ErrSyntax, "expected '(', query or function after '!'")
	}
}

func (p *Parser) parseParenExpr() (types.LogicalExpr, error) {
	p.advance()
	expr, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenParenClose); err != nil {
		return nil, err
	}
	return expr, nil
}

// parseFilterQuery parses a "$"- or "@"-rooted query embedded in a filter.
func (p *Parser) parseFilterQuery() (*types.Query, error) {
	relative := p.current.Type == TokenCurrent
	p.advance()
	segments, err := p.parseSegments()
	if err != nil {
		return nil, err
	}
	return &types.Query{RootIsCurrent: relative, Segments: segments}, nil
}

// parseComparisonRest consumes the comparison operator and right operand.
func (p *Parser) parseComparisonRest(op types.CompareOp, left types.Comparable) (types.LogicalExpr, error) {
	p.advance()
	right, err := p.parseComparable()
	if err != nil {
		return nil, err
	}
	return types.ComparisonExpr{Op: op, Left: left, Right: right}, nil
}

// parseComparable parses a comparison operand: a literal, a singular query,
// or a value-returning function call.
func (p *Parser) parseComparable() (types.Comparable, error) {
	switch p.current.Type {
	case TokenString, TokenNumber, TokenTrue, TokenFalse, TokenNull:
		return p.parseLiteral()
	case TokenRoot, TokenCurrent:
		query, err := p.parseFilterQuery()
		if err != nil {
			return nil, err
		}
		return p.singularOperand(query)
	case TokenName:
		fe, err := p.parseFunctionExpr()
		if err != nil {
			return nil, err
		}
		if err := p.requireValueResult(fe); err != nil {
			return nil, err
		}
		return fe, nil
	default:
		return nil, p.errorf(types.ErrSyntax, "expected comparable operand, got %s", p.current.Type)
	}
}

// singularOperand wraps a query used as a comparison operand, enforcing the
// singular-query restriction.
func (p *Parser) singularOperand(query *types.Query) (types.Comparable, error) {
	if !query.IsSingular() {
		return nil, types.NewError(types.ErrNonSingular,
			fmt.Sprintf("query %s is not singular and cannot be a comparison operand", query),
			p.current.Position)
	}
	return types.SingularQuery{Query: query}, nil
}

func (p *Parser) parseLiteral() (types.Literal, error) {
	t := p.current
	p.advance()
	switch t.Type {
	case TokenString:
		return types.Literal{Value: t.Value}, nil
	case TokenNumber:
		f, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			return types.Literal{}, types.NewError(types.ErrInvalidNumber,
				fmt.Sprintf("invalid number literal %s", t.Value), t.Position).WithToken(t.Value)
		}
		return types.Literal{Value: f}, nil
	case TokenTrue:
		return types.Literal{Value: true}, nil
	case TokenFalse:
		return types.Literal{Value: false}, nil
	case TokenNull:
		return types.Literal{Value: nil}, nil
	default:
		return types.Literal{}, p.errorf(types.ErrSyntax, "expected literal, got %s", t.Type)
	}
}

// parseFunctionExpr parses a function call, checking name, arity and
// argument kinds against the registry.
func (p *Parser) parseFunctionExpr() (*types.FunctionExpr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	name := p.current.Value
	namePos := p.current.Position
	p.advance()
	if err := p.expect(TokenParenOpen); err != nil {
		return nil, err
	}

	def, ok := p.opts.Registry.Lookup(name)
	if !ok {
		return nil, types.NewError(types.ErrUnknownFunction,
			fmt.Sprintf("unknown function %q", name), namePos).WithToken(name)
	}

	var args []types.FunctionArg
	if p.current.Type != TokenParenClose {
		for {
			if len(args) >= len(def.Params) {
				return nil, types.NewError(types.ErrArgumentCount,
					fmt.Sprintf("%s() takes %d argument(s)", name, len(def.Params)),
					p.current.Position)
			}
			arg, err := p.parseFunctionArg(name, def.Params[len(args)])
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if p.current.Type != TokenComma {
				break
			}
			p.advance()
		}
	}

	if err := p.expect(TokenParenClose); err != nil {
		return nil, err
	}
	if len(args) != len(def.Params) {
		return nil, types.NewError(types.ErrArgumentCount,
			fmt.Sprintf("%s() takes %d argument(s), got %d", name, len(def.Params), len(args)),
			namePos)
	}

	return &types.FunctionExpr{Name: name, Args: args}, nil
}

// parseFunctionArg parses one argument according to the declared parameter
// kind, rejecting incompatible forms at parse time.
func (p *Parser) parseFunctionArg(fn string, kind functions.Kind) (types.FunctionArg, error) {
	argPos := p.current.Position

	switch kind {
	case functions.ValueKind:
		switch p.current.Type {
		case TokenString, TokenNumber, TokenTrue, TokenFalse, TokenNull:
			return p.parseLiteral()
		case TokenRoot, TokenCurrent:
			query, err := p.parseFilterQuery()
			if err != nil {
				return nil, err
			}
			if !query.IsSingular() {
				return nil, types.NewError(types.ErrArgumentType,
					fmt.Sprintf("%s() expects a value argument; %s is not a singular query", fn, query),
					argPos)
			}
			return types.QueryArg{Query: query}, nil
		case TokenName:
			fe, err := p.parseFunctionExpr()
			if err != nil {
				return nil, err
			}
			if err := p.requireValueResult(fe); err != nil {
				return nil, err
			}
			return fe, nil
		default:
			return nil, p.errorf(types.ErrSyntax, "expected function argument, got %s", p.current.Type)
		}

	case functions.NodesKind:
		switch p.current.Type {
		case TokenRoot, TokenCurrent:
			query, err := p.parseFilterQuery()
			if err != nil {
				return nil, err
			}
			return types.QueryArg{Query: query}, nil
		case TokenName:
			fe, err := p.parseFunctionExpr()
			if err != nil {
				return nil, err
			}
			if p.resultKind(fe) != functions.NodesKind {
				return nil, types.NewError(types.ErrArgumentType,
					fmt.Sprintf("%s() expects a nodes argument", fn), argPos)
			}
			return fe, nil
		default:
			return nil, types.NewError(types.ErrArgumentType,
				fmt.Sprintf("%s() expects a query argument", fn), argPos)
		}

	case functions.LogicalKind:
		expr, err := p.parseLogicalOr()
		if err != nil {
			return nil, err
		}
		return types.LogicalArg{Expr: expr}, nil

	default:
		return nil, types.NewError(types.ErrArgumentType,
			fmt.Sprintf("%s() has an invalid parameter declaration", fn), argPos)
	}
}

// resultKind returns the declared result kind of a function call.
func (p *Parser) resultKind(fe *types.FunctionExpr) functions.Kind {
	def, ok := p.opts.Registry.Lookup(fe.Name)
	if !ok {
		return 0
	}
	return def.Result
}

// requireValueResult rejects a function call whose result cannot be used as
// a comparison operand or value argument.
func (p *Parser) requireValueResult(fe *types.FunctionExpr) error {
	if p.resultKind(fe) != functions.ValueKind {
		return types.NewError(types.ErrNotComparable,
			fmt.Sprintf("%s() does not return a value and cannot be compared", fe.Name),
			p.current.Position)
	}
	return nil
}

// requireLogicalResult rejects a value-returning function call used directly
// as a filter test.
func (p *Parser) requireLogicalResult(fe *types.FunctionExpr) error {
	kind := p.resultKind(fe)
	if kind != functions.LogicalKind && kind != functions.NodesKind {
		return types.NewError(types.ErrNotLogical,
			fmt.Sprintf("%s() returns a value and cannot be used as a filter test", fe.Name),
			p.current.Position)
	}
	return nil
}

// compareOp maps comparison token types to AST operators.
func compareOp(tt TokenType) (types.CompareOp, bool) {
	switch tt {
	case TokenEqual:
		return types.CompareEq, true
	case TokenNotEqual:
		return types.CompareNe, true
	case TokenLess:
		return types.CompareLt, true
	case TokenLessEqual:
		return types.CompareLe, true
	case TokenGreater:
		return types.CompareGt, true
	case TokenGreaterEqual:
		return types.CompareGe, true
	default:
		return 0, false
	}
}

package types

import (
	"strconv"
	"strings"
)

// Query is the root AST node of a parsed JSONPath expression, and also the
// building block for sub-queries nested inside filter expressions. A query is
// immutable once produced by the parser and safe for concurrent evaluation.
type Query struct {
	// RootIsCurrent is false for "$"-rooted queries and true for "@"-rooted
	// sub-queries inside filters.
	RootIsCurrent bool
	Segments      []*Segment
}

// IsSingular reports whether the query is guaranteed to select at most one
// node: every segment is a child segment holding exactly one name or index
// selector. Only singular queries may appear as comparison operands.
func (q *Query) IsSingular() bool {
	for _, seg := range q.Segments {
		if seg.Descendant || len(seg.Selectors) != 1 {
			return false
		}
		switch seg.Selectors[0].(type) {
		case NameSelector, IndexSelector:
		default:
			return false
		}
	}
	return true
}

func (q *Query) writeTo(buf *strings.Builder) {
	if q.RootIsCurrent {
		buf.WriteByte('@')
	} else {
		buf.WriteByte('$')
	}
	for _, seg := range q.Segments {
		seg.writeTo(buf)
	}
}

// String renders the query in canonical bracket notation, e.g. $['a'][0].
func (q *Query) String() string {
	var buf strings.Builder
	q.writeTo(&buf)
	return buf.String()
}

// Segment applies a list of selectors to a node list. Child segments apply
// them to the current nodes; descendant segments first enumerate each current
// node and all nodes below it in pre-order.
type Segment struct {
	Descendant bool
	Selectors  []Selector
}

func (s *Segment) writeTo(buf *strings.Builder) {
	if s.Descendant {
		buf.WriteString("..")
	}
	buf.WriteByte('[')
	for i, sel := range s.Selectors {
		if i > 0 {
			buf.WriteByte(',')
		}
		sel.writeTo(buf)
	}
	buf.WriteByte(']')
}

// Selector is the closed set of per-node selection rules. Selectors are pure
// data and hold no evaluation state.
type Selector interface {
	isSelector()
	writeTo(buf *strings.Builder)
}

// NameSelector selects the member of an object with an exact, case-sensitive
// key.
type NameSelector struct {
	Name string
}

// WildcardSelector selects every member of an object or element of an array.
type WildcardSelector struct{}

// IndexSelector selects one array element; negative indices count from the
// end.
type IndexSelector struct {
	Index int
}

// SliceSelector selects a range of array elements. Absent parts are nil and
// default by step direction at evaluation time.
type SliceSelector struct {
	Start *int
	End   *int
	Step  *int
}

// FilterSelector selects the children of a node for which the filter
// expression is logically true.
type FilterSelector struct {
	Expr LogicalExpr
}

func (NameSelector) isSelector()     {}
func (WildcardSelector) isSelector() {}
func (IndexSelector) isSelector()    {}
func (SliceSelector) isSelector()    {}
func (FilterSelector) isSelector()   {}

func (s NameSelector) writeTo(buf *strings.Builder) {
	writeQuotedName(buf, s.Name)
}

func (WildcardSelector) writeTo(buf *strings.Builder) {
	buf.WriteByte('*')
}

func (s IndexSelector) writeTo(buf *strings.Builder) {
	buf.WriteString(strconv.Itoa(s.Index))
}

func (s SliceSelector) writeTo(buf *strings.Builder) {
	if s.Start != nil {
		buf.WriteString(strconv.Itoa(*s.Start))
	}
	buf.WriteByte(':')
	if s.End != nil {
		buf.WriteString(strconv.Itoa(*s.End))
	}
	if s.Step != nil {
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(*s.Step))
	}
}

func (s FilterSelector) writeTo(buf *strings.Builder) {
	buf.WriteByte('?')
	s.Expr.writeTo(buf)
}

// CompareOp is a filter comparison operator.
type CompareOp uint8

const (
	CompareEq CompareOp = iota + 1 // ==
	CompareNe                      // !=
	CompareLt                      // <
	CompareLe                      // <=
	CompareGt                      // >
	CompareGe                      // >=
)

// String returns the operator's source form.
func (op CompareOp) String() string {
	switch op {
	case CompareEq:
		return "=="
	case CompareNe:
		return "!="
	case CompareLt:
		return "<"
	case CompareLe:
		return "<="
	case CompareGt:
		return ">"
	case CompareGe:
		return ">="
	default:
		return "?"
	}
}

// LogicalExpr is the closed set of filter-expression forms.
type LogicalExpr interface {
	isLogicalExpr()
	writeTo(buf *strings.Builder)
}

// OrExpr is a disjunction of two or more operands, evaluated left to right
// with short-circuiting.
type OrExpr struct {
	Operands []LogicalExpr
}

// AndExpr is a conjunction of two or more operands, evaluated left to right
// with short-circuiting.
type AndExpr struct {
	Operands []LogicalExpr
}

// NotExpr negates its operand.
type NotExpr struct {
	Expr LogicalExpr
}

// ComparisonExpr compares two comparable operands. Well-typedness (only
// literals, singular queries and value-returning functions as operands) is
// enforced at parse time.
type ComparisonExpr struct {
	Op    CompareOp
	Left  Comparable
	Right Comparable
}

// TestExpr is true when its embedded query selects at least one node.
type TestExpr struct {
	Query *Query
}

func (OrExpr) isLogicalExpr()         {}
func (AndExpr) isLogicalExpr()        {}
func (NotExpr) isLogicalExpr()        {}
func (ComparisonExpr) isLogicalExpr() {}
func (TestExpr) isLogicalExpr()       {}
func (*FunctionExpr) isLogicalExpr()  {}

func (e OrExpr) writeTo(buf *strings.Builder) {
	for i, op := range e.Operands {
		if i > 0 {
			buf.WriteString(" || ")
		}
		op.writeTo(buf)
	}
}

func (e AndExpr) writeTo(buf *strings.Builder) {
	for i, op := range e.Operands {
		if i > 0 {
			buf.WriteString(" && ")
		}
		// A disjunction inside a conjunction came from a paren-expr.
		if _, ok := op.(OrExpr); ok {
			buf.WriteByte('(')
			op.writeTo(buf)
			buf.WriteByte(')')
			continue
		}
		op.writeTo(buf)
	}
}

func (e NotExpr) writeTo(buf *strings.Builder) {
	buf.WriteByte('!')
	switch e.Expr.(type) {
	case OrExpr, AndExpr:
		buf.WriteByte('(')
		e.Expr.writeTo(buf)
		buf.WriteByte(')')
	default:
		e.Expr.writeTo(buf)
	}
}

func (e ComparisonExpr) writeTo(buf *strings.Builder) {
	e.Left.writeTo(buf)
	buf.WriteByte(' ')
	buf.WriteString(e.Op.String())
	buf.WriteByte(' ')
	e.Right.writeTo(buf)
}

func (e TestExpr) writeTo(buf *strings.Builder) {
	e.Query.writeTo(buf)
}

// Comparable is the closed set of comparison operands and value-typed
// function arguments: a literal, a singular query, or a value-returning
// function call.
type Comparable interface {
	isComparable()
	writeTo(buf *strings.Builder)
}

// Literal is a constant JSON value appearing in a filter expression. Numbers
// are stored as float64, matching encoding/json's decoding of documents.
type Literal struct {
	Value any
}

// SingularQuery wraps a query proven singular at parse time.
type SingularQuery struct {
	Query *Query
}

func (Literal) isComparable()       {}
func (SingularQuery) isComparable() {}
func (*FunctionExpr) isComparable() {}

func (l Literal) writeTo(buf *strings.Builder) {
	switch v := l.Value.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(v))
	case string:
		writeQuotedName(buf, v)
	case float64:
		buf.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	default:
		buf.WriteString("null")
	}
}

func (s SingularQuery) writeTo(buf *strings.Builder) {
	s.Query.writeTo(buf)
}

// FunctionExpr is a call to a registered query function. The parser verifies
// the name, arity and argument kinds against the registry; the evaluator
// dispatches through the same registry, so both layers agree on one contract
// table. A FunctionExpr is a Comparable when the function returns a value and
// a LogicalExpr when it returns a logical or nodes result.
type FunctionExpr struct {
	Name string
	Args []FunctionArg
}

func (e *FunctionExpr) writeTo(buf *strings.Builder) {
	buf.WriteString(e.Name)
	buf.WriteByte('(')
	for i, arg := range e.Args {
		if i > 0 {
			buf.WriteString(", ")
		}
		arg.writeTo(buf)
	}
	buf.WriteByte(')')
}

// FunctionArg is the closed set of function argument forms: Literal,
// *Query (singular or general, depending on the declared parameter kind),
// *FunctionExpr, and LogicalArg for logical-typed parameters.
type FunctionArg interface {
	isFunctionArg()
	writeTo(buf *strings.Builder)
}

// QueryArg passes a query's node list (or single value, for value-typed
// parameters) to a function.
type QueryArg struct {
	Query *Query
}

// LogicalArg passes a logical expression to a logical-typed parameter.
type LogicalArg struct {
	Expr LogicalExpr
}

func (Literal) isFunctionArg()       {}
func (QueryArg) isFunctionArg()      {}
func (LogicalArg) isFunctionArg()    {}
func (*FunctionExpr) isFunctionArg() {}

func (a QueryArg) writeTo(buf *strings.Builder) {
	a.Query.writeTo(buf)
}

func (a LogicalArg) writeTo(buf *strings.Builder) {
	a.Expr.writeTo(buf)
}

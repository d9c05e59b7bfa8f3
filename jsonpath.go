// Package jsonpath implements RFC 9535 JSONPath queries over decoded JSON
// values.
//
// A query selects an ordered list of nodes from a document. Each result node
// carries both its value and its normalized path, the canonical bracketed
// location of the node within the document.
//
// # Quick Start
//
//	// One-shot evaluation
//	values, err := jsonpath.Values(doc, "$.store.book[*].title")
//
//	// Compile once, run many times
//	q, err := jsonpath.Compile("$.store.book[?@.price < 10]")
//	nodes, _ := q.Run(doc1)
//	nodes2, _ := q.Run(doc2)
//
//	for _, n := range nodes {
//	    fmt.Println(n.Path, n.Value)
//	}
//
// # Error handling
//
// By default the package is tolerant: a malformed query yields nil results
// and a nil error, so callers that treat "no match" and "bad query" alike
// need no error plumbing. Pass WithStrictErrors(true) to receive the
// *types.Error describing the failure instead. MustCompile always panics on
// a bad query regardless of this setting.
//
// # More Information
//
// For detailed documentation, see:
//   - Parser: github.com/irvinebroque/jsonpath/pkg/parser
//   - Evaluator: github.com/irvinebroque/jsonpath/pkg/evaluator
//   - Functions: github.com/irvinebroque/jsonpath/pkg/functions
//   - Types: github.com/irvinebroque/jsonpath/pkg/types
package jsonpath

import (
	"fmt"
	"log/slog"

	"github.com/irvinebroque/jsonpath/pkg/evaluator"
	"github.com/irvinebroque/jsonpath/pkg/functions"
	"github.com/irvinebroque/jsonpath/pkg/parser"
	"github.com/irvinebroque/jsonpath/pkg/types"
)

// Version returns the current version of the package.
func Version() string {
	return "v0.1.0-dev"
}

// Options configures parsing and evaluation behavior.
type Options struct {
	// StrictErrors makes query failures surface as errors instead of the
	// tolerant nil-result default.
	StrictErrors bool
	// ParseDepth limits expression nesting during parsing. Defaults to 100.
	ParseDepth int
	// EvalDepth limits document recursion during evaluation. Defaults to 1000.
	EvalDepth int
	// Debug enables debug logging of query evaluation.
	Debug bool
	// Logger for structured logging. Defaults to slog.Default().
	Logger *slog.Logger

	extensions []functions.Definition
}

// Option configures query compilation.
type Option func(*Options)

// WithStrictErrors switches failures from the tolerant nil-result default to
// explicit *types.Error returns.
func WithStrictErrors(strict bool) Option {
	return func(opts *Options) {
		opts.StrictErrors = strict
	}
}

// WithParseDepth sets the maximum expression nesting depth.
func WithParseDepth(depth int) Option {
	return func(opts *Options) {
		opts.ParseDepth = depth
	}
}

// WithEvalDepth sets the document recursion ceiling for evaluation.
func WithEvalDepth(depth int) Option {
	return func(opts *Options) {
		opts.EvalDepth = depth
	}
}

// WithDebug enables or disables debug logging.
func WithDebug(enabled bool) Option {
	return func(opts *Options) {
		opts.Debug = enabled
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithFunction registers a custom function extension alongside the built-ins
// for queries compiled with this option. Names must be lowercase letters,
// digits and underscores, starting with a letter, and must not collide with
// a built-in.
func WithFunction(name string, params []functions.Kind, result functions.Kind, fn functions.Func) Option {
	return func(opts *Options) {
		opts.extensions = append(opts.extensions, functions.Definition{
			Name:   name,
			Params: params,
			Result: result,
			Fn:     fn,
		})
	}
}

// CompiledQuery is a parsed query bound to an evaluator, reusable across
// documents and safe for concurrent use.
type CompiledQuery struct {
	source string
	query  *types.Query
	eval   *evaluator.Evaluator
	strict bool
}

// Compile parses a query for repeated evaluation.
//
// Under the tolerant default a malformed query yields (nil, nil); the
// returned *CompiledQuery is non-nil only for valid queries.
func Compile(query string, opts ...Option) (*CompiledQuery, error) {
	options := Options{
		ParseDepth: 100,
		EvalDepth:  1000,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	registry := functions.New()
	for _, def := range options.extensions {
		if err := registry.Register(&def); err != nil {
			return nil, failure(err, options.StrictErrors)
		}
	}

	parsed, err := parser.Parse(query,
		parser.WithRegistry(registry),
		parser.WithMaxDepth(options.ParseDepth))
	if err != nil {
		return nil, failure(err, options.StrictErrors)
	}

	eval := evaluator.New(
		evaluator.WithRegistry(registry),
		evaluator.WithMaxDepth(options.EvalDepth),
		evaluator.WithDebug(options.Debug),
		evaluator.WithLogger(options.Logger))

	return &CompiledQuery{
		source: query,
		query:  parsed,
		eval:   eval,
		strict: options.StrictErrors,
	}, nil
}

// MustCompile is like Compile but panics if the query is invalid. It
// simplifies safe initialization of global variables and ignores the
// tolerant default.
func MustCompile(query string, opts ...Option) *CompiledQuery {
	q, err := Compile(query, append(opts, WithStrictErrors(true))...)
	if err != nil {
		panic(fmt.Sprintf("jsonpath: Compile(%q): %v", query, err))
	}
	return q
}

// Parse parses a query and returns its AST without binding an evaluator.
// The AST's String method renders the canonical form of the query.
func Parse(query string, opts ...Option) (*types.Query, error) {
	q, err := Compile(query, opts...)
	if err != nil || q == nil {
		return nil, err
	}
	return q.query, nil
}

// IsValid reports whether a query is lexically, grammatically and
// statically valid.
func IsValid(query string) bool {
	_, err := Compile(query, WithStrictErrors(true))
	return err == nil
}

// Values evaluates a query against a document and returns the selected
// values in evaluation order.
func Values(document any, query string, opts ...Option) ([]any, error) {
	q, err := Compile(query, opts...)
	if err != nil || q == nil {
		return nil, err
	}
	return q.Values(document)
}

// Nodes evaluates a query against a document and returns the selected nodes,
// each pairing a value with its normalized path.
func Nodes(document any, query string, opts ...Option) (types.NodeList, error) {
	q, err := Compile(query, opts...)
	if err != nil || q == nil {
		return nil, err
	}
	return q.Run(document)
}

// Run evaluates the compiled query against a document and returns the
// resulting node list. The only runtime failure is exceeding the document
// recursion ceiling, reported per the query's error mode.
func (q *CompiledQuery) Run(document any) (types.NodeList, error) {
	nodes, err := q.eval.Eval(q.query, document)
	if err != nil {
		return nil, failure(err, q.strict)
	}
	return nodes, nil
}

// Values evaluates the compiled query and returns only the selected values.
func (q *CompiledQuery) Values(document any) ([]any, error) {
	nodes, err := q.Run(document)
	if err != nil {
		return nil, err
	}
	return nodes.Values(), nil
}

// Query returns the parsed AST.
func (q *CompiledQuery) Query() *types.Query {
	return q.query
}

// String returns the canonical rendering of the query, which may differ from
// the source text in whitespace and quoting.
func (q *CompiledQuery) String() string {
	return q.query.String()
}

// Source returns the original query text the handle was compiled from.
func (q *CompiledQuery) Source() string {
	return q.source
}

// failure maps an error to the configured error mode: strict callers get the
// error, tolerant callers get nil.
func failure(err error, strict bool) error {
	if strict {
		return err
	}
	return nil
}

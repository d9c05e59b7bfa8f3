// Package parser implements the RFC 9535 JSONPath query parser.
//
// The parser is a hand-written recursive descent parser over the token
// stream produced by the Lexer. Beyond the grammar it enforces the static
// well-typedness rules of RFC 9535: only singular queries and value-typed
// expressions may appear as comparison operands, and function calls must
// match the arity and argument kinds declared in the function registry.
//
// # Example
//
//	query, err := parser.Parse("$.store.book[?@.price < 10].title")
//	if err != nil {
//	    var qerr *types.Error
//	    if errors.As(err, &qerr) {
//	        fmt.Printf("error %s at offset %d\n", qerr.Code, qerr.Position)
//	    }
//	}
package parser

import (
	"github.com/irvinebroque/jsonpath/pkg/functions"
	"github.com/irvinebroque/jsonpath/pkg/types"
)

// Parse parses a JSONPath query and returns the root AST node.
//
// Any lexical, grammatical or static-type violation yields a *types.Error
// carrying the byte offset of the failure point.
func Parse(query string, opts ...Option) (*types.Query, error) {
	p := NewParser(query, opts...)
	return p.Parse()
}

// Option configures parsing behavior.
type Option func(*Options)

// Options holds parser configuration.
type Options struct {
	// Registry supplies the function contract table used for static
	// argument checking. Defaults to the built-in registry.
	Registry *functions.Registry
	// MaxDepth limits expression nesting depth to prevent stack overflow
	// on hostile inputs. Defaults to 100.
	MaxDepth int
}

// WithRegistry sets the function registry consulted during parsing.
// The same registry must be given to the evaluator so that both layers
// agree on one contract table.
func WithRegistry(reg *functions.Registry) Option {
	return func(opts *Options) {
		opts.Registry = reg
	}
}

// WithMaxDepth sets the maximum expression nesting depth.
func WithMaxDepth(depth int) Option {
	return func(opts *Options) {
		opts.MaxDepth = depth
	}
}

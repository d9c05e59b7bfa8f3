// Package evaluator implements the JSONPath query evaluation engine.
//
// The evaluator walks a parsed AST against an already-decoded JSON value and
// produces an ordered node list: each node pairs a value from the input
// document with its normalized path. Evaluation never mutates the AST or the
// input document, so one Evaluator may be shared across goroutines.
//
// # Example
//
//	eval := evaluator.New()
//	nodes, err := eval.Eval(query, document)
//	for _, n := range nodes {
//	    fmt.Println(n.Path, n.Value)
//	}
//
// # Failure semantics
//
// A well-typed query cannot fail at run time: absent members, out-of-range
// indices and type mismatches inside filters are all normal, representable
// outcomes. The only evaluation error is exceeding the recursion-depth
// ceiling on pathologically nested documents.
package evaluator

import (
	"log/slog"

	"github.com/irvinebroque/jsonpath/pkg/functions"
	"github.com/irvinebroque/jsonpath/pkg/types"
)

// Evaluator evaluates parsed queries against documents.
type Evaluator struct {
	opts     Options
	logger   *slog.Logger
	registry *functions.Registry
}

// Options configures evaluator behavior.
type Options struct {
	// MaxDepth limits document recursion depth during descendant traversal
	// and filter sub-evaluation. Defaults to 1000.
	MaxDepth int
	// Registry supplies the function table used for dispatch. It must be
	// the registry the query was parsed with. Defaults to the built-ins.
	Registry *functions.Registry
	// Debug enables debug logging of segment evaluation.
	Debug bool
	// Logger for structured logging. Defaults to slog.Default().
	Logger *slog.Logger
}

// Option configures an Evaluator.
type Option func(*Options)

// WithMaxDepth sets the recursion-depth ceiling.
func WithMaxDepth(depth int) Option {
	return func(opts *Options) {
		opts.MaxDepth = depth
	}
}

// WithRegistry sets the function registry used for dispatch.
func WithRegistry(reg *functions.Registry) Option {
	return func(opts *Options) {
		opts.Registry = reg
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

// New creates a new Evaluator with default options.
func New(opts ...Option) *Evaluator {
	options := Options{
		MaxDepth: 1000,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Registry == nil {
		options.Registry = functions.New()
	}
	if options.MaxDepth <= 0 {
		options.MaxDepth = 1000
	}

	return &Evaluator{
		opts:     options,
		logger:   options.Logger,
		registry: options.Registry,
	}
}

// Eval evaluates a query against a document and returns the resulting node
// list in evaluation order. The returned error is non-nil only when the
// document's nesting exceeds the configured depth ceiling.
func (e *Evaluator) Eval(query *types.Query, document any) (types.NodeList, error) {
	if query == nil {
		return nil, nil
	}

	r := &run{
		eval: e,
		root: document,
	}

	current := types.NodeList{{Value: document, Path: types.NormalizedPath{}}}
	result, err := r.applySegments(query.Segments, current)
	if err != nil {
		return nil, err
	}
	if e.opts.Debug {
		e.logger.Debug("query evaluated",
			slog.String("query", query.String()),
			slog.Int("nodes", len(result)))
	}
	return result, nil
}

// run carries the per-evaluation state: the root document for "$"-rooted
// sub-queries and the recursion depth counter.
type run struct {
	eval  *Evaluator
	root  any
	depth int
}

// enter charges one level of document recursion against the depth ceiling.
func (r *run) enter() error {
	r.depth++
	if r.depth > r.eval.opts.MaxDepth {
		return types.NewError(types.ErrTooDeep,
			"document nesting exceeds evaluation depth limit", -1)
	}
	return nil
}

func (r *run) leave() {
	r.depth--
}

// applySegments runs the segment state machine: each segment maps the
// current node list to the next one.
func (r *run) applySegments(segments []*types.Segment, current types.NodeList) (types.NodeList, error) {
	var err error
	for _, seg := range segments {
		current, err = r.applySegment(seg, current)
		if err != nil {
			return nil, err
		}
		if len(current) == 0 {
			break
		}
	}
	return current, nil
}

// applySegment applies one segment's selectors to the current node list.
// Selectors are the outer loop and nodes the inner one, so results arrive in
// selector-then-node order. Duplicates across selectors are preserved.
func (r *run) applySegment(seg *types.Segment, current types.NodeList) (types.NodeList, error) {
	candidates := current
	if seg.Descendant {
		var err error
		candidates, err = r.descendants(current)
		if err != nil {
			return nil, err
		}
	}

	var next types.NodeList
	for _, sel := range seg.Selectors {
		for _, node := range candidates {
			var err error
			next, err = r.selectInto(sel, node, next)
			if err != nil {
				return nil, err
			}
		}
	}
	return next, nil
}

// descendants enumerates, for each current node, the node itself and every
// node below it in pre-order (each node before its children, children in
// container order).
func (r *run) descendants(current types.NodeList) (types.NodeList, error) {
	var out types.NodeList
	for _, node := range current {
		var err error
		out, err = r.preorder(node, out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *run) preorder(node types.Node, out types.NodeList) (types.NodeList, error) {
	if err := r.enter(); err != nil {
		return nil, err
	}
	defer r.leave()

	out = append(out, node)
	for _, child := range childNodes(node) {
		var err error
		out, err = r.preorder(child, out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Package types defines the core type system of the query engine.
//
// This package contains:
//   - Query, Segment, Selector and the filter-expression sum types (the AST)
//   - Node and NodeList: evaluation results with normalized paths
//   - NormalizedPath: the canonical bracket-notation location of a node
//   - Nothing: the sentinel for an absent value, distinct from JSON null
//   - OrderedObject: a JSON object that preserves member declaration order
//   - Error types: structured errors with codes and byte offsets
package types

// Nothing is the sentinel type for the special result of a function or
// singular-query lookup that did not resolve to a value. It is distinct from
// JSON null, which is represented by nil.
type Nothing struct{}

// MarshalJSON serializes Nothing as JSON null; it has no JSON counterpart.
func (Nothing) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// Absent is the singleton Nothing value.
var Absent = Nothing{}

// IsNothing reports whether v is the absent-value sentinel.
func IsNothing(v any) bool {
	_, ok := v.(Nothing)
	return ok
}

// Node is a single evaluation result: a value from the input document
// together with the normalized path that locates it. Value references into
// the input document and is never a copy; Path is allocated per node.
type Node struct {
	Value any
	Path  NormalizedPath
}

// NodeList is the ordered result of evaluating a query or sub-query. It may
// contain zero, one or many nodes, possibly with duplicates.
type NodeList []Node

// Values returns the node values in list order.
func (nl NodeList) Values() []any {
	if nl == nil {
		return nil
	}
	values := make([]any, len(nl))
	for i, n := range nl {
		values[i] = n.Value
	}
	return values
}

// Paths returns the formatted normalized paths in list order.
func (nl NodeList) Paths() []string {
	if nl == nil {
		return nil
	}
	paths := make([]string, len(nl))
	for i, n := range nl {
		paths[i] = n.Path.String()
	}
	return paths
}

// OrderedObject is a JSON object that preserves member declaration order.
//
// Documents decoded with encoding/json arrive as map[string]any, which has no
// member order; the evaluator falls back to sorted keys for those so results
// stay deterministic. Callers that need the declared-order semantics of
// RFC 9535 (wildcard and descendant enumeration in member order) build their
// documents with OrderedObject instead.
type OrderedObject struct {
	keys   []string
	values map[string]any
}

// NewOrderedObject creates an empty ordered object.
func NewOrderedObject() *OrderedObject {
	return &OrderedObject{values: make(map[string]any)}
}

// Set adds or replaces a member. Insertion order of first appearance is
// preserved. Returns the object for chaining.
func (o *OrderedObject) Set(key string, value any) *OrderedObject {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
	return o
}

// Get returns the member value for key.
func (o *OrderedObject) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the member names in declaration order. The returned slice is
// shared; callers must not modify it.
func (o *OrderedObject) Keys() []string {
	return o.keys
}

// Len returns the number of members.
func (o *OrderedObject) Len() int {
	return len(o.keys)
}

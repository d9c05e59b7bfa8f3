// Package functions provides the query-function registry.
//
// The registry is the single contract table for function extensions: the
// parser consults it for static checking of names, arity and argument kinds,
// and the evaluator dispatches through the same table at run time. The
// built-in set (length, count, match, search, value) is fixed by the grammar;
// callers can register additional functions with the same declared contracts.
//
// # Example
//
//	reg := functions.New()
//	err := reg.Register(&functions.Definition{
//	    Name:   "upper",
//	    Params: []functions.Kind{functions.ValueKind},
//	    Result: functions.ValueKind,
//	    Fn: func(args []any) any {
//	        s, ok := args[0].(string)
//	        if !ok {
//	            return types.Absent
//	        }
//	        return strings.ToUpper(s)
//	    },
//	})
package functions

import (
	"fmt"
	"unicode/utf16"

	"github.com/irvinebroque/jsonpath/pkg/types"
)

// Kind is the declared type of a function parameter or result in the
// engine's two-level type system.
type Kind uint8

const (
	// ValueKind is a single JSON value or the absent-value sentinel.
	ValueKind Kind = iota + 1
	// LogicalKind is a logical (true/false) result.
	LogicalKind
	// NodesKind is an ordered node list.
	NodesKind
)

// String returns a human-readable kind name for diagnostics.
func (k Kind) String() string {
	switch k {
	case ValueKind:
		return "value"
	case LogicalKind:
		return "logical"
	case NodesKind:
		return "nodes"
	default:
		return "unknown"
	}
}

// Func executes a function. Arguments arrive pre-evaluated and match the
// declared parameter kinds: ValueKind arguments are JSON values or
// types.Absent, LogicalKind arguments are bool, NodesKind arguments are
// types.NodeList. Implementations never return errors; an argument outside
// the function's domain yields types.Absent (value results) or false
// (logical results).
type Func func(args []any) any

// Definition declares a function's contract and implementation.
type Definition struct {
	Name   string
	Params []Kind
	Result Kind
	Fn     Func
}

// Registry maps function names to definitions. A Registry is immutable after
// the last Register call and safe for concurrent lookups.
type Registry struct {
	defs map[string]*Definition
}

// New creates a registry pre-populated with the built-in functions.
func New() *Registry {
	r := &Registry{defs: make(map[string]*Definition, 8)}
	for _, def := range builtins() {
		r.defs[def.Name] = def
	}
	return r
}

// Lookup returns the definition for name.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// Register adds a function definition. Built-in names cannot be replaced.
func (r *Registry) Register(def *Definition) error {
	if def == nil || def.Name == "" || def.Fn == nil {
		return fmt.Errorf("functions: incomplete definition")
	}
	if !validName(def.Name) {
		return fmt.Errorf("functions: invalid function name %q", def.Name)
	}
	if def.Result < ValueKind || def.Result > NodesKind {
		return fmt.Errorf("functions: %s: invalid result kind", def.Name)
	}
	if isBuiltin(def.Name) {
		return fmt.Errorf("functions: cannot replace built-in %q", def.Name)
	}
	if _, exists := r.defs[def.Name]; exists {
		return fmt.Errorf("functions: %q is already registered", def.Name)
	}
	r.defs[def.Name] = def
	return nil
}

// validName enforces the grammar's function-name form:
// lowercase letter followed by lowercase letters, digits or underscores.
func validName(name string) bool {
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
		case i > 0 && (c == '_' || c >= '0' && c <= '9'):
		default:
			return false
		}
	}
	return len(name) > 0
}

func isBuiltin(name string) bool {
	switch name {
	case "length", "count", "match", "search", "value":
		return true
	default:
		return false
	}
}

// builtins returns the fixed built-in function table.
func builtins() []*Definition {
	return []*Definition{
		{
			Name:   "length",
			Params: []Kind{ValueKind},
			Result: ValueKind,
			Fn:     lengthFunc,
		},
		{
			Name:   "count",
			Params: []Kind{NodesKind},
			Result: ValueKind,
			Fn:     countFunc,
		},
		{
			Name:   "match",
			Params: []Kind{ValueKind, ValueKind},
			Result: LogicalKind,
			Fn: func(args []any) any {
				return regexFunc(args, true)
			},
		},
		{
			Name:   "search",
			Params: []Kind{ValueKind, ValueKind},
			Result: LogicalKind,
			Fn: func(args []any) any {
				return regexFunc(args, false)
			},
		},
		{
			Name:   "value",
			Params: []Kind{NodesKind},
			Result: ValueKind,
			Fn:     valueFunc,
		},
	}
}

// lengthFunc returns the UTF-16 code unit count of a string, the element
// count of an array, or the member count of an object; anything else is
// absent.
func lengthFunc(args []any) any {
	switch v := args[0].(type) {
	case string:
		return float64(len(utf16.Encode([]rune(v))))
	case []any:
		return float64(len(v))
	case map[string]any:
		return float64(len(v))
	case *types.OrderedObject:
		return float64(v.Len())
	default:
		return types.Absent
	}
}

// countFunc returns the size of a node list; never absent.
func countFunc(args []any) any {
	nl, _ := args[0].(types.NodeList)
	return float64(len(nl))
}

// valueFunc returns the single value of a one-node list, else absent.
func valueFunc(args []any) any {
	nl, _ := args[0].(types.NodeList)
	if len(nl) == 1 {
		return nl[0].Value
	}
	return types.Absent
}

// regexFunc implements match (whole-string anchored) and search (substring).
// A non-string operand or a pattern outside the supported dialect yields
// false, never an error.
func regexFunc(args []any, anchored bool) any {
	s, ok := args[0].(string)
	if !ok {
		return false
	}
	pattern, ok := args[1].(string)
	if !ok {
		return false
	}
	re, err := compileRegexp(pattern, anchored)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

// Package ext provides optional query-function extensions beyond the
// built-in set.
//
// The built-ins (length, count, match, search, value) are fixed; everything
// here rides the same registration mechanism available to callers. Register
// the pack on a fresh registry, or cherry-pick individual definitions:
//
//	reg := functions.New()
//	if err := ext.RegisterAll(reg); err != nil {
//	    ...
//	}
//	query, err := parser.Parse("$[?starts_with(@.name, 'go')]",
//	    parser.WithRegistry(reg))
package ext

import (
	"strings"

	"github.com/irvinebroque/jsonpath/pkg/functions"
	"github.com/irvinebroque/jsonpath/pkg/types"
)

// Definitions returns the extension function pack. The returned definitions
// are freshly allocated; callers may register them on any registry.
func Definitions() []*functions.Definition {
	return []*functions.Definition{
		{
			Name:   "starts_with",
			Params: []functions.Kind{functions.ValueKind, functions.ValueKind},
			Result: functions.LogicalKind,
			Fn:     stringPair(strings.HasPrefix),
		},
		{
			Name:   "ends_with",
			Params: []functions.Kind{functions.ValueKind, functions.ValueKind},
			Result: functions.LogicalKind,
			Fn:     stringPair(strings.HasSuffix),
		},
		{
			Name:   "contains",
			Params: []functions.Kind{functions.ValueKind, functions.ValueKind},
			Result: functions.LogicalKind,
			Fn:     stringPair(strings.Contains),
		},
		{
			Name:   "min",
			Params: []functions.Kind{functions.NodesKind},
			Result: functions.ValueKind,
			Fn:     pickFunc(func(candidate, best float64) bool { return candidate < best }),
		},
		{
			Name:   "max",
			Params: []functions.Kind{functions.NodesKind},
			Result: functions.ValueKind,
			Fn:     pickFunc(func(candidate, best float64) bool { return candidate > best }),
		},
	}
}

// RegisterAll registers the whole pack on reg.
func RegisterAll(reg *functions.Registry) error {
	for _, def := range Definitions() {
		if err := reg.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// stringPair adapts a two-string predicate to the function calling
// convention: non-string operands yield false.
func stringPair(pred func(a, b string) bool) functions.Func {
	return func(args []any) any {
		a, ok := args[0].(string)
		if !ok {
			return false
		}
		b, ok := args[1].(string)
		if !ok {
			return false
		}
		return pred(a, b)
	}
}

// pickFunc reduces a node list of numbers to a single value. Non-numeric
// nodes are skipped; an empty or number-free list yields the absent value.
func pickFunc(better func(candidate, best float64) bool) functions.Func {
	return func(args []any) any {
		nl, _ := args[0].(types.NodeList)
		var best float64
		found := false
		for _, n := range nl {
			f, ok := toNumber(n.Value)
			if !ok {
				continue
			}
			if !found || better(f, best) {
				best = f
				found = true
			}
		}
		if !found {
			return types.Absent
		}
		return best
	}
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

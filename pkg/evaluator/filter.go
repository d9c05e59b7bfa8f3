package evaluator

import (
	"github.com/irvinebroque/jsonpath/pkg/functions"
	"github.com/irvinebroque/jsonpath/pkg/types"
)

// evalLogical evaluates a filter expression with "@" bound to current and
// "$" bound to the evaluation's root document.
func (r *run) evalLogical(expr types.LogicalExpr, current any) (bool, error) {
	switch e := expr.(type) {
	case types.OrExpr:
		for _, op := range e.Operands {
			ok, err := r.evalLogical(op, current)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil

	case types.AndExpr:
		for _, op := range e.Operands {
			ok, err := r.evalLogical(op, current)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil

	case types.NotExpr:
		ok, err := r.evalLogical(e.Expr, current)
		if err != nil {
			return false, err
		}
		return !ok, nil

	case types.ComparisonExpr:
		left, err := r.evalComparable(e.Left, current)
		if err != nil {
			return false, err
		}
		right, err := r.evalComparable(e.Right, current)
		if err != nil {
			return false, err
		}
		return compare(e.Op, left, right), nil

	case types.TestExpr:
		nodes, err := r.evalSubQuery(e.Query, current)
		if err != nil {
			return false, err
		}
		return len(nodes) > 0, nil

	case *types.FunctionExpr:
		result, err := r.evalFunction(e, current)
		if err != nil {
			return false, err
		}
		// A logical function yields bool; a nodes function tests non-empty.
		switch v := result.(type) {
		case bool:
			return v, nil
		case types.NodeList:
			return len(v) > 0, nil
		default:
			return false, nil
		}

	default:
		return false, nil
	}
}

// evalComparable resolves a comparison operand to a value, or types.Absent
// when a singular query selects nothing or a function signals Nothing.
func (r *run) evalComparable(c types.Comparable, current any) (any, error) {
	switch v := c.(type) {
	case types.Literal:
		return v.Value, nil

	case types.SingularQuery:
		nodes, err := r.evalSubQuery(v.Query, current)
		if err != nil {
			return nil, err
		}
		if len(nodes) == 0 {
			return types.Absent, nil
		}
		return nodes[0].Value, nil

	case *types.FunctionExpr:
		return r.evalFunction(v, current)

	default:
		return types.Absent, nil
	}
}

// evalSubQuery evaluates a query embedded in a filter expression.
func (r *run) evalSubQuery(query *types.Query, current any) (types.NodeList, error) {
	if err := r.enter(); err != nil {
		return nil, err
	}
	defer r.leave()

	start := r.root
	if query.RootIsCurrent {
		start = current
	}
	input := types.NodeList{{Value: start, Path: types.NormalizedPath{}}}
	return r.applySegments(query.Segments, input)
}

// evalFunction resolves the arguments declared by the registry entry and
// dispatches to its implementation.
func (r *run) evalFunction(fe *types.FunctionExpr, current any) (any, error) {
	def, ok := r.eval.registry.Lookup(fe.Name)
	if !ok {
		// Unreachable for queries parsed against the same registry.
		return types.Absent, nil
	}

	args := make([]any, len(fe.Args))
	for i, arg := range fe.Args {
		kind := def.Params[i]
		switch a := arg.(type) {
		case types.Literal:
			args[i] = a.Value

		case types.QueryArg:
			nodes, err := r.evalSubQuery(a.Query, current)
			if err != nil {
				return nil, err
			}
			args[i] = resolveQueryArg(kind, nodes)

		case types.LogicalArg:
			ok, err := r.evalLogical(a.Expr, current)
			if err != nil {
				return nil, err
			}
			args[i] = ok

		case *types.FunctionExpr:
			v, err := r.evalFunction(a, current)
			if err != nil {
				return nil, err
			}
			args[i] = v

		default:
			args[i] = types.Absent
		}
	}

	return def.Fn(args), nil
}

// resolveQueryArg converts a query's node list to the declared parameter
// kind: the list itself for nodes parameters, the single value (or Nothing)
// for value parameters, and an existence test for logical parameters.
func resolveQueryArg(kind functions.Kind, nodes types.NodeList) any {
	switch kind {
	case functions.NodesKind:
		return nodes
	case functions.ValueKind:
		if len(nodes) == 1 {
			return nodes[0].Value
		}
		return types.Absent
	case functions.LogicalKind:
		return len(nodes) > 0
	default:
		return types.Absent
	}
}

// compare applies a comparison operator under the RFC 9535 type rules.
func compare(op types.CompareOp, left, right any) bool {
	switch op {
	case types.CompareEq:
		return valueEqual(left, right)
	case types.CompareNe:
		return !valueEqual(left, right)
	case types.CompareLt:
		return lessThan(left, right)
	case types.CompareLe:
		return lessThan(left, right) || valueEqual(left, right)
	case types.CompareGt:
		return lessThan(right, left)
	case types.CompareGe:
		return lessThan(right, left) || valueEqual(left, right)
	default:
		return false
	}
}

// valueEqual implements "==": Nothing equals only Nothing, null equals only
// null, numbers compare numerically, and containers compare by deep
// equality. Cross-type operands are unequal, never an error.
func valueEqual(left, right any) bool {
	leftAbsent := types.IsNothing(left)
	rightAbsent := types.IsNothing(right)
	if leftAbsent || rightAbsent {
		return leftAbsent && rightAbsent
	}

	if left == nil || right == nil {
		return left == nil && right == nil
	}

	if lf, ok := toFloat(left); ok {
		rf, rok := toFloat(right)
		return rok && lf == rf
	}

	switch lv := left.(type) {
	case string:
		rv, ok := right.(string)
		return ok && lv == rv
	case bool:
		rv, ok := right.(bool)
		return ok && lv == rv
	case []any:
		rv, ok := right.([]any)
		if !ok || len(lv) != len(rv) {
			return false
		}
		for i := range lv {
			if !valueEqual(lv[i], rv[i]) {
				return false
			}
		}
		return true
	default:
		return objectEqual(left, right)
	}
}

// objectEqual deep-compares two objects in either representation.
func objectEqual(left, right any) bool {
	leftKeys, ok := objectKeys(left)
	if !ok {
		return false
	}
	rightKeys, ok := objectKeys(right)
	if !ok || len(leftKeys) != len(rightKeys) {
		return false
	}
	for _, key := range leftKeys {
		lv, _ := objectMember(left, key)
		rv, found := objectMember(right, key)
		if !found || !valueEqual(lv, rv) {
			return false
		}
	}
	return true
}

// objectKeys returns an object's member names; order is irrelevant to
// equality.
func objectKeys(value any) ([]string, bool) {
	switch v := value.(type) {
	case *types.OrderedObject:
		return v.Keys(), true
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		return keys, true
	default:
		return nil, false
	}
}

// lessThan implements "<": defined only between two numbers or two strings
// (code point order); every other pairing, including Nothing, is false.
func lessThan(left, right any) bool {
	if types.IsNothing(left) || types.IsNothing(right) {
		return false
	}
	if lf, ok := toFloat(left); ok {
		rf, rok := toFloat(right)
		return rok && lf < rf
	}
	if ls, ok := left.(string); ok {
		rs, rok := right.(string)
		return rok && ls < rs
	}
	return false
}

// toFloat normalizes the numeric types a decoded document may carry.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

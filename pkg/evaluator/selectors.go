package evaluator

import (
	"sort"

	"github.com/irvinebroque/jsonpath/pkg/types"
)

// selectInto applies one selector to one node, appending any selected
// children to out.
func (r *run) selectInto(sel types.Selector, node types.Node, out types.NodeList) (types.NodeList, error) {
	switch s := sel.(type) {
	case types.NameSelector:
		if v, ok := objectMember(node.Value, s.Name); ok {
			out = append(out, types.Node{
				Value: v,
				Path:  node.Path.Child(types.NameStep(s.Name)),
			})
		}
		return out, nil

	case types.WildcardSelector:
		return append(out, childNodes(node)...), nil

	case types.IndexSelector:
		arr, ok := node.Value.([]any)
		if !ok {
			return out, nil
		}
		i := s.Index
		if i < 0 {
			i += len(arr)
		}
		if i < 0 || i >= len(arr) {
			return out, nil
		}
		return append(out, types.Node{
			Value: arr[i],
			Path:  node.Path.Child(types.IndexStep(i)),
		}), nil

	case types.SliceSelector:
		arr, ok := node.Value.([]any)
		if !ok {
			return out, nil
		}
		for _, i := range sliceIndices(s, len(arr)) {
			out = append(out, types.Node{
				Value: arr[i],
				Path:  node.Path.Child(types.IndexStep(i)),
			})
		}
		return out, nil

	case types.FilterSelector:
		for _, child := range childNodes(node) {
			keep, err := r.evalLogical(s.Expr, child.Value)
			if err != nil {
				return nil, err
			}
			if keep {
				out = append(out, child)
			}
		}
		return out, nil

	default:
		return out, nil
	}
}

// childNodes returns a node's immediate children: object members in declared
// order (sorted for plain maps, which carry no order), array elements in
// index order, nothing for primitives.
func childNodes(node types.Node) types.NodeList {
	switch v := node.Value.(type) {
	case *types.OrderedObject:
		children := make(types.NodeList, 0, v.Len())
		for _, key := range v.Keys() {
			value, _ := v.Get(key)
			children = append(children, types.Node{
				Value: value,
				Path:  node.Path.Child(types.NameStep(key)),
			})
		}
		return children

	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		children := make(types.NodeList, 0, len(v))
		for _, key := range keys {
			children = append(children, types.Node{
				Value: v[key],
				Path:  node.Path.Child(types.NameStep(key)),
			})
		}
		return children

	case []any:
		children := make(types.NodeList, 0, len(v))
		for i, elem := range v {
			children = append(children, types.Node{
				Value: elem,
				Path:  node.Path.Child(types.IndexStep(i)),
			})
		}
		return children

	default:
		return nil
	}
}

// objectMember looks up a member by exact key in either object
// representation.
func objectMember(value any, key string) (any, bool) {
	switch v := value.(type) {
	case *types.OrderedObject:
		return v.Get(key)
	case map[string]any:
		member, ok := v[key]
		return member, ok
	default:
		return nil, false
	}
}

// sliceIndices computes the element indices a slice selector visits, per the
// RFC 9535 bounds algorithm. Defaults follow step direction; a zero step
// selects nothing.
func sliceIndices(s types.SliceSelector, length int) []int {
	step := 1
	if s.Step != nil {
		step = *s.Step
	}
	if step == 0 || length == 0 {
		return nil
	}

	var start, end int
	if step > 0 {
		start, end = 0, length
	} else {
		start, end = length-1, -length-1
	}
	if s.Start != nil {
		start = normalizeSliceIndex(*s.Start, length)
	}
	if s.End != nil {
		end = normalizeSliceIndex(*s.End, length)
	}

	var lower, upper int
	if step > 0 {
		lower = clamp(start, 0, length)
		upper = clamp(end, 0, length)
	} else {
		upper = clamp(start, -1, length-1)
		lower = clamp(end, -1, length-1)
	}

	var indices []int
	if step > 0 {
		for i := lower; i < upper; i += step {
			indices = append(indices, i)
		}
	} else {
		for i := upper; i > lower; i += step {
			indices = append(indices, i)
		}
	}
	return indices
}

func normalizeSliceIndex(i, length int) int {
	if i < 0 {
		return length + i
	}
	return i
}

func clamp(i, lo, hi int) int {
	if i < lo {
		return lo
	}
	if i > hi {
		return hi
	}
	return i
}

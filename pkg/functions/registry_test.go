package functions_test

import (
	"testing"

	"github.com/irvinebroque/jsonpath/pkg/functions"
	"github.com/irvinebroque/jsonpath/pkg/types"
)

func call(t *testing.T, reg *functions.Registry, name string, args ...any) any {
	t.Helper()
	def, ok := reg.Lookup(name)
	if !ok {
		t.Fatalf("Lookup(%q) failed", name)
	}
	return def.Fn(args)
}

func TestLengthFunc(t *testing.T) {
	reg := functions.New()

	tests := []struct {
		name     string
		arg      any
		expected any
	}{
		{"ascii string", "hello", 5.0},
		{"empty string", "", 0.0},
		{"multibyte string counts utf16 units", "héllo", 5.0},
		{"astral rune counts two units", "𝄞", 2.0},
		{"mixed astral", "a𝄞b", 4.0},
		{"array", []any{1.0, 2.0, 3.0}, 3.0},
		{"empty array", []any{}, 0.0},
		{"object", map[string]any{"a": 1.0, "b": 2.0}, 2.0},
		{"ordered object", types.NewOrderedObject().Set("a", 1.0), 1.0},
		{"number is absent", 42.0, types.Absent},
		{"null is absent", nil, types.Absent},
		{"boolean is absent", true, types.Absent},
		{"nothing propagates as absent", types.Absent, types.Absent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := call(t, reg, "length", tt.arg); got != tt.expected {
				t.Errorf("length(%v) = %v, want %v", tt.arg, got, tt.expected)
			}
		})
	}
}

func TestCountFunc(t *testing.T) {
	reg := functions.New()

	if got := call(t, reg, "count", types.NodeList{}); got != 0.0 {
		t.Errorf("count(empty) = %v", got)
	}
	nl := types.NodeList{{Value: 1.0}, {Value: 2.0}}
	if got := call(t, reg, "count", nl); got != 2.0 {
		t.Errorf("count(two nodes) = %v", got)
	}
}

func TestValueFunc(t *testing.T) {
	reg := functions.New()

	single := types.NodeList{{Value: "x"}}
	if got := call(t, reg, "value", single); got != "x" {
		t.Errorf("value(single) = %v", got)
	}
	if got := call(t, reg, "value", types.NodeList{}); !types.IsNothing(got) {
		t.Errorf("value(empty) = %v, want Nothing", got)
	}
	two := types.NodeList{{Value: 1.0}, {Value: 2.0}}
	if got := call(t, reg, "value", two); !types.IsNothing(got) {
		t.Errorf("value(two nodes) = %v, want Nothing", got)
	}
}

func TestMatchAndSearch(t *testing.T) {
	reg := functions.New()

	tests := []struct {
		name    string
		fn      string
		subject any
		pattern any
		want    bool
	}{
		{"match whole string", "match", "1974-05-11", `19[7-9][0-9]-05-..`, true},
		{"match rejects partial", "match", "a1b", `[0-9]`, false},
		{"match empty pattern empty subject", "match", "", "", true},
		{"search finds substring", "search", "a1b", `[0-9]`, true},
		{"search misses", "search", "abc", `[0-9]`, false},
		{"dot excludes newline", "match", "a\nb", "a.b", false},
		{"dot excludes carriage return", "match", "a\rb", "a.b", false},
		{"dot matches other characters", "match", "axb", "a.b", true},
		{"escaped dot stays literal", "match", "axb", `a\.b`, false},
		{"escaped dot matches dot", "match", "a.b", `a\.b`, true},
		{"dot in class stays literal", "match", "a.b", "a[.]b", true},
		{"dot in class rejects others", "match", "axb", "a[.]b", false},
		{"non-string subject", "match", 5.0, "5", false},
		{"non-string pattern", "search", "abc", 1.0, false},
		{"invalid pattern is false", "match", "abc", "a(", false},
		{"anchored pattern with alternation", "match", "cat", "cat|dog", true},
		{"alternation does not leak anchors", "match", "xcat", "cat|dog", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := call(t, reg, tt.fn, tt.subject, tt.pattern)
			if got != tt.want {
				t.Errorf("%s(%v, %v) = %v, want %v", tt.fn, tt.subject, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestRegister(t *testing.T) {
	reg := functions.New()

	ok := &functions.Definition{
		Name:   "min_len",
		Params: []functions.Kind{functions.ValueKind, functions.ValueKind},
		Result: functions.LogicalKind,
		Fn:     func(args []any) any { return false },
	}
	if err := reg.Register(ok); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, found := reg.Lookup("min_len"); !found {
		t.Fatal("registered function not found")
	}

	bad := []struct {
		name string
		def  *functions.Definition
	}{
		{"nil definition", nil},
		{"missing fn", &functions.Definition{Name: "x", Result: functions.ValueKind}},
		{"uppercase name", &functions.Definition{Name: "Upper", Result: functions.ValueKind, Fn: ok.Fn}},
		{"leading digit", &functions.Definition{Name: "1st", Result: functions.ValueKind, Fn: ok.Fn}},
		{"leading underscore", &functions.Definition{Name: "_x", Result: functions.ValueKind, Fn: ok.Fn}},
		{"empty name", &functions.Definition{Name: "", Result: functions.ValueKind, Fn: ok.Fn}},
		{"invalid result kind", &functions.Definition{Name: "x", Fn: ok.Fn}},
		{"builtin collision", &functions.Definition{Name: "length", Result: functions.ValueKind, Fn: ok.Fn}},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			if err := reg.Register(tt.def); err == nil {
				t.Errorf("Register(%+v) succeeded, want error", tt.def)
			}
		})
	}

	// Registries are independent: the extension must not leak into a new one.
	if _, found := functions.New().Lookup("min_len"); found {
		t.Error("extension leaked into a fresh registry")
	}
}

func TestKindString(t *testing.T) {
	pairs := map[functions.Kind]string{
		functions.ValueKind:   "value",
		functions.LogicalKind: "logical",
		functions.NodesKind:   "nodes",
		functions.Kind(0):     "unknown",
	}
	for k, want := range pairs {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

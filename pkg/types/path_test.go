package types_test

import (
	"testing"

	"github.com/irvinebroque/jsonpath/pkg/types"
)

func TestNormalizedPathString(t *testing.T) {
	tests := []struct {
		name     string
		path     types.NormalizedPath
		expected string
	}{
		{
			name:     "root only",
			path:     types.NormalizedPath{},
			expected: "$",
		},
		{
			name:     "single name",
			path:     types.NormalizedPath{types.NameStep("a")},
			expected: "$['a']",
		},
		{
			name:     "name and index",
			path:     types.NormalizedPath{types.NameStep("store"), types.NameStep("book"), types.IndexStep(0)},
			expected: "$['store']['book'][0]",
		},
		{
			name:     "single quote escaped",
			path:     types.NormalizedPath{types.NameStep("it's")},
			expected: `$['it\'s']`,
		},
		{
			name:     "double quote literal",
			path:     types.NormalizedPath{types.NameStep(`say "hi"`)},
			expected: `$['say "hi"']`,
		},
		{
			name:     "backslash escaped",
			path:     types.NormalizedPath{types.NameStep(`a\b`)},
			expected: `$['a\\b']`,
		},
		{
			name:     "shorthand control escapes",
			path:     types.NormalizedPath{types.NameStep("a\nb\tc")},
			expected: `$['a\nb\tc']`,
		},
		{
			name:     "other control characters use lowercase hex",
			path:     types.NormalizedPath{types.NameStep("\x00\x1f")},
			expected: `$['\u0000\u001f']`,
		},
		{
			name:     "non-ascii stays literal",
			path:     types.NormalizedPath{types.NameStep("héllo☺")},
			expected: "$['héllo☺']",
		},
		{
			name:     "index zero",
			path:     types.NormalizedPath{types.IndexStep(0)},
			expected: "$[0]",
		},
		{
			name:     "empty member name",
			path:     types.NormalizedPath{types.NameStep("")},
			expected: "$['']",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.path.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

// Sibling nodes extend the same parent path; neither extension may clobber
// the other through a shared backing array.
func TestNormalizedPathChildNoAliasing(t *testing.T) {
	parent := types.NormalizedPath{}.Child(types.NameStep("store"))

	left := parent.Child(types.NameStep("book"))
	right := parent.Child(types.NameStep("bicycle"))

	if got := left.String(); got != "$['store']['book']" {
		t.Errorf("left = %q", got)
	}
	if got := right.String(); got != "$['store']['bicycle']" {
		t.Errorf("right = %q", got)
	}
	if got := parent.String(); got != "$['store']" {
		t.Errorf("parent modified: %q", got)
	}
}

func TestPathStepAccessors(t *testing.T) {
	name := types.NameStep("a")
	if name.IsIndex() {
		t.Error("NameStep reported as index")
	}
	if name.Name() != "a" {
		t.Errorf("Name() = %q", name.Name())
	}

	idx := types.IndexStep(3)
	if !idx.IsIndex() {
		t.Error("IndexStep not reported as index")
	}
	if idx.Index() != 3 {
		t.Errorf("Index() = %d", idx.Index())
	}
}

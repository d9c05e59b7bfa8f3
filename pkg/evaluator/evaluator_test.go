package evaluator_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/irvinebroque/jsonpath/pkg/evaluator"
	"github.com/irvinebroque/jsonpath/pkg/parser"
	"github.com/irvinebroque/jsonpath/pkg/types"
)

const storeJSON = `{
  "store": {
    "book": [
      {"category": "reference", "author": "Nigel Rees", "title": "Sayings of the Century", "price": 8.95},
      {"category": "fiction", "author": "Evelyn Waugh", "title": "Sword of Honour", "price": 12.99},
      {"category": "fiction", "author": "Herman Melville", "title": "Moby Dick", "isbn": "0-553-21311-3", "price": 8.99},
      {"category": "fiction", "author": "J. R. R. Tolkien", "title": "The Lord of the Rings", "isbn": "0-395-19395-8", "price": 22.99}
    ],
    "bicycle": {"color": "red", "price": 399}
  }
}`

func storeDoc(t *testing.T) any {
	t.Helper()
	var doc any
	if err := json.Unmarshal([]byte(storeJSON), &doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	return doc
}

func mustEval(t *testing.T, queryText string, doc any) types.NodeList {
	t.Helper()
	query, err := parser.Parse(queryText)
	if err != nil {
		t.Fatalf("Parse(%q): %v", queryText, err)
	}
	nodes, err := evaluator.New().Eval(query, doc)
	if err != nil {
		t.Fatalf("Eval(%q): %v", queryText, err)
	}
	return nodes
}

func TestEvalValues(t *testing.T) {
	doc := storeDoc(t)

	tests := []struct {
		name     string
		query    string
		expected []any
	}{
		{
			name:     "root identity",
			query:    "$",
			expected: []any{doc},
		},
		{
			name:     "name chain",
			query:    "$.store.bicycle.color",
			expected: []any{"red"},
		},
		{
			name:     "missing member selects nothing",
			query:    "$.store.motorcycle",
			expected: nil,
		},
		{
			name:     "name on array selects nothing",
			query:    "$.store.book.title",
			expected: nil,
		},
		{
			name:     "index",
			query:    "$.store.book[0].title",
			expected: []any{"Sayings of the Century"},
		},
		{
			name:     "negative index",
			query:    "$.store.book[-1].title",
			expected: []any{"The Lord of the Rings"},
		},
		{
			name:     "index out of range",
			query:    "$.store.book[4]",
			expected: nil,
		},
		{
			name:     "negative index out of range",
			query:    "$.store.book[-5]",
			expected: nil,
		},
		{
			name:     "index on object selects nothing",
			query:    "$.store[0]",
			expected: nil,
		},
		{
			name:     "wildcard over object sorts plain map keys",
			query:    "$.store.bicycle.*",
			expected: []any{"red", float64(399)},
		},
		{
			name:     "wildcard over array keeps element order",
			query:    "$.store.book[*].price",
			expected: []any{8.95, 12.99, 8.99, 22.99},
		},
		{
			name:     "wildcard on primitive selects nothing",
			query:    "$.store.bicycle.color.*",
			expected: nil,
		},
		{
			name:     "multiple selectors concatenate",
			query:    "$.store.book[1,0]['title']",
			expected: []any{"Sword of Honour", "Sayings of the Century"},
		},
		{
			name:     "duplicate selectors preserved",
			query:    "$.store.book[0,0].price",
			expected: []any{8.95, 8.95},
		},
		{
			name:     "slice",
			query:    "$.store.book[1:3].price",
			expected: []any{12.99, 8.99},
		},
		{
			name:     "slice defaults",
			query:    "$.store.book[:].price",
			expected: []any{8.95, 12.99, 8.99, 22.99},
		},
		{
			name:     "slice negative start",
			query:    "$.store.book[-2:].price",
			expected: []any{8.99, 22.99},
		},
		{
			name:     "slice step two",
			query:    "$.store.book[::2].price",
			expected: []any{8.95, 8.99},
		},
		{
			name:     "slice reversed",
			query:    "$.store.book[::-1].price",
			expected: []any{22.99, 8.99, 12.99, 8.95},
		},
		{
			name:     "slice reversed window",
			query:    "$.store.book[2:0:-1].price",
			expected: []any{8.99, 12.99},
		},
		{
			name:     "slice step zero selects nothing",
			query:    "$.store.book[::0]",
			expected: nil,
		},
		{
			name:     "slice bounds clamped",
			query:    "$.store.book[1:100].price",
			expected: []any{12.99, 8.99, 22.99},
		},
		{
			name:     "slice on object selects nothing",
			query:    "$.store[0:2]",
			expected: nil,
		},
		{
			name:     "descendant name",
			query:    "$..price",
			expected: []any{float64(399), 8.95, 12.99, 8.99, 22.99},
		},
		{
			name:     "descendant from subtree",
			query:    "$.store.book..author",
			expected: []any{"Nigel Rees", "Evelyn Waugh", "Herman Melville", "J. R. R. Tolkien"},
		},
		{
			name:     "descendant index",
			query:    "$..book[2].title",
			expected: []any{"Moby Dick"},
		},
		{
			name:     "filter comparison",
			query:    "$.store.book[?@.price < 10].title",
			expected: []any{"Sayings of the Century", "Moby Dick"},
		},
		{
			name:     "filter existence",
			query:    "$.store.book[?@.isbn].title",
			expected: []any{"Moby Dick", "The Lord of the Rings"},
		},
		{
			name:     "filter negated existence",
			query:    "$.store.book[?!@.isbn].title",
			expected: []any{"Sayings of the Century", "Sword of Honour"},
		},
		{
			name:     "filter conjunction",
			query:    `$.store.book[?@.category == "fiction" && @.price < 10].title`,
			expected: []any{"Moby Dick"},
		},
		{
			name:     "filter disjunction",
			query:    `$.store.book[?@.price == 8.95 || @.price == 22.99].title`,
			expected: []any{"Sayings of the Century", "The Lord of the Rings"},
		},
		{
			name:     "filter string comparison",
			query:    `$.store.book[?@.author > "H"].title`,
			expected: []any{"Sayings of the Century", "Moby Dick", "The Lord of the Rings"},
		},
		{
			name:     "filter with root query",
			query:    "$.store.book[?@.price < $.store.bicycle.price].title",
			expected: []any{"Sayings of the Century", "Sword of Honour", "Moby Dick", "The Lord of the Rings"},
		},
		{
			name:     "filter on object wildcards children",
			query:    "$.store[?@.color == 'red'].price",
			expected: []any{float64(399)},
		},
		{
			name:     "filter cross-type comparison is false",
			query:    `$.store.book[?@.price < "10"]`,
			expected: nil,
		},
		{
			name:     "filter null only equals null",
			query:    "$.store.book[?@.isbn == null]",
			expected: nil,
		},
		{
			name:     "filter missing equals missing",
			query:    "$.store.book[?@.missing == @.alsomissing].category",
			expected: []any{"reference", "fiction", "fiction", "fiction"},
		},
		{
			name:     "filter missing not less than number",
			query:    "$.store.book[?@.missing < 100]",
			expected: nil,
		},
		{
			name:     "filter function length",
			query:    "$.store.book[?length(@.title) == 9].title",
			expected: []any{"Moby Dick"},
		},
		{
			name:     "filter function count",
			query:    "$.store.book[?count(@.*) == 4].title",
			expected: []any{"Sayings of the Century", "Sword of Honour"},
		},
		{
			name:     "filter function match",
			query:    `$.store.book[?match(@.category, "fic.*")].price`,
			expected: []any{12.99, 8.99, 22.99},
		},
		{
			name:     "filter function search",
			query:    `$.store.book[?search(@.title, "of")].price`,
			expected: []any{8.95, 12.99, 22.99},
		},
		{
			name:     "filter function value",
			query:    "$.store.book[?value(@..isbn) == '0-553-21311-3'].title",
			expected: []any{"Moby Dick"},
		},
		{
			name:     "filter after descendant segment",
			query:    "$..book[?@.price > 20].title",
			expected: []any{"The Lord of the Rings"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustEval(t, tt.query, doc).Values()
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("eval(%q) = %#v, want %#v", tt.query, got, tt.expected)
			}
		})
	}
}

func TestEvalPaths(t *testing.T) {
	doc := storeDoc(t)

	tests := []struct {
		query    string
		expected []string
	}{
		{"$", []string{"$"}},
		{"$.store.bicycle.color", []string{"$['store']['bicycle']['color']"}},
		{"$.store.book[-1].title", []string{"$['store']['book'][3]['title']"}},
		{"$.store.book[::-1]", []string{
			"$['store']['book'][3]",
			"$['store']['book'][2]",
			"$['store']['book'][1]",
			"$['store']['book'][0]",
		}},
		{"$..isbn", []string{
			"$['store']['book'][2]['isbn']",
			"$['store']['book'][3]['isbn']",
		}},
	}

	for _, tt := range tests {
		got := mustEval(t, tt.query, doc).Paths()
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("paths(%q) = %v, want %v", tt.query, got, tt.expected)
		}
	}
}

// Normalized paths are themselves valid singular queries that re-select the
// same node.
func TestEvalPathRoundTrip(t *testing.T) {
	doc := storeDoc(t)

	for _, node := range mustEval(t, "$..*", doc) {
		back := mustEval(t, node.Path.String(), doc)
		if len(back) != 1 {
			t.Fatalf("path %s selected %d nodes", node.Path, len(back))
		}
		if !reflect.DeepEqual(back[0].Value, node.Value) {
			t.Errorf("path %s re-selected a different value", node.Path)
		}
		if back[0].Path.String() != node.Path.String() {
			t.Errorf("path %s round-tripped to %s", node.Path, back[0].Path)
		}
	}
}

// Descendant enumeration is pre-order: each node before its children,
// children in container order.
func TestEvalDescendantOrder(t *testing.T) {
	var doc any
	if err := json.Unmarshal([]byte(`{"a": {"b": [1, {"c": 2}]}}`), &doc); err != nil {
		t.Fatal(err)
	}

	got := mustEval(t, "$..*", doc).Paths()
	expected := []string{
		"$['a']",
		"$['a']['b']",
		"$['a']['b'][0]",
		"$['a']['b'][1]",
		"$['a']['b'][1]['c']",
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("$..* order = %v, want %v", got, expected)
	}
}

// Within one segment the selector loop is outer and the node loop inner:
// every result of the first selector precedes any result of the second.
func TestEvalSelectorOuterOrder(t *testing.T) {
	var doc any
	if err := json.Unmarshal([]byte(`[[1, 2], [3, 4]]`), &doc); err != nil {
		t.Fatal(err)
	}

	got := mustEval(t, "$[*][1,0]", doc).Values()
	expected := []any{float64(2), float64(4), float64(1), float64(3)}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("$[*][1,0] = %v, want %v", got, expected)
	}
}

// Ordered objects enumerate in declaration order instead of sorted keys.
func TestEvalOrderedObject(t *testing.T) {
	doc := types.NewOrderedObject().
		Set("z", float64(1)).
		Set("a", float64(2)).
		Set("m", types.NewOrderedObject().Set("k", float64(3)))

	got := mustEval(t, "$.*", doc).Paths()
	expected := []string{"$['z']", "$['a']", "$['m']"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("$.* over ordered object = %v, want %v", got, expected)
	}

	if vals := mustEval(t, "$.m.k", doc).Values(); !reflect.DeepEqual(vals, []any{float64(3)}) {
		t.Errorf("$.m.k = %v", vals)
	}

	if vals := mustEval(t, "$[?@.k == 3]", doc).Paths(); !reflect.DeepEqual(vals, []string{"$['m']"}) {
		t.Errorf("filter over ordered object = %v", vals)
	}
}

func TestEvalNilQueryAndDocuments(t *testing.T) {
	nodes, err := evaluator.New().Eval(nil, map[string]any{})
	if err != nil || nodes != nil {
		t.Errorf("Eval(nil) = %v, %v", nodes, err)
	}

	// A null document is still a document: "$" selects it.
	got := mustEval(t, "$", nil)
	if len(got) != 1 || got[0].Value != nil {
		t.Errorf("Eval($, null) = %+v", got)
	}
	if vals := mustEval(t, "$.a", nil).Values(); vals != nil {
		t.Errorf("Eval($.a, null) = %v", vals)
	}
}

func TestEvalDepthLimit(t *testing.T) {
	// 40 levels of nesting.
	doc := any(float64(1))
	for i := 0; i < 40; i++ {
		doc = []any{doc}
	}

	query, err := parser.Parse("$..*")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := evaluator.New().Eval(query, doc); err != nil {
		t.Fatalf("default depth limit too small: %v", err)
	}

	_, err = evaluator.New(evaluator.WithMaxDepth(10)).Eval(query, doc)
	var qerr *types.Error
	if !errors.As(err, &qerr) || qerr.Code != types.ErrTooDeep {
		t.Fatalf("WithMaxDepth(10) error = %v, want %s", err, types.ErrTooDeep)
	}
}

func TestEvalFilterSubQueryDepthLimit(t *testing.T) {
	doc := any(map[string]any{"leaf": float64(1)})
	for i := 0; i < 40; i++ {
		doc = map[string]any{"next": doc}
	}
	wrapper := map[string]any{"items": []any{doc}}

	query, err := parser.Parse("$.items[?count(@..leaf) == 1]")
	if err != nil {
		t.Fatal(err)
	}

	_, err = evaluator.New(evaluator.WithMaxDepth(10)).Eval(query, wrapper)
	var qerr *types.Error
	if !errors.As(err, &qerr) || qerr.Code != types.ErrTooDeep {
		t.Fatalf("error = %v, want %s", err, types.ErrTooDeep)
	}
}

// One evaluator and one parsed query may be shared across goroutines.
func TestEvalConcurrentReuse(t *testing.T) {
	doc := storeDoc(t)
	query, err := parser.Parse("$.store.book[?@.price < 10].title")
	if err != nil {
		t.Fatal(err)
	}
	eval := evaluator.New()

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			for j := 0; j < 50; j++ {
				nodes, err := eval.Eval(query, doc)
				if err != nil {
					done <- err
					return
				}
				if len(nodes) != 2 {
					done <- errors.New("wrong result length")
					return
				}
			}
			done <- nil
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-done; err != nil {
			t.Fatal(err)
		}
	}
}

// Command jp evaluates a JSONPath query against a JSON or YAML document and
// prints the selected values, one JSON value per line.
//
// Usage:
//
//	jp [flags] <query> [file]
//
// With no file argument the document is read from standard input.
//
//	$ echo '{"a": [1, 2, 3]}' | jp '$.a[*]'
//	1
//	2
//	3
//
//	$ jp -paths '$..price' store.json
//	$['store']['book'][0]['price']	8.95
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/irvinebroque/jsonpath"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("jp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		showPaths = fs.Bool("paths", false, "print the normalized path of each result before its value")
		fromYAML  = fs.Bool("yaml", false, "decode the document as YAML instead of JSON")
		compact   = fs.Bool("c", false, "print values without indentation")
	)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: jp [flags] <query> [file]\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if fs.NArg() < 1 || fs.NArg() > 2 {
		fs.Usage()
		return 2
	}
	queryText := fs.Arg(0)

	query, err := jsonpath.Compile(queryText, jsonpath.WithStrictErrors(true))
	if err != nil {
		fmt.Fprintf(stderr, "jp: invalid query: %v\n", err)
		return 2
	}

	input := stdin
	if fs.NArg() == 2 {
		f, err := os.Open(fs.Arg(1))
		if err != nil {
			fmt.Fprintf(stderr, "jp: %v\n", err)
			return 1
		}
		defer f.Close()
		input = f
	}

	document, err := decode(input, *fromYAML || isYAMLFile(fs.Arg(1)))
	if err != nil {
		fmt.Fprintf(stderr, "jp: decode document: %v\n", err)
		return 1
	}

	nodes, err := query.Run(document)
	if err != nil {
		fmt.Fprintf(stderr, "jp: %v\n", err)
		return 1
	}

	for _, node := range nodes {
		out, err := encodeValue(node.Value, *compact)
		if err != nil {
			fmt.Fprintf(stderr, "jp: encode result: %v\n", err)
			return 1
		}
		if *showPaths {
			fmt.Fprintf(stdout, "%s\t%s\n", node.Path, out)
		} else {
			fmt.Fprintf(stdout, "%s\n", out)
		}
	}
	return 0
}

// decode reads the whole document and decodes it. YAML decoding goes through
// an intermediate JSON round trip so objects arrive as map[string]any, the
// same shape encoding/json produces.
func decode(r io.Reader, asYAML bool) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if asYAML {
		jsonData, err := yaml.YAMLToJSON(data)
		if err != nil {
			return nil, err
		}
		data = jsonData
	}
	var document any
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, err
	}
	return document, nil
}

func isYAMLFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

func encodeValue(v any, compact bool) ([]byte, error) {
	if compact {
		return json.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}

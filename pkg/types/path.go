package types

import (
	"fmt"
	"strconv"
	"strings"
)

// PathStep is one step of a normalized path: either an object member name or
// an array index.
type PathStep struct {
	name    string
	index   int
	isIndex bool
}

// NameStep creates a member-name path step.
func NameStep(name string) PathStep {
	return PathStep{name: name}
}

// IndexStep creates an array-index path step.
func IndexStep(index int) PathStep {
	return PathStep{index: index, isIndex: true}
}

// IsIndex reports whether the step is an array index.
func (s PathStep) IsIndex() bool { return s.isIndex }

// Name returns the member name for a name step.
func (s PathStep) Name() string { return s.name }

// Index returns the array index for an index step.
func (s PathStep) Index() int { return s.index }

func (s PathStep) writeTo(buf *strings.Builder) {
	buf.WriteByte('[')
	if s.isIndex {
		buf.WriteString(strconv.Itoa(s.index))
	} else {
		writeQuotedName(buf, s.name)
	}
	buf.WriteByte(']')
}

// NormalizedPath identifies a specific node location in a document as an
// ordered list of steps from the root.
type NormalizedPath []PathStep

// Child returns a new path extended by one step. The receiver is not
// modified; the result never aliases the receiver's backing array, so sibling
// nodes can extend the same parent path independently.
func (p NormalizedPath) Child(step PathStep) NormalizedPath {
	next := make(NormalizedPath, len(p)+1)
	copy(next, p)
	next[len(p)] = step
	return next
}

// String renders the canonical bracket form defined by RFC 9535 §2.7:
// "$" followed by one bracketed step per level, member names single-quoted.
// Two queries selecting the same node always format to the identical string.
func (p NormalizedPath) String() string {
	var buf strings.Builder
	buf.WriteByte('$')
	for _, step := range p {
		step.writeTo(&buf)
	}
	return buf.String()
}

// writeQuotedName writes a member name as a single-quoted string literal in
// normal form: backslash and the single quote are escaped, control characters
// use their shorthand escape where one exists and lowercase \u00xx otherwise,
// everything else is literal. The output is always re-parseable by the lexer.
func writeQuotedName(buf *strings.Builder, name string) {
	buf.WriteByte('\'')
	for _, r := range name {
		switch r {
		case '\'':
			buf.WriteString(`\'`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r <= 0x1F {
				fmt.Fprintf(buf, `\u%04x`, r)
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('\'')
}

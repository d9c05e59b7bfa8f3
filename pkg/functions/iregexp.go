package functions

import (
	"regexp"
	"strings"
	"sync"
)

// compiledRegexps caches translated patterns. match/search are hot inside
// filter loops, where the same pattern is applied to every candidate node.
var compiledRegexps sync.Map // key string -> *regexp.Regexp

// compileRegexp translates an I-Regexp pattern (RFC 9485) into Go regexp
// syntax and compiles it. For anchored (match) semantics the pattern is
// wrapped so it must cover the whole subject.
func compileRegexp(pattern string, anchored bool) (*regexp.Regexp, error) {
	key := pattern
	if anchored {
		key = "\x00" + pattern
	}
	if cached, ok := compiledRegexps.Load(key); ok {
		return cached.(*regexp.Regexp), nil
	}

	translated := translateIRegexp(pattern)
	if anchored {
		translated = `\A(?:` + translated + `)\z`
	}
	re, err := regexp.Compile(translated)
	if err != nil {
		return nil, err
	}
	compiledRegexps.Store(key, re)
	return re, nil
}

// translateIRegexp rewrites the I-Regexp dialect into Go regexp syntax.
// The dialects differ in one place: the I-Regexp dot matches any character
// except newline and carriage return, while Go's dot excludes only newline.
// Dots inside character classes and escaped dots are left alone.
func translateIRegexp(pattern string) string {
	if !strings.ContainsRune(pattern, '.') {
		return pattern
	}

	var buf strings.Builder
	buf.Grow(len(pattern) + 8)
	inClass := false
	escaped := false
	for _, r := range pattern {
		if escaped {
			buf.WriteByte('\\')
			buf.WriteRune(r)
			escaped = false
			continue
		}
		switch r {
		case '\\':
			escaped = true
		case '[':
			inClass = true
			buf.WriteRune(r)
		case ']':
			inClass = false
			buf.WriteRune(r)
		case '.':
			if inClass {
				buf.WriteRune(r)
			} else {
				buf.WriteString(`[^\n\r]`)
			}
		default:
			buf.WriteRune(r)
		}
	}
	if escaped {
		buf.WriteByte('\\')
	}
	return buf.String()
}

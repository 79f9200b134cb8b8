package query

import (
	"github.com/dlclark/regexp2"

	"github.com/cayleygraph/tsengine/errs"
)

// CompiledPattern wraps a compiled regexp2.Regexp as an opaque collaborator
// for the Regex filter variant. Pattern compilation itself is treated as a
// black box (spec §9: filter predicates over an "opaque compiled pattern"
// supplied by an external regex engine, not reimplemented here); regexp2
// gives PCRE-style syntax (backreferences, lookaround) that the standard
// library's re2-based regexp cannot.
type CompiledPattern struct {
	re *regexp2.Regexp
}

// flag characters recognized on a filter regex verb: i = case-insensitive,
// s = singleline (. matches \n), m = multiline (^$ match line boundaries).
func regexOptions(flags string) regexp2.RegexOptions {
	opts := regexp2.None
	for _, c := range flags {
		switch c {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 's':
			opts |= regexp2.Singleline
		case 'm':
			opts |= regexp2.Multiline
		}
	}
	return opts
}

// CompilePattern compiles pattern with the given flag string.
func CompilePattern(pattern, flags string) (*CompiledPattern, *errs.Error) {
	re, err := regexp2.Compile(pattern, regexOptions(flags))
	if err != nil {
		return nil, errs.Construct("filter: invalid regex %q: %v", pattern, err)
	}
	return &CompiledPattern{re: re}, nil
}

// MatchString reports whether s matches the compiled pattern anywhere.
func (c *CompiledPattern) MatchString(s string) bool {
	m, err := c.re.MatchString(s)
	if err != nil {
		return false
	}
	return m
}

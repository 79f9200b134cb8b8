// Package command implements the tokenizer and verb dispatcher for the
// tokenized command language a connection speaks (spec §4.6 items 2-3,
// §6's command vocabulary table).
package command

import (
	"github.com/cayleygraph/tsengine/errs"
)

// Tokenize splits a command line into whitespace-separated tokens.
// Double-quoted tokens preserve internal spaces and honor `\"` and `\\`
// escapes; once a token begins with `"`, scanning continues past the
// matching unescaped closing quote to the next whitespace boundary, so a
// literal token's trailing `@lang` or `^^<iri>` suffix (e.g. `"x"@en`)
// stays part of the same token (spec §4.6 item 2, §6 token forms).
func Tokenize(line string) ([]string, *errs.Error) {
	var tokens []string
	r := []rune(line)
	i, n := 0, len(r)

	for i < n {
		for i < n && isSpace(r[i]) {
			i++
		}
		if i >= n {
			break
		}

		if r[i] == '"' {
			// Find the matching unescaped closing quote, keeping the raw
			// (still-escaped) text: unescaping is a term-token concern
			// (ParseTerm), not the tokenizer's. This also lets a `\"` or
			// `\\` inside the value pass through without confusing the
			// boundary scan below.
			start := i
			i++
			for i < n && r[i] != '"' {
				if r[i] == '\\' && i+1 < n {
					i += 2
					continue
				}
				i++
			}
			if i >= n {
				return nil, errs.ProtocolErr("command: unterminated quoted token")
			}
			i++ // consume closing quote
			// continue consuming any attached suffix (e.g. @lang, ^^<iri>)
			for i < n && !isSpace(r[i]) {
				i++
			}
			tokens = append(tokens, string(r[start:i]))
			continue
		}

		start := i
		for i < n && !isSpace(r[i]) {
			i++
		}
		tokens = append(tokens, string(r[start:i]))
	}
	return tokens, nil
}

func isSpace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

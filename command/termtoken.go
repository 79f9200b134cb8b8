package command

import (
	"strconv"
	"strings"

	"github.com/cayleygraph/tsengine/errs"
	"github.com/cayleygraph/tsengine/query"
	"github.com/cayleygraph/tsengine/store"
	"github.com/cayleygraph/tsengine/term"
)

// ParseTerm recognizes one query-position token per spec §6's token-form
// table: `<iri>`, a quoted literal (with optional `@lang` or `^^<iri>`
// suffix), `?name`/bare-name variable, or a bare decimal integer used
// directly as a term id. Constants are resolved against the store by
// Lookup only — never Intern, since query-time dispatch runs against a
// frozen, read-only store (spec §5). A constant that does not resolve
// (the store has never seen that exact term) yields Arg{Const: 0}, which
// BGP/Path recognize as "can never match" and short-circuit on, rather
// than misreading a missing term as the wildcard.
func ParseTerm(tok string, vt *query.VarTable, st *store.Store) (query.Arg, *errs.Error) {
	switch {
	case len(tok) == 0:
		return query.Arg{}, errs.LexicalErr("command: empty term token")

	case tok[0] == '<':
		if !strings.HasSuffix(tok, ">") {
			return query.Arg{}, errs.LexicalErr("command: unterminated IRI token %q", tok)
		}
		id := st.Lookup(term.NewIRI(tok[1 : len(tok)-1]))
		return query.ConstArg(id), nil

	case tok[0] == '"':
		t, err := parseLiteralToken(tok, st)
		if err != nil {
			return query.Arg{}, err
		}
		return query.ConstArg(st.Lookup(t)), nil

	case tok[0] == '?':
		return query.VarArg(vt.Declare(tok[1:])), nil

	case isBareDecimal(tok):
		n, convErr := strconv.ParseUint(tok, 10, 32)
		if convErr != nil {
			return query.Arg{}, errs.LexicalErr("command: term id %q out of range", tok)
		}
		return query.ConstArg(term.ID(n)), nil

	default:
		// A bare name that isn't all-digits is a variable (spec §6: "?name
		// or bare name -> variable").
		return query.VarArg(vt.Declare(tok)), nil
	}
}

func isBareDecimal(tok string) bool {
	for _, c := range tok {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// parseLiteralToken parses `"value"`, `"value"@lang` or
// `"value"^^<datatype-iri>` into the corresponding Term, unescaping `\"`,
// `\\` and `\n` in the value (spec §6: "backslash-n unescaped to newline
// in non-regex contexts"). A `^^<iri>` datatype that has never itself been
// interned resolves to datatype id 0, which st.Lookup will simply never
// find a match for (same "unknown constant" handling as any other token).
func parseLiteralToken(tok string, st *store.Store) (term.Term, *errs.Error) {
	end := closingQuoteIndex(tok)
	if end < 0 {
		return term.Term{}, errs.LexicalErr("command: unterminated literal token %q", tok)
	}
	value := unescapeLiteral(tok[1:end])
	suffix := tok[end+1:]

	switch {
	case suffix == "":
		return term.NewPlainString(value), nil
	case strings.HasPrefix(suffix, "@"):
		lit, ok := term.NewLangLiteral(value, suffix[1:])
		if !ok {
			return term.Term{}, errs.LexicalErr("command: language tag %q too long", suffix[1:])
		}
		return lit, nil
	case strings.HasPrefix(suffix, "^^<") && strings.HasSuffix(suffix, ">"):
		dtIRI := suffix[3 : len(suffix)-1]
		dtID := st.Lookup(term.NewIRI(dtIRI))
		return term.NewTypedLiteral(value, dtID), nil
	default:
		return term.Term{}, errs.LexicalErr("command: malformed literal suffix %q", suffix)
	}
}

func closingQuoteIndex(tok string) int {
	for i := 1; i < len(tok); i++ {
		if tok[i] == '\\' {
			i++
			continue
		}
		if tok[i] == '"' {
			return i
		}
	}
	return -1
}

func unescapeLiteral(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			case '"', '\\':
				b.WriteByte(s[i+1])
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

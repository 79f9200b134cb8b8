package query

import (
	"strings"

	"github.com/cayleygraph/tsengine/store"
	"github.com/cayleygraph/tsengine/term"
)

// FilterKind enumerates the filter predicate variants spec §4.5 names.
type FilterKind int

const (
	FilterIsIRI FilterKind = iota
	FilterIsLiteral
	FilterIsBlank
	FilterIsNumeric
	FilterSameTerm
	FilterStrStarts
	FilterStrEnds
	FilterContains
	FilterRegex
)

// Filter tests one variable's (or a pair's) bound term against a
// predicate, forwarding to cont only when it holds (spec §4.5: "Filter:
// tests the current binding array against a predicate; on failure,
// produces nothing").
type Filter struct {
	st   *store.Store
	Kind FilterKind

	VarA int // the variable under test
	B    Arg // FilterSameTerm's second operand (var or const, spec §4.5)

	// Str* variants: the literal comparison operand, parsed at build time
	// into a plain-string-or-lang-literal shape (spec §4.5's term-
	// compatibility rule: a plain string only matches a plain string; a
	// lang literal only matches the same, byte-equal-after-normalization,
	// language tag).
	CompareIsLang bool
	CompareLang   string
	CompareValue  string

	Pattern *CompiledPattern
}

func NewFilter(st *store.Store, kind FilterKind, varA int) *Filter {
	return &Filter{st: st, Kind: kind, VarA: varA}
}

// Eval implements Operator.
func (f *Filter) Eval(b *Bindings, cont Continuation) bool {
	if !f.holds(b) {
		return false
	}
	return cont(b)
}

func (f *Filter) holds(b *Bindings) bool {
	id := b.Get(f.VarA)
	if id == 0 {
		return false
	}
	t, ok := f.st.TermOf(id)
	if !ok {
		return false
	}

	switch f.Kind {
	case FilterIsIRI:
		return t.Kind == term.IRI
	case FilterIsBlank:
		return t.Kind == term.Blank
	case FilterIsLiteral:
		return t.IsLiteral()
	case FilterIsNumeric:
		return t.Kind == term.TypedLiteral && t.IsNumeric
	case FilterSameTerm:
		var other term.ID
		if f.B.IsVar {
			other = b.Get(f.B.VarIdx)
		} else {
			other = f.B.Const
		}
		return other != 0 && other == id
	case FilterStrStarts:
		return f.stringCompatible(t) && strings.HasPrefix(t.Value, f.CompareValue)
	case FilterStrEnds:
		return f.stringCompatible(t) && strings.HasSuffix(t.Value, f.CompareValue)
	case FilterContains:
		return f.stringCompatible(t) && strings.Contains(t.Value, f.CompareValue)
	case FilterRegex:
		// Unlike the Str* variants, spec §4.5 places no term-compatibility
		// restriction on Regex: it matches lexical value across any kind.
		return f.Pattern != nil && f.Pattern.MatchString(t.Value)
	default:
		return false
	}
}

// stringCompatible implements spec §4.5's term-compatibility predicate for
// the string filter variants: a plain-string comparison operand only
// matches a PlainStringLiteral variable; a lang-literal operand only
// matches a LangLiteral with the same normalized tag. Anything else
// (IRI, Blank, TypedLiteral, or a tag mismatch) is false.
func (f *Filter) stringCompatible(t term.Term) bool {
	if f.CompareIsLang {
		return t.Kind == term.LangLiteral && t.Lang == f.CompareLang
	}
	return t.Kind == term.PlainStringLiteral
}

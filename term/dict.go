package term

import (
	"strings"

	"github.com/cayleygraph/tsengine/errs"
)

const defaultCapacity = 1024

// Dictionary interns RDF terms and assigns them dense 32-bit ids (spec
// §4.1). Id 0 is reserved/unused; the first interned term gets id 1.
//
// The reverse index (id -> Term) is a flat, doubling slice indexed by id,
// giving constant-time term_of lookups.
// The forward index (Term -> id) is a Go map keyed by the term's
// structural Key; spec §4.1 permits a hash table in place of an ordered
// tree as long as external callers don't rely on iteration order, which
// none do here (snapshot dump walks the id-ordered slice instead).
type Dictionary struct {
	byKey map[Key]ID
	terms []Term // index 0 unused
}

// NewDictionary creates an empty dictionary with room for capacity terms.
func NewDictionary(capacity int) *Dictionary {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	d := &Dictionary{
		byKey: make(map[Key]ID, capacity),
		terms: make([]Term, 1, capacity+1),
	}
	return d
}

// Len returns the number of interned terms (not counting the id-0 sentinel).
func (d *Dictionary) Len() int { return len(d.terms) - 1 }

func (d *Dictionary) grow() {
	if len(d.terms) < cap(d.terms) {
		return
	}
	next := make([]Term, len(d.terms), cap(d.terms)*2)
	copy(next, d.terms)
	d.terms = next
}

// Lookup returns the id of t if already interned, or 0.
func (d *Dictionary) Lookup(t Term) ID {
	if id, ok := d.byKey[t.Key()]; ok {
		return id
	}
	return 0
}

// TermOf returns the term for id, or the zero Term and false if id is out
// of range.
func (d *Dictionary) TermOf(id ID) (Term, bool) {
	if id == 0 || int(id) >= len(d.terms) {
		return Term{}, false
	}
	return d.terms[id], true
}

// Intern returns t's id, assigning a new one if t is not yet present. For
// TypedLiteral terms, the referenced datatype must already be interned
// (spec §3 invariant); Intern resolves recognized-XSD-numeric population
// and lexical validation against that datatype here, since this is the one
// place both the term and its datatype's lexical value are available.
func (d *Dictionary) Intern(t Term) (ID, *errs.Error) {
	if t.Kind == TypedLiteral {
		dt, ok := d.TermOf(t.DatatypeID)
		if !ok || dt.Kind != IRI {
			return 0, errs.LexicalErr("typed literal datatype id %d is not an interned IRI", t.DatatypeID)
		}
		local := localName(dt.Value)
		if !ValidateLexical(local, t.Value) {
			return 0, errs.LexicalErr("value %q does not match lexical form of datatype %q", t.Value, dt.Value)
		}
		if IsRecognizedNumeric(local) {
			if f, ok := ParseNumeric(t.Value); ok {
				t.IsNumeric = true
				t.NumericValue = f
			}
		}
	}
	if t.Kind == LangLiteral {
		if _, fits := packedLang(t.Lang); !fits {
			return 0, errs.LexicalErr("language tag %q exceeds packed slot", t.Lang)
		}
	}

	key := t.Key()
	if id, ok := d.byKey[key]; ok {
		return id, nil
	}
	d.grow()
	id := ID(len(d.terms))
	d.terms = append(d.terms, t)
	d.byKey[key] = id
	return id, nil
}

// localName returns the fragment of an IRI after its final '#' or '/',
// used to recognize the XSD numeric/date datatypes by local name.
func localName(iri string) string {
	if i := strings.LastIndexByte(iri, '#'); i >= 0 {
		return iri[i+1:]
	}
	if i := strings.LastIndexByte(iri, '/'); i >= 0 {
		return iri[i+1:]
	}
	return iri
}

// FromTerms rebuilds a Dictionary from a flat, id-ordered term slice whose
// index 0 is an unused placeholder — the shape snapshot.Load reconstructs
// after reading node records back off disk (spec §4.3: "Load replaces the
// dictionary; it is not incremental").
func FromTerms(terms []Term) *Dictionary {
	d := &Dictionary{
		byKey: make(map[Key]ID, len(terms)),
		terms: terms,
	}
	for i := 1; i < len(terms); i++ {
		d.byKey[terms[i].Key()] = ID(i)
	}
	return d
}

// Each calls fn for every interned term in ascending id order. Used by the
// snapshot codec, which must write nodes in stable (ascending id) order so
// that a TypedLiteral's referenced datatype precedes it on reload.
func (d *Dictionary) Each(fn func(id ID, t Term)) {
	for i := 1; i < len(d.terms); i++ {
		fn(ID(i), d.terms[i])
	}
}

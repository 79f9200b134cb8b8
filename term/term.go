// Package term implements the RDF term dictionary (spec §3, §4.1): a tagged
// union of term variants, interned to dense 32-bit ids.
package term

import (
	"regexp"
	"strconv"
)

// Kind tags the variant of a Term.
type Kind uint8

const (
	IRI Kind = iota
	Blank
	PlainStringLiteral
	LangLiteral
	TypedLiteral
)

// ID is a dense, positive 32-bit term identifier. 0 denotes absent/undefined.
type ID uint32

// langTagMaxLen is the usable payload of the packed 8-byte language tag
// slot: 7 bytes plus a terminating NUL (spec §3).
const langTagMaxLen = 7

// Term is the tagged union described in spec §3. Only the fields relevant
// to Kind are meaningful; callers use the accessors below rather than
// reaching into variant-specific fields directly.
type Term struct {
	Kind  Kind
	Value string

	// Blank
	PrefixID uint32

	// LangLiteral: the normalized tag, kept as a string. NewLangLiteral and
	// Dictionary.Intern reject tags longer than langTagMaxLen (the payload
	// of an 8-byte slot); no packed 8-byte form is stored.
	Lang string

	// TypedLiteral
	DatatypeID ID

	// Numeric cache, populated for recognized XSD numeric datatypes.
	IsNumeric    bool
	NumericValue float64
}

// packedLang returns the 8-byte packed form of the (already normalized)
// language tag, and false if it doesn't fit.
func packedLang(tag string) ([8]byte, bool) {
	var buf [8]byte
	if len(tag) > langTagMaxLen {
		return buf, false
	}
	copy(buf[:], tag)
	return buf, true
}

// NewIRI constructs an IRI term.
func NewIRI(value string) Term { return Term{Kind: IRI, Value: value} }

// NewBlank constructs a Blank term, disambiguated by prefixID across ingest
// sessions.
func NewBlank(value string, prefixID uint32) Term {
	return Term{Kind: Blank, Value: value, PrefixID: prefixID}
}

// NewPlainString constructs a PlainStringLiteral term (implicit xsd:string).
func NewPlainString(value string) Term { return Term{Kind: PlainStringLiteral, Value: value} }

// NewLangLiteral constructs a LangLiteral term. The tag is normalized per
// spec §3 (language lowercased, region uppercased, script title-cased)
// before being packed; ok is false if the normalized tag does not fit the
// 8-byte slot.
func NewLangLiteral(value, tag string) (t Term, ok bool) {
	norm := NormalizeLangTag(tag)
	if _, fits := packedLang(norm); !fits {
		return Term{}, false
	}
	return Term{Kind: LangLiteral, Value: value, Lang: norm}, true
}

// NewTypedLiteral constructs a TypedLiteral term referencing an already
// interned datatype IRI term id. Numeric population happens in the
// dictionary at intern time, since it needs to resolve datatypeID -> IRI.
func NewTypedLiteral(value string, datatypeID ID) Term {
	return Term{Kind: TypedLiteral, Value: value, DatatypeID: datatypeID}
}

// Key returns a value usable as a map key capturing structural equality:
// (variant, value, variant-specific field) per spec §3.
type Key struct {
	Kind       Kind
	Value      string
	PrefixID   uint32
	Lang       string
	DatatypeID ID
}

func (t Term) Key() Key {
	return Key{Kind: t.Kind, Value: t.Value, PrefixID: t.PrefixID, Lang: t.Lang, DatatypeID: t.DatatypeID}
}

// IsLiteral reports whether t is any literal variant.
func (t Term) IsLiteral() bool {
	switch t.Kind {
	case PlainStringLiteral, LangLiteral, TypedLiteral:
		return true
	default:
		return false
	}
}

// Recognized XSD numeric datatype local names and their lexical-validity
// regexes (spec §3 and §4.1's numeric population rule).
const (
	XSDInteger = "integer"
	XSDDecimal = "decimal"
	XSDFloat   = "float"
	XSDDouble  = "double"
	XSDDate    = "date"
	XSDDateTime = "dateTime"
)

var xsdLexical = map[string]*regexp.Regexp{
	XSDInteger: regexp.MustCompile(`^[+-]?[0-9]+$`),
	XSDDecimal: regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]+)?$`),
	XSDFloat:   regexp.MustCompile(`^[+-]?([0-9]+(\.[0-9]*)?|\.[0-9]+)([eE][+-]?[0-9]+)?$`),
	XSDDouble:  regexp.MustCompile(`^[+-]?([0-9]+(\.[0-9]*)?|\.[0-9]+)([eE][+-]?[0-9]+)?$`),
	XSDDate:     regexp.MustCompile(`^-?[0-9]{4}-[0-9]{2}-[0-9]{2}(Z|[+-][0-9]{2}:[0-9]{2})?$`),
	XSDDateTime: regexp.MustCompile(`^-?[0-9]{4}-[0-9]{2}-[0-9]{2}T[0-9]{2}:[0-9]{2}:[0-9]{2}(\.[0-9]+)?(Z|[+-][0-9]{2}:[0-9]{2})?$`),
}

// IsRecognizedNumeric reports whether localName (the part of an XSD IRI
// after the final '#') is one of the four numeric datatypes spec §3 names.
func IsRecognizedNumeric(localName string) bool {
	switch localName {
	case XSDInteger, XSDDecimal, XSDFloat, XSDDouble:
		return true
	default:
		return false
	}
}

// IsRecognizedDateLike reports whether localName is one of the lexically
// validated-but-not-numeric date types.
func IsRecognizedDateLike(localName string) bool {
	return localName == XSDDate || localName == XSDDateTime
}

// ValidateLexical checks value against localName's lexical regex, if any is
// registered. ok is true if there's no rule (unrecognized datatype, lexical
// form unconstrained) or the value matches.
func ValidateLexical(localName, value string) bool {
	re, ok := xsdLexical[localName]
	if !ok {
		return true
	}
	return re.MatchString(value)
}

// ParseNumeric converts value to its float64 representation for one of the
// recognized numeric datatypes.
func ParseNumeric(value string) (float64, bool) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// NormalizeLangTag applies spec §3's normalization: language lowercased,
// region uppercased, script title-cased. Segments are '-'-separated; the
// first is the language, a 4-letter second segment is a script, a 2-letter
// (or 3-digit) segment is a region.
func NormalizeLangTag(tag string) string {
	segs := splitTag(tag)
	for i, s := range segs {
		switch {
		case i == 0:
			segs[i] = toLower(s)
		case len(s) == 4 && isAlpha(s):
			segs[i] = titleCase(s)
		case len(s) == 2 && isAlpha(s):
			segs[i] = toUpper(s)
		case len(s) == 3 && isDigits(s):
			segs[i] = s
		default:
			segs[i] = toLower(s)
		}
	}
	return joinTag(segs)
}

func splitTag(tag string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(tag); i++ {
		if i == len(tag) || tag[i] == '-' {
			out = append(out, tag[start:i])
			start = i + 1
		}
	}
	return out
}

func joinTag(segs []string) string {
	out := ""
	for i, s := range segs {
		if i > 0 {
			out += "-"
		}
		out += s
	}
	return out
}

func isAlpha(s string) bool {
	for _, c := range s {
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func toUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	b := []byte(toLower(s))
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

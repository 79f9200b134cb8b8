// Package errs defines the error taxonomy shared by the dictionary, store,
// query engine and server (spec §7): construction, lexical, resource, I/O
// and protocol errors, each carrying a stable kind and message.
package errs

import "fmt"

// Kind classifies an error by where in the pipeline it originated.
type Kind int

const (
	// Construction covers query misuse: cartesian BGPs, filters appended
	// outside construction, references to undeclared variables.
	Construction Kind = iota
	// Lexical covers unparseable term tokens, bad literal quoting, overly
	// long language tags, or values failing their datatype's lexical regex.
	Lexical
	// Resource covers arena growth failures and ring buffer exhaustion.
	Resource
	// IO covers socket and file errors.
	IO
	// Protocol covers malformed HTTP framing: missing headers, bad
	// Content-Length, unexpected NUL bytes in the body.
	Protocol
)

func (k Kind) String() string {
	switch k {
	case Construction:
		return "ConstructionError"
	case Lexical:
		return "LexicalError"
	case Resource:
		return "ResourceError"
	case IO:
		return "IOError"
	case Protocol:
		return "ProtocolError"
	default:
		return "UnknownError"
	}
}

// Error is a typed error carrying a Kind and a message. It is the only
// error type that crosses package boundaries in this module's hot paths;
// everything else is wrapped into one of these at the boundary.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Msg) }

func New(k Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

func Construct(format string, args ...interface{}) *Error { return New(Construction, format, args...) }
func LexicalErr(format string, args ...interface{}) *Error { return New(Lexical, format, args...) }
func ResourceErr(format string, args ...interface{}) *Error { return New(Resource, format, args...) }
func IOErr(format string, args ...interface{}) *Error      { return New(IO, format, args...) }
func ProtocolErr(format string, args ...interface{}) *Error { return New(Protocol, format, args...) }

// First holds a request-scoped first-error: subsequent Set calls after the
// first are no-ops, matching spec §7's "subsequent errors do not overwrite
// the first" policy.
type First struct {
	err *Error
}

// Set records err if no error has been recorded yet. Returns true if this
// call recorded it.
func (f *First) Set(err *Error) bool {
	if f.err != nil || err == nil {
		return false
	}
	f.err = err
	return true
}

// Err returns the first recorded error, or nil.
func (f *First) Err() *Error { return f.err }

package parser

import (
	"io"
	"time"

	"github.com/cayleygraph/tsengine/clog"
	"github.com/cayleygraph/tsengine/errs"
	"github.com/cayleygraph/tsengine/store"
	"github.com/cayleygraph/tsengine/term"
)

// Import drains adapter, interning each triple's terms into st and
// appending the edge, stamping every insertion with now (spec §4.2's
// mtime bookkeeping). prefixID disambiguates this import's blank node
// labels from any other ingest session's (spec §3: "a prefix_id
// disambiguating blank nodes across ingest sessions") — callers issuing
// multiple `import`/`load` calls against one store must pass a distinct
// prefixID each time. Per spec §7, a LexicalError is logged and only the
// offending triple is skipped; ingest continues with the next one. Any
// other error kind (IO, Resource, ...) is fatal and aborts the ingest.
// Returns the number of triples inserted.
func Import(st *store.Store, adapter Adapter, now time.Time, prefixID uint32) (int, *errs.Error) {
	n := 0
	for {
		tr, err := adapter.ReadTriple()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, errs.IOErr("parser: %v", err)
		}

		s, ierr := internToken(st, tr.S, prefixID)
		if ierr != nil {
			if ierr.Kind != errs.Lexical {
				return n, ierr
			}
			clog.Warningf("parser: skipping triple: %v", ierr)
			continue
		}
		p, ierr := internToken(st, tr.P, prefixID)
		if ierr != nil {
			if ierr.Kind != errs.Lexical {
				return n, ierr
			}
			clog.Warningf("parser: skipping triple: %v", ierr)
			continue
		}
		o, ierr := internToken(st, tr.O, prefixID)
		if ierr != nil {
			if ierr.Kind != errs.Lexical {
				return n, ierr
			}
			clog.Warningf("parser: skipping triple: %v", ierr)
			continue
		}
		if ierr := st.AddTriple(s, p, o, now); ierr != nil {
			if ierr.Kind != errs.Lexical {
				return n, ierr
			}
			clog.Warningf("parser: skipping triple: %v", ierr)
			continue
		}
		n++
	}
}

// internToken converts a Token into the corresponding term.Term and
// interns it, resolving (and interning, if new) a TokenTyped token's
// datatype IRI first, since the dictionary requires a typed literal's
// DatatypeID to already be interned (term/dict.go's Intern).
func internToken(st *store.Store, tok Token, prefixID uint32) (term.ID, *errs.Error) {
	switch tok.Kind {
	case TokenIRI:
		return st.Intern(term.NewIRI(tok.Value))
	case TokenBlank:
		return st.Intern(term.NewBlank(tok.Value, prefixID))
	case TokenPlain:
		return st.Intern(term.NewPlainString(tok.Value))
	case TokenLang:
		lit, ok := term.NewLangLiteral(tok.Value, tok.Lang)
		if !ok {
			return 0, errs.LexicalErr("parser: language tag %q too long", tok.Lang)
		}
		return st.Intern(lit)
	case TokenTyped:
		dtID, ierr := st.Intern(term.NewIRI(tok.Datatype))
		if ierr != nil {
			return 0, ierr
		}
		return st.Intern(term.NewTypedLiteral(tok.Value, dtID))
	default:
		return 0, errs.LexicalErr("parser: unrecognized token kind %d", tok.Kind)
	}
}

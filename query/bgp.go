package query

import (
	"github.com/cayleygraph/tsengine/errs"
	"github.com/cayleygraph/tsengine/store"
	"github.com/cayleygraph/tsengine/term"
)

// Pattern is one triple pattern within a BGP.
type Pattern struct {
	S, P, O Arg
}

// varsOf returns the variable indices a pattern references, in S, P, O
// order; a variable repeated across positions appears once per position.
func (p Pattern) varsOf() []int {
	var out []int
	add := func(a Arg) {
		if a.IsVar {
			out = append(out, a.VarIdx)
		}
	}
	add(p.S)
	add(p.P)
	add(p.O)
	return out
}

// BGP is a basic graph pattern: an ordered list of triple patterns
// evaluated by nested-loop join with backtracking (spec §4.5). Patterns
// are matched left to right; a variable already bound by an earlier
// pattern is substituted as a constant rather than re-iterated.
type BGP struct {
	st       *store.Store
	patterns []Pattern
}

// NewBGP builds a BGP, enforcing the connectivity invariant: a BGP with
// more than one pattern must be connected, every pattern after the first
// must share at least one variable with some earlier pattern, so the join
// can never silently degrade into a cartesian product (spec §4.5's
// "connectivity check at construction").
func NewBGP(st *store.Store, patterns []Pattern) (*BGP, *errs.Error) {
	if len(patterns) > 1 {
		seen := make(map[int]bool)
		for _, v := range patterns[0].varsOf() {
			seen[v] = true
		}
		for i := 1; i < len(patterns); i++ {
			connected := false
			for _, v := range patterns[i].varsOf() {
				if seen[v] {
					connected = true
					break
				}
			}
			if !connected {
				return nil, errs.Construct("bgp: pattern %d shares no variable with any earlier pattern (cartesian product)", i)
			}
			for _, v := range patterns[i].varsOf() {
				seen[v] = true
			}
		}
	}
	return &BGP{st: st, patterns: patterns}, nil
}

// Eval implements Operator: it drives the nested-loop join, calling cont
// once per complete joint binding across all patterns, and rewinds every
// variable this BGP introduced before returning.
func (g *BGP) Eval(b *Bindings, cont Continuation) bool {
	return g.evalPattern(0, b, cont)
}

func (g *BGP) evalPattern(idx int, b *Bindings, cont Continuation) bool {
	if idx == len(g.patterns) {
		return cont(b)
	}
	pat := g.patterns[idx]
	// A constant that did not resolve to a term (Const 0) can never match;
	// MatchTriple would otherwise read the 0 as a wildcard.
	if (!pat.S.IsVar && pat.S.Const == 0) || (!pat.P.IsVar && pat.P.Const == 0) || (!pat.O.IsVar && pat.O.Const == 0) {
		return false
	}
	sVal, sNew := pat.S.resolve(b)
	pVal, pNew := pat.P.resolve(b)
	oVal, oNew := pat.O.resolve(b)

	stopped := false
	g.st.MatchTriple(sVal, pVal, oVal, func(cs, cp, co term.ID) bool {
		if sNew != 0 {
			b.Set(sNew, cs)
		}
		if pNew != 0 {
			b.Set(pNew, cp)
		}
		if oNew != 0 {
			b.Set(oNew, co)
		}
		stop := g.evalPattern(idx+1, b, cont)
		if sNew != 0 {
			b.Clear(sNew)
		}
		if pNew != 0 {
			b.Clear(pNew)
		}
		if oNew != 0 {
			b.Clear(oNew)
		}
		if stop {
			stopped = true
		}
		return stop
	})
	return stopped
}

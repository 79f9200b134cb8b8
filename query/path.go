package query

import (
	"github.com/cayleygraph/tsengine/store"
	"github.com/cayleygraph/tsengine/term"
)

// PathKind distinguishes the `+` (one or more hops) and `*` (zero or more
// hops) path operators (spec §4.5).
type PathKind int

const (
	PathPlus PathKind = iota
	PathStar
)

// Path traverses zero-or-more / one-or-more hops along a single fixed
// predicate via depth-first search, each source guarded by its own
// seen-bitmap so a cyclic graph can't loop forever or revisit a vertex on
// the same walk (spec §4.5, §9).
//
// Open-question decision (spec §9 item i): PathStar's nominal zero-length
// match (source == end with no hops taken) is not emitted here, matching
// the reference implementation's observed behavior rather than the
// textbook Kleene-star definition. PathPlus and PathStar therefore differ
// only in intent/documentation at present, not in emitted results.
type Path struct {
	st    *store.Store
	Start Arg
	Pred  term.ID
	End   Arg
	Kind  PathKind
}

func NewPath(st *store.Store, start Arg, pred term.ID, end Arg, kind PathKind) *Path {
	return &Path{st: st, Start: start, Pred: pred, End: end, Kind: kind}
}

// Eval implements Operator.
func (p *Path) Eval(b *Bindings, cont Continuation) bool {
	// An unresolved constant (id 0) start or predicate can never match.
	if p.Pred == 0 || (!p.Start.IsVar && p.Start.Const == 0) {
		return false
	}
	sources, startVar := p.resolveSources(b)
	seen := make([]bool, p.st.NumVertices()+1)

	stopped := false
	for _, src := range sources {
		if startVar != 0 {
			b.Set(startVar, src)
		}
		for i := range seen {
			seen[i] = false
		}
		seen[src] = true
		if p.dfs(src, seen, b, cont) {
			stopped = true
		}
		if startVar != 0 {
			b.Clear(startVar)
		}
		if stopped {
			break
		}
	}
	return stopped
}

// resolveSources returns the concrete starting vertices to walk from, and
// the variable index to bind per-source (0 if Start is already fixed:
// either a constant or an already-bound variable).
func (p *Path) resolveSources(b *Bindings) (sources []term.ID, bindVar int) {
	if !p.Start.IsVar {
		return []term.ID{p.Start.Const}, 0
	}
	if bound := b.Get(p.Start.VarIdx); bound != 0 {
		return []term.ID{bound}, 0
	}
	// Unbound start variable: every vertex that is the subject of at
	// least one edge with this predicate, deduplicated (spec §4.5).
	seenSubj := make(map[term.ID]bool)
	p.st.MatchTriple(0, int64(p.Pred), 0, func(s, _, _ term.ID) bool {
		seenSubj[s] = true
		return false
	})
	out := make([]term.ID, 0, len(seenSubj))
	for s := range seenSubj {
		out = append(out, s)
	}
	return out, p.Start.VarIdx
}

func (p *Path) dfs(v term.ID, seen []bool, b *Bindings, cont Continuation) bool {
	stop := false
	p.st.MatchTriple(int64(v), int64(p.Pred), 0, func(_, _, o term.ID) bool {
		if seen[o] {
			return false
		}
		seen[o] = true
		if p.emit(o, b, cont) {
			stop = true
			return true
		}
		if p.dfs(o, seen, b, cont) {
			stop = true
			return true
		}
		return false
	})
	return stop
}

// emit checks End against a newly-reached vertex and, if it matches,
// invokes cont (binding End if it's an unbound variable).
func (p *Path) emit(v term.ID, b *Bindings, cont Continuation) bool {
	switch {
	case !p.End.IsVar:
		if v != p.End.Const {
			return false
		}
		return cont(b)
	default:
		if bound := b.Get(p.End.VarIdx); bound != 0 {
			if bound != v {
				return false
			}
			return cont(b)
		}
		b.Set(p.End.VarIdx, v)
		stop := cont(b)
		b.Clear(p.End.VarIdx)
		return stop
	}
}

package store

import "github.com/cayleygraph/tsengine/term"

// Visit is called once per matched triple. Returning true terminates
// iteration early (spec §4.2 "visit returning non-zero terminates
// iteration early").
type Visit func(s, p, o term.ID) bool

// MatchTriple is the primitive iterator over (s, p, o) patterns (spec
// §4.2, §4.4). Each argument uses a tri-valued convention:
//
//   - a positive value is a bound term id;
//   - a non-positive value (<= 0) is a wildcard;
//   - two or more arguments sharing the same negative value are a
//     repeated-variable constraint: the produced triple's corresponding
//     positions must resolve to the same term id.
//
// MatchTriple never allocates on the per-result path: the repeated-
// argument constraint is detected once, up front, into three booleans
// rather than a per-call map.
func (st *Store) MatchTriple(s, p, o int64, visit Visit) {
	sEqP := s < 0 && s == p
	sEqO := s < 0 && s == o
	pEqO := p < 0 && p == o

	satisfies := func(cs, cp, co term.ID) bool {
		if sEqP && cs != cp {
			return false
		}
		if sEqO && cs != co {
			return false
		}
		if pEqO && cp != co {
			return false
		}
		return true
	}

	switch {
	case s > 0:
		st.walkOut(term.ID(s), p, o, satisfies, visit)
	case o > 0:
		st.walkIn(p, s, term.ID(o), satisfies, visit)
	default:
		st.scanAll(p, satisfies, visit)
	}
}

func (st *Store) walkOut(s term.ID, p, o int64, satisfies func(s, p, o term.ID) bool, visit Visit) {
	if int(s) >= len(st.vertices.v) {
		return
	}
	for eid := st.vertices.get(s).OutHead; eid != 0; {
		e := st.edges.get(eid)
		next := e.NextOut
		if matchesWildcardOrBound(p, e.P) && matchesWildcardOrBound(o, e.O) && satisfies(s, e.P, e.O) {
			if visit(s, e.P, e.O) {
				return
			}
		}
		eid = next
	}
}

func (st *Store) walkIn(p, s int64, o term.ID, satisfies func(s, p, o term.ID) bool, visit Visit) {
	if int(o) >= len(st.vertices.v) {
		return
	}
	for eid := st.vertices.get(o).InHead; eid != 0; {
		e := st.edges.get(eid)
		next := e.NextIn
		if matchesWildcardOrBound(s, e.S) && matchesWildcardOrBound(p, e.P) && satisfies(e.S, e.P, o) {
			if visit(e.S, e.P, o) {
				return
			}
		}
		eid = next
	}
}

// scanAll walks every vertex's out-list in ascending vertex id order (spec
// §4.2: "the global scan follows ascending vertex id then list order").
func (st *Store) scanAll(p int64, satisfies func(s, p, o term.ID) bool, visit Visit) {
	for vid := 1; vid < len(st.vertices.v); vid++ {
		s := term.ID(vid)
		for eid := st.vertices.get(s).OutHead; eid != 0; {
			e := st.edges.get(eid)
			next := e.NextOut
			if matchesWildcardOrBound(p, e.P) && satisfies(s, e.P, e.O) {
				if visit(s, e.P, e.O) {
					return
				}
			}
			eid = next
		}
	}
}

// matchesWildcardOrBound reports whether concrete id satisfies arg under
// the tri-valued convention, ignoring repeated-variable constraints (those
// are checked separately via satisfies, since they span positions).
func matchesWildcardOrBound(arg int64, id term.ID) bool {
	if arg <= 0 {
		return true
	}
	return term.ID(arg) == id
}

package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/tsengine/term"
)

func mustIntern(t *testing.T, st *Store, tm term.Term) term.ID {
	t.Helper()
	id, err := st.Intern(tm)
	require.Nil(t, err)
	return id
}

// TestInternIdempotent covers invariant 3 from spec §8: interning the same
// term twice returns the same id and leaves dictionary size unchanged.
func TestInternIdempotent(t *testing.T) {
	st := New(16)
	a := mustIntern(t, st, term.NewIRI("http://example.org/a"))
	before := st.Dict().Len()
	b := mustIntern(t, st, term.NewIRI("http://example.org/a"))
	require.Equal(t, a, b)
	require.Equal(t, before, st.Dict().Len())
}

// TestAddTripleRejectsZero covers invariant 1: s, p, o must all be > 0.
func TestAddTripleRejectsZero(t *testing.T) {
	st := New(16)
	a := mustIntern(t, st, term.NewIRI("http://example.org/a"))
	p := mustIntern(t, st, term.NewIRI("http://example.org/p"))
	err := st.AddTriple(a, p, 0, time.Now())
	require.NotNil(t, err)
}

// TestDegreeMatchesListLength covers invariant 2: vertex degree equals the
// length of its adjacency list.
func TestDegreeMatchesListLength(t *testing.T) {
	st := New(16)
	a := mustIntern(t, st, term.NewIRI("http://example.org/a"))
	p := mustIntern(t, st, term.NewIRI("http://example.org/p"))
	b := mustIntern(t, st, term.NewIRI("http://example.org/b"))
	c := mustIntern(t, st, term.NewIRI("http://example.org/c"))

	require.Nil(t, st.AddTriple(a, p, b, time.Now()))
	require.Nil(t, st.AddTriple(a, p, c, time.Now()))

	v := st.Vertex(a)
	require.EqualValues(t, 2, v.OutDegree)

	n := 0
	for eid := v.OutHead; eid != 0; {
		e := st.EdgeAt(eid)
		n++
		eid = e.NextOut
	}
	require.Equal(t, 2, n)
}

// TestScenarioS1 implements spec §8 scenario S1: insert (<a>,<p>,<b>) and
// (<a>,<p>,<c>), then match (?s, <p>, ?o) and expect LIFO-order rows
// ?s=<a> ?o=<c> then ?s=<a> ?o=<b>.
func TestScenarioS1(t *testing.T) {
	st := New(16)
	a := mustIntern(t, st, term.NewIRI("a"))
	p := mustIntern(t, st, term.NewIRI("p"))
	b := mustIntern(t, st, term.NewIRI("b"))
	c := mustIntern(t, st, term.NewIRI("c"))
	require.Nil(t, st.AddTriple(a, p, b, time.Now()))
	require.Nil(t, st.AddTriple(a, p, c, time.Now()))

	var got [][2]term.ID
	st.MatchTriple(-1, int64(p), -2, func(s, p, o term.ID) bool {
		got = append(got, [2]term.ID{s, o})
		return false
	})
	require.Equal(t, [][2]term.ID{{a, c}, {a, b}}, got)
}

// TestScenarioS2 implements spec §8 scenario S2: a repeated variable in
// subject and object position must resolve to the same term.
func TestScenarioS2(t *testing.T) {
	st := New(16)
	x := mustIntern(t, st, term.NewIRI("x"))
	r := mustIntern(t, st, term.NewIRI("r"))
	y := mustIntern(t, st, term.NewIRI("y"))
	require.Nil(t, st.AddTriple(x, r, x, time.Now()))
	require.Nil(t, st.AddTriple(x, r, y, time.Now()))

	var got []term.ID
	st.MatchTriple(-1, int64(r), -1, func(s, p, o term.ID) bool {
		got = append(got, s)
		return false
	})
	require.Equal(t, []term.ID{x}, got)
}

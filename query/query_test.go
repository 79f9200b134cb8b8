package query

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/tsengine/store"
	"github.com/cayleygraph/tsengine/term"
)

func mustIntern(t *testing.T, st *store.Store, trm term.Term) term.ID {
	t.Helper()
	id, err := st.Intern(trm)
	require.Nil(t, err)
	return id
}

func collectRows(q *Query) [][]term.ID {
	var rows [][]term.ID
	_, err := q.Run(func(b *Bindings) bool {
		row := make([]term.ID, q.Vars.Width()+1)
		for i := 0; i <= q.Vars.Width(); i++ {
			row[i] = b.Get(i)
		}
		rows = append(rows, row)
		return false
	})
	if err != nil {
		panic(err)
	}
	return rows
}

// TestScenarioS1 is spec §8 S1: triple ?s <p> ?o over (a,p,c) then (a,p,b)
// (most-recent insert first, since MatchTriple walks out-lists LIFO).
func TestScenarioS1(t *testing.T) {
	st := store.New(16)
	a := mustIntern(t, st, term.NewIRI("http://ex/a"))
	p := mustIntern(t, st, term.NewIRI("http://ex/p"))
	b := mustIntern(t, st, term.NewIRI("http://ex/b"))
	c := mustIntern(t, st, term.NewIRI("http://ex/c"))
	require.Nil(t, st.AddTriple(a, p, b, time.Unix(1, 0)))
	require.Nil(t, st.AddTriple(a, p, c, time.Unix(2, 0)))

	q := NewQuery(st)
	sVar := q.Vars.Declare("s")
	oVar := q.Vars.Declare("o")
	bgp, err := NewBGP(st, []Pattern{{S: VarArg(sVar), P: ConstArg(p), O: VarArg(oVar)}})
	require.Nil(t, err)
	require.Nil(t, q.Append(bgp))
	require.Nil(t, q.Finish())

	rows := collectRows(q)
	require.Len(t, rows, 2)
	require.Equal(t, a, rows[0][sVar])
	require.Equal(t, c, rows[0][oVar])
	require.Equal(t, a, rows[1][sVar])
	require.Equal(t, b, rows[1][oVar])
}

// TestScenarioS2 is spec §8 S2: a repeated variable ?s <r> ?s matches only
// the self-loop.
func TestScenarioS2(t *testing.T) {
	st := store.New(16)
	x := mustIntern(t, st, term.NewIRI("http://ex/x"))
	y := mustIntern(t, st, term.NewIRI("http://ex/y"))
	r := mustIntern(t, st, term.NewIRI("http://ex/r"))
	require.Nil(t, st.AddTriple(x, r, x, time.Unix(1, 0)))
	require.Nil(t, st.AddTriple(x, r, y, time.Unix(2, 0)))

	q := NewQuery(st)
	sVar := q.Vars.Declare("s")
	bgp, err := NewBGP(st, []Pattern{{S: VarArg(sVar), P: ConstArg(r), O: VarArg(sVar)}})
	require.Nil(t, err)
	require.Nil(t, q.Append(bgp))
	require.Nil(t, q.Finish())

	rows := collectRows(q)
	require.Len(t, rows, 1)
	require.Equal(t, x, rows[0][sVar])
}

// TestScenarioS3 is spec §8 S3: a disconnected two-pattern BGP (?a <p> ?b
// . ?c <q> ?d) is a cartesian product and must be rejected at construction.
func TestScenarioS3(t *testing.T) {
	st := store.New(16)
	p := mustIntern(t, st, term.NewIRI("http://ex/p"))
	qp := mustIntern(t, st, term.NewIRI("http://ex/q"))

	vt := NewVarTable()
	a, b, c, d := vt.Declare("a"), vt.Declare("b"), vt.Declare("c"), vt.Declare("d")
	_, err := NewBGP(st, []Pattern{
		{S: VarArg(a), P: ConstArg(p), O: VarArg(b)},
		{S: VarArg(c), P: ConstArg(qp), O: VarArg(d)},
	})
	require.NotNil(t, err)
	require.True(t, strings.Contains(err.Msg, "cartesian"))
}

// TestScenarioS4 is spec §8 S4: BGP ?s ?p ?o + filter contains ?o "ell"
// over ("hello", "world") keeps exactly the "hello" row.
func TestScenarioS4(t *testing.T) {
	st := store.New(16)
	a := mustIntern(t, st, term.NewIRI("http://ex/a"))
	p := mustIntern(t, st, term.NewIRI("http://ex/p"))
	hello := mustIntern(t, st, term.NewPlainString("hello"))
	world := mustIntern(t, st, term.NewPlainString("world"))
	require.Nil(t, st.AddTriple(a, p, hello, time.Unix(1, 0)))
	require.Nil(t, st.AddTriple(a, p, world, time.Unix(2, 0)))

	q := NewQuery(st)
	sVar, pVar, oVar := q.Vars.Declare("s"), q.Vars.Declare("p"), q.Vars.Declare("o")
	bgp, err := NewBGP(st, []Pattern{{S: VarArg(sVar), P: VarArg(pVar), O: VarArg(oVar)}})
	require.Nil(t, err)
	require.Nil(t, q.Append(bgp))

	f := NewFilter(st, FilterContains, oVar)
	f.CompareValue = "ell"
	require.Nil(t, q.Append(f))
	require.Nil(t, q.Finish())

	rows := collectRows(q)
	require.Len(t, rows, 1)
	require.Equal(t, hello, rows[0][oVar])
}

// TestFilterSameTermAgainstConst exercises sameterm's "var or const" second
// operand (spec §4.5): filtering ?o against a constant IRI instead of
// another variable.
func TestFilterSameTermAgainstConst(t *testing.T) {
	st := store.New(16)
	a := mustIntern(t, st, term.NewIRI("http://ex/a"))
	p := mustIntern(t, st, term.NewIRI("http://ex/p"))
	hello := mustIntern(t, st, term.NewPlainString("hello"))
	world := mustIntern(t, st, term.NewPlainString("world"))
	require.Nil(t, st.AddTriple(a, p, hello, time.Unix(1, 0)))
	require.Nil(t, st.AddTriple(a, p, world, time.Unix(2, 0)))

	q := NewQuery(st)
	sVar, pVar, oVar := q.Vars.Declare("s"), q.Vars.Declare("p"), q.Vars.Declare("o")
	bgp, err := NewBGP(st, []Pattern{{S: VarArg(sVar), P: VarArg(pVar), O: VarArg(oVar)}})
	require.Nil(t, err)
	require.Nil(t, q.Append(bgp))

	f := NewFilter(st, FilterSameTerm, oVar)
	f.B = ConstArg(hello)
	require.Nil(t, q.Append(f))
	require.Nil(t, q.Finish())

	rows := collectRows(q)
	require.Len(t, rows, 1)
	require.Equal(t, hello, rows[0][oVar])
}

// TestScenarioS5 is spec §8 S5: path ?s <k> <d> over a <k> b <k> c <k> d
// reaches {a, b, c}.
func TestScenarioS5(t *testing.T) {
	st := store.New(16)
	a := mustIntern(t, st, term.NewIRI("http://ex/a"))
	b := mustIntern(t, st, term.NewIRI("http://ex/b"))
	c := mustIntern(t, st, term.NewIRI("http://ex/c"))
	d := mustIntern(t, st, term.NewIRI("http://ex/d"))
	k := mustIntern(t, st, term.NewIRI("http://ex/k"))
	require.Nil(t, st.AddTriple(a, k, b, time.Unix(1, 0)))
	require.Nil(t, st.AddTriple(b, k, c, time.Unix(2, 0)))
	require.Nil(t, st.AddTriple(c, k, d, time.Unix(3, 0)))

	q := NewQuery(st)
	sVar := q.Vars.Declare("s")
	path := NewPath(st, VarArg(sVar), k, ConstArg(d), PathPlus)
	require.Nil(t, q.Append(path))
	require.Nil(t, q.Finish())

	rows := collectRows(q)
	require.Len(t, rows, 3)
	got := map[term.ID]bool{}
	for _, row := range rows {
		got[row[sVar]] = true
	}
	require.True(t, got[a])
	require.True(t, got[b])
	require.True(t, got[c])
}

// TestInvariant7PathTerminatesOnCycle is spec §8 invariant 7: Path `+`
// over a cycle must terminate rather than looping forever, guarded by the
// per-source seen-bitmap.
func TestInvariant7PathTerminatesOnCycle(t *testing.T) {
	st := store.New(16)
	a := mustIntern(t, st, term.NewIRI("http://ex/a"))
	b := mustIntern(t, st, term.NewIRI("http://ex/b"))
	c := mustIntern(t, st, term.NewIRI("http://ex/c"))
	k := mustIntern(t, st, term.NewIRI("http://ex/k"))
	require.Nil(t, st.AddTriple(a, k, b, time.Unix(1, 0)))
	require.Nil(t, st.AddTriple(b, k, c, time.Unix(2, 0)))
	require.Nil(t, st.AddTriple(c, k, a, time.Unix(3, 0))) // closes the cycle

	q := NewQuery(st)
	sVar := q.Vars.Declare("s")
	eVar := q.Vars.Declare("e")
	path := NewPath(st, VarArg(sVar), k, VarArg(eVar), PathPlus)
	require.Nil(t, q.Append(path))
	require.Nil(t, q.Finish())

	done := make(chan [][]term.ID, 1)
	go func() { done <- collectRows(q) }()
	select {
	case rows := <-done:
		require.Len(t, rows, 6) // 3 sources x 2 other reachable vertices each around the 3-cycle
	case <-time.After(2 * time.Second):
		t.Fatal("Path + over a cycle did not terminate")
	}
}

// TestInvariant6UniqueNoAdjacentDuplicates is spec §8 invariant 6.
func TestInvariant6UniqueNoAdjacentDuplicates(t *testing.T) {
	st := store.New(16)
	a := mustIntern(t, st, term.NewIRI("http://ex/a"))
	p := mustIntern(t, st, term.NewIRI("http://ex/p"))
	x := mustIntern(t, st, term.NewIRI("http://ex/x"))
	require.Nil(t, st.AddTriple(a, p, x, time.Unix(1, 0)))
	require.Nil(t, st.AddTriple(a, p, x, time.Unix(2, 0))) // duplicate edge on purpose

	q := NewQuery(st)
	sVar, oVar := q.Vars.Declare("s"), q.Vars.Declare("o")
	bgp, err := NewBGP(st, []Pattern{{S: VarArg(sVar), P: ConstArg(p), O: VarArg(oVar)}})
	require.Nil(t, err)
	require.Nil(t, q.Append(bgp))
	sortOp := NewSortOp(st, []int{sVar, oVar}, true)
	require.Nil(t, q.Append(sortOp))
	require.Nil(t, q.Finish())

	rows := collectRows(q)
	require.Len(t, rows, 1)
}

// TestInvariant5WildcardBGPCrossCheck is spec §8 invariant 5: a BGP of k
// wildcard patterns over a connected variable set returns exactly the
// naive cross-product count restricted to connectivity, here k=1 (a
// single fully-wildcard pattern must return every edge exactly once).
func TestInvariant5WildcardBGPCrossCheck(t *testing.T) {
	st := store.New(16)
	a := mustIntern(t, st, term.NewIRI("http://ex/a"))
	b := mustIntern(t, st, term.NewIRI("http://ex/b"))
	p := mustIntern(t, st, term.NewIRI("http://ex/p"))
	require.Nil(t, st.AddTriple(a, p, b, time.Unix(1, 0)))
	require.Nil(t, st.AddTriple(b, p, a, time.Unix(2, 0)))
	require.Nil(t, st.AddTriple(a, p, a, time.Unix(3, 0)))

	q := NewQuery(st)
	sVar, pVar, oVar := q.Vars.Declare("s"), q.Vars.Declare("p"), q.Vars.Declare("o")
	bgp, err := NewBGP(st, []Pattern{{S: VarArg(sVar), P: VarArg(pVar), O: VarArg(oVar)}})
	require.Nil(t, err)
	require.Nil(t, q.Append(bgp))
	require.Nil(t, q.Finish())

	rows := collectRows(q)
	require.Equal(t, st.NumEdges(), len(rows))
}

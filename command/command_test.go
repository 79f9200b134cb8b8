package command

import (
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

func TestTokenizeQuotedLiteralWithLangSuffix(t *testing.T) {
	toks, err := Tokenize(`bgp ?s <http://ex/p> "hello world"@en`)
	require.Nil(t, err)
	require.Equal(t, []string{"bgp", "?s", "<http://ex/p>", `"hello world"@en`}, toks)
}

func TestTokenizeEscapedQuote(t *testing.T) {
	toks, err := Tokenize(`filter contains ?o "say \"hi\""`)
	require.Nil(t, err)
	require.Equal(t, []string{"filter", "contains", "?o", `"say \"hi\""`}, toks)
}

func TestTokenizeUnterminatedQuote(t *testing.T) {
	_, err := Tokenize(`bgp ?s <http://ex/p> "oops`)
	require.NotNil(t, err)
}

// TestDispatchBeginBgpEnd exercises a begin/bgp/end round trip: intern a
// single triple, build a BGP over it, then end the query and collect the
// one row it emits.
func TestDispatchBeginBgpEnd(t *testing.T) {
	st := store.New(16)
	a := mustIntern(t, st, term.NewIRI("http://ex/a"))
	p := mustIntern(t, st, term.NewIRI("http://ex/p"))
	b := mustIntern(t, st, term.NewIRI("http://ex/b"))
	require.Nil(t, st.AddTriple(a, p, b, time.Unix(1, 0)))

	c := NewContext(st)

	toks, err := Tokenize(`begin ?s <http://ex/p> ?o`)
	require.Nil(t, err)
	_, cerr := c.Dispatch(toks, nil)
	require.Nil(t, cerr)

	toks, err = Tokenize(`end`)
	require.Nil(t, err)
	var rows [][]Cell
	res, cerr := c.Dispatch(toks, func(vals []Cell) bool {
		row := make([]Cell, len(vals))
		copy(row, vals)
		rows = append(rows, row)
		return false
	})
	require.Nil(t, cerr)
	require.Equal(t, []string{"s", "o"}, res.Vars)
	require.Len(t, rows, 1)
	require.Equal(t, a, rows[0][0].ID)
	require.Equal(t, b, rows[0][1].ID)
}

// TestDispatchAggCount exercises `agg GROUP_VAR count * [triples]`, verifying
// the synthetic count column surfaces through Cell's Aux side-channel
// instead of being silently read back as a zero term id.
func TestDispatchAggCount(t *testing.T) {
	st := store.New(16)
	a := mustIntern(t, st, term.NewIRI("http://ex/a"))
	b := mustIntern(t, st, term.NewIRI("http://ex/b"))
	c := mustIntern(t, st, term.NewIRI("http://ex/c"))
	p := mustIntern(t, st, term.NewIRI("http://ex/p"))
	require.Nil(t, st.AddTriple(a, p, b, time.Unix(1, 0)))
	require.Nil(t, st.AddTriple(a, p, c, time.Unix(2, 0)))

	ctx := NewContext(st)

	toks, err := Tokenize(`begin`)
	require.Nil(t, err)
	_, cerr := ctx.Dispatch(toks, nil)
	require.Nil(t, cerr)

	toks, err = Tokenize(`agg ?s count * ?s <http://ex/p> ?o`)
	require.Nil(t, err)
	_, cerr = ctx.Dispatch(toks, nil)
	require.Nil(t, cerr)

	toks, err = Tokenize(`end`)
	require.Nil(t, err)
	var rows [][]Cell
	_, cerr = ctx.Dispatch(toks, func(vals []Cell) bool {
		row := make([]Cell, len(vals))
		copy(row, vals)
		rows = append(rows, row)
		return false
	})
	require.Nil(t, cerr)
	require.Len(t, rows, 1)
	require.Equal(t, a, rows[0][0].ID)
	// Columns are s, o, __count: the count is the third declared variable.
	require.True(t, rows[0][2].IsAux)
	require.Equal(t, int64(2), rows[0][2].AuxVal)
}

// TestDispatchCartesianBgpResetsConstruction confirms a construction error
// (spec §7) both reports the error and frees c.q, so a fresh `begin` works.
func TestDispatchCartesianBgpResetsConstruction(t *testing.T) {
	st := store.New(16)
	p := mustIntern(t, st, term.NewIRI("http://ex/p"))
	qp := mustIntern(t, st, term.NewIRI("http://ex/q"))
	_ = p
	_ = qp

	ctx := NewContext(st)
	toks, err := Tokenize(`begin ?a <http://ex/p> ?b ?c <http://ex/q> ?d`)
	require.Nil(t, err)
	_, cerr := ctx.Dispatch(toks, nil)
	require.NotNil(t, cerr)

	// A second begin must succeed since the failed construction reset c.q.
	toks, err = Tokenize(`begin`)
	require.Nil(t, err)
	_, cerr = ctx.Dispatch(toks, nil)
	require.Nil(t, cerr)
}

func TestDispatchCount(t *testing.T) {
	st := store.New(16)
	a := mustIntern(t, st, term.NewIRI("http://ex/a"))
	p := mustIntern(t, st, term.NewIRI("http://ex/p"))
	b := mustIntern(t, st, term.NewIRI("http://ex/b"))
	require.Nil(t, st.AddTriple(a, p, b, time.Unix(1, 0)))

	ctx := NewContext(st)
	toks, err := Tokenize(`begin ?s <http://ex/p> ?o`)
	require.Nil(t, err)
	_, cerr := ctx.Dispatch(toks, nil)
	require.Nil(t, cerr)

	toks, err = Tokenize(`count`)
	require.Nil(t, err)
	res, cerr := ctx.Dispatch(toks, nil)
	require.Nil(t, cerr)
	require.True(t, res.IsCount)
	require.Equal(t, int64(1), res.Count)
}

func TestDispatchImmediateTriple(t *testing.T) {
	st := store.New(16)
	a := mustIntern(t, st, term.NewIRI("http://ex/a"))
	p := mustIntern(t, st, term.NewIRI("http://ex/p"))
	b := mustIntern(t, st, term.NewIRI("http://ex/b"))
	require.Nil(t, st.AddTriple(a, p, b, time.Unix(1, 0)))

	ctx := NewContext(st)
	toks, err := Tokenize(`triple 0 0 0`)
	require.Nil(t, err)
	var rows [][]Cell
	res, cerr := ctx.Dispatch(toks, func(vals []Cell) bool {
		row := make([]Cell, len(vals))
		copy(row, vals)
		rows = append(rows, row)
		return false
	})
	require.Nil(t, cerr)
	require.Equal(t, []string{"s", "p", "o"}, res.Vars)
	require.Len(t, rows, 1)
	require.Equal(t, a, rows[0][0].ID)
	require.Equal(t, p, rows[0][1].ID)
	require.Equal(t, b, rows[0][2].ID)
}

func TestDispatchLoadRejectedOverProtocol(t *testing.T) {
	st := store.New(16)
	ctx := NewContext(st)
	toks, err := Tokenize(`load /tmp/whatever.snap`)
	require.Nil(t, err)
	_, cerr := ctx.Dispatch(toks, nil)
	require.NotNil(t, cerr)
}

func TestSetUnsetFlags(t *testing.T) {
	st := store.New(16)
	ctx := NewContext(st)

	toks, err := Tokenize(`set limit 10`)
	require.Nil(t, err)
	_, cerr := ctx.Dispatch(toks, nil)
	require.Nil(t, cerr)
	require.Equal(t, 10, ctx.Flags.Limit)

	toks, err = Tokenize(`set print`)
	require.Nil(t, err)
	_, cerr = ctx.Dispatch(toks, nil)
	require.Nil(t, cerr)
	require.True(t, ctx.Flags.Print)

	toks, err = Tokenize(`unset print`)
	require.Nil(t, err)
	_, cerr = ctx.Dispatch(toks, nil)
	require.Nil(t, cerr)
	require.False(t, ctx.Flags.Print)
}

package snapshot

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/tsengine/store"
	"github.com/cayleygraph/tsengine/term"
)

func smallGraph(t *testing.T) *store.Store {
	t.Helper()
	st := store.New(16)

	a, err := st.Intern(term.NewIRI("http://example.org/a"))
	require.Nil(t, err)
	p, err := st.Intern(term.NewIRI("http://example.org/p"))
	require.Nil(t, err)
	b, err := st.Intern(term.NewIRI("http://example.org/b"))
	require.Nil(t, err)
	lit, err := st.Intern(term.NewPlainString("hello"))
	require.Nil(t, err)
	langLit, _ := term.NewLangLiteral("bonjour", "fr")
	fr, err := st.Intern(langLit)
	require.Nil(t, err)

	require.Nil(t, st.AddTriple(a, p, b, time.Unix(1000, 0)))
	require.Nil(t, st.AddTriple(a, p, lit, time.Unix(1001, 0)))
	require.Nil(t, st.AddTriple(a, p, fr, time.Unix(1002, 0)))
	require.Nil(t, st.AddTriple(b, p, a, time.Unix(1003, 0)))
	require.Nil(t, st.AddTriple(b, p, lit, time.Unix(1004, 0)))
	require.Nil(t, st.AddTriple(lit, p, fr, time.Unix(1005, 0)))
	require.Nil(t, st.AddTriple(fr, p, a, time.Unix(1006, 0)))

	require.Equal(t, 5, st.Dict().Len())
	require.Equal(t, 7, st.NumEdges())
	return st
}

// TestRoundTrip is spec §8 invariant 4 / scenario S6: dump then load must
// reproduce the same terms and the same multiset of edges with the same
// adjacency orderings.
func TestRoundTrip(t *testing.T) {
	st := smallGraph(t)

	var buf bytes.Buffer
	require.Nil(t, Dump(st, &buf))

	st2, err := Load(&buf)
	require.Nil(t, err)

	require.Equal(t, st.Dict().Len(), st2.Dict().Len())
	require.Equal(t, st.NumEdges(), st2.NumEdges())

	for id := term.ID(1); int(id) <= st.Dict().Len(); id++ {
		want, ok := st.TermOf(id)
		require.True(t, ok)
		got, ok := st2.TermOf(id)
		require.True(t, ok)
		require.Equal(t, want, got)

		wv, gv := st.Vertex(id), st2.Vertex(id)
		require.Equal(t, wv.OutDegree, gv.OutDegree)
		require.Equal(t, wv.InDegree, gv.InDegree)
		require.Equal(t, wv.MTime, gv.MTime)
	}

	for i := 1; i <= st.NumEdges(); i++ {
		we := st.EdgeAt(store.EdgeID(i))
		ge := st2.EdgeAt(store.EdgeID(i))
		require.Equal(t, we, ge)
	}
}

func TestBadMagicRejected(t *testing.T) {
	_, err := Load(bytes.NewReader([]byte("XXXX")))
	require.NotNil(t, err)
}

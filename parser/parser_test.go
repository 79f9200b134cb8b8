package parser

import (
	"bytes"
	"compress/gzip"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/tsengine/store"
)

func TestNTriplesAdapterBasic(t *testing.T) {
	input := `<http://ex/a> <http://ex/p> "hello" .
# a comment
<http://ex/a> <http://ex/p> _:b1 .
<http://ex/a> <http://ex/p> "bonjour"@fr .
<http://ex/a> <http://ex/p> "42"^^<http://www.w3.org/2001/XMLSchema#integer> .
`
	a := NewNTriplesAdapter(strings.NewReader(input))

	tr1, err := a.ReadTriple()
	require.NoError(t, err)
	require.Equal(t, TokenIRI, tr1.S.Kind)
	require.Equal(t, "http://ex/a", tr1.S.Value)
	require.Equal(t, TokenPlain, tr1.O.Kind)
	require.Equal(t, "hello", tr1.O.Value)

	tr2, err := a.ReadTriple()
	require.NoError(t, err)
	require.Equal(t, TokenBlank, tr2.O.Kind)
	require.Equal(t, "b1", tr2.O.Value)

	tr3, err := a.ReadTriple()
	require.NoError(t, err)
	require.Equal(t, TokenLang, tr3.O.Kind)
	require.Equal(t, "bonjour", tr3.O.Value)
	require.Equal(t, "fr", tr3.O.Lang)

	tr4, err := a.ReadTriple()
	require.NoError(t, err)
	require.Equal(t, TokenTyped, tr4.O.Kind)
	require.Equal(t, "42", tr4.O.Value)
	require.Equal(t, "http://www.w3.org/2001/XMLSchema#integer", tr4.O.Datatype)

	_, err = a.ReadTriple()
	require.Error(t, err)
}

func TestDetectFormatStripsCompressionSuffix(t *testing.T) {
	require.Equal(t, FormatNTriples, DetectFormat("dump.nt.gz"))
	require.Equal(t, FormatTurtle, DetectFormat("dump.ttl.bz2"))
	require.Equal(t, FormatNQuads, DetectFormat("dump.nq"))
}

func TestOpenTransparentGzip(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	gz.Write([]byte(`<http://ex/a> <http://ex/p> <http://ex/b> .` + "\n"))
	gz.Close()

	adapter, err := Open(&buf, FormatNTriples)
	require.NoError(t, err)
	tr, err := adapter.ReadTriple()
	require.NoError(t, err)
	require.Equal(t, "http://ex/a", tr.S.Value)
}

func TestOpenUnsupportedFormat(t *testing.T) {
	_, err := Open(strings.NewReader(`<http://ex/a> <http://ex/p> <http://ex/b> .`+"\n"), FormatTurtle)
	require.IsType(t, &UnsupportedFormatError{}, err)
}

func TestImportEndToEnd(t *testing.T) {
	input := `<http://ex/a> <http://ex/p> "hi"@en .
<http://ex/a> <http://ex/p> _:x .
`
	st := store.New(16)
	adapter := NewNTriplesAdapter(strings.NewReader(input))
	n, ierr := Import(st, adapter, time.Unix(1, 0), 1)
	require.Nil(t, ierr)
	require.Equal(t, 2, n)
	require.Equal(t, 2, st.NumEdges())
}

// TestImportSkipsLexicalErrorAndContinues is spec §7: a lexical error on
// one triple (here, an overlong language tag) is logged and only that
// triple is skipped; ingest continues with the triples that follow.
func TestImportSkipsLexicalErrorAndContinues(t *testing.T) {
	badLang := strings.Repeat("x", 64)
	input := `<http://ex/a> <http://ex/p> "good-1" .
<http://ex/a> <http://ex/p> "bad"@` + badLang + ` .
<http://ex/a> <http://ex/p> "good-2" .
`
	st := store.New(16)
	adapter := NewNTriplesAdapter(strings.NewReader(input))
	n, ierr := Import(st, adapter, time.Unix(1, 0), 1)
	require.Nil(t, ierr)
	require.Equal(t, 2, n)
	require.Equal(t, 2, st.NumEdges())
}

// Package snapshot implements the binary dump/load codec described in
// spec §4.3: a big-endian, fixed-width record format for the whole store
// (term dictionary plus vertex and edge arenas).
package snapshot

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/cayleygraph/tsengine/errs"
	"github.com/cayleygraph/tsengine/store"
	"github.com/cayleygraph/tsengine/term"
)

var magic = [4]byte{'3', 'S', 'T', 'R'}

// Dump writes the whole store to w in the format spec §4.3 describes.
//
// Design-note fix applied: the reference implementation stores each
// vertex's mtime host-endian, which spec §9 flags as "a reproducibility
// hazard... fix by writing big-endian." This codec always writes mtime
// big-endian, along with everything else.
func Dump(st *store.Store, w io.Writer) *errs.Error {
	bw := bufio.NewWriter(w)

	if _, err := bw.Write(magic[:]); err != nil {
		return errs.IOErr("snapshot: write magic: %v", err)
	}

	nodesUsed := st.NumVertices()
	edgesUsed := st.NumEdges()

	header := []uint32{
		uint32(st.EdgeCapacity()),
		uint32(edgesUsed),
		uint32(st.VertexCapacity()),
		uint32(nodesUsed),
	}
	for _, v := range header {
		if err := writeU32(bw, v); err != nil {
			return err
		}
	}

	var encErr *errs.Error
	st.Dict().Each(func(id term.ID, t term.Term) {
		if encErr != nil {
			return
		}
		v := st.Vertex(id)
		encErr = writeNode(bw, v, t)
	})
	if encErr != nil {
		return encErr
	}

	for i := 1; i <= edgesUsed; i++ {
		e := st.EdgeAt(store.EdgeID(i))
		if err := writeEdge(bw, e); err != nil {
			return err
		}
	}

	if err := bw.Flush(); err != nil {
		return errs.IOErr("snapshot: flush: %v", err)
	}
	return nil
}

func writeNode(w *bufio.Writer, v store.Vertex, t term.Term) *errs.Error {
	fields := []uint64{v.MTime}
	if err := writeU64(w, fields[0]); err != nil {
		return err
	}
	for _, f := range []uint32{v.OutDegree, v.InDegree, uint32(v.OutHead), uint32(v.InHead)} {
		if err := writeU32(w, f); err != nil {
			return err
		}
	}

	var extra uint32
	switch t.Kind {
	case term.Blank:
		extra = t.PrefixID
	case term.LangLiteral:
		extra = uint32(len(t.Lang))
	case term.TypedLiteral:
		extra = uint32(t.DatatypeID)
	}

	if err := writeU32(w, uint32(t.Kind)); err != nil {
		return err
	}
	if err := writeU32(w, extra); err != nil {
		return err
	}
	if err := writeU32(w, uint32(len(t.Value))); err != nil {
		return err
	}
	if _, ioerr := w.WriteString(t.Value); ioerr != nil {
		return errs.IOErr("snapshot: write value: %v", ioerr)
	}
	if ioerr := w.WriteByte(0); ioerr != nil {
		return errs.IOErr("snapshot: write value NUL: %v", ioerr)
	}
	if t.Kind == term.LangLiteral {
		if _, ioerr := w.WriteString(t.Lang); ioerr != nil {
			return errs.IOErr("snapshot: write lang: %v", ioerr)
		}
		if ioerr := w.WriteByte(0); ioerr != nil {
			return errs.IOErr("snapshot: write lang NUL: %v", ioerr)
		}
	}
	return nil
}

func writeEdge(w *bufio.Writer, e store.Edge) *errs.Error {
	for _, f := range []uint32{uint32(e.S), uint32(e.P), uint32(e.O), uint32(e.NextIn), uint32(e.NextOut)} {
		if err := writeU32(w, f); err != nil {
			return err
		}
	}
	return nil
}

func writeU32(w io.Writer, v uint32) *errs.Error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	if _, err := w.Write(buf[:]); err != nil {
		return errs.IOErr("snapshot: write u32: %v", err)
	}
	return nil
}

func writeU64(w io.Writer, v uint64) *errs.Error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	if _, err := w.Write(buf[:]); err != nil {
		return errs.IOErr("snapshot: write u64: %v", err)
	}
	return nil
}

// Load reads a snapshot produced by Dump and returns a fresh, writable
// Store. Loading is not incremental: it fully replaces the dictionary and
// arenas (spec §4.3).
func Load(r io.Reader) (*store.Store, *errs.Error) {
	br := bufio.NewReader(r)

	var gotMagic [4]byte
	if _, err := io.ReadFull(br, gotMagic[:]); err != nil {
		return nil, errs.IOErr("snapshot: read magic: %v", err)
	}
	if gotMagic != magic {
		return nil, errs.ProtocolErr("snapshot: bad magic %q", gotMagic[:])
	}

	edgesAlloc, err := readU32(br)
	if err != nil {
		return nil, err
	}
	edgesUsed, err := readU32(br)
	if err != nil {
		return nil, err
	}
	nodesAlloc, err := readU32(br)
	if err != nil {
		return nil, err
	}
	nodesUsed, err := readU32(br)
	if err != nil {
		return nil, err
	}

	vertices := make([]store.Vertex, 1, maxu32(nodesAlloc, nodesUsed)+1)
	terms := make([]term.Term, 1, maxu32(nodesAlloc, nodesUsed)+1)
	for i := uint32(0); i < nodesUsed; i++ {
		v, t, err := readNode(br)
		if err != nil {
			return nil, err
		}
		vertices = append(vertices, v)
		terms = append(terms, t)
	}

	edges := make([]store.Edge, 1, maxu32(edgesAlloc, edgesUsed)+1)
	for i := uint32(0); i < edgesUsed; i++ {
		e, err := readEdge(br)
		if err != nil {
			return nil, err
		}
		if int(e.S) >= len(terms) || int(e.O) >= len(terms) {
			return nil, errs.ProtocolErr("snapshot: edge references out-of-range vertex (s=%d o=%d, nodes=%d)", e.S, e.O, len(terms)-1)
		}
		edges = append(edges, e)
	}

	dict := term.FromTerms(terms)
	return store.FromParts(dict, vertices, edges), nil
}

func readNode(r *bufio.Reader) (store.Vertex, term.Term, *errs.Error) {
	var v store.Vertex
	mtime, err := readU64(r)
	if err != nil {
		return v, term.Term{}, err
	}
	v.MTime = mtime

	outDeg, err := readU32(r)
	if err != nil {
		return v, term.Term{}, err
	}
	inDeg, err := readU32(r)
	if err != nil {
		return v, term.Term{}, err
	}
	outHead, err := readU32(r)
	if err != nil {
		return v, term.Term{}, err
	}
	inHead, err := readU32(r)
	if err != nil {
		return v, term.Term{}, err
	}
	v.OutDegree, v.InDegree = outDeg, inDeg
	v.OutHead, v.InHead = store.EdgeID(outHead), store.EdgeID(inHead)

	kindU, err := readU32(r)
	if err != nil {
		return v, term.Term{}, err
	}
	extra, err := readU32(r)
	if err != nil {
		return v, term.Term{}, err
	}
	valLen, err := readU32(r)
	if err != nil {
		return v, term.Term{}, err
	}
	value, ioerr := readNulTerminated(r, valLen)
	if ioerr != nil {
		return v, term.Term{}, ioerr
	}

	t := term.Term{Kind: term.Kind(kindU), Value: value}
	switch t.Kind {
	case term.Blank:
		t.PrefixID = extra
	case term.TypedLiteral:
		t.DatatypeID = term.ID(extra)
	case term.LangLiteral:
		lang, lerr := readNulTerminated(r, extra)
		if lerr != nil {
			return v, term.Term{}, lerr
		}
		t.Lang = lang
	}
	return v, t, nil
}

func readEdge(r *bufio.Reader) (store.Edge, *errs.Error) {
	var e store.Edge
	s, err := readU32(r)
	if err != nil {
		return e, err
	}
	p, err := readU32(r)
	if err != nil {
		return e, err
	}
	o, err := readU32(r)
	if err != nil {
		return e, err
	}
	nextIn, err := readU32(r)
	if err != nil {
		return e, err
	}
	nextOut, err := readU32(r)
	if err != nil {
		return e, err
	}
	e.S, e.P, e.O = term.ID(s), term.ID(p), term.ID(o)
	e.NextIn, e.NextOut = store.EdgeID(nextIn), store.EdgeID(nextOut)
	return e, nil
}

func readU32(r io.Reader) (uint32, *errs.Error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, errs.IOErr("snapshot: read u32: %v", err)
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func readU64(r io.Reader) (uint64, *errs.Error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, errs.IOErr("snapshot: read u64: %v", err)
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

func readNulTerminated(r *bufio.Reader, length uint32) (string, *errs.Error) {
	buf := make([]byte, length+1)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", errs.IOErr("snapshot: read value: %v", err)
	}
	return string(buf[:length]), nil
}

func maxu32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

package store

import (
	"sync"
	"time"

	"github.com/cayleygraph/tsengine/errs"
	"github.com/cayleygraph/tsengine/term"
)

// Store owns the term dictionary and the paired vertex/edge arenas. It is
// mutable (ingest-time) until Freeze is called, after which it is shared
// read-only across server workers without locking (spec §5, "Global/
// process-wide mutable store flipped to read-only").
//
// There is deliberately no separate StoreBuilder type: the same struct
// serves both roles, gated by readOnly, mirroring how the teacher's
// in-memory quad store is built incrementally and then handed to readers.
// Mutating methods panic if called after Freeze, which spec §5 calls "a
// programming error", not a recoverable condition.
type Store struct {
	dict     *term.Dictionary
	vertices *vertexArena
	edges    *edgeArena

	mu       sync.RWMutex // guards readOnly transition only
	readOnly bool
}

// New creates an empty, writable Store with room for capacity terms/edges
// (spec §4.1 "Initial capacity is configurable").
func New(capacity int) *Store {
	return &Store{
		dict:     term.NewDictionary(capacity),
		vertices: newVertexArena(capacity),
		edges:    newEdgeArena(capacity),
	}
}

// Dict returns the term dictionary. Safe to call concurrently once frozen.
func (st *Store) Dict() *term.Dictionary { return st.dict }

// ReadOnly reports whether Freeze has been called.
func (st *Store) ReadOnly() bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.readOnly
}

// Freeze flips the store to read-only. After this call, workers may share
// the Store by reference across goroutines without further locking: no
// method below mutates state without first checking readOnly.
func (st *Store) Freeze() {
	st.mu.Lock()
	st.readOnly = true
	st.mu.Unlock()
}

func (st *Store) mustBeWritable(op string) {
	if st.ReadOnly() {
		panic("store: " + op + " called on a read-only (frozen) store")
	}
}

// Intern interns t, growing the vertex arena in lockstep with the
// dictionary so that every term id has a corresponding Vertex (spec §4.1).
func (st *Store) Intern(t term.Term) (term.ID, *errs.Error) {
	st.mustBeWritable("Intern")
	id, err := st.dict.Intern(t)
	if err != nil {
		return 0, err
	}
	st.vertices.ensure(id)
	return id, nil
}

// Lookup is the non-creating variant of Intern.
func (st *Store) Lookup(t term.Term) term.ID { return st.dict.Lookup(t) }

// TermOf is the constant-time reverse lookup (spec §4.1).
func (st *Store) TermOf(id term.ID) (term.Term, bool) { return st.dict.TermOf(id) }

// NumVertices returns the number of live vertex slots (spec "vertex 0
// reserved/unused; ids start at 1").
func (st *Store) NumVertices() int { return st.vertices.len() }

// NumEdges returns the number of inserted edges.
func (st *Store) NumEdges() int { return st.edges.len() }

// Vertex returns the vertex record for id. Panics on out-of-range id, same
// as a direct array index would: callers are expected to only pass ids
// obtained from this store.
func (st *Store) Vertex(id term.ID) Vertex { return *st.vertices.get(id) }

// AddTriple appends an edge (s, p, o), prepending it to s's out-list and
// o's in-list and bumping both vertices' degree and mtime (spec §4.2).
// All of s, p, o must be positive and already-interned term ids.
func (st *Store) AddTriple(s, p, o term.ID, mtime time.Time) *errs.Error {
	st.mustBeWritable("AddTriple")
	if s == 0 || p == 0 || o == 0 {
		return errs.Construct("add_triple: s, p, o must all be non-zero (got s=%d p=%d o=%d)", s, p, o)
	}
	st.vertices.ensure(s)
	st.vertices.ensure(o)
	st.vertices.ensure(p) // predicates are terms too and may be queried as subjects/objects elsewhere

	eid := st.edges.append(Edge{S: s, P: p, O: o})
	e := st.edges.get(eid)

	sv := st.vertices.get(s)
	e.NextOut = sv.OutHead
	sv.OutHead = eid
	sv.OutDegree++

	ov := st.vertices.get(o)
	e.NextIn = ov.InHead
	ov.InHead = eid
	ov.InDegree++

	mt := uint64(mtime.UnixNano())
	sv.MTime = mt
	ov.MTime = mt
	return nil
}

// EdgeAt returns the edge record for id (1-based; 0 is the list sentinel).
func (st *Store) EdgeAt(id EdgeID) Edge { return *st.edges.get(id) }

// VertexCapacity and EdgeCapacity expose the current arena allocation
// sizes, written to snapshots as edges_alloc/nodes_alloc (spec §4.3).
func (st *Store) VertexCapacity() int { return st.vertices.capacity() }
func (st *Store) EdgeCapacity() int   { return st.edges.capacity() }

// FromParts assembles a Store directly from an id-ordered, already-linked
// set of vertices and edges plus a rebuilt dictionary. This is the
// counterpart snapshot.Load uses: unlike Intern/AddTriple, it does not
// relink adjacency lists, since the records loaded off disk already carry
// their NextOut/NextIn threading verbatim (spec §4.3 "Load replaces the
// store; it is not incremental").
func FromParts(dict *term.Dictionary, vertices []Vertex, edges []Edge) *Store {
	return &Store{
		dict:     dict,
		vertices: newVertexArenaFrom(vertices),
		edges:    newEdgeArenaFrom(edges),
	}
}

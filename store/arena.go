// Package store implements the Graph Store (spec §4.2): paired vertex and
// edge arenas forming doubly-threaded adjacency lists indexed by term id,
// plus the primitive Triple Matcher (§4.4) built on them.
package store

import "github.com/cayleygraph/tsengine/term"

// EdgeID identifies an edge within the edge arena. 0 is the sentinel
// "end of list" value; real edges start at 1.
type EdgeID uint32

// Vertex is one per interned term id. Index 0 is reserved and unused; ids
// start at 1, mirroring term.Dictionary's own indexing so a vertex id and
// a term id always coincide.
type Vertex struct {
	OutDegree uint32
	InDegree  uint32
	OutHead   EdgeID // head of s's out-list, most-recently-added edge first
	InHead    EdgeID // head of o's in-list
	MTime     uint64
}

// Edge is one per inserted triple (spec §3). NextOut/NextIn thread the
// edge into its subject's out-list and its object's in-list respectively;
// an edge never appears in any predicate-indexed list, since predicate
// lookups are post-filtered scans over these two lists (spec §4.2).
type Edge struct {
	S, P, O         term.ID
	NextOut, NextIn EdgeID
}

const defaultArenaCapacity = 1024

// vertexArena is a doubling slice of Vertex, index 0 reserved.
type vertexArena struct {
	v []Vertex
}

func newVertexArena(capacity int) *vertexArena {
	if capacity <= 0 {
		capacity = defaultArenaCapacity
	}
	return &vertexArena{v: make([]Vertex, 1, capacity+1)}
}

func (a *vertexArena) ensure(id term.ID) {
	for int(id) >= len(a.v) {
		if len(a.v) == cap(a.v) {
			next := make([]Vertex, len(a.v), cap(a.v)*2)
			copy(next, a.v)
			a.v = next
		}
		a.v = append(a.v, Vertex{})
	}
}

func (a *vertexArena) get(id term.ID) *Vertex {
	return &a.v[id]
}

func (a *vertexArena) len() int { return len(a.v) - 1 }

func (a *vertexArena) capacity() int { return cap(a.v) - 1 }

// newVertexArenaFrom wraps an already-populated, id-ordered vertex slice
// (index 0 must be the unused placeholder), as produced by snapshot.Load.
func newVertexArenaFrom(vertices []Vertex) *vertexArena {
	return &vertexArena{v: vertices}
}

// edgeArena is a doubling slice of Edge, index 0 reserved as the
// "end of list" sentinel.
type edgeArena struct {
	e []Edge
}

func newEdgeArena(capacity int) *edgeArena {
	if capacity <= 0 {
		capacity = defaultArenaCapacity
	}
	return &edgeArena{e: make([]Edge, 1, capacity+1)}
}

func (a *edgeArena) append(e Edge) EdgeID {
	if len(a.e) == cap(a.e) {
		next := make([]Edge, len(a.e), cap(a.e)*2)
		copy(next, a.e)
		a.e = next
	}
	a.e = append(a.e, e)
	return EdgeID(len(a.e) - 1)
}

func (a *edgeArena) get(id EdgeID) *Edge {
	return &a.e[id]
}

func (a *edgeArena) len() int { return len(a.e) - 1 }

func (a *edgeArena) capacity() int { return cap(a.e) - 1 }

// newEdgeArenaFrom wraps an already-populated, id-ordered edge slice
// (index 0 must be the sentinel), as produced by snapshot.Load.
func newEdgeArenaFrom(edges []Edge) *edgeArena {
	return &edgeArena{e: edges}
}

// Package query implements the Query object and operator pipeline (spec
// §3 "Query", §4.5): BGP, Filter, Path, Project, Sort/Unique, each a node
// in a singly-linked operator chain evaluated by recursive continuation.
package query

import "github.com/cayleygraph/tsengine/term"

// Bindings is the fixed-size binding array described in spec §3: slot 0
// holds the array width, slot i holds the currently bound term id for
// variable -i, or 0 if unbound. Binding arrays are allocated once per
// top-level match invocation and mutated in place during recursion.
type Bindings struct {
	slots []term.ID

	// Aux carries scalar (non-term) values produced by Agg, keyed by
	// variable id, since an aggregate count is an integer rather than an
	// interned RDF term and a read-only query must not mint new dictionary
	// entries to represent one (spec §9 open-question decision).
	Aux map[int]int64
}

// NewBindings allocates a binding array wide enough for `width` variables
// (variable ids 1..width).
func NewBindings(width int) *Bindings {
	b := &Bindings{slots: make([]term.ID, width+1)}
	b.slots[0] = term.ID(width)
	return b
}

// Width returns the number of variable slots (excluding the width slot
// itself).
func (b *Bindings) Width() int { return int(b.slots[0]) }

// Get returns the bound term id for variable varIdx (1-based), or 0 if
// unbound.
func (b *Bindings) Get(varIdx int) term.ID { return b.slots[varIdx] }

// Set binds variable varIdx to id.
func (b *Bindings) Set(varIdx int, id term.ID) { b.slots[varIdx] = id }

// Clear unbinds variable varIdx.
func (b *Bindings) Clear(varIdx int) { b.slots[varIdx] = 0 }

// Clone returns an independent copy, used by materializing operators
// (Sort/Unique) that must retain a snapshot of bindings across many rows.
func (b *Bindings) Clone() *Bindings {
	cp := make([]term.ID, len(b.slots))
	copy(cp, b.slots)
	out := &Bindings{slots: cp}
	if b.Aux != nil {
		out.Aux = make(map[int]int64, len(b.Aux))
		for k, v := range b.Aux {
			out.Aux[k] = v
		}
	}
	return out
}

// SetAux stashes a scalar value for varIdx (used by Agg for counts).
func (b *Bindings) SetAux(varIdx int, v int64) {
	if b.Aux == nil {
		b.Aux = make(map[int]int64)
	}
	b.Aux[varIdx] = v
}

// GetAux retrieves a scalar value stashed by SetAux.
func (b *Bindings) GetAux(varIdx int) (int64, bool) {
	v, ok := b.Aux[varIdx]
	return v, ok
}

// Equal reports whether two binding arrays hold identical values in every
// slot, used by Unique to collapse adjacent duplicate rows.
func (b *Bindings) Equal(o *Bindings) bool {
	if len(b.slots) != len(o.slots) {
		return false
	}
	for i := range b.slots {
		if b.slots[i] != o.slots[i] {
			return false
		}
	}
	return true
}

// VarTable owns the 1-based variable id <-> name mapping for a Query
// (spec §3 "Query: owns a variable table").
type VarTable struct {
	names []string // index 0 unused
	byName map[string]int
}

func NewVarTable() *VarTable {
	return &VarTable{names: []string{""}, byName: make(map[string]int)}
}

// Declare returns the id for name, assigning a fresh one if this is the
// first reference.
func (vt *VarTable) Declare(name string) int {
	if id, ok := vt.byName[name]; ok {
		return id
	}
	id := len(vt.names)
	vt.names = append(vt.names, name)
	vt.byName[name] = id
	return id
}

// Lookup returns the id for an already-declared name, or 0.
func (vt *VarTable) Lookup(name string) int { return vt.byName[name] }

// NameOf returns the declared name for id.
func (vt *VarTable) NameOf(id int) string {
	if id <= 0 || id >= len(vt.names) {
		return ""
	}
	return vt.names[id]
}

// Width is the number of declared variables.
func (vt *VarTable) Width() int { return len(vt.names) - 1 }

// Arg is one coordinate of a triple pattern or path endpoint: either a
// constant term id or a reference to a declared variable. This is the
// TermRef tagged variant spec §9 calls for in place of raw signed-integer
// arithmetic.
type Arg struct {
	IsVar  bool
	Const  term.ID
	VarIdx int
}

func ConstArg(id term.ID) Arg    { return Arg{Const: id} }
func VarArg(varIdx int) Arg      { return Arg{IsVar: true, VarIdx: varIdx} }

// resolve returns the tri-valued int64 MatchTriple expects for this arg
// given the current bindings, plus the variable index that must be bound
// (or cleared) after a match, or 0 if this arg does not introduce a
// binding (it's a constant, or already bound).
func (a Arg) resolve(b *Bindings) (val int64, unboundVarIdx int) {
	if !a.IsVar {
		return int64(a.Const), 0
	}
	if bound := b.Get(a.VarIdx); bound != 0 {
		return int64(bound), 0
	}
	return int64(-a.VarIdx), a.VarIdx
}

package query

import (
	"sort"

	"github.com/cayleygraph/tsengine/store"
	"github.com/cayleygraph/tsengine/term"
)

// SortOp is the materializing Sort/Unique operator (spec §4.5): it buffers
// every row the upstream chain produces, then, once the streaming pass is
// over, sorts (and optionally dedups) the buffer and forwards each row
// through the continuation captured during buffering. `unique` compiles
// to a SortOp with Unique set and Keys covering every declared variable;
// plain `sort` sets Keys to whatever variable list the command named.
type SortOp struct {
	st     *store.Store
	Keys   []int
	Unique bool

	rows       []*Bindings
	downstream Continuation
}

func NewSortOp(st *store.Store, keys []int, unique bool) *SortOp {
	return &SortOp{st: st, Keys: keys, Unique: unique}
}

// Eval implements Operator: during the streaming pass it only buffers.
func (s *SortOp) Eval(b *Bindings, cont Continuation) bool {
	s.downstream = cont
	s.rows = append(s.rows, b.Clone())
	return false
}

// Drain implements Materializer.
func (s *SortOp) Drain() bool {
	sort.SliceStable(s.rows, func(i, j int) bool {
		return s.less(s.rows[i], s.rows[j])
	})
	rows := s.rows
	if s.Unique {
		rows = dedupAdjacent(rows)
	}
	for _, row := range rows {
		if s.downstream(row) {
			return true
		}
	}
	return false
}

func (s *SortOp) less(a, b *Bindings) bool {
	for _, k := range s.Keys {
		c := s.compareSlot(a.Get(k), b.Get(k))
		if c != 0 {
			return c < 0
		}
	}
	return false
}

// compareSlot orders two term ids per spec §4.5's sort comparator:
//  1. unbound (id 0) sorts last.
//  2. two recognized-numeric literals compare by numeric value.
//  3. a numeric literal ranks *after* a non-numeric term (the reference
//     implementation's tie-break, preserved verbatim rather than the more
//     intuitive numeric-first ordering — see spec §4.5/§9).
//  4. otherwise compare the terms' lexical (serialized) form byte-wise.
func (s *SortOp) compareSlot(a, b term.ID) int {
	if a == 0 && b == 0 {
		return 0
	}
	if a == 0 {
		return 1
	}
	if b == 0 {
		return -1
	}
	if a == b {
		return 0
	}
	ta, aok := s.st.TermOf(a)
	tb, bok := s.st.TermOf(b)
	if !aok || !bok {
		return cmpUint32(uint32(a), uint32(b))
	}
	aNum := ta.Kind == term.TypedLiteral && ta.IsNumeric
	bNum := tb.Kind == term.TypedLiteral && tb.IsNumeric
	switch {
	case aNum && bNum:
		switch {
		case ta.NumericValue < tb.NumericValue:
			return -1
		case ta.NumericValue > tb.NumericValue:
			return 1
		default:
			return 0
		}
	case aNum != bNum:
		if aNum {
			return 1 // numeric ranks after non-numeric
		}
		return -1
	}
	switch {
	case ta.Value < tb.Value:
		return -1
	case ta.Value > tb.Value:
		return 1
	default:
		return cmpUint32(uint32(a), uint32(b))
	}
}

func cmpUint32(a, b uint32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// dedupAdjacent collapses consecutive rows that are fully equal across
// every slot, the standard "sort then dedup adjacent" Unique strategy.
func dedupAdjacent(rows []*Bindings) []*Bindings {
	if len(rows) == 0 {
		return rows
	}
	out := rows[:1]
	for _, r := range rows[1:] {
		if !r.Equal(out[len(out)-1]) {
			out = append(out, r)
		}
	}
	return out
}

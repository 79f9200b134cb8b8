package query

import (
	"github.com/cayleygraph/tsengine/errs"
	"github.com/cayleygraph/tsengine/store"
)

// State is the Query lifecycle spec §4.5/§9 names: a connection builds up
// an operator chain one command at a time (BUILDING), then runs it once
// (RUNNING); if the chain contains a materializing operator, the run
// transitions to DRAINING_MATERIALIZED once the streaming pass completes,
// and finally to DONE once every materialized table has been forwarded.
type State int

const (
	StateBuilding State = iota
	StateRunning
	StateDrainingMaterialized
	StateDone
)

// Query owns a variable table and the operator chain built up for one
// connection's in-progress match (spec §3 "Query").
type Query struct {
	st    *store.Store
	Vars  *VarTable
	ops   []Operator
	State State
}

func NewQuery(st *store.Store) *Query {
	return &Query{st: st, Vars: NewVarTable(), State: StateBuilding}
}

// Store returns the backing, presumed read-only, store.
func (q *Query) Store() *store.Store { return q.st }

// Append adds an operator to the end of the chain. Only valid while
// BUILDING.
func (q *Query) Append(op Operator) *errs.Error {
	if q.State != StateBuilding {
		return errs.Construct("query: cannot append an operator once construction has finished")
	}
	q.ops = append(q.ops, op)
	return nil
}

// Finish transitions BUILDING -> RUNNING, marking the chain as closed to
// further appends (the `end` command verb, spec §4.6).
func (q *Query) Finish() *errs.Error {
	if q.State != StateBuilding {
		return errs.Construct("query: already finished")
	}
	q.State = StateRunning
	return nil
}

// Run evaluates the whole chain once, invoking final per output row. If
// the chain contains any materializing operator (Sort/Unique/Agg), the
// streaming pass buffers at that point and Run then drains each
// materializing operator in chain order before returning (spec §4.5's
// DRAINING_MATERIALIZED state).
func (q *Query) Run(final Continuation) (bool, *errs.Error) {
	if q.State != StateRunning {
		return false, errs.Construct("query: Run called outside the RUNNING state")
	}

	b := NewBindings(q.Vars.Width())
	stop := evalChain(q.ops, 0, b, final)

	hasMaterializer := false
	for _, op := range q.ops {
		if _, ok := op.(Materializer); ok {
			hasMaterializer = true
			break
		}
	}
	if hasMaterializer {
		q.State = StateDrainingMaterialized
		for _, op := range q.ops {
			if stop {
				break
			}
			if m, ok := op.(Materializer); ok {
				stop = m.Drain()
			}
		}
	}
	q.State = StateDone
	return stop, nil
}

package query

// Continuation is invoked by an Operator once per binding array it
// produces. Returning true terminates the whole match upward (spec §9:
// "retain the callback-with-continuation style using plain function
// pointers and an explicit context struct" rather than a pull iterator).
type Continuation func(b *Bindings) bool

// Operator is one stage of the pipeline (spec §4.5: BGP, Filter, Path,
// Project, Sort/Unique are all Operators chained in a singly-linked list).
// Eval receives the current bindings and the continuation representing
// everything downstream of this operator, and must invoke cont once per
// output row it produces, forwarding cont's own return value to signal
// early termination up the chain.
type Operator interface {
	Eval(b *Bindings, cont Continuation) bool
}

// Materializer is implemented by operators that must see every upstream
// row before producing any output (Sort, Unique). The driver runs the
// normal streaming pass first (during which Eval only buffers and always
// returns false), then calls Drain once the pass completes, which sorts/
// dedups and forwards the buffered rows through whatever continuation was
// captured during Eval (spec §4.5's DRAINING_MATERIALIZED state).
type Materializer interface {
	Drain() bool
}

// evalChain composes ops[idx:] and final into a single Continuation,
// recursively: ops[idx].Eval is called with a continuation that in turn
// evaluates ops[idx+1:] and final. This is the "recursive continuation"
// evaluation spec §4.5 describes.
func evalChain(ops []Operator, idx int, b *Bindings, final Continuation) bool {
	if idx == len(ops) {
		return final(b)
	}
	op := ops[idx]
	return op.Eval(b, func(b2 *Bindings) bool {
		return evalChain(ops, idx+1, b2, final)
	})
}

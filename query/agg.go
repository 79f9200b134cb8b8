package query

// Agg is a materializing group-and-count operator. Spec §9 open-question
// decision: only `count` is implemented; sum/min/max/avg are left for a
// future extension and are not wired into the command dispatcher.
//
// Agg groups buffered rows by GroupVars and, per group, emits one row with
// the group's representative bindings plus the row count stashed in
// CountVar's Aux slot (not a dictionary term id: see Bindings.Aux).
type Agg struct {
	GroupVars []int
	CountVar  int

	rows       []*Bindings
	downstream Continuation
}

func NewAgg(groupVars []int, countVar int) *Agg {
	return &Agg{GroupVars: groupVars, CountVar: countVar}
}

func (a *Agg) Eval(b *Bindings, cont Continuation) bool {
	a.downstream = cont
	a.rows = append(a.rows, b.Clone())
	return false
}

func (a *Agg) Drain() bool {
	type group struct {
		rep   *Bindings
		count int64
	}
	order := make([]string, 0)
	groups := make(map[string]*group)

	for _, row := range a.rows {
		key := a.groupKey(row)
		g, ok := groups[key]
		if !ok {
			g = &group{rep: row}
			groups[key] = g
			order = append(order, key)
		}
		g.count++
	}

	for _, key := range order {
		g := groups[key]
		g.rep.SetAux(a.CountVar, g.count)
		if a.downstream(g.rep) {
			return true
		}
	}
	return false
}

func (a *Agg) groupKey(row *Bindings) string {
	buf := make([]byte, 0, len(a.GroupVars)*5)
	for _, v := range a.GroupVars {
		id := row.Get(v)
		buf = append(buf, byte(id>>24), byte(id>>16), byte(id>>8), byte(id), ',')
	}
	return string(buf)
}

package query

import "github.com/cayleygraph/tsengine/term"

// Project holds a bitmap over variable ids: when invoked, it clears every
// slot not in Keep to 0 and forwards the (narrowed) binding array
// unchanged otherwise (spec §4.5 "Project"). Once cont returns, the
// cleared slots are restored, so an upstream BGP pattern that re-resolves
// a variable bound by an earlier pattern still sees its value.
type Project struct {
	Keep map[int]bool
}

func NewProject(keep []int) *Project {
	m := make(map[int]bool, len(keep))
	for _, v := range keep {
		m[v] = true
	}
	return &Project{Keep: m}
}

// Eval implements Operator.
func (p *Project) Eval(b *Bindings, cont Continuation) bool {
	var saved []term.ID
	for i := 1; i <= b.Width(); i++ {
		if !p.Keep[i] {
			saved = append(saved, b.Get(i))
			b.Clear(i)
		}
	}
	stop := cont(b)
	j := 0
	for i := 1; i <= b.Width(); i++ {
		if !p.Keep[i] {
			b.Set(i, saved[j])
			j++
		}
	}
	return stop
}

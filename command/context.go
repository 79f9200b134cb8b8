package command

import (
	"strconv"

	"github.com/cayleygraph/tsengine/errs"
	"github.com/cayleygraph/tsengine/query"
	"github.com/cayleygraph/tsengine/store"
	"github.com/cayleygraph/tsengine/term"
)

// inConstructionVerbs vs. immediate verbs (spec §4.6 item 3).
var inConstructionVerbs = map[string]bool{
	"begin": true, "bgp": true, "filter": true, "sort": true,
	"project": true, "unique": true, "path": true, "agg": true, "end": true,
}

// Flags are the per-connection runtime flags the `set`/`unset` verbs
// toggle (spec §6, SPEC_FULL.md's per-connection refinement): these are
// scoped to one connection, not global server state, since each TCP
// connection gets its own Context (spec §5's per-request resource
// lifetime). Dispatch only records these values; no verb reads them back,
// so Limit does not cap emitted rows and Print/Verbose/Language change no
// output.
type Flags struct {
	Print    bool
	Verbose  bool
	Limit    int // 0 when unset
	Language string
}

// Context holds one connection's in-progress query construction state
// plus its runtime flags. A fresh Context is created per connection by
// the server (spec §5: "Query objects... are scoped to a single
// request").
type Context struct {
	st    *store.Store
	q     *query.Query // nil when not BUILDING
	Flags Flags
}

func NewContext(st *store.Store) *Context {
	return &Context{st: st}
}

// Cell is one column of an output row: either a dictionary term id, or
// a raw scalar that was never interned (an `agg count` column, or the
// `edges` listing's edge id), since a read-only query must not mint new
// dictionary entries just to report a number (see query.Bindings.Aux).
type Cell struct {
	ID     term.ID
	IsAux  bool
	AuxVal int64
}

func idCell(id term.ID) Cell { return Cell{ID: id} }

// EmitFunc receives one output row, in variable-declaration order. Return
// true to stop early (spec §4.5's continuation contract, carried through
// to the dispatch boundary).
type EmitFunc func(vals []Cell) bool

// Result describes the shape of a verb's output to the caller (normally
// the server's TSV writer): Vars is the header row for tabular output, or
// nil for a side-effecting verb that produced none. Count/IsCount covers
// the `count` verb's row-count-only response.
type Result struct {
	Vars    []string
	IsCount bool
	Count   int64
}

// Dispatch tokenizes nothing itself (the caller already split the command
// line via Tokenize); it interprets one already-tokenized command and
// either mutates construction state, runs a query, or performs an
// immediate action, invoking emit once per output row for verbs that
// produce rows.
func (c *Context) Dispatch(tokens []string, emit EmitFunc) (Result, *errs.Error) {
	if len(tokens) == 0 {
		return Result{}, errs.Construct("command: empty command")
	}
	verb := tokens[0]
	args := tokens[1:]

	// `end` and `count` both execute the constructed query (spec §6); `end`
	// is classified as in-construction (it closes BUILDING) while `count`
	// is classified as immediate, but both are terminal actions on c.q, so
	// both are handled here rather than split across the two verb tables.
	switch verb {
	case "end":
		return c.runQuery(emit, false)
	case "count":
		return c.runQuery(emit, true)
	}

	if inConstructionVerbs[verb] {
		return Result{}, c.dispatchConstruction(verb, args, emit)
	}
	return c.dispatchImmediate(verb, args, emit)
}

func (c *Context) dispatchConstruction(verb string, args []string, emit EmitFunc) *errs.Error {
	switch verb {
	case "begin":
		if c.q != nil {
			return errs.Construct("command: begin called while a query is already under construction")
		}
		c.q = query.NewQuery(c.st)
		if len(args) == 0 {
			return nil
		}
		return c.appendBGP(args)

	case "bgp":
		if err := c.requireBuilding(); err != nil {
			return err
		}
		return c.appendBGP(args)

	case "filter":
		if err := c.requireBuilding(); err != nil {
			return err
		}
		return c.appendFilter(args)

	case "path":
		if err := c.requireBuilding(); err != nil {
			return err
		}
		return c.appendPath(args)

	case "project":
		if err := c.requireBuilding(); err != nil {
			return err
		}
		return c.appendProject(args)

	case "sort":
		if err := c.requireBuilding(); err != nil {
			return err
		}
		return c.appendSort(args, false)

	case "unique":
		if err := c.requireBuilding(); err != nil {
			return err
		}
		return c.appendSort(nil, true)

	case "agg":
		if err := c.requireBuilding(); err != nil {
			return err
		}
		return c.appendAgg(args)
	}
	return errs.Construct("command: unknown construction verb %q", verb)
}

func (c *Context) requireBuilding() *errs.Error {
	if c.q == nil || c.q.State != query.StateBuilding {
		return errs.Construct("command: no query under construction")
	}
	return nil
}

// reset discards in-progress construction state, per spec §7's policy
// that construction errors free the in-progress query object.
func (c *Context) reset() { c.q = nil }

func (c *Context) appendBGP(args []string) *errs.Error {
	if len(args)%3 != 0 {
		return errs.Construct("command: bgp/begin takes triples in groups of 3 (S P O), got %d tokens", len(args))
	}
	var patterns []query.Pattern
	for i := 0; i < len(args); i += 3 {
		s, err := ParseTerm(args[i], c.q.Vars, c.st)
		if err != nil {
			c.reset()
			return err
		}
		p, err := ParseTerm(args[i+1], c.q.Vars, c.st)
		if err != nil {
			c.reset()
			return err
		}
		o, err := ParseTerm(args[i+2], c.q.Vars, c.st)
		if err != nil {
			c.reset()
			return err
		}
		patterns = append(patterns, query.Pattern{S: s, P: p, O: o})
	}
	if len(patterns) == 0 {
		return nil
	}
	bgp, err := query.NewBGP(c.st, patterns)
	if err != nil {
		c.reset()
		return err
	}
	if err := c.q.Append(bgp); err != nil {
		c.reset()
		return err
	}
	return nil
}

var filterKinds = map[string]query.FilterKind{
	"isiri": query.FilterIsIRI, "isliteral": query.FilterIsLiteral,
	"isblank": query.FilterIsBlank, "isnumeric": query.FilterIsNumeric,
	"sameterm": query.FilterSameTerm, "strstarts": query.FilterStrStarts,
	"strends": query.FilterStrEnds, "contains": query.FilterContains,
	"regex": query.FilterRegex,
}

func (c *Context) appendFilter(args []string) *errs.Error {
	if len(args) < 2 {
		c.reset()
		return errs.Construct("command: filter requires an operator and a variable")
	}
	kind, ok := filterKinds[args[0]]
	if !ok {
		c.reset()
		return errs.Construct("command: unknown filter operator %q", args[0])
	}
	varArg, err := ParseTerm(args[1], c.q.Vars, c.st)
	if err != nil || !varArg.IsVar {
		c.reset()
		return errs.Construct("command: filter %s requires a variable argument", args[0])
	}
	f := query.NewFilter(c.st, kind, varArg.VarIdx)

	switch kind {
	case query.FilterSameTerm:
		if len(args) < 3 {
			c.reset()
			return errs.Construct("command: sameterm requires a second (var or const) argument")
		}
		other, err := ParseTerm(args[2], c.q.Vars, c.st)
		if err != nil {
			c.reset()
			return err
		}
		f.B = other
	case query.FilterStrStarts, query.FilterStrEnds, query.FilterContains:
		if len(args) < 3 {
			c.reset()
			return errs.Construct("command: %s requires a string argument", args[0])
		}
		lit, lerr := parseLiteralToken(args[2], c.st)
		if lerr != nil {
			c.reset()
			return lerr
		}
		if lit.Kind == term.LangLiteral {
			f.CompareIsLang = true
			f.CompareLang = lit.Lang
		}
		f.CompareValue = lit.Value
	case query.FilterRegex:
		if len(args) < 3 {
			c.reset()
			return errs.Construct("command: regex requires a pattern argument")
		}
		pattern := unescapeLiteral(unquoteOrRaw(args[2]))
		flags := ""
		if len(args) >= 4 {
			flags = unquoteOrRaw(args[3])
		}
		cp, cerr := query.CompilePattern(pattern, flags)
		if cerr != nil {
			c.reset()
			return cerr
		}
		f.Pattern = cp
	}

	if err := c.q.Append(f); err != nil {
		c.reset()
		return err
	}
	return nil
}

// unquoteOrRaw strips surrounding double quotes if present, otherwise
// returns tok unchanged (regex/flag arguments may be given bare or quoted).
func unquoteOrRaw(tok string) string {
	if len(tok) >= 2 && tok[0] == '"' && tok[len(tok)-1] == '"' {
		return tok[1 : len(tok)-1]
	}
	return tok
}

func (c *Context) appendPath(args []string) *errs.Error {
	if len(args) != 3 {
		c.reset()
		return errs.Construct("command: path requires exactly 3 tokens (start predicate end)")
	}
	start, err := ParseTerm(args[0], c.q.Vars, c.st)
	if err != nil {
		c.reset()
		return err
	}
	predArg, err := ParseTerm(args[1], c.q.Vars, c.st)
	if err != nil || predArg.IsVar {
		c.reset()
		return errs.Construct("command: path's predicate must be a concrete <iri>")
	}
	end, err := ParseTerm(args[2], c.q.Vars, c.st)
	if err != nil {
		c.reset()
		return err
	}
	p := query.NewPath(c.st, start, predArg.Const, end, query.PathPlus)
	if err := c.q.Append(p); err != nil {
		c.reset()
		return err
	}
	return nil
}

func (c *Context) appendProject(args []string) *errs.Error {
	var keep []int
	for _, a := range args {
		arg, err := ParseTerm(a, c.q.Vars, c.st)
		if err != nil || !arg.IsVar {
			c.reset()
			return errs.Construct("command: project's arguments must be variable names")
		}
		keep = append(keep, arg.VarIdx)
	}
	if err := c.q.Append(query.NewProject(keep)); err != nil {
		c.reset()
		return err
	}
	return nil
}

func (c *Context) appendSort(args []string, unique bool) *errs.Error {
	var keys []int
	if unique {
		for i := 1; i <= c.q.Vars.Width(); i++ {
			keys = append(keys, i)
		}
	} else {
		for _, a := range args {
			arg, err := ParseTerm(a, c.q.Vars, c.st)
			if err != nil || !arg.IsVar {
				c.reset()
				return errs.Construct("command: sort's arguments must be variable names")
			}
			keys = append(keys, arg.VarIdx)
		}
	}
	if err := c.q.Append(query.NewSortOp(c.st, keys, unique)); err != nil {
		c.reset()
		return err
	}
	return nil
}

func (c *Context) appendAgg(args []string) *errs.Error {
	// agg GROUP_VAR count * [S P O ...]
	if len(args) < 3 || args[1] != "count" || args[2] != "*" {
		c.reset()
		return errs.Construct("command: agg requires GROUP_VAR count * [triples...]")
	}
	groupArg, err := ParseTerm(args[0], c.q.Vars, c.st)
	if err != nil || !groupArg.IsVar {
		c.reset()
		return errs.Construct("command: agg's grouping argument must be a variable")
	}
	rest := args[3:]
	if len(rest) > 0 {
		if err := c.appendBGP(rest); err != nil {
			return err
		}
	}
	countVar := c.q.Vars.Declare("__count")
	if err := c.q.Append(query.NewAgg([]int{groupArg.VarIdx}, countVar)); err != nil {
		c.reset()
		return err
	}
	return nil
}

func (c *Context) dispatchImmediate(verb string, args []string, emit EmitFunc) (Result, *errs.Error) {
	switch verb {
	case "triple":
		return c.immediateTriple(args, emit)
	case "match":
		return c.immediateMatch(args, emit)
	case "ntriples":
		return c.immediateNTriples(emit)
	case "nodes":
		return c.immediateNodes(emit)
	case "edges":
		return c.immediateEdges(emit)
	case "data":
		return c.immediateNTriples(emit)
	case "size":
		return Result{IsCount: true, Count: int64(c.st.NumEdges())}, nil
	case "set":
		return Result{}, c.setFlag(args)
	case "unset":
		return Result{}, c.unsetFlag(args)
	case "load", "dump", "import":
		return Result{}, errs.Construct("command: %s is not available over the query protocol; use the tsstore CLI subcommand", verb)
	}
	return Result{}, errs.Construct("command: unknown verb %q", verb)
}

func (c *Context) runQuery(emit EmitFunc, countOnly bool) (Result, *errs.Error) {
	if c.q == nil {
		return Result{}, errs.Construct("command: no query under construction")
	}
	q := c.q
	c.q = nil
	if q.State == query.StateBuilding {
		if err := q.Finish(); err != nil {
			return Result{}, err
		}
	}

	if countOnly {
		var n int64
		_, err := q.Run(func(b *query.Bindings) bool {
			n++
			return false
		})
		if err != nil {
			return Result{}, err
		}
		return Result{IsCount: true, Count: n}, nil
	}

	names := make([]string, 0, q.Vars.Width())
	for i := 1; i <= q.Vars.Width(); i++ {
		names = append(names, q.Vars.NameOf(i))
	}
	_, err := q.Run(func(b *query.Bindings) bool {
		row := make([]Cell, q.Vars.Width())
		for i := 1; i <= q.Vars.Width(); i++ {
			if aux, ok := b.GetAux(i); ok {
				row[i-1] = Cell{IsAux: true, AuxVal: aux}
			} else {
				row[i-1] = idCell(b.Get(i))
			}
		}
		return emit(row)
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Vars: names}, nil
}

func (c *Context) immediateTriple(args []string, emit EmitFunc) (Result, *errs.Error) {
	if len(args) != 3 {
		return Result{}, errs.Construct("command: triple requires exactly 3 numeric term ids")
	}
	ids := make([]int64, 3)
	for i, a := range args {
		n, convErr := strconv.ParseInt(a, 10, 64)
		if convErr != nil {
			return Result{}, errs.LexicalErr("command: triple argument %q is not a term id", a)
		}
		ids[i] = n
	}
	c.st.MatchTriple(ids[0], ids[1], ids[2], func(s, p, o term.ID) bool {
		return emit([]Cell{idCell(s), idCell(p), idCell(o)})
	})
	return Result{Vars: []string{"s", "p", "o"}}, nil
}

func (c *Context) immediateMatch(args []string, emit EmitFunc) (Result, *errs.Error) {
	if len(args) < 1 {
		return Result{}, errs.Construct("command: match requires a pattern argument")
	}
	pattern := unescapeLiteral(unquoteOrRaw(args[0]))
	flags := ""
	if len(args) >= 2 {
		flags = unquoteOrRaw(args[1])
	}
	cp, cerr := query.CompilePattern(pattern, flags)
	if cerr != nil {
		return Result{}, cerr
	}
	c.st.Dict().Each(func(id term.ID, t term.Term) {
		if cp.MatchString(t.Value) {
			emit([]Cell{idCell(id)})
		}
	})
	return Result{Vars: []string{"term"}}, nil
}

func (c *Context) immediateNTriples(emit EmitFunc) (Result, *errs.Error) {
	for i := 1; i <= c.st.NumEdges(); i++ {
		e := c.st.EdgeAt(store.EdgeID(i))
		if emit([]Cell{idCell(e.S), idCell(e.P), idCell(e.O)}) {
			break
		}
	}
	return Result{Vars: []string{"s", "p", "o"}}, nil
}

func (c *Context) immediateNodes(emit EmitFunc) (Result, *errs.Error) {
	c.st.Dict().Each(func(id term.ID, t term.Term) {
		emit([]Cell{idCell(id)})
	})
	return Result{Vars: []string{"id"}}, nil
}

func (c *Context) immediateEdges(emit EmitFunc) (Result, *errs.Error) {
	for i := 1; i <= c.st.NumEdges(); i++ {
		e := c.st.EdgeAt(store.EdgeID(i))
		if emit([]Cell{{IsAux: true, AuxVal: int64(i)}, idCell(e.S), idCell(e.P), idCell(e.O)}) {
			break
		}
	}
	return Result{Vars: []string{"edge_id", "s", "p", "o"}}, nil
}

func (c *Context) setFlag(args []string) *errs.Error {
	if len(args) == 0 {
		return errs.Construct("command: set requires a flag name")
	}
	switch args[0] {
	case "print":
		c.Flags.Print = true
	case "verbose":
		c.Flags.Verbose = true
	case "limit":
		if len(args) < 2 {
			return errs.Construct("command: set limit requires a value")
		}
		n, convErr := strconv.Atoi(args[1])
		if convErr != nil || n < 0 {
			return errs.LexicalErr("command: invalid limit %q", args[1])
		}
		c.Flags.Limit = n
	case "language":
		if len(args) < 2 {
			return errs.Construct("command: set language requires a tag")
		}
		c.Flags.Language = term.NormalizeLangTag(args[1])
	default:
		return errs.Construct("command: unknown flag %q", args[0])
	}
	return nil
}

func (c *Context) unsetFlag(args []string) *errs.Error {
	if len(args) == 0 {
		return errs.Construct("command: unset requires a flag name")
	}
	switch args[0] {
	case "print":
		c.Flags.Print = false
	case "verbose":
		c.Flags.Verbose = false
	case "limit":
		c.Flags.Limit = 0
	case "language":
		c.Flags.Language = ""
	default:
		return errs.Construct("command: unknown flag %q", args[0])
	}
	return nil
}

package server

import (
	"strings"

	"github.com/cayleygraph/tsengine/command"
	"github.com/cayleygraph/tsengine/store"
	"github.com/cayleygraph/tsengine/term"
)

// writeCell renders one output column per spec §4.7's TSV serializer rules:
// IRI as `<value>`, Blank as `_:b{prefix}b{value}`, a plain string quoted, a
// lang literal quoted with `@tag`, a recognized XSD-numeric typed literal as
// its raw lexical form, any other typed literal quoted with `^^<iri>`. A
// Cell carrying an Aux scalar (an `agg count` column) bypasses the
// dictionary entirely and is rendered as a bare decimal.
func writeCell(b *strings.Builder, st *store.Store, c command.Cell) {
	if c.IsAux {
		b.WriteString(formatInt(c.AuxVal))
		return
	}
	if c.ID == 0 {
		return // unbound: empty field, per the TSV convention of a blank cell
	}
	t, ok := st.TermOf(c.ID)
	if !ok {
		return
	}
	switch t.Kind {
	case term.IRI:
		b.WriteByte('<')
		escapeInto(b, t.Value)
		b.WriteByte('>')
	case term.Blank:
		b.WriteString("_:b")
		b.WriteString(formatInt(int64(t.PrefixID)))
		b.WriteByte('b')
		escapeInto(b, t.Value)
	case term.PlainStringLiteral:
		b.WriteByte('"')
		escapeInto(b, t.Value)
		b.WriteByte('"')
	case term.LangLiteral:
		b.WriteByte('"')
		escapeInto(b, t.Value)
		b.WriteString(`"@`)
		b.WriteString(t.Lang)
	case term.TypedLiteral:
		if t.IsNumeric {
			escapeInto(b, t.Value)
			return
		}
		b.WriteByte('"')
		escapeInto(b, t.Value)
		b.WriteString(`"^^<`)
		if dt, ok := st.TermOf(t.DatatypeID); ok {
			escapeInto(b, dt.Value)
		}
		b.WriteByte('>')
	}
}

// escapeInto writes s into b with embedded TAB/CR/LF escaped as `\t`, `\r`,
// `\n` (spec §4.7's last bullet).
func escapeInto(b *strings.Builder, s string) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(s[i])
		}
	}
}

func formatInt(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Row renders one full TSV row (tab-separated cells, no trailing newline).
func Row(st *store.Store, cells []command.Cell) string {
	var b strings.Builder
	for i, c := range cells {
		if i > 0 {
			b.WriteByte('\t')
		}
		writeCell(&b, st, c)
	}
	return b.String()
}

// Header renders the TSV header row (spec §4.6 item 4: "variable names
// tab-separated").
func Header(names []string) string {
	return strings.Join(names, "\t")
}

package parser

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/cayleygraph/tsengine/internal/decompressor"
)

// Format names the RDF serialization an Adapter parses. Only "ntriples" has
// a concrete Adapter in this module; "turtle"/"nquads" are recognized by
// extension so an operator gets a clear "not supported" error rather than
// a misleading parse failure, rather than silently mis-parsing a Turtle
// file with the N-Triples reader.
type Format string

const (
	FormatNTriples Format = "ntriples"
	FormatTurtle   Format = "turtle"
	FormatNQuads   Format = "nquads"
)

// DetectFormat sniffs a format from path's extension, stripping a trailing
// .gz/.bz2 compression suffix first: `.nt` -> ntriples, `.ttl` -> turtle,
// `.nq` -> nquads, and any other extension -> ntriples (an
// extension-by-name dispatch in the style of internal/load.go's
// `quadType`).
func DetectFormat(path string) Format {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, ".gz")
	name = strings.TrimSuffix(name, ".bz2")
	switch filepath.Ext(name) {
	case ".nt":
		return FormatNTriples
	case ".ttl":
		return FormatTurtle
	case ".nq":
		return FormatNQuads
	default:
		return FormatNTriples
	}
}

// Open wraps r in a transparent gzip/bzip2 decompressor (kept from the
// teacher's internal/decompressor, which sniffs the first 3 bytes for the
// gzip/bzip2 magic and falls back to the raw reader) and returns an
// Adapter for format, or an error if format has no concrete reader.
func Open(r io.Reader, format Format) (Adapter, error) {
	dr, err := decompressor.New(r)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatNTriples:
		return NewNTriplesAdapter(dr), nil
	default:
		return nil, &UnsupportedFormatError{Format: format}
	}
}

// UnsupportedFormatError reports a recognized-but-unimplemented format
// (Turtle/N-Quads are sniffed by extension but have no Adapter here, since
// a full RDF grammar is out of scope).
type UnsupportedFormatError struct {
	Format Format
}

func (e *UnsupportedFormatError) Error() string {
	return "parser: no Adapter implements format " + string(e.Format)
}

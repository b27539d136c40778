// Package akd implements the Arkadia Data (AKD) textual format: a
// schema-first, metadata-aware encoding designed to represent
// structured data compactly, plus the bidirectional codec between AKD
// text and a Go data model (Meta, Schema, Node).
package akd

import "io"

// DecodeOptions controls Decode's pre-processing and diagnostics.
type DecodeOptions struct {
	// RemoveAnsiColors strips SGR colour escapes from the input before
	// parsing, for text captured from a terminal (spec.md §4.4, §8).
	RemoveAnsiColors bool
	// Debug populates DecodeResult.Debug with a kr/pretty dump of the
	// decoded tree.
	Debug bool
}

// DecodeResult is everything a single Decode call produces: the root
// node, its schema, and the capped error/warning lists accumulated along
// the way. Decode never returns a Go error — a malformed document still
// yields a best-effort Node plus diagnostics (spec.md §7).
type DecodeResult struct {
	Node     *Node
	Schema   *Schema
	Errors   []Error
	Warnings []Warning
	Debug    string
}

// Decode parses AKD text into a DecodeResult. schemaPrefix, if given, is
// concatenated in front of text before parsing — letting a caller supply
// named schema definitions out-of-band from the data they describe
// (spec.md §4.4, §6).
func Decode(text string, opts *DecodeOptions, schemaPrefix ...string) *DecodeResult {
	if opts == nil {
		opts = &DecodeOptions{}
	}
	input := text
	if opts.RemoveAnsiColors {
		input = stripANSI(input)
	}
	if len(schemaPrefix) > 0 && schemaPrefix[0] != "" {
		input = schemaPrefix[0] + input
	}

	d := newDecoder(input)
	node, schema := d.decodeDocument()

	res := &DecodeResult{
		Node:     node,
		Schema:   schema,
		Errors:   d.errors.items,
		Warnings: d.warnings.items,
	}
	if opts.Debug {
		res.Debug = node.Dump()
	}
	return res
}

// DecodeReader is a convenience over Decode for callers holding an
// io.Reader rather than a string.
func DecodeReader(r io.Reader, opts *DecodeOptions, schemaPrefix ...string) (*DecodeResult, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(string(b), opts, schemaPrefix...), nil
}

package akd

import (
	"fmt"
	"strings"
	"unicode"
)

// Config controls how Encode renders a Node back to AKD text (spec.md
// §4.5). Colorize and PromptOutput are accepted for shape-compatibility
// with the original format's configuration surface but are deliberately
// inert here — see DESIGN.md ("Config's inert fields").
type Config struct {
	Compact          bool
	Indent           string
	StartIndent      int
	EscapeNewLines   bool
	IncludeSchema    bool
	IncludeType      bool
	IncludeMeta      bool
	IncludeComments  bool
	IncludeArraySize bool
	Colorize         bool
	PromptOutput     bool
}

// DefaultConfig returns the canonical rendering: schema headers, type
// tags, and metadata all included, two-space indentation.
func DefaultConfig() Config {
	return Config{
		Compact:         true,
		Indent:          "  ",
		IncludeSchema:   true,
		IncludeType:     true,
		IncludeMeta:     true,
		IncludeComments: true,
	}
}

type encoder struct {
	cfg Config
	buf strings.Builder
}

// EncodeNode renders node to AKD text under cfg (nil means
// DefaultConfig()).
func EncodeNode(node *Node, cfg *Config) (string, error) {
	if node == nil {
		return "", fmt.Errorf("akd: cannot encode a nil node")
	}
	c := DefaultConfig()
	if cfg != nil {
		c = *cfg
	}
	if c.Indent == "" {
		c.Indent = "  "
	}
	e := &encoder{cfg: c}
	if c.IncludeSchema {
		e.buf.WriteString(e.schemaHeader(node.Schema))
	}
	e.writeChildWithMeta(node, node.Schema, c.StartIndent)
	return e.buf.String(), nil
}

// Encode builds a Node from a plain Go value via Parse, then renders it.
func Encode(data interface{}, cfg *Config) (string, error) {
	node, err := Parse(data)
	if err != nil {
		return "", err
	}
	return EncodeNode(node, cfg)
}

// -----------------------------------------------------------------------
// Schema header rendering

func (e *encoder) schemaHeader(s *Schema) string {
	if s == nil || (s.IsAny() && s.FieldCount() == 0) {
		return ""
	}
	switch s.Kind {
	case SchemaPrimitive:
		var b strings.Builder
		b.WriteString("<")
		e.writeMetaPrefix(&b, &s.Meta)
		b.WriteString(s.TypeName)
		b.WriteString(">")
		return b.String()
	case SchemaList:
		s.PromoteElementMeta()
		var b strings.Builder
		b.WriteString("<")
		e.writeMetaPrefix(&b, &s.Meta)
		b.WriteString("[")
		b.WriteString(e.listShapeInner(s.Element))
		b.WriteString("]>")
		return b.String()
	case SchemaRecord:
		var b strings.Builder
		if s.TypeName != "" && s.TypeName != "any" {
			b.WriteString("@")
			b.WriteString(s.TypeName)
		}
		b.WriteString("<")
		e.writeMetaPrefix(&b, &s.Meta)
		b.WriteString(e.recordFieldsInner(s))
		b.WriteString(">")
		return b.String()
	}
	return ""
}

func (e *encoder) writeMetaPrefix(b *strings.Builder, m *Meta) {
	if !e.cfg.IncludeMeta {
		return
	}
	if mb := renderMetaBlock(e.effectiveMeta(m), e.cfg.Compact); mb != "" {
		b.WriteString(mb)
		b.WriteString(" ")
	}
}

// effectiveMeta strips comments out of m when IncludeComments is off,
// without mutating the schema/node it came from.
func (e *encoder) effectiveMeta(m *Meta) *Meta {
	if e.cfg.IncludeComments || len(m.Comments) == 0 {
		return m
	}
	clone := m.Clone()
	clone.Comments = nil
	return clone
}

func (e *encoder) listShapeInner(elem *Schema) string {
	if elem == nil || (elem.IsAny() && elem.FieldCount() == 0) {
		return "any"
	}
	switch elem.Kind {
	case SchemaPrimitive:
		return elem.TypeName
	case SchemaList:
		return "[" + e.listShapeInner(elem.Element) + "]"
	case SchemaRecord:
		return e.recordFieldsInner(elem)
	}
	return "any"
}

func (e *encoder) recordFieldsInner(s *Schema) string {
	parts := make([]string, 0, s.FieldCount())
	for _, f := range s.Fields() {
		parts = append(parts, e.fieldDecl(f))
	}
	return strings.Join(parts, ",")
}

func (e *encoder) fieldDecl(f *Schema) string {
	var b strings.Builder
	b.WriteString(identLiteral(f.Name))
	if !f.IsAny() || f.FieldCount() > 0 {
		b.WriteString(":")
		b.WriteString(e.fieldTypeRef(f))
	}
	if e.cfg.IncludeMeta {
		if mi := renderMetaInner(e.effectiveMeta(&f.Meta)); mi != "" {
			b.WriteString(" ")
			b.WriteString(mi)
		}
	}
	return b.String()
}

func (e *encoder) fieldTypeRef(f *Schema) string {
	switch f.Kind {
	case SchemaPrimitive:
		return f.TypeName
	case SchemaList:
		f.PromoteElementMeta()
		return "[" + e.listShapeInner(f.Element) + "]"
	case SchemaRecord:
		if f.TypeName != "" && f.TypeName != "any" {
			return "@" + f.TypeName
		}
		return "<" + e.recordFieldsInner(f) + ">"
	}
	return "any"
}

// identLiteral backtick-escapes a field/key name that is not a valid bare
// identifier (spec.md §4.4, §4.5).
func identLiteral(name string) string {
	if name == "" {
		return "``"
	}
	valid := true
	for i, r := range name {
		if i == 0 {
			if !(unicode.IsLetter(r) || r == '_') {
				valid = false
				break
			}
		} else if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			valid = false
			break
		}
	}
	if valid {
		return name
	}
	return "`" + name + "`"
}

// -----------------------------------------------------------------------
// Metadata rendering

func renderMetaInner(m *Meta) string {
	if m == nil {
		return ""
	}
	var parts []string
	if m.Required {
		parts = append(parts, "$required")
	}
	for _, t := range m.Tags {
		parts = append(parts, "#"+t)
	}
	for _, k := range m.AttrKeys() {
		v, _ := m.Attr(k)
		if v.Kind() == KindBool && v.AsBool() {
			parts = append(parts, "$"+k)
		} else {
			parts = append(parts, fmt.Sprintf("$%s=%s", k, v.AttrLiteral()))
		}
	}
	for _, c := range m.Comments {
		parts = append(parts, fmt.Sprintf("/* %s */", c))
	}
	return strings.Join(parts, " ")
}

// renderMetaBlock wraps m's rendered attributes/tags/comments in the `// …
// //` delimiter. Compact mode collapses the internal padding around inner
// (`//…//` instead of `// … //`), per the Config table (spec.md §4.5).
func renderMetaBlock(m *Meta, compact bool) string {
	if m == nil || m.IsEmpty() {
		return ""
	}
	inner := renderMetaInner(m)
	if inner == "" {
		return ""
	}
	if compact {
		return "//" + inner + "//"
	}
	return "// " + inner + " //"
}

// -----------------------------------------------------------------------
// Type-mismatch tagging (spec.md §4.5)

func typeMismatchTag(declared, actual *Schema) string {
	if declared == nil || declared.IsAny() || actual == nil {
		return ""
	}
	if declared.Kind == SchemaPrimitive && actual.Kind == SchemaPrimitive && declared.TypeName == actual.TypeName {
		return ""
	}
	if declared.Kind == actual.Kind && declared.Kind != SchemaPrimitive {
		return ""
	}
	switch actual.Kind {
	case SchemaPrimitive:
		return "<" + actual.TypeName + ">"
	case SchemaList:
		return "<list>"
	case SchemaRecord:
		if actual.TypeName != "" && actual.TypeName != "any" {
			return "<@" + actual.TypeName + ">"
		}
		return "<record>"
	}
	return ""
}

// -----------------------------------------------------------------------
// Value rendering

func (e *encoder) writeValue(n *Node, indent int) {
	switch n.Kind {
	case NodePrimitive:
		e.buf.WriteString(n.value.Literal(e.cfg.EscapeNewLines))
	case NodeList:
		e.writeList(n, indent)
	case NodeRecord:
		e.writeRecord(n, indent)
	}
}

// writeChildWithMeta renders a value's type-mismatch tag (relative to
// declared, the parent's field/element schema), then the value itself.
// For primitives, instance metadata precedes the literal directly; for
// lists and records, the opening delimiter must come first, so those
// kinds render their own instance metadata from inside writeList /
// writeRecord, immediately after `[`/`(` (spec.md §4.5).
func (e *encoder) writeChildWithMeta(n *Node, declared *Schema, indent int) {
	if e.cfg.IncludeType {
		if tag := typeMismatchTag(declared, n.Schema); tag != "" {
			e.buf.WriteString(tag)
			e.buf.WriteString(" ")
		}
	}
	if n.Kind == NodePrimitive && e.cfg.IncludeMeta {
		if mb := renderMetaBlock(e.effectiveMeta(&n.Meta), e.cfg.Compact); mb != "" {
			e.buf.WriteString(mb)
			e.buf.WriteString(" ")
		}
	}
	e.writeValue(n, indent)
}

func (e *encoder) writeList(n *Node, indent int) {
	var declaredElem *Schema
	if n.Schema != nil {
		declaredElem = n.Schema.Element
	}
	e.buf.WriteString("[")
	if e.cfg.IncludeMeta {
		if mb := renderMetaBlock(e.effectiveMeta(&n.Meta), e.cfg.Compact); mb != "" {
			e.buf.WriteString(mb)
			e.buf.WriteString(" ")
		}
	}
	if len(n.elements) == 0 {
		e.buf.WriteString("]")
		return
	}
	if e.cfg.IncludeArraySize {
		if e.cfg.Compact {
			fmt.Fprintf(&e.buf, "//$size=%d// ", len(n.elements))
		} else {
			fmt.Fprintf(&e.buf, "// $size=%d // ", len(n.elements))
		}
	}
	if e.cfg.Compact {
		for i, el := range n.elements {
			if i > 0 {
				e.buf.WriteString(",")
			}
			e.writeChildWithMeta(el, declaredElem, indent)
		}
		e.buf.WriteString("]")
		return
	}
	e.buf.WriteString("\n")
	childIndent := indent + 1
	for i, el := range n.elements {
		e.buf.WriteString(strings.Repeat(e.cfg.Indent, childIndent))
		e.writeChildWithMeta(el, declaredElem, childIndent)
		if i < len(n.elements)-1 {
			e.buf.WriteString(",")
		}
		e.buf.WriteString("\n")
	}
	e.buf.WriteString(strings.Repeat(e.cfg.Indent, indent))
	e.buf.WriteString("]")
}

// writeRecord always renders the positional form: named `{…}` rendering
// is reserved for prompt-output mode, which is out of scope here (spec.md
// Non-goals).
func (e *encoder) writeRecord(n *Node, indent int) {
	names := n.FieldNames()
	e.buf.WriteString("(")
	if e.cfg.IncludeMeta {
		if mb := renderMetaBlock(e.effectiveMeta(&n.Meta), e.cfg.Compact); mb != "" {
			e.buf.WriteString(mb)
			e.buf.WriteString(" ")
		}
	}
	if len(names) == 0 {
		e.buf.WriteString(")")
		return
	}
	declaredFields := make(map[string]*Schema, len(names))
	if n.Schema != nil {
		for _, f := range n.Schema.Fields() {
			declaredFields[f.Name] = f
		}
	}
	if e.cfg.Compact {
		for i, name := range names {
			if i > 0 {
				e.buf.WriteString(",")
			}
			e.writeRecordField(n, name, declaredFields[name], indent)
		}
		e.buf.WriteString(")")
		return
	}
	e.buf.WriteString("\n")
	childIndent := indent + 1
	for i, name := range names {
		e.buf.WriteString(strings.Repeat(e.cfg.Indent, childIndent))
		e.writeRecordField(n, name, declaredFields[name], childIndent)
		if i < len(names)-1 {
			e.buf.WriteString(",")
		}
		e.buf.WriteString("\n")
	}
	e.buf.WriteString(strings.Repeat(e.cfg.Indent, indent))
	e.buf.WriteString(")")
}

func (e *encoder) writeRecordField(n *Node, name string, declared *Schema, indent int) {
	child, ok := n.Field(name)
	if !ok {
		e.buf.WriteString("null")
		return
	}
	e.writeChildWithMeta(child, declared, indent)
}

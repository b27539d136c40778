package akd

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/arkadia-data/akd-go/internal/token"
)

// Decoder is a single-pass, cursor-driven parser: it consumes a rune
// buffer and produces a root node plus capped lists of errors and
// warnings. It maintains two contexts implicitly through recursive
// descent (the schema context passed into each parseValue call, and the
// node context returned from it), a named-schema registry, and a
// pending-metadata accumulator (spec.md §4.4).
type Decoder struct {
	src  []rune
	i    int
	line int
	col  int

	registry map[string]*Schema
	pending  *Meta

	errors   cappedErrors
	warnings cappedWarnings
}

func newDecoder(src string) *Decoder {
	return &Decoder{
		src:      []rune(src),
		line:     1,
		col:      1,
		registry: make(map[string]*Schema),
	}
}

// cursorState is a lightweight checkpoint used for the grammar's few
// points of backtracking: distinguishing a top-level named schema
// *definition* from a named schema *reference* (spec.md §4.4), peeking
// ahead for the bare-primitive schema shorthand, and backing out of an
// exponent marker that has no digits after it in a number literal.
type cursorState struct {
	i, line, col int
}

func (d *Decoder) snapshot() cursorState { return cursorState{d.i, d.line, d.col} }
func (d *Decoder) restore(s cursorState) { d.i, d.line, d.col = s.i, s.line, s.col }

func (d *Decoder) position() token.Position {
	return token.Position{Offset: d.i, Line: d.line, Column: d.col}
}

func (d *Decoder) cur() rune {
	if d.i >= len(d.src) {
		return -1
	}
	return d.src[d.i]
}

func (d *Decoder) peek(n int) rune {
	j := d.i + n
	if j < 0 || j >= len(d.src) {
		return -1
	}
	return d.src[j]
}

func (d *Decoder) advance() {
	if d.i >= len(d.src) {
		return
	}
	if d.src[d.i] == '\n' {
		d.line++
		d.col = 1
	} else {
		d.col++
	}
	d.i++
}

func (d *Decoder) skipSpace() {
	for d.cur() == ' ' || d.cur() == '\t' || d.cur() == '\n' || d.cur() == '\r' {
		d.advance()
	}
}

func isLetterRune(r rune) bool { return r == '_' || unicode.IsLetter(r) }
func isDigitRune(r rune) bool  { return unicode.IsDigit(r) }

func describeRune(r rune) string {
	if r == -1 {
		return "EOF"
	}
	return strconv.QuoteRune(r)
}

func (d *Decoder) addError(pos token.Position, context, format string, args ...interface{}) {
	d.errors.add(pos, context, format, args...)
}

func (d *Decoder) addWarning(pos token.Position, context, format string, args ...interface{}) {
	d.warnings.add(pos, context, format, args...)
}

func (d *Decoder) ensurePending() *Meta {
	if d.pending == nil {
		d.pending = NewMeta()
	}
	return d.pending
}

// takePending drains the pending-metadata accumulator, handing the
// caller an (always non-nil) Meta to Apply onto whatever it is
// attaching to.
func (d *Decoder) takePending() *Meta {
	p := d.pending
	d.pending = nil
	if p == nil {
		return NewMeta()
	}
	return p
}

func (d *Decoder) hasPending() bool {
	return d.pending != nil && !d.pending.IsEmpty()
}

// -----------------------------------------------------------------------
// Comments, metadata blocks, and inline modifiers (spec.md §4.4)

// consumeMeta skips whitespace and absorbs any run of block comments,
// metadata blocks, and stray inline modifiers, accumulating everything
// onto the pending-metadata accumulator. It is the single place callers
// reach for "skip anything insignificant here".
func (d *Decoder) consumeMeta() {
	for {
		d.skipSpace()
		switch {
		case d.cur() == '/' && d.peek(1) == '*':
			d.scanBlockComment()
		case d.cur() == '/' && d.peek(1) == '/':
			d.scanMetaBlock(true)
		case d.cur() == '/':
			d.scanMetaBlock(false)
		case d.cur() == '$':
			d.scanAttr()
		case d.cur() == '#':
			d.scanTag()
		case d.cur() == '!':
			d.scanFlag()
		default:
			return
		}
	}
}

func (d *Decoder) scanBlockComment() {
	start := d.position()
	d.advance()
	d.advance() // '/*'
	depth := 1
	var buf []rune
	for depth > 0 {
		c := d.cur()
		if c == -1 {
			d.addError(start, "comment", "Unterminated comment")
			break
		}
		if c == '\\' {
			d.advance()
			if d.cur() != -1 {
				buf = append(buf, d.cur())
				d.advance()
			}
			continue
		}
		if c == '/' && d.peek(1) == '*' {
			depth++
			buf = append(buf, '/', '*')
			d.advance()
			d.advance()
			continue
		}
		if c == '*' && d.peek(1) == '/' {
			depth--
			d.advance()
			d.advance()
			if depth == 0 {
				break
			}
			buf = append(buf, '*', '/')
			continue
		}
		buf = append(buf, c)
		d.advance()
	}
	d.ensurePending().AddComment(strings.TrimSpace(string(buf)))
}

// scanMetaBlock consumes a `/ … /` or `// … //` delimited metadata
// block. Both forms are accepted on decode; the encoder only ever emits
// the new `// … //` form (spec.md §9).
func (d *Decoder) scanMetaBlock(double bool) {
	if double {
		d.advance()
		d.advance()
	} else {
		d.advance()
	}
	for {
		d.skipSpace()
		if double {
			if d.cur() == '/' && d.peek(1) == '/' {
				d.advance()
				d.advance()
				return
			}
		} else if d.cur() == '/' {
			d.advance()
			return
		}
		if d.cur() == -1 {
			d.addError(d.position(), "metadata", "Unexpected EOF: metadata block not closed")
			return
		}
		switch {
		case d.cur() == '/' && d.peek(1) == '*':
			d.scanBlockComment()
		case d.cur() == '$':
			d.scanAttr()
		case d.cur() == '#':
			d.scanTag()
		case d.cur() == '!':
			d.scanFlag()
		case isLetterRune(d.cur()):
			d.scanImplicitAttr()
		default:
			d.addError(d.position(), "metadata", "Unexpected character %s", describeRune(d.cur()))
			d.advance()
		}
	}
}

func (d *Decoder) scanAttr() {
	d.advance() // '$'
	name := d.scanIdentOrBacktick()
	val := Bool(true)
	d.skipSpace()
	if d.cur() == '=' {
		d.advance()
		d.skipSpace()
		val = d.scanAttrValue()
	}
	if name == "required" {
		d.ensurePending().Required = true
		return
	}
	d.ensurePending().SetAttr(name, val)
}

func (d *Decoder) scanTag() {
	d.advance() // '#'
	name := d.scanIdentOrBacktick()
	d.ensurePending().AddTag(name)
}

func (d *Decoder) scanFlag() {
	pos := d.position()
	d.advance() // '!'
	name := d.scanIdentOrBacktick()
	if name == "required" {
		d.ensurePending().Required = true
	} else {
		d.addWarning(pos, "metadata", "Unknown flag: !%s", name)
	}
}

// scanImplicitAttr handles a bare `name=value`/`name` inside a metadata
// block — a deliberate style warning, not a syntax error (spec.md §9).
func (d *Decoder) scanImplicitAttr() {
	pos := d.position()
	name := d.scanIdentOrBacktick()
	val := Bool(true)
	d.skipSpace()
	if d.cur() == '=' {
		d.advance()
		d.skipSpace()
		val = d.scanAttrValue()
	}
	d.addWarning(pos, "metadata", "Implicit attribute '%s'. Use '$%s' instead.", name, name)
	d.ensurePending().SetAttr(name, val)
}

// -----------------------------------------------------------------------
// Lexical primitives (spec.md §4.4)

func (d *Decoder) scanIdentOrBacktick() string {
	if d.cur() == '`' {
		d.advance()
		var buf []rune
		for d.cur() != '`' && d.cur() != -1 {
			buf = append(buf, d.cur())
			d.advance()
		}
		if d.cur() == '`' {
			d.advance()
		} else {
			d.addError(d.position(), "identifier", "Unexpected EOF: backtick identifier not closed")
		}
		return string(buf)
	}
	var buf []rune
	for {
		c := d.cur()
		if c == -1 {
			break
		}
		if len(buf) == 0 {
			if !isLetterRune(c) {
				break
			}
		} else if !(isLetterRune(c) || isDigitRune(c)) {
			break
		}
		buf = append(buf, c)
		d.advance()
	}
	if len(buf) == 0 {
		d.addError(d.position(), "identifier", "Unexpected character %s", describeRune(d.cur()))
		if d.cur() != -1 {
			d.advance()
		}
	}
	return string(buf)
}

func (d *Decoder) scanQuotedString() string {
	d.advance() // opening quote
	var buf []rune
	for {
		c := d.cur()
		if c == -1 {
			return string(buf) // recovery: close at EOF, no error
		}
		if c == '"' {
			d.advance()
			return string(buf)
		}
		if c == '\\' {
			d.advance()
			e := d.cur()
			if e == -1 {
				d.addError(d.position(), "string", "Unexpected EOF inside string escape")
				return string(buf)
			}
			switch e {
			case 'n':
				buf = append(buf, '\n')
			case 't':
				buf = append(buf, '\t')
			case 'r':
				buf = append(buf, '\r')
			case '"':
				buf = append(buf, '"')
			case '\\':
				buf = append(buf, '\\')
			default:
				buf = append(buf, e)
			}
			d.advance()
			continue
		}
		buf = append(buf, c)
		d.advance()
	}
}

func (d *Decoder) scanNumberLiteral() string {
	var buf []rune
	if d.cur() == '-' {
		buf = append(buf, '-')
		d.advance()
	}
	if !isDigitRune(d.cur()) {
		d.addError(d.position(), "number", "Invalid number format")
	}
	for isDigitRune(d.cur()) {
		buf = append(buf, d.cur())
		d.advance()
	}
	if d.cur() == '.' && isDigitRune(d.peek(1)) {
		buf = append(buf, '.')
		d.advance()
		for isDigitRune(d.cur()) {
			buf = append(buf, d.cur())
			d.advance()
		}
	}
	if d.cur() == 'e' || d.cur() == 'E' {
		snap := d.snapshot()
		var exp []rune
		exp = append(exp, d.cur())
		d.advance()
		if d.cur() == '+' || d.cur() == '-' {
			exp = append(exp, d.cur())
			d.advance()
		}
		if isDigitRune(d.cur()) {
			for isDigitRune(d.cur()) {
				exp = append(exp, d.cur())
				d.advance()
			}
			buf = append(buf, exp...)
		} else {
			d.restore(snap)
		}
	}
	return string(buf)
}

func (d *Decoder) scanAttrValue() Value {
	switch {
	case d.cur() == '"':
		return Str(d.scanQuotedString())
	case d.cur() == '-' || isDigitRune(d.cur()):
		lit := d.scanNumberLiteral()
		v, err := NumberFromString(lit)
		if err != nil {
			d.addError(d.position(), "number", "Invalid number format")
			return Null()
		}
		return v
	case isLetterRune(d.cur()) || d.cur() == '`':
		word := d.scanIdentOrBacktick()
		switch word {
		case "true":
			return Bool(true)
		case "false":
			return Bool(false)
		case "null":
			return Null()
		default:
			return Str(word)
		}
	default:
		d.addError(d.position(), "value", "Unexpected character %s", describeRune(d.cur()))
		if d.cur() != -1 {
			d.advance()
		}
		return Null()
	}
}

// closeContainer consumes the expected closing delimiter, or records
// "Unexpected EOF: <name> not closed" at end of input, or a generic
// "Expected '<ch>', got …" otherwise, and recovers by treating the
// delimiter as matched either way (spec.md §4.4 recovery strategy).
func (d *Decoder) closeContainer(ch rune, name string) {
	if d.cur() == ch {
		d.advance()
		return
	}
	if d.cur() == -1 {
		d.addError(d.position(), name, "Unexpected EOF: %s not closed", name)
		return
	}
	d.addError(d.position(), name, "Expected '%c', got %s", ch, describeRune(d.cur()))
}

// -----------------------------------------------------------------------
// Schema parsing (spec.md §4.4)

// registryShell returns the existing registry entry for name, or creates
// and registers a fresh Any shell if none exists yet — registered before
// its body is parsed, so self/mutually-referential named types
// (`@Tree<children:[@Tree]>`) resolve by pointer (spec.md §9).
func (d *Decoder) registryShell(name string) *Schema {
	if s, ok := d.registry[name]; ok {
		return s
	}
	s := NewSchema(SchemaAny)
	s.TypeName = name
	d.registry[name] = s
	return s
}

// parseSchemaRefOrInline parses whatever follows a '@' or '<' token in
// schema position: a named definition, a named reference, or an
// anonymous inline schema.
func (d *Decoder) parseSchemaRefOrInline() *Schema {
	if d.cur() == '@' {
		d.advance()
		name := d.scanIdentOrBacktick()
		if d.cur() == '<' {
			reg := d.registryShell(name)
			d.advance()
			parsed := d.parseSchemaShape('>')
			d.closeContainer('>', "schema")
			*reg = *parsed
			reg.TypeName = name
			return reg
		}
		return d.registryShell(name)
	}
	// '<'
	d.advance()
	s := d.parseSchemaShape('>')
	d.closeContainer('>', "schema")
	return s
}

// looksLikeBarePrimitiveShorthand reports whether the upcoming identifier
// is a recognized primitive alias immediately followed (after metadata
// handled by the caller) by the closing delimiter — the `<number>`
// shorthand of spec.md §4.4.
func (d *Decoder) looksLikeBarePrimitiveShorthand(close rune) bool {
	if !isLetterRune(d.cur()) {
		return false
	}
	snap := d.snapshot()
	name := d.scanIdentOrBacktick()
	d.skipSpace()
	_, known := primitiveAliases[name]
	ok := known && d.cur() == close
	d.restore(snap)
	return ok
}

// parseSchemaShape parses the body of a schema — either a `<...>` body
// or the element body inside a list's `[...]` — closing at close. It
// implements the list/record/primitive-shorthand dispatch and the
// metadata-attachment rule uniformly for both positions (spec.md §4.2,
// §4.4).
func (d *Decoder) parseSchemaShape(close rune) *Schema {
	d.consumeMeta()
	leadingMeta := d.takePending()

	// The whole shape can itself be a named reference or nested inline
	// schema rather than a record field list — e.g. the list-element
	// body in `[@Tree]`.
	if d.cur() == '@' || d.cur() == '<' {
		s := d.parseSchemaRefOrInline()
		s.Meta.Apply(leadingMeta)
		d.consumeMeta()
		s.Meta.Apply(d.takePending())
		return s
	}

	schema := NewSchema(SchemaAny)
	schema.Meta.Apply(leadingMeta)

	if d.cur() == '[' {
		d.advance()
		inner := d.parseSchemaShape(']')
		d.closeContainer(']', "list type")
		schema.Kind = SchemaList
		schema.Element = inner
		schema.PromoteElementMeta()
	} else {
		first := true
		for d.cur() != close && d.cur() != -1 {
			d.consumeMeta()
			fieldMeta := d.takePending()

			if first && schema.FieldCount() == 0 && d.looksLikeBarePrimitiveShorthand(close) {
				name := d.scanIdentOrBacktick()
				schema.Kind = SchemaPrimitive
				schema.TypeName = CanonicalTypeName(name)
				schema.Meta.Apply(fieldMeta)
				d.consumeMeta()
				schema.Meta.Apply(d.takePending())
				break
			}

			field := NewSchema(SchemaAny)
			field.Meta.Apply(fieldMeta)
			field.Name = d.scanIdentOrBacktick()
			d.skipSpace()
			if d.cur() == ':' {
				d.advance()
				d.consumeMeta()
				typ := d.parseFieldType()
				field.Kind = typ.Kind
				field.TypeName = typ.TypeName
				field.Element = typ.Element
				if typ.Kind == SchemaRecord {
					field.ClearFields()
					for _, fs := range typ.Fields() {
						field.AddField(fs)
					}
				}
				field.Meta.Apply(&typ.Meta)
			}
			d.consumeMeta()
			field.Meta.Apply(d.takePending())
			schema.AddField(field)
			first = false

			if d.cur() == ',' {
				d.advance()
			} else {
				break
			}
		}
	}

	d.consumeMeta()
	schema.Meta.Apply(d.takePending())
	return schema
}

// parseFieldType parses the `: Type` portion of a schema field.
func (d *Decoder) parseFieldType() *Schema {
	switch {
	case d.cur() == '@' || d.cur() == '<':
		return d.parseSchemaRefOrInline()
	case d.cur() == '[':
		d.advance()
		inner := d.parseSchemaShape(']')
		d.closeContainer(']', "list type")
		return NewListSchema(inner)
	default:
		name := d.scanIdentOrBacktick()
		return NewPrimitiveSchema(CanonicalTypeName(name))
	}
}

// -----------------------------------------------------------------------
// Data value parsing (spec.md §4.4)

// resolvePrimitiveSchema implements the type-inference compatibility
// rule: Any context is always compatible and replaced by the inferred
// schema; matching type names are compatible; anything else uses the
// inferred schema for the node, which is what lets the encoder tag a
// mismatched value inline later.
func (d *Decoder) resolvePrimitiveSchema(ctx *Schema, inferredType string) *Schema {
	inferred := NewPrimitiveSchema(inferredType)
	if ctx == nil {
		return inferred
	}
	if ctx.IsAny() {
		inferred.Name = ctx.Name
		inferred.Meta.Apply(&ctx.Meta)
		return inferred
	}
	if ctx.IsPrimitive() && ctx.TypeName == inferredType {
		return ctx
	}
	return inferred
}

func (d *Decoder) parseValue(ctx *Schema) *Node {
	switch {
	case d.cur() == -1:
		d.addError(d.position(), "value", "Unexpected EOF while expecting a node")
		return NewPrimitiveNode(NewSchema(SchemaAny), Null())
	case d.cur() == '@' || d.cur() == '<':
		schema := d.parseSchemaRefOrInline()
		d.consumeMeta()
		node := d.parseValue(schema)
		node.Schema = schema
		return node
	case d.cur() == '[':
		return d.parseListValue(ctx)
	case d.cur() == '(':
		return d.parsePositionalRecord(ctx)
	case d.cur() == '{':
		return d.parseNamedRecord(ctx)
	case d.cur() == '"':
		val := Str(d.scanQuotedString())
		return NewPrimitiveNode(d.resolvePrimitiveSchema(ctx, "string"), val)
	case d.cur() == '-' || isDigitRune(d.cur()):
		lit := d.scanNumberLiteral()
		val, err := NumberFromString(lit)
		if err != nil {
			d.addError(d.position(), "number", "Invalid number format")
			val = Null()
		}
		return NewPrimitiveNode(d.resolvePrimitiveSchema(ctx, "number"), val)
	case isLetterRune(d.cur()) || d.cur() == '`':
		word := d.scanIdentOrBacktick()
		var val Value
		var typ string
		switch word {
		case "true":
			val, typ = Bool(true), "bool"
		case "false":
			val, typ = Bool(false), "bool"
		case "null":
			val, typ = Null(), "null"
		default:
			val, typ = Str(word), "string"
		}
		return NewPrimitiveNode(d.resolvePrimitiveSchema(ctx, typ), val)
	default:
		d.addError(d.position(), "value", "Unexpected character %s", describeRune(d.cur()))
		d.advance()
		return NewPrimitiveNode(NewSchema(SchemaAny), Null())
	}
}

func (d *Decoder) parseListValue(ctx *Schema) *Node {
	schema := ctx
	if schema == nil || !schema.IsList() {
		schema = NewListSchema(NewSchema(SchemaAny))
	}
	node := NewListNode(schema)
	d.advance() // '['
	d.consumeMeta()
	node.Meta.Apply(d.takePending())

	for d.cur() != ']' && d.cur() != -1 {
		d.consumeMeta()
		childMeta := d.takePending()
		child := d.parseValue(schema.Element)
		child.Meta.Apply(childMeta)
		d.consumeMeta()
		child.Meta.Apply(d.takePending())
		if schema.Element == nil || schema.Element.IsAny() {
			schema.Element = child.Schema
		}
		node.AddElement(child)
		if d.cur() == ',' {
			d.advance()
		} else {
			break
		}
	}

	d.consumeMeta()
	node.Meta.Apply(d.takePending())
	d.closeContainer(']', "list")
	return node
}

func (d *Decoder) parsePositionalRecord(ctx *Schema) *Node {
	schema := ctx
	if schema == nil {
		schema = NewSchema(SchemaAny)
	}
	node := NewRecordNode(schema)
	d.advance() // '('
	d.consumeMeta()
	node.Meta.Apply(d.takePending())

	hasDeclaredFields := schema.FieldCount() > 0
	idx := 0
	for d.cur() != ')' && d.cur() != -1 {
		d.consumeMeta()
		childMeta := d.takePending()

		var fieldSchema *Schema
		if hasDeclaredFields {
			fieldSchema = schema.FieldAt(idx)
		}
		child := d.parseValue(fieldSchema)
		child.Meta.Apply(childMeta)
		d.consumeMeta()
		child.Meta.Apply(d.takePending())

		var fieldName string
		if hasDeclaredFields && fieldSchema != nil {
			fieldName = fieldSchema.Name
		} else {
			fieldName = "_" + strconv.Itoa(idx)
			synthetic := child.Schema
			synthetic.Name = fieldName
			schema.AddField(synthetic)
		}
		node.SetField(fieldName, child)
		idx++

		if d.cur() == ',' {
			d.advance()
		} else {
			break
		}
	}

	d.consumeMeta()
	node.Meta.Apply(d.takePending())
	d.closeContainer(')', "record")
	return node
}

func (d *Decoder) parseNamedRecord(ctx *Schema) *Node {
	schema := ctx
	if schema == nil {
		schema = NewSchema(SchemaAny)
	}
	node := NewRecordNode(schema)
	d.advance() // '{'
	d.consumeMeta()
	node.Meta.Apply(d.takePending())

	for d.cur() != '}' && d.cur() != -1 {
		d.consumeMeta()
		childMeta := d.takePending()

		var key string
		if d.cur() == '"' {
			key = d.scanQuotedString()
		} else {
			key = d.scanIdentOrBacktick()
		}
		d.consumeMeta()
		childMeta.Apply(d.takePending())
		if d.cur() == ':' {
			d.advance()
		} else {
			d.addError(d.position(), "record", "Expected ':', got %s", describeRune(d.cur()))
		}
		d.consumeMeta()
		childMeta.Apply(d.takePending())

		existing, has := schema.FieldByName(key)
		var fieldSchema *Schema
		if has {
			fieldSchema = existing
		}
		child := d.parseValue(fieldSchema)
		child.Meta.Apply(childMeta)
		d.consumeMeta()
		child.Meta.Apply(d.takePending())

		if has {
			if existing.IsAny() && !child.Schema.IsAny() {
				renamed := child.Schema
				renamed.Name = key
				schema.ReplaceField(key, renamed)
			}
		} else {
			inferred := child.Schema
			inferred.Name = key
			schema.AddField(inferred)
		}
		node.SetField(key, child)

		if d.cur() == ',' {
			d.advance()
		} else {
			break
		}
	}

	d.consumeMeta()
	node.Meta.Apply(d.takePending())
	d.closeContainer('}', "record")
	return node
}

// -----------------------------------------------------------------------
// Top-level document grammar (spec.md §4.4)

// decodeDocument parses zero or more named schema definitions/references
// followed by exactly one data value.
func (d *Decoder) decodeDocument() (*Node, *Schema) {
	var rootSchema *Schema

	for {
		d.consumeMeta()
		if d.cur() != '@' {
			break
		}
		snap := d.snapshot()
		d.advance() // '@'
		name := d.scanIdentOrBacktick()
		if d.cur() != '<' {
			// Not a definition: this '@name' is the reference that
			// introduces the root data value; let parseValue handle it.
			d.restore(snap)
			break
		}
		reg := d.registryShell(name)
		d.advance() // '<'
		parsed := d.parseSchemaShape('>')
		d.closeContainer('>', "schema")
		*reg = *parsed
		reg.TypeName = name
		rootSchema = reg
	}

	d.consumeMeta()
	ctx := rootSchema
	node := d.parseValue(ctx)

	// Trailing metadata after the root value has no container left to
	// attach to.
	d.consumeMeta()
	if d.hasPending() {
		d.addWarning(d.position(), "document", "There is no parent to add the meta block to.")
		d.pending = nil
	}

	return node, node.Schema
}

package akd

import "strconv"

// SchemaKind discriminates the shape a Schema describes.
type SchemaKind int

const (
	SchemaAny SchemaKind = iota
	SchemaPrimitive
	SchemaRecord
	SchemaList
)

// primitiveAliases maps the lexical spellings accepted in schema bodies to
// their canonical type name (spec.md §4.4): int/float collapse to number,
// the rest pass through unchanged.
var primitiveAliases = map[string]string{
	"int":    "number",
	"float":  "number",
	"string": "string",
	"bool":   "bool",
	"null":   "null",
	"binary": "binary",
	"number": "number",
	"any":    "any",
}

// CanonicalTypeName resolves a lexical primitive spelling to the name the
// encoder will emit.
func CanonicalTypeName(lexeme string) string {
	if canon, ok := primitiveAliases[lexeme]; ok {
		return canon
	}
	return lexeme
}

// Schema is a tagged structural descriptor: Primitive(name), List(element),
// Record(ordered fields), or Any. It carries its own Meta and an optional
// nominal type name (spec.md §3).
type Schema struct {
	Kind     SchemaKind
	TypeName string // default "any"
	Name     string // field name, set when used as a named record field
	Element  *Schema
	Meta     Meta

	fieldOrder []string
	fields     map[string]*Schema
}

// NewSchema constructs a schema of the given kind with the default type
// name "any".
func NewSchema(kind SchemaKind) *Schema {
	return &Schema{Kind: kind, TypeName: "any", fields: make(map[string]*Schema)}
}

// NewPrimitiveSchema constructs a primitive schema with the given
// (already-canonicalized) type name.
func NewPrimitiveSchema(typeName string) *Schema {
	s := NewSchema(SchemaPrimitive)
	s.TypeName = typeName
	return s
}

// NewListSchema constructs a list schema wrapping the given element
// schema (possibly Any).
func NewListSchema(element *Schema) *Schema {
	s := NewSchema(SchemaList)
	if element == nil {
		element = NewSchema(SchemaAny)
	}
	s.Element = element
	return s
}

func (s *Schema) ensureFields() {
	if s.fields == nil {
		s.fields = make(map[string]*Schema)
	}
}

// AddField appends field to the record, auto-naming it by ordinal
// ("0", "1", …) if it has no name, and auto-promotes s from Any to
// Record on the first field added (spec.md §3, §4.2).
func (s *Schema) AddField(field *Schema) {
	s.ensureFields()
	if field.Name == "" {
		field.Name = strconv.Itoa(len(s.fieldOrder))
	}
	if _, exists := s.fields[field.Name]; !exists {
		s.fieldOrder = append(s.fieldOrder, field.Name)
	}
	s.fields[field.Name] = field
	if s.Kind == SchemaAny {
		s.Kind = SchemaRecord
	}
}

// ReplaceField replaces the field named name with replacement in place,
// preserving its ordinal position, or appends it if no such field
// exists yet.
func (s *Schema) ReplaceField(name string, replacement *Schema) {
	s.ensureFields()
	replacement.Name = name
	if _, exists := s.fields[name]; !exists {
		s.AddField(replacement)
		return
	}
	s.fields[name] = replacement
	if s.Kind == SchemaAny {
		s.Kind = SchemaRecord
	}
}

// ClearFields removes all fields without changing Kind.
func (s *Schema) ClearFields() {
	s.fieldOrder = nil
	s.fields = make(map[string]*Schema)
}

// FieldAt returns the field at the given ordinal, or nil if out of range.
// Only meaningful for records.
func (s *Schema) FieldAt(i int) *Schema {
	if i < 0 || i >= len(s.fieldOrder) {
		return nil
	}
	return s.fields[s.fieldOrder[i]]
}

// FieldByName looks up a field by name. Only meaningful for records.
func (s *Schema) FieldByName(name string) (*Schema, bool) {
	f, ok := s.fields[name]
	return f, ok
}

// Fields returns the fields in declaration order.
func (s *Schema) Fields() []*Schema {
	out := make([]*Schema, len(s.fieldOrder))
	for i, name := range s.fieldOrder {
		out[i] = s.fields[name]
	}
	return out
}

// FieldCount returns the number of fields.
func (s *Schema) FieldCount() int { return len(s.fieldOrder) }

func (s *Schema) IsPrimitive() bool { return s.Kind == SchemaPrimitive }
func (s *Schema) IsRecord() bool    { return s.Kind == SchemaRecord }
func (s *Schema) IsList() bool      { return s.Kind == SchemaList }
func (s *Schema) IsAnyKind() bool   { return s.Kind == SchemaAny }

// IsAny reports the derived "any-ness" used throughout the encoder: true
// when Kind is Any outright, or when Kind is Primitive/Record and
// TypeName is still the default "any" (spec.md §4.2).
func (s *Schema) IsAny() bool {
	if s.Kind == SchemaAny {
		return true
	}
	if (s.Kind == SchemaPrimitive || s.Kind == SchemaRecord) && s.TypeName == "any" {
		return true
	}
	return false
}

// ApplyMeta merges meta into the schema's own Meta and sets Required
// from it (required is schema-only metadata projection, spec.md §3).
func (s *Schema) ApplyMeta(meta *Meta) {
	if meta == nil {
		return
	}
	s.Meta.Apply(meta)
}

// Required reports the schema's required flag.
func (s *Schema) Required() bool { return s.Meta.Required }

// Clone returns a partly deep copy of the schema: Meta, the field order
// and the field map are copied, and Element is cloned recursively (named
// types included), but the field schemas themselves are shared by
// reference with the original.
func (s *Schema) Clone() *Schema {
	c := &Schema{
		Kind:     s.Kind,
		TypeName: s.TypeName,
		Name:     s.Name,
		Meta:     *s.Meta.Clone(),
	}
	if s.Element != nil {
		c.Element = s.Element.Clone()
	}
	if len(s.fieldOrder) > 0 {
		c.fieldOrder = append([]string(nil), s.fieldOrder...)
		c.fields = make(map[string]*Schema, len(s.fields))
		for k, v := range s.fields {
			c.fields[k] = v
		}
	}
	return c
}

// PromoteElementMeta moves any metadata collected on a list's element
// schema onto the list schema itself, clearing it from the element. This
// preserves the rule that `< // $attr=v // [int] >` attaches $attr to the
// list, not the element (spec.md §4.2, §4.4, §9); it is called by both
// the decoder (when popping a list schema context) and the encoder
// (before rendering a list).
func (s *Schema) PromoteElementMeta() {
	if s.Kind != SchemaList || s.Element == nil {
		return
	}
	if s.Element.Meta.IsEmpty() {
		return
	}
	s.Meta.Apply(&s.Element.Meta)
	s.Element.Meta.Clear()
}

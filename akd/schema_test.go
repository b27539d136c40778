package akd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalTypeName(t *testing.T) {
	assert.Equal(t, "number", CanonicalTypeName("int"))
	assert.Equal(t, "number", CanonicalTypeName("float"))
	assert.Equal(t, "string", CanonicalTypeName("string"))
	assert.Equal(t, "mystery", CanonicalTypeName("mystery"), "unknown lexemes pass through unchanged")
}

func TestSchemaAddFieldPromotesAnyToRecord(t *testing.T) {
	s := NewSchema(SchemaAny)
	assert.True(t, s.IsAnyKind())

	s.AddField(NewPrimitiveSchema("string"))
	assert.Equal(t, SchemaRecord, s.Kind)
	assert.Equal(t, 1, s.FieldCount())
	assert.Equal(t, "0", s.FieldAt(0).Name, "unnamed fields are auto-named by ordinal")
}

func TestSchemaFieldOrderPreservedAndLookup(t *testing.T) {
	s := NewSchema(SchemaAny)
	id := NewPrimitiveSchema("number")
	id.Name = "id"
	name := NewPrimitiveSchema("string")
	name.Name = "name"
	s.AddField(id)
	s.AddField(name)

	assert.Equal(t, []string{"id", "name"}, s.fieldOrder)
	f, ok := s.FieldByName("name")
	assert.True(t, ok)
	assert.Same(t, name, f)
}

func TestSchemaReplaceFieldPreservesPosition(t *testing.T) {
	s := NewSchema(SchemaAny)
	a := NewSchema(SchemaAny)
	a.Name = "a"
	b := NewSchema(SchemaAny)
	b.Name = "b"
	s.AddField(a)
	s.AddField(b)

	replacement := NewPrimitiveSchema("number")
	s.ReplaceField("a", replacement)

	assert.Equal(t, []string{"a", "b"}, s.fieldOrder)
	assert.Same(t, replacement, s.FieldAt(0))
}

func TestSchemaIsAny(t *testing.T) {
	assert.True(t, NewSchema(SchemaAny).IsAny())
	assert.True(t, NewPrimitiveSchema("any").IsAny())
	assert.False(t, NewPrimitiveSchema("string").IsAny())

	rec := NewSchema(SchemaAny)
	rec.AddField(NewPrimitiveSchema("string"))
	assert.True(t, rec.IsAny(), "a record keeps the default type name \"any\" until it is given a nominal one")
}

func TestSchemaPromoteElementMeta(t *testing.T) {
	elem := NewPrimitiveSchema("number")
	elem.Meta.AddTag("pii")
	list := NewListSchema(elem)

	list.PromoteElementMeta()

	assert.Equal(t, []string{"pii"}, list.Meta.Tags)
	assert.True(t, list.Element.Meta.IsEmpty(), "element's own meta is cleared after promotion")
}

func TestSchemaClone(t *testing.T) {
	s := NewSchema(SchemaAny)
	f := NewPrimitiveSchema("string")
	f.Name = "x"
	s.AddField(f)
	s.Meta.AddTag("top")

	clone := s.Clone()
	clone.Meta.AddTag("only-on-clone")

	assert.Equal(t, []string{"top"}, s.Meta.Tags)
	assert.Equal(t, 1, clone.FieldCount())
}

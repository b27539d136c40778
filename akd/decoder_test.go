package akd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBarePrimitiveShorthand(t *testing.T) {
	res := Decode("<number>123", nil)
	require.Empty(t, res.Errors)
	require.True(t, res.Node.IsPrimitive())
	assert.Equal(t, "number", res.Schema.TypeName)
	assert.Equal(t, int64(123), res.Node.Value().ToInterface())
}

func TestDecodeAnonymousRecordSchema(t *testing.T) {
	res := Decode(`<tests:string>{tests:3}`, nil)
	require.Empty(t, res.Errors)
	require.True(t, res.Node.IsRecord())
	child, ok := res.Node.Field("tests")
	require.True(t, ok)
	assert.Equal(t, int64(3), child.Value().ToInterface())
	// The data's actual type (number) did not match the declared field
	// type (string), so the inferred schema — not the declared one —
	// describes the node; the encoder is responsible for tagging this.
	assert.Equal(t, "number", child.Schema.TypeName)
}

func TestDecodeNamedSchemaDefinitionThenReference(t *testing.T) {
	res := Decode(`@User<id:int,name:string> @User(5,"Bob")`, nil)
	require.Empty(t, res.Errors)
	require.True(t, res.Node.IsRecord())
	assert.Equal(t, "User", res.Node.Schema.TypeName)

	idNode, ok := res.Node.Field("id")
	require.True(t, ok)
	assert.Equal(t, int64(5), idNode.Value().ToInterface())

	nameNode, ok := res.Node.Field("name")
	require.True(t, ok)
	assert.Equal(t, "Bob", nameNode.Value().ToInterface())
}

func TestDecodeListOfInts(t *testing.T) {
	res := Decode(`<[int]>[1,2,3]`, nil)
	require.Empty(t, res.Errors)
	require.True(t, res.Node.IsList())
	assert.Equal(t, "number", res.Node.Schema.Element.TypeName)
	assert.Len(t, res.Node.Elements(), 3)
}

func TestDecodeListOfRecords(t *testing.T) {
	res := Decode(`<[name:string,val:number]>[("a",1),("b",2)]`, nil)
	require.Empty(t, res.Errors)
	require.True(t, res.Node.IsList())
	require.Len(t, res.Node.Elements(), 2)
	first := res.Node.Elements()[0]
	nameNode, ok := first.Field("name")
	require.True(t, ok)
	assert.Equal(t, "a", nameNode.Value().ToInterface())
}

func TestDecodeNestedListOfLists(t *testing.T) {
	res := Decode(`<[[int]]>[[1,2],[3]]`, nil)
	require.Empty(t, res.Errors)
	require.True(t, res.Node.Schema.Element.IsList())
	assert.Equal(t, "number", res.Node.Schema.Element.Element.TypeName)
}

func TestDecodeCyclicNamedSchema(t *testing.T) {
	res := Decode(`@Tree<value:int,children:[@Tree]> @Tree(1,[@Tree(2,[]),@Tree(3,[])])`, nil)
	require.Empty(t, res.Errors)
	childrenField, ok := res.Node.Schema.FieldByName("children")
	require.True(t, ok)
	require.True(t, childrenField.Element.IsRecord())
	assert.Same(t, res.Node.Schema, childrenField.Element, "self-reference resolves to the same schema instance")
}

func TestDecodeMetadataAttachesToContainerBeforeFirstChild(t *testing.T) {
	res := Decode(`<[int]>[ // #pii // 1,2]`, nil)
	require.Empty(t, res.Errors)
	assert.Contains(t, res.Node.Meta.Tags, "pii")
}

func TestDecodeMetadataTrailingAttachesToLastChild(t *testing.T) {
	res := Decode(`<[int]>[1,2 // #last //]`, nil)
	require.Empty(t, res.Errors)
	last := res.Node.Elements()[len(res.Node.Elements())-1]
	assert.Contains(t, last.Meta.Tags, "last")
}

func TestDecodeListElementMetaPromotedToListSchema(t *testing.T) {
	res := Decode(`< // $unit=meters // [int]>[1,2]`, nil)
	require.Empty(t, res.Errors)
	v, ok := res.Node.Schema.Meta.Attr("unit")
	require.True(t, ok)
	assert.Equal(t, "meters", v.AsString())
	assert.True(t, res.Node.Schema.Element.Meta.IsEmpty())
}

func TestDecodeImplicitAttributeWarns(t *testing.T) {
	res := Decode(`// unit=meters // <number>5`, nil)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Message, "Implicit attribute")
}

func TestDecodeUnknownFlagWarns(t *testing.T) {
	res := Decode(`// !bogus // <number>5`, nil)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Message, "Unknown flag")
}

func TestDecodeUnterminatedListErrors(t *testing.T) {
	res := Decode(`[1, 2, 3`, nil)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0].Message, "not closed")
}

func TestDecodeStrayCharacterRecovers(t *testing.T) {
	res := Decode(`(1, ?)`, nil)
	assert.NotEmpty(t, res.Errors)
	require.True(t, res.Node.IsRecord())
}

func TestDecodeUnterminatedStringEscapeErrors(t *testing.T) {
	res := Decode(`"\`, nil)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0].Message, "string escape")
}

func TestDecodeErrorsCapAtFifty(t *testing.T) {
	bad := "["
	for i := 0; i < 100; i++ {
		if i > 0 {
			bad += ","
		}
		bad += "?"
	}
	bad += "]"
	res := Decode(bad, nil)
	assert.Len(t, res.Errors, 50)
}

func TestDecodeRemovesAnsiColorsWhenRequested(t *testing.T) {
	colored := "\x1b[32m<number>5\x1b[0m"
	res := Decode(colored, &DecodeOptions{RemoveAnsiColors: true})
	require.Empty(t, res.Errors)
	assert.Equal(t, int64(5), res.Node.Value().ToInterface())
}

func TestDecodeRawAnsiWithoutStrippingErrors(t *testing.T) {
	colored := "\x1b[32m<number>5\x1b[0m"
	res := Decode(colored, nil)
	assert.NotEmpty(t, res.Errors)
}

func TestDecodeSchemaPrefixAppliesToData(t *testing.T) {
	res := Decode(`(5,"Bob")`, nil, `@User<id:int,name:string> `)
	require.Empty(t, res.Errors)
	idNode, ok := res.Node.Field("id")
	require.True(t, ok)
	assert.Equal(t, int64(5), idNode.Value().ToInterface())
}

func TestDecodeNoParentForTrailingMetaWarns(t *testing.T) {
	res := Decode(`<number>5 // #trailing //`, nil)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Message, "no parent")
}

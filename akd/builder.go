package akd

import (
	"fmt"
	"sort"
)

// Parse converts a plain Go value into a Node with an inferred Schema
// (spec.md §6): null/nil becomes a null primitive, bool/string/numeric
// Go types become their matching primitive, []interface{} becomes a
// list (widening its element schema from the first item, or inferring a
// union-of-fields record schema when every item is a map), and
// map[string]interface{} becomes a record.
//
// Maps are walked in sorted-key order. The format this module grew out
// of came from a source language whose object type preserves insertion
// order; Go's map type has no iteration order at all, so sorting is the
// only way to get a reproducible result back from the same input twice
// (see DESIGN.md).
func Parse(data interface{}) (*Node, error) {
	return parseValue(data)
}

func parseValue(data interface{}) (*Node, error) {
	switch v := data.(type) {
	case nil:
		return NewPrimitiveNode(NewPrimitiveSchema("null"), Null()), nil
	case Value:
		return NewPrimitiveNode(NewPrimitiveSchema(valueTypeName(v)), v), nil
	case bool:
		return NewPrimitiveNode(NewPrimitiveSchema("bool"), Bool(v)), nil
	case string:
		return NewPrimitiveNode(NewPrimitiveSchema("string"), Str(v)), nil
	case int:
		return NewPrimitiveNode(NewPrimitiveSchema("number"), NumberFromInt64(int64(v))), nil
	case int8:
		return NewPrimitiveNode(NewPrimitiveSchema("number"), NumberFromInt64(int64(v))), nil
	case int16:
		return NewPrimitiveNode(NewPrimitiveSchema("number"), NumberFromInt64(int64(v))), nil
	case int32:
		return NewPrimitiveNode(NewPrimitiveSchema("number"), NumberFromInt64(int64(v))), nil
	case int64:
		return NewPrimitiveNode(NewPrimitiveSchema("number"), NumberFromInt64(v)), nil
	case float32:
		return NewPrimitiveNode(NewPrimitiveSchema("number"), NumberFromFloat64(float64(v))), nil
	case float64:
		return NewPrimitiveNode(NewPrimitiveSchema("number"), NumberFromFloat64(v)), nil
	case []interface{}:
		return parseSlice(v)
	case map[string]interface{}:
		schema := NewSchema(SchemaAny)
		return parseMapWithSchema(v, schema)
	default:
		return nil, fmt.Errorf("Unsupported structure type: %T", data)
	}
}

func valueTypeName(v Value) string {
	switch v.Kind() {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	}
	return "any"
}

func parseSlice(items []interface{}) (*Node, error) {
	elemSchema := NewSchema(SchemaAny)
	listSchema := NewListSchema(elemSchema)
	node := NewListNode(listSchema)
	if len(items) == 0 {
		return node, nil
	}

	allRecords := true
	for _, it := range items {
		if _, ok := it.(map[string]interface{}); !ok {
			allRecords = false
			break
		}
	}

	if allRecords {
		union := NewSchema(SchemaAny)
		listSchema.Element = union
		for _, it := range items {
			child, err := parseMapWithSchema(it.(map[string]interface{}), union)
			if err != nil {
				return nil, err
			}
			node.AddElement(child)
		}
		return node, nil
	}

	for _, it := range items {
		child, err := parseValue(it)
		if err != nil {
			return nil, err
		}
		if listSchema.Element.IsAny() {
			listSchema.Element = child.Schema
		}
		node.AddElement(child)
	}
	return node, nil
}

// parseMapWithSchema builds a record node for m against union, widening
// union in place as new keys and more specific field types are seen —
// the same "Any replaced by first concrete schema, first write wins for
// field order" rule the decoder applies to named-record data (spec.md
// §4.4, §6).
func parseMapWithSchema(m map[string]interface{}, union *Schema) (*Node, error) {
	node := NewRecordNode(union)
	for _, k := range sortedKeys(m) {
		child, err := parseValue(m[k])
		if err != nil {
			return nil, err
		}
		existing, has := union.FieldByName(k)
		if has {
			if existing.IsAny() && !child.Schema.IsAny() {
				renamed := child.Schema
				renamed.Name = k
				union.ReplaceField(k, renamed)
			}
		} else {
			inferred := child.Schema
			inferred.Name = k
			union.AddField(inferred)
		}
		node.SetField(k, child)
	}
	return node, nil
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package akd

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/kr/pretty"
)

// NodeKind discriminates the three Node variants. Unlike Schema, a Node is
// never itself "Any" — it is always a concrete primitive, list, or record,
// even when the Schema it links to is still Any (spec.md §3).
type NodeKind int

const (
	NodePrimitive NodeKind = iota
	NodeList
	NodeRecord
)

// Node is a value linked to exactly one Schema. It owns its scalar value,
// its element/field children, and its own instance Meta — distinct from
// the schema's type Meta (spec.md §3).
type Node struct {
	Schema *Schema
	Meta   Meta
	Kind   NodeKind

	value    Value
	elements []*Node
	fields   map[string]*Node
}

// NewPrimitiveNode builds a primitive node carrying value, linked to schema.
func NewPrimitiveNode(schema *Schema, value Value) *Node {
	return &Node{Schema: schema, Kind: NodePrimitive, value: value}
}

// NewListNode builds an empty list node linked to schema.
func NewListNode(schema *Schema) *Node {
	return &Node{Schema: schema, Kind: NodeList}
}

// NewRecordNode builds an empty record node linked to schema.
func NewRecordNode(schema *Schema) *Node {
	return &Node{Schema: schema, Kind: NodeRecord, fields: make(map[string]*Node)}
}

func (n *Node) IsPrimitive() bool { return n.Kind == NodePrimitive }
func (n *Node) IsList() bool      { return n.Kind == NodeList }
func (n *Node) IsRecord() bool    { return n.Kind == NodeRecord }

// Value returns the scalar payload of a primitive node.
func (n *Node) Value() Value { return n.value }

// SetValue overwrites the scalar payload of a primitive node.
func (n *Node) SetValue(v Value) { n.value = v }

// Elements returns a list node's ordered children.
func (n *Node) Elements() []*Node { return n.elements }

// AddElement appends a child to a list node.
func (n *Node) AddElement(child *Node) {
	n.elements = append(n.elements, child)
}

// Field looks up a record node's child by name.
func (n *Node) Field(name string) (*Node, bool) {
	if n.fields == nil {
		return nil, false
	}
	c, ok := n.fields[name]
	return c, ok
}

// SetField sets a record node's child by name.
func (n *Node) SetField(name string, child *Node) {
	if n.fields == nil {
		n.fields = make(map[string]*Node)
	}
	n.fields[name] = child
}

// FieldNames returns a record node's field names in the order defined by
// its linked schema (spec.md §3: "order defined by the linked schema's
// field order, not insertion").
func (n *Node) FieldNames() []string {
	if n.Schema == nil {
		return nil
	}
	return n.Schema.fieldOrder
}

// Plain recursively converts the node to a plain Go structure: a scalar
// for primitives, a []interface{} for lists, and a map[string]interface{}
// for records honoring schema field order at construction time (spec.md
// §4.3).
func (n *Node) Plain() interface{} {
	switch n.Kind {
	case NodePrimitive:
		return n.value.ToInterface()
	case NodeList:
		out := make([]interface{}, len(n.elements))
		for i, e := range n.elements {
			out[i] = e.Plain()
		}
		return out
	case NodeRecord:
		out := make(map[string]interface{}, len(n.fields))
		for _, name := range n.FieldNames() {
			if child, ok := n.fields[name]; ok {
				out[name] = child.Plain()
			}
		}
		return out
	}
	return nil
}

// DebugString renders the compact form from spec.md §4.3, e.g.
// "<Node(LIST[int]) len=3>", "<Node(DICT:any) val=3>",
// "<Node(RECORD:User) fields=[id,name]>".
func (n *Node) DebugString() string {
	switch n.Kind {
	case NodePrimitive:
		return fmt.Sprintf("<Node(DICT:%s) val=%s>", n.Schema.TypeName, n.value.Literal(false))
	case NodeList:
		elemType := "any"
		if n.Schema != nil && n.Schema.Element != nil {
			elemType = n.Schema.Element.TypeName
		}
		return fmt.Sprintf("<Node(LIST[%s]) len=%d>", elemType, len(n.elements))
	case NodeRecord:
		typeName := "any"
		if n.Schema != nil {
			typeName = n.Schema.TypeName
		}
		return fmt.Sprintf("<Node(RECORD:%s) fields=[%s]>", typeName, strings.Join(n.FieldNames(), ","))
	}
	return "<Node(?)>"
}

// Dump renders the full tree using kr/pretty, for interactive/debug use
// (Decode with DecodeOptions.Debug set).
func (n *Node) Dump() string {
	return pretty.Sprint(n.Plain())
}

// JSON marshals the node's plain value to JSON, optionally token-level
// ANSI-colourising the output (spec.md §4.3). Field order follows the
// linked schema, which a generic map marshal would not preserve, so
// structure is built by hand while goccy/go-json handles scalar encoding
// (string escaping, number formatting).
func (n *Node) JSON(colorize bool) (string, error) {
	var b strings.Builder
	if err := n.writeJSON(&b, 0); err != nil {
		return "", err
	}
	out := b.String()
	if colorize {
		out = colorizeJSON(out)
	}
	return out, nil
}

func (n *Node) writeJSON(b *strings.Builder, indent int) error {
	pad := strings.Repeat("  ", indent)
	childPad := strings.Repeat("  ", indent+1)
	switch n.Kind {
	case NodePrimitive:
		lit, err := json.Marshal(n.value.ToInterface())
		if err != nil {
			return err
		}
		b.Write(lit)
	case NodeList:
		if len(n.elements) == 0 {
			b.WriteString("[]")
			return nil
		}
		b.WriteString("[\n")
		for i, e := range n.elements {
			b.WriteString(childPad)
			if err := e.writeJSON(b, indent+1); err != nil {
				return err
			}
			if i < len(n.elements)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		b.WriteString(pad + "]")
	case NodeRecord:
		names := n.FieldNames()
		if len(names) == 0 {
			b.WriteString("{}")
			return nil
		}
		b.WriteString("{\n")
		for i, name := range names {
			key, err := json.Marshal(name)
			if err != nil {
				return err
			}
			b.WriteString(childPad)
			b.Write(key)
			b.WriteString(": ")
			child, ok := n.fields[name]
			if !ok {
				b.WriteString("null")
			} else if err := child.writeJSON(b, indent+1); err != nil {
				return err
			}
			if i < len(names)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		b.WriteString(pad + "}")
	}
	return nil
}

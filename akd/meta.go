package akd

import (
	"fmt"
	"strings"
)

// Meta is the metadata container shared by Schema and Node: comments,
// an insertion-ordered attribute map, tags, and a required flag. It is
// syntactically first-class but semantically transparent to consumers
// who only want the data (spec.md §1).
type Meta struct {
	Comments []string
	Tags     []string
	Required bool

	attrKeys []string
	attrs    map[string]Value
}

// NewMeta returns an empty, ready-to-use Meta.
func NewMeta() *Meta {
	return &Meta{attrs: make(map[string]Value)}
}

func (m *Meta) ensure() {
	if m.attrs == nil {
		m.attrs = make(map[string]Value)
	}
}

// SetAttr sets (or overwrites) an attribute, preserving first-seen order.
func (m *Meta) SetAttr(name string, v Value) {
	m.ensure()
	if _, ok := m.attrs[name]; !ok {
		m.attrKeys = append(m.attrKeys, name)
	}
	m.attrs[name] = v
}

// Attr looks up an attribute by name.
func (m *Meta) Attr(name string) (Value, bool) {
	m.ensure()
	v, ok := m.attrs[name]
	return v, ok
}

// AttrKeys returns attribute names in first-seen order.
func (m *Meta) AttrKeys() []string {
	return m.attrKeys
}

// AddComment appends a comment string.
func (m *Meta) AddComment(c string) {
	m.Comments = append(m.Comments, c)
}

// AddTag appends a tag (without its leading '#').
func (m *Meta) AddTag(t string) {
	m.Tags = append(m.Tags, t)
}

// IsEmpty reports whether no metadata has been recorded at all.
func (m *Meta) IsEmpty() bool {
	return len(m.Comments) == 0 && len(m.Tags) == 0 && !m.Required && len(m.attrKeys) == 0
}

// Clear resets the container to empty.
func (m *Meta) Clear() {
	m.Comments = nil
	m.Tags = nil
	m.Required = false
	m.attrKeys = nil
	m.attrs = nil
}

// Apply merges other into m: comments append, attributes overwrite by
// key (first-seen order preserved for keys already present), tags
// append, and required is OR-combined (spec.md §4.1).
func (m *Meta) Apply(other *Meta) {
	if other == nil {
		return
	}
	m.Comments = append(m.Comments, other.Comments...)
	m.Tags = append(m.Tags, other.Tags...)
	m.Required = m.Required || other.Required
	for _, k := range other.attrKeys {
		m.SetAttr(k, other.attrs[k])
	}
}

// Clone returns an independent copy of m.
func (m *Meta) Clone() *Meta {
	c := NewMeta()
	c.Comments = append([]string(nil), m.Comments...)
	c.Tags = append([]string(nil), m.Tags...)
	c.Required = m.Required
	c.attrKeys = append([]string(nil), m.attrKeys...)
	for k, v := range m.attrs {
		c.attrs[k] = v
	}
	return c
}

// DebugString renders a compact, order-stable summary: !required first,
// then #tags, then $key=value attributes (string values quoted), then a
// truncated comment preview — a single comment is abbreviated, multiple
// comments are reported by count (spec.md §4.1).
func (m *Meta) DebugString() string {
	var parts []string
	if m.Required {
		parts = append(parts, "!required")
	}
	for _, t := range m.Tags {
		parts = append(parts, "#"+t)
	}
	for _, k := range m.attrKeys {
		parts = append(parts, fmt.Sprintf("$%s=%s", k, m.attrs[k].AttrLiteral()))
	}
	switch len(m.Comments) {
	case 0:
		// no preview
	case 1:
		parts = append(parts, fmt.Sprintf("/* %s */", truncateComment(m.Comments[0], 24)))
	default:
		parts = append(parts, fmt.Sprintf("/* %d comments */", len(m.Comments)))
	}
	return strings.Join(parts, " ")
}

func truncateComment(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

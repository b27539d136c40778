package akd

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// ValueKind discriminates the scalar payload carried by a primitive Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindNumber
	KindString
)

// Value is the closed set of scalars that can appear as a primitive node's
// payload or as an attribute's value. Numbers are backed by apd.Decimal so
// that literals round-trip byte-for-byte instead of drifting through
// float64 (3.1400 must stay 3.1400, not become 3.14).
type Value struct {
	kind ValueKind
	b    bool
	n    *apd.Decimal
	s    string
	lit  string // source text of a parsed number literal, rendered verbatim
}

func Null() Value            { return Value{kind: KindNull} }
func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }
func Str(s string) Value     { return Value{kind: KindString, s: s} }
func Number(d *apd.Decimal) Value {
	return Value{kind: KindNumber, n: d}
}

// NumberFromString parses a decimal literal as produced by the AKD number
// grammar (optional '-', digits, optional fraction, optional e/E exponent).
func NumberFromString(lit string) (Value, error) {
	d, _, err := apd.NewFromString(lit)
	if err != nil {
		return Value{}, fmt.Errorf("invalid number format: %w", err)
	}
	return Value{kind: KindNumber, n: d, lit: lit}, nil
}

// NumberFromInt64 builds a Value from a Go integer.
func NumberFromInt64(i int64) Value {
	return Value{kind: KindNumber, n: apd.New(i, 0)}
}

// NumberFromFloat64 builds a Value from a Go float, going through its
// shortest decimal text representation to avoid binary-float artifacts.
func NumberFromFloat64(f float64) Value {
	d, _, _ := apd.NewFromString(fmt.Sprintf("%v", f))
	return Value{kind: KindNumber, n: d}
}

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsNull() bool    { return v.kind == KindNull }

func (v Value) AsBool() bool           { return v.b }
func (v Value) AsString() string       { return v.s }
func (v Value) AsDecimal() *apd.Decimal { return v.n }

// IsInteger reports whether the decimal has a zero or positive exponent,
// i.e. can be rendered without a fractional part.
func (v Value) IsInteger() bool {
	if v.kind != KindNumber || v.n == nil {
		return false
	}
	return v.n.Exponent >= 0
}

// Literal renders the value the way it appears inside AKD data text.
func (v Value) Literal(escapeNewLines bool) string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindNumber:
		if v.n == nil {
			return "0"
		}
		if v.lit != "" {
			return v.lit
		}
		return v.n.Text('f')
	case KindString:
		return quoteString(v.s, escapeNewLines)
	}
	return ""
}

// AttrLiteral renders a value the way it appears on the right side of a
// `$key=value` attribute: booleans omit "=true" at the call site, not here.
func (v Value) AttrLiteral() string {
	switch v.kind {
	case KindString:
		return fmt.Sprintf("%q", v.s)
	default:
		return v.Literal(false)
	}
}

// ToInterface converts the value to a plain Go value suitable for
// Node.Plain(): nil, bool, int64/float64, or string.
func (v Value) ToInterface() interface{} {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindString:
		return v.s
	case KindNumber:
		if v.n == nil {
			return int64(0)
		}
		if v.IsInteger() {
			if i, err := v.n.Int64(); err == nil {
				return i
			}
		}
		f, _ := v.n.Float64()
		return f
	}
	return nil
}

// Equal reports deep equality between two values; numbers compare by
// numeric value, so 1.50 equals 1.5.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindString:
		return v.s == o.s
	case KindNumber:
		if v.n == nil || o.n == nil {
			return v.n == o.n
		}
		return v.n.Cmp(o.n) == 0
	default:
		return true
	}
}

func quoteString(s string, escapeNewLines bool) string {
	var buf []byte
	buf = append(buf, '"')
	for _, r := range s {
		switch r {
		case '"':
			buf = append(buf, '\\', '"')
		case '\\':
			buf = append(buf, '\\', '\\')
		case '\n':
			if escapeNewLines {
				buf = append(buf, '\\', 'n')
			} else {
				buf = append(buf, byte(r))
			}
		case '\r':
			if escapeNewLines {
				buf = append(buf, '\\', 'r')
			} else {
				buf = append(buf, byte(r))
			}
		case '\t':
			if escapeNewLines {
				buf = append(buf, '\\', 't')
			} else {
				buf = append(buf, byte(r))
			}
		default:
			buf = append(buf, []byte(string(r))...)
		}
	}
	buf = append(buf, '"')
	return string(buf)
}

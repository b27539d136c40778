package akd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberFromStringRoundTrip(t *testing.T) {
	cases := []string{"0", "123", "-45", "3.1400", "1.5e10", "-2.5E-3"}
	for _, lit := range cases {
		v, err := NumberFromString(lit)
		require.NoError(t, err, lit)
		assert.Equal(t, lit, v.Literal(false), "literal must round-trip byte-for-byte: %s", lit)
	}
}

func TestNumberFromStringInvalid(t *testing.T) {
	_, err := NumberFromString("not-a-number")
	assert.Error(t, err)
}

func TestValueEqual(t *testing.T) {
	a, _ := NumberFromString("1.50")
	b, _ := NumberFromString("1.5")
	assert.True(t, a.Equal(b), "1.50 and 1.5 are numerically equal")
	assert.False(t, Str("x").Equal(Str("y")))
	assert.True(t, Null().Equal(Null()))
}

func TestValueToInterface(t *testing.T) {
	intVal, _ := NumberFromString("42")
	assert.Equal(t, int64(42), intVal.ToInterface())

	floatVal, _ := NumberFromString("3.14")
	assert.Equal(t, 3.14, floatVal.ToInterface())

	assert.Equal(t, "hi", Str("hi").ToInterface())
	assert.Equal(t, true, Bool(true).ToInterface())
	assert.Nil(t, Null().ToInterface())
}

func TestQuoteStringEscaping(t *testing.T) {
	v := Str("line1\nline2\t\"quoted\"")
	assert.Equal(t, `"line1\nline2\t\"quoted\""`, v.Literal(true))
	assert.Equal(t, "\"line1\nline2\t\\\"quoted\\\"\"", v.Literal(false))
}

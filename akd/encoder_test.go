package akd

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRoundTripsCanonicalPrimitive(t *testing.T) {
	const canonical = `<number>123`
	res := Decode(canonical, nil)
	require.Empty(t, res.Errors)
	out, err := EncodeNode(res.Node, nil)
	require.NoError(t, err)
	assert.Equal(t, canonical, out)
}

func TestEncodeRoundTripsCanonicalNamedRecord(t *testing.T) {
	const canonical = `@User<id:number,name:string>(5,"Bob")`
	res := Decode(canonical, nil)
	require.Empty(t, res.Errors)
	out, err := EncodeNode(res.Node, nil)
	require.NoError(t, err)
	assert.Equal(t, canonical, out)
}

func TestEncodeRoundTripsCanonicalListOfInts(t *testing.T) {
	const canonical = `<[number]>[1,2,3]`
	res := Decode(canonical, nil)
	require.Empty(t, res.Errors)
	out, err := EncodeNode(res.Node, nil)
	require.NoError(t, err)
	assert.Equal(t, canonical, out)
}

func TestEncodeIsIdempotent(t *testing.T) {
	const canonical = `@User<id:number,name:string>(5,"Bob")`
	res := Decode(canonical, nil)
	require.Empty(t, res.Errors)

	once, err := EncodeNode(res.Node, nil)
	require.NoError(t, err)

	res2 := Decode(once, nil)
	require.Empty(t, res2.Errors)
	twice, err := EncodeNode(res2.Node, nil)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestEncodeDecodePlainRoundTrip(t *testing.T) {
	original := map[string]interface{}{
		"id":   int64(5),
		"name": "Bob",
		"tags": []interface{}{"a", "b"},
	}
	node, err := Parse(original)
	require.NoError(t, err)

	text, err := Encode(node.Plain(), nil)
	require.NoError(t, err)

	res := Decode(text, nil)
	require.Empty(t, res.Errors)

	if diff := cmp.Diff(original, res.Node.Plain()); diff != "" {
		t.Fatalf("Plain() mismatch after encode/decode round trip (-want +got):\n%s", diff)
	}
}

func TestEncodeTypeMismatchIsTagged(t *testing.T) {
	res := Decode(`<tests:string>{tests:3}`, nil)
	require.Empty(t, res.Errors)

	out, err := EncodeNode(res.Node, nil)
	require.NoError(t, err)
	assert.Equal(t, `<tests:string>(<number> 3)`, out)
}

// TestEncodeCanonicalScenarios exercises seven of the eight concrete
// end-to-end scenarios (spec.md §8): each must decode without errors and
// re-encode to a byte-identical canonical form. The scenario that starts
// from a plain Go value is covered by TestEncodePlainListOfRecords.
func TestEncodeCanonicalScenarios(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"record-no-schema", `{x:10,y:20}`, `<x:number,y:number>(10,20)`},
		{"anon-schema-mismatch", `<tests:string>{tests:3}`, `<tests:string>(<number> 3)`},
		{"list-of-any-mismatch", `<[any]>["a","b","c",3]`, `<[string]>["a","b","c",<number> 3]`},
		{"nested-list-of-ints", `<[[int]]>[[2,3,4],[5,6,7]]`, `<[[number]]>[[2,3,4],[5,6,7]]`},
		{"named-schema-def-and-ref", `@User<id:int,name:string> @User(5,"Bob")`, `@User<id:number,name:string>(5,"Bob")`},
		{"list-instance-meta", `[ // $size=3 $author="me" // 1, 2, 3 ]`, `<[number]>[//$size=3 $author="me"// 1,2,3]`},
		{"backtick-field-with-comment", "< `User ID+`: number /* system id */ > (123)", "<`User ID+`:number /* system id */>(123)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Decode(tc.input, nil)
			require.Empty(t, res.Errors)
			out, err := EncodeNode(res.Node, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out)

			reDecoded := Decode(out, nil)
			require.Empty(t, reDecoded.Errors)
			reEncoded, err := EncodeNode(reDecoded.Node, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.want, reEncoded, "re-encoding the canonical form must be a fixed point")
		})
	}
}

func TestEncodePlainListOfRecords(t *testing.T) {
	node, err := Parse([]interface{}{
		map[string]interface{}{"name": "A", "val": int64(1)},
		map[string]interface{}{"name": "B", "val": int64(2)},
	})
	require.NoError(t, err)
	out, err := EncodeNode(node, nil)
	require.NoError(t, err)
	assert.Equal(t, `<[name:string,val:number]>[("A",1),("B",2)]`, out)
}

func TestEncodeCompactVsPretty(t *testing.T) {
	res := Decode(`<[number]>[1,2,3]`, nil)
	require.Empty(t, res.Errors)

	compactCfg := DefaultConfig()
	compactCfg.Compact = true
	compact, err := EncodeNode(res.Node, &compactCfg)
	require.NoError(t, err)
	assert.NotContains(t, compact, "\n")

	prettyCfg := DefaultConfig()
	prettyCfg.Compact = false
	pretty, err := EncodeNode(res.Node, &prettyCfg)
	require.NoError(t, err)
	assert.Contains(t, pretty, "\n")
}

func TestEncodeOmitsSchemaWhenDisabled(t *testing.T) {
	res := Decode(`<number>123`, nil)
	require.Empty(t, res.Errors)

	cfg := DefaultConfig()
	cfg.IncludeSchema = false
	out, err := EncodeNode(res.Node, &cfg)
	require.NoError(t, err)
	assert.Equal(t, "123", out)
}

func TestEncodeBacktickEscapesInvalidIdentifiers(t *testing.T) {
	assert.Equal(t, "plain", identLiteral("plain"))
	assert.Equal(t, "`has space`", identLiteral("has space"))
	assert.Equal(t, "`2nd`", identLiteral("2nd"))
}

func TestEncodeNilNodeErrors(t *testing.T) {
	_, err := EncodeNode(nil, nil)
	require.Error(t, err)
}

package tweet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortedKeys(t *testing.T) {
	data, err := MarshalCanonical(map[string]any{
		"zebra":  "z",
		"apple":  "a",
		"mango":  "m",
		"banana": "b",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"apple":"a","banana":"b","mango":"m","zebra":"z"}`, string(data))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	data, err := MarshalCanonical("<a href=\"x\">&</a>")
	require.NoError(t, err)
	assert.Equal(t, `"<a href=\"x\">&</a>"`, string(data))
}

func TestMarshalCanonical_NFCNormalization(t *testing.T) {
	// "e" followed by combining acute accent normalizes to the single
	// codepoint form.
	data, err := MarshalCanonical("é")
	require.NoError(t, err)
	assert.Equal(t, "\"é\"", string(data))
}

func TestMarshalCanonical_LineSeparatorsLiteral(t *testing.T) {
	data, err := MarshalCanonical("a\u2028b\u2029c")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(data))
}

func TestMarshalCanonical_EscapedBackslashBeforeU2028(t *testing.T) {
	// A literal backslash followed by the text "u2028" is not an escape
	// and must survive as-is.
	data, err := MarshalCanonical("\\u2028")
	require.NoError(t, err)
	assert.Equal(t, `"\\u2028"`, string(data))
}

func TestMarshalCanonical_ForbiddenValues(t *testing.T) {
	_, err := MarshalCanonical(nil)
	assert.Error(t, err, "null is forbidden")

	_, err = MarshalCanonical(3.14)
	assert.Error(t, err, "floats are forbidden")

	_, err = MarshalCanonical(map[string]any{"x": 1.5})
	assert.Error(t, err, "nested floats are forbidden")

	_, err = MarshalCanonical(struct{}{})
	assert.Error(t, err, "arbitrary structs are not supported")
}

func TestMarshalCanonical_Scalars(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"int", 42, "42"},
		{"int64", int64(-7), "-7"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"id", ID{Lo: 9}, `"9"`},
		{"empty array", []any{}, "[]"},
		{"array", []any{1, "two", true}, `[1,"two",true]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalCanonical(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestMarshalCanonical_Deterministic(t *testing.T) {
	obj := map[string]any{
		"id":       ID{Lo: 3},
		"text":     "hello",
		"comments": []any{"4", "5"},
		"author":   "alice",
	}

	first, err := MarshalCanonical(obj)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := MarshalCanonical(obj)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestCanonicalMap_Shape(t *testing.T) {
	quoted := ID{Lo: 1}
	tw := Tweet{
		ID:        ID{Lo: 2},
		CreatedAt: 5,
		QuoteOf:   &quoted,
		Text:      "look at this",
		Comments:  []ID{{Lo: 3}},
		Author:    "bob",
	}

	data, err := MarshalCanonical(tw.CanonicalMap())
	require.NoError(t, err)
	assert.Equal(t,
		`{"author":"bob","comments":["3"],"created_at":5,"id":"2","quote_of":"1","text":"look at this"}`,
		string(data))
}

func TestCanonicalMap_OmitsAbsentQuote(t *testing.T) {
	tw := Tweet{ID: ID{Lo: 1}, CreatedAt: 1, Text: "hi", Author: "alice"}

	data, err := MarshalCanonical(tw.CanonicalMap())
	require.NoError(t, err)
	assert.Equal(t,
		`{"author":"alice","comments":[],"created_at":1,"id":"1","text":"hi"}`,
		string(data))
}

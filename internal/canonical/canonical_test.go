package canonical

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMapper map[string]any

func (m fakeMapper) ToMap() map[string]any { return m }

func TestMarshal_Scalars(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"null", nil, "null"},
		{"true", true, "true"},
		{"false", false, "false"},
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", 42, "42"},
		{"negative int64", int64(-100), "-100"},
		{"int32", int32(7), "7"},
		{"max int64", int64(math.MaxInt64), "9223372036854775807"},
		{"integral float", 3.0, "3"},
		{"float", 1.5, "1.5"},
		{"empty array", []any{}, "[]"},
		{"empty object", map[string]any{}, "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Marshal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshal_SortedNestedKeys(t *testing.T) {
	got, err := Marshal(map[string]any{
		"z": map[string]any{"b": 1, "a": []any{true, nil}},
		"a": "x",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":"x","z":{"a":[true,null],"b":1}}`, string(got))
}

func TestMarshal_UTF16KeyOrder(t *testing.T) {
	// U+10000 encodes as 0xD800 0xDC00, which sorts before 0xE000.
	got, err := Marshal(map[string]any{
		"\uE000":     1,
		"\U00010000": 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "{\"\U00010000\":2,\"\uE000\":1}", string(got))
}

func TestMarshal_NoHTMLEscaping(t *testing.T) {
	got, err := Marshal("<a & b>")
	require.NoError(t, err)
	assert.Equal(t, `"<a & b>"`, string(got))
}

func TestMarshal_LineSeparatorsLiteral(t *testing.T) {
	got, err := Marshal("a\u2028b\u2029c")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(got))

	got, err = Marshal(`\u2028`)
	require.NoError(t, err)
	assert.Equal(t, `"\\u2028"`, string(got))
}

func TestMarshal_NFC(t *testing.T) {
	got, err := Marshal("e\u0301")
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(got))
}

func TestMarshal_Mapper(t *testing.T) {
	got, err := Marshal([]any{fakeMapper{"y": 2, "x": 1}})
	require.NoError(t, err)
	assert.Equal(t, `[{"x":1,"y":2}]`, string(got))
}

func TestMarshal_Errors(t *testing.T) {
	_, err := Marshal(math.NaN())
	assert.Error(t, err)

	_, err = Marshal(map[string]any{"k": struct{}{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `["k"]`)

	assert.Panics(t, func() { MustMarshal(math.Inf(1)) })
}

func TestCompareKeys(t *testing.T) {
	assert.Equal(t, 0, CompareKeys("a", "a"))
	assert.Equal(t, -1, CompareKeys("a", "ab"))
	assert.Equal(t, 1, CompareKeys("b", "a"))
	assert.Equal(t, -1, CompareKeys("\U00010000", "\uE000"))
}

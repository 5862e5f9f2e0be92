package jsonutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	File    string `json:"file"`
	Summary string `json:"summary"`
}

func TestDecodeLoosePlain(t *testing.T) {
	var s sample
	err := DecodeLoose(`{"file":"a.go","summary":"add helper"}`, &s)
	require.NoError(t, err)
	assert.Equal(t, "a.go", s.File)
	assert.Equal(t, "add helper", s.Summary)
}

func TestDecodeLooseFenced(t *testing.T) {
	raw := "```json\n{\"file\":\"a.go\",\"summary\":\"add helper\"}\n```"
	var s sample
	require.NoError(t, DecodeLoose(raw, &s))
	assert.Equal(t, "add helper", s.Summary)
}

func TestDecodeLooseProseWrapped(t *testing.T) {
	raw := `Sure! Here is the JSON you asked for:
{"file":"a.go","summary":"add helper"}
Let me know if you need anything else.`
	var s sample
	require.NoError(t, DecodeLoose(raw, &s))
	assert.Equal(t, "a.go", s.File)
}

func TestDecodeLooseNestedBraces(t *testing.T) {
	raw := `note {"outer":{"inner":"{literal} brace"},"file":"b.go","summary":"x"} trailing`
	var s sample
	require.NoError(t, DecodeLoose(raw, &s))
	assert.Equal(t, "b.go", s.File)
}

func TestDecodeLooseGarbage(t *testing.T) {
	var s sample
	assert.Error(t, DecodeLoose("", &s))
	assert.Error(t, DecodeLoose("no json here at all", &s))
	assert.Error(t, DecodeLoose("{broken", &s))
}

func TestLargestObject(t *testing.T) {
	assert.Equal(t, `{"a":1}`, LargestObject(`x {"a":1} y`))
	assert.Equal(t, "", LargestObject("nothing"))
	assert.Equal(t, "", LargestObject("{unclosed"))
	// string content with braces must not confuse the scanner
	assert.Equal(t, `{"a":"}{"}`, LargestObject(`{"a":"}{"}`))
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFences(`{"a":1}`))
}

func TestMarshalNoEscape(t *testing.T) {
	b, err := MarshalNoEscape(map[string]string{"s": "<a> & b"})
	require.NoError(t, err)
	assert.Equal(t, `{"s":"<a> & b"}`, string(b))
}

func TestNormalizeJSONUnicode(t *testing.T) {
	out, err := NormalizeJSONUnicode([]byte(`{"s":"a \\u003e b"}`))
	require.NoError(t, err)
	assert.Contains(t, string(out), "a > b")
}

func TestUnescapeUnicode(t *testing.T) {
	assert.Equal(t, "a > b", UnescapeUnicode(`a \u003e b`))
	assert.Equal(t, "plain", UnescapeUnicode("plain"))
	assert.Equal(t, `\uZZZZ`, UnescapeUnicode(`\uZZZZ`))
}

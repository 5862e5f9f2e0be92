package jsonutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoJSON is returned when no parseable JSON object can be recovered
// from a piece of model output.
var ErrNoJSON = errors.New("jsonutil: no JSON object found")

// StripFences removes a surrounding Markdown code fence (``` or ```json)
// if the text is wrapped in one. Text without fences is returned unchanged.
func StripFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return s
	}
	t = strings.TrimPrefix(t, "```")
	if i := strings.IndexByte(t, '\n'); i >= 0 {
		// drop the language tag on the opening fence line
		t = t[i+1:]
	}
	if i := strings.LastIndex(t, "```"); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}

// LargestObject returns the largest balanced {...} substring of s, or ""
// when none exists. Models sometimes prepend or append prose around the
// JSON they were asked for; this recovers the object itself.
func LargestObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inStr := false
	esc := false
	end := -1
	for i := start; i < len(s); i++ {
		c := s[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case c == '\\':
				esc = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				end = i
			}
		}
	}
	if end < 0 {
		return ""
	}
	return s[start : end+1]
}

// DecodeLoose decodes model output into v with best effort:
// 1) strip code fences and unmarshal directly
// 2) unmarshal the largest balanced {...} substring
// 3) normalize double-escaped unicode and try once more
// It returns ErrNoJSON (wrapped) when nothing parseable remains.
func DecodeLoose(s string, v any) error {
	t := StripFences(s)
	if err := json.Unmarshal([]byte(t), v); err == nil {
		return nil
	}
	if obj := LargestObject(t); obj != "" {
		if err := json.Unmarshal([]byte(obj), v); err == nil {
			return nil
		}
		if norm, err := NormalizeJSONUnicode([]byte(obj)); err == nil {
			if err := json.Unmarshal(norm, v); err == nil {
				return nil
			}
		}
	}
	return ErrNoJSON
}

// MarshalNoEscape encodes v as JSON with HTML escaping disabled, so
// <, > and & stay literal instead of becoming \u003c style sequences.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// Remove trailing newline from json.Encoder.Encode
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

var reUnicodeEsc = regexp.MustCompile(`\\u[0-9a-fA-F]{4}`)

// UnescapeUnicode converts lingering escapes like `\u003e` inside an
// already-decoded string into actual characters. These show up when a model
// HTML-escapes its JSON and the payload gets decoded twice.
func UnescapeUnicode(s string) string {
	if !strings.Contains(s, `\u`) {
		return s
	}
	return reUnicodeEsc.ReplaceAllStringFunc(s, func(m string) string {
		n, err := strconv.ParseUint(m[2:], 16, 32)
		if err != nil {
			return m
		}
		return string(rune(n))
	})
}

// NormalizeJSONUnicode parses JSON bytes and recursively unescapes any
// remaining double-escaped unicode sequences (e.g. "\\u003e") inside string
// values. Useful before unmarshalling into a struct.
func NormalizeJSONUnicode(raw []byte) ([]byte, error) {
	var anyVal any
	if err := json.Unmarshal(raw, &anyVal); err != nil {
		// Handle the case where the entire JSON is a quoted string.
		var s string
		if err2 := json.Unmarshal(raw, &s); err2 != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(s), &anyVal); err != nil {
			return nil, errors.New("jsonutil: cannot parse JSON payload")
		}
	}
	return MarshalNoEscape(deepUnescape(anyVal))
}

// deepUnescape recursively traverses maps and slices, unescaping unicode
// sequences in all string values.
func deepUnescape(v any) any {
	switch x := v.(type) {
	case string:
		return UnescapeUnicode(x)
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = deepUnescape(x[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, vv := range x {
			out[k] = deepUnescape(vv)
		}
		return out
	default:
		return v
	}
}

package generation

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Extract recovers a JSON value from free-form model output.
//
// The whole text is first parsed strictly. If that fails, the span from the
// first '{' to the last '}' is parsed instead, which tolerates prose or code
// fences around an object. A literal null counts as nothing found. Extract
// never fails; the boolean reports whether a value was recovered.
func Extract(text string) (json.RawMessage, bool) {
	trimmed := strings.TrimSpace(text)
	if raw, ok := parseStrict(trimmed); ok {
		return raw, true
	}

	start := strings.IndexByte(trimmed, '{')
	end := strings.LastIndexByte(trimmed, '}')
	if start < 0 || end <= start {
		return nil, false
	}
	return parseStrict(trimmed[start : end+1])
}

func parseStrict(s string) (json.RawMessage, bool) {
	if s == "" || !json.Valid([]byte(s)) {
		return nil, false
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(s)); err != nil {
		return nil, false
	}
	if buf.String() == "null" {
		return nil, false
	}
	return json.RawMessage(buf.Bytes()), true
}

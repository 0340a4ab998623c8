// Package jsonutil cleans up the JSON that LLM providers actually return:
// markdown code fences, double-escaped unicode, stray prose around the
// object. UnmarshalFlex is the one entry point the pipeline uses.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"strings"
)

// StripCodeFence removes a surrounding markdown fence (``` or ```json) if
// the payload carries one.
func StripCodeFence(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(s, "```") {
		return raw
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		// Drop the language tag line (```json).
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return []byte(strings.TrimSpace(s))
}

// ExtractObject trims any prose around the outermost JSON object or array.
func ExtractObject(raw []byte) []byte {
	s := string(raw)
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return raw
	}
	open := s[start]
	closing := byte('}')
	if open == '[' {
		closing = ']'
	}
	end := strings.LastIndexByte(s, closing)
	if end <= start {
		return raw
	}
	return []byte(s[start : end+1])
}

// MarshalNoEscape encodes v without escaping <, >, & into unicode sequences,
// which matters for HTML carried inside JSON strings.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalFlex unmarshals LLM output with best effort:
// direct parse, then fence stripping, then prose trimming.
func UnmarshalFlex(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err == nil {
		return nil
	}
	stripped := StripCodeFence(raw)
	if err := json.Unmarshal(stripped, v); err == nil {
		return nil
	}
	return json.Unmarshal(ExtractObject(stripped), v)
}

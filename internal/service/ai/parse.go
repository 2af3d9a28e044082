package ai

import (
	"encoding/json"
	"strings"
)

// Result is one model reply: the decoded JSON value, or the raw text under
// a fallback wrapper when decoding failed. Consumers branch on Fallback
// instead of inspecting the error that caused the degradation.
type Result struct {
	data     any
	raw      string
	fallback bool
}

// Fallback reports whether JSON decoding failed and Value carries the raw
// text wrapper instead of a decoded structure.
func (r Result) Fallback() bool {
	return r.fallback
}

// Value returns the decoded JSON value, or {"raw": <text>} for fallbacks.
func (r Result) Value() any {
	if r.fallback {
		return map[string]any{"raw": r.raw}
	}
	return r.data
}

// Float looks up a numeric key on a decoded JSON object. It reports false
// for fallbacks, non-object values, missing keys, and non-numeric values.
func (r Result) Float(key string) (float64, bool) {
	obj, ok := r.data.(map[string]any)
	if r.fallback || !ok {
		return 0, false
	}
	v, ok := obj[key].(float64)
	return v, ok
}

// MarshalJSON serializes the same shape Value returns.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Value())
}

// Parse strips markdown code fences from raw and decodes it as JSON. The
// prompts instruct the model to reply with bare JSON; the fence handling is
// a defense against the model violating that contract.
func Parse(raw string) (any, error) {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Dropping the first line also swallows a language tag like "json".
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		} else {
			s = s[3:]
		}
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(s[:len(s)-3])
	}

	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Decode parses raw and degrades to a fallback Result when parsing fails.
// A malformed model reply is never fatal to the request.
func Decode(raw string) Result {
	v, err := Parse(raw)
	if err != nil {
		return Result{raw: raw, fallback: true}
	}
	return Result{data: v}
}

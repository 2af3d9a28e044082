package ai

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestParseCleanJSON(t *testing.T) {
	raw := `{"compatibility_score": 85, "tip": "listen more"}`

	got, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse err: %v", err)
	}

	var want any
	if err := json.Unmarshal([]byte(raw), &want); err != nil {
		t.Fatalf("Unmarshal err: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Parse(%q) = %v, want %v", raw, got, want)
	}
}

func TestParseStripsFences(t *testing.T) {
	want := map[string]any{"title": "picnic", "score": float64(70)}
	encoded, _ := json.Marshal(want)

	cases := []struct {
		name string
		raw  string
	}{
		{"json tag with newlines", "```json\n" + string(encoded) + "\n```"},
		{"bare fence no newline", "```" + string(encoded) + "```"},
		{"fence with surrounding whitespace", "  ```json\n" + string(encoded) + "\n```  "},
		{"opening fence only", "```json\n" + string(encoded)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.raw)
			if err != nil {
				t.Fatalf("Parse err: %v", err)
			}
			if !reflect.DeepEqual(got, map[string]any(want)) {
				t.Fatalf("Parse = %v, want %v", got, want)
			}
		})
	}
}

func TestDecodeMalformedFallsBack(t *testing.T) {
	res := Decode("not json")

	if !res.Fallback() {
		t.Fatal("expected fallback result")
	}
	want := map[string]any{"raw": "not json"}
	if !reflect.DeepEqual(res.Value(), want) {
		t.Fatalf("Value = %v, want %v", res.Value(), want)
	}
}

func TestDecodeFallbackKeepsOriginalText(t *testing.T) {
	// The fence prefix survives in the fallback: stripping is only applied
	// to the decode attempt, never to the preserved raw text.
	raw := "```json\nnot quite json\n```"
	res := Decode(raw)

	if !res.Fallback() {
		t.Fatal("expected fallback result")
	}
	if res.Value().(map[string]any)["raw"] != raw {
		t.Fatalf("raw = %v, want %q", res.Value(), raw)
	}
}

func TestResultMarshalJSON(t *testing.T) {
	decoded := Decode(`{"overall_score": 72.5}`)
	buf, err := json.Marshal(decoded)
	if err != nil {
		t.Fatalf("Marshal err: %v", err)
	}
	if string(buf) != `{"overall_score":72.5}` {
		t.Fatalf("unexpected marshal output: %s", buf)
	}

	fallback := Decode("plain text")
	buf, err = json.Marshal(fallback)
	if err != nil {
		t.Fatalf("Marshal err: %v", err)
	}
	if string(buf) != `{"raw":"plain text"}` {
		t.Fatalf("unexpected fallback marshal output: %s", buf)
	}
}

func TestResultFloat(t *testing.T) {
	cases := []struct {
		name   string
		raw    string
		key    string
		want   float64
		wantOK bool
	}{
		{"present", `{"overall_score": 88}`, "overall_score", 88, true},
		{"missing key", `{"summary": "fine"}`, "overall_score", 0, false},
		{"non-numeric", `{"overall_score": "high"}`, "overall_score", 0, false},
		{"non-object", `[1, 2, 3]`, "overall_score", 0, false},
		{"fallback", `not json`, "overall_score", 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Decode(tc.raw).Float(tc.key)
			if ok != tc.wantOK || got != tc.want {
				t.Fatalf("Float(%q) = %v, %v; want %v, %v", tc.key, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

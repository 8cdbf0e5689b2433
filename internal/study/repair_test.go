package study

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestStripFences(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"json language tag", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"crlf", "```json\r\n{\"a\":1}\r\n```", `{"a":1}`},
		{"surrounding whitespace", "  \n```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripFences(tc.in); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestStripTrailingCommas(t *testing.T) {
	t.Parallel()

	in := `{"a": [1, 2, 3,], "b": {"c": 1,},}`
	want := `{"a": [1, 2, 3], "b": {"c": 1}}`
	if got := StripTrailingCommas(in); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestAnchorExtract(t *testing.T) {
	t.Parallel()

	got, ok := AnchorExtract(`Here is the JSON you asked for: {"a":1} hope it helps!`)
	if !ok || got != `{"a":1}` {
		t.Fatalf("got %q ok=%v", got, ok)
	}

	if _, ok := AnchorExtract("no braces here"); ok {
		t.Fatalf("expected no anchor")
	}
}

func TestRepairFullPipeline(t *testing.T) {
	t.Parallel()

	raw := "```json\nSure! {\"subject\": \"Biology\", \"outline\": [\"A\", \"B\",]}\n```"

	var out Analysis
	if err := json.Unmarshal([]byte(Repair(raw)), &out); err != nil {
		t.Fatalf("repaired text should be valid JSON: %v", err)
	}
	if out.Subject != "Biology" || len(out.Outline) != 2 {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestRepairLeavesValidJSONAlone(t *testing.T) {
	t.Parallel()

	in := `{"subject":"Math","outline":["x"]}`
	if got := Repair(in); got != in {
		t.Fatalf("valid JSON should pass through unchanged, got %q", got)
	}
}

func TestDecodeObjectRegexFallback(t *testing.T) {
	t.Parallel()

	// Starts with '{' so anchor extraction is skipped, but the trailing
	// prose makes the whole string invalid. The fallback isolates the
	// object shape.
	raw := `{"subject":"Chem","outline":["a"]} That concludes the analysis.`

	var out Analysis
	if err := decodeObject(raw, &out); err != nil {
		t.Fatalf("fallback should rescue the object: %v", err)
	}
	if out.Subject != "Chem" {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestDecodeObjectErrorOmitsRawText(t *testing.T) {
	t.Parallel()

	raw := "completely unusable response with a secret: hunter2"

	var out Analysis
	err := decodeObject(raw, &out)
	if err == nil {
		t.Fatalf("expected error")
	}
	if strings.Contains(err.Error(), "hunter2") {
		t.Fatalf("error must not echo upstream text: %v", err)
	}
}

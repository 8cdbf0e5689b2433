package study

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// Provider responses are free text, not guaranteed valid JSON. Repair is an
// ordered pipeline of pure text transforms, each a defence layer:
// fence strip, trailing-comma strip, structural-anchor extraction, and a
// final regex fallback in decodeObject.

var (
	fenceOpenRE     = regexp.MustCompile("^```[a-zA-Z]*[ \t]*\r?\n?")
	fenceCloseRE    = regexp.MustCompile("\r?\n?```$")
	trailingCommaRE = regexp.MustCompile(`,(\s*[}\]])`)
	objectRE        = regexp.MustCompile(`(?s)\{.*\}`)
)

// StripFences removes a wrapping Markdown code fence and its language tag.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = fenceOpenRE.ReplaceAllString(s, "")
	s = fenceCloseRE.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// StripTrailingCommas removes commas that directly precede a closing
// bracket or brace.
func StripTrailingCommas(s string) string {
	return trailingCommaRE.ReplaceAllString(s, "$1")
}

// AnchorExtract isolates the outermost braced structure: first '{' to last
// '}'. Reports whether an anchor pair was found.
func AnchorExtract(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		return s[start : end+1], true
	}
	return s, false
}

// Repair applies the transform pipeline in order. Anchor extraction only
// runs when the text does not already start with the expected opener.
func Repair(raw string) string {
	s := StripFences(raw)
	s = StripTrailingCommas(s)
	if !strings.HasPrefix(s, "{") {
		if extracted, ok := AnchorExtract(s); ok {
			s = extracted
		}
	}
	return s
}

// decodeObject parses raw into v after repair, with one regex-based
// fallback pass. The returned error never contains the raw text.
func decodeObject(raw string, v any) error {
	repaired := Repair(raw)

	err := json.Unmarshal([]byte(repaired), v)
	if err == nil {
		return nil
	}

	// Fallback: isolate whatever looks like the expected object shape and
	// try once more.
	if m := objectRE.FindString(repaired); m != "" && m != repaired {
		if fallbackErr := json.Unmarshal([]byte(StripTrailingCommas(m)), v); fallbackErr == nil {
			return nil
		}
	}

	return errors.New("not valid JSON after repair: " + err.Error())
}

package recommend

import (
	"fmt"
	"strings"
)

// ExtractObject recovers the JSON object embedded in a model response.
// Models frequently wrap JSON in markdown code fences or surround it with
// conversational prose; recovery runs in two stages:
//  1. strip a leading/trailing code fence (```json and bare ``` both accepted)
//  2. if the remainder is not already a bare object, scan for the first
//     balanced top-level {...} span
//
// The scanner tracks string literals and escapes, so braces inside strings
// (or a stray { in preceding prose followed by a real object) do not derail
// extraction. The returned span is a candidate — it may still fail to
// unmarshal if the model emitted malformed JSON.
func ExtractObject(raw string) (string, error) {
	s := StripFences(raw)

	if isBareObject(s) {
		return s, nil
	}

	obj, ok := firstBalancedObject(s)
	if !ok {
		return "", fmt.Errorf("no JSON object found in response")
	}
	return obj, nil
}

// StripFences removes a wrapping markdown code fence, language-tagged or
// not. Text without a fence is returned trimmed and otherwise untouched.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	// Drop the language tag up to the first newline, if any.
	if idx := strings.IndexByte(s, '\n'); idx != -1 && !strings.ContainsAny(s[:idx], "{}") {
		s = s[idx+1:]
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// isBareObject reports whether s looks like a single complete JSON object
// with nothing around it.
func isBareObject(s string) bool {
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return false
	}
	obj, ok := firstBalancedObject(s)
	return ok && obj == s
}

// firstBalancedObject scans s for the first balanced top-level {...} span.
// A { that never closes is skipped in favor of a later complete object.
func firstBalancedObject(s string) (string, bool) {
	for start := 0; start < len(s); start++ {
		if s[start] != '{' {
			continue
		}
		if end, ok := scanObject(s, start); ok {
			return s[start : end+1], true
		}
	}
	return "", false
}

// scanObject walks s from the opening brace at start and returns the index
// of the matching closing brace. String literals and escape sequences are
// honored so braces inside strings do not count.
func scanObject(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

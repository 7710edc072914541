// Package json normalizes tool inputs that models wrap in JSON or markdown.
//
// Models asked for a plain "Action Input:" line often answer with a quoted
// string, a fenced code block, or a one-field JSON object instead. The
// helpers here peel those wrappers off so tools receive the raw value.
package json

import (
	"encoding/json"
	"fmt"
	"strings"
)

// inputKeys are the object keys treated as "the" input when a model sends
// a JSON object with more than one field.
var inputKeys = []string{"input", "query", "expression", "code", "text", "q"}

// extractJSON finds and returns the JSON portion of a response string.
// It handles common LLM response patterns:
// 1. Pure JSON response - returns the full response
// 2. JSON wrapped in markdown code blocks (```json ... ```)
// 3. JSON object embedded in text - finds first '{' and last '}'
func extractJSON(response string) (string, error) {
	response = StripCodeFence(response)

	var test interface{}
	if err := json.Unmarshal([]byte(response), &test); err == nil {
		return response, nil
	}

	start := strings.Index(response, "{")
	if start != -1 {
		end := strings.LastIndex(response, "}")
		if end != -1 && end > start {
			jsonStr := response[start : end+1]
			if err := json.Unmarshal([]byte(jsonStr), &test); err == nil {
				return jsonStr, nil
			}
		}
	}

	preview := response
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}
	return "", fmt.Errorf("failed to extract valid JSON from response: %q", preview)
}

// ExtractJSON extracts the JSON portion from a response string.
func ExtractJSON(response string) (string, error) {
	return extractJSON(response)
}

// StripCodeFence removes a surrounding markdown code fence, including any
// language tag on the opening line (```python, ```json, ```).
func StripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if nl := strings.IndexByte(trimmed, '\n'); nl != -1 {
		tag := strings.TrimSpace(trimmed[:nl])
		if tag == "" || !strings.ContainsAny(tag, " \t(){};=") {
			trimmed = trimmed[nl+1:]
		}
	}
	trimmed = strings.TrimSpace(trimmed)
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}

// FenceLanguage returns the language tag of a fenced block, or "".
func FenceLanguage(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return ""
	}
	line, _, _ := strings.Cut(strings.TrimPrefix(trimmed, "```"), "\n")
	return strings.ToLower(strings.TrimSpace(line))
}

// UnwrapInput reduces a model-supplied action input to the plain string a
// tool expects. Quoted strings are unquoted, fences stripped, and a JSON
// object with a single string field (or a well-known input key) is
// replaced by that field's value. Anything else is returned trimmed.
func UnwrapInput(s string) string {
	s = StripCodeFence(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == '"' && last == '"' {
			var unquoted string
			if err := json.Unmarshal([]byte(s), &unquoted); err == nil {
				return strings.TrimSpace(unquoted)
			}
			return strings.TrimSpace(s[1 : len(s)-1])
		}
		if first == '\'' && last == '\'' {
			return strings.TrimSpace(s[1 : len(s)-1])
		}
	}

	if !strings.HasPrefix(s, "{") {
		return s
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return s
	}
	if len(obj) == 1 {
		for _, v := range obj {
			if str, ok := v.(string); ok {
				return strings.TrimSpace(str)
			}
		}
	}
	for _, key := range inputKeys {
		if str, ok := obj[key].(string); ok {
			return strings.TrimSpace(str)
		}
	}
	return s
}

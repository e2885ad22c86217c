package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// fencePattern matches markdown code fences with an optional language tag.
var fencePattern = regexp.MustCompile("(?s)```(\\w*)\\s*\\n(.+?)\\n```")

// ExtractJSON extracts a JSON document from an LLM completion that may be
// wrapped in prose or markdown fences. Priority:
//  1. JSON inside ```json ... ``` or untagged ``` ... ``` fences
//  2. the first raw JSON object {...} or array [...] in the text
func ExtractJSON(response string) (string, error) {
	if doc, ok := extractFromFence(response); ok {
		return doc, nil
	}
	if doc, ok := extractRawJSON(response); ok {
		return doc, nil
	}
	return "", fmt.Errorf("no valid JSON found in response")
}

// DecodeJSON extracts JSON from a completion and unmarshals it into v.
func DecodeJSON(response string, v any) error {
	doc, err := ExtractJSON(response)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(doc), v); err != nil {
		return fmt.Errorf("failed to decode extracted JSON: %w", err)
	}
	return nil
}

// extractFromFence finds JSON in markdown code fences.
func extractFromFence(response string) (string, bool) {
	for _, match := range fencePattern.FindAllStringSubmatch(response, -1) {
		if len(match) < 3 {
			continue
		}

		lang := strings.ToLower(match[1])
		content := strings.TrimSpace(match[2])

		// Skip fences explicitly tagged as another language.
		if lang != "" && lang != "json" {
			continue
		}

		if (strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[")) && json.Valid([]byte(content)) {
			return content, true
		}
	}
	return "", false
}

// extractRawJSON finds the first balanced JSON object or array in the text.
func extractRawJSON(response string) (string, bool) {
	start := -1
	for i := 0; i < len(response); i++ {
		if response[i] == '{' || response[i] == '[' {
			start = i
			break
		}
	}
	if start < 0 {
		return "", false
	}

	doc := balancedPrefix(response[start:])
	if doc != "" && json.Valid([]byte(doc)) {
		return doc, true
	}
	return "", false
}

// balancedPrefix returns the shortest prefix of s that forms a balanced JSON
// document, accounting for strings and escapes. Returns "" if s never balances.
func balancedPrefix(s string) string {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}

		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// Brackets inside strings don't count.
		case c == '{' || c == '[':
			depth++
		case c == '}' || c == ']':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}

package util

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hupe1980/leadmesh/core"
)

// RenderTemplate substitutes {key} placeholders in text with values from
// state. Doubled braces escape literals: "{{" renders "{" and "}}" renders
// "}", which is how per-item pipelines defer substitution of their indexed
// keys to a later render.
//
// A placeholder whose key is absent renders as the empty string, keeping
// conversational prompts robust to partial context. Keys listed in required
// are the exception: their absence returns a *core.MissingStateError so a
// pipeline that cannot run meaningfully without its payload fails before any
// tool call is made.
func RenderTemplate(text string, state map[string]any, required ...string) (string, error) {
	for _, key := range required {
		if _, ok := state[key]; !ok {
			return "", &core.MissingStateError{Key: key, Template: snippet(text)}
		}
	}

	if !strings.ContainsAny(text, "{}") { // fast path: no placeholders
		return text, nil
	}

	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(text); {
		c := text[i]

		switch {
		case c == '{' && i+1 < len(text) && text[i+1] == '{':
			b.WriteByte('{')
			i += 2
		case c == '}' && i+1 < len(text) && text[i+1] == '}':
			b.WriteByte('}')
			i += 2
		case c == '{':
			end := strings.IndexByte(text[i:], '}')
			if end < 0 {
				// Unterminated placeholder; emit verbatim.
				b.WriteString(text[i:])
				i = len(text)
				break
			}
			key := text[i+1 : i+end]
			if isIdentifier(key) {
				if v, ok := state[key]; ok {
					b.WriteString(formatValue(v))
				}
				// Absent optional keys render empty.
			} else {
				b.WriteString(text[i : i+end+1])
			}
			i += end + 1
		default:
			b.WriteByte(c)
			i++
		}
	}

	return b.String(), nil
}

// isIdentifier reports whether s is a valid placeholder key: a non-empty
// run of letters, digits, underscores or dots.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != '_' && r != '.' &&
			(r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// formatValue renders a state value for prompt inclusion. Structured values
// serialize as compact JSON so records stay machine-readable inside prompts.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case map[string]any, []any, []map[string]any:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// snippet truncates a template for error diagnostics.
func snippet(text string) string {
	const max = 40
	text = strings.ReplaceAll(text, "\n", " ")
	if len(text) > max {
		return text[:max] + "…"
	}
	return text
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

var (
	fenceOpen  = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	fenceClose = regexp.MustCompile("\\s*```$")
)

// ErrNoJSONObject is returned when a model reply holds no JSON object.
var ErrNoJSONObject = eris.New("generate: no JSON object in reply")

// ExtractJSONObject parses the JSON object in a model reply. Code fences
// are stripped; if the whole reply does not parse, the text between the
// first '{' and the last '}' is tried instead.
func ExtractJSONObject(text string) (map[string]any, error) {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = fenceOpen.ReplaceAllString(cleaned, "")
		cleaned = fenceClose.ReplaceAllString(cleaned, "")
		cleaned = strings.TrimSpace(cleaned)
	}

	var parsed any
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		start := strings.Index(cleaned, "{")
		end := strings.LastIndex(cleaned, "}")
		if start == -1 || end <= start {
			return nil, ErrNoJSONObject
		}
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &parsed); err != nil {
			return nil, eris.Wrap(err, "generate: parsing JSON object")
		}
	}

	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, eris.New("generate: reply is JSON but not an object")
	}
	return obj, nil
}

// unwrap returns payload[key] when the model wrapped its answer in an
// envelope such as {"brief": {...}}.
func unwrap(payload map[string]any, key string) map[string]any {
	if inner, ok := payload[key].(map[string]any); ok {
		return inner
	}
	return payload
}

// field returns the first present key among names.
func field(m map[string]any, names ...string) (any, bool) {
	for _, n := range names {
		if v, ok := m[n]; ok {
			return v, true
		}
	}
	return nil, false
}

func hasAll(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			return false
		}
	}
	return true
}

// str returns a trimmed string value, or "" for anything else.
func str(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// strOr returns str(v), or fallback when that is empty.
func strOr(v any, fallback string) string {
	if s := str(v); s != "" {
		return s
	}
	return fallback
}

// stringList coerces a JSON value into non-blank trimmed strings. A lone
// string becomes a one-element list.
func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
	case []any:
		var out []string
		for _, item := range t {
			if s := str(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func listOr(v any, fallback []string) []string {
	if l := stringList(v); len(l) > 0 {
		return l
	}
	return fallback
}

// positiveInt accepts JSON numbers that are positive whole values.
func positiveInt(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok || f < 1 || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

func objects(v any) []map[string]any {
	items, _ := v.([]any)
	var out []map[string]any
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

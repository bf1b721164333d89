// Package caseconv renames map keys between snake_case and camelCase.
//
// Conversion is recursive: nested maps and slices of maps are renamed
// uniformly. Values that are not maps or slices are returned unchanged.
package caseconv

import (
	"strings"
	"unicode"
)

// ToSnake returns v with every map key converted to snake_case.
func ToSnake(v any) any {
	return convert(v, SnakeKey)
}

// ToCamel returns v with every map key converted to camelCase.
func ToCamel(v any) any {
	return convert(v, CamelKey)
}

// MapToSnake is ToSnake for a single map.
func MapToSnake(m map[string]any) map[string]any {
	return convertMap(m, SnakeKey)
}

// MapToCamel is ToCamel for a single map.
func MapToCamel(m map[string]any) map[string]any {
	return convertMap(m, CamelKey)
}

// SnakeKey converts "defaultSessionDuration" to "default_session_duration".
// Runs of capitals are kept together: "userID" becomes "user_id".
func SnakeKey(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)

	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]))
			nextLower := i > 0 && i+1 < len(runes) && unicode.IsUpper(runes[i-1]) && unicode.IsLower(runes[i+1])
			if prevLower || nextLower {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CamelKey converts "default_session_duration" to "defaultSessionDuration".
// Leading underscores are dropped.
func CamelKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	upper := false
	for _, r := range s {
		if r == '_' {
			upper = b.Len() > 0
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func convert(v any, key func(string) string) any {
	switch t := v.(type) {
	case map[string]any:
		return convertMap(t, key)
	case []map[string]any:
		out := make([]map[string]any, len(t))
		for i, m := range t {
			out[i] = convertMap(m, key)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = convert(e, key)
		}
		return out
	default:
		return v
	}
}

func convertMap(m map[string]any, key func(string) string) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[key(k)] = convert(v, key)
	}
	return out
}

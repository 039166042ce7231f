package execute

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseToolList splits "ruff,Black" into lowercase names, dropping blanks
// and duplicates.
func ParseToolList(s string) []string {
	var out []string
	seen := map[string]bool{}
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// ParseToolOptions parses "tool:key=value,tool:key=value" into per-tool
// option maps. Values are coerced: true/false, none/null, integers, floats,
// and "a|b" lists; everything else stays a string.
func ParseToolOptions(s string) (map[string]map[string]any, error) {
	out := map[string]map[string]any{}
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		tool, kv, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("tool option %q: expected tool:key=value", entry)
		}
		key, value, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("tool option %q: expected tool:key=value", entry)
		}
		tool = strings.ToLower(strings.TrimSpace(tool))
		if out[tool] == nil {
			out[tool] = map[string]any{}
		}
		out[tool][strings.TrimSpace(key)] = CoerceValue(value)
	}
	return out, nil
}

// CoerceValue converts a CLI option string to a typed value.
func CoerceValue(raw string) any {
	v := strings.TrimSpace(raw)
	if strings.Contains(v, "|") {
		parts := strings.Split(v, "|")
		list := make([]any, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				list = append(list, CoerceValue(p))
			}
		}
		return list
	}
	switch strings.ToLower(v) {
	case "true":
		return true
	case "false":
		return false
	case "none", "null":
		return nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}

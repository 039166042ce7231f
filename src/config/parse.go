package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// reserved tool section keys; everything else in a tool section is a setting.
var reservedToolKeys = map[string]bool{
	"enabled":       true,
	"config_source": true,
	"overrides":     true,
}

// fromMap builds a Config from a decoded document in the
// .lintro-config.yaml shape (global / execution / post_checks / tools).
func fromMap(doc map[string]any) *Config {
	cfg := &Config{
		Global:    parseGlobal(asMap(doc["global"])),
		Execution: parseExecution(asMap(doc["execution"])),
		Tools:     parseTools(asMap(doc["tools"])),
	}
	cfg.PostChecks = parsePostChecks(asMap(doc["post_checks"]))
	return cfg
}

func parseGlobal(m map[string]any) GlobalConfig {
	var g GlobalConfig
	if v, ok := asInt(first(m, "line_length", "line-length")); ok {
		g.LineLength = &v
	}
	if v, ok := asString(first(m, "target_python", "target_version", "target-version")); ok {
		g.TargetVersion = &v
	}
	if v, ok := asInt(first(m, "indent_size", "indent-size")); ok {
		g.IndentSize = &v
	}
	if v, ok := asString(first(m, "quote_style", "quote-style")); ok {
		g.QuoteStyle = &v
	}
	return g
}

func parseExecution(m map[string]any) ExecutionPolicy {
	e := ExecutionPolicy{
		ToolOrder:         OrderPriority,
		PriorityOverrides: map[string]int{},
	}

	e.EnabledTools = asStringList(first(m, "enabled_tools", "enabled-tools"))

	switch order := first(m, "tool_order", "tool-order").(type) {
	case string:
		e.ToolOrder = OrderStrategy(strings.ToLower(strings.TrimSpace(order)))
	case []any:
		e.ToolOrder = OrderCustom
		e.CustomOrder = asStringList(order)
	}
	if custom := asStringList(first(m, "custom_order", "custom-order")); len(custom) > 0 {
		e.CustomOrder = custom
	}

	for k, v := range asMap(first(m, "priority_overrides", "priority-overrides")) {
		if n, ok := asInt(v); ok {
			e.PriorityOverrides[strings.ToLower(k)] = n
		}
	}

	e.FailFast, _ = asBool(first(m, "fail_fast", "fail-fast"))
	e.Parallel, _ = asBool(m["parallel"])
	return e
}

func parsePostChecks(m map[string]any) PostChecks {
	p := PostChecks{}
	p.Enabled, _ = asBool(m["enabled"])
	p.EnforceFailure, _ = asBool(first(m, "enforce_failure", "enforce-failure"))
	for _, t := range asStringList(m["tools"]) {
		p.Tools = append(p.Tools, strings.ToLower(t))
	}
	return p
}

func parseTools(m map[string]any) map[string]ToolConfig {
	tools := make(map[string]ToolConfig, len(m))
	for name, raw := range m {
		key := strings.ToLower(name)
		switch v := raw.(type) {
		case map[string]any:
			tools[key] = parseTool(v)
		case bool:
			tools[key] = ToolConfig{Enabled: v}
		}
	}
	return tools
}

func parseTool(m map[string]any) ToolConfig {
	tc := ToolConfig{
		Enabled:   true,
		Overrides: map[string]any{},
		Settings:  map[string]any{},
	}
	if v, ok := asBool(m["enabled"]); ok {
		tc.Enabled = v
	}
	if v, ok := asString(m["config_source"]); ok {
		tc.ConfigSource = v
	}
	if o := asMap(m["overrides"]); o != nil {
		tc.Overrides = o
	}
	for k, v := range m {
		if reservedToolKeys[k] {
			continue
		}
		tc.Settings[k] = v
	}
	return tc
}

// first returns the value of the first key present in m.
func first(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

func asMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out
	}
	return nil
}

func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case nil:
		return "", false
	}
	return fmt.Sprint(v), true
}

func asBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return parsed, err == nil
	}
	return false, false
}

// asInt accepts any integral number; YAML, TOML and JSON decode to
// different numeric types.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) {
			return int(n), true
		}
	}
	return 0, false
}

func asStringList(v any) []string {
	switch l := v.(type) {
	case string:
		if strings.TrimSpace(l) == "" {
			return nil
		}
		return []string{l}
	case []string:
		return l
	case []any:
		out := make([]string, 0, len(l))
		for _, item := range l {
			if s, ok := asString(item); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

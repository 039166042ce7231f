package config

import (
	"fmt"
	"sort"
	"strings"
)

// Validate checks a loaded Config against the set of registered tool names.
// Returns warnings (soft issues) and a hard error if the config is invalid.
func Validate(cfg *Config, knownTools []string) (warnings []string, err error) {
	var errs []string

	known := make(map[string]bool, len(knownTools))
	for _, t := range knownTools {
		known[strings.ToLower(t)] = true
	}
	isKnown := func(name string) bool {
		return len(known) == 0 || known[strings.ToLower(name)]
	}

	// ── Global ────────────────────────────────────────────────────────────

	if ll := cfg.Global.LineLength; ll != nil && *ll <= 0 {
		errs = append(errs, fmt.Sprintf("global.line_length: must be positive, got %d", *ll))
	}
	if is := cfg.Global.IndentSize; is != nil && *is <= 0 {
		errs = append(errs, fmt.Sprintf("global.indent_size: must be positive, got %d", *is))
	}
	if qs := cfg.Global.QuoteStyle; qs != nil {
		switch *qs {
		case "double", "single", "preserve":
		default:
			warnings = append(warnings, fmt.Sprintf("global.quote_style: unrecognized value %q (expected double, single or preserve)", *qs))
		}
	}

	// ── Execution ─────────────────────────────────────────────────────────

	if !cfg.Execution.ToolOrder.Valid() {
		warnings = append(warnings, fmt.Sprintf("execution.tool_order: unknown strategy %q, priority ordering will be used", cfg.Execution.ToolOrder))
	}
	if cfg.Execution.ToolOrder == OrderCustom && len(cfg.Execution.CustomOrder) == 0 {
		warnings = append(warnings, "execution.tool_order: custom ordering without custom_order, falling back to priority for every tool")
	}
	for i, name := range cfg.Execution.CustomOrder {
		if !isKnown(name) {
			warnings = append(warnings, fmt.Sprintf("execution.custom_order[%d]: unknown tool %q", i, name))
		}
	}
	for i, name := range cfg.Execution.EnabledTools {
		if !isKnown(name) {
			errs = append(errs, fmt.Sprintf("execution.enabled_tools[%d]: unknown tool %q", i, name))
		}
	}
	for _, name := range sortedKeys(cfg.Execution.PriorityOverrides) {
		if !isKnown(name) {
			warnings = append(warnings, fmt.Sprintf("execution.priority_overrides: unknown tool %q", name))
		}
	}
	if cfg.Execution.Parallel {
		warnings = append(warnings, "execution.parallel: parallel execution is not supported, tools run sequentially")
	}

	// ── Post-checks ───────────────────────────────────────────────────────

	for i, name := range cfg.PostChecks.Tools {
		if !isKnown(name) {
			errs = append(errs, fmt.Sprintf("post_checks.tools[%d]: unknown tool %q", i, name))
		}
	}

	// ── Tools ─────────────────────────────────────────────────────────────

	for _, name := range sortedKeys(cfg.Tools) {
		if !isKnown(name) {
			warnings = append(warnings, fmt.Sprintf("tools.%s: not a registered tool, section ignored", name))
		}
	}

	if len(errs) > 0 {
		return warnings, fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return warnings, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package config

import (
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Key classification for the legacy [tool.lintro] table.
var (
	legacyToolNames = map[string]bool{
		"ruff":              true,
		"black":             true,
		"prettier":          true,
		"yamllint":          true,
		"markdownlint":      true,
		"markdownlint-cli2": true,
		"bandit":            true,
		"darglint":          true,
		"hadolint":          true,
		"actionlint":        true,
		"mypy":              true,
		"shellcheck":        true,
		"sqlfluff":          true,
		"pytest":            true,
	}
	legacyExecutionKeys = map[string]bool{
		"enabled_tools":      true,
		"tool_order":         true,
		"custom_order":       true,
		"priority_overrides": true,
		"fail_fast":          true,
		"parallel":           true,
	}
	legacyGlobalKeys = map[string]bool{
		"line_length":   true,
		"target_python": true,
		"indent_size":   true,
		"quote_style":   true,
	}
)

// legacyTable extracts [tool.lintro] from pyproject.toml contents.
func legacyTable(data []byte) (map[string]any, error) {
	var doc struct {
		Tool map[string]any `toml:"tool"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return asMap(doc.Tool["lintro"]), nil
}

// convertLegacy translates the flat [tool.lintro] layout into the
// .lintro-config.yaml document shape.
func convertLegacy(table map[string]any) map[string]any {
	global := map[string]any{}
	execution := map[string]any{}
	tools := map[string]any{}
	out := map[string]any{
		"global":    global,
		"execution": execution,
		"tools":     tools,
	}

	for key, value := range table {
		lower := strings.ToLower(key)
		norm := strings.ReplaceAll(key, "-", "_")

		switch {
		case legacyToolNames[lower]:
			if lower == "markdownlint-cli2" {
				lower = "markdownlint"
			}
			tools[lower] = value
		case legacyExecutionKeys[norm]:
			execution[norm] = value
		case legacyGlobalKeys[norm]:
			global[norm] = value
		case norm == "post_checks":
			out["post_checks"] = value
		case norm == "versions":
			// pinned tool versions are not part of the config model
		default:
			global[key] = value
		}
	}
	return out
}

package config

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// MigrateLegacy converts the [tool.lintro] table of a pyproject.toml into
// .lintro-config.yaml contents.
//
// Tool sections keep their keys verbatim; the pinned "versions" table is
// dropped because the config model does not carry it.
func MigrateLegacy(pyproject []byte) ([]byte, error) {
	table, err := legacyTable(pyproject)
	if err != nil {
		return nil, fmt.Errorf("migrate: reading pyproject.toml: %w", err)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("migrate: no [tool.lintro] table found")
	}

	doc := convertLegacy(table)
	for _, section := range []string{"global", "execution", "tools"} {
		if m, ok := doc[section].(map[string]any); ok && len(m) == 0 {
			delete(doc, section)
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("migrate: encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("migrate: encoding yaml: %w", err)
	}
	return buf.Bytes(), nil
}

package resolve

import (
	"os"
	"path/filepath"

	"github.com/TurboCoder13/py-lintro-sub001/src/format"
	"github.com/TurboCoder13/py-lintro-sub001/src/tools"
)

// NativeSource reads a tool's own configuration. Implementations never
// modify the files they read; a missing config is an empty map.
type NativeSource interface {
	Native(tool string) map[string]any
}

// NativeSourceFunc adapts a function to NativeSource.
type NativeSourceFunc func(tool string) map[string]any

func (f NativeSourceFunc) Native(tool string) map[string]any { return f(tool) }

type nativeFile struct {
	name  string
	table string // pyproject [tool.<table>] or package.json key
	wrap  string // nest the decoded doc under this key
}

// Checked in order; the first file that exists and decodes wins.
var nativeFiles = map[string][]nativeFile{
	tools.Ruff: {
		{name: "ruff.toml"},
		{name: ".ruff.toml"},
		{name: "pyproject.toml", table: "ruff"},
	},
	tools.Black:  {{name: "pyproject.toml", table: "black"}},
	tools.Bandit: {{name: "pyproject.toml", table: "bandit"}},
	tools.Mypy:   {{name: "pyproject.toml", table: "mypy"}},
	tools.Sqlfluff: {
		{name: "pyproject.toml", table: "sqlfluff"},
	},
	tools.Prettier: {
		{name: ".prettierrc"},
		{name: ".prettierrc.json"},
		{name: ".prettierrc.yaml"},
		{name: ".prettierrc.yml"},
		{name: "package.json", table: "prettier"},
	},
	tools.Yamllint: {
		{name: ".yamllint"},
		{name: ".yamllint.yaml"},
		{name: ".yamllint.yml"},
	},
	tools.Markdownlint: {
		{name: ".markdownlint-cli2.jsonc"},
		{name: ".markdownlint.json", wrap: "config"},
		{name: ".markdownlint.jsonc", wrap: "config"},
		{name: ".markdownlint.yaml", wrap: "config"},
		{name: ".markdownlint.yml", wrap: "config"},
	},
	tools.Hadolint: {
		{name: ".hadolint.yaml"},
		{name: ".hadolint.yml"},
	},
}

// FileNativeSource reads native configs from a project directory.
type FileNativeSource struct {
	Dir string
}

// Native implements NativeSource.
func (s FileNativeSource) Native(tool string) map[string]any {
	for _, nf := range nativeFiles[tool] {
		doc, ok := readNative(filepath.Join(s.Dir, nf.name))
		if !ok {
			continue
		}
		if nf.table != "" {
			if nf.name == "pyproject.toml" {
				doc, _ = doc["tool"].(map[string]any)
			}
			doc, _ = doc[nf.table].(map[string]any)
			if doc == nil {
				continue
			}
		}
		if nf.wrap != "" {
			doc = map[string]any{nf.wrap: doc}
		}
		return doc
	}
	return map[string]any{}
}

func readNative(path string) (map[string]any, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	if f, ok := format.Detect(path); ok {
		doc, err := format.Decode(data, f)
		return doc, err == nil
	}
	doc, _, err := format.DecodeAuto(data)
	return doc, err == nil
}

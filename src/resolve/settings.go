package resolve

import (
	"strings"

	"github.com/TurboCoder13/py-lintro-sub001/src/config"
	"github.com/TurboCoder13/py-lintro-sub001/src/tools"
)

// Global setting names.
const (
	LineLength    = "line_length"
	TargetVersion = "target_python"
	IndentSize    = "indent_size"
	QuoteStyle    = "quote_style"
)

// Mapping places a global setting into one tool's native config.
type Mapping struct {
	Tool       string
	Path       string // dotted path in the tool's native document
	Injectable bool   // false: only diagnosed, never written
	Transform  func(any) any
	// Companions are dotted paths written beside Path whenever lintro
	// places the value, unless the document already sets them.
	Companions map[string]any
}

func (m Mapping) apply(v any) any {
	if m.Transform != nil {
		return m.Transform(v)
	}
	return v
}

// Place writes v (already in native form) at m.Path plus any companions
// missing from doc.
func (m Mapping) Place(doc map[string]any, v any) {
	SetPath(doc, m.Path, v)
	for path, cv := range m.Companions {
		if _, ok := GetPath(doc, path); !ok {
			SetPath(doc, path, cv)
		}
	}
}

// Setting is one globally-settable key and where it lands per tool.
type Setting struct {
	Name    string
	Aliases []string // generic keys accepted inside a tool section
	Global  func(config.GlobalConfig) (any, bool)
	Tools   []Mapping
}

// Mapping returns the setting's mapping for tool.
func (s Setting) Mapping(tool string) (Mapping, bool) {
	for _, m := range s.Tools {
		if m.Tool == tool {
			return m, true
		}
	}
	return Mapping{}, false
}

// GlobalSettings is the static table of global keys and their per-tool
// native locations.
var GlobalSettings = []Setting{
	{
		Name:    LineLength,
		Aliases: []string{"line_length", "line-length"},
		Global: func(g config.GlobalConfig) (any, bool) {
			if g.LineLength == nil {
				return nil, false
			}
			return *g.LineLength, true
		},
		Tools: []Mapping{
			{Tool: tools.Ruff, Path: "line-length", Injectable: true},
			{Tool: tools.Black, Path: "line-length", Injectable: true},
			{Tool: tools.Prettier, Path: "printWidth", Injectable: true},
			{Tool: tools.Yamllint, Path: "rules.line-length.max", Injectable: true},
			{Tool: tools.Markdownlint, Path: "config.MD013.line_length", Injectable: true, Companions: map[string]any{
				"config.MD013.code_blocks": false,
				"config.MD013.tables":      false,
			}},
			{Tool: tools.Sqlfluff, Path: "core.max_line_length"},
		},
	},
	{
		Name:    TargetVersion,
		Aliases: []string{"target_python", "target_version", "target-version"},
		Global: func(g config.GlobalConfig) (any, bool) {
			if g.TargetVersion == nil {
				return nil, false
			}
			return *g.TargetVersion, true
		},
		Tools: []Mapping{
			{Tool: tools.Ruff, Path: "target-version", Injectable: true},
			{Tool: tools.Black, Path: "target-version", Injectable: true, Transform: blackTargetVersions},
		},
	},
	{
		Name:    IndentSize,
		Aliases: []string{"indent_size", "indent-size"},
		Global: func(g config.GlobalConfig) (any, bool) {
			if g.IndentSize == nil {
				return nil, false
			}
			return *g.IndentSize, true
		},
		Tools: []Mapping{
			{Tool: tools.Prettier, Path: "tabWidth", Injectable: true},
			{Tool: tools.Ruff, Path: "indent-width", Injectable: true},
			{Tool: tools.Yamllint, Path: "rules.indentation.spaces", Injectable: true},
		},
	},
	{
		Name:    QuoteStyle,
		Aliases: []string{"quote_style", "quote-style"},
		Global: func(g config.GlobalConfig) (any, bool) {
			if g.QuoteStyle == nil {
				return nil, false
			}
			return *g.QuoteStyle, true
		},
		Tools: []Mapping{
			{Tool: tools.Ruff, Path: "format.quote-style", Injectable: true},
			{Tool: tools.Prettier, Path: "singleQuote", Injectable: true, Transform: singleQuote},
		},
	},
}

// LookupSetting returns the table entry for name.
func LookupSetting(name string) (Setting, bool) {
	for _, s := range GlobalSettings {
		if s.Name == name {
			return s, true
		}
	}
	return Setting{}, false
}

func singleQuote(v any) any {
	if s, ok := v.(string); ok {
		return s == "single"
	}
	return v
}

// black takes a list of target versions.
func blackTargetVersions(v any) any {
	if s, ok := v.(string); ok {
		return []any{s}
	}
	return v
}

// SettingsLayer returns the entries of layer that carry a global setting
// for tool, by alias or under the top-level key of its native path.
func SettingsLayer(tool string, layer map[string]any) map[string]any {
	out := map[string]any{}
	for _, s := range GlobalSettings {
		m, ok := s.Mapping(tool)
		if !ok {
			continue
		}
		keys := append([]string{strings.SplitN(m.Path, ".", 2)[0]}, s.Aliases...)
		for _, k := range keys {
			if v, ok := layer[k]; ok {
				out[k] = v
			}
		}
	}
	return out
}

// Nativize rewrites generic setting aliases in a tool section layer
// ("line_length") to the tool's native path ("rules.line-length.max").
// carried reports which settings the layer set in either form. An alias is
// dropped when the native path is also present; the native value wins.
func Nativize(tool string, layer map[string]any) (out map[string]any, carried map[string]bool) {
	out = CloneMap(layer)
	carried = map[string]bool{}
	for _, s := range GlobalSettings {
		m, hasMapping := s.Mapping(tool)
		if hasMapping {
			if _, ok := GetPath(out, m.Path); ok {
				carried[s.Name] = true
			}
		}
		for _, alias := range s.Aliases {
			v, ok := out[alias]
			if !ok || (hasMapping && alias == m.Path) {
				continue
			}
			carried[s.Name] = true
			if !hasMapping {
				continue
			}
			delete(out, alias)
			if _, exists := GetPath(out, m.Path); !exists {
				m.Place(out, m.apply(v))
			}
		}
	}
	return out, carried
}

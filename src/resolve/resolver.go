// Package resolve computes the effective settings for a tool from the CLI,
// the tool's section in the lintro config, the global section, and the
// tool's own native config file.
package resolve

import (
	"fmt"
	"maps"
	"strings"

	"go.uber.org/zap"

	"github.com/TurboCoder13/py-lintro-sub001/src/config"
	"github.com/TurboCoder13/py-lintro-sub001/src/format"
	"github.com/TurboCoder13/py-lintro-sub001/src/tools"
)

// ToolConfigInfo summarizes how one tool is configured.
type ToolConfigInfo struct {
	ToolName         string         `json:"tool" yaml:"tool"`
	NativeConfig     map[string]any `json:"native_config" yaml:"native_config"`
	LintroToolConfig map[string]any `json:"lintro_tool_config" yaml:"lintro_tool_config"`
	EffectiveConfig  map[string]any `json:"effective_config" yaml:"effective_config"`
	Warnings         []string       `json:"warnings" yaml:"warnings"`
	IsInjectable     bool           `json:"is_injectable" yaml:"is_injectable"`
}

// Resolver answers effective-setting questions against one Config.
type Resolver struct {
	cfg    *config.Config
	native NativeSource
	logger *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithNativeSource sets where native tool configs are read from.
func WithNativeSource(src NativeSource) Option {
	return func(r *Resolver) { r.native = src }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// New returns a resolver over cfg. Without WithNativeSource, native configs
// are read from the current directory.
func New(cfg *config.Config, opts ...Option) *Resolver {
	if cfg == nil {
		cfg = config.Default()
	}
	r := &Resolver{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	if r.native == nil {
		r.native = FileNativeSource{Dir: "."}
	}
	return r
}

// Config returns the resolver's config.
func (r *Resolver) Config() *config.Config { return r.cfg }

// Resolve returns the tool's effective option map. Tiers, lowest first:
// global settings written at the tool's native paths, the tool section's
// effective settings, then cli. Each tier replaces lower tiers per
// top-level key; every cli key lands unchanged. A cli setting given by
// alias ("line_length") is also written at the native path, so it beats
// the lower tiers there too. Non-injectable mappings are never written.
func (r *Resolver) Resolve(tool string, cli map[string]any) map[string]any {
	tool = strings.ToLower(tool)
	tc := r.cfg.Tool(tool)
	out := map[string]any{}

	type placement struct {
		m Mapping
		v any
	}
	var fromCLI []placement
	for _, s := range GlobalSettings {
		m, ok := s.Mapping(tool)
		if !ok || !m.Injectable {
			continue
		}
		if v, native, ok := lookupSetting(cli, s, m, true); ok {
			if !native {
				v = m.apply(v)
			}
			fromCLI = append(fromCLI, placement{m: m, v: v})
			continue
		}
		if v, ok := r.delivered(tc, s, m); ok {
			m.Place(out, v)
		}
	}

	maps.Copy(out, CloneMap(tc.EffectiveSettings()))
	for _, p := range fromCLI {
		p.m.Place(out, p.v)
	}
	maps.Copy(out, cli)
	return out
}

// delivered is the value lintro would hand the tool for s, in the tool's
// native form: tool overrides, tool settings, then global.
func (r *Resolver) delivered(tc config.ToolConfig, s Setting, m Mapping) (any, bool) {
	for _, layer := range []map[string]any{tc.Overrides, tc.Settings} {
		if v, native, ok := lookupSetting(layer, s, m, true); ok {
			if native {
				return v, true
			}
			return m.apply(v), true
		}
	}
	if v, ok := s.Global(r.cfg.Global); ok {
		return m.apply(v), true
	}
	return nil, false
}

// lookupSetting finds s in a tool section layer, first under a generic
// alias, then (when hasMapping) at the tool's native path.
func lookupSetting(layer map[string]any, s Setting, m Mapping, hasMapping bool) (v any, native bool, ok bool) {
	for _, alias := range s.Aliases {
		if v, ok := layer[alias]; ok {
			return v, false, true
		}
	}
	if hasMapping {
		if v, ok := GetPath(layer, m.Path); ok {
			return v, true, true
		}
	}
	return nil, false, false
}

// EffectiveValue returns setting's value for tool: tool overrides, tool
// settings, global, native config, in that order.
func (r *Resolver) EffectiveValue(tool, setting string) (any, bool) {
	tool = strings.ToLower(tool)
	s, ok := LookupSetting(setting)
	if !ok {
		return nil, false
	}
	m, hasMapping := s.Mapping(tool)
	tc := r.cfg.Tool(tool)

	for _, layer := range []map[string]any{tc.Overrides, tc.Settings} {
		if v, _, ok := lookupSetting(layer, s, m, hasMapping); ok {
			return v, true
		}
	}
	if v, ok := s.Global(r.cfg.Global); ok {
		return v, true
	}
	if hasMapping {
		if v, ok := GetPath(r.native.Native(tool), m.Path); ok {
			return v, true
		}
	}
	return nil, false
}

// EffectiveLineLength returns the line length tool will run with.
func (r *Resolver) EffectiveLineLength(tool string) (int, bool) {
	v, ok := r.EffectiveValue(tool, LineLength)
	if !ok {
		return 0, false
	}
	n, ok := format.Normalize(v).(int)
	return n, ok
}

// EffectiveTargetVersion returns the Python target version for tool.
func (r *Resolver) EffectiveTargetVersion(tool string) (string, bool) {
	v, ok := r.EffectiveValue(tool, TargetVersion)
	if !ok {
		return "", false
	}
	switch x := v.(type) {
	case string:
		return x, true
	case []any:
		if len(x) > 0 {
			return fmt.Sprint(x[0]), true
		}
	}
	return "", false
}

// EffectiveIndentSize returns the indent width for tool.
func (r *Resolver) EffectiveIndentSize(tool string) (int, bool) {
	v, ok := r.EffectiveValue(tool, IndentSize)
	if !ok {
		return 0, false
	}
	n, ok := format.Normalize(v).(int)
	return n, ok
}

// EffectiveQuoteStyle returns "single", "double" or "preserve" for tool.
func (r *Resolver) EffectiveQuoteStyle(tool string) (string, bool) {
	v, ok := r.EffectiveValue(tool, QuoteStyle)
	if !ok {
		return "", false
	}
	switch x := v.(type) {
	case string:
		return x, true
	case bool:
		if x {
			return "single", true
		}
		return "double", true
	}
	return "", false
}

// IsInjectable reports whether lintro can deliver settings to tool at all.
func (r *Resolver) IsInjectable(tool string) bool {
	spec, ok := tools.Lookup(tool)
	return ok && spec.Injectable()
}

// IsSettingInjectable reports whether setting can reach tool.
func (r *Resolver) IsSettingInjectable(setting, tool string) bool {
	s, ok := LookupSetting(setting)
	if !ok {
		return false
	}
	m, ok := s.Mapping(strings.ToLower(tool))
	return ok && m.Injectable && r.IsInjectable(tool)
}

// ValidateConsistency compares every tool's native config with what lintro
// would deliver and returns one warning per disagreement. Recomputed on
// every call.
func (r *Resolver) ValidateConsistency() []string {
	var warnings []string
	for _, s := range GlobalSettings {
		for _, m := range s.Tools {
			if w, ok := r.consistencyWarning(s, m); ok {
				warnings = append(warnings, w)
			}
		}
	}
	return warnings
}

func (r *Resolver) consistencyWarning(s Setting, m Mapping) (string, bool) {
	nativeValue, ok := GetPath(r.native.Native(m.Tool), m.Path)
	if !ok {
		return "", false
	}
	effective, ok := r.delivered(r.cfg.Tool(m.Tool), s, m)
	if !ok || sameValue(nativeValue, effective) {
		return "", false
	}

	if r.IsSettingInjectable(s.Name, m.Tool) {
		return fmt.Sprintf("%s: native config has %s=%v, but lintro will override it with %v",
			m.Tool, m.Path, nativeValue, effective), true
	}
	return fmt.Sprintf("%s: native config has %s=%v, which differs from the central %s=%v; lintro cannot override this tool's native config, update it manually",
		m.Tool, m.Path, nativeValue, s.Name, effective), true
}

// Info describes tool's configuration across all tiers.
func (r *Resolver) Info(tool string) ToolConfigInfo {
	tool = strings.ToLower(tool)
	tc := r.cfg.Tool(tool)

	info := ToolConfigInfo{
		ToolName:         tool,
		NativeConfig:     r.native.Native(tool),
		LintroToolConfig: tc.EffectiveSettings(),
		EffectiveConfig:  map[string]any{},
		IsInjectable:     r.IsInjectable(tool),
	}
	for _, s := range GlobalSettings {
		if v, ok := r.EffectiveValue(tool, s.Name); ok {
			info.EffectiveConfig[s.Name] = v
		}
		if m, ok := s.Mapping(tool); ok {
			if w, ok := r.consistencyWarning(s, m); ok {
				info.Warnings = append(info.Warnings, w)
			}
		}
	}
	return info
}

// Summary returns Info for each named tool.
func (r *Resolver) Summary(names []string) map[string]ToolConfigInfo {
	out := make(map[string]ToolConfigInfo, len(names))
	for _, name := range names {
		out[strings.ToLower(name)] = r.Info(name)
	}
	return out
}

package config

import (
	"maps"
	"strings"
)

// Built-in defaults used when no configuration source is found.
const (
	DefaultLineLength    = 88
	DefaultTargetVersion = "py313"
)

// OrderStrategy selects how tools are sequenced.
type OrderStrategy string

const (
	OrderPriority     OrderStrategy = "priority"
	OrderAlphabetical OrderStrategy = "alphabetical"
	OrderCustom       OrderStrategy = "custom"
)

// Valid reports whether s is one of the known strategies.
func (s OrderStrategy) Valid() bool {
	switch s {
	case OrderPriority, OrderAlphabetical, OrderCustom:
		return true
	}
	return false
}

// GlobalConfig holds settings that cascade to every tool supporting them.
// A nil field means "not configured".
type GlobalConfig struct {
	LineLength    *int
	TargetVersion *string
	IndentSize    *int
	QuoteStyle    *string
}

// ExecutionPolicy controls which tools run and in what order.
type ExecutionPolicy struct {
	EnabledTools      []string // empty = all tools enabled
	ToolOrder         OrderStrategy
	CustomOrder       []string
	PriorityOverrides map[string]int
	FailFast          bool
	Parallel          bool // accepted for forward compatibility, no effect
}

// PostChecks configures the secondary tool phase run after the main sequence.
type PostChecks struct {
	Enabled        bool
	Tools          []string
	EnforceFailure bool
}

// ToolConfig is the per-tool override record.
type ToolConfig struct {
	Enabled      bool
	ConfigSource string         // native config file used as merge base
	Overrides    map[string]any // highest priority
	Settings     map[string]any
}

// EffectiveSettings returns settings overlaid by overrides. The result is a
// fresh map; nested values are not merged at this level.
func (t ToolConfig) EffectiveSettings() map[string]any {
	out := make(map[string]any, len(t.Settings)+len(t.Overrides))
	maps.Copy(out, t.Settings)
	maps.Copy(out, t.Overrides)
	return out
}

// Config is the resolved root configuration. It is never mutated after
// construction; use WithTool to derive a modified copy.
type Config struct {
	Global     GlobalConfig
	Execution  ExecutionPolicy
	PostChecks PostChecks
	Tools      map[string]ToolConfig // keys always lowercase
	SourcePath string                // empty for the built-in default
	Isolated   bool                  // discovery and injection disabled by environment
}

// Default returns the built-in configuration.
func Default() *Config {
	ll := DefaultLineLength
	tv := DefaultTargetVersion
	return &Config{
		Global: GlobalConfig{
			LineLength:    &ll,
			TargetVersion: &tv,
		},
		Execution: ExecutionPolicy{
			ToolOrder:         OrderPriority,
			PriorityOverrides: map[string]int{},
		},
		Tools: map[string]ToolConfig{},
	}
}

// Tool returns the configuration for name, matched case-insensitively.
// Unconfigured tools get an enabled, empty ToolConfig.
func (c *Config) Tool(name string) ToolConfig {
	if c != nil {
		if tc, ok := c.Tools[strings.ToLower(name)]; ok {
			return tc
		}
	}
	return ToolConfig{Enabled: true}
}

// HasTool reports whether name has an explicit tool section.
func (c *Config) HasTool(name string) bool {
	if c == nil {
		return false
	}
	_, ok := c.Tools[strings.ToLower(name)]
	return ok
}

// IsToolEnabled applies the enabled_tools filter and the tool's own flag.
func (c *Config) IsToolEnabled(name string) bool {
	lower := strings.ToLower(name)
	if c != nil && len(c.Execution.EnabledTools) > 0 {
		found := false
		for _, t := range c.Execution.EnabledTools {
			if strings.ToLower(t) == lower {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return c.Tool(lower).Enabled
}

// WithTool returns a copy of c with name's tool config replaced.
func (c *Config) WithTool(name string, tc ToolConfig) *Config {
	cp := *c
	cp.Tools = make(map[string]ToolConfig, len(c.Tools)+1)
	maps.Copy(cp.Tools, c.Tools)
	cp.Tools[strings.ToLower(name)] = tc
	return &cp
}

// WithGlobal returns a copy of c with the global section replaced.
func (c *Config) WithGlobal(g GlobalConfig) *Config {
	cp := *c
	cp.Global = g
	return &cp
}

// WithExecution returns a copy of c with the execution policy replaced.
func (c *Config) WithExecution(e ExecutionPolicy) *Config {
	cp := *c
	cp.Execution = e
	return &cp
}

// WithPostChecks returns a copy of c with the post-check section replaced.
func (c *Config) WithPostChecks(p PostChecks) *Config {
	cp := *c
	cp.PostChecks = p
	return &cp
}

// IntPtr and StringPtr are helpers for building GlobalConfig literals.
func IntPtr(v int) *int { return &v }

func StringPtr(v string) *string { return &v }

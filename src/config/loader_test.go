package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func noEnv(string) string { return "" }

func newTestLoader(dir string, opts ...Option) *Loader {
	base := []Option{WithWorkDir(dir), WithEnv(noEnv)}
	return NewLoader(append(base, opts...)...)
}

const sampleConfig = `
global:
  line_length: 100
  target_python: py312
execution:
  enabled_tools: [ruff, prettier]
  tool_order: custom
  custom_order: [prettier, ruff]
  priority_overrides:
    Ruff: 5
  fail_fast: true
post_checks:
  enabled: true
  tools: [Black]
  enforce_failure: true
tools:
  Ruff:
    select: [E, F]
    overrides:
      line-length: 120
  darglint: false
  prettier:
    enabled: false
    config_source: .prettierrc.json
`

func TestLoadDiscoveredFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".lintro-config.yaml", sampleConfig)

	cfg := newTestLoader(dir).Load("")

	assert.Equal(t, path, cfg.SourcePath)
	require.NotNil(t, cfg.Global.LineLength)
	assert.Equal(t, 100, *cfg.Global.LineLength)
	assert.Equal(t, "py312", *cfg.Global.TargetVersion)
	assert.Nil(t, cfg.Global.IndentSize)

	assert.Equal(t, []string{"ruff", "prettier"}, cfg.Execution.EnabledTools)
	assert.Equal(t, OrderCustom, cfg.Execution.ToolOrder)
	assert.Equal(t, []string{"prettier", "ruff"}, cfg.Execution.CustomOrder)
	assert.Equal(t, map[string]int{"ruff": 5}, cfg.Execution.PriorityOverrides)
	assert.True(t, cfg.Execution.FailFast)

	assert.True(t, cfg.PostChecks.Enabled)
	assert.True(t, cfg.PostChecks.EnforceFailure)
	assert.Equal(t, []string{"black"}, cfg.PostChecks.Tools)

	ruff := cfg.Tool("RUFF")
	assert.True(t, ruff.Enabled)
	assert.Equal(t, 120, ruff.Overrides["line-length"])
	assert.Contains(t, ruff.Settings, "select")

	assert.False(t, cfg.Tool("darglint").Enabled)
	prettier := cfg.Tool("prettier")
	assert.False(t, prettier.Enabled)
	assert.Equal(t, ".prettierrc.json", prettier.ConfigSource)

	for name := range cfg.Tools {
		assert.Equal(t, name, strings.ToLower(name), "tool keys must be lowercase")
	}
}

func TestLoadWalksUpward(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "lintro-config.yml", "global:\n  line_length: 77\n")
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg := newTestLoader(nested).Load("")

	assert.Equal(t, path, cfg.SourcePath)
	assert.Equal(t, 77, *cfg.Global.LineLength)
}

func TestLoadFileNamePrecedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lintro-config.yaml", "global:\n  line_length: 1\n")
	want := writeFile(t, dir, ".lintro-config.yml", "global:\n  line_length: 2\n")

	cfg := newTestLoader(dir).Load("")

	assert.Equal(t, want, cfg.SourcePath)
	assert.Equal(t, 2, *cfg.Global.LineLength)
}

func TestLoadExplicitPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".lintro-config.yaml", "global:\n  line_length: 1\n")
	explicit := writeFile(t, dir, "custom/lintro.yaml", "global:\n  line_length: 42\n")

	cfg := newTestLoader(dir).Load(explicit)
	assert.Equal(t, explicit, cfg.SourcePath)
	assert.Equal(t, 42, *cfg.Global.LineLength)
}

func TestLoadMissingExplicitFallsThrough(t *testing.T) {
	dir := t.TempDir()
	discovered := writeFile(t, dir, ".lintro-config.yaml", "global:\n  line_length: 99\n")

	cfg := newTestLoader(dir).Load(filepath.Join(dir, "nope.yaml"))
	assert.Equal(t, discovered, cfg.SourcePath)
}

func TestLoadMalformedFallsBackToLegacy(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".lintro-config.yaml", "global: [unterminated\n")
	py := writeFile(t, dir, "pyproject.toml", `
[tool.lintro]
line_length = 110
tool_order = "alphabetical"
fail-fast = true
custom_thing = "x"
versions = { ruff = "0.1" }

[tool.lintro.ruff]
select = ["E"]

[tool.lintro.post_checks]
enabled = true
tools = ["black"]
`)

	cfg := newTestLoader(dir).Load("")

	assert.Equal(t, py, cfg.SourcePath)
	assert.Equal(t, 110, *cfg.Global.LineLength)
	assert.Equal(t, OrderAlphabetical, cfg.Execution.ToolOrder)
	assert.True(t, cfg.Execution.FailFast)
	assert.True(t, cfg.HasTool("ruff"))
	assert.True(t, cfg.PostChecks.Enabled)
	assert.Equal(t, []string{"black"}, cfg.PostChecks.Tools)
}

func TestLoadEmptyFileTreatedAsAbsent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".lintro-config.yaml", "   \n")

	cfg := newTestLoader(dir, WithLegacyFallback(false)).Load("")
	assert.Empty(t, cfg.SourcePath)
	assert.Equal(t, DefaultLineLength, *cfg.Global.LineLength)
}

func TestLoadDefault(t *testing.T) {
	dir := t.TempDir()

	cfg := newTestLoader(dir, WithLegacyFallback(false)).Load("")

	assert.Empty(t, cfg.SourcePath)
	assert.Equal(t, 88, *cfg.Global.LineLength)
	assert.Equal(t, "py313", *cfg.Global.TargetVersion)
	assert.Equal(t, OrderPriority, cfg.Execution.ToolOrder)
	assert.Empty(t, cfg.Tools)
	assert.False(t, cfg.Isolated)
}

func TestLoadIsolationEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".lintro-config.yaml", "global:\n  line_length: 10\n")

	env := func(k string) string {
		if k == IsolationEnv {
			return "1"
		}
		return ""
	}
	cfg := NewLoader(WithWorkDir(dir), WithEnv(env)).Load("")

	assert.True(t, cfg.Isolated)
	assert.Empty(t, cfg.SourcePath)
	assert.Equal(t, DefaultLineLength, *cfg.Global.LineLength)
}

func TestToolOrderList(t *testing.T) {
	cfg := fromMap(map[string]any{
		"execution": map[string]any{"tool_order": []any{"black", "ruff"}},
	})
	assert.Equal(t, OrderCustom, cfg.Execution.ToolOrder)
	assert.Equal(t, []string{"black", "ruff"}, cfg.Execution.CustomOrder)
}

func TestEffectiveSettingsOverridesWin(t *testing.T) {
	tc := ToolConfig{
		Settings:  map[string]any{"line-length": 100, "select": "E"},
		Overrides: map[string]any{"line-length": 120},
	}
	eff := tc.EffectiveSettings()
	assert.Equal(t, map[string]any{"line-length": 120, "select": "E"}, eff)

	eff["select"] = "changed"
	assert.Equal(t, "E", tc.Settings["select"])
}

func TestWithToolDoesNotMutate(t *testing.T) {
	base := Default()
	derived := base.WithTool("Ruff", ToolConfig{Enabled: false})

	assert.False(t, base.HasTool("ruff"))
	assert.True(t, derived.HasTool("ruff"))
	assert.False(t, derived.IsToolEnabled("ruff"))
}

func TestIsToolEnabled(t *testing.T) {
	cfg := Default().WithExecution(ExecutionPolicy{
		EnabledTools: []string{"Ruff", "black"},
		ToolOrder:    OrderPriority,
	}).WithTool("black", ToolConfig{Enabled: false})

	assert.True(t, cfg.IsToolEnabled("ruff"))
	assert.False(t, cfg.IsToolEnabled("black"))
	assert.False(t, cfg.IsToolEnabled("prettier"))
}

func TestProviderCachesAndReloads(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".lintro-config.yaml", "global:\n  line_length: 50\n")

	p := NewProvider(newTestLoader(dir), "")

	var wg sync.WaitGroup
	results := make([]*Config, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = p.Get()
		}(i)
	}
	wg.Wait()
	for _, cfg := range results {
		assert.Same(t, results[0], cfg)
	}

	require.NoError(t, os.WriteFile(path, []byte("global:\n  line_length: 60\n"), 0o644))
	assert.Equal(t, 50, *p.GetConfig(false).Global.LineLength)
	assert.Equal(t, 60, *p.GetConfig(true).Global.LineLength)

	p.Clear()
	require.NoError(t, os.WriteFile(path, []byte("global:\n  line_length: 70\n"), 0o644))
	assert.Equal(t, 70, *p.Get().Global.LineLength)
}

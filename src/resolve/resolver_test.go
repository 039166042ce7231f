package resolve

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TurboCoder13/py-lintro-sub001/src/config"
)

func staticNative(docs map[string]map[string]any) NativeSource {
	return NativeSourceFunc(func(tool string) map[string]any {
		if d, ok := docs[tool]; ok {
			return d
		}
		return map[string]any{}
	})
}

func noNative() NativeSource { return staticNative(nil) }

func TestEffectiveLineLengthFromGlobal(t *testing.T) {
	cfg := config.Default().WithGlobal(config.GlobalConfig{LineLength: config.IntPtr(100)})
	r := New(cfg, WithNativeSource(noNative()))

	got, ok := r.EffectiveLineLength("ruff")
	require.True(t, ok)
	assert.Equal(t, 100, got)
}

func TestEffectiveLineLengthToolOverride(t *testing.T) {
	cfg := config.Default().
		WithGlobal(config.GlobalConfig{LineLength: config.IntPtr(100)}).
		WithTool("ruff", config.ToolConfig{
			Enabled:   true,
			Overrides: map[string]any{"line_length": 120},
		})
	r := New(cfg, WithNativeSource(noNative()))

	got, ok := r.EffectiveLineLength("RUFF")
	require.True(t, ok)
	assert.Equal(t, 120, got)

	// other tools still see the global value
	got, _ = r.EffectiveLineLength("black")
	assert.Equal(t, 100, got)
}

func TestEffectiveValueOrder(t *testing.T) {
	native := staticNative(map[string]map[string]any{
		"prettier": {"printWidth": 70, "singleQuote": true},
	})

	t.Run("native fallback when nothing else", func(t *testing.T) {
		r := New(config.Default().WithGlobal(config.GlobalConfig{}), WithNativeSource(native))
		ll, ok := r.EffectiveLineLength("prettier")
		require.True(t, ok)
		assert.Equal(t, 70, ll)

		qs, ok := r.EffectiveQuoteStyle("prettier")
		require.True(t, ok)
		assert.Equal(t, "single", qs)
	})

	t.Run("settings beat global", func(t *testing.T) {
		cfg := config.Default().WithTool("prettier", config.ToolConfig{
			Enabled:  true,
			Settings: map[string]any{"printWidth": 90},
		})
		r := New(cfg, WithNativeSource(native))
		ll, _ := r.EffectiveLineLength("prettier")
		assert.Equal(t, 90, ll)
	})

	t.Run("absent", func(t *testing.T) {
		r := New(config.Default().WithGlobal(config.GlobalConfig{}), WithNativeSource(noNative()))
		_, ok := r.EffectiveLineLength("darglint")
		assert.False(t, ok)
		_, ok = r.EffectiveValue("ruff", "no_such_setting")
		assert.False(t, ok)
	})
}

func TestResolveTiers(t *testing.T) {
	cfg := config.Default().
		WithGlobal(config.GlobalConfig{
			LineLength:    config.IntPtr(100),
			TargetVersion: config.StringPtr("py312"),
			IndentSize:    config.IntPtr(4),
			QuoteStyle:    config.StringPtr("single"),
		}).
		WithTool("ruff", config.ToolConfig{
			Enabled:   true,
			Settings:  map[string]any{"select": []any{"E"}, "line-length": 110},
			Overrides: map[string]any{"select": []any{"E", "F"}},
		})
	r := New(cfg, WithNativeSource(noNative()))

	got := r.Resolve("ruff", map[string]any{"target-version": "py39"})
	want := map[string]any{
		"line-length":    110,
		"target-version": "py39",
		"indent-width":   4,
		"format":         map[string]any{"quote-style": "single"},
		"select":         []any{"E", "F"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Resolve mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveNestedPaths(t *testing.T) {
	cfg := config.Default().WithGlobal(config.GlobalConfig{
		LineLength: config.IntPtr(120),
		IndentSize: config.IntPtr(2),
		QuoteStyle: config.StringPtr("single"),
	})
	r := New(cfg, WithNativeSource(noNative()))

	yl := r.Resolve("yamllint", nil)
	assert.Equal(t, map[string]any{
		"rules": map[string]any{
			"line-length": map[string]any{"max": 120},
			"indentation": map[string]any{"spaces": 2},
		},
	}, yl)

	md := r.Resolve("markdownlint", nil)
	v, ok := GetPath(md, "config.MD013.line_length")
	require.True(t, ok)
	assert.Equal(t, 120, v)

	pr := r.Resolve("prettier", nil)
	assert.Equal(t, true, pr["singleQuote"])
	assert.Equal(t, 120, pr["printWidth"])

	assert.Empty(t, r.Resolve("darglint", nil))
}

func TestResolveCLIKeysAlwaysLand(t *testing.T) {
	cfg := config.Default().WithTool("black", config.ToolConfig{
		Enabled:   true,
		Overrides: map[string]any{"line-length": 79, "skip-string-normalization": true},
	})
	r := New(cfg, WithNativeSource(noNative()))

	cli := map[string]any{
		"line-length":               200,
		"skip-string-normalization": false,
		"rules":                     "x",
		"timeout":                   10,
	}
	for _, tool := range []string{"black", "ruff", "yamllint", "unknown"} {
		got := r.Resolve(tool, cli)
		for k, v := range cli {
			assert.Equal(t, v, got[k], "%s: cli key %q", tool, k)
		}
	}
}

func TestResolveCLIAliasBeatsLowerTiers(t *testing.T) {
	cfg := config.Default().
		WithGlobal(config.GlobalConfig{LineLength: config.IntPtr(88)}).
		WithTool("yamllint", config.ToolConfig{
			Enabled:  true,
			Settings: map[string]any{"rules": map[string]any{"line-length": map[string]any{"max": 90}}},
		})
	r := New(cfg, WithNativeSource(noNative()))

	black := r.Resolve("black", map[string]any{"line_length": 100})
	assert.Equal(t, 100, black["line-length"])
	assert.Equal(t, 100, black["line_length"], "cli key lands unchanged")

	yl := r.Resolve("yamllint", map[string]any{"line_length": 120})
	v, ok := GetPath(yl, "rules.line-length.max")
	require.True(t, ok)
	assert.Equal(t, 120, v)

	// the tool section is not mutated by placing the cli value
	assert.Equal(t, 90, cfg.Tool("yamllint").Settings["rules"].(map[string]any)["line-length"].(map[string]any)["max"])

	pr := r.Resolve("prettier", map[string]any{"quote_style": "double"})
	assert.Equal(t, false, pr["singleQuote"])
}

func TestResolveSkipsNonInjectableMappings(t *testing.T) {
	cfg := config.Default().WithGlobal(config.GlobalConfig{LineLength: config.IntPtr(100)})
	r := New(cfg, WithNativeSource(noNative()))

	got := r.Resolve("sqlfluff", nil)
	_, ok := got["core"]
	assert.False(t, ok, "sqlfluff line length is diagnosed only: %v", got)

	// still reported as the effective value
	ll, ok := r.EffectiveLineLength("sqlfluff")
	require.True(t, ok)
	assert.Equal(t, 100, ll)
}

func TestResolveMarkdownlintCompanions(t *testing.T) {
	cfg := config.Default().WithGlobal(config.GlobalConfig{LineLength: config.IntPtr(100)})
	r := New(cfg, WithNativeSource(noNative()))

	md := r.Resolve("markdownlint", nil)
	assert.Equal(t, map[string]any{
		"config": map[string]any{
			"MD013": map[string]any{"line_length": 100, "code_blocks": false, "tables": false},
		},
	}, md)

	// an explicit companion setting is kept
	cfg = cfg.WithTool("markdownlint", config.ToolConfig{
		Enabled:  true,
		Settings: map[string]any{"config": map[string]any{"MD013": map[string]any{"tables": true}}},
	})
	md = New(cfg, WithNativeSource(noNative())).Resolve("markdownlint", map[string]any{"line_length": 80})
	tables, _ := GetPath(md, "config.MD013.tables")
	assert.Equal(t, true, tables)
	ll, _ := GetPath(md, "config.MD013.line_length")
	assert.Equal(t, 80, ll)
}

func TestValidateConsistency(t *testing.T) {
	native := staticNative(map[string]map[string]any{
		"black":    {"line-length": 88},
		"prettier": {"printWidth": 100},
		"sqlfluff": {"core": map[string]any{"max_line_length": 80}},
		"yamllint": {"rules": map[string]any{"line-length": map[string]any{"max": int64(100)}}},
	})
	cfg := config.Default().WithGlobal(config.GlobalConfig{LineLength: config.IntPtr(100)})
	r := New(cfg, WithNativeSource(native))

	warnings := r.ValidateConsistency()
	require.Len(t, warnings, 2, "%v", warnings)

	joined := strings.Join(warnings, "\n")
	assert.Contains(t, joined, "black: native config has line-length=88, but lintro will override it with 100")
	assert.Contains(t, joined, "sqlfluff: native config has core.max_line_length=80")
	assert.Contains(t, joined, "update it manually")
	assert.NotContains(t, joined, "prettier")
	assert.NotContains(t, joined, "yamllint")

	// pure: same answer twice
	assert.Equal(t, warnings, r.ValidateConsistency())
}

func TestInjectability(t *testing.T) {
	r := New(config.Default(), WithNativeSource(noNative()))

	assert.True(t, r.IsInjectable("ruff"))
	assert.True(t, r.IsInjectable("Prettier"))
	assert.False(t, r.IsInjectable("darglint"))
	assert.False(t, r.IsInjectable("nosuch"))

	assert.True(t, r.IsSettingInjectable(LineLength, "yamllint"))
	assert.False(t, r.IsSettingInjectable(LineLength, "sqlfluff"))
	assert.False(t, r.IsSettingInjectable(TargetVersion, "prettier"))
}

func TestInfoAndSummary(t *testing.T) {
	native := staticNative(map[string]map[string]any{"black": {"line-length": 88}})
	cfg := config.Default().WithGlobal(config.GlobalConfig{LineLength: config.IntPtr(99)})
	r := New(cfg, WithNativeSource(native))

	sum := r.Summary([]string{"Black", "ruff"})
	require.Contains(t, sum, "black")
	require.Contains(t, sum, "ruff")

	b := sum["black"]
	assert.True(t, b.IsInjectable)
	assert.Equal(t, 99, b.EffectiveConfig[LineLength])
	assert.Len(t, b.Warnings, 1)
	assert.Empty(t, sum["ruff"].Warnings)
}

func TestFileNativeSource(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		t.Helper()
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("pyproject.toml", "[tool.black]\nline-length = 79\n\n[tool.ruff]\nline-length = 90\n")
	write(".prettierrc", `{"printWidth": 60}`)
	write(".yamllint", "rules:\n  line-length:\n    max: 150\n")
	write(".markdownlint.yaml", "MD013:\n  line_length: 110\n")

	src := FileNativeSource{Dir: dir}

	assert.Equal(t, map[string]any{"line-length": 79}, src.Native("black"))
	assert.Equal(t, map[string]any{"line-length": 90}, src.Native("ruff"))
	assert.Equal(t, map[string]any{"printWidth": 60}, src.Native("prettier"))

	v, ok := GetPath(src.Native("yamllint"), "rules.line-length.max")
	require.True(t, ok)
	assert.Equal(t, 150, v)

	v, ok = GetPath(src.Native("markdownlint"), "config.MD013.line_length")
	require.True(t, ok)
	assert.Equal(t, 110, v)

	assert.Empty(t, src.Native("hadolint"))

	// ruff.toml beats pyproject
	write("ruff.toml", "line-length = 70\n")
	assert.Equal(t, map[string]any{"line-length": 70}, src.Native("ruff"))
}

func TestSetPathReplacesScalars(t *testing.T) {
	doc := map[string]any{"rules": "relaxed"}
	SetPath(doc, "rules.line-length.max", 10)
	v, ok := GetPath(doc, "rules.line-length.max")
	require.True(t, ok)
	assert.Equal(t, 10, v)

	_, ok = GetPath(doc, "rules.missing.max")
	assert.False(t, ok)
}

func TestNativize(t *testing.T) {
	layer := map[string]any{
		"line_length": 120,
		"quote_style": "single",
		"rules":       map[string]any{"truthy": "disable"},
	}

	out, carried := Nativize("yamllint", layer)
	assert.Equal(t, map[string]any{
		"quote_style": "single",
		"rules": map[string]any{
			"truthy":      "disable",
			"line-length": map[string]any{"max": 120},
		},
	}, out)
	assert.True(t, carried[LineLength])
	assert.True(t, carried[QuoteStyle])
	assert.False(t, carried[IndentSize])

	// input untouched
	assert.Equal(t, map[string]any{"truthy": "disable"}, layer["rules"])

	// native key wins over the alias
	out, _ = Nativize("ruff", map[string]any{"line_length": 100, "line-length": 90})
	assert.Equal(t, map[string]any{"line-length": 90}, out)
}

package artifact

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TurboCoder13/py-lintro-sub001/src/config"
	"github.com/TurboCoder13/py-lintro-sub001/src/format"
	"github.com/TurboCoder13/py-lintro-sub001/src/resolve"
)

func TestDeepMerge(t *testing.T) {
	base := map[string]any{
		"rules": map[string]any{
			"line-length": map[string]any{"max": 80, "level": "warning"},
			"truthy":      "enable",
		},
		"extends": "default",
	}
	overlay := map[string]any{
		"rules": map[string]any{
			"line-length": map[string]any{"max": 120},
			"truthy":      map[string]any{"allowed-values": []any{"true"}},
		},
		"extends": "relaxed",
	}

	got := DeepMerge(base, overlay)
	want := map[string]any{
		"rules": map[string]any{
			"line-length": map[string]any{"max": 120, "level": "warning"},
			"truthy":      map[string]any{"allowed-values": []any{"true"}},
		},
		"extends": "relaxed",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DeepMerge (-want +got):\n%s", diff)
	}

	// inputs untouched
	assert.Equal(t, 80, base["rules"].(map[string]any)["line-length"].(map[string]any)["max"])
	assert.Equal(t, "enable", base["rules"].(map[string]any)["truthy"])
}

func newGen(t *testing.T) *Generator {
	t.Helper()
	g := NewGenerator(WithTempDir(t.TempDir()))
	t.Cleanup(g.CleanupAll)
	return g
}

func readDoc(t *testing.T, path string, f format.Format) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := format.Decode(data, f)
	require.NoError(t, err)
	return doc
}

func TestGeneratePrecedence(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "base.yaml")
	require.NoError(t, os.WriteFile(srcPath, []byte("extends: default\nrules:\n  line-length:\n    max: 60\n    level: warning\n  indentation:\n    spaces: 8\n"), 0o644))

	cfg := config.Default().
		WithGlobal(config.GlobalConfig{LineLength: config.IntPtr(100), IndentSize: config.IntPtr(2)}).
		WithTool("yamllint", config.ToolConfig{
			Enabled:      true,
			ConfigSource: srcPath,
			Settings:     map[string]any{"rules": map[string]any{"document-start": "disable"}},
			Overrides:    map[string]any{"line_length": 140},
		})

	g := newGen(t)
	path := g.Generate("yamllint", cfg, nil)
	require.NotEmpty(t, path)
	assert.True(t, strings.HasSuffix(path, ".yaml"))
	assert.Equal(t, []string{path}, g.Tracked())

	got := readDoc(t, path, format.YAML)
	want := map[string]any{
		"extends": "default",
		"rules": map[string]any{
			"line-length":    map[string]any{"max": 140, "level": "warning"},
			"indentation":    map[string]any{"spaces": 2},
			"document-start": "disable",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("generated doc (-want +got):\n%s", diff)
	}
}

func TestGenerateGlobalOnly(t *testing.T) {
	cfg := config.Default().WithGlobal(config.GlobalConfig{
		LineLength: config.IntPtr(100),
		QuoteStyle: config.StringPtr("single"),
	})
	g := newGen(t)

	path := g.Generate("prettier", cfg, nil)
	require.NotEmpty(t, path)
	assert.Equal(t, map[string]any{"printWidth": 100, "singleQuote": true}, readDoc(t, path, format.JSON))

	md := g.Generate("markdownlint", cfg, nil)
	require.NotEmpty(t, md)
	assert.True(t, strings.HasSuffix(md, ".markdownlint-cli2.jsonc"))
	assert.Equal(t, map[string]any{"config": map[string]any{"MD013": map[string]any{
		"line_length": 100,
		"code_blocks": false,
		"tables":      false,
	}}}, readDoc(t, md, format.JSONC))
}

func TestGenerateCLISettings(t *testing.T) {
	cfg := config.Default().
		WithGlobal(config.GlobalConfig{LineLength: config.IntPtr(88)}).
		WithTool("black", config.ToolConfig{
			Enabled:  true,
			Settings: map[string]any{"line-length": 90, "skip-magic-trailing-comma": true},
		})
	g := newGen(t)

	path := g.Generate("black", cfg, map[string]any{"line_length": 100, "timeout": 30})
	require.NotEmpty(t, path)
	assert.Equal(t, map[string]any{
		"line-length":               100,
		"skip-magic-trailing-comma": true,
	}, readDoc(t, path, format.TOML))

	// a cli alias also suppresses the global value for that setting
	md := g.Generate("markdownlint", cfg, map[string]any{"line-length": 120})
	require.NotEmpty(t, md)
	v, _ := resolve.GetPath(readDoc(t, md, format.JSONC), "config.MD013.line_length")
	assert.Equal(t, 120, v)
}

func TestGenerateNoArtifact(t *testing.T) {
	g := newGen(t)

	empty := config.Default().WithGlobal(config.GlobalConfig{})
	assert.Empty(t, g.Generate("hadolint", empty, nil), "empty document")
	assert.Empty(t, g.Generate("darglint", config.Default(), nil), "non-injectable tool")
	assert.Empty(t, g.Generate("nosuch", config.Default(), nil), "unknown tool")

	isolated := config.Default()
	isolated.Isolated = true
	assert.Empty(t, g.Generate("ruff", isolated, nil), "isolated")

	assert.Empty(t, g.Tracked())
}

func TestGenerateBadSourceYieldsEmptyBase(t *testing.T) {
	cfg := config.Default().WithTool("ruff", config.ToolConfig{
		Enabled:      true,
		ConfigSource: filepath.Join(t.TempDir(), "missing.toml"),
	})
	g := newGen(t)

	path := g.Generate("ruff", cfg, nil)
	require.NotEmpty(t, path)
	assert.Equal(t, map[string]any{"line-length": 88, "target-version": "py313"}, readDoc(t, path, format.TOML))
}

func TestGenerateRoundTrip(t *testing.T) {
	settings := map[string]any{
		"select":    []any{"E", "F", "W"},
		"exclude":   []any{"build"},
		"fix":       true,
		"lint":      map[string]any{"ignore": []any{"E501"}},
		"preview":   false,
		"src":       []any{"src", "tests"},
		"cache-dir": ".cache",
	}
	cfg := config.Default().WithGlobal(config.GlobalConfig{}).WithTool("ruff", config.ToolConfig{
		Enabled:  true,
		Settings: settings,
	})
	g := newGen(t)

	path := g.Generate("ruff", cfg, nil)
	require.NotEmpty(t, path)
	if diff := cmp.Diff(settings, readDoc(t, path, format.TOML)); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func TestCleanupIdempotent(t *testing.T) {
	g := newGen(t)
	path := g.Generate("ruff", config.Default(), nil)
	require.NotEmpty(t, path)

	g.Cleanup(path)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.Empty(t, g.Tracked())

	assert.NotPanics(t, func() { g.Cleanup(path) })
	assert.NotPanics(t, func() { g.Cleanup("") })
}

func TestCleanupIgnoresUntracked(t *testing.T) {
	g := newGen(t)
	other := filepath.Join(t.TempDir(), "keep.toml")
	require.NoError(t, os.WriteFile(other, []byte("x = 1\n"), 0o644))

	g.Cleanup(other)
	_, err := os.Stat(other)
	assert.NoError(t, err)
}

func TestCleanupAll(t *testing.T) {
	g := newGen(t)
	a := g.Generate("ruff", config.Default(), nil)
	b := g.Generate("black", config.Default(), nil)
	require.Len(t, g.Tracked(), 2)

	g.CleanupAll()
	assert.Empty(t, g.Tracked())
	for _, p := range []string{a, b} {
		_, err := os.Stat(p)
		assert.True(t, os.IsNotExist(err), p)
	}
}

func TestInjectionArgs(t *testing.T) {
	assert.Equal(t, []string{"--config", "/tmp/r.toml", "--isolated"}, InjectionArgs("ruff", "/tmp/r.toml"))
	assert.Equal(t, []string{"-c", "/tmp/y.yaml"}, InjectionArgs("yamllint", "/tmp/y.yaml"))
	assert.Equal(t, []string{"-config-file", "/tmp/a.yaml"}, InjectionArgs("actionlint", "/tmp/a.yaml"))
	assert.Nil(t, InjectionArgs("ruff", ""))
	assert.Nil(t, InjectionArgs("darglint", "/tmp/x"))
}

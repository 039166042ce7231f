// Package artifact writes temporary per-tool config files for tools that
// only accept settings through a config file, and removes them afterwards.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/TurboCoder13/py-lintro-sub001/src/config"
	"github.com/TurboCoder13/py-lintro-sub001/src/format"
	"github.com/TurboCoder13/py-lintro-sub001/src/resolve"
	"github.com/TurboCoder13/py-lintro-sub001/src/tools"
)

// Generator creates and tracks artifacts. Every path it returns is tracked
// until Cleanup or CleanupAll removes it.
type Generator struct {
	logger  *zap.Logger
	tempDir string
	workDir string

	mu      sync.Mutex
	tracked map[string]struct{}
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithTempDir sets where artifacts are written (default os.TempDir()).
func WithTempDir(dir string) Option {
	return func(g *Generator) { g.tempDir = dir }
}

// WithWorkDir sets the base for relative config_source paths when the
// config has no source file.
func WithWorkDir(dir string) Option {
	return func(g *Generator) { g.workDir = dir }
}

// NewGenerator returns an empty generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{logger: zap.NewNop(), tracked: map[string]struct{}{}}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate writes tool's effective config file and returns its path, or ""
// when the tool needs no artifact: unknown or non-injectable tool, isolated
// config, empty document, or a write failure. cli holds the run's
// --tool-options for tool and may be nil.
func (g *Generator) Generate(tool string, cfg *config.Config, cli map[string]any) string {
	tool = strings.ToLower(tool)
	spec, ok := tools.Lookup(tool)
	if !ok || !spec.Injectable() || cfg == nil || cfg.Isolated {
		return ""
	}

	doc, err := g.Document(tool, cfg, cli)
	if err != nil {
		g.logger.Warn("building tool config failed", zap.String("tool", tool), zap.Error(err))
		return ""
	}
	if len(doc) == 0 {
		return ""
	}

	path, err := g.write(spec, doc)
	if err != nil {
		g.logger.Warn("writing tool config failed", zap.String("tool", tool), zap.Error(err))
		return ""
	}
	g.logger.Debug("generated tool config", zap.String("tool", tool), zap.String("path", path))
	return path
}

// Document builds tool's config document without writing it: the
// config_source base, then settings, then overrides, then the global
// settings cli carries, then global settings none of those layers set.
func (g *Generator) Document(tool string, cfg *config.Config, cli map[string]any) (map[string]any, error) {
	tc := cfg.Tool(tool)

	base := map[string]any{}
	if tc.ConfigSource != "" {
		loaded, err := g.loadSource(tc.ConfigSource, cfg.SourcePath)
		if err != nil {
			g.logger.Warn("ignoring config_source", zap.String("tool", tool), zap.String("source", tc.ConfigSource), zap.Error(err))
		} else {
			base = loaded
		}
	}

	settings, carriedSettings := resolve.Nativize(tool, tc.Settings)
	overrides, carriedOverrides := resolve.Nativize(tool, tc.Overrides)
	fromCLI, carriedCLI := resolve.Nativize(tool, resolve.SettingsLayer(tool, cli))

	doc := DeepMerge(base, settings)
	doc = DeepMerge(doc, overrides)
	doc = DeepMerge(doc, fromCLI)

	for _, s := range resolve.GlobalSettings {
		m, ok := s.Mapping(tool)
		if !ok || !m.Injectable || carriedSettings[s.Name] || carriedOverrides[s.Name] || carriedCLI[s.Name] {
			continue
		}
		v, ok := s.Global(cfg.Global)
		if !ok {
			continue
		}
		if m.Transform != nil {
			v = m.Transform(v)
		}
		m.Place(doc, v)
	}
	return doc, nil
}

func (g *Generator) loadSource(source, configPath string) (map[string]any, error) {
	path := source
	if !filepath.IsAbs(path) {
		baseDir := g.workDir
		if configPath != "" {
			baseDir = filepath.Dir(configPath)
		}
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if f, ok := format.Detect(path); ok {
		return format.Decode(data, f)
	}
	doc, _, err := format.DecodeAuto(data)
	return doc, err
}

func (g *Generator) write(spec tools.Spec, doc map[string]any) (string, error) {
	data, err := format.Encode(doc, spec.ConfigFormat)
	if err != nil {
		return "", err
	}

	f, err := os.CreateTemp(g.tempDir, "lintro-"+spec.Name+"-*"+spec.ArtifactSuffix())
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	path := f.Name()
	g.track(path)

	if _, err := f.Write(data); err != nil {
		f.Close()
		g.Cleanup(path)
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		g.Cleanup(path)
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	return path, nil
}

func (g *Generator) track(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tracked[path] = struct{}{}
}

// Cleanup removes one tracked artifact. Untracked paths and repeated calls
// are no-ops; removal errors are logged.
func (g *Generator) Cleanup(path string) {
	if path == "" {
		return
	}
	g.mu.Lock()
	_, ok := g.tracked[path]
	delete(g.tracked, path)
	g.mu.Unlock()
	if !ok {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		g.logger.Warn("removing tool config failed", zap.String("path", path), zap.Error(err))
	}
}

// CleanupAll removes every artifact still tracked.
func (g *Generator) CleanupAll() {
	for _, p := range g.Tracked() {
		g.Cleanup(p)
	}
}

// Tracked returns the tracked paths, sorted.
func (g *Generator) Tracked() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.tracked))
	for p := range g.tracked {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// InjectionArgs returns the flags that hand path to tool. Empty path means
// no flags.
func InjectionArgs(tool, path string) []string {
	if path == "" {
		return nil
	}
	spec, ok := tools.Lookup(tool)
	if !ok || spec.ConfigFlag == "" {
		return nil
	}
	args := []string{spec.ConfigFlag, path}
	return append(args, spec.NoAutoConfigArgs...)
}

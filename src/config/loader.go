package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// IsolationEnv disables config discovery and injection when set to any
// non-empty value. Used for isolated test runs.
const IsolationEnv = "LINTRO_TEST_MODE"

// ConfigFileNames are checked in order in each directory while walking up.
var ConfigFileNames = []string{
	".lintro-config.yaml",
	".lintro-config.yml",
	"lintro-config.yaml",
	"lintro-config.yml",
}

const legacyManifest = "pyproject.toml"

// ErrConfigNotFound is reported (as a warning) when an explicit config path
// does not exist.
var ErrConfigNotFound = errors.New("config file not found")

// Loader resolves a Config from the first available source:
// explicit path, discovered config file, legacy pyproject table, default.
type Loader struct {
	workDir  string
	getenv   func(string) string
	readFile func(string) ([]byte, error)
	legacy   bool
	logger   *zap.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithWorkDir sets the directory discovery starts from (default: cwd).
func WithWorkDir(dir string) Option {
	return func(l *Loader) { l.workDir = dir }
}

// WithEnv replaces the environment lookup.
func WithEnv(getenv func(string) string) Option {
	return func(l *Loader) { l.getenv = getenv }
}

// WithFileReader replaces the file reader.
func WithFileReader(read func(string) ([]byte, error)) Option {
	return func(l *Loader) { l.readFile = read }
}

// WithLegacyFallback toggles the pyproject.toml [tool.lintro] fallback.
func WithLegacyFallback(enabled bool) Option {
	return func(l *Loader) { l.legacy = enabled }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a loader with the given options.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		getenv:   os.Getenv,
		readFile: os.ReadFile,
		legacy:   true,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.workDir == "" {
		if wd, err := os.Getwd(); err == nil {
			l.workDir = wd
		}
	}
	if l.logger == nil {
		l.logger = zap.NewNop()
	}
	return l
}

// Load returns the configuration from the highest-priority source that
// exists and parses. It never fails: unreadable or malformed sources are
// logged and skipped, and the built-in default is the last resort.
func (l *Loader) Load(explicitPath string) *Config {
	if l.getenv(IsolationEnv) != "" {
		l.logger.Debug("config discovery disabled by environment", zap.String("env", IsolationEnv))
		cfg := Default()
		cfg.Isolated = true
		return cfg
	}

	if explicitPath != "" {
		if cfg := l.loadExplicit(explicitPath); cfg != nil {
			return cfg
		}
	}

	if path := l.discover(); path != "" {
		if cfg := l.loadYAML(path); cfg != nil {
			return cfg
		}
	}

	if l.legacy {
		if cfg := l.loadLegacy(); cfg != nil {
			return cfg
		}
	}

	l.logger.Debug("no config source found, using built-in defaults")
	return Default()
}

func (l *Loader) loadExplicit(path string) *Config {
	if !filepath.IsAbs(path) && l.workDir != "" {
		path = filepath.Join(l.workDir, path)
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		l.logger.Warn("explicit config unavailable, falling back to discovery", zap.Error(err))
		return nil
	}
	return l.loadYAML(path)
}

// discover walks from the work dir up to the filesystem root and returns
// the first recognized config file.
func (l *Loader) discover() string {
	if l.workDir == "" {
		return ""
	}
	dir, err := filepath.Abs(l.workDir)
	if err != nil {
		return ""
	}
	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func (l *Loader) loadYAML(path string) *Config {
	data, err := l.readFile(path)
	if err != nil {
		l.logger.Warn("reading config failed", zap.String("path", path), zap.Error(err))
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		l.logger.Debug("config file is empty, skipping", zap.String("path", path))
		return nil
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		l.logger.Warn("parsing config failed", zap.String("path", path), zap.Error(err))
		return nil
	}
	if len(doc) == 0 {
		return nil
	}

	cfg := fromMap(doc)
	cfg.SourcePath = absPath(path)
	l.logger.Debug("loaded config", zap.String("path", cfg.SourcePath))
	return cfg
}

func (l *Loader) loadLegacy() *Config {
	path := filepath.Join(l.workDir, legacyManifest)
	data, err := l.readFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			l.logger.Debug("reading pyproject.toml failed", zap.Error(err))
		}
		return nil
	}

	table, err := legacyTable(data)
	if err != nil {
		l.logger.Warn("parsing pyproject.toml failed", zap.String("path", path), zap.Error(err))
		return nil
	}
	if len(table) == 0 {
		return nil
	}

	cfg := fromMap(convertLegacy(table))
	cfg.SourcePath = absPath(path)
	l.logger.Info("using [tool.lintro] from pyproject.toml (deprecated), consider migrating to .lintro-config.yaml")
	return cfg
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

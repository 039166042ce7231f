// Package tools defines the closed set of external linters and formatters
// lintro drives, and the adapter used to invoke them.
package tools

import (
	"sort"
	"strings"
	"time"

	"github.com/TurboCoder13/py-lintro-sub001/src/format"
)

// Tool names.
const (
	Ruff         = "ruff"
	Black        = "black"
	Prettier     = "prettier"
	Markdownlint = "markdownlint"
	Yamllint     = "yamllint"
	Darglint     = "darglint"
	Bandit       = "bandit"
	Hadolint     = "hadolint"
	Shellcheck   = "shellcheck"
	Sqlfluff     = "sqlfluff"
	Mypy         = "mypy"
	Actionlint   = "actionlint"
	Pytest       = "pytest"
)

const (
	// DefaultPriority applies to tools without a table entry.
	DefaultPriority = 50
	// DefaultTimeout bounds a tool run when nothing more specific is set.
	DefaultTimeout = 30 * time.Second
)

// Spec is the static description of one external tool.
type Spec struct {
	Name        string
	Description string
	Binary      string

	Priority     int
	FilePatterns []string
	CanFix       bool
	Timeout      time.Duration // zero means DefaultTimeout

	// Config injection. A tool is injectable when ConfigFormat and
	// ConfigFlag are both set.
	ConfigFormat     format.Format
	ConfigFlag       string
	ConfigFileSuffix string   // temp file suffix; defaults to ConfigFormat.Extension()
	NoAutoConfigArgs []string // stop the tool from also reading its own files
	NativeConfigs    []string

	CheckArgs   []string
	FixArgs     []string
	OptionFlags map[string]string // option key -> CLI flag

	VersionArgs []string
	MinVersion  string
	InstallHint string
}

// Injectable reports whether lintro can hand the tool a generated config file.
func (s Spec) Injectable() bool {
	return s.ConfigFormat != "" && s.ConfigFlag != ""
}

// EffectiveTimeout returns the spec's timeout or DefaultTimeout.
func (s Spec) EffectiveTimeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return DefaultTimeout
}

// ArtifactSuffix is the file name suffix for generated config files.
func (s Spec) ArtifactSuffix() string {
	if s.ConfigFileSuffix != "" {
		return s.ConfigFileSuffix
	}
	return s.ConfigFormat.Extension()
}

var pythonFiles = []string{"*.py", "*.pyi"}

var builtinSpecs = []Spec{
	{
		Name:          Prettier,
		Description:   "Code formatter for web languages and data files",
		Binary:        "prettier",
		Priority:      10,
		FilePatterns:  []string{"*.js", "*.jsx", "*.ts", "*.tsx", "*.css", "*.scss", "*.less", "*.html", "*.vue", "*.json", "*.graphql"},
		CanFix:        true,
		ConfigFormat:  format.JSON,
		ConfigFlag:    "--config",
		NativeConfigs: []string{".prettierrc", ".prettierrc.json", ".prettierrc.yaml", ".prettierrc.yml", "package.json"},
		CheckArgs:     []string{"--check"},
		FixArgs:       []string{"--write"},
		OptionFlags:   map[string]string{"printWidth": "--print-width", "tabWidth": "--tab-width", "singleQuote": "--single-quote"},
		MinVersion:    "3.0.0",
		InstallHint:   "Install via: bun add -d prettier",
	},
	{
		Name:          Black,
		Description:   "Opinionated Python code formatter",
		Binary:        "black",
		Priority:      15,
		FilePatterns:  pythonFiles,
		CanFix:        true,
		ConfigFormat:  format.TOML,
		ConfigFlag:    "--config",
		NativeConfigs: []string{"pyproject.toml"},
		CheckArgs:     []string{"--check", "--diff"},
		OptionFlags:   map[string]string{"line-length": "--line-length", "target-version": "--target-version"},
		MinVersion:    "23.0.0",
		InstallHint:   "Install via: pip install black",
	},
	{
		Name:             Ruff,
		Description:      "Fast Python linter",
		Binary:           "ruff",
		Priority:         20,
		FilePatterns:     pythonFiles,
		CanFix:           true,
		ConfigFormat:     format.TOML,
		ConfigFlag:       "--config",
		NoAutoConfigArgs: []string{"--isolated"},
		NativeConfigs:    []string{"ruff.toml", ".ruff.toml", "pyproject.toml"},
		CheckArgs:        []string{"check"},
		FixArgs:          []string{"check", "--fix"},
		OptionFlags:      map[string]string{"select": "--select", "ignore": "--ignore", "extend-select": "--extend-select"},
		MinVersion:       "0.1.0",
		InstallHint:      "Install via: pip install ruff",
	},
	{
		Name:             Markdownlint,
		Description:      "Markdown style checker",
		Binary:           "markdownlint-cli2",
		Priority:         30,
		FilePatterns:     []string{"*.md", "*.markdown"},
		ConfigFormat:     format.JSON,
		ConfigFlag:       "--config",
		ConfigFileSuffix: ".markdownlint-cli2.jsonc",
		NativeConfigs:    []string{".markdownlint.json", ".markdownlint.jsonc", ".markdownlint.yaml", ".markdownlint.yml", ".markdownlint-cli2.jsonc"},
		MinVersion:       "0.12.0",
		InstallHint:      "Install via: bun add -d markdownlint-cli2",
	},
	{
		Name:          Yamllint,
		Description:   "YAML linter",
		Binary:        "yamllint",
		Priority:      35,
		FilePatterns:  []string{"*.yml", "*.yaml", ".yamllint"},
		ConfigFormat:  format.YAML,
		ConfigFlag:    "-c",
		NativeConfigs: []string{".yamllint", ".yamllint.yaml", ".yamllint.yml"},
		CheckArgs:     []string{"-f", "parsable"},
		MinVersion:    "1.26.0",
		InstallHint:   "Install via: pip install yamllint",
	},
	{
		Name:         Darglint,
		Description:  "Python docstring argument checker",
		Binary:       "darglint",
		Priority:     40,
		FilePatterns: []string{"*.py"},
		CheckArgs:    []string{"--verbosity", "2"},
		InstallHint:  "Install via: pip install darglint",
	},
	{
		Name:         Bandit,
		Description:  "Python security issue scanner",
		Binary:       "bandit",
		Priority:     45,
		FilePatterns: []string{"*.py"},
		ConfigFormat: format.YAML,
		ConfigFlag:   "-c",
		CheckArgs:    []string{"-q"},
		OptionFlags:  map[string]string{"severity": "--severity-level", "confidence": "--confidence-level"},
		MinVersion:   "1.7.0",
		InstallHint:  "Install via: pip install bandit",
	},
	{
		Name:          Hadolint,
		Description:   "Dockerfile linter",
		Binary:        "hadolint",
		Priority:      50,
		FilePatterns:  []string{"Dockerfile", "Dockerfile.*", "*.dockerfile"},
		ConfigFormat:  format.YAML,
		ConfigFlag:    "--config",
		NativeConfigs: []string{".hadolint.yaml", ".hadolint.yml"},
		MinVersion:    "2.12.0",
		InstallHint:   "Install via: https://github.com/hadolint/hadolint/releases",
	},
	{
		Name:          Shellcheck,
		Description:   "Shell script static analyzer",
		Binary:        "shellcheck",
		Priority:      50,
		FilePatterns:  []string{"*.sh", "*.bash", "*.ksh"},
		NativeConfigs: []string{".shellcheckrc"},
		CheckArgs:     []string{"--format=gcc"},
		OptionFlags:   map[string]string{"severity": "--severity", "shell": "--shell"},
		MinVersion:    "0.9.0",
		InstallHint:   "Install via: https://github.com/koalaman/shellcheck#installing",
	},
	{
		Name:          Sqlfluff,
		Description:   "SQL linter and formatter",
		Binary:        "sqlfluff",
		Priority:      50,
		FilePatterns:  []string{"*.sql"},
		CanFix:        true,
		NativeConfigs: []string{".sqlfluff", "pyproject.toml"},
		CheckArgs:     []string{"lint"},
		FixArgs:       []string{"fix", "--force"},
		OptionFlags:   map[string]string{"dialect": "--dialect"},
		MinVersion:    "3.0.0",
		InstallHint:   "Install via: pip install sqlfluff",
	},
	{
		Name:          Mypy,
		Description:   "Static type checker for Python",
		Binary:        "mypy",
		Priority:      52,
		FilePatterns:  pythonFiles,
		Timeout:       60 * time.Second,
		NativeConfigs: []string{"mypy.ini", ".mypy.ini", "pyproject.toml", "setup.cfg"},
		OptionFlags:   map[string]string{"strict": "--strict", "ignore-missing-imports": "--ignore-missing-imports"},
		MinVersion:    "1.0.0",
		InstallHint:   "Install via: pip install mypy",
	},
	{
		Name:         Actionlint,
		Description:  "GitHub Actions workflow linter",
		Binary:       "actionlint",
		Priority:     55,
		FilePatterns: []string{".github/workflows/*.yml", ".github/workflows/*.yaml"},
		ConfigFormat: format.YAML,
		ConfigFlag:   "-config-file",
		MinVersion:   "1.7.5",
		InstallHint:  "Install via: https://github.com/rhysd/actionlint/releases",
	},
	{
		Name:         Pytest,
		Description:  "Python test runner",
		Binary:       "pytest",
		Priority:     100,
		FilePatterns: []string{"test_*.py", "*_test.py"},
		Timeout:      300 * time.Second,
		CheckArgs:    []string{"-q"},
		MinVersion:   "7.0.0",
		InstallHint:  "Install via: pip install pytest",
	},
}

var specIndex = func() map[string]Spec {
	m := make(map[string]Spec, len(builtinSpecs))
	for _, s := range builtinSpecs {
		m[s.Name] = s
	}
	return m
}()

// Lookup returns the built-in spec for name (case-insensitive).
func Lookup(name string) (Spec, bool) {
	s, ok := specIndex[strings.ToLower(name)]
	return s, ok
}

// Specs returns every built-in spec, sorted by name.
func Specs() []Spec {
	out := make([]Spec, len(builtinSpecs))
	copy(out, builtinSpecs)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Priority returns the default execution priority for name. Lower runs
// earlier; unknown tools get DefaultPriority.
func Priority(name string) int {
	if s, ok := Lookup(name); ok {
		return s.Priority
	}
	return DefaultPriority
}

// MaxPriority is the highest priority in the table; tools at this level
// always run last under priority ordering.
func MaxPriority() int {
	maxP := DefaultPriority
	for _, s := range builtinSpecs {
		maxP = max(maxP, s.Priority)
	}
	return maxP
}

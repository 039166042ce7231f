package discover

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFileName holds extra exclude patterns, one per line.
const IgnoreFileName = ".lintro-ignore"

// DefaultExcludes are applied to every discovery walk.
var DefaultExcludes = []string{
	".git",
	".hg",
	".svn",
	"__pycache__",
	"*.pyc",
	"*.pyo",
	"*.pyd",
	"*cache*",
	".coverage",
	"htmlcov",
	"dist",
	"build",
	"*.egg-info",
}

var venvDirs = map[string]bool{
	"venv":          true,
	".venv":         true,
	"env":           true,
	".env":          true,
	"virtualenv":    true,
	".virtualenv":   true,
	"virtualenvs":   true,
	"site-packages": true,
	"node_modules":  true,
}

// IsVenvDir reports whether a directory name looks like a virtualenv or a
// vendored dependency tree.
func IsVenvDir(name string) bool {
	return venvDirs[name]
}

// ShouldExclude reports whether path matches any exclude pattern. A bare
// name ("build") excludes everything under a directory of that name, "dir/*"
// excludes everything under dir, and other globs match the full path or any
// single path segment.
func ShouldExclude(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	norm := filepath.ToSlash(abs)
	parts := strings.Split(norm, "/")

	for _, raw := range patterns {
		pattern := strings.TrimSpace(raw)
		if pattern == "" {
			continue
		}

		if dir, ok := strings.CutSuffix(pattern, "/*"); ok {
			if strings.Contains(norm, "/"+dir+"/") || strings.HasPrefix(norm, dir+"/") {
				return true
			}
			if dirIndex(parts, dir) >= 0 {
				return true
			}
		} else if !strings.ContainsAny(pattern, "/*?[") {
			if dirIndex(parts, pattern) >= 0 {
				return true
			}
		}

		if matchGlob("**/"+strings.TrimPrefix(pattern, "/"), strings.TrimPrefix(norm, "/")) {
			return true
		}
		for _, part := range parts {
			if ok, _ := filepath.Match(pattern, part); ok {
				return true
			}
		}
	}
	return false
}

// dirIndex returns the index of name among the directory segments of parts
// (never the final file segment), or -1.
func dirIndex(parts []string, name string) int {
	for i, p := range parts[:max(0, len(parts)-1)] {
		if p == name {
			return i
		}
	}
	return -1
}

// LoadIgnoreFile searches from dir upward for .lintro-ignore and returns
// its patterns and path. Blank lines and # comments are skipped.
func LoadIgnoreFile(dir string) ([]string, string) {
	start, err := filepath.Abs(dir)
	if err != nil {
		return nil, ""
	}
	for d := start; ; {
		candidate := filepath.Join(d, IgnoreFileName)
		if patterns, err := readPatterns(candidate); err == nil {
			return patterns, candidate
		}
		parent := filepath.Dir(d)
		if parent == d {
			return nil, ""
		}
		d = parent
	}
}

func readPatterns(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}

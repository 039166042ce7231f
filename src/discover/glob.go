package discover

import (
	"path/filepath"
	"strings"
)

// MatchGlob matches a glob pattern supporting ** against a forward-slash path.
// Patterns and paths should use "/" separators.
func MatchGlob(pattern, path string) bool { return matchGlob(pattern, path) }

// matchGlob extends filepath.Match with support for "**" (zero or more path
// segments). Patterns without "**" delegate directly to filepath.Match.
func matchGlob(pattern, path string) bool {
	if !strings.Contains(pattern, "**") {
		matched, _ := filepath.Match(pattern, path)
		return matched
	}

	idx := strings.Index(pattern, "**")
	prefix := pattern[:idx]
	suffix := strings.TrimLeft(pattern[idx+2:], "/")

	if prefix != "" {
		prefix = strings.TrimRight(prefix, "/")
		if !strings.HasPrefix(path, prefix) {
			return false
		}
		path = strings.TrimPrefix(path, prefix)
		path = strings.TrimLeft(path, "/")
	}

	// ** at end matches everything remaining.
	if suffix == "" {
		return true
	}

	// "tail" walks: "a/b/c", "b/c", "c".
	parts := strings.Split(path, "/")
	for i := 0; i <= len(parts); i++ {
		tail := strings.Join(parts[i:], "/")
		if matchGlob(suffix, tail) {
			return true
		}
	}
	return false
}

// MatchesFilePattern reports whether a file matches a tool file pattern.
// Patterns without a "/" match the base name; patterns with one match any
// trailing run of path segments (".github/workflows/*.yml").
func MatchesFilePattern(pattern, path string) bool {
	slash := filepath.ToSlash(path)
	if !strings.Contains(pattern, "/") {
		return matchGlob(pattern, filepath.Base(slash))
	}
	return matchGlob("**/"+strings.TrimPrefix(pattern, "/"), strings.TrimPrefix(slash, "/"))
}

// Package discover finds the files each tool should run on.
package discover

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Options controls a discovery walk.
type Options struct {
	Patterns    []string // tool file patterns
	Excludes    []string
	IncludeVenv bool
}

// Files returns the sorted absolute paths under paths that match a pattern
// and no exclude. File arguments are checked against the patterns too.
func Files(paths []string, opts Options) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}

		if !info.IsDir() {
			if matchesAny(opts.Patterns, abs) && !ShouldExclude(abs, opts.Excludes) {
				add(abs)
			}
			continue
		}

		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrPermission) {
					return nil
				}
				return err
			}
			if d.IsDir() {
				if path != abs && !opts.IncludeVenv && IsVenvDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if matchesAny(opts.Patterns, path) && !ShouldExclude(path, opts.Excludes) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", p, err)
		}
	}

	sort.Strings(out)
	return out, nil
}

func matchesAny(patterns []string, path string) bool {
	for _, pat := range patterns {
		if MatchesFilePattern(pat, path) {
			return true
		}
	}
	return false
}

// ValidatePaths checks that every path exists and is readable. The error
// names the first offending path.
func ValidatePaths(paths []string) error {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		if info.IsDir() {
			f, err := os.Open(p)
			if err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
			f.Close()
			continue
		}
		f, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		f.Close()
	}
	return nil
}

// CommonDir returns the directory shared by all files: their parent when
// there is only one, else the longest common ancestor of the parents.
// ok is false when files is empty or no common directory exists.
func CommonDir(files []string) (string, bool) {
	if len(files) == 0 {
		return "", false
	}
	dirs := map[string]bool{}
	for _, f := range files {
		dirs[filepath.Dir(f)] = true
	}
	if len(dirs) == 1 {
		for d := range dirs {
			return d, true
		}
	}

	var common []string
	first := true
	for d := range dirs {
		parts := strings.Split(filepath.ToSlash(d), "/")
		if first {
			common = parts
			first = false
			continue
		}
		n := 0
		for n < len(common) && n < len(parts) && common[n] == parts[n] {
			n++
		}
		common = common[:n]
	}
	if len(common) == 0 {
		return "", false
	}
	joined := strings.Join(common, "/")
	if joined == "" {
		joined = "/"
	}
	return filepath.FromSlash(joined), true
}

// Relativize expresses files relative to dir, keeping any file that cannot
// be made relative as given.
func Relativize(files []string, dir string) []string {
	out := make([]string, len(files))
	for i, f := range files {
		rel, err := filepath.Rel(dir, f)
		if err != nil || strings.HasPrefix(rel, "..") {
			out[i] = f
			continue
		}
		out[i] = rel
	}
	return out
}

// ExtensionLabel names the file kinds a pattern list covers for messages:
// ["*.py", "*.pyi"] becomes "py/pyi".
func ExtensionLabel(patterns []string) string {
	var labels []string
	seen := map[string]bool{}
	for _, p := range patterns {
		label := p
		if ext := filepath.Ext(p); ext != "" && strings.HasPrefix(filepath.Base(p), "*") {
			label = strings.TrimPrefix(ext, ".")
		}
		if !seen[label] {
			seen[label] = true
			labels = append(labels, label)
		}
	}
	if len(labels) == 0 {
		return "matching"
	}
	return strings.Join(labels, "/")
}

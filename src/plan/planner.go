// Package plan decides the order tools run in.
package plan

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/TurboCoder13/py-lintro-sub001/src/tools"
)

// Strategy names accepted by Order.
const (
	Priority     = "priority"
	Alphabetical = "alphabetical"
	Custom       = "custom"
)

// Planner orders tool names. The zero value is usable.
type Planner struct {
	Logger *zap.Logger
}

// New returns a planner that logs through logger.
func New(logger *zap.Logger) *Planner {
	return &Planner{Logger: logger}
}

func (p *Planner) logger() *zap.Logger {
	if p == nil || p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

// Order returns names (deduplicated case-insensitively, lowercased) in
// execution order. Unknown strategies fall back to priority order.
func (p *Planner) Order(names []string, strategy string, custom []string, overrides map[string]int) []string {
	uniq := dedupe(names)

	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case Alphabetical:
		sort.Strings(uniq)
		return uniq
	case Custom:
		return customOrder(uniq, custom, overrides)
	case Priority, "":
		byPriority(uniq, overrides)
		return uniq
	default:
		p.logger().Warn("unknown tool order strategy, using priority", zap.String("strategy", strategy))
		byPriority(uniq, overrides)
		return uniq
	}
}

// ToolPriority returns overrides[name] when set, else the built-in priority.
func ToolPriority(name string, overrides map[string]int) int {
	lower := strings.ToLower(name)
	for k, v := range overrides {
		if strings.ToLower(k) == lower {
			return v
		}
	}
	return tools.Priority(lower)
}

func byPriority(names []string, overrides map[string]int) {
	sort.SliceStable(names, func(i, j int) bool {
		pi, pj := ToolPriority(names[i], overrides), ToolPriority(names[j], overrides)
		if pi != pj {
			return pi < pj
		}
		return names[i] < names[j]
	})
}

func customOrder(names, custom []string, overrides map[string]int) []string {
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}

	out := make([]string, 0, len(names))
	placed := make(map[string]bool, len(names))
	for _, c := range custom {
		lc := strings.ToLower(c)
		if present[lc] && !placed[lc] {
			out = append(out, lc)
			placed[lc] = true
		}
	}

	var rest []string
	for _, n := range names {
		if !placed[n] {
			rest = append(rest, n)
		}
	}
	byPriority(rest, overrides)
	return append(out, rest...)
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		lc := strings.ToLower(strings.TrimSpace(n))
		if lc == "" || seen[lc] {
			continue
		}
		seen[lc] = true
		out = append(out, lc)
	}
	return out
}

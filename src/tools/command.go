package tools

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"
)

// CommandTool is the generic adapter: it runs the tool binary with the
// spec's arguments and reports success from the exit code. Output is kept
// verbatim; each non-empty output line of a failing run counts as an issue.
type CommandTool struct {
	spec   Spec
	runner Runner

	mu      sync.Mutex
	options map[string]any
}

// NewCommandTool builds an adapter for spec.
func NewCommandTool(spec Spec, runner Runner) *CommandTool {
	if runner == nil {
		runner = NewExecRunner()
	}
	return &CommandTool{spec: spec, runner: runner, options: map[string]any{}}
}

func (t *CommandTool) Spec() Spec { return t.spec }

// Options returns a copy of the current options.
func (t *CommandTool) Options() map[string]any {
	t.mu.Lock()
	defer t.mu.Unlock()
	return maps.Clone(t.options)
}

// SetOptions replaces the option set. "timeout" must be a positive number
// of seconds.
func (t *CommandTool) SetOptions(opts map[string]any) error {
	if v, ok := opts["timeout"]; ok {
		if secs, ok := TimeoutSeconds(v); !ok || secs <= 0 {
			return fmt.Errorf("%w: %s timeout must be a positive number, got %v", ErrInvalidOption, t.spec.Name, v)
		}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.options = maps.Clone(opts)
	if t.options == nil {
		t.options = map[string]any{}
	}
	return nil
}

func (t *CommandTool) Check(ctx context.Context, req Request) (Result, error) {
	return t.run(ctx, req, t.spec.CheckArgs, false)
}

func (t *CommandTool) Fix(ctx context.Context, req Request) (Result, error) {
	if !t.spec.CanFix {
		return Result{Name: t.spec.Name}, fmt.Errorf("%w: %s", ErrFixNotSupported, t.spec.Name)
	}
	return t.run(ctx, req, t.spec.FixArgs, true)
}

func (t *CommandTool) run(ctx context.Context, req Request, base []string, fix bool) (Result, error) {
	args := make([]string, 0, len(base)+len(req.ConfigArgs)+len(req.Files)+4)
	args = append(args, base...)
	args = append(args, req.ConfigArgs...)
	args = append(args, t.optionArgs()...)
	args = append(args, req.Files...)

	out, err := t.runner.Run(ctx, Invocation{
		Binary:  t.spec.Binary,
		Args:    args,
		Dir:     req.Cwd,
		Timeout: req.Timeout,
	})
	if err != nil {
		return Result{Name: t.spec.Name, Output: err.Error(), IssuesCount: 1}, err
	}

	res := Result{Name: t.spec.Name, Output: out.Combined(), Success: out.ExitCode == 0}
	if !res.Success {
		res.IssuesCount = max(1, countLines(res.Output))
	}
	if fix {
		res.RemainingCount = res.IssuesCount
	}
	return res, nil
}

// optionArgs renders options that have a CLI flag, in key order.
func (t *CommandTool) optionArgs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	keys := make([]string, 0, len(t.options))
	for k := range t.options {
		if _, ok := t.spec.OptionFlags[k]; ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var args []string
	for _, k := range keys {
		flag := t.spec.OptionFlags[k]
		switch v := t.options[k].(type) {
		case bool:
			if v {
				args = append(args, flag)
			}
		case []any:
			parts := make([]string, 0, len(v))
			for _, p := range v {
				parts = append(parts, fmt.Sprint(p))
			}
			args = append(args, flag, strings.Join(parts, ","))
		case []string:
			args = append(args, flag, strings.Join(v, ","))
		case nil:
		default:
			args = append(args, flag, fmt.Sprint(v))
		}
	}
	return args
}

// TimeoutSeconds reads a numeric timeout option.
func TimeoutSeconds(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func countLines(s string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

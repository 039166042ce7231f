package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Invocation describes one subprocess call.
type Invocation struct {
	Binary  string
	Args    []string
	Dir     string
	Timeout time.Duration
}

// String renders the command line for logs.
func (inv Invocation) String() string {
	return strings.TrimSpace(inv.Binary + " " + strings.Join(inv.Args, " "))
}

// Output is the captured result of a finished process.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Combined joins stdout and stderr.
func (o Output) Combined() string {
	switch {
	case o.Stdout == "":
		return o.Stderr
	case o.Stderr == "":
		return o.Stdout
	}
	return o.Stdout + "\n" + o.Stderr
}

// Runner executes a bounded subprocess. A non-zero exit is not an error;
// errors mean the process could not run or was killed.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (Output, error)
}

// waitDelay bounds how long Run waits for output pipes after the process
// was killed.
const waitDelay = 500 * time.Millisecond

// ExecRunner runs processes with os/exec.
type ExecRunner struct {
	logger   *zap.Logger
	lookPath func(string) (string, error)
}

// RunnerOption configures an ExecRunner.
type RunnerOption func(*ExecRunner)

// WithRunnerLogger sets the runner's logger.
func WithRunnerLogger(l *zap.Logger) RunnerOption {
	return func(r *ExecRunner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewExecRunner returns a runner backed by os/exec.
func NewExecRunner(opts ...RunnerOption) *ExecRunner {
	r := &ExecRunner{logger: zap.NewNop(), lookPath: exec.LookPath}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts the process and waits for it, killing it at inv.Timeout.
func (r *ExecRunner) Run(ctx context.Context, inv Invocation) (Output, error) {
	bin, err := r.lookPath(inv.Binary)
	if err != nil {
		return Output{ExitCode: -1}, fmt.Errorf("%w: %s", ErrNotInstalled, inv.Binary)
	}

	timeout := inv.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, bin, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Env = subprocessEnv(os.Environ())
	setupProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessGroup(cmd) }
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("running tool", zap.String("cmd", inv.String()), zap.String("dir", inv.Dir), zap.Duration("timeout", timeout))

	start := time.Now()
	err = cmd.Run()
	out := Output{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: -1,
		Duration: time.Since(start),
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return out, fmt.Errorf("%w after %s: %s", ErrTimeout, timeout, inv.Binary)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
			return out, nil
		}
		return out, fmt.Errorf("running %s: %w", inv.Binary, err)
	}
	out.ExitCode = 0
	return out, nil
}

// subprocessEnv points HOME at the temp dir when HOME is unset or not
// writable. Several Python tools write caches under HOME and crash otherwise.
func subprocessEnv(env []string) []string {
	home := ""
	idx := -1
	for i, kv := range env {
		if strings.HasPrefix(kv, "HOME=") {
			home = strings.TrimPrefix(kv, "HOME=")
			idx = i
		}
	}
	if home != "" && dirWritable(home) {
		return env
	}

	out := make([]string, 0, len(env)+1)
	for i, kv := range env {
		if i != idx {
			out = append(out, kv)
		}
	}
	return append(out, "HOME="+os.TempDir())
}

func dirWritable(dir string) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}
	f, err := os.CreateTemp(dir, ".lintro-write-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(filepath.Clean(name))
	return true
}

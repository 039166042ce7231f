package tools

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
)

// VersionStatus is the outcome of a minimum-version check.
type VersionStatus struct {
	Installed bool
	Version   string // empty when it could not be determined
	Satisfied bool
	Reason    string // why the tool cannot run; empty when Satisfied
}

// VersionChecker decides whether a tool's installed binary is usable.
type VersionChecker interface {
	CheckVersion(ctx context.Context, spec Spec) VersionStatus
}

const versionTimeout = 10 * time.Second

var versionPattern = regexp.MustCompile(`v?(\d+(?:\.\d+)+)`)

// ExecVersionChecker runs "<binary> --version" and compares the reported
// version against Spec.MinVersion. Results are cached per binary.
type ExecVersionChecker struct {
	runner Runner

	mu    sync.Mutex
	cache map[string]VersionStatus
}

// NewVersionChecker returns a checker that invokes binaries through runner.
func NewVersionChecker(runner Runner) *ExecVersionChecker {
	if runner == nil {
		runner = NewExecRunner()
	}
	return &ExecVersionChecker{runner: runner, cache: map[string]VersionStatus{}}
}

// CheckVersion implements VersionChecker.
func (c *ExecVersionChecker) CheckVersion(ctx context.Context, spec Spec) VersionStatus {
	c.mu.Lock()
	if st, ok := c.cache[spec.Binary]; ok {
		c.mu.Unlock()
		return st
	}
	c.mu.Unlock()

	st := c.check(ctx, spec)

	c.mu.Lock()
	c.cache[spec.Binary] = st
	c.mu.Unlock()
	return st
}

func (c *ExecVersionChecker) check(ctx context.Context, spec Spec) VersionStatus {
	args := spec.VersionArgs
	if len(args) == 0 {
		args = []string{"--version"}
	}
	out, err := c.runner.Run(ctx, Invocation{Binary: spec.Binary, Args: args, Timeout: versionTimeout})
	if err != nil {
		reason := fmt.Sprintf("%s is not installed or could not be run", spec.Binary)
		if spec.InstallHint != "" {
			reason += ". " + spec.InstallHint
		}
		return VersionStatus{Reason: reason}
	}

	found := ParseVersion(out.Combined())
	return CompareMinVersion(spec, found)
}

// ParseVersion extracts the first dotted version number from tool output.
func ParseVersion(output string) string {
	m := versionPattern.FindStringSubmatch(output)
	if m == nil {
		return ""
	}
	return m[1]
}

// CompareMinVersion evaluates an installed version string against the
// spec's minimum. Unparseable versions are accepted.
func CompareMinVersion(spec Spec, installed string) VersionStatus {
	st := VersionStatus{Installed: true, Version: installed, Satisfied: true}
	if spec.MinVersion == "" || installed == "" {
		return st
	}

	have, err := semver.NewVersion(installed)
	if err != nil {
		return st
	}
	constraint, err := semver.NewConstraint(">= " + spec.MinVersion)
	if err != nil {
		return st
	}
	if !constraint.Check(have) {
		st.Satisfied = false
		st.Reason = fmt.Sprintf("%s %s is older than the required %s", spec.Name, installed, spec.MinVersion)
		if spec.InstallHint != "" {
			st.Reason += ". " + spec.InstallHint
		}
	}
	return st
}

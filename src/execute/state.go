package execute

import (
	"time"

	"github.com/TurboCoder13/py-lintro-sub001/src/tools"
)

// State is a tool's position in the run lifecycle:
// Pending -> Preparing -> (Skipped | Running) -> (Completed | Failed).
type State int

const (
	Pending State = iota
	Preparing
	Skipped
	Running
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Preparing:
		return "preparing"
	case Skipped:
		return "skipped"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == Skipped || s == Completed || s == Failed
}

// MarshalText renders the state name in JSON reports.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Mode is the run mode.
type Mode string

const (
	ModeCheck Mode = "check"
	ModeFix   Mode = "fix"
)

// ExecutionContext is what Preparing hands to Running. When EarlyResult is
// set the tool is skipped and its adapter is never invoked.
type ExecutionContext struct {
	Files       []string // absolute
	RelFiles    []string // relative to Cwd, or absolute when no common dir exists
	Cwd         string
	Timeout     time.Duration
	EarlyResult *tools.Result
}

func skipResult(tool, reason string) *tools.Result {
	return &tools.Result{Name: tool, Success: true, Output: reason}
}

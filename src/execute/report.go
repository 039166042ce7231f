package execute

import (
	"time"

	"github.com/TurboCoder13/py-lintro-sub001/src/tools"
)

// Outcome is one tool's terminal record in a run.
type Outcome struct {
	Tool      string        `json:"tool"`
	State     State         `json:"state"`
	Result    tools.Result  `json:"result"`
	Reason    string        `json:"reason,omitempty"`
	Err       error         `json:"-"`
	PostCheck bool          `json:"post_check,omitempty"`
	Duration  time.Duration `json:"duration_ns"`
}

// Report aggregates all outcomes of a run.
type Report struct {
	RunID          string        `json:"run_id"`
	Mode           Mode          `json:"mode"`
	Outcomes       []Outcome     `json:"results"`
	TotalIssues    int           `json:"total_issues"`
	TotalFixed     int           `json:"total_fixed,omitempty"`
	TotalRemaining int           `json:"total_remaining,omitempty"`
	StartedAt      time.Time     `json:"started_at"`
	Duration       time.Duration `json:"duration_ns"`
}

// Add records an outcome and updates the totals. Fixed and remaining
// counts only accumulate in fix mode.
func (r *Report) Add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	r.TotalIssues += o.Result.IssuesCount
	if r.Mode == ModeFix {
		r.TotalFixed += o.Result.FixedCount
		r.TotalRemaining += o.Result.RemainingCount
	}
}

// ExitCode is 1 when any result failed, or when issues (check) or
// remaining issues (fix) were reported; otherwise 0. A run where every
// tool was skipped exits 0.
func (r *Report) ExitCode() int {
	for _, o := range r.Outcomes {
		if !o.Result.Success {
			return 1
		}
	}
	if r.Mode == ModeFix {
		if r.TotalRemaining > 0 {
			return 1
		}
		return 0
	}
	if r.TotalIssues > 0 {
		return 1
	}
	return 0
}

// Count returns how many outcomes ended in state s.
func (r *Report) Count(s State) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.State == s {
			n++
		}
	}
	return n
}

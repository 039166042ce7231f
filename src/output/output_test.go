package output

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TurboCoder13/py-lintro-sub001/src/execute"
	"github.com/TurboCoder13/py-lintro-sub001/src/tools"
)

func clearCI(t *testing.T) {
	t.Helper()
	t.Setenv("CI", "")
	t.Setenv("GITLAB_CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
}

func sampleReport() *execute.Report {
	r := &execute.Report{RunID: "run-1", Mode: execute.ModeCheck, Duration: 1500 * time.Millisecond}
	r.Add(execute.Outcome{Tool: "ruff", State: execute.Skipped, Reason: "No py/pyi files found to check.", Result: tools.Result{Name: "ruff", Success: true}})
	r.Add(execute.Outcome{Tool: "black", State: execute.Completed, Result: tools.Result{Name: "black", Success: true}})
	r.Add(execute.Outcome{Tool: "mypy", State: execute.Completed, Result: tools.Result{Name: "mypy", IssuesCount: 3, Output: "a.py:1: error\na.py:2: error\na.py:3: error"}})
	return r
}

func TestUseColor(t *testing.T) {
	clearCI(t)
	t.Setenv("TERM", "xterm")

	t.Setenv("NO_COLOR", "1")
	assert.False(t, UseColor(os.Stdout))

	t.Setenv("NO_COLOR", "")
	t.Setenv("TERM", "dumb")
	assert.False(t, UseColor(os.Stdout))

	t.Setenv("TERM", "xterm")
	t.Setenv("CI", "true")
	assert.True(t, UseColor(nil))
}

func TestPrinterReportPlain(t *testing.T) {
	clearCI(t)
	var buf bytes.Buffer
	p := &Printer{Writer: &buf}
	p.Report(sampleReport())

	out := buf.String()
	assert.Contains(t, out, "── ruff ")
	assert.Contains(t, out, "⊘ No py/pyi files found to check.")
	assert.Contains(t, out, "✓ no issues")
	assert.Contains(t, out, "│ a.py:2: error")
	assert.Contains(t, out, "✗ 3 issues")
	assert.Contains(t, out, "✗ 3 tools: 3 issues, 1 skipped")
	assert.NotContains(t, out, "\033[", "no escape codes without color")
	assert.NotContains(t, out, "::group::")
}

func TestPrinterColor(t *testing.T) {
	clearCI(t)
	var buf bytes.Buffer
	p := &Printer{Writer: &buf, Color: true}
	p.Summary(sampleReport())
	assert.Contains(t, buf.String(), "\033[")
}

func TestGroupsInGitHubActions(t *testing.T) {
	clearCI(t)
	t.Setenv("GITHUB_ACTIONS", "true")
	var buf bytes.Buffer
	p := &Printer{Writer: &buf}
	p.Report(sampleReport())
	assert.Equal(t, 3, strings.Count(buf.String(), "::group::"))
	assert.Equal(t, 3, strings.Count(buf.String(), "::endgroup::"))
}

func TestSummaryLineFix(t *testing.T) {
	r := &execute.Report{Mode: execute.ModeFix}
	r.Add(execute.Outcome{Tool: "black", State: execute.Completed, Result: tools.Result{Success: true, FixedCount: 4}})
	assert.Equal(t, "✓ 1 tool: 4 fixed", SummaryLine(r, false))

	r.Add(execute.Outcome{Tool: "ruff", State: execute.Failed, Result: tools.Result{IssuesCount: 1, RemainingCount: 2}})
	assert.Equal(t, "✗ 2 tools: 4 fixed, 2 remaining, 1 failed", SummaryLine(r, false))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleReport()))

	var got struct {
		RunID       string `json:"run_id"`
		TotalIssues int    `json:"total_issues"`
		Results     []struct {
			Tool   string `json:"tool"`
			State  string `json:"state"`
			Reason string `json:"reason"`
			Result struct {
				IssuesCount int `json:"issues_count"`
			} `json:"result"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, 3, got.TotalIssues)
	require.Len(t, got.Results, 3)
	assert.Equal(t, "skipped", got.Results[0].State)
	assert.Equal(t, "completed", got.Results[2].State)
	assert.Equal(t, 3, got.Results[2].Result.IssuesCount)
}

func TestWriteJUnit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	path, err := WriteJUnit(dir, sampleReport())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var suites JUnitTestSuites
	require.NoError(t, xml.Unmarshal(data, &suites))

	assert.Equal(t, 3, suites.Tests)
	assert.Equal(t, 1, suites.Failures)
	assert.Equal(t, 1, suites.Skipped)
	require.Len(t, suites.Suites, 1)
	cases := suites.Suites[0].Cases
	require.Len(t, cases, 3)
	assert.NotNil(t, cases[0].Skipped)
	assert.Nil(t, cases[1].Failure)
	require.NotNil(t, cases[2].Failure)
	assert.Equal(t, "3 issues", cases[2].Failure.Message)
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "<1ms", formatElapsed(time.Microsecond))
	assert.Equal(t, "250ms", formatElapsed(250*time.Millisecond))
	assert.Equal(t, "1.5s", formatElapsed(1500*time.Millisecond))
	assert.Equal(t, "2m3.0s", formatElapsed(123*time.Second))
}

package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/TurboCoder13/py-lintro-sub001/src/execute"
)

// CI environment detection.

func IsCI() bool {
	return os.Getenv("CI") == "true" || IsGitHubActions()
}

func IsGitLabCI() bool {
	return os.Getenv("GITLAB_CI") == "true"
}

func IsGitHubActions() bool {
	return os.Getenv("GITHUB_ACTIONS") == "true"
}

// Collapsible log group helpers. No-ops outside GitLab CI and GitHub Actions.

func GroupStart(w io.Writer, id, name string) {
	switch {
	case IsGitLabCI():
		fmt.Fprintf(w, "\033[0Ksection_start:%d:%s[collapsed=true]\r\033[0K%s\n", time.Now().Unix(), id, name)
	case IsGitHubActions():
		fmt.Fprintf(w, "::group::%s\n", name)
	}
}

func GroupEnd(w io.Writer, id string) {
	switch {
	case IsGitLabCI():
		fmt.Fprintf(w, "\033[0Ksection_end:%d:%s\r\033[0K\n", time.Now().Unix(), id)
	case IsGitHubActions():
		fmt.Fprintln(w, "::endgroup::")
	}
}

// JUnit XML types for CI test reporting.

type JUnitTestSuites struct {
	XMLName  xml.Name         `xml:"testsuites"`
	Name     string           `xml:"name,attr"`
	Tests    int              `xml:"tests,attr"`
	Failures int              `xml:"failures,attr"`
	Skipped  int              `xml:"skipped,attr"`
	Time     string           `xml:"time,attr"`
	Suites   []JUnitTestSuite `xml:"testsuite"`
}

type JUnitTestSuite struct {
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Skipped  int             `xml:"skipped,attr"`
	Time     string          `xml:"time,attr"`
	Cases    []JUnitTestCase `xml:"testcase"`
}

type JUnitTestCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

type JUnitSkipped struct {
	Message string `xml:"message,attr"`
}

// BuildJUnit converts a report into one suite where each tool is a test case.
// Tools that failed to run or reported issues are failures.
func BuildJUnit(r *execute.Report) JUnitTestSuites {
	suite := JUnitTestSuite{
		Name: "lintro/" + string(r.Mode),
		Time: fmt.Sprintf("%.3f", r.Duration.Seconds()),
	}
	for _, o := range r.Outcomes {
		tc := JUnitTestCase{
			Name:      o.Tool,
			Classname: "lintro." + string(r.Mode),
			Time:      fmt.Sprintf("%.3f", o.Duration.Seconds()),
		}
		switch StateStatus(o) {
		case StatusSkipped:
			tc.Skipped = &JUnitSkipped{Message: o.Reason}
			suite.Skipped++
		case StatusFailed:
			msg := plural(o.Result.IssuesCount, "issue")
			if o.State == execute.Failed {
				msg = "failed to run"
			}
			tc.Failure = &JUnitFailure{Message: msg, Type: o.State.String(), Body: o.Result.Output}
			suite.Failures++
		}
		suite.Cases = append(suite.Cases, tc)
		suite.Tests++
	}

	return JUnitTestSuites{
		Name:     "lintro",
		Tests:    suite.Tests,
		Failures: suite.Failures,
		Skipped:  suite.Skipped,
		Time:     suite.Time,
		Suites:   []JUnitTestSuite{suite},
	}
}

// WriteJUnit writes the report as JUnit XML to dir/lintro.xml.
func WriteJUnit(dir string, r *execute.Report) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report dir: %w", err)
	}

	path := filepath.Join(dir, "lintro.xml")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.WriteString(f, xml.Header); err != nil {
		return "", err
	}
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	if err := enc.Encode(BuildJUnit(r)); err != nil {
		return "", fmt.Errorf("encoding junit xml: %w", err)
	}
	if _, err := io.WriteString(f, "\n"); err != nil {
		return "", err
	}
	return path, nil
}

package toolchain

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
)

// GTestReport is the subset of Google Test's JSON output that grading reads.
type GTestReport struct {
	Tests      int              `json:"tests"`
	Failures   int              `json:"failures"`
	TestSuites []GTestSuiteList `json:"testsuites"`
}

// GTestSuiteList is one test suite and its tests.
type GTestSuiteList struct {
	Name  string      `json:"name"`
	Tests []GTestCase `json:"testsuite"`
}

// GTestCase is one test and its failure messages.
type GTestCase struct {
	Name     string         `json:"name"`
	Failures []GTestFailure `json:"failures,omitempty"`
}

// GTestFailure is one failed assertion.
type GTestFailure struct {
	Failure string `json:"failure"`
}

// ParseGTestReport decodes a Google Test JSON report.
func ParseGTestReport(r io.Reader) (*GTestReport, error) {
	var rep GTestReport
	if err := json.NewDecoder(r).Decode(&rep); err != nil {
		return nil, fmt.Errorf("decode gtest report: %w", err)
	}
	return &rep, nil
}

// ReadGTestReport reads and decodes the report at path.
func ReadGTestReport(path string) (*GTestReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gtest report: %w", err)
	}
	defer f.Close()
	return ParseGTestReport(f)
}

// Passed returns the number of tests without failures.
func (r *GTestReport) Passed() int {
	return r.Tests - r.Failures
}

// Summary renders the report as "passed/total".
func (r *GTestReport) Summary() string {
	return fmt.Sprintf("%d/%d", r.Passed(), r.Tests)
}

// Notes lists every failure as "suite:test:message".
func (r *GTestReport) Notes() []string {
	var notes []string
	for _, suite := range r.TestSuites {
		for _, tc := range suite.Tests {
			for _, f := range tc.Failures {
				notes = append(notes, fmt.Sprintf("%s:%s:%s", suite.Name, tc.Name, f.Failure))
			}
		}
	}
	return notes
}

var mainFunction = regexp.MustCompile(`int\s*main\s*\(\s*(?:int\s*argc,\s*(const)?\s*char\s*(const)?\s*\*\s*argv\[\]|void|)\s*\)`)

// HasMainFunction reports whether the C++ source at path defines main.
func HasMainFunction(path string) (bool, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("scan for main: %w", err)
	}
	return mainFunction.Match(src), nil
}

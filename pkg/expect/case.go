// Package expect drives a compiled student program under a pseudo-terminal
// and checks its output and exit status against declarative test cases.
package expect

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind tags a test case with the exit status it expects.
type Kind string

const (
	// ErrorCase expects an error message and a non-zero exit status.
	ErrorCase Kind = "error"
	// SuccessCase expects the templated output and a zero exit status.
	SuccessCase Kind = "success"
)

// TestCase is one interactive-process expectation.
type TestCase struct {
	Kind Kind `yaml:"kind" json:"kind" jsonschema:"required,enum=error,enum=success"`
	// Arguments are passed to the program as argv entries, never on stdin.
	Arguments []string `yaml:"args,omitempty" json:"args,omitempty"`
	// ExpectedPattern is a regular expression template whose {} and {N}
	// placeholders are filled from Arguments. See BuildPattern.
	ExpectedPattern string `yaml:"expect" json:"expect" jsonschema:"required"`
	// ExpectedValue, when set, is compared with the integer captured by the
	// first group of ExpectedPattern.
	ExpectedValue *int `yaml:"value,omitempty" json:"value,omitempty"`
	// ExpectedText is the human-readable output quoted in diagnostics.
	ExpectedText string `yaml:"expected_text,omitempty" json:"expected_text,omitempty"`
}

// ExpectNonZeroExit reports whether the program must fail.
func (tc TestCase) ExpectNonZeroExit() bool {
	return tc.Kind == ErrorCase
}

// Matcher compiles the case's expected pattern against its arguments.
func (tc TestCase) Matcher() (*regexp.Regexp, error) {
	return BuildPattern(tc.ExpectedPattern, tc.Arguments)
}

// Want returns the text quoted to the student when the case fails.
func (tc TestCase) Want() string {
	if tc.ExpectedText != "" {
		if s, err := Substitute(tc.ExpectedText, tc.Arguments); err == nil {
			return s
		}
		return tc.ExpectedText
	}
	if tc.ExpectedValue != nil {
		return fmt.Sprintf("%d", *tc.ExpectedValue)
	}
	return tc.ExpectedPattern
}

// String renders the case the way the grading log labels it.
func (tc TestCase) String() string {
	quoted := make([]string, len(tc.Arguments))
	for i, a := range tc.Arguments {
		quoted[i] = fmt.Sprintf("'%s'", a)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// Failure names why a case did not pass.
type Failure string

const (
	NoFailure           Failure = ""
	Timeout             Failure = "timeout"
	UnexpectedExitCode  Failure = "unexpected_exit_code"
	ValueMismatch       Failure = "value_mismatch"
	ProcessSpawnFailure Failure = "process_spawn_failure"
	InvalidPattern      Failure = "invalid_pattern"
)

// Outcome is the result of running one TestCase.
type Outcome struct {
	Case     TestCase `json:"case"`
	Matched  bool     `json:"matched"`
	ExitCode int      `json:"exit_code"` // -1 when the program never exited on its own
	Passed   bool     `json:"passed"`
	Failure  Failure  `json:"failure,omitempty"`
	Detail   string   `json:"detail,omitempty"`
	Output   string   `json:"output,omitempty"` // everything the program wrote
	Pid      int      `json:"pid,omitempty"`
}

// Tally renders outcomes as "passed/total".
func Tally(outcomes []Outcome) string {
	return fmt.Sprintf("%d/%d", CountPassed(outcomes), len(outcomes))
}

// CountPassed returns how many outcomes passed.
func CountPassed(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Passed {
			n++
		}
	}
	return n
}

// AllPassed reports whether every outcome passed. An empty slice passes.
func AllPassed(outcomes []Outcome) bool {
	return CountPassed(outcomes) == len(outcomes)
}

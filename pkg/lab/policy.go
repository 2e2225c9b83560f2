package lab

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// DefaultPassPolicy fails a part for any missing header, formatting or
// lint finding, tool failure, build failure or failed test run. Unit test
// results and lateness are reported but do not fail the part.
const DefaultPassPolicy = `files > 0 && header && missing_headers == 0 && format_issues == 0 && lint_issues == 0 && tool_errors == 0 && build && tests_passed == tests_total`

// Facts are the grading observations a pass policy can refer to.
type Facts struct {
	Files           int  `expr:"files"`
	Header          bool `expr:"header"`
	MissingHeaders  int  `expr:"missing_headers"`
	FormatChecked   bool `expr:"format_checked"`
	FormatIssues    int  `expr:"format_issues"`
	LintChecked     bool `expr:"lint_checked"`
	LintIssues      int  `expr:"lint_issues"`
	ToolErrors      int  `expr:"tool_errors"`
	UnitTestsRun    bool `expr:"unit_tests_run"`
	UnitTestsPassed int  `expr:"unit_tests_passed"`
	UnitTestsTotal  int  `expr:"unit_tests_total"`
	MainFunctions   int  `expr:"main_functions"`
	Build           bool `expr:"build"`
	TestsPassed     int  `expr:"tests_passed"`
	TestsTotal      int  `expr:"tests_total"`
	DaysLate        int  `expr:"days_late"`
}

// Policy is a compiled pass policy.
type Policy struct {
	src     string
	program *vm.Program
}

// CompilePolicy compiles src against Facts. An empty src compiles
// DefaultPassPolicy.
func CompilePolicy(src string) (*Policy, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		src = DefaultPassPolicy
	}
	program, err := expr.Compile(src, expr.Env(Facts{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile pass policy %q: %w", src, err)
	}
	return &Policy{src: src, program: program}, nil
}

// Eval reports whether f satisfies the policy.
func (p *Policy) Eval(f Facts) (bool, error) {
	out, err := expr.Run(p.program, f)
	if err != nil {
		return false, fmt.Errorf("eval pass policy %q: %w", p.src, err)
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, fmt.Errorf("pass policy %q did not return bool (got %T)", p.src, out)
	}
	return ok, nil
}

func (p *Policy) String() string { return p.src }

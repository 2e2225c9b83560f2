// Package grader checks one part of a student repository end to end:
// headers, formatting, linting, unit tests, build and program runs. Each
// check contributes to a grade log row and to the facts a pass policy is
// evaluated against.
package grader

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ormasoftchile/labcheck/pkg/expect"
	"github.com/ormasoftchile/labcheck/pkg/lab"
	"github.com/ormasoftchile/labcheck/pkg/toolchain"
)

// UnitTestOutput is the Google Test JSON report file name.
const UnitTestOutput = "test_detail.json"

// Options configure a Grader.
type Options struct {
	Config *lab.Config
	// Exec runs make, clang-format, clang-tidy and git. Defaults to
	// toolchain.RealExecutor.
	Exec toolchain.Executor
	Log  *zap.Logger
	// Timeout bounds each wait of a program run. Defaults to
	// expect.DefaultTimeout.
	Timeout time.Duration
	// BaseDir holds the starter code. When set, a part whose files all
	// match the starter code is failed without further checks.
	BaseDir string
	// Section picks a section due date; empty uses the lab due date.
	Section string
	// NoGradeLog skips writing the CSV grade log.
	NoGradeLog bool
	// Now defaults to time.Now.
	Now func() time.Time
}

// Grader checks parts of a lab.
type Grader struct {
	cfg     *lab.Config
	policy  *lab.Policy
	log     *zap.Logger
	opts    Options
	checker *expect.Checker
	make    *toolchain.Make
	format  *toolchain.Formatter
	lint    *toolchain.Linter
	git     *toolchain.Git
	// cases is each part's test table keyed by part directory.
	cases   map[string][]expect.TestCase
}

// New builds a Grader. It fails when a part names an unknown suite or the
// pass policy does not compile.
func New(opts Options) (*Grader, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("new grader: no lab config")
	}
	cases := make(map[string][]expect.TestCase, len(opts.Config.Parts))
	for _, p := range opts.Config.Parts {
		tcs, err := p.TestCases()
		if err != nil {
			return nil, fmt.Errorf("new grader: part %s: %w", p.Dir, err)
		}
		cases[p.Dir] = tcs
	}
	policy, err := lab.CompilePolicy(opts.Config.PassPolicy)
	if err != nil {
		return nil, fmt.Errorf("new grader: %w", err)
	}
	if opts.Exec == nil {
		opts.Exec = toolchain.RealExecutor{}
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Grader{
		cfg:     opts.Config,
		policy:  policy,
		log:     opts.Log,
		opts:    opts,
		checker: &expect.Checker{Timeout: opts.Timeout, Logger: opts.Log},
		make:    &toolchain.Make{Exec: opts.Exec, Makefile: opts.Config.Makefile(), Log: opts.Log},
		format:  &toolchain.Formatter{Exec: opts.Exec, Log: opts.Log},
		lint:    &toolchain.Linter{Exec: opts.Exec, Log: opts.Log},
		git:     &toolchain.Git{Exec: opts.Exec, Log: opts.Log},
		cases:   cases,
	}, nil
}

// Cases returns the test table resolved for the part in dir.
func (g *Grader) Cases(dir string) []expect.TestCase { return g.cases[dir] }

// Policy returns the compiled pass policy.
func (g *Grader) Policy() *lab.Policy { return g.policy }

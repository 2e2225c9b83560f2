package toolchain

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

const lintTimeout = 60 * time.Second

// CheckOption is one clang-tidy CheckOptions entry.
type CheckOption struct {
	Key   string `yaml:"key" json:"key" jsonschema:"required"`
	Value string `yaml:"value" json:"value"`
}

// TidyOptions configures a clang-tidy run.
type TidyOptions struct {
	// Checks are globs joined into -checks, e.g. "*" then "-llvm-header-guard".
	Checks       []string      `yaml:"checks,omitempty" json:"checks,omitempty"`
	CheckOptions []CheckOption `yaml:"check_options,omitempty" json:"check_options,omitempty"`
	// CompilerOptions follow "--" unless SkipCompileCmd is set, in which
	// case clang-tidy looks for a compilation database.
	CompilerOptions []string `yaml:"compiler_options,omitempty" json:"compiler_options,omitempty"`
	SkipCompileCmd  bool     `yaml:"skip_compile_cmd,omitempty" json:"skip_compile_cmd,omitempty"`
}

var plainValue = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Args renders the options as clang-tidy arguments for file.
func (o TidyOptions) Args(file string) []string {
	var args []string
	if len(o.Checks) > 0 {
		args = append(args, "-checks="+strings.Join(o.Checks, ","))
	}
	if len(o.CheckOptions) > 0 {
		entries := make([]string, len(o.CheckOptions))
		for i, opt := range o.CheckOptions {
			entries[i] = fmt.Sprintf("{key: %s, value: %s}", opt.Key, quoteValue(opt.Value))
		}
		args = append(args, "-config={CheckOptions: ["+strings.Join(entries, ", ")+"]}")
	}
	args = append(args, file)
	if !o.SkipCompileCmd {
		args = append(args, "--")
		args = append(args, o.CompilerOptions...)
	}
	return args
}

func quoteValue(v string) string {
	if plainValue.MatchString(v) {
		return v
	}
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

var diagnosticLine = regexp.MustCompile(`:\d+:\d+: (warning|error):`)

// Linter runs clang-tidy.
type Linter struct {
	Exec Executor
	Log  *zap.Logger
}

// Check returns the warning and error lines clang-tidy reports for file.
func (l *Linter) Check(ctx context.Context, file string, opts TidyOptions) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, lintTimeout)
	defer cancel()

	args := opts.Args(file)
	logger(l.Log).Debug(commandLine("clang-tidy", args))
	res, err := l.Exec.Execute(ctx, "clang-tidy", args, nil)
	if err != nil {
		return nil, fmt.Errorf("lint check: %w", err)
	}
	var warnings []string
	for _, line := range strings.Split(string(res.Stdout), "\n") {
		line = strings.TrimRight(line, "\r")
		if diagnosticLine.MatchString(line) {
			warnings = append(warnings, line)
		}
	}
	if len(warnings) == 0 && res.ExitCode != 0 {
		return nil, fmt.Errorf("lint check %s: clang-tidy exit status %d: %s", file, res.ExitCode, trimOutput(res.Stderr))
	}
	return warnings, nil
}

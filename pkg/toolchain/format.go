package toolchain

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"
	"go.uber.org/zap"
)

// DefaultStyle is the clang-format style students are held to.
const DefaultStyle = "Google"

const formatTimeout = 30 * time.Second

// Formatter compares source files with clang-format's rendering of them.
type Formatter struct {
	Exec  Executor
	Style string
	Log   *zap.Logger
}

// Check returns a unified diff from file to its formatted form. An empty
// result means the file is already formatted.
func (f *Formatter) Check(ctx context.Context, file string) ([]string, error) {
	original, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("format check: %w", err)
	}
	style := f.Style
	if style == "" {
		style = DefaultStyle
	}
	ctx, cancel := context.WithTimeout(ctx, formatTimeout)
	defer cancel()

	args := []string{"--style=" + style, file}
	logger(f.Log).Debug(commandLine("clang-format", args))
	res, err := f.Exec.Execute(ctx, "clang-format", args, nil)
	if err != nil {
		return nil, fmt.Errorf("format check: %w", err)
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("format check %s: clang-format exit status %d: %s", file, res.ExitCode, trimOutput(res.Stderr))
	}
	return Diff(file, string(original), string(res.Stdout))
}

// Diff returns the unified diff lines turning before into after, or nil
// when they are equal.
func Diff(name, before, after string) ([]string, error) {
	if before == after {
		return nil, nil
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: name,
		ToFile:   name + " (formatted)",
		Context:  3,
	})
	if err != nil {
		return nil, fmt.Errorf("diff %s: %w", name, err)
	}
	if text == "" {
		return nil, nil
	}
	return strings.Split(strings.TrimRight(text, "\n"), "\n"), nil
}

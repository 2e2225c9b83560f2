// Package toolchain wraps the external programs a lab is graded with:
// make, clang-format, clang-tidy and git.
package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrToolMissing is wrapped by errors for programs that cannot be executed.
var ErrToolMissing = errors.New("tool is not executable")

// Result holds the output of a single command execution.
type Result struct {
	Stdout   []byte        `json:"stdout"`
	Stderr   []byte        `json:"stderr"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration"`
}

// Executor runs external commands. env entries are added to the current
// environment.
type Executor interface {
	Execute(ctx context.Context, command string, args []string, env []string) (*Result, error)
}

// RealExecutor runs commands via os/exec.
type RealExecutor struct{}

// Execute runs command and captures its output. A non-zero exit status is
// reported in the Result, not as an error.
func (RealExecutor) Execute(ctx context.Context, command string, args []string, env []string) (*Result, error) {
	start := time.Now()
	cmd := exec.CommandContext(ctx, command, args...)
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	duration := time.Since(start)

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			exitCode = exitErr.ExitCode()
		case isExecNotFound(err):
			return nil, fmt.Errorf("execute command %q: %w: %w", command, ErrToolMissing, err)
		default:
			return nil, fmt.Errorf("execute command %q: %w", command, err)
		}
	}

	return &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: exitCode,
		Duration: duration,
	}, nil
}

func isExecNotFound(err error) bool {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
		return true
	}
	var execErr *exec.Error
	return errors.As(err, &execErr)
}

// commandLine renders a command for debug logs.
func commandLine(command string, args []string) string {
	return strings.TrimSpace(command + " " + strings.Join(args, " "))
}

func trimOutput(b []byte) string {
	return strings.TrimRight(string(b), "\r\n")
}

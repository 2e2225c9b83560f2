package toolchain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultMakeTimeout bounds a single make invocation.
	DefaultMakeTimeout = 30 * time.Second
	// UnitTestTimeout bounds building and running the unit tests.
	UnitTestTimeout = 120 * time.Second
)

// ErrMakefileMissing is returned when the part directory has no makefile.
var ErrMakefileMissing = errors.New("makefile does not exist")

// Make drives a part's GNU makefile.
type Make struct {
	Exec     Executor
	Makefile string // file name inside the part directory
	Log      *zap.Logger
}

// Run executes target with `make -f <Makefile> -C dir`.
func (m *Make) Run(ctx context.Context, dir, target string, timeout time.Duration, env ...string) error {
	log := logger(m.Log)
	if _, err := os.Stat(filepath.Join(dir, m.Makefile)); err != nil {
		log.Error("makefile does not exist", zap.String("makefile", m.Makefile), zap.String("dir", dir))
		return fmt.Errorf("make %s: %w: %s in %s", target, ErrMakefileMissing, m.Makefile, dir)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{"-f", m.Makefile, "-C", dir, target}
	log.Debug(commandLine("make", args))
	res, err := m.Exec.Execute(ctx, "make", args, env)
	if err != nil {
		return fmt.Errorf("make %s: %w", target, err)
	}
	if len(res.Stderr) > 0 {
		log.Info("make stderr", zap.String("target", target), zap.String("stderr", trimOutput(res.Stderr)))
	}
	if ctx.Err() != nil {
		return fmt.Errorf("make %s in %s: %w", target, dir, ctx.Err())
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("make %s in %s: exit status %d", target, dir, res.ExitCode)
	}
	return nil
}

// Build cleans with the spotless target and then builds all.
func (m *Make) Build(ctx context.Context, dir string) error {
	if err := m.Run(ctx, dir, "spotless", DefaultMakeTimeout); err != nil {
		return err
	}
	return m.Run(ctx, dir, "all", DefaultMakeTimeout)
}

// UnitTest cleans, then builds and runs the unittest target asking Google
// Test to write a JSON report to outputFile.
func (m *Make) UnitTest(ctx context.Context, dir, outputFile string) error {
	if err := m.Run(ctx, dir, "spotless", DefaultMakeTimeout); err != nil {
		return err
	}
	return m.Run(ctx, dir, "unittest", UnitTestTimeout,
		"GTEST_OUTPUT_FORMAT=json",
		"GTEST_OUTPUT_FILE="+outputFile,
	)
}

func logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

package expect

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds each wait on a student program.
const DefaultTimeout = time.Second

// Checker runs test cases against an executable, one fresh process per
// case. The zero value is usable.
type Checker struct {
	// Timeout bounds each of the match, drain and exit waits.
	Timeout time.Duration
	Logger  *zap.Logger
}

func (c *Checker) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

func (c *Checker) log() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// RunCases runs every case in order and returns one outcome per case.
func (c *Checker) RunCases(ctx context.Context, executable string, cases []TestCase) []Outcome {
	out := make([]Outcome, 0, len(cases))
	for _, tc := range cases {
		out = append(out, c.RunCase(ctx, executable, tc))
	}
	return out
}

// RunCase spawns executable with the case's arguments, waits for the
// expected output, then for the program to exit, and judges the result.
// The process is gone by the time RunCase returns.
func (c *Checker) RunCase(ctx context.Context, executable string, tc TestCase) Outcome {
	log := c.log().With(zap.String("executable", executable), zap.Stringer("args", tc))
	o := Outcome{Case: tc, ExitCode: -1}

	re, err := tc.Matcher()
	if err != nil {
		return o.fail(log, InvalidPattern, err.Error())
	}

	sess, err := Spawn(executable, tc.Arguments...)
	if err != nil {
		return o.fail(log, ProcessSpawnFailure, err.Error())
	}
	o.Pid = sess.Pid()
	defer func() {
		if err := sess.Close(); err != nil {
			log.Warn("closing program", zap.Error(err))
		}
	}()

	groups, err := sess.Expect(ctx, re, c.timeout())
	if err != nil {
		o.Output = sess.Transcript()
		log.Debug("program output", zap.String("output", o.Output))
		if errors.Is(err, ErrNoMatch) || errors.Is(err, ErrOutputClosed) {
			return o.fail(log, Timeout, fmt.Sprintf("expected %q: could not find expected output", tc.Want()))
		}
		return o.fail(log, Timeout, err.Error())
	}
	o.Matched = true

	var valueFailure string
	if tc.ExpectedValue != nil {
		valueFailure = checkValue(groups, *tc.ExpectedValue)
	}

	sess.Drain(ctx, c.timeout())
	code, err := sess.Wait(ctx, c.timeout())
	o.Output = sess.Transcript()
	log.Debug("program output", zap.String("output", o.Output))
	if err != nil {
		return o.fail(log, Timeout, err.Error())
	}
	o.ExitCode = code

	if valueFailure != "" {
		return o.fail(log, ValueMismatch, valueFailure)
	}
	switch nonZero := code != 0; {
	case tc.ExpectNonZeroExit() && !nonZero:
		return o.fail(log, UnexpectedExitCode, "expected a non-zero exit code; program returned zero, but non-zero is required")
	case !tc.ExpectNonZeroExit() && nonZero:
		return o.fail(log, UnexpectedExitCode, fmt.Sprintf("expected a zero exit code; program returned %d", code))
	}

	o.Passed = true
	return o
}

func checkValue(groups []string, want int) string {
	if len(groups) < 2 {
		return "expected pattern has no capture group for the value"
	}
	got, err := strconv.Atoi(strings.TrimSpace(groups[1]))
	if err != nil {
		return fmt.Sprintf("expected %d, but could not read a number from %q", want, groups[1])
	}
	if got != want {
		return fmt.Sprintf("expected %d, got %d", want, got)
	}
	return ""
}

func (o Outcome) fail(log *zap.Logger, f Failure, detail string) Outcome {
	o.Passed = false
	o.Failure = f
	o.Detail = detail
	log.Error(detail, zap.String("failure", string(f)), zap.Int("exit_code", o.ExitCode))
	return o
}

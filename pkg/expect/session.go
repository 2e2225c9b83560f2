package expect

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"sync"
	"time"

	"github.com/creack/pty"
)

// State is the lifecycle position of a Session.
type State int

const (
	Spawned State = iota
	Matching
	Matched
	TimedOut
	Draining
	Terminated
)

func (s State) String() string {
	switch s {
	case Spawned:
		return "spawned"
	case Matching:
		return "matching"
	case Matched:
		return "matched"
	case TimedOut:
		return "timed_out"
	case Draining:
		return "draining"
	case Terminated:
		return "terminated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	// ErrNoMatch is returned by Expect when the deadline passes first.
	ErrNoMatch = errors.New("expected output not found before timeout")
	// ErrOutputClosed is returned by Expect when the program closed its
	// terminal without producing a match.
	ErrOutputClosed = errors.New("program output ended without a match")
	// ErrStillRunning is returned by Wait when the program outlives the bound.
	ErrStillRunning = errors.New("program did not exit before timeout")
)

// Session is one program running on a pseudo-terminal. A reader goroutine
// copies its output into an unconsumed buffer that Expect searches. Close
// must be called on every path; it kills the process group if needed and
// releases the terminal.
type Session struct {
	cmd *exec.Cmd
	tty *os.File

	mu      sync.Mutex
	pending bytes.Buffer // output not yet consumed by Expect
	all     bytes.Buffer // everything read
	readErr error
	state   State

	notify chan struct{} // one token per burst of new output or EOF
	eof    chan struct{} // closed when the reader goroutine returns
	exited chan struct{} // closed when the process has been reaped
	waitErr error

	closeOnce sync.Once
}

// Spawn starts path with args as argv under a fresh pseudo-terminal.
func Spawn(path string, args ...string) (*Session, error) {
	cmd := exec.Command(path, args...)
	tty, err := pty.Start(cmd)
	if err != nil {
		return nil, fmt.Errorf("spawn %s: %w", path, err)
	}
	s := &Session{
		cmd:    cmd,
		tty:    tty,
		state:  Spawned,
		notify: make(chan struct{}, 1),
		eof:    make(chan struct{}),
		exited: make(chan struct{}),
	}
	go s.read()
	go func() {
		s.waitErr = cmd.Wait()
		close(s.exited)
	}()
	return s, nil
}

func (s *Session) read() {
	defer close(s.eof)
	chunk := make([]byte, 4096)
	for {
		n, err := s.tty.Read(chunk)
		if n > 0 {
			s.mu.Lock()
			s.pending.Write(chunk[:n])
			s.all.Write(chunk[:n])
			s.mu.Unlock()
			s.signal()
		}
		if err != nil {
			// Linux reports EIO once the last slave descriptor closes.
			s.mu.Lock()
			s.readErr = err
			s.mu.Unlock()
			s.signal()
			return
		}
	}
}

func (s *Session) signal() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Pid returns the program's process id.
func (s *Session) Pid() int {
	return s.cmd.Process.Pid
}

// Transcript returns everything the program has written so far.
func (s *Session) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.all.String()
}

// Expect waits up to timeout for re to match the unconsumed output. On a
// match the output up to the end of the match is consumed and the
// submatches are returned.
func (s *Session) Expect(ctx context.Context, re *regexp.Regexp, timeout time.Duration) ([]string, error) {
	s.setState(Matching)
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		s.mu.Lock()
		data := s.pending.Bytes()
		if loc := re.FindSubmatchIndex(data); loc != nil {
			groups := make([]string, len(loc)/2)
			for i := range groups {
				if loc[2*i] >= 0 {
					groups[i] = string(data[loc[2*i]:loc[2*i+1]])
				}
			}
			s.pending.Next(loc[1])
			s.state = Matched
			s.mu.Unlock()
			return groups, nil
		}
		closed := s.readErr != nil
		s.mu.Unlock()
		if closed {
			s.setState(TimedOut)
			return nil, ErrOutputClosed
		}
		select {
		case <-s.notify:
		case <-deadline.C:
			s.setState(TimedOut)
			return nil, ErrNoMatch
		case <-ctx.Done():
			s.setState(TimedOut)
			return nil, ctx.Err()
		}
	}
}

// Drain waits up to timeout for the program to close its output. Whatever
// arrives is kept in the transcript.
func (s *Session) Drain(ctx context.Context, timeout time.Duration) {
	s.setState(Draining)
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-s.eof:
	case <-t.C:
	case <-ctx.Done():
	}
}

// Wait waits up to timeout for the program to exit and returns its exit
// status. A program killed by a signal reports -1.
func (s *Session) Wait(ctx context.Context, timeout time.Duration) (int, error) {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-s.exited:
		return s.cmd.ProcessState.ExitCode(), nil
	case <-t.C:
		return -1, ErrStillRunning
	case <-ctx.Done():
		return -1, ctx.Err()
	}
}

// closeGrace bounds how long Close waits for the kernel after SIGKILL.
const closeGrace = 2 * time.Second

// Close kills the program's process group if it is still running, reaps
// it, and closes the terminal. It is safe to call more than once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		select {
		case <-s.exited:
		default:
			killGroup(s.cmd.Process)
			select {
			case <-s.exited:
			case <-time.After(closeGrace):
				err = fmt.Errorf("process %d was not reaped after kill", s.Pid())
			}
		}
		if cerr := s.tty.Close(); cerr != nil && err == nil {
			err = cerr
		}
		select {
		case <-s.eof:
		case <-time.After(closeGrace):
			if err == nil {
				err = errors.New("terminal reader did not stop")
			}
		}
		s.setState(Terminated)
	})
	return err
}

//go:build !windows

package expect

import (
	"os"
	"syscall"
)

// killGroup kills p and everything it started. The pseudo-terminal makes
// p a session leader, so its pid names the process group.
func killGroup(p *os.Process) {
	if err := syscall.Kill(-p.Pid, syscall.SIGKILL); err != nil {
		_ = p.Kill()
	}
}

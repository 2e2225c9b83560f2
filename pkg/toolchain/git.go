package toolchain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const gitTimeout = 15 * time.Second

// Git reads repository history.
type Git struct {
	Exec Executor
	Log  *zap.Logger
}

// LastCommitDate returns the committer date of the newest commit reachable
// from HEAD in the repository containing dir.
func (g *Git) LastCommitDate(ctx context.Context, dir string) (time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, gitTimeout)
	defer cancel()

	args := []string{"-C", dir, "log", "-1", "--format=%cs"}
	log := logger(g.Log)
	log.Debug(commandLine("git", args))
	res, err := g.Exec.Execute(ctx, "git", args, nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("last commit date: %w", err)
	}
	if len(res.Stderr) > 0 {
		log.Debug("git stderr", zap.String("stderr", trimOutput(res.Stderr)))
	}
	out := strings.TrimSpace(string(res.Stdout))
	if res.ExitCode != 0 || out == "" {
		return time.Time{}, fmt.Errorf("last commit date: %s is not a git repository with commits", dir)
	}
	d, err := time.Parse(time.DateOnly, out)
	if err != nil {
		return time.Time{}, fmt.Errorf("last commit date: %w", err)
	}
	return d, nil
}

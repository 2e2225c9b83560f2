package grader

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ormasoftchile/labcheck/pkg/toolchain"
)

// Location places a part inside its repository.
type Location struct {
	RepoRoot string
	RepoName string
	PartDir  string
	Part     string
}

// Resolve locates part relative to cwd. Graders run from the repository
// root; make runs from inside the part directory.
func Resolve(cwd, part string) Location {
	cwd = filepath.Clean(cwd)
	if filepath.Base(cwd) == part {
		root := filepath.Dir(cwd)
		return Location{
			RepoRoot: root,
			RepoName: filepath.Base(root),
			PartDir:  cwd,
			Part:     part,
		}
	}
	return Location{
		RepoRoot: cwd,
		RepoName: filepath.Base(cwd),
		PartDir:  filepath.Join(cwd, part),
		Part:     part,
	}
}

// DaysLate returns the whole days from due to commit, negative when the
// commit is early.
func DaysLate(due, commit time.Time) int {
	return int(math.Floor(commit.Sub(due).Hours() / 24))
}

var sourceGlobs = []string{"*.cc", "*.cpp", "*.h", "*.hpp"}

// SourceFiles lists the C++ sources and headers in dir.
func SourceFiles(dir string) ([]string, error) {
	var files []string
	for _, g := range sourceGlobs {
		m, err := filepath.Glob(filepath.Join(dir, g))
		if err != nil {
			return nil, fmt.Errorf("list sources: %w", err)
		}
		files = append(files, m...)
	}
	slices.Sort(files)
	return files, nil
}

// Unchanged reports whether a and b differ only in whitespace.
func Unchanged(a, b string) (bool, error) {
	left, err := os.ReadFile(a)
	if err != nil {
		return false, fmt.Errorf("compare with starter code: %w", err)
	}
	right, err := os.ReadFile(b)
	if err != nil {
		return false, fmt.Errorf("compare with starter code: %w", err)
	}
	diff, err := toolchain.Diff(filepath.Base(a), stripSpace(string(left)), stripSpace(string(right)))
	if err != nil {
		return false, err
	}
	return len(diff) == 0, nil
}

func stripSpace(s string) string {
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		if f := strings.Join(strings.Fields(line), " "); f != "" {
			b.WriteString(f)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// shortName renders path as "<part>/<file>".
func shortName(path string) string {
	return filepath.Join(filepath.Base(filepath.Dir(path)), filepath.Base(path))
}

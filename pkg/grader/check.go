package grader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ormasoftchile/labcheck/pkg/expect"
	"github.com/ormasoftchile/labcheck/pkg/header"
	"github.com/ormasoftchile/labcheck/pkg/lab"
	"github.com/ormasoftchile/labcheck/pkg/report"
	"github.com/ormasoftchile/labcheck/pkg/toolchain"
)

// ErrUnknownPart is returned for a part directory the lab does not define.
var ErrUnknownPart = errors.New("unknown part")

// Result is the outcome of checking one part.
type Result struct {
	Location Location
	Row      report.Row
	Facts    lab.Facts
	Outcomes []expect.Outcome
	Passed   bool
	// GradeLog is the CSV path, empty when none was written.
	GradeLog string
}

// run carries one CheckPart invocation.
type run struct {
	*Grader
	part  lab.Part
	loc   Location
	files []string
	res   *Result
	log   *zap.Logger
}

// CheckPart grades the part directory named part, resolved against cwd.
// Findings about the submission land in the result; the error is reserved
// for problems with the grading setup itself.
func (g *Grader) CheckPart(ctx context.Context, cwd, part string) (*Result, error) {
	p, ok := g.cfg.Part(part)
	if !ok {
		return nil, fmt.Errorf("check part %q: %w", part, ErrUnknownPart)
	}
	loc := Resolve(cwd, part)
	r := &run{
		Grader: g,
		part:   p,
		loc:    loc,
		res: &Result{
			Location: loc,
			Row:      report.Row{RepoName: loc.RepoName, Part: loc.Part},
		},
		log: g.log.With(zap.String("repo", loc.RepoName), zap.String("part", loc.Part)),
	}
	r.daysLate(ctx)
	if err := r.collectFiles(); err != nil {
		return nil, err
	}
	if len(r.files) == 0 {
		r.noFiles()
	} else {
		r.checkSubmission(ctx)
	}

	passed, err := g.policy.Eval(r.res.Facts)
	if err != nil {
		return nil, fmt.Errorf("check part %q: %w", part, err)
	}
	r.res.Passed = passed
	if !g.opts.NoGradeLog {
		path, err := report.WriteFile(loc.RepoRoot, r.res.Row)
		if err != nil {
			return nil, fmt.Errorf("check part %q: %w", part, err)
		}
		r.res.GradeLog = path
	}
	r.log.Info("part checked", zap.Bool("passed", passed), zap.String("grade_log", r.res.GradeLog))
	return r.res, nil
}

func (r *run) daysLate(ctx context.Context) {
	now := r.opts.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	due, err := r.cfg.Due(r.opts.Section)
	if err != nil {
		r.log.Warn("no usable due date, using today", zap.Error(err))
		due = today
	}
	commit, err := r.git.LastCommitDate(ctx, r.loc.PartDir)
	if err != nil {
		r.log.Warn("no last commit date, using today", zap.Error(err))
		commit = today
	}
	late := DaysLate(due, commit)
	r.res.Row.DaysLate = late
	r.res.Facts.DaysLate = late
}

func (r *run) collectFiles() error {
	names := r.part.GradedFiles()
	if len(names) == 0 {
		files, err := SourceFiles(r.loc.PartDir)
		if err != nil {
			return fmt.Errorf("check part %q: %w", r.loc.Part, err)
		}
		r.files = files
	} else {
		for _, n := range names {
			r.files = append(r.files, filepath.Join(r.loc.PartDir, n))
		}
	}
	r.res.Facts.Files = len(r.files)
	return nil
}

func (r *run) noFiles() {
	r.log.Error("no files", zap.String("dir", r.loc.Part))
	row := &r.res.Row
	row.Formatting, row.Linting, row.Build, row.Tests = "0", "0", "0", "0"
	row.Note("❌ No files in %s.", r.loc.Part)
}

func (r *run) checkSubmission(ctx context.Context) {
	rec := r.checkHeaders()
	r.log.Info("start " + rec.Identify())
	defer r.log.Info("end " + rec.Identify())

	if r.opts.BaseDir != "" && r.unchanged() {
		r.fail("❌ No changes made in any file.")
		return
	}
	r.checkFormat(ctx)
	r.checkLint(ctx)
	r.unitTests(ctx)
	r.buildAndRun(ctx, r.findMain())
}

func (r *run) fail(note string) {
	row := &r.res.Row
	row.Build = "0"
	row.Tests = "0/0"
	row.Note("%s", note)
}

// checkHeaders fills the header, author and partner columns from the
// first file with a valid header.
func (r *run) checkHeaders() *header.Record {
	row := &r.res.Row
	var missing []string
	var rec *header.Record
	for _, f := range r.files {
		got, err := header.ParseFile(f, header.CPPPrefix, header.WithLogger(r.log))
		if err != nil {
			missing = append(missing, shortName(f))
			continue
		}
		if rec == nil {
			rec = got
		}
	}
	if rec == nil {
		r.log.Error("no header provided in any file", zap.String("dir", r.loc.Part))
		row.Header = "0"
		row.Note("❌ No header provided in any file in %s.", r.loc.Part)
		null := header.Null()
		rec = &null
	} else {
		row.Header = "1"
		r.res.Facts.Header = true
	}
	row.Author = strings.ToLower(strings.ReplaceAll(rec.GitHub, "@", ""))
	for _, h := range rec.PartnerHandles() {
		for _, name := range strings.Fields(strings.ReplaceAll(h, "@", "")) {
			row.Partners = append(row.Partners, strings.ToLower(name))
		}
	}
	r.res.Facts.MissingHeaders = len(missing)
	if len(missing) > 0 {
		list := strings.Join(missing, ", ")
		r.log.Warn("files missing headers", zap.String("files", list))
		row.Note("❌ Files missing headers: %s", list)
	}
	return rec
}

func (r *run) unchanged() bool {
	count := 0
	for _, f := range r.files {
		starter := filepath.Join(r.opts.BaseDir, r.loc.Part, filepath.Base(f))
		same, err := Unchanged(f, starter)
		if err != nil {
			r.log.Debug("starter comparison skipped", zap.Error(err))
			continue
		}
		if same {
			count++
			r.log.Error("no changes made", zap.String("file", filepath.Base(f)))
		}
	}
	return count == len(r.files)
}

func (r *run) checkFormat(ctx context.Context) {
	row := &r.res.Row
	if !r.part.DoFormatCheck() {
		row.Formatting = report.Skipped
		return
	}
	r.res.Facts.FormatChecked = true
	count := 0
	for _, f := range r.files {
		name := filepath.Base(f)
		diff, err := r.format.Check(ctx, f)
		switch {
		case errors.Is(err, toolchain.ErrToolMissing):
			r.toolError("❌ clang-format is not executable", err)
		case err != nil:
			r.toolError(fmt.Sprintf("❌ Format check failed on %s.", name), err)
		case len(diff) > 0:
			r.res.Facts.FormatIssues++
			r.log.Warn("formatting needs improvement", zap.String("file", name))
			r.log.Debug(strings.Join(diff, "\n"))
			row.Note("❌ Formatting needs improvement in %s.", name)
		default:
			r.log.Info("formatting passed", zap.String("file", name))
			count++
		}
	}
	row.Formatting = report.Ratio(count, len(r.files))
}

func (r *run) checkLint(ctx context.Context) {
	row := &r.res.Row
	if !r.part.DoLintCheck() {
		row.Linting = report.Skipped
		return
	}
	r.res.Facts.LintChecked = true
	opts := r.cfg.TidyFor(r.part)
	count := 0
	for _, f := range r.files {
		name := filepath.Base(f)
		warnings, err := r.lint.Check(ctx, f, opts)
		switch {
		case errors.Is(err, toolchain.ErrToolMissing):
			r.toolError("❌ clang-tidy is not executable", err)
		case err != nil:
			r.toolError(fmt.Sprintf("❌ Lint check failed on %s.", name), err)
		case len(warnings) > 0:
			r.res.Facts.LintIssues++
			r.log.Warn("linter found improvements", zap.String("file", name))
			r.log.Debug(strings.Join(warnings, "\n"))
			row.Note("❌ Linter found improvements in %s.", name)
		default:
			r.log.Info("linting passed", zap.String("file", name))
			count++
		}
	}
	row.Linting = report.Ratio(count, len(r.files))
}

func (r *run) toolError(note string, err error) {
	r.res.Facts.ToolErrors++
	r.log.Warn(note, zap.Error(err))
	r.res.Row.Note("%s", note)
}

// unitTests runs the unittest target and reads the report it leaves in the
// part directory or, failing that, the working directory.
func (r *run) unitTests(ctx context.Context) {
	row := &r.res.Row
	if !r.part.UnitTests {
		row.UnitTests = report.Skipped
		row.UnitTestNotes = []string{"Unit tests disabled."}
		return
	}
	r.log.Info("attempting unit tests")
	if err := r.make.UnitTest(ctx, r.loc.PartDir, UnitTestOutput); err != nil {
		r.log.Warn("unit test target failed", zap.Error(err))
	}
	path := filepath.Join(r.loc.PartDir, UnitTestOutput)
	if _, err := os.Stat(path); err != nil {
		path = UnitTestOutput
	}
	rep, err := toolchain.ReadGTestReport(path)
	if err != nil {
		r.log.Warn("no unit test output", zap.Error(err))
		return
	}
	r.res.Facts.UnitTestsRun = true
	r.res.Facts.UnitTestsPassed = rep.Passed()
	r.res.Facts.UnitTestsTotal = rep.Tests
	row.UnitTests = rep.Summary()
	row.UnitTestNotes = rep.Notes()
	if rep.Failures > 0 {
		r.log.Error("one or more unit tests failed", zap.String("unit_tests", row.UnitTests))
	} else {
		r.log.Info("passed all unit tests")
	}
}

// findMain returns the first file defining main.
func (r *run) findMain() string {
	row := &r.res.Row
	var mainFile string
	for _, f := range r.files {
		ok, err := toolchain.HasMainFunction(f)
		if err != nil || !ok {
			continue
		}
		r.res.Facts.MainFunctions++
		name := filepath.Base(f)
		if mainFile == "" {
			mainFile = f
			r.log.Info("main function found", zap.String("file", name))
			row.Note("Main function found in %s", name)
		} else {
			r.log.Warn("extra main function found", zap.String("file", name))
			row.Note("❌ Extra main function found in %s", name)
		}
	}
	if mainFile == "" {
		list := strings.Join(r.files, ", ")
		r.log.Warn("no main function found", zap.String("files", list))
		row.Note("❌ No main function found in files: %s", list)
	}
	return mainFile
}

func (r *run) buildAndRun(ctx context.Context, mainFile string) {
	row := &r.res.Row
	if mainFile == "" {
		r.fail("❌ Build failed")
		return
	}
	if err := r.make.Build(ctx, r.loc.PartDir); err != nil {
		r.log.Error("build failed", zap.Error(err))
		r.fail("❌ Build failed")
		return
	}
	r.log.Info("build passed")
	row.Build = "1"
	r.res.Facts.Build = true

	cases := r.cases[r.part.Dir]
	exe := filepath.Join(filepath.Dir(mainFile), r.part.Target)
	outcomes := r.checker.RunCases(ctx, exe, cases)
	r.res.Outcomes = outcomes
	passed := expect.CountPassed(outcomes)
	r.res.Facts.TestsPassed = passed
	r.res.Facts.TestsTotal = len(outcomes)
	row.Tests = expect.Tally(outcomes)
	if passed == len(outcomes) {
		r.log.Info("all test runs passed")
	} else {
		r.log.Error("one or more runs failed", zap.String("tests", row.Tests))
		row.Note("❌ One or more test runs failed")
	}
}

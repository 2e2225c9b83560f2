package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ormasoftchile/labcheck/pkg/grader"
	"github.com/ormasoftchile/labcheck/pkg/report"
)

var checkCmd = &cobra.Command{
	Use:   "check <part>",
	Short: "Grade one part and write its grade log",
	Long: `Grade one part of a lab: headers, formatting, linting, unit tests, build
and program runs. Run it from the repository root or from inside the part
directory. The grade log is written to .<repo>_<part>_gradelog.csv in the
repository root. Exits 1 when the part does not pass.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func newGrader() (*grader.Grader, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return grader.New(grader.Options{
		Config:     cfg,
		Log:        logger,
		Timeout:    caseTimeout(),
		BaseDir:    settings.GetString("base-dir"),
		Section:    settings.GetString("section"),
		NoGradeLog: settings.GetBool("no-gradelog"),
	})
}

func runCheck(cmd *cobra.Command, args []string) error {
	g, err := newGrader()
	if err != nil {
		return err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := g.CheckPart(ctx, cwd, args[0])
	if err != nil {
		return err
	}
	printResult(res)
	if !res.Passed {
		return errFailed
	}
	return nil
}

func printResult(res *grader.Result) {
	if settings.GetBool("markdown") {
		md := report.Markdown(res.Row, res.Outcomes, res.Passed)
		fmt.Println(report.RenderMarkdown(md, 100))
		return
	}
	fmt.Println(report.Summary(res.Row, res.Passed))
	if res.GradeLog != "" {
		logger.Debug("grade log written", zap.String("file", res.GradeLog))
	}
}

var reportCmd = &cobra.Command{
	Use:   "report [repo-dir]",
	Short: "Summarize the grade logs of a repository",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		rows, err := report.ReadDir(dir)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return fmt.Errorf("no grade logs in %s", dir)
		}
		fmt.Print(report.Table(rows))
		return nil
	},
}

func init() {
	f := checkCmd.Flags()
	f.String("base-dir", "", "Starter code directory; a part identical to it fails")
	f.String("section", "", "Section whose due date applies (e.g. mon, tues, wed)")
	f.Bool("no-gradelog", false, "Do not write the CSV grade log")
	f.Bool("markdown", false, "Print a markdown report instead of the summary panel")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(reportCmd)
}

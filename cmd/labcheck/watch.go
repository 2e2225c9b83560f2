package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ormasoftchile/labcheck/pkg/grader"
	"github.com/ormasoftchile/labcheck/pkg/report"
	"github.com/ormasoftchile/labcheck/pkg/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <part>",
	Short: "Re-grade a part whenever its sources change",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	part := args[0]
	g, err := newGrader()
	if err != nil {
		return err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	loc := grader.Resolve(cwd, part)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	run := 0
	regrade := func(ctx context.Context, changed []string) {
		run++
		ts := time.Now().Format("15:04:05")
		for _, c := range changed {
			logger.Debug("changed", zap.String("file", filepath.Base(c)))
		}
		res, err := g.CheckPart(ctx, cwd, part)
		if err != nil {
			fmt.Printf("%s  ! %v\n", ts, err)
			return
		}
		glyph := report.GlyphPassed
		if !res.Passed {
			glyph = report.GlyphFailed
		}
		fmt.Printf("%s  %s run %d  header %s  format %s  lint %s  build %s  tests %s\n",
			ts, glyph, run, res.Row.Header, res.Row.Formatting, res.Row.Linting, res.Row.Build, res.Row.Tests)
	}

	w, err := watch.New(regrade,
		watch.WithDebounce(settings.GetDuration("debounce")),
		watch.WithLogger(logger))
	if err != nil {
		return err
	}
	if err := w.Add(loc.PartDir); err != nil {
		return err
	}
	fmt.Printf("Watching %s (Ctrl-C to stop)\n", loc.PartDir)
	regrade(ctx, nil)
	return w.Run(ctx)
}

func init() {
	f := watchCmd.Flags()
	f.Duration("debounce", watch.DefaultDebounce, "Quiet period before re-grading")
	f.String("base-dir", "", "Starter code directory; a part identical to it fails")
	f.String("section", "", "Section whose due date applies")
	f.Bool("no-gradelog", false, "Do not write the CSV grade log")

	rootCmd.AddCommand(watchCmd)
}

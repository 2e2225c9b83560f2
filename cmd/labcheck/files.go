package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ormasoftchile/labcheck/pkg/grader"
	"github.com/ormasoftchile/labcheck/pkg/header"
	"github.com/ormasoftchile/labcheck/pkg/lab"
	"github.com/ormasoftchile/labcheck/pkg/report"
	"github.com/ormasoftchile/labcheck/pkg/toolchain"
)

const (
	styleGuideURL = "https://google.github.io/styleguide/cppguide.html"
	headerDocURL  = "https://docs.google.com/document/d/17WkDlxO92zpb26pYM1NIACPcMWtCOlKO7WCrWC6YxRo/edit?usp=sharing"
)

// partFiles is one part's graded files.
type partFiles struct {
	part  lab.Part
	dir   string
	files []string
}

// selectParts resolves "all" or one part directory name against the
// working directory, which may be the repository root or a part.
func selectParts(cfg *lab.Config, arg string) ([]partFiles, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root := cwd
	if _, ok := cfg.Part(filepath.Base(cwd)); ok {
		root = filepath.Dir(cwd)
	}
	var parts []lab.Part
	if arg == "all" {
		parts = cfg.Parts
	} else {
		p, ok := cfg.Part(arg)
		if !ok {
			return nil, fmt.Errorf("%w: %s", grader.ErrUnknownPart, arg)
		}
		parts = []lab.Part{p}
	}
	var out []partFiles
	for _, p := range parts {
		pf := partFiles{part: p, dir: filepath.Join(root, p.Dir)}
		names := p.GradedFiles()
		if len(names) == 0 {
			found, err := grader.SourceFiles(pf.dir)
			if err != nil {
				return nil, err
			}
			pf.files = found
		}
		for _, n := range names {
			pf.files = append(pf.files, filepath.Join(pf.dir, n))
		}
		out = append(out, pf)
	}
	return out, nil
}

func headerPrefix(file string) string {
	switch filepath.Ext(file) {
	case ".py", ".sh":
		return header.PythonPrefix
	default:
		return header.CPPPrefix
	}
}

var headerCmd = &cobra.Command{
	Use:   "header <part|all>",
	Short: "Check the authorship header of every graded file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		parts, err := selectParts(cfg, args[0])
		if err != nil {
			return err
		}
		failed := false
		for _, pf := range parts {
			for _, f := range pf.files {
				rec, err := header.ParseFile(f, headerPrefix(f), header.WithLogger(logger))
				if err != nil {
					failed = true
					fmt.Printf("%s %s: %v\n", report.GlyphFailed, relName(f), err)
					var pe *header.ParseError
					if errors.As(err, &pe) && pe.Hint != "" {
						fmt.Printf("    %s\n", pe.Hint)
					}
					continue
				}
				fmt.Printf("%s %s: %s <%s> %s", report.GlyphPassed, relName(f), rec.Name, rec.Email, rec.GitHub)
				if handles := rec.PartnerHandles(); len(handles) > 0 {
					fmt.Printf(" with %s", strings.Join(handles, ", "))
				}
				fmt.Println()
			}
		}
		if failed {
			fmt.Printf("Header format is described at %s\n", headerDocURL)
			return errFailed
		}
		return nil
	},
}

var formatCmd = &cobra.Command{
	Use:   "format <part|all>",
	Short: "Compare graded files with clang-format's Google style",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		parts, err := selectParts(cfg, args[0])
		if err != nil {
			return err
		}
		f := &toolchain.Formatter{Exec: toolchain.RealExecutor{}, Log: logger}
		return eachFile(cmd.Context(), parts, func(ctx context.Context, _ partFiles, file string) ([]string, error) {
			return f.Check(ctx, file)
		}, "Formatting looks good", "Formatting needs improvement")
	},
}

var lintCmd = &cobra.Command{
	Use:   "lint <part|all>",
	Short: "Run clang-tidy over graded files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		parts, err := selectParts(cfg, args[0])
		if err != nil {
			return err
		}
		l := &toolchain.Linter{Exec: toolchain.RealExecutor{}, Log: logger}
		return eachFile(cmd.Context(), parts, func(ctx context.Context, pf partFiles, file string) ([]string, error) {
			return l.Check(ctx, file, cfg.TidyFor(pf.part))
		}, "Linting passed", "Linter found improvements")
	},
}

type fileCheck func(ctx context.Context, pf partFiles, file string) ([]string, error)

// eachFile runs check over every existing file, printing findings. Missing
// files are skipped.
func eachFile(ctx context.Context, parts []partFiles, check fileCheck, okMsg, badMsg string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	failed := false
	for _, pf := range parts {
		for _, file := range pf.files {
			if _, err := os.Stat(file); err != nil {
				logger.Debug("file does not exist, continuing", zap.String("file", file))
				continue
			}
			findings, err := check(ctx, pf, file)
			if err != nil {
				failed = true
				fmt.Printf("%s %s: %v\n", report.GlyphFailed, relName(file), err)
				if errors.Is(err, toolchain.ErrToolMissing) {
					fmt.Println("    Install the lab toolchain (clang-format, clang-tidy) and try again.")
				}
				continue
			}
			if len(findings) > 0 {
				failed = true
				fmt.Printf("%s %s: %s\n", report.GlyphFailed, relName(file), badMsg)
				for _, line := range findings {
					fmt.Println("    " + line)
				}
				continue
			}
			fmt.Printf("%s %s: %s\n", report.GlyphPassed, relName(file), okMsg)
		}
	}
	if failed {
		fmt.Printf("Use the output above as a guide. The Google C++ style is at %s\n", styleGuideURL)
		return errFailed
	}
	return nil
}

func relName(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(cwd, path); err == nil {
		return rel
	}
	return path
}

func init() {
	rootCmd.AddCommand(headerCmd)
	rootCmd.AddCommand(formatCmd)
	rootCmd.AddCommand(lintCmd)
}

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ormasoftchile/labcheck/pkg/expect"
	"github.com/ormasoftchile/labcheck/pkg/lab"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// errFailed makes the process exit 1 after a command already reported why.
var errFailed = errors.New("check failed")

var (
	settings = viper.New()
	logger   = zap.NewNop()
)

// DefaultConfigName is looked up in the working directory and its parent
// when --config is not given.
const DefaultConfigName = "lab.yaml"

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "labcheck",
	Short:         "Grade C++ lab submissions",
	Long:          "labcheck checks student lab parts: headers, formatting, linting, unit tests, build and interactive program runs.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := settings.BindPFlags(cmd.Flags()); err != nil {
			return fmt.Errorf("bind flags: %w", err)
		}
		l, err := newLogger(settings.GetBool("verbose"), settings.GetBool("log-json"))
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func newLogger(verbose, jsonOutput bool) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	if jsonOutput {
		config = zap.NewProductionConfig()
	}
	config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	config.DisableStacktrace = !verbose
	return config.Build()
}

// loadConfig returns the lab configuration named by --config, a lab.yaml
// next to or above the working directory, or the built-in default.
func loadConfig() (*lab.Config, error) {
	path := settings.GetString("config")
	if path == "" {
		path = findConfig()
	}
	if path == "" {
		logger.Debug("using built-in lab configuration")
		return lab.Default(), nil
	}
	c, errs := lab.ValidateFile(path)
	for _, e := range errs {
		if e.Severity == "warning" {
			logger.Warn(e.Message, zap.String("phase", e.Phase), zap.String("path", e.Path))
		}
	}
	if lab.HasErrors(errs) {
		printValidationErrors(path, errs)
		return nil, errFailed
	}
	logger.Debug("loaded lab configuration", zap.String("file", path))
	return c, nil
}

func findConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	for _, dir := range []string{cwd, filepath.Dir(cwd)} {
		p := filepath.Join(dir, DefaultConfigName)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func caseTimeout() time.Duration {
	d := settings.GetDuration("timeout")
	if d <= 0 {
		return expect.DefaultTimeout
	}
	return d
}

func printValidationErrors(path string, errs []*lab.ValidationError) {
	var n int
	for _, e := range errs {
		if e.Severity != "warning" {
			n++
		}
	}
	fmt.Fprintf(os.Stderr, "%s: validation failed: %d error(s)\n\n", path, n)
	i := 0
	for _, e := range errs {
		if e.Severity == "warning" {
			continue
		}
		i++
		fmt.Fprintf(os.Stderr, "  %d. [%s] %s\n", i, e.Phase, e.Message)
		if e.Path != "" {
			fmt.Fprintf(os.Stderr, "     at: %s\n", e.Path)
		}
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("labcheck %s (%s)\n", version, commit)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Lab configuration file (default: lab.yaml in . or .., else built in)")
	pf.Duration("timeout", expect.DefaultTimeout, "Per-wait timeout for program runs")
	pf.BoolP("verbose", "v", false, "Debug logging")
	pf.Bool("log-json", false, "Log as JSON")

	settings.SetEnvPrefix("LABCHECK")
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()

	rootCmd.AddCommand(versionCmd)
}

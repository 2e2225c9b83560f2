package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/labcheck/pkg/lab"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the lab configuration",
}

var configGetCmd = &cobra.Command{
	Use:   "get <key> [key...]",
	Short: "Print a configuration value",
	Long: `Print a configuration value for shell scripts and makefiles.

Keys: gradedsrc, makefile_name, num_parts, any top-level key, or
"parts <n> <key>" with a zero-based part index.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		v, err := cfg.Get(args...)
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [lab.yaml]",
	Short: "Validate a lab configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := settings.GetString("config")
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			path = findConfig()
		}
		if path == "" {
			return fmt.Errorf("no lab configuration: pass a file or create %s", DefaultConfigName)
		}
		_, errs := lab.ValidateFile(path)
		for _, e := range errs {
			if e.Severity == "warning" {
				fmt.Fprintf(os.Stderr, "  ⚠ [%s] %s\n", e.Phase, e.Message)
				if e.Path != "" {
					fmt.Fprintf(os.Stderr, "    at: %s\n", e.Path)
				}
			}
		}
		if lab.HasErrors(errs) {
			printValidationErrors(path, errs)
			return errFailed
		}
		fmt.Printf("%s is valid\n", path)
		return nil
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the lab configuration JSON Schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := lab.GenerateJSONSchema()
		if err != nil {
			return err
		}
		out := settings.GetString("out")
		if out == "" {
			_, err = os.Stdout.Write(append(data, '\n'))
			return err
		}
		if err := os.WriteFile(out, append(data, '\n'), 0644); err != nil {
			return fmt.Errorf("write schema: %w", err)
		}
		fmt.Printf("Wrote %s (%d bytes)\n", out, len(data)+1)
		return nil
	},
}

var makefileCmd = &cobra.Command{
	Use:   "makefile [repo-dir]",
	Short: "Generate the repository and part makefiles",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		written, err := lab.WriteMakefiles(root, cfg)
		for _, p := range written {
			fmt.Printf("Wrote %s\n", p)
		}
		return err
	},
}

func init() {
	schemaCmd.Flags().String("out", "", "Write the schema to this file instead of stdout")

	configCmd.AddCommand(configGetCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(makefileCmd)
}

// Package cli provides the command-line interface for the nanoc harness.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nanopass-labs/nanoc/internal/cli/commands"
	"github.com/nanopass-labs/nanoc/internal/cli/config"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command over the registered
// compiler pipelines.
func NewRootCmd(pipelines commands.Pipelines) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nanoc",
		Short: "nanoc - incremental compiler test harness",
		Long: `nanoc drives multi-pass compiler pipelines over test programs: it
differentially checks every pass against its reference interpreter,
compiles tests to assembly, builds them against the runtime object, and
verifies the sentinel exit code.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			logger := config.NewLogger(cfg)
			cmd.SetContext(commands.WithRuntime(cmd.Context(), cfg, logger))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags; koanf merges changed flags over config/env.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./nanoc.yaml)")
	rootCmd.PersistentFlags().String("tests-dir", "", "Directory holding test artifacts")
	rootCmd.PersistentFlags().String("runtime-object", "", "Runtime object linked into every test")
	rootCmd.PersistentFlags().String("cc", "", "System compiler used to assemble and link")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging, including per-pass tree dumps")

	rootCmd.AddCommand(commands.NewCompileCommand(pipelines))
	rootCmd.AddCommand(commands.NewTestCommand(pipelines))
	rootCmd.AddCommand(commands.NewCheckCommand(pipelines))
	rootCmd.AddCommand(commands.NewListCommand())
	rootCmd.AddCommand(commands.NewReplCommand(pipelines))
	rootCmd.AddCommand(commands.NewVersionCommand(Version))

	return rootCmd
}

// Execute runs the root command over the registered pipelines.
func Execute(pipelines commands.Pipelines) error {
	rootCmd := NewRootCmd(pipelines)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

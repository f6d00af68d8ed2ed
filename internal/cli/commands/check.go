package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nanopass-labs/nanoc/internal/pipeline"
	"github.com/nanopass-labs/nanoc/pkg/core"
)

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Compiler string
	Family   string
	Indices  string
	All      bool
}

// NewCheckCommand creates the check command: differential interpreter
// runs with no native build.
func NewCheckCommand(pipelines Pipelines) *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Differentially check a family against the reference interpreters",
		Long: `Apply the pipeline to each test of a family and run every declared
reference interpreter, requiring each pass's result to match the previous
one. The first divergence aborts the run with the offending pass named.`,
		Example: `  nanoc check --family var --indices 1,2,3
  nanoc check --family var --all`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger := getRuntime(cmd)
			name, passes, err := pipelines.Select(opts.Compiler)
			if err != nil {
				return err
			}
			indices, err := resolveIndices(cfg.TestsDir, opts.Family, opts.Indices, opts.All)
			if err != nil {
				return err
			}

			runner := pipeline.NewRunner(logger, cfg.TestsDir)
			for _, ref := range core.ExpandFamily(opts.Family, indices) {
				result, err := runner.InterpTests(cmd.Context(), name, passes, ref)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", ref.Name(), result)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Compiler, "compiler", "c", "", "Registered compiler to use")
	cmd.Flags().StringVarP(&opts.Family, "family", "f", "", "Test family name")
	cmd.Flags().StringVarP(&opts.Indices, "indices", "i", "", "Comma-separated test indices")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Discover and check every test of the family")
	_ = cmd.MarkFlagRequired("family")
	return cmd
}

package commands

import (
	"github.com/spf13/cobra"
)

// TestOptions holds options for the test command.
type TestOptions struct {
	Compiler string
	Family   string
	Indices  string
	All      bool
}

// NewTestCommand creates the test command: compile, assemble, link, and
// run every test of a family, requiring the sentinel exit code.
func NewTestCommand(pipelines Pipelines) *cobra.Command {
	opts := &TestOptions{}

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Run end-to-end tests for a family",
		Long: `Compile each test of a family to assembly, assemble and link it with
the runtime object, run the binary, and require exit code 42. The batch
is fail-fast: the first toolchain failure or wrong exit code stops the run.`,
		Example: `  # Run tests/var_1.rkt, tests/var_2.rkt
  nanoc test --family var --indices 1,2

  # Run every var test found under the tests directory
  nanoc test --family var --all`,
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
			d := newDriver(cmd, cfg, logger)
			return d.RunTests(cmd.Context(), name, passes, opts.Family, indices)
		},
	}

	cmd.Flags().StringVarP(&opts.Compiler, "compiler", "c", "", "Registered compiler to use")
	cmd.Flags().StringVarP(&opts.Family, "family", "f", "", "Test family name")
	cmd.Flags().StringVarP(&opts.Indices, "indices", "i", "", "Comma-separated test indices")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Discover and run every test of the family")
	_ = cmd.MarkFlagRequired("family")
	return cmd
}

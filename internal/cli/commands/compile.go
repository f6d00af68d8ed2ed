package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCompileCommand creates the compile command: the single-file entry
// point from a source program to its .s neighbor.
func NewCompileCommand(pipelines Pipelines) *cobra.Command {
	var compiler string

	cmd := &cobra.Command{
		Use:   "compile <source.rkt>",
		Short: "Compile one source file to assembly",
		Long: `Run the pipeline's transforms over a single source file and write
the generated assembly next to it, with the extension replaced by .s.
No reference interpreters run; use 'nanoc check' for differential checking.`,
		Example: `  # Compile tests/var_1.rkt to tests/var_1.s
  nanoc compile tests/var_1.rkt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := getRuntime(cmd)
			name, passes, err := pipelines.Select(compiler)
			if err != nil {
				return err
			}
			d := newDriver(cmd, cfg, logger)
			asmPath, err := d.CompileFile(name, passes, args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), asmPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&compiler, "compiler", "c", "", "Registered compiler to use")
	return cmd
}

package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/nanopass-labs/nanoc/pkg/core"
	"github.com/nanopass-labs/nanoc/pkg/sexp"
)

// NewReplCommand creates the repl command: a line-oriented loop that
// feeds typed programs through the pipeline and prints the evaluated
// result (or the final tree if no pass declares an interpreter).
func NewReplCommand(pipelines Pipelines) *cobra.Command {
	var compiler string

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactively evaluate programs through the pipeline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, logger := getRuntime(cmd)
			name, passes, err := pipelines.Select(compiler)
			if err != nil {
				return err
			}

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "nanoc> ",
				InterruptPrompt: "^C",
				EOFPrompt:       ".quit",
			})
			if err != nil {
				return fmt.Errorf("failed to initialize repl: %w", err)
			}
			defer func() { _ = rl.Close() }()

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "nanoc repl (compiler: %s), .quit to exit\n", name)
			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					continue
				}
				if errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return err
				}
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				if line == ".quit" || line == ".exit" {
					return nil
				}

				result, err := evalLine(passes, line)
				if err != nil {
					_, _ = fmt.Fprintf(out, "error: %v\n", err)
					logger.Debug("repl evaluation failed", "input", line, "error", err)
					continue
				}
				_, _ = fmt.Fprintln(out, result)
			}
		},
	}

	cmd.Flags().StringVarP(&compiler, "compiler", "c", "", "Registered compiler to use")
	return cmd
}

// evalLine applies transforms up to the last interpreter-bearing pass and
// evaluates there; with no interpreters it returns the final tree.
func evalLine(passes []core.Pass, line string) (*sexp.Value, error) {
	prog, err := sexp.Parse(line)
	if err != nil {
		return nil, err
	}

	lastInterp := -1
	for i, pass := range passes {
		if pass.Interp != nil {
			lastInterp = i
		}
	}

	for i, pass := range passes {
		if lastInterp >= 0 && i > lastInterp {
			break
		}
		prog, err = pass.Transform(prog)
		if err != nil {
			return nil, err
		}
		if i == lastInterp {
			return pass.Interp(prog, nil)
		}
	}
	return prog, nil
}

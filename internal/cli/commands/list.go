package commands

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewListCommand creates the list command, showing the test artifacts
// found under the tests directory.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List discovered test artifacts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _ := getRuntime(cmd)
			matches, err := filepath.Glob(filepath.Join(cfg.TestsDir, "*.rkt"))
			if err != nil {
				return err
			}
			sort.Strings(matches)

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Test", "Input", "Assembly"})
			for _, src := range matches {
				name := strings.TrimSuffix(filepath.Base(src), ".rkt")
				base := strings.TrimSuffix(src, ".rkt")
				t.AppendRow(table.Row{name, yesNo(base + ".in"), yesNo(base + ".s")})
			}
			t.Render()
			return nil
		},
	}
}

func yesNo(path string) string {
	if _, err := os.Stat(path); err == nil {
		return "yes"
	}
	return "-"
}

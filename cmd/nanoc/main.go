// Package main provides the nanoc CLI, registering the compilers the
// binary ships with.
package main

import (
	"os"

	"github.com/nanopass-labs/nanoc/internal/cli"
	"github.com/nanopass-labs/nanoc/internal/cli/commands"
	"github.com/nanopass-labs/nanoc/internal/langs/lvar"
	"github.com/nanopass-labs/nanoc/pkg/core"
)

func main() {
	pipelines := commands.Pipelines{
		Default: "lvar",
		Compilers: map[string][]core.Pass{
			"lvar": lvar.Passes(),
		},
	}
	if err := cli.Execute(pipelines); err != nil {
		os.Exit(1)
	}
}

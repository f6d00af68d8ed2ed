// Package commands implements the nanoc subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nanopass-labs/nanoc/internal/cli/config"
	"github.com/nanopass-labs/nanoc/internal/driver"
	"github.com/nanopass-labs/nanoc/pkg/core"
)

// Pipelines maps a compiler name to its ordered pass list. The binary
// registers its compilers at startup; commands select one by name.
type Pipelines struct {
	Default   string
	Compilers map[string][]core.Pass
}

// Select resolves a --compiler flag value, empty meaning the default.
func (p Pipelines) Select(name string) (string, []core.Pass, error) {
	if name == "" {
		name = p.Default
	}
	passes, ok := p.Compilers[name]
	if !ok {
		return "", nil, fmt.Errorf("unknown compiler %q", name)
	}
	return name, passes, nil
}

// runtimeKey carries the loaded config and logger in the command context.
type runtimeKey struct{}

type commandRuntime struct {
	cfg    *config.Config
	logger *slog.Logger
}

// WithRuntime stores the loaded config and logger for subcommands.
func WithRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, runtimeKey{}, &commandRuntime{cfg: cfg, logger: logger})
}

// getRuntime retrieves config and logger from the command context,
// falling back to defaults so commands stay testable in isolation.
func getRuntime(cmd *cobra.Command) (*config.Config, *slog.Logger) {
	if rt, ok := cmd.Context().Value(runtimeKey{}).(*commandRuntime); ok {
		return rt.cfg, rt.logger
	}
	cfg := &config.Config{
		TestsDir:      config.DefaultTestsDir,
		RuntimeObject: config.DefaultRuntimeObject,
		CC:            config.DefaultCC,
	}
	return cfg, config.NewLogger(cfg)
}

// newDriver wires the production backend from config.
func newDriver(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) *driver.Driver {
	backend := &driver.CCBackend{CC: cfg.CC}
	return driver.New(logger, backend, cfg.TestsDir, cfg.RuntimeObject, cmd.OutOrStdout())
}

// Package config loads the harness configuration: defaults, then
// nanoc.yaml, then NANOC_* environment variables, then command-line
// flags, later sources overriding earlier ones.
package config

import (
	"log/slog"
	"os"
)

// Config holds all CLI configuration options.
type Config struct {
	// TestsDir holds the test artifacts: <name>.rkt sources, optional
	// <name>.in inputs, generated <name>.s assembly.
	TestsDir string `koanf:"tests_dir"`
	// RuntimeObject is the fixed runtime object linked into every test.
	RuntimeObject string `koanf:"runtime_object"`
	// CC is the system compiler used to assemble and link.
	CC string `koanf:"cc"`
	// Debug enables the debug log stream, including per-pass tree dumps.
	Debug bool `koanf:"debug"`
}

// Default configuration values.
const (
	DefaultTestsDir      = "tests"
	DefaultRuntimeObject = "runtime/runtime.o"
	DefaultCC            = "cc"
)

// NewLogger builds the process logger from config. Debug gates the
// diagnostic stream; everything else logs at info.
func NewLogger(cfg *Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

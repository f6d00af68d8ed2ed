// Package pipeline applies an ordered list of compiler passes to a test
// program and differentially checks every pass that declares a reference
// interpreter against the previously validated result. The first
// divergence aborts the whole run; silently continuing would invalidate
// every later check.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/nanopass-labs/nanoc/pkg/core"
	"github.com/nanopass-labs/nanoc/pkg/sexp"
)

// Runner executes pass pipelines over the test artifacts in testsDir.
type Runner struct {
	logger   *slog.Logger
	testsDir string
}

// NewRunner returns a runner writing diagnostics through logger.
func NewRunner(logger *slog.Logger, testsDir string) *Runner {
	return &Runner{logger: logger, testsDir: testsDir}
}

// InterpTests loads the test's source program and applies passes left to
// right. After each pass with a declared interpreter, the interpreter runs
// against the new representation (stdin redirected from the test's .in
// file when one exists) and its result must deeply equal the most recent
// validated result; a mismatch aborts with full diagnostic context.
// Returns the last interpreted result, or nil if no pass declared an
// interpreter.
func (r *Runner) InterpTests(ctx context.Context, compiler string, passes []core.Pass, ref core.TestRef) (*sexp.Value, error) {
	prog, err := r.loadSource(ref)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("loaded test source", "compiler", compiler, "test", ref.Name(), "tree", prog)

	var validated *sexp.Value
	haveResult := false
	for _, pass := range passes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		prog, err = applyPass(r.logger, compiler, pass, prog)
		if err != nil {
			return nil, err
		}
		if pass.Interp == nil {
			continue
		}

		result, err := r.runInterp(pass, prog, ref)
		if err != nil {
			return nil, fmt.Errorf("%s: pass %s: interpreter: %w", compiler, pass.Name, err)
		}
		if haveResult && !sexp.Equal(validated, result) {
			r.logger.Error("pass result mismatch",
				"compiler", compiler,
				"pass", pass.Name,
				"want", validated,
				"got", result,
				"tree", prog)
			return nil, &core.MismatchError{
				Compiler: compiler,
				Pass:     pass.Name,
				Want:     validated,
				Got:      result,
				Tree:     prog,
			}
		}
		validated = result
		haveResult = true
		r.logger.Debug("interpreter agreed", "compiler", compiler, "pass", pass.Name, "result", result)
	}
	return validated, nil
}

// ApplyTransforms runs the transforms only, with no interpreter execution,
// and returns the final representation. The build driver uses this to
// produce assembly text.
func (r *Runner) ApplyTransforms(compiler string, passes []core.Pass, prog *sexp.Value) (*sexp.Value, error) {
	var err error
	for _, pass := range passes {
		prog, err = applyPass(r.logger, compiler, pass, prog)
		if err != nil {
			return nil, err
		}
	}
	return prog, nil
}

func applyPass(logger *slog.Logger, compiler string, pass core.Pass, prog *sexp.Value) (*sexp.Value, error) {
	next, err := pass.Transform(prog)
	if err != nil {
		return nil, fmt.Errorf("%s: pass %s: %w", compiler, pass.Name, err)
	}
	logger.Debug("pass output", "compiler", compiler, "pass", pass.Name, "tree", next)
	return next, nil
}

// LoadProgram reads and parses an arbitrary source file.
func LoadProgram(path string) (*sexp.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source %s: %w", path, err)
	}
	prog, err := sexp.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return prog, nil
}

func (r *Runner) loadSource(ref core.TestRef) (*sexp.Value, error) {
	return LoadProgram(ref.SourcePath(r.testsDir))
}

// runInterp executes a pass's interpreter in its own scope so the input
// file, when present, is closed on every exit path.
func (r *Runner) runInterp(pass core.Pass, prog *sexp.Value, ref core.TestRef) (*sexp.Value, error) {
	stdin, err := OpenInput(ref.InputPath(r.testsDir))
	if err != nil {
		return nil, err
	}
	if stdin != nil {
		defer func() { _ = stdin.Close() }()
	}
	var reader io.Reader
	if stdin != nil {
		reader = stdin
	}
	return pass.Interp(prog, reader)
}

// OpenInput opens a test's input file. A missing file is not an error; it
// simply means the test has no redirected stdin.
func OpenInput(path string) (*os.File, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening input %s: %w", path, err)
	}
	return f, nil
}

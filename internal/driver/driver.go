// Package driver turns pass pipelines into build-and-run tests: it
// compiles test programs to assembly, hands them to the native build
// backend, executes the result, and checks the exit code against the
// success sentinel. The whole batch is fail-fast; the first bad test
// stops the run.
package driver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/nanopass-labs/nanoc/internal/pipeline"
	"github.com/nanopass-labs/nanoc/pkg/core"
	"github.com/nanopass-labs/nanoc/pkg/sexp"
)

// Driver compiles and runs test batches.
type Driver struct {
	logger     *slog.Logger
	runner     *pipeline.Runner
	backend    Backend
	testsDir   string
	runtimeObj string
	out        io.Writer
}

// New returns a driver. out receives the human-readable batch summary.
func New(logger *slog.Logger, backend Backend, testsDir, runtimeObj string, out io.Writer) *Driver {
	return &Driver{
		logger:     logger,
		runner:     pipeline.NewRunner(logger, testsDir),
		backend:    backend,
		testsDir:   testsDir,
		runtimeObj: runtimeObj,
		out:        out,
	}
}

// CompileFile runs the pipeline's transforms only — no interpreter
// execution — over srcPath and writes the resulting assembly text, plus a
// trailing newline, to the source name with its extension replaced by .s.
// A final value that is not flat text is fatal.
func (d *Driver) CompileFile(compiler string, passes []core.Pass, srcPath string) (string, error) {
	prog, err := pipeline.LoadProgram(srcPath)
	if err != nil {
		return "", err
	}
	final, err := d.runner.ApplyTransforms(compiler, passes, prog)
	if err != nil {
		return "", err
	}
	if final == nil || final.Kind != sexp.KindText {
		lastPass := ""
		if len(passes) > 0 {
			lastPass = passes[len(passes)-1].Name
		}
		return "", &core.NonTextError{Pass: lastPass, Got: final}
	}

	asmPath := strings.TrimSuffix(srcPath, filepath.Ext(srcPath)) + ".s"
	if err := writeAsm(asmPath, final.Text); err != nil {
		return "", err
	}
	d.logger.Debug("wrote assembly", "compiler", compiler, "source", srcPath, "asm", asmPath)
	return asmPath, nil
}

// writeAsm writes the assembly text in its own scope so the file handle is
// released on every path.
func writeAsm(path, text string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteString(text + "\n"); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// RunTests compiles and executes every test of a family end to end, in
// index order. A toolchain failure or a non-sentinel exit code aborts the
// batch immediately with no partial report.
func (d *Driver) RunTests(ctx context.Context, compiler string, passes []core.Pass, family string, indices []int) error {
	runID := uuid.NewString()
	refs := core.ExpandFamily(family, indices)
	d.logger.Info("starting test run",
		"run_id", runID, "compiler", compiler, "family", family, "count", len(refs))

	var passed []string
	for _, ref := range refs {
		if err := d.runOne(ctx, compiler, passes, ref); err != nil {
			d.logger.Error("test run aborted", "run_id", runID, "test", ref.Name(), "error", err)
			return err
		}
		d.logger.Info("test passed", "run_id", runID, "test", ref.Name())
		passed = append(passed, ref.Name())
	}

	d.printSummary(compiler, passed)
	d.logger.Info("test run complete", "run_id", runID, "passed", len(passed))
	return nil
}

func (d *Driver) runOne(ctx context.Context, compiler string, passes []core.Pass, ref core.TestRef) error {
	asmPath, err := d.CompileFile(compiler, passes, ref.SourcePath(d.testsDir))
	if err != nil {
		return err
	}

	exePath := strings.TrimSuffix(asmPath, ".s")
	if err := d.backend.AssembleAndLink(ctx, asmPath, d.runtimeObj, exePath); err != nil {
		return &core.ToolError{Tool: "assemble-and-link", Err: err}
	}

	code, err := d.runBinary(ctx, exePath, ref)
	if err != nil {
		return &core.ToolError{Tool: exePath, Err: err}
	}
	if code != core.SuccessExitCode {
		return &core.ExitCodeError{Test: ref.Name(), Code: code}
	}
	return nil
}

// runBinary executes one compiled test with its optional input file opened
// for the duration of the run only.
func (d *Driver) runBinary(ctx context.Context, exePath string, ref core.TestRef) (int, error) {
	stdin, err := pipeline.OpenInput(ref.InputPath(d.testsDir))
	if err != nil {
		return -1, err
	}
	var reader io.Reader
	if stdin != nil {
		defer func() { _ = stdin.Close() }()
		reader = stdin
	}
	return d.backend.Run(ctx, exePath, reader)
}

func (d *Driver) printSummary(compiler string, passed []string) {
	if d.out == nil {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(d.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Test", "Result"})
	for _, name := range passed {
		t.AppendRow(table.Row{name, fmt.Sprintf("exit %d", core.SuccessExitCode)})
	}
	t.AppendFooter(table.Row{"compiler", compiler})
	t.Render()
}

package driver

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanopass-labs/nanoc/internal/testutil"
	"github.com/nanopass-labs/nanoc/pkg/core"
	"github.com/nanopass-labs/nanoc/pkg/sexp"
)

// fakeBackend records invocations and returns scripted exit codes.
type fakeBackend struct {
	linked    []string
	ran       []string
	sawStdin  []bool
	exitCodes map[string]int // keyed by exe path suffix
	linkErr   error
}

func (b *fakeBackend) AssembleAndLink(_ context.Context, asmPath, runtimeObj, outPath string) error {
	if b.linkErr != nil {
		return b.linkErr
	}
	b.linked = append(b.linked, asmPath+"+"+runtimeObj)
	return nil
}

func (b *fakeBackend) Run(_ context.Context, exePath string, stdin io.Reader) (int, error) {
	b.ran = append(b.ran, exePath)
	b.sawStdin = append(b.sawStdin, stdin != nil)
	for suffix, code := range b.exitCodes {
		if strings.HasSuffix(exePath, suffix) {
			return code, nil
		}
	}
	return core.SuccessExitCode, nil
}

// codegenPasses compiles (program <n>) to a fake one-line assembly text.
func codegenPasses() []core.Pass {
	return []core.Pass{
		{
			Name:      "uniquify",
			Transform: func(prog *sexp.Value) (*sexp.Value, error) { return prog, nil },
		},
		{
			Name: "codegen",
			Transform: func(prog *sexp.Value) (*sexp.Value, error) {
				return sexp.Text(fmt.Sprintf("\tmovq $%d, %%rax", prog.List[1].Integer)), nil
			},
		},
	}
}

func writeTestFile(t *testing.T, dir string, ref core.TestRef, source string) {
	t.Helper()
	require.NoError(t, os.WriteFile(ref.SourcePath(dir), []byte(source), 0o644))
}

func newTestDriver(t *testing.T, backend Backend, dir string) (*Driver, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return New(testutil.NewTestLogger(t), backend, dir, "runtime.o", &out), &out
}

func TestCompileFile(t *testing.T) {
	dir := t.TempDir()
	ref := core.TestRef{Family: "var", Index: 1}
	writeTestFile(t, dir, ref, "(program 42)")
	d, _ := newTestDriver(t, &fakeBackend{}, dir)

	asmPath, err := d.CompileFile("testc", codegenPasses(), ref.SourcePath(dir))
	require.NoError(t, err)
	assert.Equal(t, ref.AsmPath(dir), asmPath, "output name derives from the source name")

	data, err := os.ReadFile(asmPath)
	require.NoError(t, err)
	assert.Equal(t, "\tmovq $42, %rax\n", string(data), "assembly text gets a trailing newline")
}

func TestCompileFile_NonTextFinalOutput(t *testing.T) {
	dir := t.TempDir()
	ref := core.TestRef{Family: "var", Index: 2}
	writeTestFile(t, dir, ref, "(program 42)")
	d, _ := newTestDriver(t, &fakeBackend{}, dir)

	treeOnly := []core.Pass{{
		Name:      "identity",
		Transform: func(prog *sexp.Value) (*sexp.Value, error) { return prog, nil },
	}}
	_, err := d.CompileFile("testc", treeOnly, ref.SourcePath(dir))
	var nonText *core.NonTextError
	require.ErrorAs(t, err, &nonText)
	assert.Equal(t, "identity", nonText.Pass)
}

func TestRunTests_AllPass(t *testing.T) {
	dir := t.TempDir()
	for i := 1; i <= 3; i++ {
		writeTestFile(t, dir, core.TestRef{Family: "var", Index: i}, "(program 42)")
	}
	backend := &fakeBackend{}
	d, out := newTestDriver(t, backend, dir)

	err := d.RunTests(context.Background(), "testc", codegenPasses(), "var", []int{1, 2, 3})
	require.NoError(t, err)

	require.Len(t, backend.ran, 3)
	assert.Contains(t, backend.ran[0], "var_1")
	assert.Contains(t, backend.ran[2], "var_3")
	for _, link := range backend.linked {
		assert.Contains(t, link, "runtime.o", "the fixed runtime object is linked into every test")
	}
	assert.Contains(t, out.String(), "var_2")
}

func TestRunTests_UnexpectedExitCode(t *testing.T) {
	dir := t.TempDir()
	for i := 1; i <= 3; i++ {
		writeTestFile(t, dir, core.TestRef{Family: "var", Index: i}, "(program 42)")
	}
	backend := &fakeBackend{exitCodes: map[string]int{"var_2": 7}}
	d, _ := newTestDriver(t, backend, dir)

	err := d.RunTests(context.Background(), "testc", codegenPasses(), "var", []int{1, 2, 3})
	var exitErr *core.ExitCodeError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, "var_2", exitErr.Test)
	assert.Equal(t, 7, exitErr.Code)
	assert.Contains(t, exitErr.Error(), "7", "diagnostic shows the observed code")

	// Fail fast: var_3 never ran.
	assert.Len(t, backend.ran, 2)
}

func TestRunTests_ToolFailureAbortsBatch(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, core.TestRef{Family: "var", Index: 1}, "(program 42)")
	backend := &fakeBackend{linkErr: fmt.Errorf("cc: not found")}
	d, _ := newTestDriver(t, backend, dir)

	err := d.RunTests(context.Background(), "testc", codegenPasses(), "var", []int{1})
	var toolErr *core.ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Empty(t, backend.ran, "nothing executes after a toolchain failure")
}

func TestRunTests_StdinRedirection(t *testing.T) {
	dir := t.TempDir()
	withInput := core.TestRef{Family: "io", Index: 1}
	without := core.TestRef{Family: "io", Index: 2}
	writeTestFile(t, dir, withInput, "(program 42)")
	writeTestFile(t, dir, without, "(program 42)")
	require.NoError(t, os.WriteFile(withInput.InputPath(dir), []byte("5\n"), 0o644))

	backend := &fakeBackend{}
	d, _ := newTestDriver(t, backend, dir)
	require.NoError(t, d.RunTests(context.Background(), "testc", codegenPasses(), "io", []int{1, 2}))

	require.Len(t, backend.sawStdin, 2)
	assert.True(t, backend.sawStdin[0], "io_1 has an input file")
	assert.False(t, backend.sawStdin[1], "io_2 has none")
}

func TestRunTests_MissingSourceAborts(t *testing.T) {
	d, _ := newTestDriver(t, &fakeBackend{}, t.TempDir())
	err := d.RunTests(context.Background(), "testc", codegenPasses(), "ghost", []int{1})
	assert.Error(t, err)
}

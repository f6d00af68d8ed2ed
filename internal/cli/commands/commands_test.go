package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanopass-labs/nanoc/internal/cli/config"
	"github.com/nanopass-labs/nanoc/internal/langs/lvar"
	"github.com/nanopass-labs/nanoc/internal/testutil"
	"github.com/nanopass-labs/nanoc/pkg/core"
	"github.com/nanopass-labs/nanoc/pkg/sexp"
)

func lvarPipelines() Pipelines {
	return Pipelines{
		Default:   "lvar",
		Compilers: map[string][]core.Pass{"lvar": lvar.Passes()},
	}
}

// execute runs a command with a test runtime wired into its context.
func execute(t *testing.T, cmd *cobra.Command, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	cmd.SetContext(WithRuntime(context.Background(), cfg, testutil.NewTestLogger(t)))
	err := cmd.Execute()
	return out.String(), err
}

func testConfig(dir string) *config.Config {
	return &config.Config{TestsDir: dir, RuntimeObject: "runtime.o", CC: "cc"}
}

func TestPipelines_Select(t *testing.T) {
	p := lvarPipelines()

	name, passes, err := p.Select("")
	require.NoError(t, err)
	assert.Equal(t, "lvar", name, "empty selection falls back to the default")
	assert.NotEmpty(t, passes)

	_, _, err = p.Select("fortran")
	assert.Error(t, err)
}

func TestParseIndices(t *testing.T) {
	indices, err := parseIndices("1, 2,5")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 5}, indices)

	_, err = parseIndices("")
	assert.Error(t, err)
	_, err = parseIndices("1,x")
	assert.Error(t, err)
}

func TestDiscoverIndices(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"var_2.rkt", "var_1.rkt", "var_10.rkt", "var_notes.rkt", "cond_1.rkt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("(program 1)"), 0o644))
	}

	indices, err := discoverIndices(dir, "var")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 10}, indices, "indices come back sorted, non-numeric names skipped")

	_, err = discoverIndices(dir, "ghost")
	assert.Error(t, err)
}

func TestCompileCommand(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "var_1.rkt")
	require.NoError(t, os.WriteFile(src, []byte("(program (+ 40 2))"), 0o644))

	out, err := execute(t, NewCompileCommand(lvarPipelines()), testConfig(dir), src)
	require.NoError(t, err)

	asmPath := filepath.Join(dir, "var_1.s")
	assert.Contains(t, out, asmPath)
	data, err := os.ReadFile(asmPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "retq")
}

func TestCompileCommand_UnknownCompiler(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "var_1.rkt")
	require.NoError(t, os.WriteFile(src, []byte("(program 1)"), 0o644))

	_, err := execute(t, NewCompileCommand(lvarPipelines()), testConfig(dir), "--compiler", "fortran", src)
	assert.Error(t, err)
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	ref := core.TestRef{Family: "var", Index: 1}
	require.NoError(t, os.WriteFile(ref.SourcePath(dir), []byte("(program (let ((x 40)) (+ x 2)))"), 0o644))

	out, err := execute(t, NewCheckCommand(lvarPipelines()), testConfig(dir),
		"--family", "var", "--indices", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "var_1: 42")
}

func TestCheckCommand_ReadWithInput(t *testing.T) {
	dir := t.TempDir()
	ref := core.TestRef{Family: "io", Index: 1}
	require.NoError(t, os.WriteFile(ref.SourcePath(dir), []byte("(program (+ (read) 2))"), 0o644))
	require.NoError(t, os.WriteFile(ref.InputPath(dir), []byte("40\n"), 0o644))

	out, err := execute(t, NewCheckCommand(lvarPipelines()), testConfig(dir),
		"--family", "io", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "io_1: 42")
}

func TestListCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "var_1.rkt"), []byte("(program 1)"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "var_1.in"), []byte("1\n"), 0o644))

	out, err := execute(t, NewListCommand(), testConfig(dir))
	require.NoError(t, err)
	assert.Contains(t, out, "var_1")
	assert.Contains(t, out, "yes")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, NewVersionCommand("9.9.9"), testConfig(t.TempDir()))
	require.NoError(t, err)
	assert.Contains(t, out, "9.9.9")
}

func TestEvalLine(t *testing.T) {
	passes := lvar.Passes()

	result, err := evalLine(passes, "(program (let ((x 2)) (+ x 40)))")
	require.NoError(t, err)
	assert.True(t, sexp.Equal(sexp.Int(42), result))

	_, err = evalLine(passes, "(program (")
	assert.Error(t, err)
	_, err = evalLine(passes, "(program unbound)")
	assert.Error(t, err)
}

func TestEvalLine_NoInterpreters(t *testing.T) {
	passes := []core.Pass{{
		Name:      "identity",
		Transform: func(v *sexp.Value) (*sexp.Value, error) { return v, nil },
	}}
	result, err := evalLine(passes, "(+ 1 2)")
	require.NoError(t, err)
	assert.Equal(t, "(+ 1 2)", result.String(), "with no interpreter the final tree comes back")
}

package core

import (
	"fmt"
	"log/slog"

	"github.com/nanopass-labs/nanoc/pkg/sexp"
)

// MismatchError reports two reference interpreters disagreeing on a test.
// It carries the full diagnostic context: the compiler and pass names, the
// previously validated result, the diverging result, and the intermediate
// tree at the point of failure.
type MismatchError struct {
	Compiler string
	Pass     string
	Want     *sexp.Value
	Got      *sexp.Value
	Tree     *sexp.Value
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: pass %s: interpreter result %s does not match earlier result %s",
		e.Compiler, e.Pass, e.Got, e.Want)
}

// NonTextError reports a final code-generation pass that produced a tree
// instead of flat assembly text.
type NonTextError struct {
	Pass string
	Got  *sexp.Value
}

func (e *NonTextError) Error() string {
	return fmt.Sprintf("pass %s: final output is not text: %s", e.Pass, e.Got)
}

// ToolError reports the external assembler/linker failing to run or
// returning failure. It aborts the whole batch, not just one test.
type ToolError struct {
	Tool string
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("external tool %s failed: %v", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }

// ExitCodeError reports a compiled test binary exiting with anything other
// than the success sentinel.
type ExitCodeError struct {
	Test string
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("test %s exited with code %d, want %d", e.Test, e.Code, SuccessExitCode)
}

// SoftAssert checks an advisory invariant: when cond is false it logs a
// warning and execution continues. Never use it for correctness-critical
// checks.
func SoftAssert(logger *slog.Logger, cond bool, msg string, args ...any) {
	if !cond {
		logger.Warn("assertion failed: "+msg, args...)
	}
}
